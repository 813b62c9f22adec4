// Package alias turns payment ids into public, non-enumerable invoice aliases.
//
// An alias is hex(AES-256(id) || HMAC-SHA256(AES-256(id))[:16]). The id is a
// single AES block so encryption is deterministic without an IV, and the
// truncated MAC rejects any alias that was not produced with the same secret.
package alias

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"

	"github.com/josh-kwaku/cryptogate/internal/domain"
)

const (
	macSize = 16

	// Length is the length of every encoded alias. Raw ids are 36 characters,
	// so a status lookup can tell the two apart by length alone.
	Length = 2 * (aes.BlockSize + macSize)
)

const minSecretLen = 16

var errShortSecret = errors.New("alias secret must be at least 16 bytes")

type Codec struct {
	block  cipher.Block
	macKey []byte
}

func NewCodec(secret string) (*Codec, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("NewCodec: %w", errShortSecret)
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("cryptogate payment alias v1"))
	encKey := make([]byte, 32)
	macKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, encKey); err != nil {
		return nil, fmt.Errorf("NewCodec: derive encryption key: %w", err)
	}
	if _, err := io.ReadFull(kdf, macKey); err != nil {
		return nil, fmt.Errorf("NewCodec: derive mac key: %w", err)
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("NewCodec: %w", err)
	}
	return &Codec{block: block, macKey: macKey}, nil
}

func (c *Codec) Encode(id uuid.UUID) string {
	buf := make([]byte, aes.BlockSize+macSize)
	c.block.Encrypt(buf[:aes.BlockSize], id[:])
	copy(buf[aes.BlockSize:], c.mac(buf[:aes.BlockSize]))
	return hex.EncodeToString(buf)
}

func (c *Codec) Decode(alias string) (uuid.UUID, error) {
	if len(alias) != Length {
		return uuid.Nil, fmt.Errorf("Decode: bad length %d: %w", len(alias), domain.ErrInvalidAlias)
	}

	raw, err := hex.DecodeString(alias)
	if err != nil {
		return uuid.Nil, fmt.Errorf("Decode: %w", domain.ErrInvalidAlias)
	}

	ct, tag := raw[:aes.BlockSize], raw[aes.BlockSize:]
	if !hmac.Equal(tag, c.mac(ct)) {
		return uuid.Nil, fmt.Errorf("Decode: %w", domain.ErrInvalidAlias)
	}

	var id uuid.UUID
	c.block.Decrypt(id[:], ct)
	return id, nil
}

func (c *Codec) mac(ct []byte) []byte {
	h := hmac.New(sha256.New, c.macKey)
	h.Write(ct)
	return h.Sum(nil)[:macSize]
}

// IsAlias reports whether s has the shape of an encoded alias rather than a raw id.
func IsAlias(s string) bool {
	return len(s) == Length
}
