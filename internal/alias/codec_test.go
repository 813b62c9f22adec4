package alias

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cryptogate/internal/domain"
)

const testSecret = "test-alias-secret-0123456789"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret)
	require.NoError(t, err)
	return c
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c := newTestCodec(t)

	for range 200 {
		id := uuid.New()
		a := c.Encode(id)
		assert.Len(t, a, Length)

		got, err := c.Decode(a)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	c := newTestCodec(t)
	id := uuid.New()

	assert.Equal(t, c.Encode(id), c.Encode(id))

	other, err := NewCodec(testSecret)
	require.NoError(t, err)
	assert.Equal(t, c.Encode(id), other.Encode(id), "same secret must give same alias across restarts")
}

func TestEncode_HidesStructure(t *testing.T) {
	c := newTestCodec(t)
	id := uuid.New()

	a := c.Encode(id)
	assert.NotContains(t, a, strings.ReplaceAll(id.String(), "-", ""))

	next := id
	next[15]++
	assert.NotEqual(t, a[:8], c.Encode(next)[:8], "adjacent ids should not share a prefix")
}

func TestDecode_Invalid(t *testing.T) {
	c := newTestCodec(t)
	valid := c.Encode(uuid.New())

	flipped := []byte(valid)
	if flipped[3] == 'a' {
		flipped[3] = 'b'
	} else {
		flipped[3] = 'a'
	}

	otherCodec, err := NewCodec("a-completely-different-secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		alias string
	}{
		{name: "empty", alias: ""},
		{name: "too short", alias: valid[:Length-2]},
		{name: "too long", alias: valid + "00"},
		{name: "not hex", alias: strings.Repeat("zz", Length/2)},
		{name: "tampered ciphertext", alias: string(flipped)},
		{name: "tampered mac", alias: valid[:Length-1] + flipLast(valid)},
		{name: "raw uuid", alias: uuid.NewString()},
		{name: "foreign secret", alias: otherCodec.Encode(uuid.New())},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			id, err := c.Decode(tc.alias)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidAlias)
			assert.Equal(t, uuid.Nil, id)
		})
	}
}

func TestNewCodec_ShortSecret(t *testing.T) {
	_, err := NewCodec("short")
	require.Error(t, err)
}

func TestIsAlias(t *testing.T) {
	c := newTestCodec(t)
	assert.True(t, IsAlias(c.Encode(uuid.New())))
	assert.False(t, IsAlias(uuid.NewString()))
	assert.False(t, IsAlias(""))
}

func flipLast(s string) string {
	if s[len(s)-1] == '0' {
		return "1"
	}
	return "0"
}
