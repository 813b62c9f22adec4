package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureHeader carries an HS256 JWT binding the callback body to the payment.
const SignatureHeader = "X-Gateway-Signature"

type Claims struct {
	PaymentID  string
	Status     string
	BodySHA256 string
}

type signatureClaims struct {
	jwt.RegisteredClaims
	PaymentID  string `json:"payment_id"`
	Status     string `json:"status"`
	BodySHA256 string `json:"body_sha256"`
}

func Sign(paymentID, status string, body []byte, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := signatureClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cryptogate",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		PaymentID:  paymentID,
		Status:     status,
		BodySHA256: bodyDigest(body),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("Sign: %w", err)
	}
	return signed, nil
}

// VerifySignature checks the token and that it was issued for exactly this body.
func VerifySignature(tokenString string, body []byte, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &signatureClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("VerifySignature: %w", err)
	}

	sc, ok := token.Claims.(*signatureClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("VerifySignature: invalid token claims")
	}
	if sc.BodySHA256 != bodyDigest(body) {
		return nil, fmt.Errorf("VerifySignature: body digest mismatch")
	}

	return &Claims{
		PaymentID:  sc.PaymentID,
		Status:     sc.Status,
		BodySHA256: sc.BodySHA256,
	}, nil
}

func bodyDigest(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
