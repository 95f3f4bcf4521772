package gateway

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issueNonce mints a short-lived signed token the UI replays on query and
// clear calls.
func (s *Server) issueNonce() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "lhr-nonce",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(nonceTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing nonce: %w", err)
	}
	return signed, nil
}

// verifyNonce rejects missing, foreign, or expired nonces.
func (s *Server) verifyNonce(raw string) error {
	if raw == "" {
		return fmt.Errorf("missing nonce")
	}

	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return fmt.Errorf("parsing nonce: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject != "lhr-nonce" {
		return fmt.Errorf("unexpected nonce claims")
	}
	return nil
}
