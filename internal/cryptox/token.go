package cryptox

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token: jti is the session ID,
// sub the normalised email. There is no expiry; a session lives until
// sign-out.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenSigner issues and checks HS256 session tokens.
type TokenSigner struct {
	key []byte
}

func NewTokenSigner(key []byte) *TokenSigner {
	return &TokenSigner{key: key}
}

func (s *TokenSigner) Issue(sessionID, email string, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       sessionID,
			Subject:  common.NormalizeEmail(email),
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	})
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the session ID and email carried by token. Any parse or
// signature failure is reported as common.ErrInvalidToken.
func (s *TokenSigner) Verify(token string) (sessionID, email string, err error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", "", errors.Join(common.ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return "", "", common.ErrInvalidToken
	}
	return claims.ID, claims.Subject, nil
}
