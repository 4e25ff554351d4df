package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates bearer tokens issued by the identity service and
// resolves them to a user id. Issuance happens elsewhere; this service only
// checks the signature and reads the subject.
type Verifier struct {
	secret []byte
}

// NewVerifier constructs a Verifier for an HMAC signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// ValidateToken verifies the JWT and returns the authenticated user id.
func (v *Verifier) ValidateToken(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("invalid token subject")
	}
	return subject, nil
}
