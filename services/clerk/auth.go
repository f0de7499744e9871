// Package clerksvc talks to the Clerk identity provider: session token
// verification, profile lookups and webhook signature checks.
package clerksvc

import (
	"crypto/rsa"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

var ErrInvalidToken = errors.New("invalid session token")

// TokenVerifier checks bearer session tokens and yields the verified
// subject (the provider's user id).
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}

type jwtVerifier struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

var _ TokenVerifier = (*jwtVerifier)(nil)

// NewTokenVerifier parses the instance's PEM-encoded RSA public key.
func NewTokenVerifier(conf *core.Config) (*jwtVerifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(conf.Clerk.JWTPublicKey))
	if err != nil {
		return nil, errors.Wrap(err, "parsing session token public key")
	}
	return &jwtVerifier{
		publicKey: key,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})),
	}, nil
}

func (v *jwtVerifier) Verify(token string) (string, error) {
	parsed, err := v.parser.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return v.publicKey, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
