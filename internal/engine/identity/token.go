// Package identity decodes the credential token handed back by an external
// login widget. Decoding is local and unverified: the claims are only logged,
// no session is created and the token is never stored or forwarded.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptyToken = errors.New("empty token")

// Claims are the decoded token claims.
type Claims = jwt.MapClaims

// DecodeClaims parses token without verifying its signature.
func DecodeClaims(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

// Summary extracts the commonly displayed identity claims.
type Summary struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	ExpiresAt time.Time
}

func Summarize(c Claims) Summary {
	s := Summary{}
	s.Subject, _ = c.GetSubject()
	s.Issuer, _ = c.GetIssuer()
	s.Email, _ = c["email"].(string)
	s.Name, _ = c["name"].(string)
	if exp, err := c.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s
}
