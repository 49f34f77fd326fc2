package access

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobmatrimony/domain"
)

// ErrInvalidToken signals a bearer token that failed verification.
var ErrInvalidToken = fmt.Errorf("access: invalid token: %w", domain.ErrUnauthorized)

// Tokens verifies and issues HS256 bearer tokens whose subject is the
// caller identity. Identity proofing happens upstream.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// WithClock overrides the clock used for issuing and expiry checks.
func (t *Tokens) WithClock(now func() time.Time) *Tokens {
	t.now = now
	return t
}

// Verify validates tokenString and returns its subject.
func (t *Tokens) Verify(tokenString string) (domain.Identity, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return domain.Anonymous, ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return domain.Anonymous, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return domain.Anonymous, ErrInvalidToken
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return domain.Anonymous, fmt.Errorf("access: token without subject: %w", domain.ErrUnauthorized)
	}
	return domain.Identity(subject), nil
}

// Issue signs a token for id valid for ttl.
func (t *Tokens) Issue(id domain.Identity, ttl time.Duration) (string, error) {
	if id.IsAnonymous() {
		return "", fmt.Errorf("access: subject required: %w", domain.ErrInvalidInput)
	}
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("access: sign token: %w", err)
	}
	return signed, nil
}
