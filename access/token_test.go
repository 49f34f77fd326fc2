package access

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobmatrimony/domain"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens("test-secret")

	signed, err := tokens.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if signed == "" {
		t.Fatal("expected a signed token")
	}

	id, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id != "alice" {
		t.Fatalf("expected alice, got %q", id)
	}
}

func TestTokens_RejectsExpired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokens("test-secret").WithClock(func() time.Time { return issuedAt })
	verifier := NewTokens("test-secret").WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })

	signed, err := issuer.Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Verify(signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for expired token, got %v", err)
	}
}

func TestTokens_RejectsWrongSecretAndAlgorithm(t *testing.T) {
	tokens := NewTokens("test-secret")

	other, err := NewTokens("other-secret").Issue("alice", time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tokens.Verify(other); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for foreign secret, got %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := hs512.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tokens.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for HS512, got %v", err)
	}
}

func TestTokens_RejectsMissingSubject(t *testing.T) {
	tokens := NewTokens("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := tokens.Verify(signed); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without subject, got %v", err)
	}
	if _, err := tokens.Verify("   "); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token for blank input, got %v", err)
	}
	if _, err := tokens.Issue(domain.Anonymous, time.Hour); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for anonymous subject, got %v", err)
	}
}
