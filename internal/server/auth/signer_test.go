package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	s, err := NewSigner(testSecret)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func TestNewSigner_RejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewSigner([]byte("secretKey"))
	if !errors.Is(err, common.ErrWeakSigningKey) {
		t.Fatalf("expected ErrWeakSigningKey, got %v", err)
	}
}

func TestNewSigner_CopiesKey(t *testing.T) {
	t.Parallel()

	secret := append([]byte(nil), testSecret...)
	s, err := NewSigner(secret)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	tok, err := s.Sign(&Claims{Type: "access"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	secret[0] ^= 0xff

	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("signer must not observe caller mutations: %v", err)
	}
}

func TestSignVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	in := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Type:             "refresh",
		TokenIdentifier:  "id-1",
	}

	tok, err := s.Sign(in)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if got := strings.Count(tok, "."); got != 2 {
		t.Fatalf("expected three segments, got %d dots in %q", got, tok)
	}

	out, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if out.Subject != "alice" || out.Type != "refresh" || out.TokenIdentifier != "id-1" {
		t.Fatalf("claims mismatch: %+v", out)
	}
}

func TestVerify_FailsClosed(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	good, err := s.Sign(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}, Type: "access"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	other, err := NewSigner([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	foreign, _ := other.Sign(&Claims{Type: "access"})

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Type: "access"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("none token: %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{Type: "access"}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("hs512 token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"two segments", "a.b"},
		{"malformed segments", "not.a.jwt"},
		{"tampered payload", tamperSubject(t, good, "mallory")},
		{"truncated signature", good[:len(good)-4]},
		{"foreign key", foreign},
		{"alg none", none},
		{"unexpected alg", hs512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token)
			if !errors.Is(err, common.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerify_IgnoresExpiry(t *testing.T) {
	t.Parallel()

	s := newTestSigner(t)
	tok, err := s.Sign(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		Type:             "refresh",
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := s.Verify(tok); err != nil {
		t.Fatalf("expired but authentic token must verify, got %v", err)
	}
}

// tamperSubject rewrites the payload segment while keeping the original signature.
func tamperSubject(t *testing.T, token, subject string) string {
	t.Helper()
	parts := strings.Split(token, ".")
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	forged := strings.Replace(string(payload), `"sub":"alice"`, `"sub":"`+subject+`"`, 1)
	if forged == string(payload) {
		t.Fatalf("payload did not contain subject: %s", payload)
	}
	parts[1] = base64.RawURLEncoding.EncodeToString([]byte(forged))
	return strings.Join(parts, ".")
}
