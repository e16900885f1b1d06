package idtoken

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	testIssuer   = "https://issuer.example"
	testAudience = "client-abc"
	testKid      = "kid-1"
)

type signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

func newSigner(t *testing.T) *signer {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return &signer{priv: priv, pub: pub}
}

func (s *signer) config() Config {
	return Config{
		Issuer:     testIssuer,
		Audience:   testAudience,
		VerifyKeys: map[string][]byte{testKid: s.pub},
	}
}

func (s *signer) sign(t *testing.T, kid string, claims Claims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}

	signed, err := tok.SignedString(s.priv)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return signed
}

func baseClaims() Claims {
	now := time.Now()
	return Claims{
		Email:         "alice@example.com",
		EmailVerified: true,
		Name:          "Alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestValidateSuccess(t *testing.T) {
	s := newSigner(t)
	v, err := NewVerifier(s.config())
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	claims, err := v.Validate(s.sign(t, testKid, baseClaims()))
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != "sub-1" {
		t.Fatalf("subject = %q", claims.Subject)
	}
	if claims.Email != "alice@example.com" || !claims.EmailVerified {
		t.Fatalf("claims: %+v", claims)
	}
}

func TestValidateRejections(t *testing.T) {
	s := newSigner(t)
	v, err := NewVerifier(s.config())
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	expired := baseClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := baseClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"someone-else"}

	wrongIssuer := baseClaims()
	wrongIssuer.Issuer = "https://evil.example"

	noSubject := baseClaims()
	noSubject.Subject = ""

	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil

	futureIssued := baseClaims()
	futureIssued.IssuedAt = jwt.NewNumericDate(time.Now().Add(time.Hour))

	foreign := newSigner(t)

	cases := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage", "not.a.token"},
		{"expired", s.sign(t, testKid, expired)},
		{"wrong audience", s.sign(t, testKid, wrongAudience)},
		{"wrong issuer", s.sign(t, testKid, wrongIssuer)},
		{"missing subject", s.sign(t, testKid, noSubject)},
		{"missing expiry", s.sign(t, testKid, noExpiry)},
		{"issued in the future", s.sign(t, testKid, futureIssued)},
		{"missing kid", s.sign(t, "", baseClaims())},
		{"unknown kid", s.sign(t, "kid-unknown", baseClaims())},
		{"foreign signature", foreign.sign(t, testKid, baseClaims())},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Validate(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestValidateAcceptsPEMKeys(t *testing.T) {
	s := newSigner(t)

	der, err := x509.MarshalPKIXPublicKey(s.pub)
	if err != nil {
		t.Fatalf("MarshalPKIXPublicKey failed: %v", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewVerifier(Config{
		Issuer:     testIssuer,
		Audience:   testAudience,
		VerifyKeys: map[string][]byte{testKid: pemKey},
	})
	if err != nil {
		t.Fatalf("NewVerifier failed: %v", err)
	}

	if _, err := v.Validate(s.sign(t, testKid, baseClaims())); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestNewVerifierValidation(t *testing.T) {
	s := newSigner(t)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing audience", Config{VerifyKeys: map[string][]byte{testKid: s.pub}}},
		{"missing keys", Config{Audience: testAudience}},
		{"empty kid", Config{Audience: testAudience, VerifyKeys: map[string][]byte{" ": s.pub}}},
		{"bad key material", Config{Audience: testAudience, VerifyKeys: map[string][]byte{testKid: []byte("nonsense")}}},
		{"excessive leeway", Config{Audience: testAudience, VerifyKeys: map[string][]byte{testKid: s.pub}, Leeway: time.Hour}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewVerifier(tc.cfg); err == nil {
				t.Fatal("expected config rejection")
			}
		})
	}
}
