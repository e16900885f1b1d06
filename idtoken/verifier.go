package idtoken

import (
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by [Verifier.Validate] for any assertion that
// fails signature, audience, issuer, or temporal validation. Callers must
// treat it as fatal for the request; there is no partial success.
var ErrInvalidToken = errors.New("invalid identity token")

// Config defines a public type used by authsmith APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Issuer       string
	Audience     string
	VerifyKeys   map[string][]byte // kid -> public key (PEM PKIX or raw ed25519)
	Leeway       time.Duration
	MaxClockSkew time.Duration // tolerance for assertions issued in the future
}

// Verifier defines a public type used by authsmith APIs.
//
// Verifier instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Verifier struct {
	config Config
	keys   map[string]interface{}
}

// Claims carries the identity assertion extracted from a validated token.
// EmailVerified is the issuer's own statement and is trusted as-is.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewVerifier describes the newverifier operation and its observable behavior.
//
// NewVerifier may return an error when input validation, dependency calls, or security checks fail.
// NewVerifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Audience == "" {
		return nil, errors.New("audience required")
	}
	if len(cfg.VerifyKeys) == 0 {
		return nil, errors.New("verify key set required")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.MaxClockSkew == 0 {
		cfg.MaxClockSkew = 10 * time.Minute
	}
	if cfg.MaxClockSkew < 0 || cfg.MaxClockSkew > 24*time.Hour {
		return nil, errors.New("invalid MaxClockSkew configuration")
	}

	keys := make(map[string]interface{}, len(cfg.VerifyKeys))
	for kid, raw := range cfg.VerifyKeys {
		if strings.TrimSpace(kid) == "" {
			return nil, errors.New("verify key map contains empty kid")
		}
		key, err := parsePublicKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid verify key for kid %q: %w", kid, err)
		}
		keys[kid] = key
	}

	return &Verifier{config: cfg, keys: keys}, nil
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (v *Verifier) Validate(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodRS256.Alg(),
			jwt.SigningMethodEdDSA.Alg(),
		}),
		jwt.WithAudience(v.config.Audience),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(v.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := v.keys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return key, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	if claims.IssuedAt != nil && v.config.MaxClockSkew > 0 {
		if claims.IssuedAt.Time.After(time.Now().Add(v.config.MaxClockSkew)) {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

func parsePublicKey(raw []byte) (interface{}, error) {
	if block, _ := pem.Decode(raw); block != nil {
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, err
		}
		switch key := parsed.(type) {
		case *rsa.PublicKey:
			return key, nil
		case ed25519.PublicKey:
			return key, nil
		default:
			return nil, errors.New("unsupported public key type")
		}
	}

	if len(raw) == ed25519.PublicKeySize {
		return ed25519.PublicKey(raw), nil
	}

	return nil, errors.New("public key must be PEM PKIX or raw ed25519")
}
