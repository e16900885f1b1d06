package authsmith

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"time"
)

// Config defines a public type used by authsmith APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token        TokenConfig
	Password     PasswordConfig
	Verification VerificationConfig
	Registration RegistrationConfig
	Federated    FederatedConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authsmith APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	AccessTTL     time.Duration
	SigningMethod string // "ed25519" (default), "hs256" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authsmith APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
VERIFICATION CONFIG
====================================
*/

// VerificationConfig defines a public type used by authsmith APIs.
//
// VerificationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type VerificationConfig struct {
	ChallengeTTL time.Duration
	CodeDigits   int
	// MaxAttempts caps consecutive wrong-code submissions before the live
	// challenge is destroyed. Zero disables the cap: a wrong code then never
	// consumes the challenge and retries are bounded only by the TTL window.
	MaxAttempts int
	RedisPrefix string
}

// RegistrationConfig defines a public type used by authsmith APIs.
//
// RegistrationConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegistrationConfig struct {
	// RequireVerification selects the full flow: new accounts start
	// unverified, receive a challenge, and cannot obtain a session token
	// until the code is consumed. When disabled, Register mints a token
	// immediately and Login ignores the verified flag.
	RequireVerification bool
	MinPasswordLength   int
}

// FederatedConfig defines a public type used by authsmith APIs.
//
// FederatedConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FederatedConfig struct {
	Enabled      bool
	Issuer       string
	Audience     string
	VerifyKeys   map[string][]byte // kid -> public key (PEM or raw ed25519)
	Leeway       time.Duration
	MaxClockSkew time.Duration // tolerance for tokens issued in the future
}

// AuditConfig defines a public type used by authsmith APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authsmith APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const (
	defaultAccessTTL     = 24 * time.Hour
	defaultChallengeTTL  = 15 * time.Minute
	defaultCodeDigits    = 6
	defaultMinPassLength = 8
	defaultRedisPrefix   = "avc"
)

// DefaultConfig returns a validated baseline configuration: ed25519 session
// tokens with a bounded 24h lifetime, 15-minute six-digit challenges,
// verification required, federated login disabled until keys are supplied.
func DefaultConfig() Config {
	cfg := defaultConfig()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err == nil {
		cfg.Token.PrivateKey = priv
		cfg.Token.PublicKey = pub
	}

	return cfg
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:     defaultAccessTTL,
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Verification: VerificationConfig{
			ChallengeTTL: defaultChallengeTTL,
			CodeDigits:   defaultCodeDigits,
			MaxAttempts:  0,
			RedisPrefix:  defaultRedisPrefix,
		},
		Registration: RegistrationConfig{
			RequireVerification: true,
			MinPasswordLength:   defaultMinPassLength,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be positive")
	}
	switch c.Token.SigningMethod {
	case "ed25519", "hs256":
	default:
		return errors.New("Token SigningMethod must be ed25519 or hs256")
	}
	if c.Verification.ChallengeTTL <= 0 {
		return errors.New("Verification ChallengeTTL must be positive")
	}
	if c.Verification.CodeDigits < 4 || c.Verification.CodeDigits > 10 {
		return errors.New("Verification CodeDigits must be between 4 and 10")
	}
	if c.Verification.MaxAttempts < 0 {
		return errors.New("Verification MaxAttempts must not be negative")
	}
	if c.Registration.MinPasswordLength < 6 {
		return errors.New("Registration MinPasswordLength must be at least 6")
	}
	if c.Federated.Enabled {
		if c.Federated.Audience == "" {
			return errors.New("Federated Audience required when federated login is enabled")
		}
		if len(c.Federated.VerifyKeys) == 0 {
			return errors.New("Federated VerifyKeys required when federated login is enabled")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg

	if cfg.Token.PrivateKey != nil {
		out.Token.PrivateKey = append([]byte(nil), cfg.Token.PrivateKey...)
	}
	if cfg.Token.PublicKey != nil {
		out.Token.PublicKey = append([]byte(nil), cfg.Token.PublicKey...)
	}
	if cfg.Federated.VerifyKeys != nil {
		keys := make(map[string][]byte, len(cfg.Federated.VerifyKeys))
		for kid, key := range cfg.Federated.VerifyKeys {
			keys[kid] = append([]byte(nil), key...)
		}
		out.Federated.VerifyKeys = keys
	}

	return out
}
