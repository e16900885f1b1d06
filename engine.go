package authsmith

import (
	"context"
	"errors"
	"strings"

	"github.com/authsmith/authsmith/idtoken"
	"github.com/authsmith/authsmith/password"
	"github.com/authsmith/authsmith/token"
)

// Engine is the identity engine. All operations are safe for concurrent use
// once Build has returned; the configuration is frozen at build time.
type Engine struct {
	config Config

	accounts AccountStore
	notifier NotificationSender

	challenges   *challengeStore
	passwordHash *password.Hasher
	tokens       *token.Manager
	identity     *idtoken.Verifier

	audit   *auditDispatcher
	metrics *Metrics
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// An unknown email and a wrong password are indistinguishable to the caller:
// both yield [ErrIncorrectCredentials]. An unverified account with a correct
// password is not an error; the result carries EmailVerified=false, no token,
// and a fresh challenge has been dispatched.
func (e *Engine) Login(ctx context.Context, email, passwordPlain string) (*LoginResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if email == "" {
		return nil, e.loginFailure(ctx, "", ErrEmailRequired)
	}
	if passwordPlain == "" {
		return nil, e.loginFailure(ctx, "", ErrPasswordRequired)
	}

	account, err := e.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, e.loginFailure(ctx, "", ErrIncorrectCredentials)
		}
		return nil, e.loginFailure(ctx, "", err)
	}

	// Federation-only accounts have no password hash; a password login
	// against one fails like any wrong password.
	if account.PasswordHash == "" {
		return nil, e.loginFailure(ctx, account.AccountID, ErrIncorrectCredentials)
	}

	match, err := e.passwordHash.Verify(passwordPlain, account.PasswordHash)
	if err != nil {
		return nil, e.loginFailure(ctx, account.AccountID, err)
	}
	if !match {
		return nil, e.loginFailure(ctx, account.AccountID, ErrIncorrectCredentials)
	}

	if e.config.Registration.RequireVerification && !account.EmailVerified {
		if err := e.issueChallenge(ctx, account); err != nil {
			return nil, e.loginFailure(ctx, account.AccountID, err)
		}

		e.metrics.Inc(MetricLoginUnverified)
		e.emitAudit(ctx, auditLoginUnverified, account.AccountID, true, nil, nil)

		return &LoginResult{
			AccountID:     account.AccountID,
			EmailVerified: false,
		}, nil
	}

	tokenStr, err := e.mintFor(account)
	if err != nil {
		return nil, e.loginFailure(ctx, account.AccountID, err)
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emitAudit(ctx, auditLoginSuccess, account.AccountID, true, nil, nil)

	return &LoginResult{
		AccountID:     account.AccountID,
		Email:         account.Email,
		Name:          account.Name,
		SubjectID:     account.SubjectID,
		EmailVerified: account.EmailVerified,
		Token:         tokenStr,
	}, nil
}

func (e *Engine) loginFailure(ctx context.Context, accountID string, err error) error {
	e.metrics.Inc(MetricLoginFailure)
	e.emitAudit(ctx, auditLoginFailure, accountID, false, err, nil)
	return err
}

// ValidateToken describes the validatetoken operation and its observable behavior.
//
// ValidateToken may return an error when input validation, dependency calls, or security checks fail.
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateToken(tokenStr string) (*token.Claims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(tokenStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

func (e *Engine) mintFor(account Account) (string, error) {
	tokenStr, err := e.tokens.Mint(token.Snapshot{
		AccountID:     account.AccountID,
		Email:         account.Email,
		Name:          account.Name,
		SubjectID:     account.SubjectID,
		EmailVerified: account.EmailVerified,
	})
	if err != nil {
		return "", err
	}

	e.metrics.Inc(MetricTokenMinted)
	return tokenStr, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
