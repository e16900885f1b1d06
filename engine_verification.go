package authsmith

import (
	"context"
	"errors"
	"time"

	"github.com/authsmith/authsmith/internal"
)

// issueChallenge generates a fresh code, stores its hash keyed by account (so
// any previous live challenge is superseded), then dispatches the plaintext
// code. Delivery failure destroys the just-stored challenge: a code that was
// never sent must never be consumable.
func (e *Engine) issueChallenge(ctx context.Context, account Account) error {
	if e.notifier == nil {
		return ErrNotificationFailed
	}

	digits := e.config.Verification.CodeDigits
	if digits == 0 {
		digits = defaultCodeDigits
	}

	code, err := internal.NewCode(digits)
	if err != nil {
		return err
	}

	ttl := e.config.Verification.ChallengeTTL
	if ttl <= 0 {
		ttl = defaultChallengeTTL
	}

	record := &verificationChallenge{
		CodeHash:  internal.HashCode(code),
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}

	if err := e.challenges.Save(ctx, account.AccountID, record, ttl); err != nil {
		e.emitAudit(ctx, auditChallengeFailure, account.AccountID, false, ErrVerificationUnavailable, nil)
		return ErrVerificationUnavailable
	}

	if err := e.notifier.SendVerificationCode(ctx, account.Email, code, ttl); err != nil {
		// Best effort: the challenge must not outlive a failed dispatch.
		_ = e.challenges.Delete(ctx, account.AccountID)

		e.metrics.Inc(MetricNotificationFailure)
		e.emitAudit(ctx, auditNotificationFailure, account.AccountID, false, ErrNotificationFailed, nil)
		return ErrNotificationFailed
	}

	e.metrics.Inc(MetricChallengeIssued)
	e.emitAudit(ctx, auditChallengeIssued, account.AccountID, true, nil, nil)

	return nil
}

// VerifyEmail describes the verifyemail operation and its observable behavior.
//
// VerifyEmail may return an error when input validation, dependency calls, or security checks fail.
// VerifyEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A correct code atomically consumes the challenge, marks the account
// verified, and mints a session token. A wrong code reports [ErrInvalidCode]
// and, unless an attempt cap is configured, leaves the challenge live. Absent
// and expired challenges both report [ErrChallengeNotFound].
func (e *Engine) VerifyEmail(ctx context.Context, accountID, code string) (*VerifyResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	if accountID == "" || !internal.IsNumeric(code) {
		return nil, e.verifyFailure(ctx, accountID, ErrInvalidCode, MetricChallengeInvalidCode)
	}

	start := time.Now()
	err := e.challenges.Consume(ctx, accountID, internal.HashCode(code), e.config.Verification.MaxAttempts)
	e.metrics.ObserveVerifyLatency(time.Since(start))

	if err != nil {
		switch {
		case errors.Is(err, errChallengeNotFound):
			return nil, e.verifyFailure(ctx, accountID, ErrChallengeNotFound, MetricChallengeExpired)
		case errors.Is(err, errChallengeCodeMismatch):
			return nil, e.verifyFailure(ctx, accountID, ErrInvalidCode, MetricChallengeInvalidCode)
		case errors.Is(err, errChallengeAttemptsExceeded):
			return nil, e.verifyFailure(ctx, accountID, ErrChallengeAttemptsExceeded, MetricChallengeAttemptsExceeded)
		default:
			e.emitAudit(ctx, auditChallengeFailure, accountID, false, ErrVerificationUnavailable, nil)
			return nil, ErrVerificationUnavailable
		}
	}

	account, err := e.accounts.MarkEmailVerified(ctx, accountID)
	if err != nil {
		e.emitAudit(ctx, auditChallengeFailure, accountID, false, err, nil)
		return nil, err
	}

	tokenStr, err := e.mintFor(account)
	if err != nil {
		e.emitAudit(ctx, auditChallengeFailure, accountID, false, err, nil)
		return nil, err
	}

	e.metrics.Inc(MetricChallengeConsumed)
	e.emitAudit(ctx, auditChallengeConsumed, accountID, true, nil, nil)

	return &VerifyResult{
		AccountID:     account.AccountID,
		Email:         account.Email,
		Name:          account.Name,
		EmailVerified: account.EmailVerified,
		Token:         tokenStr,
	}, nil
}

func (e *Engine) verifyFailure(ctx context.Context, accountID string, err error, metric MetricID) error {
	e.metrics.Inc(metric)
	e.emitAudit(ctx, auditChallengeFailure, accountID, false, err, nil)
	return err
}

// ResendVerification issues a fresh challenge for an unverified account,
// superseding any live one. Verified accounts get [ErrChallengeNotFound] so
// callers cannot use resends to probe verification state transitions.
func (e *Engine) ResendVerification(ctx context.Context, accountID string) error {
	if e == nil || e.accounts == nil {
		return ErrEngineNotReady
	}

	account, err := e.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return ErrChallengeNotFound
	}

	return e.issueChallenge(ctx, account)
}
