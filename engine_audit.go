package authsmith

import (
	"context"
	"errors"
	"time"
)

// Audit event names emitted by the engine. Stable identifiers; sinks may key
// alerting on them.
const (
	auditRegisterSuccess   = "register_success"
	auditRegisterDuplicate = "register_duplicate"
	auditRegisterFailure   = "register_failure"

	auditLoginSuccess    = "login_success"
	auditLoginFailure    = "login_failure"
	auditLoginUnverified = "login_unverified"

	auditChallengeIssued   = "verification_challenge_issued"
	auditChallengeConsumed = "verification_challenge_consumed"
	auditChallengeFailure  = "verification_challenge_failure"

	auditFederatedSuccess        = "federated_login_success"
	auditFederatedFailure        = "federated_login_failure"
	auditFederatedAccountCreated = "federated_account_created"

	auditNotificationFailure = "notification_failure"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	accountID string,
	success bool,
	auditErr error,
	metadata map[string]string,
) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if auditErr != nil {
		event.Error = auditErrorCode(auditErr)
	}

	e.audit.Emit(ctx, event)
}

// auditErrorCode maps engine errors to short stable codes. Raw error strings
// from dependencies never reach sinks.
func auditErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrEmailRequired):
		return "email_required"
	case errors.Is(err, ErrEmailInvalid):
		return "email_invalid"
	case errors.Is(err, ErrPasswordRequired):
		return "password_required"
	case errors.Is(err, ErrPasswordPolicy):
		return "password_policy"
	case errors.Is(err, ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, ErrIncorrectCredentials):
		return "incorrect_credentials"
	case errors.Is(err, ErrChallengeNotFound):
		return "challenge_not_found"
	case errors.Is(err, ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, ErrChallengeAttemptsExceeded):
		return "challenge_attempts_exceeded"
	case errors.Is(err, ErrVerificationUnavailable):
		return "verification_unavailable"
	case errors.Is(err, ErrIdentityTokenInvalid):
		return "identity_token_invalid"
	case errors.Is(err, ErrFederatedLoginDisabled):
		return "federated_login_disabled"
	case errors.Is(err, ErrNotificationFailed):
		return "notification_failed"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrAccountNotFound):
		return "account_not_found"
	default:
		return "internal_error"
	}
}
