package authsmith

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"
)

// emailPattern accepts the practical shape of an address: local part, one @,
// a dotted domain with an alphabetic TLD of at least two characters. Full
// RFC 5322 is a non-goal; the store's uniqueness constraint is the backstop.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Register describes the register operation and its observable behavior.
//
// Register may return an error when input validation, dependency calls, or security checks fail.
// Register does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Validation is ordered: missing email, malformed email, missing password,
// weak password. Only then does the store see the request; email uniqueness is
// enforced at write time so concurrent registrations race safely.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, e.registerFailure(ctx, ErrEmailRequired)
	}
	if !emailPattern.MatchString(email) {
		return nil, e.registerFailure(ctx, ErrEmailInvalid)
	}
	if req.Password == "" {
		return nil, e.registerFailure(ctx, ErrPasswordRequired)
	}
	if err := e.checkPasswordPolicy(req.Password); err != nil {
		return nil, e.registerFailure(ctx, err)
	}

	hash, err := e.passwordHash.Hash(req.Password)
	if err != nil {
		return nil, e.registerFailure(ctx, err)
	}

	verified := !e.config.Registration.RequireVerification

	account, err := e.accounts.Create(ctx, CreateAccountInput{
		AccountID:     uuid.NewString(),
		Email:         email,
		Name:          req.Name,
		PasswordHash:  hash,
		EmailVerified: verified,
	})
	if err != nil {
		if errors.Is(err, ErrStoreDuplicateEmail) {
			e.metrics.Inc(MetricRegisterDuplicate)
			e.emitAudit(ctx, auditRegisterDuplicate, "", false, ErrDuplicateEmail, nil)
			return nil, ErrDuplicateEmail
		}
		return nil, e.registerFailure(ctx, err)
	}

	result := &RegisterResult{
		AccountID:     account.AccountID,
		EmailVerified: account.EmailVerified,
	}

	if e.config.Registration.RequireVerification {
		if err := e.issueChallenge(ctx, account); err != nil {
			return nil, e.registerFailure(ctx, err)
		}
	} else {
		tokenStr, err := e.mintFor(account)
		if err != nil {
			return nil, e.registerFailure(ctx, err)
		}
		result.Token = tokenStr
	}

	e.metrics.Inc(MetricRegisterSuccess)
	e.emitAudit(ctx, auditRegisterSuccess, account.AccountID, true, nil, nil)

	return result, nil
}

func (e *Engine) registerFailure(ctx context.Context, err error) error {
	e.metrics.Inc(MetricRegisterFailure)
	e.emitAudit(ctx, auditRegisterFailure, "", false, err, nil)
	return err
}

// checkPasswordPolicy requires the configured minimum length plus at least
// one ASCII letter and one digit. Length is measured in bytes.
func (e *Engine) checkPasswordPolicy(passwordPlain string) error {
	minLength := e.config.Registration.MinPasswordLength
	if minLength <= 0 {
		minLength = defaultMinPassLength
	}
	if len(passwordPlain) < minLength {
		return ErrPasswordPolicy
	}

	var hasLetter, hasDigit bool
	for i := 0; i < len(passwordPlain); i++ {
		c := passwordPlain[i]
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordPolicy
	}

	return nil
}
