package authsmith

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// FederatedLogin describes the federatedlogin operation and its observable behavior.
//
// FederatedLogin may return an error when input validation, dependency calls, or security checks fail.
// FederatedLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The operation is an idempotent find-or-create keyed on the issuer's stable
// subject identifier. Two concurrent first logins for the same subject race on
// the store's uniqueness constraint; the loser re-reads the winner's row so
// both calls converge on one account. The issuer's email_verified assertion
// is trusted as-is.
func (e *Engine) FederatedLogin(ctx context.Context, identityToken string) (*FederatedResult, error) {
	if e == nil || e.accounts == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Federated.Enabled || e.identity == nil {
		return nil, ErrFederatedLoginDisabled
	}

	assertion, err := e.identity.Validate(identityToken)
	if err != nil {
		return nil, e.federatedFailure(ctx, "", ErrIdentityTokenInvalid)
	}

	account, err := e.accounts.FindBySubject(ctx, assertion.Subject)
	switch {
	case err == nil:
	case errors.Is(err, ErrAccountNotFound):
		account, err = e.createFederatedAccount(ctx, assertion.Subject, assertion.Email, assertion.Name, assertion.EmailVerified)
		if err != nil {
			return nil, e.federatedFailure(ctx, "", err)
		}
	default:
		return nil, e.federatedFailure(ctx, "", err)
	}

	if e.config.Registration.RequireVerification && !account.EmailVerified {
		if err := e.issueChallenge(ctx, account); err != nil {
			return nil, e.federatedFailure(ctx, account.AccountID, err)
		}

		e.metrics.Inc(MetricLoginUnverified)
		e.emitAudit(ctx, auditLoginUnverified, account.AccountID, true, nil, nil)

		return &FederatedResult{
			AccountID:     account.AccountID,
			SubjectID:     account.SubjectID,
			EmailVerified: false,
		}, nil
	}

	tokenStr, err := e.mintFor(account)
	if err != nil {
		return nil, e.federatedFailure(ctx, account.AccountID, err)
	}

	e.metrics.Inc(MetricFederatedSuccess)
	e.emitAudit(ctx, auditFederatedSuccess, account.AccountID, true, nil, nil)

	return &FederatedResult{
		AccountID:     account.AccountID,
		Email:         account.Email,
		Name:          account.Name,
		SubjectID:     account.SubjectID,
		EmailVerified: account.EmailVerified,
		Token:         tokenStr,
	}, nil
}

func (e *Engine) createFederatedAccount(
	ctx context.Context,
	subjectID, email, name string,
	emailVerified bool,
) (Account, error) {
	account, err := e.accounts.Create(ctx, CreateAccountInput{
		AccountID:     uuid.NewString(),
		Email:         normalizeEmail(email),
		Name:          name,
		SubjectID:     subjectID,
		EmailVerified: emailVerified,
	})
	if err == nil {
		e.metrics.Inc(MetricFederatedAccountCreated)
		e.emitAudit(ctx, auditFederatedAccountCreated, account.AccountID, true, nil, nil)
		return account, nil
	}

	// Lost a concurrent first-login race: the other call created the row.
	// Converge on it.
	if errors.Is(err, ErrStoreDuplicateSubject) {
		return e.accounts.FindBySubject(ctx, subjectID)
	}

	// Subject is new but the email belongs to an existing password account.
	// Automatic linking is out of scope; surface the conflict.
	if errors.Is(err, ErrStoreDuplicateEmail) {
		return Account{}, ErrDuplicateEmail
	}

	return Account{}, err
}

func (e *Engine) federatedFailure(ctx context.Context, accountID string, err error) error {
	e.metrics.Inc(MetricFederatedFailure)
	e.emitAudit(ctx, auditFederatedFailure, accountID, false, err, nil)
	return err
}
