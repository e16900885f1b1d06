package authsmith

import (
	"context"
	"time"
)

// Account is the full account record exchanged with [AccountStore].
// AccountID is the opaque external-facing identifier; the store may key rows
// by whatever internal identifier it likes, but AccountID is what the engine
// embeds in tokens and returns to callers.
type Account struct {
	AccountID     string
	Email         string
	Name          string
	PasswordHash  string // empty for accounts created purely via federation
	SubjectID     string // federated subject identifier, empty when unlinked
	EmailVerified bool
}

// CreateAccountInput is the input for [AccountStore.Create].
type CreateAccountInput struct {
	AccountID     string
	Email         string
	Name          string
	PasswordHash  string
	SubjectID     string
	EmailVerified bool
}

// AccountStore is the primary interface that callers must implement to
// integrate authsmith with their account database. The engine relies on two
// write-time uniqueness constraints: Create must fail with
// [ErrStoreDuplicateEmail] when the email is taken and with
// [ErrStoreDuplicateSubject] when the federated subject is taken. Lookups
// return [ErrAccountNotFound] for absent rows.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindBySubject(ctx context.Context, subjectID string) (Account, error)
	FindByID(ctx context.Context, accountID string) (Account, error)
	Create(ctx context.Context, input CreateAccountInput) (Account, error)
	MarkEmailVerified(ctx context.Context, accountID string) (Account, error)
}

// NotificationSender delivers a verification challenge code to an account's
// email address. A non-nil error aborts the surrounding flow; the engine
// never retries delivery itself.
type NotificationSender interface {
	SendVerificationCode(ctx context.Context, email, code string, expiry time.Duration) error
}

// RegisterRequest is the input for [Engine.Register]. Name is optional.
type RegisterRequest struct {
	Email    string
	Password string
	Name     string
}

// RegisterResult is returned by [Engine.Register]. Token is set only when
// [RegistrationConfig.RequireVerification] is disabled.
type RegisterResult struct {
	AccountID     string
	EmailVerified bool
	Token         string
}

// LoginResult is returned by [Engine.Login]. Token and the profile fields are
// set only when the account is verified (or verification is not required);
// an unverified login is a non-error outcome carrying EmailVerified=false.
type LoginResult struct {
	AccountID     string
	Email         string
	Name          string
	SubjectID     string
	EmailVerified bool
	Token         string
}

// VerifyResult is returned by [Engine.VerifyEmail] after a successful
// challenge consumption.
type VerifyResult struct {
	AccountID     string
	Email         string
	Name          string
	EmailVerified bool
	Token         string
}

// FederatedResult is returned by [Engine.FederatedLogin]. Token is withheld
// when the issuer asserts an unverified email and local verification is
// required; in that case a challenge has been dispatched.
type FederatedResult struct {
	AccountID     string
	Email         string
	Name          string
	SubjectID     string
	EmailVerified bool
	Token         string
}
