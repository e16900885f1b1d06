package authsmith

import "errors"

var (
	// ErrEmailRequired is an exported constant or variable used by the identity engine.
	ErrEmailRequired = errors.New("email is required")
	// ErrEmailInvalid is an exported constant or variable used by the identity engine.
	ErrEmailInvalid = errors.New("email is not valid")
	// ErrPasswordRequired is an exported constant or variable used by the identity engine.
	ErrPasswordRequired = errors.New("password is required")
	// ErrPasswordPolicy is an exported constant or variable used by the identity engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrDuplicateEmail is an exported constant or variable used by the identity engine.
	ErrDuplicateEmail = errors.New("email is already taken")
	// ErrIncorrectCredentials is an exported constant or variable used by the identity engine.
	//
	// Returned both when no account exists for the email and when the password
	// does not match, so callers cannot probe for account existence.
	ErrIncorrectCredentials = errors.New("incorrect email or password")
	// ErrChallengeNotFound is an exported constant or variable used by the identity engine.
	//
	// Covers never-issued, already-consumed, and expired challenges; callers
	// surface it as "code has expired".
	ErrChallengeNotFound = errors.New("verification code has expired")
	// ErrInvalidCode is an exported constant or variable used by the identity engine.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrChallengeAttemptsExceeded is an exported constant or variable used by the identity engine.
	ErrChallengeAttemptsExceeded = errors.New("verification attempts exceeded")
	// ErrVerificationUnavailable is an exported constant or variable used by the identity engine.
	ErrVerificationUnavailable = errors.New("verification backend unavailable")
	// ErrIdentityTokenInvalid is an exported constant or variable used by the identity engine.
	ErrIdentityTokenInvalid = errors.New("invalid identity token")
	// ErrFederatedLoginDisabled is an exported constant or variable used by the identity engine.
	ErrFederatedLoginDisabled = errors.New("federated login disabled")
	// ErrNotificationFailed is an exported constant or variable used by the identity engine.
	ErrNotificationFailed = errors.New("verification notification dispatch failed")
	// ErrTokenInvalid is an exported constant or variable used by the identity engine.
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrEngineNotReady is an exported constant or variable used by the identity engine.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrAccountNotFound is the sentinel an [AccountStore] must return from
	// lookups when no row matches.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStoreDuplicateEmail is the sentinel an [AccountStore] must return from
	// Create when the email uniqueness constraint is violated.
	ErrStoreDuplicateEmail = errors.New("store duplicate email")
	// ErrStoreDuplicateSubject is the sentinel an [AccountStore] must return from
	// Create when the federated subject uniqueness constraint is violated.
	ErrStoreDuplicateSubject = errors.New("store duplicate subject")
)
