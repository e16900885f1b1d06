// Package middleware exposes an HTTP middleware adapter for session-token
// enforcement built on top of authsmith.Engine validation.
//
// # Guards
//
//   - [Guard] — bearer-token verification for any wrapped handler.
//   - [RequireVerified] — additionally rejects tokens minted for accounts
//     whose email was unverified at issuance.
//
// Each guard reads the Authorization header, calls Engine.ValidateToken, and
// injects the validated claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.ValidateToken.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access Redis or the account store.
//   - Make decisions beyond pass/reject from Engine.ValidateToken.
package middleware
