// Package authsmith provides an identity and session-issuance engine with password
// and federated login, Redis-backed one-time email-verification challenges, and
// self-contained signed bearer tokens.
//
// The package is designed for concurrent server workloads: Engine methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authsmith is the public surface. It exposes [Engine], [Builder], [Config], the
// [AccountStore] and [NotificationSender] collaborator interfaces, and value types
// (RegisterResult, LoginResult, MetricsSnapshot, etc.). Credential hashing lives
// in password/, session token minting in token/, and federated assertion
// verification in idtoken/.
//
// # What this package must NOT do
//
//   - Own account persistence. The [AccountStore] collaborator enforces email and
//     subject uniqueness at write time; the engine only reacts to its sentinels.
//   - Deliver mail. The [NotificationSender] collaborator receives the challenge
//     code and expiry window; transport details never enter the engine.
//   - Keep server-side session state. A minted token is the only session artifact
//     and its lifetime is bounded solely by its embedded expiry.
//
// # Consistency contract
//
// Registration and federated find-or-create are check-then-act races by nature.
// Correctness rests on the store's write-time uniqueness constraints, never on a
// preceding read: a duplicate sentinel from Create is mapped to the caller-facing
// duplicate error (registration) or resolved by re-reading the winner's record
// (federated login).
package authsmith
