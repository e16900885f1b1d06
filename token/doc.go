// Package token mints and verifies the self-contained signed bearer tokens
// issued after successful authentication.
//
// # Design
//
// A token embeds the account snapshot (account ID as subject, email, name,
// verification flag, federated subject) plus issuer, issued-at, and a bounded
// expiry. There is no server-side session record and no revocation list:
// session lifetime equals cryptographic token lifetime.
//
// # What this package must NOT do
//
//   - Decide who may receive a token (the engine withholds minting for
//     unverified accounts).
//   - Perform any I/O; minting and verification are pure CPU.
package token
