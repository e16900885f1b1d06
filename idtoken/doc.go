// Package idtoken validates identity assertions minted by an external,
// federated issuer and extracts the stable subject identifier and claimed
// email.
//
// # Trust boundary
//
// This is the single point where externally issued credentials enter the
// system. Validation is fail-closed: signature against the issuer's published
// keys (selected by kid), audience match against the deployment's registered
// client identifier, issuer match, expiry, and a bounded tolerance for
// assertions issued in the future. Any failure is fatal to the request.
//
// The issuer's email_verified claim is extracted verbatim; whether to trust
// it is the engine's decision, not this package's.
package idtoken
