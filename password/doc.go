// Package password implements argon2id credential hashing in PHC string format
// with constant-time verification.
//
// # Design
//
// Hash output embeds the algorithm, version, cost parameters, and salt, so
// Verify needs no external configuration to check a stored hash. Cost
// parameters are validated at construction to keep a single hashing call in
// the tens-of-milliseconds range on commodity hardware while resisting
// offline brute force.
//
// # What this package must NOT do
//
//   - Enforce password strength policy (the engine validates before hashing).
//   - Perform I/O beyond reading crypto/rand for the salt.
package password
