// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password. The salt is
	// random per call, so hashing the same input twice yields different
	// outputs. Errors only on an internal cryptographic fault, never on the
	// content of the plaintext.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a stored hash in constant
	// time. A wrong password is (false, nil); an error is returned only when
	// the stored hash itself is malformed.
	Check(password, hash string) (bool, error)
}
