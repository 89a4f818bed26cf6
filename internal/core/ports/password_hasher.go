package ports

// PasswordHasher is a one-way, salted password hashing primitive.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches hash.
	Verify(hash, password string) bool
}
