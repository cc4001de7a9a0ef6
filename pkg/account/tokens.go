package account

// TokenIssuer abstracts access-token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

// PasswordHasher abstracts the digest algorithm behind register/login.
// Verify reports a mismatch as (false, nil); only an unparseable digest
// is an error.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) (bool, error)
}
