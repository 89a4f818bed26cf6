package ports

// TokenService issues and verifies the bearer tokens that carry a caller's
// identity between requests.
type TokenService interface {
	Issue(username string) (string, error)
	// Validate reports whether token is authentic, unexpired and issued to
	// expectedUsername. It never returns an error: anything doubtful is false.
	Validate(token, expectedUsername string) bool
	// ExtractSubject returns the username a token was issued to without
	// checking expiry. Callers must Validate before trusting the result.
	ExtractSubject(token string) (string, error)
}
