package ports

// Tokenizer converts between identities and signed tokens.
type Tokenizer interface {
	// IssueChallenge mints a signed, time-bound challenge token.
	IssueChallenge() (string, error)

	// VerifyChallenge reports whether the challenge token carries a valid
	// signature, the expected issuer and an unexpired timestamp. It fails
	// closed: every failure collapses to false, nothing is leaked about
	// which check broke.
	VerifyChallenge(token string) bool

	// IssueSession mints a session token for the user, valid for the
	// configured TTL plus a small random jitter.
	IssueSession(userID int64) (string, error)

	// IssueRefresh mints the durable refresh token. No expiry claim.
	IssueRefresh(userID int64) (string, error)

	// VerifyToken checks signature, issuer and audience of a session or
	// refresh token and returns the uid claim.
	VerifyToken(token string) (int64, error)
}
