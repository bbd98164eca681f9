package core

// Challenge is handed to a client that wants to register. The token is a
// signed JWT carrying a random nonce and an expiration timestamp; the
// prefix is the difficulty target the solution hash must start with.
type Challenge struct {
	Challenge string `json:"challenge"`
	Prefix    string `json:"prefix"`
}

// ProofOfWork is a solved challenge submitted back to the server.
// Solution is "<challenge>:<nonce>" and must literally start with the
// exact challenge string, which binds the work to that one challenge.
type ProofOfWork struct {
	Challenge string `json:"challenge"`
	Solution  string `json:"solution"`
	Prefix    string `json:"prefix"`
}

// User is an anonymous identity created from one accepted proof of work.
// The ID is server-assigned and permanent; only the nick is mutable.
type User struct {
	ID   int64  `json:"id"`
	Nick string `json:"nick"`
}

// AuthResult bundles the durable refresh token, the short-lived session
// token and the user they belong to. The refresh token carries no expiry
// and is never rotated; leaking it grants permanent access. That is a
// deliberate property of the protocol, not an oversight.
type AuthResult struct {
	RefreshToken string `json:"refreshToken"`
	SessionToken string `json:"sessionToken"`
	User         User   `json:"user"`
}
