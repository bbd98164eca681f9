package core

import "errors"

var (
	ErrInvalidProofOfWork = errors.New("invalid proof of work solution")
	ErrChallengeReplayed  = errors.New("challenge already consumed")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrURLNotFound        = errors.New("url not found")
	ErrInvalidToken       = errors.New("invalid token")
)
