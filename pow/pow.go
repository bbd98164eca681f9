// Package pow implements the hashcash-style puzzle that gates anonymous
// registration: clients brute-force a nonce whose SHA-256 hash carries a
// required hex prefix, servers re-check the hash in constant work.
package pow

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// checkInterval controls how often Solve polls its context. Hashing is
// the hot loop; checking every iteration would cost more than the hash.
const checkInterval = 4096

// Hash returns the lowercase hex SHA-256 of input. Both the solver and
// the validator hash the raw UTF-8 bytes of the string; any other
// encoding would break the protocol between client and server.
func Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Solve searches nonces from 0 upward until Hash("<challenge>:<nonce>")
// starts with prefix. The work is unbounded on purpose: its cost is the
// sybil resistance. The context is the only way out before a solution
// is found, so callers running on an event loop must call this from a
// worker goroutine.
func Solve(ctx context.Context, challenge, prefix string) (core.ProofOfWork, error) {
	for nonce := 0; ; nonce++ {
		if nonce%checkInterval == 0 {
			select {
			case <-ctx.Done():
				return core.ProofOfWork{}, ctx.Err()
			default:
			}
		}
		solution := challenge + ":" + strconv.Itoa(nonce)
		if strings.HasPrefix(Hash(solution), prefix) {
			return core.ProofOfWork{
				Challenge: challenge,
				Solution:  solution,
				Prefix:    prefix,
			}, nil
		}
	}
}

// CheckSolution verifies the arithmetic part of a submission against the
// server-configured difficulty prefix:
//
//  1. the declared prefix equals the configured one (the client-supplied
//     prefix is never trusted for difficulty, only compared),
//  2. the solution literally starts with the challenge string,
//  3. the solution hash starts with the prefix.
//
// Challenge signature and expiry are checked separately by the codec.
func CheckSolution(p core.ProofOfWork, difficultyPrefix string) bool {
	return p.Prefix == difficultyPrefix &&
		strings.HasPrefix(p.Solution, p.Challenge) &&
		strings.HasPrefix(Hash(p.Solution), p.Prefix)
}
