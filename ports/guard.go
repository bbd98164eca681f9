package ports

import "context"

// ReplayGuard remembers which challenges were already spent on a
// registration. TryConsume must be atomic: of N concurrent calls with
// the same challenge exactly one may get true.
//
// Implementations are allowed to forget (the memory guard drops its
// whole set under pressure, the redis guard expires entries with the
// challenge TTL); the unique constraint on users.challenge is the
// authoritative second line of defense.
type ReplayGuard interface {
	TryConsume(ctx context.Context, challenge string) (bool, error)
}
