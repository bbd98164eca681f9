package ports

import (
	"context"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// UserRepository persists anonymous identities keyed by the challenge
// that minted them.
type UserRepository interface {
	// CreateFromChallenge inserts a new user. The challenge column is
	// unique; inserting a spent challenge returns core.ErrUserExists.
	CreateFromChallenge(ctx context.Context, nick, challenge string) (core.User, error)

	// Get returns the user or core.ErrUserNotFound.
	Get(ctx context.Context, id int64) (core.User, error)

	// UpdateNick renames the user, reporting whether a row changed.
	UpdateNick(ctx context.Context, id int64, nick string) (bool, error)
}

// URLRepository persists shortened links.
type URLRepository interface {
	// Create stores the mapping and fills in ID and ShortURL.
	Create(ctx context.Context, info core.UrlInfo) (core.UrlInfo, error)

	// ListByUser returns one page of the user's links, newest first,
	// along with the total row count for pagination.
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]core.UrlInfo, int, error)

	// Remove deletes the link if it belongs to userID, reporting whether
	// a row was deleted.
	Remove(ctx context.Context, id, userID int64) (bool, error)

	// GetByCode resolves a short code or returns core.ErrURLNotFound.
	GetByCode(ctx context.Context, code string) (core.UrlInfo, error)

	// IncrementClicks bumps the click counter, the QR one when qr is set.
	IncrementClicks(ctx context.Context, id int64, qr bool) error
}

// ClickStore records individual click timestamps for per-period stats.
// It is an analytics sidecar: losing it degrades charts, not redirects.
type ClickStore interface {
	Record(ctx context.Context, urlID int64, qr bool) error
	Range(ctx context.Context, urlID int64, period core.Period) (map[string]int, error)
}
