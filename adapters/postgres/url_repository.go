package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samoylenkodmitry/shrtlin/core"
)

// URLRepository implements ports.URLRepository on Postgres.
type URLRepository struct {
	db *sql.DB
}

// NewURLRepository wraps an open database handle.
func NewURLRepository(db *sql.DB) *URLRepository {
	return &URLRepository{db: db}
}

// Create stores the mapping. The short code is the base62 encoding of
// the row id, so the row is inserted first and the code written in the
// same transaction.
func (r *URLRepository) Create(ctx context.Context, info core.UrlInfo) (core.UrlInfo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.UrlInfo{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO urls (original_url, comment, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT
	`, info.OriginalURL, info.Comment, info.UserID).Scan(&info.ID, &info.Timestamp)
	if err != nil {
		return core.UrlInfo{}, fmt.Errorf("insert url: %w", err)
	}

	info.ShortURL = core.EncodeID(info.ID)
	if _, err := tx.ExecContext(ctx, `UPDATE urls SET short_url = $1 WHERE id = $2`, info.ShortURL, info.ID); err != nil {
		return core.UrlInfo{}, fmt.Errorf("set short url: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.UrlInfo{}, fmt.Errorf("commit: %w", err)
	}
	info.Clicks = 0
	info.QrClicks = 0
	return info, nil
}

// ListByUser returns one page of the user's links, newest first, plus
// the total row count.
func (r *URLRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]core.UrlInfo, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM urls WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count urls: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, original_url, short_url, comment, user_id,
		       (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT, clicks, qr_clicks
		FROM urls
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("select urls: %w", err)
	}
	defer rows.Close()

	urls := make([]core.UrlInfo, 0, pageSize)
	for rows.Next() {
		var u core.UrlInfo
		if err := rows.Scan(&u.ID, &u.OriginalURL, &u.ShortURL, &u.Comment,
			&u.UserID, &u.Timestamp, &u.Clicks, &u.QrClicks); err != nil {
			return nil, 0, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate urls: %w", err)
	}
	return urls, total, nil
}

// Remove deletes the link if it belongs to userID.
func (r *URLRepository) Remove(ctx context.Context, id, userID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM urls WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete url: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete url: %w", err)
	}
	return n > 0, nil
}

// GetByCode resolves a short code.
func (r *URLRepository) GetByCode(ctx context.Context, code string) (core.UrlInfo, error) {
	var u core.UrlInfo
	err := r.db.QueryRowContext(ctx, `
		SELECT id, original_url, short_url, comment, user_id,
		       (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT, clicks, qr_clicks
		FROM urls
		WHERE short_url = $1
	`, code).Scan(&u.ID, &u.OriginalURL, &u.ShortURL, &u.Comment,
		&u.UserID, &u.Timestamp, &u.Clicks, &u.QrClicks)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UrlInfo{}, core.ErrURLNotFound
	}
	if err != nil {
		return core.UrlInfo{}, fmt.Errorf("select url: %w", err)
	}
	return u, nil
}

// IncrementClicks bumps the counters atomically in the database.
func (r *URLRepository) IncrementClicks(ctx context.Context, id int64, qr bool) error {
	query := `UPDATE urls SET clicks = clicks + 1 WHERE id = $1`
	if qr {
		query = `UPDATE urls SET clicks = clicks + 1, qr_clicks = qr_clicks + 1 WHERE id = $1`
	}
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment clicks: %w", err)
	}
	if n == 0 {
		return core.ErrURLNotFound
	}
	return nil
}
