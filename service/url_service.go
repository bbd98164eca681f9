package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/samoylenkodmitry/shrtlin/core"
	"github.com/samoylenkodmitry/shrtlin/internal/observability"
	"github.com/samoylenkodmitry/shrtlin/ports"
)

// URLService handles shortening, listing and resolving links.
type URLService struct {
	urls    ports.URLRepository
	clicks  ports.ClickStore
	logger  *observability.Logger
	baseURL string
}

// NewURLService creates a new URL service. baseURL is prepended to short
// codes in responses so clients get a clickable link.
func NewURLService(urls ports.URLRepository, clicks ports.ClickStore, logger *observability.Logger, baseURL string) *URLService {
	return &URLService{
		urls:    urls,
		clicks:  clicks,
		logger:  logger,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Shorten stores the URL for the user and returns its new short link.
// The scheme is stripped before storage; the redirect handler adds it
// back, so "https://example.com" and "example.com" collapse to the same
// stored form.
func (s *URLService) Shorten(ctx context.Context, userID int64, rawURL string) (core.UrlInfo, error) {
	orig := strings.TrimSpace(rawURL)
	orig = strings.TrimPrefix(orig, "http://")
	orig = strings.TrimPrefix(orig, "https://")
	if orig == "" {
		return core.UrlInfo{}, fmt.Errorf("empty url")
	}

	info, err := s.urls.Create(ctx, core.UrlInfo{
		OriginalURL: orig,
		UserID:      userID,
	})
	if err != nil {
		return core.UrlInfo{}, err
	}

	info.ShortURL = s.baseURL + "/" + info.ShortURL
	return info, nil
}

// List returns one page of the user's links with the total page count.
func (s *URLService) List(ctx context.Context, userID int64, page, pageSize int) (core.UrlsResponse, error) {
	if page < 1 || pageSize < 1 || pageSize > 100 {
		return core.UrlsResponse{}, fmt.Errorf("invalid pagination parameters")
	}

	urls, total, err := s.urls.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return core.UrlsResponse{}, err
	}

	for i := range urls {
		urls[i].ShortURL = s.baseURL + "/" + urls[i].ShortURL
	}

	return core.UrlsResponse{
		Urls:       urls,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Remove deletes the user's link, reporting whether anything was
// deleted. Removing someone else's link reports false, not an error.
func (s *URLService) Remove(ctx context.Context, userID, urlID int64) (bool, error) {
	return s.urls.Remove(ctx, urlID, userID)
}

// Stats returns the bucketed click counts for one of the user's links.
// A click store outage degrades to an empty chart.
func (s *URLService) Stats(ctx context.Context, urlID int64, period core.Period) (core.UrlStats, error) {
	counts, err := s.clicks.Range(ctx, urlID, period)
	if err != nil {
		if _, perr := period.BucketSeconds(); perr != nil {
			return core.UrlStats{}, perr
		}
		s.logger.Warn("failed to fetch click stats", map[string]any{
			"url_id": urlID,
			"error":  err.Error(),
		})
		counts = map[string]int{}
	}
	return core.UrlStats{Clicks: counts}, nil
}

// Resolve maps a short code to its redirect target, counting the click.
func (s *URLService) Resolve(ctx context.Context, code string, qr bool) (string, error) {
	info, err := s.urls.GetByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if err := s.urls.IncrementClicks(ctx, info.ID, qr); err != nil {
		s.logger.Warn("failed to increment clicks", map[string]any{
			"url_id": info.ID,
			"error":  err.Error(),
		})
	}
	if err := s.clicks.Record(ctx, info.ID, qr); err != nil {
		s.logger.Warn("failed to record click", map[string]any{
			"url_id": info.ID,
			"error":  err.Error(),
		})
	}

	return "http://" + info.OriginalURL, nil
}
