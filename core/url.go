package core

import "fmt"

// UrlInfo describes one shortened URL owned by a user.
type UrlInfo struct {
	ID          int64  `json:"id"`
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	Comment     string `json:"comment"`
	UserID      int64  `json:"userId"`
	Timestamp   int64  `json:"timestamp"`
	Clicks      int64  `json:"clicks"`
	QrClicks    int64  `json:"qrClicks"`
}

// UrlsResponse is one page of a user's URLs.
type UrlsResponse struct {
	Urls       []UrlInfo `json:"urls"`
	TotalPages int       `json:"totalPages"`
}

// UrlStats holds click counts keyed by time-bucket start (millis since
// epoch, as a string).
type UrlStats struct {
	Clicks map[string]int `json:"clicks"`
}

// Period selects the aggregation window for click stats.
type Period string

const (
	PeriodMinute Period = "MINUTE"
	PeriodHour   Period = "HOUR"
	PeriodDay    Period = "DAY"
	PeriodMonth  Period = "MONTH"
	PeriodYear   Period = "YEAR"
)

// BucketSeconds returns the aggregation bucket width for the period.
func (p Period) BucketSeconds() (int64, error) {
	switch p {
	case PeriodMinute:
		return 60, nil
	case PeriodHour:
		return 3600, nil
	case PeriodDay:
		return 86400, nil
	case PeriodMonth:
		return 2592000, nil
	case PeriodYear:
		return 31536000, nil
	}
	return 0, fmt.Errorf("unknown period %q", string(p))
}

// WindowSeconds returns how far back the period looks from now.
// One bucket width per the original protocol: stats for MINUTE cover the
// last minute, for DAY the last day, and so on.
func (p Period) WindowSeconds() (int64, error) {
	return p.BucketSeconds()
}

const shortCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// EncodeID converts a row id into its base62 short code. Digits come out
// least-significant first, matching the original encoding, so codes are
// stable across implementations.
func EncodeID(id int64) string {
	if id <= 0 {
		return ""
	}
	base := int64(len(shortCodeAlphabet))
	buf := make([]byte, 0, 8)
	for num := id; num > 0; num /= base {
		buf = append(buf, shortCodeAlphabet[num%base])
	}
	return string(buf)
}
