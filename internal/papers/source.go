// Package papers provides best-effort clients for the external academic
// paper search providers. Provider failures never surface to callers: a
// timeout, transport error, or bad status yields an empty candidate list.
package papers

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/paperdesk/paperdesk/internal/domain"
)

const defaultUserAgent = "Paperdesk/1.0"

// Searcher is the common surface of every paper search provider.
type Searcher interface {
	// Name returns the provider label used for source attribution.
	Name() string
	// SearchByKeywords finds papers matching a keyword query, capped at
	// limit. Failures yield an empty result.
	SearchByKeywords(ctx context.Context, query string, limit int) []domain.PaperCandidate
}

// TrendingSource is implemented by providers that can list recently
// submitted papers for a set of subject categories.
type TrendingSource interface {
	// RecentByCategory lists recent papers in the given categories, newest
	// first, capped at limit. Failures yield an empty result.
	RecentByCategory(ctx context.Context, categories []string, limit int) []domain.PaperCandidate
}

// ClientConfig holds the shared knobs of a provider client.
type ClientConfig struct {
	Enabled        bool
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string
}

func (c ClientConfig) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return defaultUserAgent
}

// newHTTPClient builds an HTTP client with independently bounded connect and
// read timeouts.
func newHTTPClient(cfg ClientConfig) *http.Client {
	connect := cfg.ConnectTimeout
	if connect <= 0 {
		connect = 15 * time.Second
	}
	read := cfg.ReadTimeout
	if read <= 0 {
		read = 60 * time.Second
	}

	return &http.Client{
		Timeout: read,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: connect}).DialContext,
		},
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	return limit
}
