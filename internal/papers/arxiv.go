package papers

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/paperdesk/paperdesk/internal/domain"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// DefaultTrendingCategories is the fixed category set queried for the
// trending tier.
var DefaultTrendingCategories = []string{"cs.AI", "cs.LG", "cs.CV"}

// maxQueryLen bounds the search_query parameter so the request URL stays
// within what the arXiv API accepts.
const maxQueryLen = 100

// ArxivClient queries the arXiv Atom API.
type ArxivClient struct {
	client    *http.Client
	enabled   bool
	userAgent string
}

// NewArxivClient creates a new ArxivClient instance
func NewArxivClient(cfg ClientConfig) *ArxivClient {
	return &ArxivClient{
		client:    newHTTPClient(cfg),
		enabled:   cfg.Enabled,
		userAgent: cfg.userAgent(),
	}
}

// Name returns the provider label
func (c *ArxivClient) Name() string { return domain.PaperSourceArxiv }

// SearchByKeywords queries arXiv for papers matching the keyword query.
// When the provider is disabled no network I/O is attempted.
func (c *ArxivClient) SearchByKeywords(ctx context.Context, query string, limit int) []domain.PaperCandidate {
	if !c.enabled {
		return nil
	}

	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}

	reqURL := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d",
		arxivAPIBase, url.QueryEscape(query), normalizeLimit(limit))

	papers, err := c.fetch(ctx, reqURL, normalizeLimit(limit))
	if err != nil {
		log.Printf("arxiv search failed: %v", err)
		return nil
	}
	return papers
}

// RecentByCategory lists the most recently submitted papers in the given
// subject categories, newest first.
func (c *ArxivClient) RecentByCategory(ctx context.Context, categories []string, limit int) []domain.PaperCandidate {
	if !c.enabled {
		return nil
	}
	if len(categories) == 0 {
		categories = DefaultTrendingCategories
	}

	terms := make([]string, len(categories))
	for i, cat := range categories {
		terms[i] = "cat:" + cat
	}

	reqURL := fmt.Sprintf("%s?search_query=%s&sortBy=submittedDate&sortOrder=descending&start=0&max_results=%d",
		arxivAPIBase, strings.Join(terms, "+OR+"), normalizeLimit(limit))

	papers, err := c.fetch(ctx, reqURL, normalizeLimit(limit))
	if err != nil {
		log.Printf("arxiv recent-by-category failed: %v", err)
		return nil
	}
	return papers
}

func (c *ArxivClient) fetch(ctx context.Context, reqURL string, limit int) ([]domain.PaperCandidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arxiv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arxiv response: %w", err)
	}

	var papers []domain.PaperCandidate
	for _, entry := range feed.Entries {
		if len(papers) >= limit {
			break
		}

		title := collapseWhitespace(entry.Title)
		if title == "" {
			continue
		}

		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			if name := strings.TrimSpace(a.Name); name != "" {
				names = append(names, name)
			}
		}

		paper := domain.PaperCandidate{
			Title:    title,
			Authors:  strings.Join(names, ", "),
			Source:   domain.PaperSourceArxiv,
			Abstract: collapseWhitespace(entry.Summary),
		}

		if id := extractArxivID(entry.ID); id != "" {
			paper.ExternalID = id
			paper.URL = "https://arxiv.org/abs/" + id
		}

		papers = append(papers, paper)
	}

	return papers, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" -> "2301.07041v1").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.LastIndex(idURL, prefix)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(idURL[idx+len(prefix):])
}

// collapseWhitespace flattens the line-wrapped text arXiv returns inside
// <title> and <summary> elements.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
