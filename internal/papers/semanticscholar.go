package papers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paperdesk/paperdesk/internal/domain"
)

// semanticScholarAPIBase is the Semantic Scholar paper search endpoint.
// Declared as a var so tests can substitute an httptest server.
var semanticScholarAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticScholarFields = "title,authors,year,url,abstract"

// SemanticScholarClient queries the Semantic Scholar Graph API.
type SemanticScholarClient struct {
	client    *http.Client
	enabled   bool
	userAgent string
}

// NewSemanticScholarClient creates a new SemanticScholarClient instance
func NewSemanticScholarClient(cfg ClientConfig) *SemanticScholarClient {
	return &SemanticScholarClient{
		client:    newHTTPClient(cfg),
		enabled:   cfg.Enabled,
		userAgent: cfg.userAgent(),
	}
}

// Name returns the provider label
func (c *SemanticScholarClient) Name() string { return domain.PaperSourceSemanticScholar }

// SearchByKeywords queries Semantic Scholar for papers matching the keyword
// query. When the provider is disabled no network I/O is attempted.
func (c *SemanticScholarClient) SearchByKeywords(ctx context.Context, query string, limit int) []domain.PaperCandidate {
	if !c.enabled {
		return nil
	}
	limit = normalizeLimit(limit)

	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(limit)},
		"fields": {semanticScholarFields},
	}
	reqURL := semanticScholarAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Printf("semantic scholar search failed: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("semantic scholar search failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("semantic scholar search failed: %v", fmt.Errorf("semantic scholar returned HTTP %d", resp.StatusCode))
		return nil
	}

	var sr semanticScholarResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		log.Printf("semantic scholar search failed: parsing response: %v", err)
		return nil
	}

	var papers []domain.PaperCandidate
	for _, entry := range sr.Data {
		if len(papers) >= limit {
			break
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		names := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			if a.Name != "" {
				names = append(names, a.Name)
			}
		}

		papers = append(papers, domain.PaperCandidate{
			Title:      title,
			Authors:    strings.Join(names, ", "),
			Source:     domain.PaperSourceSemanticScholar,
			ExternalID: entry.PaperID,
			URL:        entry.URL,
			Abstract:   entry.Abstract,
		})
	}

	return papers
}

// Semantic Scholar API JSON structures. Entries missing optional fields are
// accepted with those fields empty.
type semanticScholarResponse struct {
	Total  int                    `json:"total"`
	Offset int                    `json:"offset"`
	Data   []semanticScholarPaper `json:"data"`
}

type semanticScholarPaper struct {
	PaperID  string                  `json:"paperId"`
	Title    string                  `json:"title"`
	Abstract string                  `json:"abstract"`
	Year     int                     `json:"year"`
	URL      string                  `json:"url"`
	Authors  []semanticScholarAuthor `json:"authors"`
}

type semanticScholarAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}
