package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"

	"github.com/newsvani/newsvani/internal/infra"
	"github.com/newsvani/newsvani/pkg/models"
)

// SearchClient queries a Google Custom Search-shaped JSON API for news
// results. It is the first retrieval tier; any failure (non-2xx, network
// error, malformed body) yields zero candidates and is reported, not raised.
type SearchClient struct {
	endpoint string
	apiKey   string
	engineID string
	doGet    getFunc
}

// getFunc matches infra.Get; injectable for tests.
type getFunc func(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error)

// NewSearchClient creates a search API client. endpoint defaults to the
// Google Custom Search endpoint when empty.
func NewSearchClient(endpoint, apiKey, engineID string) *SearchClient {
	if endpoint == "" {
		endpoint = "https://www.googleapis.com/customsearch/v1"
	}
	return &SearchClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		engineID: engineID,
		doGet:    infra.Get,
	}
}

// Configured reports whether the client has credentials to issue queries.
func (c *SearchClient) Configured() bool {
	return c.apiKey != "" && c.engineID != ""
}

// searchResponse mirrors the structured hit list returned by the API.
// Absence of items means zero candidates.
type searchResponse struct {
	Items []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		DisplayLink string `json:"displayLink"`
		Snippet     string `json:"snippet"`
	} `json:"items"`
}

// Search issues one "<company> news" query and parses the hit list into
// candidates, at most limit.
func (c *SearchClient) Search(ctx context.Context, company string, limit int) ([]models.ArticleCandidate, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", fmt.Sprintf("%s news", company))
	params.Set("num", fmt.Sprintf("%d", limit))

	body, err := c.doGet(ctx, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search API: %w", err)
	}
	defer body.Close()

	var resp searchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("search API: decode response: %w", err)
	}

	candidates := make([]models.ArticleCandidate, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Link == "" {
			continue
		}
		source := item.DisplayLink
		if source == "" {
			source = hostOf(item.Link)
		}
		candidates = append(candidates, models.ArticleCandidate{
			Title:   item.Title,
			URL:     item.Link,
			Source:  source,
			Snippet: item.Snippet,
		})
		if len(candidates) >= limit {
			break
		}
	}

	return candidates, nil
}
