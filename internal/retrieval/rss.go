package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/newsvani/newsvani/internal/textutil"
	"github.com/newsvani/newsvani/pkg/models"
)

// fetchFeed parses one RSS feed and returns items that mention the company
// in the title or description, at most limit.
func fetchFeed(ctx context.Context, parser *gofeed.Parser, feed Feed, company string, limit int) ([]models.ArticleCandidate, error) {
	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse RSS %s: %w", feed.Name, err)
	}

	companyLower := strings.ToLower(company)

	var candidates []models.ArticleCandidate
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		content := strings.ToLower(item.Title + " " + item.Description)
		if !strings.Contains(content, companyLower) {
			continue
		}
		candidates = append(candidates, models.ArticleCandidate{
			Title:   textutil.CleanText(item.Title),
			URL:     item.Link,
			Source:  hostOf(item.Link),
			Snippet: textutil.CleanText(stripTags(item.Description)),
		})
		if len(candidates) >= limit {
			break
		}
	}

	return candidates, nil
}

// stripTags removes HTML tags from RSS descriptions. Feed descriptions are
// small so a simple scan is enough.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
