package retrieval

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsvani/newsvani/internal/infra"
	"github.com/newsvani/newsvani/internal/textutil"
	"github.com/newsvani/newsvani/pkg/models"
)

// minAnchorText is the minimum link-text length for the anchor-scan fallback.
// Shorter anchors are almost always nav-bar or footer noise.
const minAnchorText = 15

// genericSelectors are tried when a site has no registered selector strategy
// or its site-specific selectors matched nothing.
var genericSelectors = []string{"article", ".article", ".story", ".news-item"}

// --- Selector strategy ---

// SelectorStrategy extracts candidates by trying an ordered list of CSS
// selectors and taking the first selector that yields any items.
type SelectorStrategy struct {
	name      string
	selectors []string
}

// NewSelectorStrategy creates a selector strategy with the given name and
// cascade of CSS selectors.
func NewSelectorStrategy(name string, selectors ...string) *SelectorStrategy {
	return &SelectorStrategy{name: name, selectors: selectors}
}

func (s *SelectorStrategy) Name() string { return s.name }

func (s *SelectorStrategy) Extract(doc *goquery.Document, base *url.URL, company string, limit int) []models.ArticleCandidate {
	for _, selector := range s.selectors {
		candidates := extractWithSelector(doc, base, selector, limit)
		if len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

// extractWithSelector pulls candidates out of elements matching one selector.
// The link is the element itself when it is an anchor, otherwise the first
// anchor inside it.
func extractWithSelector(doc *goquery.Document, base *url.URL, selector string, limit int) []models.ArticleCandidate {
	var candidates []models.ArticleCandidate
	seen := make(map[string]bool)

	doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel
		if !sel.Is("a") {
			link = sel.Find("a").First()
		}
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			return true
		}

		title := textutil.CleanText(link.Text())
		if title == "" {
			title = textutil.CleanText(sel.Find("h1, h2, h3, h4").First().Text())
		}
		if title == "" {
			return true
		}

		seen[abs] = true
		candidates = append(candidates, models.ArticleCandidate{
			Title:   title,
			URL:     abs,
			Source:  hostOf(abs),
			Snippet: textutil.CleanText(sel.Find("p").First().Text()),
		})
		return len(candidates) < limit
	})

	return candidates
}

// --- Anchor-scan strategy ---

// AnchorScanStrategy is the last-resort extraction pass: scan every anchor on
// the page and keep those whose link text mentions the company and exceeds a
// minimum length.
type AnchorScanStrategy struct{}

func (AnchorScanStrategy) Name() string { return "anchor_scan" }

func (AnchorScanStrategy) Extract(doc *goquery.Document, base *url.URL, company string, limit int) []models.ArticleCandidate {
	var candidates []models.ArticleCandidate
	seen := make(map[string]bool)
	companyLower := strings.ToLower(company)

	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := textutil.CleanText(sel.Text())
		if len(text) < minAnchorText || !strings.Contains(strings.ToLower(text), companyLower) {
			return true
		}
		href, ok := sel.Attr("href")
		if !ok {
			return true
		}
		abs := resolveURL(base, href)
		if abs == "" || seen[abs] {
			return true
		}

		seen[abs] = true
		candidates = append(candidates, models.ArticleCandidate{
			Title:  text,
			URL:    abs,
			Source: hostOf(abs),
		})
		return len(candidates) < limit
	})

	return candidates
}

// --- Cascade strategy ---

// CascadeStrategy tries each inner strategy in order and returns the first
// non-empty result. It is the default for unregistered hosts: generic
// selectors first, anchor scan last.
type CascadeStrategy struct {
	strategies []Strategy
}

// NewCascadeStrategy combines strategies into a first-hit-wins cascade.
func NewCascadeStrategy(strategies ...Strategy) *CascadeStrategy {
	return &CascadeStrategy{strategies: strategies}
}

// DefaultCascade returns the fallback cascade: generic article selectors,
// then the anchor-text heuristic.
func DefaultCascade() *CascadeStrategy {
	return NewCascadeStrategy(
		NewSelectorStrategy("generic", genericSelectors...),
		AnchorScanStrategy{},
	)
}

func (c *CascadeStrategy) Name() string { return "cascade" }

func (c *CascadeStrategy) Extract(doc *goquery.Document, base *url.URL, company string, limit int) []models.ArticleCandidate {
	for _, s := range c.strategies {
		if candidates := s.Extract(doc, base, company, limit); len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

// --- Site scraping ---

// scrapeSite fetches a site's search page for the company and extracts up to
// limit candidates using the registered strategy for that host.
func scrapeSite(ctx context.Context, limiter *infra.HostLimiter, registry *Registry, site Site, company string, limit int) ([]models.ArticleCandidate, error) {
	searchURL := fmt.Sprintf(site.SearchURL, url.QueryEscape(company))

	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Host, err)
	}

	if err := limiter.Wait(ctx, base.Hostname()); err != nil {
		return nil, err
	}

	body, err := infra.Get(ctx, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Host, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("site %s: parse HTML: %w", site.Host, err)
	}

	candidates := registry.For(site.Host).Extract(doc, base, company, limit)

	// Candidates with no resolvable source inherit the searched site's host.
	for i := range candidates {
		if candidates[i].Source == "" {
			candidates[i].Source = site.Host
		}
	}

	return candidates, nil
}
