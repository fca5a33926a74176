// Package retrieval implements the tiered article retrieval pipeline.
//
// Four tiers are attempted in fixed escalation order, each only when the
// prior tiers left a deficit: a structured search API, direct scraping of a
// primary site list, alternative sources (a second site list plus RSS feeds),
// and finally a deterministic synthetic generator that guarantees the
// pipeline never returns an empty set.
package retrieval

import (
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsvani/newsvani/pkg/models"
)

// Tier identifies one retrieval strategy in the escalation order.
type Tier string

const (
	TierSearchAPI   Tier = "search_api"
	TierPrimary     Tier = "primary_sites"
	TierAlternative Tier = "alternative_sources"
	TierSynthetic   Tier = "synthetic"
)

// TierReport records the outcome of one tier so degraded-mode operation is
// structural rather than inferred from logs. A tier failure never aborts the
// pipeline; it is captured here and the next tier makes up the deficit.
type TierReport struct {
	Tier       Tier   `json:"tier"`
	Candidates int    `json:"candidates"`
	Skipped    bool   `json:"skipped,omitempty"` // prior tiers were sufficient or deadline hit
	Error      string `json:"error,omitempty"`
}

// Strategy extracts article candidates from a parsed search-results page.
// Implementations must resolve relative links against base and cap output
// at limit.
type Strategy interface {
	// Name identifies the strategy for reporting.
	Name() string

	// Extract returns candidates found in doc, at most limit.
	Extract(doc *goquery.Document, base *url.URL, company string, limit int) []models.ArticleCandidate
}

// Registry maps a host to its extraction strategy. Sites with no registered
// strategy get the fallback cascade, so new sites work without touching
// dispatch logic.
type Registry struct {
	mu       sync.RWMutex
	byHost   map[string]Strategy
	fallback Strategy
}

// NewRegistry creates a registry with the given fallback strategy.
func NewRegistry(fallback Strategy) *Registry {
	return &Registry{
		byHost:   make(map[string]Strategy),
		fallback: fallback,
	}
}

// Register binds a strategy to a host (e.g. "techcrunch.com"). Subdomains of
// a registered host resolve to the same strategy.
func (r *Registry) Register(host string, s Strategy) {
	r.mu.Lock()
	r.byHost[strings.ToLower(host)] = s
	r.mu.Unlock()
}

// For returns the strategy for the given host, falling back to the default
// cascade when none is registered.
func (r *Registry) For(host string) Strategy {
	host = strings.ToLower(host)
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byHost[host]; ok {
		return s
	}
	// Match registered parent domains ("www.techcrunch.com" → "techcrunch.com").
	for registered, s := range r.byHost {
		if strings.HasSuffix(host, "."+registered) {
			return s
		}
	}
	return r.fallback
}

// resolveURL turns a possibly relative href into an absolute URL using the
// page's scheme and host. Returns "" for unusable hrefs.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// hostOf extracts the bare host (without "www.") from an absolute URL.
func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
