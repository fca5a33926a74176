package retrieval

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/newsvani/newsvani/internal/infra"
	"github.com/newsvani/newsvani/pkg/models"
)

// Options tune the pipeline. Zero values are replaced by defaults.
type Options struct {
	// TargetCount is the maximum number of articles returned (default 10).
	TargetCount int
	// LowThreshold triggers the alternative tier when the first two tiers
	// collected fewer candidates than this (default 5).
	LowThreshold int
	// PerSitePrimary caps candidates per primary site (default 5).
	PerSitePrimary int
	// PerSiteAlternative caps candidates per alternative site/feed (default 3).
	PerSiteAlternative int
}

func (o Options) withDefaults() Options {
	if o.TargetCount <= 0 {
		o.TargetCount = 10
	}
	if o.LowThreshold <= 0 {
		o.LowThreshold = 5
	}
	if o.PerSitePrimary <= 0 {
		o.PerSitePrimary = 5
	}
	if o.PerSiteAlternative <= 0 {
		o.PerSiteAlternative = 3
	}
	return o
}

// FetchedArticle is a candidate whose body text has been extracted.
type FetchedArticle struct {
	models.ArticleCandidate
	Body string
}

// Result is the outcome of one retrieval call: the article set plus a
// structured report per tier.
type Result struct {
	Articles []FetchedArticle `json:"articles"`
	Reports  []TierReport     `json:"tier_reports"`
	Degraded bool             `json:"degraded"` // synthetic articles were substituted
}

// Pipeline runs the tiered retrieval. Tiers are strictly ordered — each
// exists to top up the previous tiers' deficit — while fetches within a tier
// run concurrently across hosts, serialized per host by the shared limiter.
type Pipeline struct {
	opts        Options
	search      *SearchClient
	primary     []Site
	alternative []Site
	feeds       []Feed
	registry    *Registry
	limiter     *infra.HostLimiter
	pages       *infra.Cache
	feedParser  *gofeed.Parser
}

// pageCacheTTL bounds how long per-site scrape results are reused. Search
// pages and feeds change slowly relative to a process's burst of requests.
const pageCacheTTL = 10 * time.Minute

// New creates a pipeline with the default site lists and strategy registry.
// search may be nil when no API credentials are configured; the pipeline then
// starts at the scraping tier.
func New(search *SearchClient, opts Options) *Pipeline {
	return &Pipeline{
		opts:        opts.withDefaults(),
		search:      search,
		primary:     PrimarySites,
		alternative: AlternativeSites,
		feeds:       AlternativeFeeds,
		registry:    DefaultRegistry(),
		limiter:     infra.NewHostLimiter(1, 2*time.Second, 500*time.Millisecond),
		pages:       infra.NewCache(pageCacheTTL),
	}
}

// SetSources overrides the site and feed lists. Used by tests and by the
// sources command.
func (p *Pipeline) SetSources(primary, alternative []Site, feeds []Feed) {
	p.primary = primary
	p.alternative = alternative
	p.feeds = feeds
}

// Registry returns the pipeline's strategy registry so callers can register
// additional per-host strategies.
func (p *Pipeline) Registry() *Registry { return p.registry }

// FetchArticles retrieves between 1 and TargetCount articles about a company,
// each with a unique URL. It never returns an empty set: when every real
// source fails, the synthetic tier fabricates a fixed, clearly tagged set.
func (p *Pipeline) FetchArticles(ctx context.Context, company string) (*Result, error) {
	result := &Result{}

	var merged []models.ArticleCandidate
	seen := make(map[string]bool)
	merge := func(candidates []models.ArticleCandidate) int {
		added := 0
		for _, c := range candidates {
			if c.URL == "" || seen[c.URL] {
				continue
			}
			seen[c.URL] = true
			merged = append(merged, c)
			added++
		}
		return added
	}

	// Tier: structured search API.
	result.Reports = append(result.Reports, p.runSearchTier(ctx, company, merge))

	// Tier: primary site scraping, only on deficit.
	if len(merged) < p.opts.TargetCount {
		result.Reports = append(result.Reports, p.runScrapeTier(ctx, TierPrimary, p.primary, nil, p.opts.PerSitePrimary, company, merge))
	} else {
		result.Reports = append(result.Reports, TierReport{Tier: TierPrimary, Skipped: true})
	}

	// Tier: alternative sources, only when still below the low threshold.
	if len(merged) < p.opts.LowThreshold {
		result.Reports = append(result.Reports, p.runScrapeTier(ctx, TierAlternative, p.alternative, p.feeds, p.opts.PerSiteAlternative, company, merge))
	} else {
		result.Reports = append(result.Reports, TierReport{Tier: TierAlternative, Skipped: true})
	}

	// Drop domains static parsing cannot handle, then bound the set.
	merged = filterScrapable(merged)
	if len(merged) > p.opts.TargetCount {
		merged = merged[:p.opts.TargetCount]
	}

	// Per-article body extraction: embarrassingly parallel, failures drop
	// only their own candidate.
	result.Articles = p.extractBodies(ctx, merged)

	// Synthetic tier: guarantee a non-empty result.
	if len(result.Articles) == 0 {
		synthetic := SyntheticArticles(company)
		if len(synthetic) > p.opts.TargetCount {
			synthetic = synthetic[:p.opts.TargetCount]
		}
		result.Articles = synthetic
		result.Degraded = true
		result.Reports = append(result.Reports, TierReport{Tier: TierSynthetic, Candidates: len(synthetic)})
		log.Printf("retrieval: no scrapable articles for %q, substituting %d synthetic records", company, len(synthetic))
	} else {
		result.Reports = append(result.Reports, TierReport{Tier: TierSynthetic, Skipped: true})
	}

	// Unreachable given the synthetic tier; treated as a defect, not a
	// degraded path.
	if len(result.Articles) == 0 {
		return nil, fmt.Errorf("retrieval invariant violated: empty result after synthetic fallback for %q", company)
	}

	return result, nil
}

// runSearchTier queries the search API once. Failures are swallowed into the
// report; retrieval degrades, never aborts.
func (p *Pipeline) runSearchTier(ctx context.Context, company string, merge func([]models.ArticleCandidate) int) TierReport {
	report := TierReport{Tier: TierSearchAPI}

	if p.search == nil || !p.search.Configured() {
		report.Skipped = true
		return report
	}
	if ctx.Err() != nil {
		report.Skipped = true
		report.Error = ctx.Err().Error()
		return report
	}

	candidates, err := p.search.Search(ctx, company, p.opts.TargetCount)
	if err != nil {
		log.Printf("retrieval: search API failed for %q: %v", company, err)
		report.Error = err.Error()
		return report
	}

	report.Candidates = merge(candidates)
	return report
}

// runScrapeTier scrapes a site list (and optional RSS feeds) concurrently
// across hosts. Per-site results land in fixed slots so the merge order is
// deterministic regardless of completion order. Successful per-source results
// are memoized for pageCacheTTL, so repeated retrievals for the same company
// do not re-hit the sources; failures are never cached.
func (p *Pipeline) runScrapeTier(ctx context.Context, tier Tier, sites []Site, feeds []Feed, perSite int, company string, merge func([]models.ArticleCandidate) int) TierReport {
	report := TierReport{Tier: tier}

	if ctx.Err() != nil {
		// Deadline already hit: stop issuing new requests.
		report.Skipped = true
		report.Error = ctx.Err().Error()
		return report
	}

	slots := make([][]models.ArticleCandidate, len(sites)+len(feeds))

	var mu sync.Mutex
	var failures []string
	fail := func(name string) {
		mu.Lock()
		failures = append(failures, name)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			key := "site|" + site.Host + "|" + company
			if cached, ok := p.pages.Get(key); ok {
				slots[i] = cached.([]models.ArticleCandidate)
				return nil
			}
			candidates, err := scrapeSite(gctx, p.limiter, p.registry, site, company, perSite)
			if err != nil {
				// Non-critical: skip failed sites.
				log.Printf("retrieval: %s: %v", tier, err)
				fail(site.Host)
				return nil
			}
			p.pages.Set(key, candidates)
			slots[i] = candidates
			return nil
		})
	}

	if len(feeds) > 0 {
		if p.feedParser == nil {
			p.feedParser = gofeed.NewParser()
			p.feedParser.UserAgent = infra.BrowserUserAgent
		}
		for i, feed := range feeds {
			i, feed := i, feed
			g.Go(func() error {
				key := "feed|" + feed.URL + "|" + company
				if cached, ok := p.pages.Get(key); ok {
					slots[len(sites)+i] = cached.([]models.ArticleCandidate)
					return nil
				}
				candidates, err := fetchFeed(gctx, p.feedParser, feed, company, perSite)
				if err != nil {
					log.Printf("retrieval: %s: %v", tier, err)
					fail(feed.Name)
					return nil
				}
				p.pages.Set(key, candidates)
				slots[len(sites)+i] = candidates
				return nil
			})
		}
	}

	_ = g.Wait() // workers never return errors; failures are collected above

	for _, candidates := range slots {
		report.Candidates += merge(candidates)
	}
	if len(failures) > 0 {
		report.Error = "failed sources: " + strings.Join(failures, ", ")
	}
	return report
}

// extractBodies fetches article bodies in parallel, preserving candidate
// order and dropping candidates whose extraction failed.
func (p *Pipeline) extractBodies(ctx context.Context, candidates []models.ArticleCandidate) []FetchedArticle {
	if len(candidates) == 0 {
		return nil
	}

	bodies := make([]string, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(6)
	for i, candidate := range candidates {
		i, candidate := i, candidate
		g.Go(func() error {
			body, err := extractBody(gctx, p.limiter, candidate.URL)
			if err != nil {
				log.Printf("retrieval: drop %s: %v", candidate.URL, err)
				return nil
			}
			bodies[i] = body
			return nil
		})
	}
	_ = g.Wait()

	articles := make([]FetchedArticle, 0, len(candidates))
	for i, candidate := range candidates {
		if bodies[i] == "" {
			continue
		}
		articles = append(articles, FetchedArticle{ArticleCandidate: candidate, Body: bodies[i]})
	}
	return articles
}

// filterScrapable removes candidates hosted on known non-scrapable domains.
func filterScrapable(candidates []models.ArticleCandidate) []models.ArticleCandidate {
	filtered := candidates[:0]
	for _, c := range candidates {
		if isScrapable(c.URL) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// isScrapable reports whether static HTML parsing has a chance on this URL's
// host.
func isScrapable(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}
	for _, blocked := range nonScrapableDomains {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return false
		}
	}
	return true
}
