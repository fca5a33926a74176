package retrieval

// Site describes one scrapeable news site: its host and a search URL
// template with a single %s verb for the query.
type Site struct {
	Host      string `json:"host"`
	SearchURL string `json:"search_url"`
}

// PrimarySites is the fixed ordered list scraped by the primary tier,
// capped at perSitePrimary candidates each.
var PrimarySites = []Site{
	{Host: "reuters.com", SearchURL: "https://www.reuters.com/site-search/?query=%s"},
	{Host: "cnbc.com", SearchURL: "https://www.cnbc.com/search/?query=%s"},
	{Host: "forbes.com", SearchURL: "https://www.forbes.com/search/?q=%s"},
	{Host: "businessinsider.com", SearchURL: "https://www.businessinsider.com/s?q=%s"},
	{Host: "marketwatch.com", SearchURL: "https://www.marketwatch.com/search?q=%s"},
	{Host: "techcrunch.com", SearchURL: "https://techcrunch.com/?s=%s"},
}

// AlternativeSites is the second fixed list used by the alternative tier,
// capped at perSiteAlternative candidates each.
var AlternativeSites = []Site{
	{Host: "theguardian.com", SearchURL: "https://www.theguardian.com/search?q=%s"},
	{Host: "bbc.com", SearchURL: "https://www.bbc.co.uk/search?q=%s"},
	{Host: "fortune.com", SearchURL: "https://fortune.com/search/?q=%s"},
	{Host: "economictimes.indiatimes.com", SearchURL: "https://economictimes.indiatimes.com/topic/%s"},
}

// Feed is one RSS feed polled by the alternative tier. Items are filtered by
// company-name mention in title or description.
type Feed struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// AlternativeFeeds lists the financial-news RSS feeds for the alternative tier.
var AlternativeFeeds = []Feed{
	{Name: "CNBC Business", URL: "https://www.cnbc.com/id/10001147/device/rss/rss.html"},
	{Name: "MarketWatch Top Stories", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
	{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex"},
}

// nonScrapableDomains lists hosts whose content cannot be extracted by static
// HTML parsing (video platforms, social networks, JS-only apps). Candidates
// from these domains are filtered out after merging.
var nonScrapableDomains = []string{
	"youtube.com",
	"vimeo.com",
	"facebook.com",
	"twitter.com",
	"x.com",
	"instagram.com",
	"tiktok.com",
	"linkedin.com",
	"reddit.com",
}

// DefaultRegistry returns the strategy registry with site-specific selectors
// for the known sites. Each entry falls through to the generic selectors and
// the anchor-text scan when its selectors find nothing.
func DefaultRegistry() *Registry {
	registry := NewRegistry(DefaultCascade())

	register := func(host string, selectors ...string) {
		registry.Register(host, NewCascadeStrategy(
			NewSelectorStrategy(host, selectors...),
			DefaultCascade(),
		))
	}

	register("reuters.com", "li[data-testid='StoryCard']", ".search-result-content")
	register("cnbc.com", ".SearchResult-searchResult", ".resultlink")
	register("forbes.com", ".stream-item", ".search-results article")
	register("businessinsider.com", ".tout-title-link", "section.river-item")
	register("marketwatch.com", ".searchresult", ".article__headline")
	register("techcrunch.com", "a.loop-card__title-link", "h2.post-block__title")
	register("theguardian.com", ".fc-item__container", ".search-results .u-faux-block-link")
	register("bbc.com", "[data-testid='default-promo']", ".ssrcss-promo")
	register("fortune.com", ".searchResult article")
	register("economictimes.indiatimes.com", ".eachStory", ".topicstry")

	return registry
}
