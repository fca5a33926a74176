package retrieval

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/newsvani/newsvani/pkg/models"
)

// syntheticCount is the fixed number of fallback articles generated when no
// scrapable candidate survives.
const syntheticCount = 5

// syntheticTemplates drive the deterministic fallback generator. The bodies
// intentionally span positive, negative, and neutral wording so downstream
// aggregation still has a meaningful distribution to work with.
var syntheticTemplates = []struct {
	slug  string
	title string
	body  string
}{
	{
		slug:  "quarterly-results",
		title: "%s Reports Quarterly Results Amid Market Watch",
		body: "%s announced its quarterly results this week, with revenue and earnings figures drawing close attention from investors. Analysts noted steady growth in the company's core segments, while management highlighted an expansion strategy targeting new markets. The stock saw moderate movement following the release as the market weighed the financial outlook.",
	},
	{
		slug:  "product-launch",
		title: "%s Unveils New Product Line in Push for Innovation",
		body: "%s introduced a new product line as part of its innovation roadmap, with executives describing the launch as a milestone for the company. The release positions the firm against competitors in a crowded sector, and early reception suggests the technology could boost its market share. Research and development spending has increased to support the effort.",
	},
	{
		slug:  "regulatory-review",
		title: "%s Faces Regulatory Review Over Compliance Practices",
		body: "Regulators have opened a review into %s concerning compliance with recent policy changes. The investigation adds uncertainty for the company, and some analysts flagged concern about potential penalties. Legal representatives stated the company is cooperating fully with the government inquiry while it continues normal operations.",
	},
	{
		slug:  "leadership-update",
		title: "%s Leadership Outlines Strategy at Industry Event",
		body: "The chief executive of %s outlined the company's strategy at an industry conference, covering management priorities for the coming year. The board is said to support continued investment in digital initiatives. Observers described the remarks as measured, offering few surprises for the sector.",
	},
	{
		slug:  "market-performance",
		title: "%s Stock Performance Draws Mixed Analyst Views",
		body: "Shares of %s have seen mixed performance recently, with some analysts citing strong fundamentals and others pointing to a decline in momentum. Investment houses remain divided on the outlook, with earnings expectations and broader economy conditions driving the debate over the stock's direction.",
	},
}

// SyntheticArticles deterministically fabricates the fixed-size fallback set
// for a company. All records carry the synthetic source domain so callers can
// detect degraded-mode operation.
func SyntheticArticles(company string) []FetchedArticle {
	slug := url.PathEscape(strings.ToLower(strings.ReplaceAll(company, " ", "-")))

	articles := make([]FetchedArticle, 0, syntheticCount)
	for _, tpl := range syntheticTemplates[:syntheticCount] {
		articles = append(articles, FetchedArticle{
			ArticleCandidate: models.ArticleCandidate{
				Title:  fmt.Sprintf(tpl.title, company),
				URL:    fmt.Sprintf("https://%s/%s/%s", models.SyntheticSource, slug, tpl.slug),
				Source: models.SyntheticSource,
			},
			Body: fmt.Sprintf(tpl.body, company),
		})
	}
	return articles
}
