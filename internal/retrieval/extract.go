package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/newsvani/newsvani/internal/infra"
	"github.com/newsvani/newsvani/internal/textutil"
)

// minViableBody is the minimum body length (in bytes) for the boilerplate
// removal pass to be considered successful; shorter results trigger the
// raw-text fallback.
const minViableBody = 100

// contentSelectors are the containers preferred by the boilerplate removal
// pass, tried in order.
var contentSelectors = []string{
	"article",
	"[role='main']",
	"main",
	".article-body",
	".article-content",
	".story-body",
	".post-content",
	".entry-content",
	"#content",
}

// extractBody fetches a page and extracts its readable text. The boilerplate
// removal pass strips script/style and prefers article/content containers;
// when its result is too short the whole-page text is used instead. A fetch
// or parse failure returns an error and the caller drops that candidate —
// per-article failure never propagates to the pipeline.
func extractBody(ctx context.Context, limiter *infra.HostLimiter, pageURL string) (string, error) {
	host := hostOf(pageURL)
	if host == "" {
		return "", fmt.Errorf("extract %s: unparseable URL", pageURL)
	}
	if err := limiter.Wait(ctx, host); err != nil {
		return "", err
	}

	body, err := infra.Get(ctx, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("extract %s: parse HTML: %w", pageURL, err)
	}

	// Boilerplate removal: drop non-content elements before reading text.
	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	text := contentText(doc)
	if len(text) < minViableBody {
		// Fallback: whole-page text.
		text = textutil.CleanText(doc.Find("body").Text())
	}

	if text == "" {
		return "", fmt.Errorf("extract %s: no text content", pageURL)
	}
	return text, nil
}

// contentText returns the text of the first content container that yields a
// viable amount of text, built paragraph-wise to avoid run-together words.
func contentText(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}

		var parts []string
		sel.Find("p, h1, h2, h3, li").Each(func(_ int, p *goquery.Selection) {
			if t := textutil.CleanText(p.Text()); t != "" {
				parts = append(parts, t)
			}
		})

		text := strings.Join(parts, " ")
		if text == "" {
			text = textutil.CleanText(sel.Text())
		}
		if len(text) >= minViableBody {
			return text
		}
	}
	return ""
}
