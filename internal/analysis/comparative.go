// Package analysis reduces a scored article set into a comparative summary:
// sentiment distribution, topic overlap, pairwise coverage differences, and
// a final natural-language verdict.
package analysis

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/newsvani/newsvani/pkg/models"
)

// strongShareThreshold is the share of articles one sentiment must strictly
// exceed for its dedicated "predominantly" verdict template. Below it, a
// plurality only earns the moderate template.
const strongShareThreshold = 70.0

// defaultMaxComparisons caps generated coverage-difference statements.
const defaultMaxComparisons = 3

// Options configure the aggregator.
type Options struct {
	// MaxComparisons caps coverage-difference statements (default 3).
	MaxComparisons int
	// IncludeNeutralInCommon widens the common-topics computation to all
	// three buckets. Off by default: the reference behavior intersects only
	// the Positive and Negative buckets.
	IncludeNeutralInCommon bool
	// Rand drives pair selection when several article pairs qualify.
	// Injectable so runs are reproducible; defaults to a time-seeded source.
	Rand *rand.Rand
}

// Aggregator computes comparative summaries. Deterministic given the article
// order and the injected rand source.
type Aggregator struct {
	opts Options
}

// NewAggregator creates an aggregator with the given options.
func NewAggregator(opts Options) *Aggregator {
	if opts.MaxComparisons <= 0 {
		opts.MaxComparisons = defaultMaxComparisons
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Aggregator{opts: opts}
}

// Aggregate reduces the article sequence into a ComparativeSummary.
func (a *Aggregator) Aggregate(articles []models.ArticleRecord) models.ComparativeSummary {
	summary := models.ComparativeSummary{
		SentimentDistribution: map[models.Sentiment]int{
			models.SentimentPositive: 0,
			models.SentimentNegative: 0,
			models.SentimentNeutral:  0,
		},
	}

	for _, article := range articles {
		summary.SentimentDistribution[article.Sentiment]++
	}

	summary.TopicOverlap = a.topicOverlap(articles)
	summary.CoverageDifferences = a.coverageDifferences(articles)
	summary.FinalVerdict = a.finalVerdict(summary.SentimentDistribution, articles)

	return summary
}

// --- Topic overlap ---

// topicOverlap buckets article topics by sentiment, intersects the Positive
// and Negative buckets for common topics (optionally Neutral too), and
// derives per-bucket unique topics.
func (a *Aggregator) topicOverlap(articles []models.ArticleRecord) models.TopicOverlap {
	buckets := map[models.Sentiment]map[string]bool{
		models.SentimentPositive: {},
		models.SentimentNegative: {},
		models.SentimentNeutral:  {},
	}
	for _, article := range articles {
		for _, topic := range article.Topics {
			buckets[article.Sentiment][topic] = true
		}
	}

	common := intersect(buckets[models.SentimentPositive], buckets[models.SentimentNegative])
	if a.opts.IncludeNeutralInCommon && len(buckets[models.SentimentNeutral]) > 0 {
		common = intersect(common, buckets[models.SentimentNeutral])
	}

	overlap := models.TopicOverlap{
		CommonTopics: sortedKeys(common),
		UniqueTopics: make(map[string][]string, len(buckets)),
	}

	labels := []models.Sentiment{models.SentimentPositive, models.SentimentNegative, models.SentimentNeutral}
	for _, label := range labels {
		if len(buckets[label]) == 0 {
			continue
		}
		others := make(map[string]bool)
		for _, other := range labels {
			if other == label {
				continue
			}
			for topic := range buckets[other] {
				others[topic] = true
			}
		}
		unique := make(map[string]bool)
		for topic := range buckets[label] {
			if !others[topic] {
				unique[topic] = true
			}
		}
		overlap.UniqueTopics[string(label)] = sortedKeys(unique)
	}

	return overlap
}

// --- Coverage differences ---

// pair is a candidate article pair for comparison.
type pair struct{ i, j int }

// coverageDifferences generates up to MaxComparisons templated comparison
// statements. Cross-sentiment pairs are preferred (most informative
// contrast), then same-sentiment pairs with disjoint topics, then a generic
// fallback over the full topic union.
func (a *Aggregator) coverageDifferences(articles []models.ArticleRecord) []models.CoverageDifference {
	if len(articles) < 2 {
		return nil
	}

	// Bound the pairing universe to keep output readable for large sets.
	n := len(articles)
	if n > 5 {
		n = 5
	}

	var crossPairs, disjointPairs, samePairs []pair
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch {
			case articles[i].Sentiment != articles[j].Sentiment:
				crossPairs = append(crossPairs, pair{i, j})
			case disjointTopics(articles[i], articles[j]):
				disjointPairs = append(disjointPairs, pair{i, j})
			default:
				samePairs = append(samePairs, pair{i, j})
			}
		}
	}

	shuffle := func(pairs []pair) {
		a.opts.Rand.Shuffle(len(pairs), func(x, y int) { pairs[x], pairs[y] = pairs[y], pairs[x] })
	}
	shuffle(crossPairs)
	shuffle(disjointPairs)
	shuffle(samePairs)

	ordered := append(append(crossPairs, disjointPairs...), samePairs...)

	var differences []models.CoverageDifference
	for _, pr := range ordered {
		if len(differences) >= a.opts.MaxComparisons {
			break
		}
		differences = append(differences, compare(articles, pr.i, pr.j))
	}
	return differences
}

// compare renders one templated comparison/impact sentence pair. Wording
// branches on sentiment mismatch direction and topic disjointness.
func compare(articles []models.ArticleRecord, i, j int) models.CoverageDifference {
	a, b := articles[i], articles[j]

	topicsA := a.TopicSet()
	topicsB := b.TopicSet()
	uniqueA := subtract(topicsA, topicsB)
	uniqueB := subtract(topicsB, topicsA)

	var comparison, impact string

	switch {
	case a.Sentiment != b.Sentiment:
		comparison = fmt.Sprintf("Article %d has a %s sentiment, while Article %d has a %s sentiment.",
			i+1, strings.ToLower(string(a.Sentiment)), j+1, strings.ToLower(string(b.Sentiment)))
		switch {
		case a.Sentiment == models.SentimentPositive && b.Sentiment == models.SentimentNegative:
			impact = "This contrast could indicate mixed market signals or different perspectives on the company's performance."
		case a.Sentiment == models.SentimentNegative && b.Sentiment == models.SentimentPositive:
			impact = "The contradicting sentiments suggest complex developments that may be interpreted differently by various sources."
		default:
			impact = "The difference in sentiment reflects varying assessments of the company's situation."
		}

	case len(uniqueA) > 0 && len(uniqueB) > 0:
		comparison = fmt.Sprintf("Article %d focuses on %s, while Article %d focuses on %s.",
			i+1, strings.Join(sortedKeys(uniqueA), ", "), j+1, strings.Join(sortedKeys(uniqueB), ", "))
		impact = "These different focus areas provide a more comprehensive view of the company's operations and challenges."

	case len(uniqueA) > 0:
		comparison = fmt.Sprintf("Article %d covers %s, which is not mentioned in Article %d.",
			i+1, strings.Join(sortedKeys(uniqueA), ", "), j+1)
		impact = "These different focus areas provide a more comprehensive view of the company's operations and challenges."

	case len(uniqueB) > 0:
		comparison = fmt.Sprintf("Article %d covers %s, which is not mentioned in Article %d.",
			j+1, strings.Join(sortedKeys(uniqueB), ", "), i+1)
		impact = "These different focus areas provide a more comprehensive view of the company's operations and challenges."

	default:
		comparison = fmt.Sprintf("Article %d and Article %d cover similar topics with %s sentiment.",
			i+1, j+1, strings.ToLower(string(a.Sentiment)))
		impact = fmt.Sprintf("The articles reinforce each other's perspective, adding credibility to the %s outlook.",
			strings.ToLower(string(a.Sentiment)))
	}

	return models.CoverageDifference{Comparison: comparison, Impact: impact}
}

// --- Final verdict ---

// finalVerdict picks a templated verdict. A sentiment whose share strictly
// exceeds strongShareThreshold gets its dedicated template with the count,
// total, and top themes; a plurality gets the moderate template; otherwise
// the mixed template enumerates all three counts.
func (a *Aggregator) finalVerdict(dist map[models.Sentiment]int, articles []models.ArticleRecord) string {
	positive := dist[models.SentimentPositive]
	negative := dist[models.SentimentNegative]
	neutral := dist[models.SentimentNeutral]

	total := positive + negative + neutral
	if total == 0 {
		return "No sentiment analysis available."
	}

	positivePct := float64(positive) / float64(total) * 100
	negativePct := float64(negative) / float64(total) * 100
	themes := topTopics(articles, 3)

	switch {
	case positivePct > strongShareThreshold:
		return fmt.Sprintf("News coverage is predominantly positive (%d of %d articles). Favorable outlook suggested. Key themes: %s.",
			positive, total, strings.Join(themes, ", "))
	case negativePct > strongShareThreshold:
		return fmt.Sprintf("News coverage is predominantly negative (%d of %d articles). Caution advised. Key themes: %s.",
			negative, total, strings.Join(themes, ", "))
	case positive > negative:
		return fmt.Sprintf("News coverage is slightly more positive than negative (%d of %d articles positive). Moderately favorable outlook.",
			positive, total)
	case negative > positive:
		return fmt.Sprintf("News coverage is slightly more negative than positive (%d of %d articles negative). Some concerns present.",
			negative, total)
	default:
		return fmt.Sprintf("News coverage is balanced: %d positive, %d negative, %d neutral. Mixed outlook.",
			positive, negative, neutral)
	}
}

// topTopics returns the n most frequent topics across all articles,
// frequency-descending with lexicographic tie-break.
func topTopics(articles []models.ArticleRecord, n int) []string {
	counts := make(map[string]int)
	for _, article := range articles {
		for _, topic := range article.Topics {
			counts[topic]++
		}
	}

	topics := make([]string, 0, len(counts))
	for topic := range counts {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})

	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

// --- Set helpers ---

func intersect(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func subtract(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool)
	for k := range a {
		if !b[k] {
			out[k] = true
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func disjointTopics(a, b models.ArticleRecord) bool {
	set := a.TopicSet()
	for _, t := range b.Topics {
		if set[t] {
			return false
		}
	}
	return true
}
