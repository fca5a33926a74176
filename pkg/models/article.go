// Package models defines the shared data structures for NewsVani:
// article candidates and records, comparative summaries, and company reports.
package models

import "time"

// Sentiment is the polarity label assigned to a piece of text.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

// SyntheticSource is the source domain assigned to synthetically generated
// articles. Callers can test for it to detect degraded-mode operation.
const SyntheticSource = "synthetic.newsvani.local"

// ArticleCandidate is a not-yet-fetched reference to an article produced by a
// retrieval tier. The URL is the de-duplication key across all tiers within
// one retrieval call.
type ArticleCandidate struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Source  string `json:"source"` // domain, e.g. "reuters.com"
	Snippet string `json:"snippet,omitempty"`
}

// Synthetic reports whether the candidate was fabricated by the fallback tier.
func (c ArticleCandidate) Synthetic() bool {
	return c.Source == SyntheticSource
}

// ArticleRecord is a fully processed article: summarized, sentiment-scored,
// and topic-tagged. Immutable once created within a pipeline invocation.
type ArticleRecord struct {
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Source         string    `json:"source"`
	Summary        string    `json:"summary"`
	Sentiment      Sentiment `json:"sentiment"`
	SentimentScore float64   `json:"sentiment_score"` // compound score in [-1, 1]
	Topics         []string  `json:"topics"`
}

// Synthetic reports whether the record came from the fallback tier.
func (r ArticleRecord) Synthetic() bool {
	return r.Source == SyntheticSource
}

// TopicSet returns the record's topics as a set.
func (r ArticleRecord) TopicSet() map[string]bool {
	set := make(map[string]bool, len(r.Topics))
	for _, t := range r.Topics {
		set[t] = true
	}
	return set
}

// CoverageDifference is one generated comparison between two articles.
type CoverageDifference struct {
	Comparison string `json:"comparison"`
	Impact     string `json:"impact"`
}

// TopicOverlap describes topic intersection and per-bucket unique topics
// across the sentiment buckets.
type TopicOverlap struct {
	CommonTopics []string            `json:"common_topics"`
	UniqueTopics map[string][]string `json:"unique_topics"` // sentiment label → topics
}

// ComparativeSummary is the cross-article reduction of a scored article set.
// It is deterministic given the article order and the aggregator's rand seed.
type ComparativeSummary struct {
	SentimentDistribution map[Sentiment]int    `json:"sentiment_distribution"`
	TopicOverlap          TopicOverlap         `json:"topic_overlap"`
	CoverageDifferences   []CoverageDifference `json:"coverage_differences"`
	FinalVerdict          string               `json:"final_verdict"`
}

// CompanyReport is the cached end result for one company.
type CompanyReport struct {
	Company        string             `json:"company"`
	Articles       []ArticleRecord    `json:"articles"`
	Comparative    ComparativeSummary `json:"comparative_sentiment"`
	FinalSentiment string             `json:"final_sentiment"`
	Degraded       bool               `json:"degraded"` // true when synthetic articles were substituted
	GeneratedAt    time.Time          `json:"generated_at"`
}
