// Package sentiment implements lexicon-based polarity scoring and keyword
// topic extraction. It is deterministic and fully offline: no NLP model,
// just weighted word lists. Explicitly simple and replaceable.
package sentiment

import (
	"math"
	"strings"

	"github.com/newsvani/newsvani/pkg/models"
)

// Classification thresholds on the compound score.
const (
	positiveThreshold = 0.05
	negativeThreshold = -0.05
)

// DefaultTopic is injected when no keyword matches so the topic set is never
// empty for non-trivial input.
const DefaultTopic = "Business News"

// positive / negative keyword dictionaries (lowercase).
var positiveWords = map[string]float64{
	"growth": 0.4, "profit": 0.5, "gain": 0.4, "surge": 0.7,
	"rally": 0.6, "record": 0.4, "strong": 0.4, "beat": 0.5,
	"exceed": 0.5, "upgrade": 0.6, "innovative": 0.4, "success": 0.6,
	"positive": 0.4, "upbeat": 0.5, "expansion": 0.4, "breakthrough": 0.6,
	"outperform": 0.6, "recovery": 0.5, "dividend": 0.3, "milestone": 0.4,
	"partnership": 0.3, "launch": 0.2, "win": 0.5, "boost": 0.5,
	"soar": 0.7, "improve": 0.4, "robust": 0.4, "momentum": 0.3,
}

var negativeWords = map[string]float64{
	"loss": 0.5, "decline": 0.5, "drop": 0.4, "fall": 0.4,
	"plunge": 0.7, "crash": 0.8, "weak": 0.4, "miss": 0.5,
	"downgrade": 0.6, "lawsuit": 0.6, "investigation": 0.5, "fraud": 0.8,
	"negative": 0.4, "concern": 0.3, "layoff": 0.6, "cut": 0.3,
	"warning": 0.5, "recall": 0.5, "fine": 0.4, "penalty": 0.5,
	"slump": 0.6, "scandal": 0.7, "risk": 0.3, "debt": 0.3,
	"bankruptcy": 0.9, "default": 0.7, "selloff": 0.7, "struggle": 0.5,
}

// Result holds the outcome of scoring one text.
type Result struct {
	Label    models.Sentiment `json:"label"`
	Compound float64          `json:"compound"` // in [-1, 1]
}

// Score computes a compound polarity score in [-1, 1] for the given text and
// classifies it. Empty input yields Neutral with a zero score, never an error.
func Score(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Label: models.SentimentNeutral, Compound: 0}
	}

	lower := strings.ToLower(text)

	posScore := 0.0
	negScore := 0.0
	matches := 0

	for word, weight := range positiveWords {
		if n := strings.Count(lower, word); n > 0 {
			posScore += weight * float64(n)
			matches += n
		}
	}
	for word, weight := range negativeWords {
		if n := strings.Count(lower, word); n > 0 {
			negScore += weight * float64(n)
			matches += n
		}
	}

	if matches == 0 {
		return Result{Label: models.SentimentNeutral, Compound: 0}
	}

	// Net score normalized by total signal magnitude, damped for texts with
	// very few matches so a single weak keyword stays near neutral.
	compound := (posScore - negScore) / (posScore + negScore)
	compound *= math.Min(1, float64(matches)/3.0*0.5+0.5)

	return Result{Label: classify(compound), Compound: compound}
}

// classify maps a compound score onto the fixed thresholds.
func classify(compound float64) models.Sentiment {
	switch {
	case compound >= positiveThreshold:
		return models.SentimentPositive
	case compound <= negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// topicKeywords maps a topic label to the keywords that select it. A topic is
// assigned when any keyword appears as a case-insensitive substring.
var topicKeywords = map[string][]string{
	"Finance":    {"finance", "financial", "stock", "investment", "investor", "profit", "revenue", "earnings", "market", "economy"},
	"Technology": {"technology", "tech", "digital", "software", "hardware", "app", "application", "innovation", "ai", "artificial intelligence", "machine learning"},
	"Regulation": {"regulation", "regulatory", "compliance", "law", "legal", "legislation", "policy", "government"},
	"Expansion":  {"growth", "expand", "expansion", "global", "international", "new markets", "strategy"},
	"Products":   {"product", "launch", "release", "feature", "service", "solution"},
	"Management": {"ceo", "executive", "leadership", "management", "board", "director", "chairman"},
	"Industry":   {"industry", "sector", "competition", "competitor", "market share"},
	"Innovation": {"innovation", "r&d", "research", "development", "patent", "breakthrough", "disruptive"},
}

// ExtractTopics matches text against the topic lexicon. Topics already in
// exclusions are skipped. If nothing matches and no exclusions were supplied,
// the default topic is returned so the set is never empty.
func ExtractTopics(text string, exclusions map[string]bool) []string {
	lower := strings.ToLower(text)

	var found []string
	for topic, keywords := range topicKeywords {
		if exclusions[topic] {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				found = append(found, topic)
				break
			}
		}
	}

	if len(found) == 0 && len(exclusions) == 0 {
		found = append(found, DefaultTopic)
	}

	sortTopics(found)
	return found
}

// sortTopics sorts topics lexicographically for deterministic output.
// Simple insertion sort — fine for small slices.
func sortTopics(topics []string) {
	for i := 1; i < len(topics); i++ {
		key := topics[i]
		j := i - 1
		for j >= 0 && topics[j] > key {
			topics[j+1] = topics[j]
			j--
		}
		topics[j+1] = key
	}
}
