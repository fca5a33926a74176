// Package textutil provides text normalization, cleanup, extractive
// summarization, and chunking helpers used across the pipeline.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`(?:[.!?])\s+`)
)

// SanitizeCompanyName normalizes a company name for use as a cache key and
// search term: accents are folded to ASCII, special characters removed, and
// whitespace collapsed.
func SanitizeCompanyName(name string) string {
	if name == "" {
		return ""
	}

	// Fold accents: decompose, drop combining marks.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	folded = nonWordRe.ReplaceAllString(folded, "")
	folded = multiSpaceRe.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}

// CleanText collapses runs of whitespace into single spaces and trims.
func CleanText(s string) string {
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// SplitSentences splits text on sentence-ending punctuation followed by
// whitespace. Terminal punctuation stays attached to its sentence.
func SplitSentences(text string) []string {
	if text == "" {
		return nil
	}
	locs := sentenceRe.FindAllStringIndex(text, -1)
	var out []string
	start := 0
	for _, loc := range locs {
		// loc[0]+1 keeps the punctuation mark with the sentence.
		s := strings.TrimSpace(text[start : loc[0]+1])
		if s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

// ExtractFragments pulls up to maxFragments key fragments out of an article
// body. Sentences shorter than minLength are dropped as likely boilerplate;
// adjacent sentences are packed into fragments of at most maxLength runes.
func ExtractFragments(fullText string, maxFragments, minLength, maxLength int) []string {
	if fullText == "" {
		return nil
	}

	var sentences []string
	for _, s := range SplitSentences(fullText) {
		if len(s) >= minLength {
			sentences = append(sentences, s)
		}
	}

	var fragments []string
	current := ""
	for _, sentence := range sentences {
		if len(current)+len(sentence) <= maxLength {
			if current == "" {
				current = sentence
			} else {
				current += " " + sentence
			}
			continue
		}
		if current != "" {
			fragments = append(fragments, current)
			current = sentence
			if len(fragments) >= maxFragments {
				break
			}
		}
	}
	if current != "" && len(fragments) < maxFragments {
		fragments = append(fragments, current)
	}

	// Top up from remaining sentences, truncating overlong ones.
	if len(fragments) < maxFragments && len(fragments) < len(sentences) {
		for _, sentence := range sentences[len(fragments):] {
			if len(fragments) >= maxFragments {
				break
			}
			if len(sentence) <= maxLength {
				fragments = append(fragments, sentence)
			} else {
				fragments = append(fragments, sentence[:maxLength]+"...")
			}
		}
	}

	return fragments
}

// Summarize produces a short extractive summary of an article body.
func Summarize(fullText string) string {
	fragments := ExtractFragments(fullText, 3, 50, 150)
	if len(fragments) == 0 {
		return "No summary available"
	}
	return strings.Join(fragments, " ")
}

// Chunk splits text into chunks of at most maxChars runes, breaking on
// sentence boundaries where possible. Splitting counts runes, not bytes, so
// multi-byte scripts are never cut mid-character. Used to keep TTS requests
// within the backend's length limit.
func Chunk(text string, maxChars int) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	var chunks []string
	current := ""
	currentLen := 0
	for _, sentence := range SplitSentences(text) {
		runes := []rune(sentence)
		for len(runes) > maxChars {
			chunks = append(chunks, string(runes[:maxChars]))
			runes = runes[maxChars:]
		}
		if len(runes) == 0 {
			continue
		}
		sentence = string(runes)
		if current == "" {
			current = sentence
			currentLen = len(runes)
		} else if currentLen+1+len(runes) <= maxChars {
			current += " " + sentence
			currentLen += 1 + len(runes)
		} else {
			chunks = append(chunks, current)
			current = sentence
			currentLen = len(runes)
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
