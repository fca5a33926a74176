package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/newsvani/newsvani/internal/analysis"
	"github.com/newsvani/newsvani/internal/resultcache"
	"github.com/newsvani/newsvani/internal/retrieval"
	"github.com/newsvani/newsvani/pkg/models"
)

// stubRenderer records rendered text and returns fixed audio.
type stubRenderer struct {
	lastText string
	audio    []byte
	err      error
}

func (s *stubRenderer) Render(_ context.Context, text, _ string) ([]byte, error) {
	s.lastText = text
	if s.err != nil {
		return nil, s.err
	}
	return s.audio, nil
}

// offlineService builds a service whose pipeline has no search credentials
// and no scraping sources, so every analysis lands on the synthetic tier
// without touching the network.
func offlineService(renderer *stubRenderer) *Service {
	pipeline := retrieval.New(retrieval.NewSearchClient("", "", ""), retrieval.Options{})
	pipeline.SetSources(nil, nil, nil)

	aggregator := analysis.NewAggregator(analysis.Options{})

	return NewWithDeps(pipeline, aggregator, resultcache.New(), renderer, "hi", 5*time.Second)
}

func TestAnalyze(t *testing.T) {
	svc := offlineService(&stubRenderer{audio: []byte("AUDIO")})

	report, err := svc.Analyze(context.Background(), "Acme Corp")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if report.Company != "Acme Corp" {
		t.Errorf("company = %q", report.Company)
	}
	if !report.Degraded {
		t.Error("offline analysis should be degraded (synthetic articles)")
	}
	if len(report.Articles) == 0 {
		t.Fatal("report has no articles")
	}
	if report.FinalSentiment == "" {
		t.Error("missing final sentiment")
	}
	if report.GeneratedAt.IsZero() {
		t.Error("missing generation timestamp")
	}

	for i, a := range report.Articles {
		if a.Summary == "" {
			t.Errorf("article %d has no summary", i)
		}
		if len(a.Topics) == 0 {
			t.Errorf("article %d has no topics", i)
		}
		if a.Sentiment == "" {
			t.Errorf("article %d has no sentiment label", i)
		}
	}

	dist := report.Comparative.SentimentDistribution
	total := dist[models.SentimentPositive] + dist[models.SentimentNegative] + dist[models.SentimentNeutral]
	if total != len(report.Articles) {
		t.Errorf("distribution sums to %d, want %d", total, len(report.Articles))
	}
}

func TestAnalyzeCached(t *testing.T) {
	svc := offlineService(&stubRenderer{})

	first, err := svc.Analyze(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := svc.Analyze(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if first != second {
		t.Error("second Analyze returned a new report, want the cached instance")
	}

	// Sanitization normalizes the key, so a noisy variant hits the same entry.
	third, err := svc.Analyze(context.Background(), "  Acme!  ")
	if err != nil {
		t.Fatalf("third Analyze: %v", err)
	}
	if third != first {
		t.Error("sanitized variant missed the cache")
	}
}

func TestAnalyzeEmptyCompany(t *testing.T) {
	svc := offlineService(&stubRenderer{})

	for _, name := range []string{"", "   ", "$$$", "!!!"} {
		if _, err := svc.Analyze(context.Background(), name); !errors.Is(err, ErrEmptyCompany) {
			t.Errorf("Analyze(%q) error = %v, want ErrEmptyCompany", name, err)
		}
	}
}

func TestAudio(t *testing.T) {
	renderer := &stubRenderer{audio: []byte("AUDIO")}
	svc := offlineService(renderer)

	audio, err := svc.Audio(context.Background(), "Acme")
	if err != nil {
		t.Fatalf("Audio: %v", err)
	}
	if string(audio) != "AUDIO" {
		t.Errorf("audio = %q", audio)
	}
	if !strings.Contains(renderer.lastText, "News analysis results for Acme") {
		t.Errorf("digest text not passed to renderer: %q", renderer.lastText)
	}
}

func TestAudioRendererError(t *testing.T) {
	renderer := &stubRenderer{err: fmt.Errorf("backend gone")}
	svc := offlineService(renderer)

	if _, err := svc.Audio(context.Background(), "Acme"); err == nil {
		t.Fatal("expected renderer error to surface")
	}
}

func TestRenderText(t *testing.T) {
	renderer := &stubRenderer{audio: []byte("X")}
	svc := offlineService(renderer)

	if _, err := svc.RenderText(context.Background(), "hello"); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if renderer.lastText != "hello" {
		t.Errorf("rendered %q", renderer.lastText)
	}
}

func TestDigestText(t *testing.T) {
	report := &models.CompanyReport{
		Company: "Acme",
		Articles: []models.ArticleRecord{
			{Title: "First headline", Sentiment: models.SentimentPositive},
			{Title: "Second headline", Sentiment: models.SentimentNegative},
			{Title: "Third headline", Sentiment: models.SentimentNeutral},
			{Title: "Fourth headline", Sentiment: models.SentimentNeutral},
		},
		FinalSentiment: "Mixed outlook.",
		Comparative: models.ComparativeSummary{
			SentimentDistribution: map[models.Sentiment]int{
				models.SentimentPositive: 1,
				models.SentimentNegative: 1,
				models.SentimentNeutral:  2,
			},
		},
	}

	text := DigestText(report)

	for _, want := range []string{
		"News analysis results for Acme",
		"We found 4 news articles",
		"1 are positive, 1 are negative, and 2 are neutral",
		"Mixed outlook.",
		"1. First headline",
		"3. Third headline",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("digest missing %q:\n%s", want, text)
		}
	}

	// Only the top three headlines are spoken.
	if strings.Contains(text, "Fourth headline") {
		t.Errorf("digest includes more than three headlines:\n%s", text)
	}
}
