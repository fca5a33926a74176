// Package service orchestrates the full analysis flow: retrieval, per-article
// summarization and scoring, comparative aggregation, caching, and the audio
// digest.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/newsvani/newsvani/internal/analysis"
	"github.com/newsvani/newsvani/internal/config"
	"github.com/newsvani/newsvani/internal/resultcache"
	"github.com/newsvani/newsvani/internal/retrieval"
	"github.com/newsvani/newsvani/internal/sentiment"
	"github.com/newsvani/newsvani/internal/textutil"
	"github.com/newsvani/newsvani/internal/tts"
	"github.com/newsvani/newsvani/pkg/models"
)

// ErrEmptyCompany is returned when the company name sanitizes to nothing.
var ErrEmptyCompany = errors.New("company name is empty")

// Service wires the pipeline, aggregator, cache, and speech renderer.
type Service struct {
	pipeline   *retrieval.Pipeline
	aggregator *analysis.Aggregator
	cache      *resultcache.Cache
	renderer   tts.Renderer
	language   string
	deadline   time.Duration
}

// New builds a service from configuration.
func New(cfg *config.Config) *Service {
	search := retrieval.NewSearchClient(cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.EngineID)

	pipeline := retrieval.New(search, retrieval.Options{
		TargetCount:        cfg.Retrieval.TargetCount,
		LowThreshold:       cfg.Retrieval.LowThreshold,
		PerSitePrimary:     cfg.Retrieval.PerSitePrimary,
		PerSiteAlternative: cfg.Retrieval.PerSiteAlternative,
	})

	aggregator := analysis.NewAggregator(analysis.Options{
		MaxComparisons:         cfg.Analysis.MaxComparisons,
		IncludeNeutralInCommon: cfg.Analysis.IncludeNeutralInCommon,
	})

	deadline := time.Duration(cfg.Retrieval.DeadlineSec) * time.Second
	if deadline <= 0 {
		deadline = 90 * time.Second
	}

	return &Service{
		pipeline:   pipeline,
		aggregator: aggregator,
		cache:      resultcache.New(),
		renderer:   tts.NewHTTPRenderer(cfg.TTS.Endpoint),
		language:   cfg.TTS.Language,
		deadline:   deadline,
	}
}

// NewWithDeps builds a service from explicit components. Used by tests.
func NewWithDeps(pipeline *retrieval.Pipeline, aggregator *analysis.Aggregator, cache *resultcache.Cache, renderer tts.Renderer, language string, deadline time.Duration) *Service {
	return &Service{
		pipeline:   pipeline,
		aggregator: aggregator,
		cache:      cache,
		renderer:   renderer,
		language:   language,
		deadline:   deadline,
	}
}

// Analyze returns the company report, computing it on first request and
// serving the cached copy afterwards.
func (s *Service) Analyze(ctx context.Context, companyName string) (*models.CompanyReport, error) {
	company := textutil.SanitizeCompanyName(companyName)
	if company == "" {
		return nil, ErrEmptyCompany
	}

	return s.cache.GetOrCompute(company, func() (*models.CompanyReport, error) {
		return s.compute(ctx, company)
	})
}

// compute runs the full uncached flow for one company.
func (s *Service) compute(ctx context.Context, company string) (*models.CompanyReport, error) {
	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	log.Printf("service: fetching articles for %q", company)
	result, err := s.pipeline.FetchArticles(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("fetch articles for %q: %w", company, err)
	}

	records := make([]models.ArticleRecord, 0, len(result.Articles))
	for _, article := range result.Articles {
		records = append(records, buildRecord(article))
	}

	comparative := s.aggregator.Aggregate(records)

	return &models.CompanyReport{
		Company:        company,
		Articles:       records,
		Comparative:    comparative,
		FinalSentiment: comparative.FinalVerdict,
		Degraded:       result.Degraded,
		GeneratedAt:    time.Now(),
	}, nil
}

// buildRecord summarizes and scores one fetched article.
func buildRecord(article retrieval.FetchedArticle) models.ArticleRecord {
	summary := textutil.Summarize(article.Body)
	scored := sentiment.Score(summary)
	topics := sentiment.ExtractTopics(article.Body, nil)

	return models.ArticleRecord{
		Title:          article.Title,
		URL:            article.URL,
		Source:         article.Source,
		Summary:        summary,
		Sentiment:      scored.Label,
		SentimentScore: scored.Compound,
		Topics:         topics,
	}
}

// Audio renders the spoken digest for a company, computing the report first
// if needed. Rendering failures degrade inside the renderer; only context
// cancellation surfaces as an error.
func (s *Service) Audio(ctx context.Context, companyName string) ([]byte, error) {
	report, err := s.Analyze(ctx, companyName)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, DigestText(report), s.language)
}

// RenderText converts arbitrary text to speech in the configured language.
func (s *Service) RenderText(ctx context.Context, text string) ([]byte, error) {
	return s.renderer.Render(ctx, text, s.language)
}

// DigestText builds the spoken-digest script for a report: article count,
// sentiment distribution, verdict, and the top three headlines.
func DigestText(report *models.CompanyReport) string {
	dist := report.Comparative.SentimentDistribution

	var b strings.Builder
	fmt.Fprintf(&b, "News analysis results for %s. ", report.Company)
	fmt.Fprintf(&b, "We found %d news articles. ", len(report.Articles))
	fmt.Fprintf(&b, "Of these, %d are positive, %d are negative, and %d are neutral. ",
		dist[models.SentimentPositive], dist[models.SentimentNegative], dist[models.SentimentNeutral])
	fmt.Fprintf(&b, "Overall analysis: %s ", report.FinalSentiment)

	b.WriteString("Top headlines: ")
	for i, article := range report.Articles {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s. ", i+1, article.Title)
	}

	return strings.TrimSpace(b.String())
}
