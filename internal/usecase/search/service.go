package search

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/trebound/catalog-search/internal/domain"
	"github.com/trebound/catalog-search/internal/domain/catalog"
	"github.com/trebound/catalog-search/internal/domain/search/result"
	"github.com/trebound/catalog-search/internal/logger"
	"github.com/trebound/catalog-search/internal/metrics"
)

// DefaultMaxQueryLength is the longest accepted query, in characters.
const DefaultMaxQueryLength = 500

const (
	unavailableConfidence = 0.3
	unavailableAnswer     = "I apologize, but I'm having trouble searching right now. " +
		"Please contact our team directly for personalized team building recommendations, " +
		"or browse our categories to find the perfect activity for your team."
)

// Service answers free-text catalog queries.
type Service struct {
	catalog     SnapshotProvider
	assembler   *Assembler
	responder   *Responder
	maxQueryLen int
	now         func() time.Time
}

// New creates a search service.
func New(catalog SnapshotProvider, assembler *Assembler, responder *Responder) *Service {
	return &Service{
		catalog:     catalog,
		assembler:   assembler,
		responder:   responder,
		maxQueryLen: DefaultMaxQueryLength,
		now:         time.Now,
	}
}

// WithMaxQueryLength overrides the query length limit.
func (s *Service) WithMaxQueryLength(n int) *Service {
	if n > 0 {
		s.maxQueryLen = n
	}
	return s
}

// WithClock overrides the clock used for elapsed time.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search ranks the catalog against query and builds the full response.
// The only error is domain.ErrInvalidQuery; every other failure degrades the
// result instead.
func (s *Service) Search(ctx context.Context, query string) (result.SearchResult, error) {
	start := s.now()

	if err := s.validate(query); err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("invalid").Inc()
		return result.SearchResult{}, err
	}

	snap := s.catalog.Snapshot(ctx)
	if !snap.Available() {
		logger.FromContext(ctx).Warn("Catalog unavailable, returning degraded result")
		res := unavailableResult()
		res.Elapsed = s.now().Sub(start)
		s.observe("catalog_unavailable", res)
		return res, nil
	}

	assembled := s.assembler.Assemble(Decompose(query), snap)
	total := assembled.Total()
	narrative := s.responder.Respond(ctx, query, snap)

	res := result.SearchResult{
		Answer:               narrative.Text,
		Activities:           assembled.Activities,
		Venues:               assembled.Venues,
		Destinations:         assembled.Destinations,
		Suggestions:          Suggest(query, snap),
		UsedGenerativeAnswer: narrative.Generated,
		Confidence:           Confidence(total),
		TotalResults:         total,
	}
	res.Elapsed = s.now().Sub(start)

	outcome := "ok"
	if total == 0 {
		outcome = "no_results"
	}
	s.observe(outcome, res)

	logger.FromContext(ctx).Debug("Search completed",
		zap.Int("total_results", total),
		zap.Bool("generated", narrative.Generated),
		zap.Bool("partial_catalog", snap.Partial),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (s *Service) validate(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if n := utf8.RuneCountInString(query); n > s.maxQueryLen {
		return fmt.Errorf("%w: query is %d characters, limit is %d", domain.ErrInvalidQuery, n, s.maxQueryLen)
	}
	return nil
}

func (s *Service) observe(outcome string, res result.SearchResult) {
	metrics.SearchRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.SearchDuration.Observe(res.Elapsed.Seconds())
	metrics.SearchResultsReturned.WithLabelValues(string(catalog.KindActivity)).Observe(float64(len(res.Activities)))
	metrics.SearchResultsReturned.WithLabelValues(string(catalog.KindVenue)).Observe(float64(len(res.Venues)))
	metrics.SearchResultsReturned.WithLabelValues(string(catalog.KindDestination)).Observe(float64(len(res.Destinations)))
}

func unavailableResult() result.SearchResult {
	return result.SearchResult{
		Answer:       unavailableAnswer,
		Activities:   []result.ScoredItem{},
		Venues:       []result.ScoredItem{},
		Destinations: []result.ScoredItem{},
		Suggestions:  slices.Clone(UnavailableSuggestions),
		Confidence:   unavailableConfidence,
	}
}
