// Package pipeline orchestrates the fetch-classify-enrich flow behind the
// /cities endpoint.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/city-air-service/internal/cache"
	"github.com/couchcryptid/city-air-service/internal/domain"
	"github.com/couchcryptid/city-air-service/internal/observability"
)

const defaultPageTTL = 10 * time.Minute

// RawSource reads the full raw record set from the pollution upstream.
type RawSource interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// Describer resolves a short description for a city, reporting whether one
// was found.
type Describer interface {
	Describe(ctx context.Context, cityName, countryName string) (string, bool)
}

// Service assembles paginated, enriched city listings.
type Service struct {
	source   RawSource
	enricher Describer
	pages    *cache.Cache[domain.PageResult]
	logger   *slog.Logger
	metrics  *observability.Metrics
	pageTTL  time.Duration
	ready    atomic.Bool
}

// New creates a Service. A non-positive pageTTL selects the 10 minute default.
func New(source RawSource, enricher Describer, pages *cache.Cache[domain.PageResult], logger *slog.Logger, metrics *observability.Metrics, pageTTL time.Duration) *Service {
	if pageTTL <= 0 {
		pageTTL = defaultPageTTL
	}
	return &Service{
		source:   source,
		enricher: enricher,
		pages:    pages,
		logger:   logger,
		metrics:  metrics,
		pageTTL:  pageTTL,
	}
}

// CheckReadiness returns nil once the service has assembled at least one page.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no page has been served yet")
	}
	return nil
}

// GetCities returns one page of cities sorted by pollution descending.
// Pages are cached whole; a hit short-circuits all upstream work. Only an
// upstream fetch failure propagates — every enrichment problem degrades to
// the generic fallback sentence.
func (s *Service) GetCities(ctx context.Context, page, limit int) (domain.PageResult, error) {
	key := pageKey(page, limit)
	if result, ok := s.pages.Get(key); ok {
		s.metrics.PageRequests.WithLabelValues("hit").Inc()
		return result, nil
	}
	s.metrics.PageRequests.WithLabelValues("miss").Inc()

	start := time.Now()
	raws, err := s.source.Fetch(ctx)
	if err != nil {
		s.metrics.UpstreamFetchErrors.Inc()
		return domain.PageResult{}, fmt.Errorf("fetch pollution data: %w", err)
	}
	s.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	s.metrics.RecordsFetched.Add(float64(len(raws)))

	cities := domain.FilterValid(raws, s.logger)
	s.metrics.RecordsAccepted.Add(float64(len(cities)))
	s.metrics.RecordsRejected.Add(float64(len(raws) - len(cities)))

	// Stable sort keeps upstream order among equal pollution values.
	sort.SliceStable(cities, func(i, j int) bool {
		return cities[i].Pollution > cities[j].Pollution
	})

	window := pageWindow(cities, page, limit)
	enriched := s.enrichWindow(ctx, window)

	result := domain.PageResult{
		Page:   page,
		Limit:  limit,
		Total:  len(cities),
		Cities: enriched,
	}
	s.pages.Set(key, result, s.pageTTL)
	s.ready.Store(true)

	s.logger.Info("page assembled",
		"page", page,
		"limit", limit,
		"total", len(cities),
		"window", len(window),
		"duration", time.Since(start),
	)
	return result, nil
}

// enrichWindow fans out description lookups for one page window. The
// enricher serializes actual network dispatch; results are joined back by
// index so the pollution ordering is preserved regardless of arrival order.
func (s *Service) enrichWindow(ctx context.Context, window []domain.City) []domain.EnrichedCity {
	enriched := make([]domain.EnrichedCity, len(window))

	var wg sync.WaitGroup
	for i, city := range window {
		wg.Add(1)
		go func() {
			defer wg.Done()
			desc, ok := s.enricher.Describe(ctx, city.Name, city.Country)
			if !ok || desc == "" {
				desc = fallbackDescription(city)
			}
			enriched[i] = domain.EnrichedCity{City: city, Description: desc}
		}()
	}
	wg.Wait()

	return enriched
}

func pageWindow(cities []domain.City, page, limit int) []domain.City {
	start := (page - 1) * limit
	if start >= len(cities) || start < 0 {
		return nil
	}
	end := min(start+limit, len(cities))
	return cities[start:end]
}

func pageKey(page, limit int) string {
	return fmt.Sprintf("cities_%d_%d", page, limit)
}

func fallbackDescription(c domain.City) string {
	if c.Country == "" {
		return fmt.Sprintf("%s is a city.", c.Name)
	}
	return fmt.Sprintf("%s is a city in %s.", c.Name, c.Country)
}
