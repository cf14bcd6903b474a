// Package enrich attaches encyclopedia descriptions to cities. Lookups are
// throttled through a single FIFO worker so that any number of concurrent
// callers produce at most one in-flight request against the summary API,
// with a minimum gap between dispatches.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/city-air-service/internal/cache"
	"github.com/couchcryptid/city-air-service/internal/domain"
	"github.com/couchcryptid/city-air-service/internal/observability"
)

const (
	defaultSpacing     = 100 * time.Millisecond
	defaultPositiveTTL = 24 * time.Hour
	defaultNegativeTTL = time.Hour
	defaultBacklogSize = 64

	maxDescriptionLen  = 300
	sentenceCutoff     = 200
	descriptionKeyword = "desc"
)

// ErrStopped is returned for lookups submitted after Stop.
var ErrStopped = errors.New("enricher stopped")

// Config tunes the enricher. Zero values select the defaults.
type Config struct {
	// Spacing is the minimum gap between consecutive outbound lookups.
	Spacing time.Duration
	// PositiveTTL caches found descriptions; NegativeTTL caches the
	// not-found sentinel so unresolvable names are not re-probed every page.
	PositiveTTL time.Duration
	NegativeTTL time.Duration
	BacklogSize int
}

func (c Config) withDefaults() Config {
	if c.Spacing <= 0 {
		c.Spacing = defaultSpacing
	}
	if c.PositiveTTL <= 0 {
		c.PositiveTTL = defaultPositiveTTL
	}
	if c.NegativeTTL <= 0 {
		c.NegativeTTL = defaultNegativeTTL
	}
	if c.BacklogSize <= 0 {
		c.BacklogSize = defaultBacklogSize
	}
	return c
}

// Enricher resolves city descriptions through a shared TTL cache and a
// serialized lookup backlog.
type Enricher struct {
	source  domain.Describer
	cache   *cache.Cache[string]
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	cfg     Config

	backlog chan *lookup

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

type lookup struct {
	ctx    context.Context
	term   string
	result chan lookupResult
}

type lookupResult struct {
	text string
	err  error
}

// New creates an Enricher and starts its dispatch worker.
func New(source domain.Describer, c *cache.Cache[string], clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics, cfg Config) *Enricher {
	e := &Enricher{
		source:  source,
		cache:   c,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg.withDefaults(),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	e.backlog = make(chan *lookup, e.cfg.BacklogSize)
	go e.worker()
	return e
}

// Stop shuts down the dispatch worker. Pending lookups fail with ErrStopped.
func (e *Enricher) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
	<-e.done
}

// Describe returns a description for the city, or ("", false) when none is
// available. Results, including the not-found case, are cached; repeat calls
// for the same city hit the cache without touching the network.
func (e *Enricher) Describe(ctx context.Context, cityName, countryName string) (string, bool) {
	key := descriptionKey(cityName, countryName)

	if text, ok := e.cache.Get(key); ok {
		e.metrics.DescribeCache.WithLabelValues("hit").Inc()
		return text, text != ""
	}
	e.metrics.DescribeCache.WithLabelValues("miss").Inc()

	for _, term := range queryVariants(cityName, countryName) {
		text, err := e.enqueue(ctx, term)
		switch {
		case err == nil && text != "":
			desc := truncateDescription(text)
			e.cache.Set(key, desc, e.cfg.PositiveTTL)
			return desc, true
		case err == nil || errors.Is(err, domain.ErrNotFound):
			// No page, or a page with no usable text: try the next variant.
			continue
		default:
			// A hard failure is likely transient. Give up on this call
			// without caching so the next request can probe again.
			e.logger.Warn("description lookup failed",
				"city", cityName,
				"term", term,
				"error", err,
			)
			return "", false
		}
	}

	e.cache.Set(key, "", e.cfg.NegativeTTL)
	return "", false
}

// CacheStats exposes the description cache snapshot for diagnostics.
func (e *Enricher) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// enqueue submits one query term to the backlog and waits for its turn.
func (e *Enricher) enqueue(ctx context.Context, term string) (string, error) {
	l := &lookup{ctx: ctx, term: term, result: make(chan lookupResult, 1)}

	// Refuse new work once stopped; the buffered backlog would otherwise
	// accept the send with no worker left to answer it.
	select {
	case <-e.stop:
		return "", ErrStopped
	default:
	}

	select {
	case e.backlog <- l:
	case <-e.stop:
		return "", ErrStopped
	case <-ctx.Done():
		return "", ctx.Err()
	}

	select {
	case r := <-l.result:
		return r.text, r.err
	case <-e.stop:
		// The worker may already have answered before exiting.
		select {
		case r := <-l.result:
			return r.text, r.err
		default:
			return "", ErrStopped
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// worker drains the backlog in FIFO order, enforcing the minimum spacing
// between consecutive dispatches. It is the only goroutine that touches the
// summary API, which keeps the system at one in-flight request.
func (e *Enricher) worker() {
	defer close(e.done)

	var lastDispatch time.Time
	for {
		select {
		case <-e.stop:
			e.drainBacklog()
			return
		case l := <-e.backlog:
			if err := l.ctx.Err(); err != nil {
				// Caller gave up while queued; don't burn a dispatch slot.
				l.result <- lookupResult{err: err}
				continue
			}

			if !lastDispatch.IsZero() {
				if wait := e.cfg.Spacing - e.clock.Since(lastDispatch); wait > 0 {
					select {
					case <-e.stop:
						l.result <- lookupResult{err: ErrStopped}
						e.drainBacklog()
						return
					case <-e.clock.After(wait):
					}
				}
			}
			lastDispatch = e.clock.Now()

			start := time.Now()
			text, err := e.source.Summary(l.ctx, l.term)
			e.metrics.DescribeDuration.Observe(time.Since(start).Seconds())
			e.metrics.DescribeRequests.WithLabelValues(outcomeLabel(text, err)).Inc()

			l.result <- lookupResult{text: text, err: err}
		}
	}
}

func (e *Enricher) drainBacklog() {
	for {
		select {
		case l := <-e.backlog:
			l.result <- lookupResult{err: ErrStopped}
		default:
			return
		}
	}
}

func outcomeLabel(text string, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case err != nil:
		return "error"
	case text == "":
		return "empty"
	default:
		return "success"
	}
}

// descriptionKey builds the shared-cache key for a city/country pair.
// The scheme is fixed: "desc_{city}_{country}", lowercased.
func descriptionKey(cityName, countryName string) string {
	return strings.ToLower(fmt.Sprintf("%s_%s_%s", descriptionKeyword, cityName, countryName))
}

// queryVariants lists lookup terms from most to least specific-free:
// the bare name first, then country-qualified forms.
func queryVariants(cityName, countryName string) []string {
	if countryName == "" {
		return []string{cityName}
	}
	return []string{
		cityName,
		fmt.Sprintf("%s, %s", cityName, countryName),
		fmt.Sprintf("%s %s", cityName, countryName),
	}
}

// truncateDescription caps a description at 300 characters, preferring to
// cut at the last sentence boundary before character 200. When no boundary
// exists in range it cuts hard at 300 and appends an ellipsis.
func truncateDescription(s string) string {
	runes := []rune(s)
	if len(runes) <= maxDescriptionLen {
		return s
	}

	head := string(runes[:sentenceCutoff])
	if i := strings.LastIndex(head, "."); i >= 0 {
		return head[:i+1]
	}
	return string(runes[:maxDescriptionLen]) + "..."
}
