package places

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/krishidhan/sahayak/components/fallback"
	"github.com/krishidhan/sahayak/components/geo"
)

// Service hygiene defaults.
const (
	DefaultCacheSize  = 128
	DefaultCacheTTL   = 5 * time.Minute
	DefaultRateCalls  = 20
	DefaultRateWindow = time.Minute
)

// GeocodeProvider is one backend able to resolve a place name.
type GeocodeProvider = fallback.Provider[string, *GeoResult]

// SearchProvider is one backend able to search nearby POIs.
type SearchProvider = fallback.Provider[Query, []Place]

type serviceSettings struct {
	cacheSize  int
	cacheTTL   time.Duration
	rateCalls  int
	rateWindow time.Duration
	timeout    time.Duration
	logger     zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceSettings)

// WithCache sizes the search result cache and its TTL.
func WithCache(size int, ttl time.Duration) ServiceOption {
	return func(s *serviceSettings) {
		s.cacheSize = size
		s.cacheTTL = ttl
	}
}

// WithRateLimit sets the per-provider call budget per window.
func WithRateLimit(calls int, window time.Duration) ServiceOption {
	return func(s *serviceSettings) {
		s.rateCalls = calls
		s.rateWindow = window
	}
}

// WithAttemptTimeout bounds a single provider attempt.
func WithAttemptTimeout(d time.Duration) ServiceOption {
	return func(s *serviceSettings) {
		s.timeout = d
	}
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *serviceSettings) {
		s.logger = l
	}
}

type cacheEntry struct {
	provider string
	places   []Place
}

// Service fronts the geocode and POI-search provider chains with a TTL
// result cache and per-provider rate limiting. Limiter denials surface
// as fallback.ErrRateLimited, so the chain records them as quota
// failures and moves on to the next provider.
type Service struct {
	geocode *fallback.Chain[string, *GeoResult]
	search  *fallback.Chain[Query, []Place]
	cache   *expirable.LRU[string, cacheEntry]
	hits    atomic.Int64
	misses  atomic.Int64
	denials atomic.Int64
	logger  zerolog.Logger
}

// NewService builds the service over the given providers, each wrapped
// with its own rate limiter. Provider order is the fallback order.
func NewService(geocoders []GeocodeProvider, searchers []SearchProvider, opts ...ServiceOption) *Service {
	settings := serviceSettings{
		cacheSize:  DefaultCacheSize,
		cacheTTL:   DefaultCacheTTL,
		rateCalls:  DefaultRateCalls,
		rateWindow: DefaultRateWindow,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&settings)
	}

	svc := &Service{
		cache:  expirable.NewLRU[string, cacheEntry](settings.cacheSize, nil, settings.cacheTTL),
		logger: settings.logger,
	}

	newLimiter := func() *rate.Limiter {
		return rate.NewLimiter(
			rate.Every(settings.rateWindow/time.Duration(settings.rateCalls)),
			settings.rateCalls)
	}
	limitedGeocoders := make([]GeocodeProvider, len(geocoders))
	for i, p := range geocoders {
		limitedGeocoders[i] = limitProvider(p, newLimiter(), &svc.denials)
	}
	limitedSearchers := make([]SearchProvider, len(searchers))
	for i, p := range searchers {
		limitedSearchers[i] = limitProvider(p, newLimiter(), &svc.denials)
	}

	chainOpts := []fallback.Option{fallback.WithLogger(settings.logger)}
	if settings.timeout > 0 {
		chainOpts = append(chainOpts, fallback.WithTimeout(settings.timeout))
	}
	svc.geocode = fallback.New(OpGeocode, limitedGeocoders, chainOpts...)
	svc.search = fallback.New(OpSearch, limitedSearchers, chainOpts...)
	return svc
}

// Geocode resolves a place name through the geocoder chain.
func (s *Service) Geocode(ctx context.Context, location string) (*GeoResult, *fallback.Invocation, error) {
	return s.geocode.Invoke(ctx, location)
}

// SearchNearby finds POIs around the query center, consulting the
// result cache first. Returned slices are copies; callers may reorder
// or filter them freely.
func (s *Service) SearchNearby(ctx context.Context, query Query) ([]Place, *fallback.Invocation, error) {
	query = query.withDefaults()
	key := query.key()
	if entry, ok := s.cache.Get(key); ok {
		s.hits.Inc()
		s.logger.Debug().Str("key", key).Str("provider", entry.provider).Msg("places cache hit")
		return clonePlaces(entry.places), &fallback.Invocation{Op: OpSearch, Provider: entry.provider}, nil
	}
	s.misses.Inc()

	places, inv, err := s.search.Invoke(ctx, query)
	if err != nil {
		return nil, inv, err
	}
	s.cache.Add(key, cacheEntry{provider: inv.Provider, places: places})
	return clonePlaces(places), inv, nil
}

// SearchKVK finds Krishi Vigyan Kendra near center, widening to the
// KVK radius and dropping hits that are plainly schools, colleges or
// banks rather than centres.
func (s *Service) SearchKVK(ctx context.Context, center geo.Point) ([]Place, *fallback.Invocation, error) {
	hits, inv, err := s.SearchNearby(ctx, Query{
		Text:    KVKQuery,
		Center:  center,
		RadiusM: KVKRadiusM,
		Limit:   DefaultLimit,
	})
	if err != nil {
		return nil, inv, err
	}
	return FilterKVK(hits), inv, nil
}

// Stats reports the cache and limiter counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Denials int64
}

// Stats returns a snapshot of the service counters.
func (s *Service) Stats() Stats {
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Denials: s.denials.Load(),
	}
}

func clonePlaces(in []Place) []Place {
	out := make([]Place, len(in))
	copy(out, in)
	return out
}

// limitProvider guards p with a local limiter. Denials count into
// denials and return fallback.ErrRateLimited without touching the
// upstream provider.
func limitProvider[A, R any](p fallback.Provider[A, R], l *rate.Limiter, denials *atomic.Int64) fallback.Provider[A, R] {
	return fallback.ProviderFunc(p.Name(), func(ctx context.Context, arg A) (R, error) {
		if !l.Allow() {
			denials.Inc()
			var zero R
			return zero, fmt.Errorf("%s: %w", p.Name(), fallback.ErrRateLimited)
		}
		return p.Call(ctx, arg)
	})
}
