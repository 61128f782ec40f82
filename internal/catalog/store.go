package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/cache"
	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/metrics"
)

const cacheKey = "company-catalog"

// Source loads the full company catalog
type Source interface {
	GetCompanyCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
}

// Store keeps the company catalog in memory for a fixed freshness window
type Store struct {
	cache   *cache.TTL[[]domain.CatalogEntry]
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewStore creates a catalog store backed by src
func NewStore(src Source, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		// The catalog is shared by every request, so it never loads from a
		// request's origin.
		cache: cache.New(ttl, func(ctx context.Context, _ string) ([]domain.CatalogEntry, error) {
			return src.GetCompanyCatalog(fetcher.WithOrigin(ctx, ""))
		}),
		logger:  logger,
		metrics: m,
	}
}

// Fetch returns the catalog, reloading it when stale or when force is set.
// If a reload fails the previous catalog is returned with the error.
func (s *Store) Fetch(ctx context.Context, force bool) ([]domain.CatalogEntry, error) {
	entries, outcome, err := s.cache.Get(ctx, cacheKey, force)
	s.metrics.CatalogLoad(string(outcome))
	if err != nil {
		logging.From(ctx, s.logger).Error("failed to fetch company catalog",
			zap.String("outcome", string(outcome)), zap.Error(err))
	}
	return entries, err
}

// Lookup finds one catalog entry by code
func (s *Store) Lookup(ctx context.Context, code string) (domain.CatalogEntry, bool, error) {
	entries, err := s.Fetch(ctx, false)
	if err != nil && entries == nil {
		return domain.CatalogEntry{}, false, err
	}
	for _, e := range entries {
		if e.Code == code {
			return e, true, nil
		}
	}
	return domain.CatalogEntry{}, false, nil
}

// FetchedAt returns when the catalog was last loaded, zero if never
func (s *Store) FetchedAt() time.Time {
	e, _ := s.cache.Peek(cacheKey)
	return e.FetchedAt
}

// Invalidate forces the next Fetch to reload
func (s *Store) Invalidate() {
	s.cache.Invalidate(cacheKey)
}
