package watchlist

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/query"
)

// Persister stores the watched company codes. Only codes are durable.
type Persister interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, codes []string) error
}

// Lister fetches company records for hydration
type Lister interface {
	ListCompanies(ctx context.Context, p query.Params) (domain.Page[domain.Company], error)
}

// Store is the set of watched companies. Codes are persisted on every change;
// the company records shown alongside them are a cache rebuilt by Hydrate
// or Refresh and never persisted.
type Store struct {
	mu        sync.RWMutex
	codes     []string
	companies []domain.Company
	persister Persister
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// Open loads the persisted codes and returns the store
func Open(ctx context.Context, p Persister, logger *zap.Logger, m *metrics.Metrics) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	codes, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	s := &Store{
		codes:     dedupe(codes),
		persister: p,
		logger:    logger,
		metrics:   m,
	}
	s.metrics.WatchlistSize(len(s.codes))
	return s, nil
}

// Add watches company. Adding a watched code is a no-op.
func (s *Store) Add(ctx context.Context, company domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(ctx, company)
}

// Remove stops watching code. Removing an unwatched code is a no-op.
func (s *Store) Remove(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(ctx, code)
}

// Toggle removes company when watched and adds it otherwise. It reports
// whether the company is watched afterwards.
func (s *Store) Toggle(ctx context.Context, company domain.Company) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.codes, company.Code) {
		return false, s.remove(ctx, company.Code)
	}
	return true, s.add(ctx, company)
}

// IsWatching reports whether code is in the persisted set
func (s *Store) IsWatching(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.codes, code)
}

// Hydrate replaces the cached company records wholesale
func (s *Store) Hydrate(companies []domain.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = slices.Clone(companies)
}

// Codes returns the watched codes in the order they were added
func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.codes)
}

// Companies returns the cached company records
func (s *Store) Companies() []domain.Company {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.companies)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// Refresh reloads the records of every watched code from lister and hydrates
// the cache with them, in watch order. Codes the lister no longer knows are
// kept in the persisted set.
func (s *Store) Refresh(ctx context.Context, lister Lister) ([]domain.Company, error) {
	codes := s.Codes()
	if len(codes) == 0 {
		s.Hydrate(nil)
		return nil, nil
	}

	byCode := make(map[string]domain.Company, len(codes))
	p := query.Params{Codes: codes, Size: domain.MaxPageSize}
	for page := 1; ; page++ {
		res, err := lister.ListCompanies(ctx, p.WithPage(page, domain.MaxPageSize))
		if err != nil {
			return nil, fmt.Errorf("refresh watchlist: %w", err)
		}
		for _, c := range res.Items {
			byCode[c.Code] = c
		}
		if page >= res.TotalPages {
			break
		}
	}

	out := make([]domain.Company, 0, len(byCode))
	for _, code := range codes {
		if c, ok := byCode[code]; ok {
			out = append(out, c)
		}
	}
	if missing := len(codes) - len(out); missing > 0 {
		logging.From(ctx, s.logger).Info("watched companies not found", zap.Int("missing", missing))
	}

	s.Hydrate(out)
	return out, nil
}

// add and remove must be called with mu held. The in-memory state changes
// only after the new set is persisted.
func (s *Store) add(ctx context.Context, company domain.Company) error {
	if company.Code == "" {
		return fmt.Errorf("add to watchlist: empty company code")
	}
	if slices.Contains(s.codes, company.Code) {
		return nil
	}

	next := append(slices.Clone(s.codes), company.Code)
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	s.codes = next
	s.companies = append(s.companies, company)
	s.metrics.WatchlistSize(len(s.codes))
	return nil
}

func (s *Store) remove(ctx context.Context, code string) error {
	i := slices.Index(s.codes, code)
	if i < 0 {
		// a hydrated record may outlive its code
		s.companies = slices.DeleteFunc(s.companies, func(c domain.Company) bool { return c.Code == code })
		return nil
	}

	next := slices.Delete(slices.Clone(s.codes), i, i+1)
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("save watchlist: %w", err)
	}
	s.codes = next
	s.companies = slices.DeleteFunc(s.companies, func(c domain.Company) bool { return c.Code == code })
	s.metrics.WatchlistSize(len(s.codes))
	return nil
}

func dedupe(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c != "" && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
