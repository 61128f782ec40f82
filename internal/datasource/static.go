package datasource

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/query"
)

// Snapshot resource paths, relative to the data root
const (
	CatalogPath            = "company-catalog.json"
	YearlyIndexPath        = "yearly-summaries/index.json"
	LeaderboardsPath       = "leaderboards.json"
	SystemStatusPath       = "system-status.json"
	EmployeeBenefitsPath   = "mops/employee-benefits.json"
	NonManagerSalariesPath = "mops/non-manager-salaries.json"
	WelfarePoliciesPath    = "mops/welfare-policies.json"
	SalaryAdjustmentsPath  = "mops/salary-adjustments.json"
)

// ProfilePath is the snapshot path of one company profile
func ProfilePath(code string) string {
	return "companies/" + url.PathEscape(code) + ".json"
}

// YearlyShardPath is the snapshot path of one yearly summary shard
func YearlyShardPath(year int) string {
	return fmt.Sprintf("yearly-summaries/%d.json", year)
}

// Static answers every operation from exported JSON snapshots, filtering,
// sorting and paginating in memory.
type Static struct {
	fetcher *fetcher.Fetcher
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatic creates a snapshot-backed data source
func NewStatic(f *fetcher.Fetcher, logger *zap.Logger) *Static {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Static{fetcher: f, logger: logger, now: time.Now}
}

func (s *Static) ListCompanies(ctx context.Context, p query.Params) (domain.Page[domain.Company], error) {
	entries, err := s.GetCompanyCatalog(ctx)
	if err != nil {
		return domain.Page[domain.Company]{}, err
	}

	page := query.Apply(entries, p, catalogSpec)

	now := s.now()
	items := make([]domain.Company, len(page.Items))
	for i, e := range page.Items {
		items[i] = e.Company(now)
	}
	return domain.Page[domain.Company]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Size:       page.Size,
		TotalPages: page.TotalPages,
	}, nil
}

func (s *Static) GetCompanyCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	var out []domain.CatalogEntry
	if err := s.fetcher.Fetch(ctx, CatalogPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Static) GetCompanyProfile(ctx context.Context, code string) (*domain.CompanyProfile, error) {
	var out domain.CompanyProfile
	if err := s.fetcher.Fetch(ctx, ProfilePath(code), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetYearlySummary determines the years to load from the index, loads each
// shard in index order, then filters, sorts and paginates the concatenation.
// A missing index yields an empty page. Any shard failure aborts the call.
func (s *Static) GetYearlySummary(ctx context.Context, p query.Params) (domain.Page[domain.YearlySummaryItem], error) {
	idx, _ := s.GetYearlySummaryIndex(ctx)

	years := idx.Years
	if len(p.Years) > 0 {
		years = slices.DeleteFunc(slices.Clone(years), func(y int) bool {
			return !slices.Contains(p.Years, y)
		})
	}

	var items []domain.YearlySummaryItem
	for _, y := range years {
		var shard []domain.YearlySummaryItem
		if err := s.fetcher.Fetch(ctx, YearlyShardPath(y), &shard); err != nil {
			return domain.Page[domain.YearlySummaryItem]{}, fmt.Errorf("load yearly summary %d: %w", y, err)
		}
		items = append(items, shard...)
	}

	// shards are already year-scoped; the engine's year filter keeps malformed
	// shards from leaking rows of other years
	return query.Apply(items, p, yearlySummarySpec), nil
}

// GetYearlySummaryIndex loads the list of exported years. A failure is not
// reported to the user and yields an empty index.
func (s *Static) GetYearlySummaryIndex(ctx context.Context) (domain.YearlySummaryIndex, error) {
	var idx domain.YearlySummaryIndex
	if err := s.fetcher.FetchQuiet(ctx, YearlyIndexPath, &idx); err != nil {
		logging.From(ctx, s.logger).Warn("yearly summary index unavailable, using empty index", zap.Error(err))
		return domain.YearlySummaryIndex{Years: []int{}}, nil
	}
	if idx.Years == nil {
		idx.Years = []int{}
	}
	return idx, nil
}

func (s *Static) GetLeaderboards(ctx context.Context) (*domain.Leaderboards, error) {
	var out domain.Leaderboards
	if err := s.fetcher.Fetch(ctx, LeaderboardsPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListViolations is not supported from snapshots and always returns an
// empty page.
func (s *Static) ListViolations(ctx context.Context, p query.Params) (domain.Page[domain.Violation], error) {
	logging.From(ctx, s.logger).Info("violation search is not supported in static mode")
	return domain.Page[domain.Violation]{
		Items:      []domain.Violation{},
		Page:       1,
		Size:       p.SizeOrDefault(),
		TotalPages: 0,
	}, nil
}

func (s *Static) ListEmployeeBenefits(ctx context.Context, p query.Params) (domain.Page[domain.EmployeeBenefit], error) {
	return listSnapshot(ctx, s.fetcher, EmployeeBenefitsPath, p, employeeBenefitSpec)
}

func (s *Static) ListNonManagerSalaries(ctx context.Context, p query.Params) (domain.Page[domain.NonManagerSalary], error) {
	return listSnapshot(ctx, s.fetcher, NonManagerSalariesPath, p, nonManagerSalarySpec)
}

func (s *Static) ListWelfarePolicies(ctx context.Context, p query.Params) (domain.Page[domain.WelfarePolicy], error) {
	return listSnapshot(ctx, s.fetcher, WelfarePoliciesPath, p, welfarePolicySpec)
}

func (s *Static) ListSalaryAdjustments(ctx context.Context, p query.Params) (domain.Page[domain.SalaryAdjustment], error) {
	return listSnapshot(ctx, s.fetcher, SalaryAdjustmentsPath, p, salaryAdjustmentSpec)
}

func (s *Static) GetSystemSyncStatus(ctx context.Context) (*domain.SyncStatus, error) {
	var out domain.SyncStatus
	if err := s.fetcher.Fetch(ctx, SystemStatusPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func listSnapshot[T any](ctx context.Context, f *fetcher.Fetcher, path string, p query.Params, spec query.Spec[T]) (domain.Page[T], error) {
	var items []T
	if err := f.Fetch(ctx, path, &items); err != nil {
		return domain.Page[T]{}, err
	}
	return query.Apply(items, p, spec), nil
}
