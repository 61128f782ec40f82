package datasource

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/notify"
	"github.com/bossy-radar/radar/internal/query"
)

// DataSource is the fixed set of read operations the site needs.
// Dynamic and Static implement it; callers never mix them.
type DataSource interface {
	ListCompanies(ctx context.Context, p query.Params) (domain.Page[domain.Company], error)
	GetCompanyCatalog(ctx context.Context) ([]domain.CatalogEntry, error)
	GetCompanyProfile(ctx context.Context, code string) (*domain.CompanyProfile, error)
	GetYearlySummary(ctx context.Context, p query.Params) (domain.Page[domain.YearlySummaryItem], error)
	GetYearlySummaryIndex(ctx context.Context) (domain.YearlySummaryIndex, error)
	GetLeaderboards(ctx context.Context) (*domain.Leaderboards, error)
	ListViolations(ctx context.Context, p query.Params) (domain.Page[domain.Violation], error)
	ListEmployeeBenefits(ctx context.Context, p query.Params) (domain.Page[domain.EmployeeBenefit], error)
	ListNonManagerSalaries(ctx context.Context, p query.Params) (domain.Page[domain.NonManagerSalary], error)
	ListWelfarePolicies(ctx context.Context, p query.Params) (domain.Page[domain.WelfarePolicy], error)
	ListSalaryAdjustments(ctx context.Context, p query.Params) (domain.Page[domain.SalaryAdjustment], error)
	GetSystemSyncStatus(ctx context.Context) (*domain.SyncStatus, error)
}

// Deps are the collaborators shared by both implementations
type Deps struct {
	Notifier   notify.Notifier
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
}

// New selects the implementation for cfg.Mode once
func New(cfg config.DataConfig, deps Deps) (DataSource, error) {
	switch cfg.Mode {
	case config.ModeDynamic:
		return NewDynamic(cfg.APIBase, cfg.FetchTimeout, deps), nil
	case config.ModeStatic:
		opts := []fetcher.Option{fetcher.WithMetrics(deps.Metrics)}
		if deps.HTTPClient != nil {
			opts = append(opts, fetcher.WithHTTPClient(deps.HTTPClient))
		}
		f := fetcher.New(fetcher.Config{
			DataRoot:   cfg.DataRoot,
			PublicBase: cfg.PublicBase,
			Timeout:    cfg.FetchTimeout,
		}, deps.Notifier, deps.Logger, opts...)
		return NewStatic(f, deps.Logger), nil
	default:
		return nil, fmt.Errorf("unknown data mode %q", cfg.Mode)
	}
}

var (
	_ DataSource = (*Dynamic)(nil)
	_ DataSource = (*Static)(nil)
)
