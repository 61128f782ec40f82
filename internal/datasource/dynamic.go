package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/notify"
	"github.com/bossy-radar/radar/internal/query"
)

// Dynamic answers every operation with one GET against the backend API.
// Failures are reported to the user once and returned; nothing is retried.
type Dynamic struct {
	baseURL  string
	client   *http.Client
	notifier notify.Notifier
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewDynamic creates a backend-backed data source
func NewDynamic(baseURL string, timeout time.Duration, deps Deps) *Dynamic {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := deps.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dynamic{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		notifier: deps.Notifier,
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

func (d *Dynamic) ListCompanies(ctx context.Context, p query.Params) (domain.Page[domain.Company], error) {
	var out domain.Page[domain.Company]
	err := d.get(ctx, "list_companies", "/api/v1/companies/", p.Values("code"), &out)
	return out, err
}

func (d *Dynamic) GetCompanyCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	var out []domain.CatalogEntry
	err := d.get(ctx, "get_company_catalog", "/api/v1/companies/catalog", nil, &out)
	return out, err
}

func (d *Dynamic) GetCompanyProfile(ctx context.Context, code string) (*domain.CompanyProfile, error) {
	var out domain.CompanyProfile
	path := "/api/v1/companies/" + url.PathEscape(code) + "/profile"
	if err := d.get(ctx, "get_company_profile", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *Dynamic) GetYearlySummary(ctx context.Context, p query.Params) (domain.Page[domain.YearlySummaryItem], error) {
	var out domain.Page[domain.YearlySummaryItem]
	err := d.get(ctx, "get_yearly_summary", "/api/v1/companies/yearly-summary", p.Values("company_code"), &out)
	return out, err
}

// maxIndexYears bounds how many single-year probes one index build may make
const maxIndexYears = 30

// GetYearlySummaryIndex lists the years that have yearly summary data. The
// backend derives summary years from employee benefit disclosures, so the
// index is probed from that endpoint: earliest and latest year, then one
// single-row request per year in between, at most maxIndexYears back from the
// latest. Probes do not notify the user; any failure yields an empty index.
func (d *Dynamic) GetYearlySummaryIndex(ctx context.Context) (domain.YearlySummaryIndex, error) {
	idx := domain.YearlySummaryIndex{Years: []int{}}
	log := logging.From(ctx, d.logger)

	probe := func(p query.Params) (domain.Page[domain.EmployeeBenefit], error) {
		var out domain.Page[domain.EmployeeBenefit]
		err := d.request(ctx, "probe_yearly_index", "/api/v1/mops/employee-benefits", p.Values("company_code"), &out, true)
		return out, err
	}

	latest, err := probe(query.Params{Page: 1, Size: 1, Sort: []string{"-year", "-id"}})
	if err != nil {
		log.Warn("yearly summary index unavailable", zap.Error(err))
		return idx, nil
	}
	if latest.Total == 0 || len(latest.Items) == 0 {
		return idx, nil
	}
	earliest, err := probe(query.Params{Page: 1, Size: 1, Sort: []string{"year", "id"}})
	if err != nil {
		log.Warn("yearly summary index unavailable", zap.Error(err))
		return idx, nil
	}
	if len(earliest.Items) == 0 {
		return idx, nil
	}

	last := latest.Items[0].Year
	first := max(earliest.Items[0].Year, last-maxIndexYears+1, 1)
	if first != earliest.Items[0].Year {
		log.Debug("yearly summary index range capped",
			zap.Int("earliest", earliest.Items[0].Year), zap.Int("from", first))
	}

	for y := first; y <= last; y++ {
		page, err := probe(query.Params{Page: 1, Size: 1, Years: []int{y}})
		if err != nil {
			log.Warn("yearly summary index unavailable", zap.Int("year", y), zap.Error(err))
			return domain.YearlySummaryIndex{Years: []int{}}, nil
		}
		if page.Total > 0 {
			idx.Years = append(idx.Years, y)
		}
	}
	return idx, nil
}

func (d *Dynamic) GetLeaderboards(ctx context.Context) (*domain.Leaderboards, error) {
	var out domain.Leaderboards
	if err := d.get(ctx, "get_leaderboards", "/api/v1/leaderboards", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (d *Dynamic) ListViolations(ctx context.Context, p query.Params) (domain.Page[domain.Violation], error) {
	var out domain.Page[domain.Violation]
	err := d.get(ctx, "list_violations", "/api/v1/violations/", p.Values("company_code"), &out)
	return out, err
}

func (d *Dynamic) ListEmployeeBenefits(ctx context.Context, p query.Params) (domain.Page[domain.EmployeeBenefit], error) {
	var out domain.Page[domain.EmployeeBenefit]
	err := d.get(ctx, "list_employee_benefits", "/api/v1/mops/employee-benefits", p.Values("company_code"), &out)
	return out, err
}

func (d *Dynamic) ListNonManagerSalaries(ctx context.Context, p query.Params) (domain.Page[domain.NonManagerSalary], error) {
	var out domain.Page[domain.NonManagerSalary]
	err := d.get(ctx, "list_non_manager_salaries", "/api/v1/mops/non-manager-salaries", p.Values("company_code"), &out)
	return out, err
}

func (d *Dynamic) ListWelfarePolicies(ctx context.Context, p query.Params) (domain.Page[domain.WelfarePolicy], error) {
	var out domain.Page[domain.WelfarePolicy]
	err := d.get(ctx, "list_welfare_policies", "/api/v1/mops/welfare-policies", p.Values("company_code"), &out)
	return out, err
}

func (d *Dynamic) ListSalaryAdjustments(ctx context.Context, p query.Params) (domain.Page[domain.SalaryAdjustment], error) {
	var out domain.Page[domain.SalaryAdjustment]
	err := d.get(ctx, "list_salary_adjustments", "/api/v1/mops/salary-adjustments", p.Values("company_code"), &out)
	return out, err
}

func (d *Dynamic) GetSystemSyncStatus(ctx context.Context) (*domain.SyncStatus, error) {
	var out domain.SyncStatus
	if err := d.get(ctx, "get_system_sync_status", "/api/v1/system/sync-status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get performs one backend call. Every failure path notifies the user once.
func (d *Dynamic) get(ctx context.Context, op, path string, params url.Values, out any) error {
	return d.request(ctx, op, path, params, out, false)
}

// request is get with the user notification optional
func (d *Dynamic) request(ctx context.Context, op, path string, params url.Values, out any, quiet bool) error {
	u := d.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	log := logging.From(ctx, d.logger).With(zap.String("op", op), zap.String("url", u))

	fail := func(msg string, err error) error {
		d.metrics.BackendRequest(op, "error")
		if quiet {
			log.Warn("backend request failed", zap.Error(err))
			return err
		}
		log.Error("backend request failed", zap.Error(err))
		notify.Error(ctx, d.notifier, msg)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fail(GenericErrorMessage, &NetworkError{Op: op, Message: "create request", Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fail(GenericErrorMessage, &NetworkError{Op: op, Message: "do request", Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(GenericErrorMessage, &NetworkError{Op: op, Status: resp.StatusCode, Message: "read body", Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, err := responseError(op, resp.StatusCode, body)
		return fail(msg, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fail(GenericErrorMessage, &NetworkError{
			Op: op, Status: resp.StatusCode, Message: "parse json", Err: fmt.Errorf("parse json: %w", err),
		})
	}

	d.metrics.BackendRequest(op, "ok")
	log.Debug("backend request ok", zap.Int("status", resp.StatusCode))
	return nil
}
