package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/catalog"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/filters"
	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/notify"
	"github.com/bossy-radar/radar/internal/query"
	"github.com/bossy-radar/radar/internal/watchlist"
)

// Handler holds the HTTP dependencies
type Handler struct {
	ds        datasource.DataSource
	catalog   *catalog.Store
	watchlist *watchlist.Store
	drainer   notify.Drainer
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a new Handler. watchlist and drainer may be nil, which
// disables their routes.
func NewHandler(ds datasource.DataSource, cat *catalog.Store, wl *watchlist.Store, drainer notify.Drainer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ds:        ds,
		catalog:   cat,
		watchlist: wl,
		drainer:   drainer,
		logger:    logger,
		now:       time.Now,
	}
}

// errorBody mirrors the backend error payload so clients can reuse one
// interceptor for both
type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errResponse(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Detail: msg})
}

// dataError maps a data source failure to a status and user-facing message
func (h *Handler) dataError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *datasource.ValidationError
		nerr *datasource.NetworkError
	)
	switch {
	case errors.As(err, &verr):
		errResponse(w, http.StatusUnprocessableEntity, verr.Message())
	case errors.As(err, &nerr) && nerr.Status == http.StatusNotFound:
		errResponse(w, http.StatusNotFound, nerr.Message)
	case errors.As(err, &nerr):
		errResponse(w, http.StatusBadGateway, datasource.GenericErrorMessage)
	case errors.Is(err, fetcher.ErrDataUnavailable):
		errResponse(w, http.StatusServiceUnavailable, fetcher.UnavailableMessage)
	default:
		logging.From(r.Context(), h.logger).Error("request failed", zap.Error(err))
		errResponse(w, http.StatusInternalServerError, datasource.GenericErrorMessage)
	}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "time": h.now().UTC().Format(time.RFC3339)})
}

// ListCompanies godoc
//
//	GET /api/companies?page=&size=&sort=&name=&industry=&market_type=&code=
//
// The filter part of the query is parsed like the search page does. When the
// query is not in canonical form a Link header names the canonical URL.
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := filters.FromQuery(q)

	if canonical := st.Query(); canonical.Encode() != filterPart(q).Encode() {
		link := url.URL{Path: r.URL.Path, RawQuery: canonical.Encode()}
		w.Header().Set("Link", "<"+link.String()+`>; rel="canonical"`)
	}

	p := st.Params()
	p.Codes = q["code"]

	page, err := h.ds.ListCompanies(r.Context(), p)
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// filterPart keeps only the keys the search filter understands
func filterPart(q url.Values) url.Values {
	out := url.Values{}
	for _, k := range []string{"page", "size", "sort", "name", "industry", "market_type"} {
		if vs, ok := q[k]; ok {
			out[k] = vs
		}
	}
	return out
}

func (h *Handler) CompanyCatalog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Fetch(r.Context(), r.URL.Query().Get("refresh") == "1")
	if err != nil && entries == nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) CompanyProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.ds.GetCompanyProfile(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) YearlySummary(w http.ResponseWriter, r *http.Request) {
	page, err := h.ds.GetYearlySummary(r.Context(), query.ParseValues(r.URL.Query(), "company_code"))
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) YearlySummaryIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := h.ds.GetYearlySummaryIndex(r.Context())
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

func (h *Handler) Leaderboards(w http.ResponseWriter, r *http.Request) {
	lb, err := h.ds.GetLeaderboards(r.Context())
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *Handler) Violations(w http.ResponseWriter, r *http.Request) {
	page, err := h.ds.ListViolations(r.Context(), query.ParseValues(r.URL.Query(), "company_code"))
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// MOPS godoc
//
//	GET /api/mops/{kind}
//
// kind is one of employee-benefits, non-manager-salaries, welfare-policies
// or salary-adjustments.
func (h *Handler) MOPS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := query.ParseValues(r.URL.Query(), "company_code")

	var (
		page any
		err  error
	)
	switch chi.URLParam(r, "kind") {
	case "employee-benefits":
		page, err = h.ds.ListEmployeeBenefits(ctx, p)
	case "non-manager-salaries":
		page, err = h.ds.ListNonManagerSalaries(ctx, p)
	case "welfare-policies":
		page, err = h.ds.ListWelfarePolicies(ctx, p)
	case "salary-adjustments":
		page, err = h.ds.ListSalaryAdjustments(ctx, p)
	default:
		errResponse(w, http.StatusNotFound, "unknown disclosure type")
		return
	}
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.ds.GetSystemSyncStatus(r.Context())
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type watchlistResponse struct {
	Codes     []string `json:"codes"`
	Companies any      `json:"companies"`
}

// Watchlist godoc
//
//	GET /api/watchlist
//
// Returns the watched codes and their freshly loaded company records.
func (h *Handler) Watchlist(w http.ResponseWriter, r *http.Request) {
	companies, err := h.watchlist.Refresh(r.Context(), h.ds)
	if err != nil {
		logging.From(r.Context(), h.logger).Warn("watchlist refresh failed, serving cached records", zap.Error(err))
		companies = h.watchlist.Companies()
	}
	writeJSON(w, http.StatusOK, watchlistResponse{Codes: h.watchlist.Codes(), Companies: nonNil(companies)})
}

// WatchAdd godoc
//
//	PUT /api/watchlist/{code}
func (h *Handler) WatchAdd(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	entry, ok, err := h.catalog.Lookup(r.Context(), code)
	if err != nil {
		h.dataError(w, r, err)
		return
	}
	if !ok {
		errResponse(w, http.StatusNotFound, "Company not found")
		return
	}
	if err := h.watchlist.Add(r.Context(), entry.Company(h.now())); err != nil {
		logging.From(r.Context(), h.logger).Error("watchlist add failed", zap.String("code", code), zap.Error(err))
		errResponse(w, http.StatusInternalServerError, datasource.GenericErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code, "watching": true})
}

// WatchRemove godoc
//
//	DELETE /api/watchlist/{code}
func (h *Handler) WatchRemove(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if err := h.watchlist.Remove(r.Context(), code); err != nil {
		logging.From(r.Context(), h.logger).Error("watchlist remove failed", zap.String("code", code), zap.Error(err))
		errResponse(w, http.StatusInternalServerError, datasource.GenericErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"code": code, "watching": false})
}

// WatchToggle godoc
//
//	POST /api/watchlist/{code}/toggle
func (h *Handler) WatchToggle(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if h.watchlist.IsWatching(code) {
		h.WatchRemove(w, r)
		return
	}
	h.WatchAdd(w, r)
}

// Notifications godoc
//
//	GET /api/notifications?limit=50
//
// Hands out pending notifications oldest first. Each is delivered once.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	if err != nil || limit <= 0 {
		limit = 50
	}
	items, err := h.drainer.Drain(r.Context(), limit)
	if err != nil {
		logging.From(r.Context(), h.logger).Error("drain notifications failed", zap.Error(err))
		errResponse(w, http.StatusInternalServerError, datasource.GenericErrorMessage)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
