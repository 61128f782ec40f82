package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bossy-radar/radar/internal/catalog"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/notify"
	"github.com/bossy-radar/radar/internal/watchlist"
)

type fixture struct {
	srv       *httptest.Server
	notes     *notify.Memory
	persister *watchlist.MemoryPersister
	metrics   *metrics.Metrics
}

func writeFixture(t *testing.T, root, rel string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

// newFixture serves a static snapshot tree. Snapshot reads go back through
// the server's own /data/ route, as they would for a deployed site.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	semi := "半導體業"
	writeFixture(t, root, datasource.CatalogPath, []domain.CatalogEntry{
		{Code: "2330", Name: "台積電", MarketType: "sii", Industry: &semi},
		{Code: "2317", Name: "鴻海", MarketType: "sii"},
		{Code: "6488", Name: "環球晶", MarketType: "otc", Industry: &semi},
	})
	writeFixture(t, root, datasource.ProfilePath("2330"), domain.CompanyProfile{
		Company: domain.Company{Code: "2330", Name: "台積電", MarketType: "sii"},
	})
	writeFixture(t, root, datasource.YearlyIndexPath, domain.YearlySummaryIndex{Years: []int{112, 113}})
	writeFixture(t, root, datasource.YearlyShardPath(113), []domain.YearlySummaryItem{
		{CompanyCode: "2330", CompanyName: "台積電", Year: 113},
	})
	writeFixture(t, root, datasource.EmployeeBenefitsPath, []domain.EmployeeBenefit{
		{MOPSRecord: domain.MOPSRecord{ID: 1, CompanyCode: domain.Str("2330"), RawCompanyCode: "2330", CompanyName: "台積電", Year: 113, MarketType: "sii"}},
	})

	logger := zaptest.NewLogger(t)
	m := metrics.New()
	notes := notify.NewMemory(50)

	var router http.Handler
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	f := fetcher.New(fetcher.Config{DataRoot: root, PublicBase: srv.URL, Timeout: 5 * time.Second}, notes, logger, fetcher.WithMetrics(m))
	ds := datasource.NewStatic(f, logger)
	cat := catalog.NewStore(ds, time.Hour, logger, m)

	persister := watchlist.NewMemoryPersister()
	wl, err := watchlist.Open(context.Background(), persister, logger, m)
	require.NoError(t, err)

	h := NewHandler(ds, cat, wl, notes, logger)
	router = NewRouter(h, root, srv.URL, logger, m)

	return &fixture{srv: srv, notes: notes, persister: persister, metrics: m}
}

func (f *fixture) do(t *testing.T, method, path string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, nil)
	require.NoError(t, err)
	return f.send(t, req, out)
}

func (f *fixture) send(t *testing.T, req *http.Request, out any) *http.Response {
	t.Helper()
	resp, err := f.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out), string(body))
	}
	return resp
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	var body map[string]string
	resp := f.do(t, http.MethodGet, "/health", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestListCompanies(t *testing.T) {
	f := newFixture(t)

	var page domain.Page[domain.Company]
	resp := f.do(t, http.MethodGet, "/api/companies?market_type=OTC", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Link"))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "6488", page.Items[0].Code)

	q := url.Values{"page": {"1"}, "size": {"500"}, "industry": {"半導體業"}}
	resp = f.do(t, http.MethodGet, "/api/companies?"+q.Encode(), &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 100, page.Size)
	assert.Equal(t, 2, page.Total)
	assert.Contains(t, resp.Header.Get("Link"), `rel="canonical"`)
	assert.Contains(t, resp.Header.Get("Link"), "size=100")
	assert.NotContains(t, resp.Header.Get("Link"), "page=")

	resp = f.do(t, http.MethodGet, "/api/companies?code=2317&code=2330", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, page.Total)
}

func TestProfileAndMissingSnapshot(t *testing.T) {
	f := newFixture(t)

	var profile domain.CompanyProfile
	resp := f.do(t, http.MethodGet, "/api/companies/2330/profile", &profile)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "台積電", profile.Company.Name)

	var body errorBody
	resp = f.do(t, http.MethodGet, "/api/companies/9999/profile", &body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, fetcher.UnavailableMessage, body.Detail)

	var notes []notify.Notification
	f.do(t, http.MethodGet, "/api/notifications", &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, fetcher.UnavailableMessage, notes[0].Message)

	f.do(t, http.MethodGet, "/api/notifications", &notes)
	assert.Empty(t, notes)
}

func TestYearlySummaryAndIndex(t *testing.T) {
	f := newFixture(t)

	var idx domain.YearlySummaryIndex
	f.do(t, http.MethodGet, "/api/yearly-summary/index", &idx)
	assert.Equal(t, []int{112, 113}, idx.Years)

	var page domain.Page[domain.YearlySummaryItem]
	resp := f.do(t, http.MethodGet, "/api/yearly-summary?year=113", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, page.Total)

	// the 112 shard is missing, so asking for every year fails
	resp = f.do(t, http.MethodGet, "/api/yearly-summary", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMOPSAndViolations(t *testing.T) {
	f := newFixture(t)

	var page domain.Page[domain.EmployeeBenefit]
	resp := f.do(t, http.MethodGet, "/api/mops/employee-benefits?company_code=2330", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, page.Total)

	resp = f.do(t, http.MethodGet, "/api/mops/unknown", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var violations domain.Page[domain.Violation]
	resp = f.do(t, http.MethodGet, "/api/violations?company_code=2330", &violations)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, violations.Total)
}

func TestWatchlistRoutes(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodPut, "/api/watchlist/2330", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodPut, "/api/watchlist/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var toggled map[string]any
	f.do(t, http.MethodPost, "/api/watchlist/2317/toggle", &toggled)
	assert.Equal(t, true, toggled["watching"])

	var list watchlistResponse
	f.do(t, http.MethodGet, "/api/watchlist", &list)
	assert.Equal(t, []string{"2330", "2317"}, list.Codes)
	companies, ok := list.Companies.([]any)
	require.True(t, ok)
	assert.Len(t, companies, 2)

	f.do(t, http.MethodPost, "/api/watchlist/2317/toggle", &toggled)
	assert.Equal(t, false, toggled["watching"])
	resp = f.do(t, http.MethodDelete, "/api/watchlist/2330", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	saved, err := f.persister.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestDataRouteAndMetrics(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, http.MethodGet, "/data/company-catalog.json", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	f.do(t, http.MethodGet, "/api/companies", nil)

	resp, err := f.srv.Client().Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `radar_http_requests_total{method="GET",route="/api/companies",status="200"}`), text)
	assert.Contains(t, text, `radar_snapshot_fetches_total{outcome="ok",strategy="origin"}`)
}

func TestSnapshotFetchesIgnoreRequestHost(t *testing.T) {
	f := newFixture(t)

	var hits atomic.Int32
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"code":"6666","name":"EVIL","market_type":"sii"}]`))
	}))
	t.Cleanup(other.Close)
	otherURL, err := url.Parse(other.URL)
	require.NoError(t, err)

	for _, path := range []string{"/api/companies/catalog", "/api/companies", "/api/companies/2330/profile"} {
		req, err := http.NewRequest(http.MethodGet, f.srv.URL+path, nil)
		require.NoError(t, err)
		req.Host = otherURL.Host
		req.Header.Set("X-Forwarded-Proto", "http")
		resp := f.send(t, req, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
	assert.Zero(t, hits.Load())

	var catalog []domain.CatalogEntry
	f.do(t, http.MethodGet, "/api/companies/catalog", &catalog)
	require.Len(t, catalog, 3)
	for _, e := range catalog {
		assert.NotEqual(t, "6666", e.Code)
	}
}

func TestSelfOrigin(t *testing.T) {
	tests := []struct {
		addr, want string
	}{
		{":8080", "http://127.0.0.1:8080"},
		{"0.0.0.0:9000", "http://127.0.0.1:9000"},
		{"[::]:9000", "http://127.0.0.1:9000"},
		{"localhost:8081", "http://localhost:8081"},
		{"10.0.0.5:80", "http://10.0.0.5:80"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SelfOrigin(tt.addr), tt.addr)
	}
}
