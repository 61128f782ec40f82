package snapshot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/query"
)

func writeJSON(t *testing.T, root, rel string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, data, 0o644))
}

func staticSource(t *testing.T, root string) *datasource.Static {
	t.Helper()
	public := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(public.Close)
	return datasource.NewStatic(fetcher.New(fetcher.Config{DataRoot: root, PublicBase: public.URL}, nil, nil), nil)
}

func benefit(id int64, code string, year int) domain.EmployeeBenefit {
	return domain.EmployeeBenefit{
		MOPSRecord: domain.MOPSRecord{
			ID: id, CompanyCode: domain.Str(code), RawCompanyCode: code,
			CompanyName: "公司" + code, Year: year, MarketType: "sii",
		},
		EmployeeCount: domain.Int(100 + id),
	}
}

// fixtureTree writes a small snapshot tree to export from
func fixtureTree(t *testing.T) string {
	root := t.TempDir()
	semi := "半導體業"
	writeJSON(t, root, datasource.CatalogPath, []domain.CatalogEntry{
		{Code: "2330", Name: "台積電", MarketType: "sii", Industry: &semi},
		{Code: "2317", Name: "鴻海", MarketType: "sii"},
		{Code: "6488", Name: "環球晶", MarketType: "otc", Industry: &semi},
	})
	for _, code := range []string{"2330", "2317", "6488"} {
		writeJSON(t, root, datasource.ProfilePath(code), domain.CompanyProfile{
			Company:          domain.Company{Code: code, Name: "公司" + code, MarketType: "sii"},
			EmployeeBenefits: []domain.EmployeeBenefit{benefit(1, code, 112)},
		})
	}
	writeJSON(t, root, datasource.YearlyIndexPath, domain.YearlySummaryIndex{Years: []int{112, 113}})
	writeJSON(t, root, datasource.YearlyShardPath(112), []domain.YearlySummaryItem{
		{CompanyCode: "2330", CompanyName: "台積電", Year: 112, ViolationsYearCount: domain.Int(2)},
	})
	writeJSON(t, root, datasource.YearlyShardPath(113), []domain.YearlySummaryItem{
		{CompanyCode: "2330", CompanyName: "台積電", Year: 113},
		{CompanyCode: "2317", CompanyName: "鴻海", Year: 113},
	})
	writeJSON(t, root, datasource.EmployeeBenefitsPath, []domain.EmployeeBenefit{
		benefit(1, "2330", 112), benefit(2, "2317", 113), benefit(3, "2330", 113),
	})
	writeJSON(t, root, datasource.NonManagerSalariesPath, []domain.NonManagerSalary{})
	writeJSON(t, root, datasource.WelfarePoliciesPath, []domain.WelfarePolicy{})
	writeJSON(t, root, datasource.SalaryAdjustmentsPath, []domain.SalaryAdjustment{})
	writeJSON(t, root, datasource.LeaderboardsPath, domain.Leaderboards{LatestYear: 113})
	writeJSON(t, root, datasource.SystemStatusPath, domain.SyncStatus{
		Companies: map[string]domain.CategorySyncStatus{"all": {Count: 3}},
	})
	return root
}

func TestExportRoundTrip(t *testing.T) {
	in := fixtureTree(t)
	out := t.TempDir()
	ctx := fetcher.WithPrerender(context.Background())

	src := staticSource(t, in)
	e := NewExporter(src, config.ExportConfig{OutputDir: out, Concurrency: 2, PageSize: 1}, zaptest.NewLogger(t))

	stats, err := e.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Companies)
	assert.Equal(t, 3, stats.Profiles)
	assert.Equal(t, 2, stats.Years)
	assert.Equal(t, 3, stats.SummaryItems)
	// catalog, 3 profiles, 2 shards, index, 4 mops lists, leaderboards, status
	assert.Equal(t, 13, stats.Files)

	exported := staticSource(t, out)

	wantCatalog, err := src.GetCompanyCatalog(ctx)
	require.NoError(t, err)
	gotCatalog, err := exported.GetCompanyCatalog(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(wantCatalog, gotCatalog); diff != "" {
		t.Errorf("catalog mismatch (-want +got):\n%s", diff)
	}

	profile, err := exported.GetCompanyProfile(ctx, "6488")
	require.NoError(t, err)
	assert.Equal(t, "6488", profile.Company.Code)

	for _, p := range []query.Params{{}, {Years: []int{112}}, {Codes: []string{"2317"}}} {
		want, err := src.GetYearlySummary(ctx, p)
		require.NoError(t, err)
		got, err := exported.GetYearlySummary(ctx, p)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("yearly summary %+v mismatch (-want +got):\n%s", p, diff)
		}
	}

	wantBenefits, err := src.ListEmployeeBenefits(ctx, query.Params{Size: 100})
	require.NoError(t, err)
	gotBenefits, err := exported.ListEmployeeBenefits(ctx, query.Params{Size: 100})
	require.NoError(t, err)
	if diff := cmp.Diff(wantBenefits, gotBenefits); diff != "" {
		t.Errorf("employee benefits mismatch (-want +got):\n%s", diff)
	}

	lb, err := exported.GetLeaderboards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 113, lb.LatestYear)
}

func TestExportStopsOnMissingProfile(t *testing.T) {
	in := fixtureTree(t)
	require.NoError(t, os.Remove(filepath.Join(in, filepath.FromSlash(datasource.ProfilePath("2317")))))

	e := NewExporter(staticSource(t, in), config.ExportConfig{OutputDir: t.TempDir()}, nil)
	_, err := e.Export(fetcher.WithPrerender(context.Background()))
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "2317")
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b.json")
	require.NoError(t, writeFileAtomic(path, []byte(`[1]`)))
	require.NoError(t, writeFileAtomic(path, []byte(`[2]`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
