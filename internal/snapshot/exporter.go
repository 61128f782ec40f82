package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/domain"
	"github.com/bossy-radar/radar/internal/query"
)

// Stats summarizes one export run
type Stats struct {
	Companies    int
	Profiles     int
	Years        int
	SummaryItems int
	Files        int
	Duration     time.Duration
}

// Exporter pulls every resource from a data source and writes the snapshot
// tree read by the static data source
type Exporter struct {
	src         datasource.DataSource
	dir         string
	concurrency int
	pageSize    int
	logger      *zap.Logger
	files       atomic.Int64
}

// NewExporter creates an exporter writing under cfg.OutputDir
func NewExporter(src datasource.DataSource, cfg config.ExportConfig, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 8
	}
	if cfg.PageSize < 1 || cfg.PageSize > domain.MaxPageSize {
		cfg.PageSize = domain.MaxPageSize
	}
	return &Exporter{
		src:         src,
		dir:         cfg.OutputDir,
		concurrency: cfg.Concurrency,
		pageSize:    cfg.PageSize,
		logger:      logger,
	}
}

// Export writes the full snapshot tree. The first failure stops the run;
// files already written stay in place.
func (e *Exporter) Export(ctx context.Context) (Stats, error) {
	start := time.Now()
	e.files.Store(0)
	var stats Stats

	e.logger.Info("starting full export", zap.String("dir", e.dir))

	catalog, err := e.exportCatalog(ctx)
	if err != nil {
		return stats, err
	}
	stats.Companies = len(catalog)

	stats.Years, stats.SummaryItems, err = e.exportYearlySummaries(ctx)
	if err != nil {
		return stats, err
	}

	if err := e.exportMOPS(ctx); err != nil {
		return stats, err
	}

	if err := e.exportSingle(ctx, datasource.LeaderboardsPath, func(ctx context.Context) (any, error) {
		return e.src.GetLeaderboards(ctx)
	}); err != nil {
		return stats, err
	}
	if err := e.exportSingle(ctx, datasource.SystemStatusPath, func(ctx context.Context) (any, error) {
		return e.src.GetSystemSyncStatus(ctx)
	}); err != nil {
		return stats, err
	}

	stats.Profiles, err = e.exportProfiles(ctx, catalog)
	if err != nil {
		return stats, err
	}

	stats.Files = int(e.files.Load())
	stats.Duration = time.Since(start)
	e.logger.Info("full export completed",
		zap.Int("companies", stats.Companies),
		zap.Int("profiles", stats.Profiles),
		zap.Int("years", stats.Years),
		zap.Int("files", stats.Files),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

func (e *Exporter) exportCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	catalog, err := e.src.GetCompanyCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("export catalog: %w", err)
	}
	if catalog == nil {
		catalog = []domain.CatalogEntry{}
	}
	if err := e.write(datasource.CatalogPath, catalog); err != nil {
		return nil, err
	}
	e.logger.Info("exported company catalog", zap.Int("companies", len(catalog)))
	return catalog, nil
}

// exportProfiles writes one profile per catalog entry with a bounded pool
func (e *Exporter) exportProfiles(ctx context.Context, catalog []domain.CatalogEntry) (int, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	var done atomic.Int64
	for _, c := range catalog {
		code := c.Code
		g.Go(func() error {
			profile, err := e.src.GetCompanyProfile(gctx, code)
			if err != nil {
				return fmt.Errorf("export profile %s: %w", code, err)
			}
			if err := e.write(datasource.ProfilePath(code), profile); err != nil {
				return err
			}
			if n := done.Add(1); n%100 == 0 {
				e.logger.Info("exported company profiles", zap.Int64("count", n))
			}
			return nil
		})
	}

	err := g.Wait()
	return int(done.Load()), err
}

// exportYearlySummaries writes one shard per indexed year, then the index.
// The index is written last so readers never see a year without its shard.
func (e *Exporter) exportYearlySummaries(ctx context.Context) (years, items int, err error) {
	idx, err := e.src.GetYearlySummaryIndex(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("export yearly index: %w", err)
	}

	for _, y := range idx.Years {
		shard, err := allPages(ctx, e.src.GetYearlySummary, query.Params{
			Years:   []int{y},
			Include: []string{"all"},
			Sort:    []string{"company_code"},
		}, e.pageSize)
		if err != nil {
			return 0, 0, fmt.Errorf("export yearly summary %d: %w", y, err)
		}
		if err := e.write(datasource.YearlyShardPath(y), shard); err != nil {
			return 0, 0, err
		}
		items += len(shard)
		e.logger.Info("exported yearly summary", zap.Int("year", y), zap.Int("items", len(shard)))
	}

	if idx.Years == nil {
		idx.Years = []int{}
	}
	if err := e.write(datasource.YearlyIndexPath, idx); err != nil {
		return 0, 0, err
	}
	return len(idx.Years), items, nil
}

func (e *Exporter) exportMOPS(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exportList(gctx, e, datasource.EmployeeBenefitsPath, e.src.ListEmployeeBenefits)
	})
	g.Go(func() error {
		return exportList(gctx, e, datasource.NonManagerSalariesPath, e.src.ListNonManagerSalaries)
	})
	g.Go(func() error {
		return exportList(gctx, e, datasource.WelfarePoliciesPath, e.src.ListWelfarePolicies)
	})
	g.Go(func() error {
		return exportList(gctx, e, datasource.SalaryAdjustmentsPath, e.src.ListSalaryAdjustments)
	})
	return g.Wait()
}

func (e *Exporter) exportSingle(ctx context.Context, rel string, get func(context.Context) (any, error)) error {
	v, err := get(ctx)
	if err != nil {
		return fmt.Errorf("export %s: %w", rel, err)
	}
	return e.write(rel, v)
}

func exportList[T any](ctx context.Context, e *Exporter, rel string, list func(context.Context, query.Params) (domain.Page[T], error)) error {
	items, err := allPages(ctx, list, query.Params{Sort: []string{"-year", "-id"}}, e.pageSize)
	if err != nil {
		return fmt.Errorf("export %s: %w", rel, err)
	}
	if err := e.write(rel, items); err != nil {
		return err
	}
	e.logger.Info("exported list", zap.String("path", rel), zap.Int("items", len(items)))
	return nil
}

// allPages walks every page of a list operation
func allPages[T any](ctx context.Context, list func(context.Context, query.Params) (domain.Page[T], error), p query.Params, size int) ([]T, error) {
	out := []T{}
	for page := 1; ; page++ {
		res, err := list(ctx, p.WithPage(page, size))
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if page >= res.TotalPages || len(res.Items) == 0 {
			return out, nil
		}
	}
}

// write encodes v to rel under the output directory, replacing any existing
// file atomically
func (e *Exporter) write(rel string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", rel, err)
	}

	path := filepath.Join(e.dir, filepath.FromSlash(rel))
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	e.files.Add(1)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
