package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/logging"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/notify"
)

// ErrDataUnavailable is returned when no resolution strategy produced the resource
var ErrDataUnavailable = errors.New("static data unavailable")

// UnavailableMessage is shown to the user when a snapshot cannot be read
const UnavailableMessage = "無法讀取靜態資料，請稍後再試"

// Resolution strategies, also used as metric labels
const (
	StrategyFilesystem = "filesystem"
	StrategyOrigin     = "origin"
	StrategyPublic     = "public"
)

type prerenderKey struct{}
type originKey struct{}

// WithPrerender marks ctx as a build-time rendering context, which reads
// snapshots straight from the data root
func WithPrerender(ctx context.Context) context.Context {
	return context.WithValue(ctx, prerenderKey{}, true)
}

// IsPrerender reports whether ctx was marked by WithPrerender
func IsPrerender(ctx context.Context) bool {
	v, _ := ctx.Value(prerenderKey{}).(bool)
	return v
}

// WithOrigin records the origin (scheme://host) of the request being served
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, strings.TrimRight(origin, "/"))
}

// Origin returns the origin stored by WithOrigin, or ""
func Origin(ctx context.Context) string {
	v, _ := ctx.Value(originKey{}).(string)
	return v
}

// Config controls where snapshots are looked up
type Config struct {
	// Local directory holding the exported snapshot tree
	DataRoot string
	// Origin used when no request origin is known
	PublicBase string
	// Deadline for each HTTP attempt
	Timeout time.Duration
}

// Fetcher resolves snapshot paths like "company-catalog.json" to decoded JSON
type Fetcher struct {
	client     *http.Client
	dataRoot   string
	publicBase string
	notifier   notify.Notifier
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Option customizes a Fetcher
type Option func(*Fetcher)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithMetrics records fetch outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// New creates a fetcher
func New(cfg Config, notifier notify.Notifier, logger *zap.Logger, opts ...Option) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fetcher{
		client:     &http.Client{Timeout: cfg.Timeout},
		dataRoot:   cfg.DataRoot,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
		notifier:   notifier,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch loads the resource at rel and decodes it into out. On failure the
// user is notified once and an error wrapping ErrDataUnavailable is returned.
func (f *Fetcher) Fetch(ctx context.Context, rel string, out any) error {
	err := f.FetchQuiet(ctx, rel, out)
	if err != nil {
		logging.From(ctx, f.logger).Error("failed to fetch static data",
			zap.String("path", rel), zap.Error(err))
		notify.Error(ctx, f.notifier, UnavailableMessage)
	}
	return err
}

// FetchQuiet is Fetch without the user notification
func (f *Fetcher) FetchQuiet(ctx context.Context, rel string, out any) error {
	clean, err := cleanPath(rel)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}

	if IsPrerender(ctx) && f.dataRoot != "" {
		err := f.readFile(clean, out)
		if err == nil {
			f.metrics.Fetch(StrategyFilesystem, "ok")
			return nil
		}
		f.metrics.Fetch(StrategyFilesystem, "error")
		logging.From(ctx, f.logger).Warn("filesystem read failed, falling back to fetch",
			zap.String("path", clean), zap.Error(err))
	}

	strategy, base := StrategyPublic, f.publicBase
	if origin := Origin(ctx); origin != "" {
		strategy, base = StrategyOrigin, origin
	}

	if err := f.get(ctx, base+"/data/"+clean, out); err != nil {
		f.metrics.Fetch(strategy, "error")
		return fmt.Errorf("%w: %s: %v", ErrDataUnavailable, clean, err)
	}
	f.metrics.Fetch(strategy, "ok")
	return nil
}

func (f *Fetcher) readFile(rel string, out any) error {
	data, err := os.ReadFile(filepath.Join(f.dataRoot, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return decode(data, out)
}

func (f *Fetcher) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := logging.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	return decode(body, out)
}

// decode unmarshals data into a fresh value and only then stores it in out,
// so a failed attempt leaves out untouched for the next strategy.
func decode(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("parse json: %w", json.Unmarshal(data, out))
	}
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// cleanPath normalizes rel and rejects paths escaping the data root
func cleanPath(rel string) (string, error) {
	rel = strings.TrimPrefix(strings.TrimSpace(rel), "/")
	if rel == "" {
		return "", errors.New("empty path")
	}
	clean := path.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("path %q escapes data root", rel)
	}
	return clean, nil
}
