package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/common/cleaner"
	"github.com/bossy-radar/radar/internal/logging"
)

// Level of a user-visible notification
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

// Notification is one transient user-visible message
type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Drainer hands out pending notifications oldest first
type Drainer interface {
	Drain(ctx context.Context, count int) ([]Notification, error)
}

// Error sends msg at error level, logging but otherwise ignoring delivery failures
func Error(ctx context.Context, n Notifier, msg string) {
	if n == nil {
		return
	}
	_ = n.Notify(ctx, Notification{Level: LevelError, Message: msg})
}

// Dispatcher cleans and stamps notifications, then fans them out to sinks.
// Sink failures are logged, never returned.
type Dispatcher struct {
	sinks   []Notifier
	cleaner *cleaner.Cleaner
	logger  *zap.Logger
	now     func() time.Time
}

// NewDispatcher creates a dispatcher over sinks
func NewDispatcher(logger *zap.Logger, sinks ...Notifier) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		sinks:   sinks,
		cleaner: cleaner.NewCleaner(),
		logger:  logger,
		now:     time.Now,
	}
}

func (d *Dispatcher) Notify(ctx context.Context, n Notification) error {
	n.Message = d.cleaner.Text(n.Message)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Level == "" {
		n.Level = LevelInfo
	}
	if n.RequestID == "" {
		n.RequestID = logging.RequestID(ctx)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	for _, s := range d.sinks {
		if err := s.Notify(ctx, n); err != nil {
			logging.From(ctx, d.logger).Warn("notification sink failed",
				zap.String("notification_id", n.ID), zap.Error(err))
		}
	}
	return nil
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	fields := []zap.Field{zap.String("notification_id", n.ID), zap.String("level", string(n.Level))}
	log := logging.From(ctx, l.logger)
	switch n.Level {
	case LevelError:
		log.Error(n.Message, fields...)
	case LevelWarning:
		log.Warn(n.Message, fields...)
	default:
		log.Info(n.Message, fields...)
	}
	return nil
}

// Memory keeps the most recent notifications in process
type Memory struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewMemory creates an in-process queue holding at most limit entries
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 100
	}
	return &Memory{limit: limit}
}

func (m *Memory) Notify(_ context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = append(m.items, n)
	if over := len(m.items) - m.limit; over > 0 {
		m.items = m.items[over:]
	}
	return nil
}

func (m *Memory) Drain(_ context.Context, count int) ([]Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if count <= 0 || count > len(m.items) {
		count = len(m.items)
	}
	out := make([]Notification, count)
	copy(out, m.items[:count])
	m.items = m.items[count:]
	return out, nil
}

// Messages returns the pending messages without draining them
func (m *Memory) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.items))
	for _, n := range m.items {
		out = append(out, n.Message)
	}
	return out
}
