package logging

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/bossy-radar/radar/internal/config"
)

// RequestIDKey is the log field carrying the per-request id
const RequestIDKey = "request_id"

type ctxKey struct{}

// New builds a zap logger from the log section of the config
func New(cfg config.LogConfig) (*zap.Logger, error) {
	ws, err := buildWriteSyncer(cfg)
	if err != nil {
		return nil, fmt.Errorf("build log writer: %w", err)
	}

	core := zapcore.NewCore(buildEncoder(cfg.Format), ws, ParseLevel(cfg.Level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func buildWriteSyncer(cfg config.LogConfig) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(cfg.Output) {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout), nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nil
	default:
		// anything else is a file path, rotated
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:  cfg.Output,
			MaxSize:   cfg.MaxSizeMB,
			MaxAge:    cfg.MaxAgeDays,
			Compress:  true,
			LocalTime: true,
		}), nil
	}
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR onto zap levels, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithRequestID stores id on ctx, generating one when id is empty
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// From returns logger annotated with the request id carried by ctx
func From(ctx context.Context, logger *zap.Logger) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if id := RequestID(ctx); id != "" {
		return logger.With(zap.String(RequestIDKey, id))
	}
	return logger
}
