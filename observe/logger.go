package observe

import (
	"context"
	"io"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents a logging level.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLogLevel parses a string log level. Unknown values map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

func (l LogLevel) zap() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// structuredLogger writes one JSON object per line through a zap JSON core.
// Loggers derived with WithComponent share the core's locked writer.
type structuredLogger struct {
	logger *zap.Logger
}

// NewLogger returns a JSON logger writing to stderr at level.
func NewLogger(level string) Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter returns a JSON logger writing to w at level. Entries
// carry "timestamp", "level" and "msg" followed by the fields; fields named
// in RedactedFields are masked.
func NewLoggerWithWriter(level string, w io.Writer) Logger {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.MessageKey = "msg"
	enc.NameKey = zapcore.OmitKey
	enc.CallerKey = zapcore.OmitKey
	enc.StacktraceKey = zapcore.OmitKey
	enc.EncodeLevel = zapcore.LowercaseLevelEncoder
	enc.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(t.UTC().Format(time.RFC3339Nano))
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(enc),
		zapcore.Lock(zapcore.AddSync(w)),
		ParseLogLevel(level).zap(),
	)
	return &structuredLogger{logger: zap.New(core)}
}

// WithComponent returns a logger with component context attached.
func (l *structuredLogger) WithComponent(meta ComponentMeta) Logger {
	var fields []zap.Field
	if id := meta.ComponentID(); id != "" {
		fields = append(fields, zap.String("health.component", id))
	}
	if meta.Group != "" {
		fields = append(fields, zap.String("health.group", meta.Group))
	}
	if len(meta.Tags) > 0 {
		fields = append(fields, zap.Strings("health.tags", meta.Tags))
	}
	return &structuredLogger{logger: l.logger.With(fields...)}
}

func (l *structuredLogger) Info(_ context.Context, msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields)
}

func (l *structuredLogger) Warn(_ context.Context, msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields)
}

func (l *structuredLogger) Error(_ context.Context, msg string, fields ...Field) {
	l.log(LevelError, msg, fields)
}

func (l *structuredLogger) Debug(_ context.Context, msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields)
}

func (l *structuredLogger) log(level LogLevel, msg string, fields []Field) {
	ce := l.logger.Check(level.zap(), msg)
	if ce == nil {
		return
	}
	zf := make([]zap.Field, len(fields))
	for i, f := range fields {
		if slices.Contains(RedactedFields, f.Key) {
			zf[i] = zap.String(f.Key, "[REDACTED]")
			continue
		}
		zf[i] = zap.Any(f.Key, f.Value)
	}
	ce.Write(zf...)
}

var _ Logger = (*structuredLogger)(nil)
