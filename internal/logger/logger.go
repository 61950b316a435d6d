// Package logger provides the structured logger used across the service.
// Records are JSON lines written through zap; trace and span IDs from the
// context are attached when a span is active.
package logger

import (
	"context"
	"io"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger emits.
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) zapLevel() zapcore.Level {
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

// Record is what an event hook receives for every emitted entry.
type Record struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// EventFn is invoked synchronously for records at or above its level.
type EventFn func(ctx context.Context, r Record)

// Events wires optional hooks per level. Nil entries are ignored.
type Events struct {
	Debug EventFn
	Info  EventFn
	Warn  EventFn
	Error EventFn
}

// LoggerInterface is the logging port every component depends on.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	Debugc(ctx context.Context, caller int, msg string, args ...any)
	Infoc(ctx context.Context, caller int, msg string, args ...any)
	Warnc(ctx context.Context, caller int, msg string, args ...any)
	Errorc(ctx context.Context, caller int, msg string, args ...any)
}

var _ LoggerInterface = (*Logger)(nil)

// Logger implements LoggerInterface on top of a zap core.
type Logger struct {
	base   *zap.Logger
	events *Events
}

// New constructs a Logger writing JSON to w at the given minimum level.
// events may be nil.
func New(w io.Writer, minLevel Level, serviceName string, events *Events) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(minLevel.zapLevel()),
	)

	base := zap.New(core, zap.AddCaller()).With(zap.String("service", serviceName))

	return &Logger{base: base, events: events}
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{base: zap.NewNop()}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelDebug, 3, msg, args...)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelInfo, 3, msg, args...)
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelWarn, 3, msg, args...)
}

func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, LevelError, 3, msg, args...)
}

func (l *Logger) Debugc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelDebug, caller, msg, args...)
}

func (l *Logger) Infoc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelInfo, caller, msg, args...)
}

func (l *Logger) Warnc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelWarn, caller, msg, args...)
}

func (l *Logger) Errorc(ctx context.Context, caller int, msg string, args ...any) {
	l.write(ctx, LevelError, caller, msg, args...)
}

// write emits one entry. caller is the number of frames between the public
// method's caller and this function.
func (l *Logger) write(ctx context.Context, level Level, caller int, msg string, args ...any) {
	ce := l.base.WithOptions(zap.AddCallerSkip(caller-1)).Check(level.zapLevel(), msg)
	if ce == nil {
		return
	}

	fields := toFields(args)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	ce.Write(fields...)

	l.emit(ctx, level, msg, args)
}

func (l *Logger) emit(ctx context.Context, level Level, msg string, args []any) {
	if l.events == nil {
		return
	}

	var fn EventFn
	switch level {
	case LevelDebug:
		fn = l.events.Debug
	case LevelInfo:
		fn = l.events.Info
	case LevelWarn:
		fn = l.events.Warn
	case LevelError:
		fn = l.events.Error
	}
	if fn == nil {
		return
	}

	rec := Record{Level: level, Message: msg, Fields: make(map[string]any, len(args)/2)}
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			rec.Fields[key] = args[i+1]
		}
	}
	fn(ctx, rec)
}

// toFields converts alternating key/value args into zap fields. A dangling
// key or a non-string key is reported under "!BADKEY".
func toFields(args []any) []zap.Field {
	fields := make([]zap.Field, 0, len(args)/2+2)
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			fields = append(fields, zap.Any("!BADKEY", args[i]))
			continue
		}
		if err, isErr := args[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, args[i+1]))
	}
	return fields
}
