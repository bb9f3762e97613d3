package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/fabtycoon-go/internal/application/common"
	"github.com/andrescamacho/fabtycoon-go/internal/domain/shared"
	"github.com/andrescamacho/fabtycoon-go/internal/infrastructure/config"
)

// Sink persists log lines
type Sink interface {
	Log(ctx context.Context, source, scenarioID, message, level string, metadata map[string]interface{}) error
}

// normalizeLevel maps config and caller spellings onto DEBUG/INFO/WARNING/ERROR
func normalizeLevel(level string) string {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return "DEBUG"
	case "WARN", "WARNING":
		return "WARNING"
	case "ERROR":
		return "ERROR"
	default:
		return "INFO"
	}
}

func toSlogLevel(level string) slog.Level {
	switch normalizeLevel(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func levelName(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARNING"
	case l >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// replaceAttr renders top-level keys as time/level/message with our level names
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.MessageKey:
		a.Key = "message"
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(levelName(l))
		}
	}
	return a
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: toSlogLevel(level), ReplaceAttr: replaceAttr}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// Logger is the process-wide common.Logger, a slog handler stamped with the injected
// clock. Lines below the configured level are dropped; WARNING and ERROR lines also go to
// the sink when one is attached.
type Logger struct {
	source  string
	handler slog.Handler
	clock   shared.Clock
	f       *os.File

	sink     Sink
	scenario func() string
	pending  sync.WaitGroup
}

// New creates a logger from the logging config
func New(cfg config.LoggingConfig, source string) (*Logger, error) {
	var out io.Writer = os.Stdout
	var f *os.File

	switch cfg.Output {
	case "stderr":
		out = os.Stderr
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		var err error
		f, err = os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
	}

	l := NewWithWriter(out, cfg.Level, cfg.Format, source, nil)
	l.f = f
	return l, nil
}

// NewWithWriter creates a logger writing to w, used by tests and the CLI
func NewWithWriter(w io.Writer, level, format, source string, clock shared.Clock) *Logger {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &Logger{
		source:   source,
		handler:  newHandler(w, level, format),
		clock:    clock,
		scenario: func() string { return "" },
	}
}

// WithSink attaches a persistent sink. scenario reports the scenario id stored with each line.
func (l *Logger) WithSink(sink Sink, scenario func() string) *Logger {
	l.sink = sink
	if scenario != nil {
		l.scenario = scenario
	}
	return l
}

// Slog exposes the logger to code that takes a *slog.Logger
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.handler).With("source", l.source)
}

// Log implements common.Logger
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	lvl := toSlogLevel(level)
	if !l.handler.Enabled(context.Background(), lvl) {
		return
	}
	l.write(lvl, message, metadata)

	if l.sink != nil && lvl >= slog.LevelWarn {
		scenarioID := l.scenario()
		name := levelName(lvl)
		l.pending.Add(1)
		// persisted async so a slow database never stalls a tick
		go func() {
			defer l.pending.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.sink.Log(ctx, l.source, scenarioID, message, name, metadata); err != nil {
				l.write(slog.LevelError, "failed to persist log", map[string]interface{}{"error": err.Error()})
			}
		}()
	}
}

// write stamps the record with the logger clock rather than the wall clock slog would use
func (l *Logger) write(lvl slog.Level, message string, metadata map[string]interface{}) {
	r := slog.NewRecord(l.clock.Now(), lvl, message, 0)
	r.AddAttrs(slog.String("source", l.source))
	if len(metadata) > 0 {
		r.AddAttrs(slog.Group("metadata", metadataArgs(metadata)...))
	}
	_ = l.handler.Handle(context.Background(), r)
}

// Sync waits for pending sink writes
func (l *Logger) Sync() {
	l.pending.Wait()
}

// Close flushes pending writes and closes the log file, if any
func (l *Logger) Close() error {
	l.Sync()
	if l.f != nil {
		return l.f.Close()
	}
	return nil
}

func metadataArgs(metadata map[string]interface{}) []any {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		args = append(args, slog.Any(k, metadata[k]))
	}
	return args
}

var _ common.Logger = (*Logger)(nil)
