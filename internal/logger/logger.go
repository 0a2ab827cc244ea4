// Package logger configures structured logging for the Connect server.
//
// Production logs are JSON; everything else uses a compact colored line format.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[37m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
)

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Writer      io.Writer
	Format      string // json or pretty; derived from Environment when empty
	Environment string
	Level       slog.Level
	AddSource   bool
	NoColor     bool
}

// New creates a logger from cfg.
func New(cfg Config) *Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Format == "" {
		cfg.Format = FormatPretty
		if cfg.Environment == "production" {
			cfg.Format = FormatJSON
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == FormatJSON {
		handler = slog.NewJSONHandler(cfg.Writer, opts)
	} else {
		ph := NewPrettyHandler(cfg.Writer, opts)
		ph.noColor = cfg.NoColor
		handler = ph
	}

	return &Logger{Logger: slog.New(handler)}
}

// ParseLevel converts a level name to slog.Level. ok is false for unknown names,
// in which case Info is returned.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// PrettyHandler writes one colored line per record:
//
//	15:04:05 INF message key=value group.key=value
type PrettyHandler struct {
	opts    *slog.HandlerOptions
	noColor bool

	mu     *sync.Mutex
	writer io.Writer

	attrs  []slog.Attr // already qualified with the groups in effect when added
	prefix string      // current group path, "a.b." form
}

// NewPrettyHandler creates a new pretty handler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyHandler{opts: opts, writer: w, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats and writes the record.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 512)

	buf = h.color(buf, colorDim, r.Time.Format("15:04:05"))
	buf = append(buf, ' ')

	levelStr, levelColor := formatLevel(r.Level)
	buf = h.color(buf, levelColor, levelStr)
	buf = append(buf, ' ')

	if h.opts.AddSource && r.PC != 0 {
		fs := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := fs.Next()
		buf = h.color(buf, colorDim, filepath.Base(f.File)+":"+strconv.Itoa(f.Line))
		buf = append(buf, ' ')
	}

	buf = h.color(buf, colorBold, r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, h.prefix, a)
		return true
	})

	if len(attrs) > 0 {
		var line []byte
		for i, a := range attrs {
			if i > 0 {
				line = append(line, ' ')
			}
			line = append(line, a.Key...)
			line = append(line, '=')
			line = append(line, formatValue(a.Value)...)
		}
		buf = append(buf, ' ')
		buf = h.color(buf, colorCyan, string(line))
	}

	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf)
	return err
}

// WithAttrs returns a new handler with additional attributes.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = appendAttr(next.attrs, h.prefix, a)
	}
	return &next
}

// WithGroup returns a new handler that qualifies later keys with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func (h *PrettyHandler) color(buf []byte, code, s string) []byte {
	if h.noColor {
		return append(buf, s...)
	}
	buf = append(buf, code...)
	buf = append(buf, s...)
	return append(buf, colorReset...)
}

// appendAttr flattens group attributes into dotted keys.
func appendAttr(dst []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	if a.Value.Kind() == slog.KindGroup {
		sub := prefix
		if a.Key != "" {
			sub = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			dst = appendAttr(dst, sub, ga)
		}
		return dst
	}
	a.Key = prefix + a.Key
	return append(dst, a)
}

// formatLevel returns the short level label and its color.
func formatLevel(level slog.Level) (levelStr, levelColor string) {
	switch level {
	case slog.LevelDebug:
		return "DBG", colorMagenta
	case slog.LevelInfo:
		return "INF", colorGreen
	case slog.LevelWarn:
		return "WRN", colorYellow
	case slog.LevelError:
		return "ERR", colorRed
	default:
		return level.String(), colorGray
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			return strconv.Quote(s)
		}
		return s
	default:
		return v.String()
	}
}
