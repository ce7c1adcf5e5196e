package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

var rootLogger *slog.Logger

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorWhite  = "\033[37m"
	colorGray   = "\033[90m"
)

func init() {
	level := slog.LevelInfo
	if debug, _ := strconv.ParseBool(os.Getenv("PDF2TREE_DEBUG")); debug {
		level = slog.LevelDebug
	}

	// stderr so that JSON written to stdout stays clean
	handlers := []slog.Handler{&lineHandler{w: os.Stderr, level: level, withColors: true}}

	if path := os.Getenv("PDF2TREE_LOG_FILE"); path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: cannot open %s: %v\n", path, err)
		} else {
			handlers = append(handlers, &lineHandler{w: file, level: slog.LevelDebug})
		}
	}

	rootLogger = slog.New(fanout(handlers))
}

// GetLogger returns a logger tagged with the given module name.
func GetLogger(module string) *slog.Logger {
	return rootLogger.With("module", module)
}

type lineHandler struct {
	w          io.Writer
	level      slog.Level
	attrs      []slog.Attr
	withColors bool
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return colorRed, "ERROR"
	case level >= slog.LevelWarn:
		return colorYellow, "WARNING"
	case level >= slog.LevelInfo:
		return colorBlue, "INFO"
	default:
		return colorWhite, "DEBUG"
	}
}

func (h *lineHandler) Handle(_ context.Context, record slog.Record) error {
	color, levelStr := levelStyle(record.Level)

	var module string
	var args []string
	collect := func(a slog.Attr) bool {
		if a.Key == "module" {
			module = a.Value.String()
			return true
		}
		args = append(args, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	record.Attrs(collect)

	var b strings.Builder
	if module != "" {
		if h.withColors {
			fmt.Fprintf(&b, "%s[%s]%s ", colorGray, module, colorReset)
		} else {
			fmt.Fprintf(&b, "[%s] ", module)
		}
	}
	if h.withColors {
		fmt.Fprintf(&b, "%s%s%s: %s", color, levelStr, colorReset, record.Message)
	} else {
		fmt.Fprintf(&b, "%s: %s", levelStr, record.Message)
	}
	if len(args) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(args, ", "))
	}
	// Format: [module] LEVEL: msg (k=v, ...) [HH:MM:SS]
	fmt.Fprintf(&b, " [%s]\n", record.Time.Format("15:04:05"))

	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &lineHandler{w: h.w, level: h.level, attrs: merged, withColors: h.withColors}
}

// groups are flattened; every caller logs plain key/value pairs
func (h *lineHandler) WithGroup(string) slog.Handler { return h }

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}
	return nil
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
