package logger

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strings"
)

var base = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// Init configures the process logger. Production environments get JSON,
// everything else gets human-readable text.
func Init(environment string, level string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(environment, "production") {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	base = slog.New(h)
	slog.SetDefault(base)
	base.Info("logger initialized", slog.String("level", opts.Level.Level().String()))
}

func Debug(msg string, fields map[string]any) {
	log(slog.LevelDebug, msg, fields)
}

func Info(msg string, fields map[string]any) {
	log(slog.LevelInfo, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	log(slog.LevelWarn, msg, fields)
}

func Error(msg string, fields map[string]any) {
	log(slog.LevelError, msg, fields)
}

func log(level slog.Level, msg string, fields map[string]any) {
	base.LogAttrs(context.Background(), level, msg, attrs(fields)...)
}

// attrs converts fields to slog attributes in key order.
func attrs(fields map[string]any) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, fields[k]))
	}
	return out
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
