package logutil

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"
)

// LevelTrace is below slog.LevelDebug and is rendered as TRACE.
const LevelTrace slog.Level = -8

// NewLogger returns a text logger writing to w at level, with sources
// trimmed to their base name.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				switch attr.Value.Any().(slog.Level) {
				case LevelTrace:
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

// Trace logs at LevelTrace through logger, or slog.Default when logger is
// nil. The record is not built when the level is disabled; args are still
// evaluated by the caller.
func Trace(logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, LevelTrace) {
		return
	}
	pc, _, _, _ := runtime.Caller(1)
	record := slog.NewRecord(time.Now(), LevelTrace, msg, pc)
	record.Add(args...)
	_ = logger.Handler().Handle(ctx, record)
}
