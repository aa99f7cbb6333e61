package logutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LevelTrace)

	Trace(logger, "encoded", "ids", []int{1, 2})

	out := buf.String()
	assert.Contains(t, out, "level=TRACE")
	assert.Contains(t, out, "msg=encoded")
	assert.Contains(t, out, "source=logutil_test.go:")
}

func TestTrace_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	Trace(logger, "encoded")

	assert.Empty(t, buf.String())
}

func TestTrace_NilLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(NewLogger(&buf, LevelTrace))
	t.Cleanup(func() { slog.SetDefault(prev) })

	Trace(nil, "decoded", "tokens", 3)

	assert.Contains(t, buf.String(), "level=TRACE")
	assert.Contains(t, buf.String(), "tokens=3")
}
