package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Format: "text", Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, nil, "warn message")
	logger.Error(ctx, errors.New("boom"), "error message")

	out := buf.String()
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
	assert.Contains(t, out, "boom")
}

func TestLoggerWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	logger.WithComponent("registry").Info(context.Background(), "component loaded", "name", "argument-parser")

	out := buf.String()
	assert.Contains(t, out, `"component":"registry"`)
	assert.Contains(t, out, `"name":"argument-parser"`)
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Format: "json", Output: &buf})

	child := logger.With("target", "python")
	child.Info(context.Background(), "render started")

	assert.Contains(t, buf.String(), `"target":"python"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("anything-else"))
}
