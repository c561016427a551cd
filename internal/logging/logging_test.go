package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})
	l.Debug("hidden")
	l.Info("shown", "circuit", "Monza")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "circuit=Monza")
	assert.NotContains(t, out, "\x1b[", "no colors off a terminal")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{Verbose: true})
	l.Debug("tick", "t", 0.5)
	assert.Contains(t, buf.String(), "tick")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{JSON: true})
	l.Error("error loading data", "error", "boom")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "error loading data", rec["msg"])
	assert.Equal(t, "boom", rec["error"])
}

func TestSetup_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, Options{})
	slog.Info("via default")
	assert.Contains(t, buf.String(), "via default")
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
