package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_FileSink(t *testing.T) {
	dir := t.TempDir()
	previous := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(previous) })

	log, err := New(Options{Dir: dir, Level: "debug"})
	require.NoError(t, err)

	log.Infow("tenant resolved", "tenant", "acme")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(filepath.Join(dir, "tenantmap.log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"tenant resolved"`)
	assert.Contains(t, string(raw), `"level":"info"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zapcore.WarnLevel)

	log.Infow("dropped")
	log.Warnw("kept", "tenant", "acme")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "acme", entry["tenant"])
	assert.Contains(t, entry, "ts")
}
