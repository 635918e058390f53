package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buswatch.yaml")
	body := `
interval: 2s
thresholds:
  pending_warning: 500ms
  pending_critical: 5s
  unread_warning: 100
  unread_critical: 500
emitters:
  - kind: prometheus
    addr: ":9090"
adapters:
  - kind: rabbitmq
    base_url: "http://localhost:15672"
    vhost: "/"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 500*time.Millisecond, cfg.Thresholds.PendingWarning)
	require.Len(t, cfg.Emitters, 1)
	assert.Equal(t, "prometheus", cfg.Emitters[0].Kind)
	require.Len(t, cfg.Adapters, 1)
	assert.Equal(t, "rabbitmq", cfg.Adapters[0].Kind)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buswatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interval: 1s\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, _ := w.Watch(ctx)

	require.NoError(t, os.WriteFile(path, []byte("interval: 3s\n"), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, 3*time.Second, cfg.Interval)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}
