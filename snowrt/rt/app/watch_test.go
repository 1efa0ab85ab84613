package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gekko3d/snowfall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcher_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snowfall.toml")
	require.NoError(t, os.WriteFile(path, []byte("max_age = 10.0\n"), 0o644))

	w, err := WatchConfig(path, snowfall.NewNopLogger())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("max_age = 30.0\n"), 0o644))

	// a truncate can surface as its own write event, so wait for the final content
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Updates():
			if cfg.MaxAge == 30 {
				return
			}
		case <-deadline:
			t.Fatal("config change not observed")
		}
	}
}

func TestConfigWatcher_PublishKeepsNewest(t *testing.T) {
	w := &ConfigWatcher{updates: make(chan snowfall.Config, 1)}

	first := snowfall.DefaultConfig()
	first.MaxAge = 1
	second := snowfall.DefaultConfig()
	second.MaxAge = 2
	w.publish(first)
	w.publish(second)

	got := <-w.Updates()
	assert.Equal(t, float32(2), got.MaxAge)
	select {
	case <-w.Updates():
		t.Fatal("older config should have been dropped")
	default:
	}
}

func TestWatchConfig_MissingDirectory(t *testing.T) {
	_, err := WatchConfig(filepath.Join(t.TempDir(), "nope", "snowfall.toml"), nil)
	assert.Error(t, err)
}
