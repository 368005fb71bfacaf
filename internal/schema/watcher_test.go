package schema_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networktocode/schema-enforcer/internal/schema"
)

func startWatcher(t *testing.T, root string) <-chan schema.WatchEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	w := schema.NewWatcher([]string{root}, []string{".yml", ".yaml", ".json"}, discardLogger())
	events := make(chan schema.WatchEvent, 8)
	go func() {
		_ = w.Watch(ctx, func(ev schema.WatchEvent) {
			events <- ev
		})
	}()
	select {
	case <-w.Ready:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return events
}

func waitEvent(t *testing.T, events <-chan schema.WatchEvent) schema.WatchEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return schema.WatchEvent{}
	}
}

func TestWatcherReportsChangedFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	events := startWatcher(t, root)

	path := filepath.Join(root, "dns.yml")
	require.NoError(t, os.WriteFile(path, []byte("dns_servers: []\n"), 0o600))

	assert.Equal(t, path, waitEvent(t, events).Path)
}

func TestWatcherIgnoresOtherExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	events := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("scratch\n"), 0o600))
	path := filepath.Join(root, "ntp.yml")
	require.NoError(t, os.WriteFile(path, []byte("ntp_servers: []\n"), 0o600))

	// Only the structured file produces an event.
	assert.Equal(t, path, waitEvent(t, events).Path)
}

// Each settled callback must carry the path of its own event, even after
// later events have passed through the loop.
func TestWatcherCallbackKeepsOwnEventPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	events := startWatcher(t, root)

	first := filepath.Join(root, "first.yml")
	require.NoError(t, os.WriteFile(first, []byte("a: 1\n"), 0o600))
	assert.Equal(t, first, waitEvent(t, events).Path)

	second := filepath.Join(root, "second.yml")
	require.NoError(t, os.WriteFile(second, []byte("b: 2\n"), 0o600))
	assert.Equal(t, second, waitEvent(t, events).Path)
}
