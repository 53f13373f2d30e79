package documents_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bennypowers.dev/varmotion/internal/documents"
	"bennypowers.dev/varmotion/internal/parser/asimonim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsChangedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.css")
	require.NoError(t, os.WriteFile(path, []byte(`:root { --to: #F00; }`), 0o644))

	manager := documents.NewManager()
	require.NoError(t, manager.LoadFile(path, asimonim.Options{}))
	require.Equal(t, "#F00", manager.PropertyValue("--to"))

	watcher, err := documents.NewWatcher(manager, 20*time.Millisecond)
	require.NoError(t, err)

	reloaded := make(chan error, 8)
	watcher.OnReload = func(_ string, err error) {
		reloaded <- err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx)
	}()

	require.NoError(t, os.WriteFile(path, []byte(`:root { --to: rebeccapurple; }`), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("file change was not picked up")
	}

	assert.Eventually(t, func() bool {
		return manager.PropertyValue("--to") == "rebeccapurple"
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherIgnoresUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.css")
	require.NoError(t, os.WriteFile(path, []byte(`:root { --to: #F00; }`), 0o644))

	manager := documents.NewManager()
	require.NoError(t, manager.LoadFile(path, asimonim.Options{}))

	watcher, err := documents.NewWatcher(manager, 10*time.Millisecond)
	require.NoError(t, err)

	reloaded := make(chan string, 8)
	watcher.OnReload = func(p string, _ error) {
		reloaded <- p
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Run(ctx) }()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.css"), []byte(`:root { --x: 1; }`), 0o644))

	select {
	case p := <-reloaded:
		t.Fatalf("unexpected reload of %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}
