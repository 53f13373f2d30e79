package documents

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"bennypowers.dev/varmotion/internal/collections"
	"bennypowers.dev/varmotion/internal/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a Manager's documents when their files change on disk, so
// that running animations pick up edited custom properties on their next
// frame
type Watcher struct {
	manager  *Manager
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time

	// OnReload, when set, is called after each reload attempt
	OnReload func(path string, err error)
}

// NewWatcher watches the directories of every document currently open in
// manager. Directories rather than files are watched because editors often
// save by replacing the file.
func NewWatcher(manager *Manager, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := collections.NewSet[string]()
	for _, path := range manager.Paths() {
		dirs.Add(filepath.Dir(path))
	}
	for _, dir := range collections.SortedStrings(dirs) {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	return &Watcher{
		manager:  manager,
		watcher:  watcher,
		debounce: debounce,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run processes file events until ctx is cancelled, then releases the
// underlying watcher
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("File watcher error: %v", err)

		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.reload(path)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
		return
	}

	path := clean(event.Name)
	if w.manager.Get(path) == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

// due removes and returns the pending paths that have been quiet for the
// debounce interval
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var ready []string
	for path, changed := range w.pending {
		if now.Sub(changed) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) reload(path string) {
	err := w.manager.Reload(path)
	if err != nil {
		log.Warn("Failed to reload %s: %v", path, err)
	} else {
		log.Info("Reloaded %s", path)
	}
	if w.OnReload != nil {
		w.OnReload(path, err)
	}
}
