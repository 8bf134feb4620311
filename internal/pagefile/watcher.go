package pagefile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/logging"
)

// ChangedHandler is called with the parsed page when a watched file changes.
type ChangedHandler func(page *domain.Page)

// debounce collapses the burst of events an editor save produces.
const debounce = 200 * time.Millisecond

// Watcher live-imports page files. When a *.page.json file in a watched
// directory is written, it is parsed and handed to onChange.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangedHandler
	logger   *log.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	// skip holds files this process just exported so they are not re-imported
	skip map[string]time.Time
	done chan struct{}
}

// NewWatcher creates a Watcher. Call Add to start watching directories.
func NewWatcher(onChange ChangedHandler, logger *log.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		watcher:  watcher,
		onChange: onChange,
		logger:   logging.Or(logger),
		timers:   make(map[string]*time.Timer),
		skip:     make(map[string]time.Time),
		done:     make(chan struct{}),
	}

	go w.watchLoop()

	return w, nil
}

// Add starts watching dir, creating it if needed.
func (w *Watcher) Add(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}
	return w.watcher.Add(absDir)
}

// Ignore suppresses the next change to path, used after exporting.
func (w *Watcher) Ignore(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.skip[absPath] = time.Now()
	w.mu.Unlock()
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !IsPageFile(event.Name) {
				continue
			}
			absPath, _ := filepath.Abs(event.Name)
			w.schedule(absPath)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("page watcher error", "err", err)
		}
	}
}

func (w *Watcher) schedule(absPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, exists := w.timers[absPath]; exists {
		t.Stop()
	}
	w.timers[absPath] = time.AfterFunc(debounce, func() { w.fire(absPath) })
}

func (w *Watcher) fire(absPath string) {
	w.mu.Lock()
	delete(w.timers, absPath)
	exportedAt, skipped := w.skip[absPath]
	delete(w.skip, absPath)
	w.mu.Unlock()

	if skipped && time.Since(exportedAt) < 2*time.Second {
		return
	}
	if _, err := os.Stat(absPath); err != nil {
		return
	}

	page, err := Import(absPath)
	if err != nil {
		w.logger.Warn("page file rejected", "file", absPath, "err", err)
		return
	}
	w.logger.Info("page file changed", "file", filepath.Base(absPath), "page", page.ID)
	if w.onChange != nil {
		w.onChange(page)
	}
}
