package watcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/contre95/lyricsvault/src/features/importing"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for the inbox to settle before emitting.
const DefaultDebounce = 5 * time.Second

// Watcher monitors the inbox directory and emits one event per burst of new files
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounce      time.Duration
	debounceTimer *time.Timer
	lastPath      string
	debounceMutex sync.Mutex
	runMutex      sync.Mutex
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- importing.FileEvent
}

// NewWatcher creates a new file system watcher. A zero debounce uses DefaultDebounce.
func NewWatcher(eventChan chan<- importing.FileEvent, debounce time.Duration) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		watcher:   watcher,
		debounce:  debounce,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching watchPath for new lyric and audio files
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.runMutex.Lock()
	defer w.runMutex.Unlock()

	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.watcher.Add(watchPath); err != nil {
		return err
	}
	w.running = true

	go w.watchLoop(ctx)

	slog.Info("File watcher started successfully")
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() {
	w.runMutex.Lock()
	defer w.runMutex.Unlock()
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent restarts the debounce timer for created, written or renamed-in supported files
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if !importing.IsSupported(event.Name) {
		return
	}

	slog.Debug("Detected inbox file", "file", event.Name, "op", event.Op.String())

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	w.lastPath = event.Name
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.emitDebounceEvent)
}

// emitDebounceEvent emits a file event after the debounce period
func (w *Watcher) emitDebounceEvent() {
	w.debounceMutex.Lock()
	path := w.lastPath
	w.debounceMutex.Unlock()

	event := importing.FileEvent{
		Path:      path,
		EventType: importing.FileCreated,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Info("Emitted file event after debounce", "path", event.Path)
	default:
		slog.Warn("Event channel full, dropping file event", "path", event.Path)
	}
}
