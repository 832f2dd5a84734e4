package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/otcheck/pkg/core"
)

// EventType represents the kind of change the watcher reports.
type EventType string

const (
	EventVerify EventType = "VERIFY"
	EventDelete EventType = "DELETE"
)

// Event is emitted each time the watcher re-validates or drops a case.
type Event struct {
	Type      EventType
	Path      string
	Result    *Result
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	if e.Result == nil {
		return fmt.Sprintf("%s %s", e.Type, e.Path)
	}
	status := "ok"
	if !e.Result.Passed() {
		status = "FAIL"
	}
	return fmt.Sprintf("%s %s %s", e.Type, e.Path, status)
}

// Watch validates every case once, then re-validates case files as they
// change until ctx is cancelled. The returned channel is closed when the
// watcher stops.
func (s *Suite) Watch(ctx context.Context, svc *core.Service) (<-chan Event, error) {
	if !s.config.DisableCache {
		if err := s.cache.Load(); err != nil {
			s.config.Logger.Warn("verdict cache unavailable", "error", err)
		}
	}

	events := make(chan Event)
	w := newWatchWorker(s, svc, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	suite     *Suite
	svc       *core.Service
	events    chan Event
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc

	// done is closed once the worker stops accepting events; sendMu keeps
	// close(events) from racing an in-flight send.
	done   chan struct{}
	sendMu sync.RWMutex
}

func newWatchWorker(suite *Suite, svc *core.Service, events chan Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("case-watcher"),
		suite:      suite,
		svc:        svc,
		events:     events,
		done:       make(chan struct{}),
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.addTree(watcher, w.suite.Path); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(50 * time.Millisecond)
	w.suite.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	if err := w.StartFunc(runCtx, w.run); err != nil {
		cancel()
		return err
	}

	w.initialPass(runCtx)
	return nil
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
		}
	})
}

// addTree registers root and every directory below it, except the system dir.
func (w *watchWorker) addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, err := w.suite.rel(p); err == nil && rel == w.suite.config.SystemDir {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

// initialPass schedules every existing case so the consumer starts from a
// complete picture.
func (w *watchWorker) initialPass(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		files, err := w.suite.List(ctx)
		if err != nil {
			return err
		}
		for _, rel := range files {
			w.scheduleVerify(ctx, rel)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.reportError(fmt.Errorf("initial pass: %w", err))
	}))
}

// processFilesystemEvent maps one fsnotify event to suite work.
func (w *watchWorker) processFilesystemEvent(ctx context.Context, event fsnotify.Event) {
	logger := w.suite.config.Logger
	logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	rel, err := w.suite.rel(event.Name)
	if err != nil {
		logger.Debug("event outside root", "path", event.Name)
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(w.watcher, event.Name); err != nil {
				w.reportError(err)
			}
			return
		}
	}

	if !w.suite.isCase(rel) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.suite.cache.Delete(rel)
		w.sendEvent(ctx, rel, Event{Type: EventDelete, Path: rel, Timestamp: time.Now().Unix()})
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.scheduleVerify(ctx, rel)
	}
}

func (w *watchWorker) scheduleVerify(ctx context.Context, rel string) {
	w.debouncer.add(rel, func() {
		if _, err := os.Stat(w.suite.abs(rel)); os.IsNotExist(err) {
			return
		}
		res := w.suite.RunOne(ctx, w.svc, rel)
		if !w.suite.config.DisableCache {
			if err := w.suite.cache.Save(); err != nil {
				w.reportError(err)
			}
		}
		w.deliver(ctx, Event{Type: EventVerify, Path: rel, Result: &res, Timestamp: time.Now().Unix()})
	})
}

// sendEvent routes a ready event through the debouncer so it is ordered with
// pending verifications of the same path.
func (w *watchWorker) sendEvent(ctx context.Context, key string, e Event) {
	w.debouncer.add(key, func() {
		w.deliver(ctx, e)
	})
}

// deliver sends e unless the worker has stopped or ctx is done.
func (w *watchWorker) deliver(ctx context.Context, e Event) {
	w.sendMu.RLock()
	defer w.sendMu.RUnlock()

	select {
	case <-w.done:
		return
	default:
	}

	select {
	case w.events <- e:
	case <-w.done:
	case <-ctx.Done():
	}
}

// closeEvents stops delivery and closes the events channel once no send is
// in flight.
func (w *watchWorker) closeEvents() {
	close(w.done)
	w.sendMu.Lock()
	close(w.events)
	w.sendMu.Unlock()
}

func (w *watchWorker) reportError(err error) {
	w.suite.config.Logger.Error("watcher error", "error", err)
	if w.suite.config.ErrorHandler != nil {
		w.suite.config.ErrorHandler(err)
	}
}

// run is the main event loop for the watcher worker.
func (w *watchWorker) run(ctx context.Context) (err error) {
	defer w.closeEvents()
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("watcher panic: %v", recovered)

			if w.suite.config.Logger.Enabled(ctx, slog.LevelDebug) {
				w.suite.config.Logger.Error("watcher panic",
					"error", panicErr,
					"stack", string(debug.Stack()),
				)
			} else {
				w.suite.config.Logger.Error("watcher panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer w.suite.setWatcherActive(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Let in-flight verifications finish before the events channel closes.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.processFilesystemEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.reportError(wErr)
		}
	}
}
