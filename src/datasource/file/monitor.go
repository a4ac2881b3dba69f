package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"DataScope/src/storage"

	"github.com/fsnotify/fsnotify"
)

// Monitor watches the dataset directory and its immediate subdirectories and
// fires the callback once a burst of file events has settled.
type Monitor struct {
	dir      string
	logger   *storage.Logger
	debounce time.Duration
	onChange func()

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
}

func NewMonitor(dir string, logger *storage.Logger, debounce time.Duration, onChange func()) *Monitor {
	return &Monitor{
		dir:      dir,
		logger:   logger,
		debounce: debounce,
		onChange: onChange,
	}
}

// Start begins watching until the context is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = w

	// 1. watch the data dir itself
	if err := w.Add(m.dir); err != nil {
		w.Close()
		return err
	}
	// 2. and each first-level subdirectory
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		w.Close()
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := w.Add(filepath.Join(m.dir, e.Name())); err != nil {
				m.logger.Warn("failed to watch subdirectory", "dir", e.Name(), "err", err)
			}
		}
	}

	m.logger.Info("watching dataset directory", "dir", m.dir)
	go m.loop(ctx)
	return nil
}

func (m *Monitor) loop(ctx context.Context) {
	defer m.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			m.cancelPending()
			return
		case ev, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handle(ev)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("dataset watcher error", "err", err)
		}
	}
}

func (m *Monitor) handle(ev fsnotify.Event) {
	// New subdirectories join the watch so their files get noticed too.
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := m.watcher.Add(ev.Name); err != nil {
				m.logger.Warn("failed to watch new subdirectory", "dir", ev.Name, "err", err)
			}
			m.bump()
			return
		}
	}
	if !isDatasetFile(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		m.logger.Debug("dataset file changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())
		m.bump()
	}
}

// bump (re)arms the debounce timer; the callback runs once events go quiet.
func (m *Monitor) bump() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.onChange)
}

func (m *Monitor) cancelPending() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func isDatasetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
