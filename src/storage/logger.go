package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Logger is the application logger. It embeds a slog.Logger whose handler
// writes one formatted line per record to stdout and the log file, and fans
// every line out to live subscribers (the dashboard's log stream).
type Logger struct {
	*slog.Logger
	core *logCore
}

type logCore struct {
	mu     sync.Mutex
	stdout io.Writer
	file   *os.File
	path   string
	level  slog.Level
	subs   map[chan string]struct{}
	closed bool
}

type fanoutHandler struct {
	core  *logCore
	attrs []slog.Attr
	group string
}

// ParseLevel maps a config level string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger opens (or creates) the log file and returns a ready Logger.
func NewLogger(path string, level slog.Level) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	core := &logCore{
		stdout: os.Stdout,
		file:   f,
		path:   path,
		level:  level,
		subs:   make(map[chan string]struct{}),
	}
	return &Logger{
		Logger: slog.New(&fanoutHandler{core: core}),
		core:   core,
	}, nil
}

// Subscribe returns a channel receiving every formatted log line from now
// on, plus a cancel func. Slow consumers lose lines rather than block the
// logger.
func (l *Logger) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 64)
	l.core.mu.Lock()
	l.core.subs[ch] = struct{}{}
	l.core.mu.Unlock()

	cancel := func() {
		l.core.mu.Lock()
		if _, ok := l.core.subs[ch]; ok {
			delete(l.core.subs, ch)
			close(ch)
		}
		l.core.mu.Unlock()
	}
	return ch, cancel
}

// CheckRotate archives the log file once it grows past maxBytes and reopens
// a fresh one. The archive keeps the old name with a timestamp suffix.
func (l *Logger) CheckRotate(maxBytes int64) error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	if l.core.file == nil || maxBytes <= 0 {
		return nil
	}
	info, err := l.core.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < maxBytes {
		return nil
	}

	// 1. close the current file
	if err := l.core.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	// 2. move it aside under a timestamped name
	archive := fmt.Sprintf("%s.%s", l.core.path, time.Now().Format("20060102_150405"))
	if err := os.Rename(l.core.path, archive); err != nil {
		return fmt.Errorf("failed to archive log file: %w", err)
	}
	// 3. reopen a fresh file
	f, err := os.OpenFile(l.core.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to reopen log file: %w", err)
	}
	l.core.file = f
	return nil
}

// Close stops fan-out and closes the log file.
func (l *Logger) Close() error {
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	if l.core.closed {
		return nil
	}
	l.core.closed = true
	for ch := range l.core.subs {
		delete(l.core.subs, ch)
		close(ch)
	}
	if l.core.file != nil {
		return l.core.file.Close()
	}
	return nil
}

func (h *fanoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.core.level
}

func (h *fanoutHandler) Handle(_ context.Context, r slog.Record) error {
	line := h.format(r)

	h.core.mu.Lock()
	defer h.core.mu.Unlock()
	if h.core.closed {
		return nil
	}
	fmt.Fprintln(h.core.stdout, line)
	if h.core.file != nil {
		fmt.Fprintln(h.core.file, line)
	}
	for ch := range h.core.subs {
		select {
		case ch <- line:
		default:
		}
	}
	return nil
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &fanoutHandler{core: h.core, attrs: merged, group: h.group}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &fanoutHandler{core: h.core, attrs: h.attrs, group: group}
}

func (h *fanoutHandler) format(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006/01/02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(levelTag(r.Level))
	b.WriteString("] ")
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		h.writeAttr(&b, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a)
		return true
	})
	return b.String()
}

func (h *fanoutHandler) writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if h.group != "" {
		key = h.group + "." + key
	}
	fmt.Fprintf(b, " %s=%v", key, a.Value.Resolve().Any())
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN"
	case l >= slog.LevelDebug+4:
		return "INFO"
	default:
		return "DEBUG"
	}
}
