package dataset

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"DataScope/src/storage"
	"DataScope/src/table"

	"github.com/go-gota/gota/series"
)

// ErrNoDataset means no dataset is in the Ready state.
var ErrNoDataset = errors.New("no dataset selected")

// State is the dataset lifecycle: Idle until the first selection, Loading
// while a file is read, then Ready or Failed.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is the externally visible dataset state.
type Snapshot struct {
	Name     string `json:"name,omitempty"`
	State    string `json:"state"`
	Rows     int    `json:"rows"`
	Columns  int    `json:"columns"`
	LoadedAt string `json:"loaded_at,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Classes groups column names the way the dashboard pickers need them. A
// low-cardinality int column shows up in both Numerical and Categorical.
type Classes struct {
	All         []string `json:"all"`
	Numerical   []string `json:"numerical"`
	Categorical []string `json:"categorical"`
}

// Manager owns the active dataset handle. Every consumer goes through
// Active() instead of a shared global, and selection is an explicit state
// transition.
type Manager struct {
	catalog   *Catalog
	logger    *storage.Logger
	threshold int

	mu       sync.RWMutex
	name     string
	state    State
	tbl      table.Table
	loadErr  error
	loadedAt time.Time
}

func NewManager(catalog *Catalog, logger *storage.Logger, categoricalThreshold int) *Manager {
	return &Manager{
		catalog:   catalog,
		logger:    logger,
		threshold: categoricalThreshold,
	}
}

// Select loads the keyed dataset and makes it active. An unknown key leaves
// the current state untouched; a failed load transitions to Failed and
// clears the handle.
func (m *Manager) Select(name string) (Snapshot, error) {
	if _, ok := m.catalog.Path(name); !ok {
		return m.Snapshot(), fmt.Errorf("%w: %s", ErrUnknownDataset, name)
	}

	m.mu.Lock()
	m.name = name
	m.state = StateLoading
	m.tbl = table.Table{}
	m.loadErr = nil
	m.mu.Unlock()
	m.logger.Info("loading dataset", "name", name)

	tbl, err := m.catalog.Load(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateFailed
		m.loadErr = err
		m.logger.Error("dataset load failed", "name", name, "err", err)
		return m.snapshotLocked(), fmt.Errorf("failed to load dataset %s: %w", name, err)
	}
	m.state = StateReady
	m.tbl = tbl
	m.loadedAt = time.Now()
	m.logger.Info("dataset ready", "name", name, "rows", tbl.NumRow(), "columns", tbl.NumCol())
	return m.snapshotLocked(), nil
}

// Active returns the Ready dataset, or ErrNoDataset. The returned table is
// immutable and safe to share across requests.
func (m *Manager) Active() (string, table.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateReady {
		return "", table.Table{}, ErrNoDataset
	}
	return m.name, m.tbl, nil
}

// Snapshot reports the current lifecycle state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	s := Snapshot{
		Name:    m.name,
		State:   m.state.String(),
		Rows:    m.tbl.NumRow(),
		Columns: m.tbl.NumCol(),
	}
	if !m.loadedAt.IsZero() && m.state == StateReady {
		s.LoadedAt = m.loadedAt.Format(time.RFC3339)
	}
	if m.loadErr != nil {
		s.Error = m.loadErr.Error()
	}
	return s
}

// ColumnClasses classifies the active dataset's columns for the UI.
func (m *Manager) ColumnClasses() (Classes, error) {
	_, tbl, err := m.Active()
	if err != nil {
		return Classes{}, err
	}

	df := tbl.DataFrame()
	names := df.Names()
	types := df.Types()

	cls := Classes{All: tbl.Columns()}
	for i, name := range names {
		switch types[i] {
		case series.Int:
			cls.Numerical = append(cls.Numerical, name)
			if distinctCount(tbl, name) < m.threshold {
				cls.Categorical = append(cls.Categorical, name)
			}
		case series.Float:
			cls.Numerical = append(cls.Numerical, name)
		case series.String, series.Bool:
			cls.Categorical = append(cls.Categorical, name)
		}
	}
	return cls, nil
}

func distinctCount(t table.Table, column string) int {
	vals, ok := t.Column(column)
	if !ok {
		return 0
	}
	seen := make(map[any]struct{})
	for _, v := range vals {
		if v == nil {
			continue
		}
		seen[v] = struct{}{}
	}
	return len(seen)
}
