package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	srcfile "DataScope/src/datasource/file"
	"DataScope/src/storage"
	"DataScope/src/table"

	"github.com/go-gota/gota/dataframe"
)

// ErrUnknownDataset marks a key that discovery never produced.
var ErrUnknownDataset = errors.New("unknown dataset")

// Catalog maps normalized dataset keys to files under the data directory.
// Keys come from file stems: lowercased, spaces and hyphens collapsed to
// underscores; a stem already taken gets its parent folder as a prefix.
type Catalog struct {
	dir     string
	charset string
	logger  *storage.Logger

	mu    sync.RWMutex
	paths map[string]string
}

func NewCatalog(dir, charset string, logger *storage.Logger) *Catalog {
	return &Catalog{
		dir:     dir,
		charset: charset,
		logger:  logger,
		paths:   make(map[string]string),
	}
}

// Rescan walks the data directory (top level plus one subfolder level) and
// rebuilds the key table.
func (c *Catalog) Rescan() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read data directory %s: %w", c.dir, err)
	}

	found := make(map[string]string)
	admit := func(path string) {
		key := normalizeKey(stem(path))
		if _, taken := found[key]; taken {
			key = normalizeKey(filepath.Base(filepath.Dir(path))) + "_" + key
		}
		if prev, taken := found[key]; taken {
			c.logger.Warn("dataset key collision, keeping first file", "key", key, "kept", prev, "skipped", path)
			return
		}
		found[key] = path
	}

	// 1. top-level dataset files
	var subdirs []string
	for _, e := range entries {
		if e.IsDir() {
			subdirs = append(subdirs, e.Name())
			continue
		}
		if isDatasetFile(e.Name()) {
			admit(filepath.Join(c.dir, e.Name()))
		}
	}
	// 2. one level of subfolders
	sort.Strings(subdirs)
	for _, sub := range subdirs {
		subEntries, err := os.ReadDir(filepath.Join(c.dir, sub))
		if err != nil {
			c.logger.Warn("failed to read dataset subdirectory", "dir", sub, "err", err)
			continue
		}
		for _, e := range subEntries {
			if !e.IsDir() && isDatasetFile(e.Name()) {
				admit(filepath.Join(c.dir, sub, e.Name()))
			}
		}
	}

	c.mu.Lock()
	c.paths = found
	c.mu.Unlock()
	c.logger.Info("dataset catalog refreshed", "count", len(found))
	return nil
}

// Keys returns the discovered dataset keys, sorted.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.paths))
	for k := range c.paths {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path resolves a dataset key to its file path.
func (c *Catalog) Path(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.paths[key]
	return p, ok
}

// Load reads the keyed dataset into a Table and applies its post-load hook,
// if the key has one registered.
func (c *Catalog) Load(key string) (table.Table, error) {
	path, ok := c.Path(key)
	if !ok {
		return table.Table{}, fmt.Errorf("%w: %s", ErrUnknownDataset, key)
	}

	var (
		df  dataframe.DataFrame
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		df, err = srcfile.ReadCSVFile(path, c.charset)
	case ".xlsx":
		df, err = srcfile.ReadXLSXFile(path)
	default:
		err = fmt.Errorf("unsupported dataset file %s", path)
	}
	if err != nil {
		return table.Table{}, err
	}

	if hook, ok := hooks[key]; ok {
		df, err = hook(df)
		if err != nil {
			return table.Table{}, fmt.Errorf("post-load hook for %s: %w", key, err)
		}
		c.logger.Info("applied post-load hook", "dataset", key)
	}
	return table.New(df), nil
}

func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isDatasetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return !strings.HasPrefix(name, ".")
	}
	return false
}
