package box

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// dockRecord is the on-disk JSON shape of a persisted Bag.
type dockRecord struct {
	Value any     `json:"value"`
	Tyme  float64 `json:"tyme"`
}

// Dock is the durable counterpart of Mine: writes are atomic per key
// and durable on return (spec.md §3/§5). Each dotted key is persisted
// as one JSON file under a directory tree mirroring its path
// components, the same two-backend (OS / in-memory) split
// sysio.ioFileService used for IOnodes, grounded on that file but here
// specialized to a single JSON record per key rather than arbitrary
// byte streams.
type Dock struct {
	fs   afero.Fs
	root string
}

// NewDock builds a Dock rooted at dir on fs. Pass afero.NewOsFs() in
// production and afero.NewMemMapFs() in tests, matching
// sysio.ioFileService's IOOsFileService/IOMemFileService split.
func NewDock(fs afero.Fs, dir string) *Dock {
	return &Dock{fs: fs, root: dir}
}

func (d *Dock) pathFor(key string) string {
	parts := strings.Split(key, ".")
	return filepath.Join(d.root, filepath.Join(parts...)+".json")
}

// Get reads the Bag at key, if present.
func (d *Dock) Get(key string) (Bag, bool, error) {
	path := d.pathFor(key)
	raw, err := afero.ReadFile(d.fs, path)
	if err != nil {
		if isNotExist(err) {
			return Bag{}, false, nil
		}
		return Bag{}, false, fmt.Errorf("dock: read %s: %w", key, err)
	}
	var rec dockRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Bag{}, false, fmt.Errorf("dock: decode %s: %w", key, err)
	}
	return Bag{Value: rec.Value, Tyme: rec.Tyme}, true, nil
}

// Put durably assigns value at key, stamped with tyme. The write is
// atomic: it lands in a temp file in the same directory, then renames
// over the target, so a reader never observes a partial record.
func (d *Dock) Put(key string, value any, tyme float64) error {
	path := d.pathFor(key)
	dir := filepath.Dir(path)
	if err := d.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dock: mkdir %s: %w", dir, err)
	}

	raw, err := json.Marshal(dockRecord{Value: value, Tyme: tyme})
	if err != nil {
		return fmt.Errorf("dock: encode %s: %w", key, err)
	}

	tmp, err := afero.TempFile(d.fs, dir, "dock-*.tmp")
	if err != nil {
		return fmt.Errorf("dock: tempfile for %s: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		d.fs.Remove(tmpName)
		return fmt.Errorf("dock: write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		d.fs.Remove(tmpName)
		return fmt.Errorf("dock: close %s: %w", key, err)
	}
	if err := d.fs.Rename(tmpName, path); err != nil {
		d.fs.Remove(tmpName)
		return fmt.Errorf("dock: rename %s: %w", key, err)
	}
	return nil
}

// Delete removes the durable record at key, if present.
func (d *Dock) Delete(key string) error {
	path := d.pathFor(key)
	if err := d.fs.Remove(path); err != nil && !isNotExist(err) {
		return fmt.Errorf("dock: delete %s: %w", key, err)
	}
	return nil
}

func isNotExist(err error) bool {
	return afero.IsNotExist(err) || os.IsNotExist(err)
}
