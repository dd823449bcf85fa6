package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DB is a local key-value store backed by one JSON file per record
// under a data directory. Each Save writes the full snapshot of the
// record, so a restart reconstructs identical state.
type DB struct {
	dir string
	mu  sync.Mutex
}

func Open(dir string) (*DB, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			dir = os.TempDir()
		} else {
			dir = filepath.Join(home, ".cardvault")
		}
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &DB{dir: dir}, nil
}

func (d *DB) Dir() string {
	return d.dir
}

func (d *DB) path(record string) string {
	return filepath.Join(d.dir, record+".json")
}

// Load reads a record into v. A missing record leaves v untouched and
// is not an error.
func (d *DB) Load(record string, v interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.path(record))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read record %s: %w", record, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode record %s: %w", record, err)
	}
	return nil
}

// Save writes the full snapshot of a record.
func (d *DB) Save(record string, v interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record %s: %w", record, err)
	}
	if err := os.WriteFile(d.path(record), data, 0600); err != nil {
		return fmt.Errorf("write record %s: %w", record, err)
	}
	return nil
}

// Delete removes a record. Deleting a missing record is not an error.
func (d *DB) Delete(record string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.Remove(d.path(record)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete record %s: %w", record, err)
	}
	return nil
}
