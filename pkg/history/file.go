package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// FileStore persists records as a JSON array in a single file. All I/O is
// serialized by an internal mutex; writes go through a temp file + rename
// so a crashed write never truncates the archive.
type FileStore struct {
	path  string
	max   int
	mutex sync.Mutex

	records []Record
}

var _ Store = (*FileStore)(nil)

// NewFileStore loads (or lazily creates) the archive at path, retaining at
// most max records. A malformed archive is an explicit error: the file is
// never evaluated or silently discarded.
func NewFileStore(path string, max int) (*FileStore, error) {
	if max <= 0 {
		max = DefaultMax
	}

	fs := &FileStore{path: path, max: max}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, fmt.Errorf("unable to read history %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &fs.records); err != nil {
		return nil, fmt.Errorf("history %s is malformed: %w", path, err)
	}

	for i := range fs.records {
		if fs.records[i].Name == "" || fs.records[i].CreatedAt.IsZero() {
			return nil, fmt.Errorf("history %s is malformed: record %d is missing required fields", path, i)
		}
	}

	if len(fs.records) > fs.max {
		fs.records = fs.records[:fs.max]
	}

	return fs, nil
}

// Append implements Store.
func (fs *FileStore) Append(rec Record) error {
	if rec.Name == "" {
		return errors.New("record has no patient name")
	}
	if rec.CreatedAt.IsZero() {
		return errors.New("record has no timestamp")
	}

	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	fs.records = append([]Record{rec}, fs.records...)
	if len(fs.records) > fs.max {
		fs.records = fs.records[:fs.max]
	}

	return fs.save()
}

// Recent implements Store.
func (fs *FileStore) Recent() ([]Record, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	out := make([]Record, len(fs.records))
	copy(out, fs.records)
	return out, nil
}

// SearchByName implements Store.
func (fs *FileStore) SearchByName(query string) ([]Record, error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	matches := []Record{}
	for _, rec := range fs.records {
		if rec.MatchesName(query) {
			matches = append(matches, rec)
		}
	}

	return matches, nil
}

// ReferencedFiles returns the artifact paths still held by retained records,
// for the prune command to spare.
func (fs *FileStore) ReferencedFiles() map[string]bool {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	refs := map[string]bool{}
	for _, rec := range fs.records {
		if rec.ImagePath != "" {
			refs[filepath.Clean(rec.ImagePath)] = true
		}
		if rec.ReportPath != "" {
			refs[filepath.Clean(rec.ReportPath)] = true
		}
	}

	return refs
}

//--------------------------------------------------------------------------------
// private

func (fs *FileStore) save() error {
	data, err := json.MarshalIndent(fs.records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to encode history")
	}

	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".history-*")
	if err != nil {
		return errors.Wrap(err, "unable to stage history write")
	}

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "unable to write history %s", fs.path)
	}

	if err := os.Rename(tmp.Name(), fs.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "unable to replace history %s", fs.path)
	}

	return nil
}
