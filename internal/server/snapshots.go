package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoSnapshot reports that a subject has not uploaded a snapshot yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

const (
	snapshotFileName = "snapshot.json"
	metaFileName     = "meta.json"
)

// snapshotMeta is the stored sidecar describing a snapshot. Its JSON
// layout matches what the sync client expects from the meta endpoint.
type snapshotMeta struct {
	Checksum   string    `json:"checksum"`
	ModifiedAt time.Time `json:"modifiedAt"`
	Size       int64     `json:"size"`
}

// snapshotStore keeps one snapshot per subject on disk, each in its own
// directory alongside a metadata sidecar. Writes are atomic via a temp
// file and rename.
type snapshotStore struct {
	mu  sync.RWMutex
	dir string
}

func newSnapshotStore(dir string) *snapshotStore {
	return &snapshotStore{dir: dir}
}

// Put replaces the subject's snapshot with body.
func (s *snapshotStore) Put(subject string, body []byte, checksum string) (snapshotMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, subject)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return snapshotMeta{}, err
	}

	meta := snapshotMeta{
		Checksum:   checksum,
		ModifiedAt: time.Now().UTC(),
		Size:       int64(len(body)),
	}
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return snapshotMeta{}, err
	}

	if err := writeAtomic(filepath.Join(dir, snapshotFileName), body); err != nil {
		return snapshotMeta{}, err
	}
	if err := writeAtomic(filepath.Join(dir, metaFileName), metaBytes); err != nil {
		return snapshotMeta{}, err
	}
	return meta, nil
}

// Get returns the subject's stored snapshot bytes.
func (s *snapshotStore) Get(subject string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, err := os.ReadFile(filepath.Join(s.dir, subject, snapshotFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	return body, err
}

// Meta returns the subject's snapshot metadata.
func (s *snapshotStore) Meta(subject string) (snapshotMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(filepath.Join(s.dir, subject, metaFileName))
	if errors.Is(err, fs.ErrNotExist) {
		return snapshotMeta{}, ErrNoSnapshot
	}
	if err != nil {
		return snapshotMeta{}, err
	}
	var meta snapshotMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return snapshotMeta{}, err
	}
	return meta, nil
}

// writeAtomic writes data to path through a temp file in the same
// directory so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
