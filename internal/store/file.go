// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/pkg/types"
)

const (
	recordsFile = "records.yaml"
	commitsFile = "commits.json"
)

// fileState is the on-disk layout of the records file. Counters ride in
// the same file so one atomic rename covers both.
type fileState struct {
	Counters Counters                 `yaml:"counters"`
	Records  map[string]*types.Record `yaml:"records"`
}

// FileStore persists records as data/records.yaml and the commit log as
// data/commits.json under the project directory. Change detection
// compares the state checksum against the last commit, so edits made by
// other processes are seen too.
type FileStore struct {
	dataDir string
}

// NewFileStore opens or creates a file store rooted at dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

func (s *FileStore) recordsPath() string { return filepath.Join(s.dataDir, recordsFile) }
func (s *FileStore) commitsPath() string { return filepath.Join(s.dataDir, commitsFile) }

func (s *FileStore) loadState() (*fileState, error) {
	data, err := os.ReadFile(s.recordsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &fileState{Records: map[string]*types.Record{}}, nil
		}
		return nil, fmt.Errorf("reading records file: %w", err)
	}
	var state fileState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing records file: %w", err)
	}
	if state.Records == nil {
		state.Records = map[string]*types.Record{}
	}
	return &state, nil
}

// writeState marshals state and replaces the records file via a
// temporary file and rename, never leaving a half-written file behind.
func (s *FileStore) writeState(state *fileState) error {
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	return atomicWrite(s.recordsPath(), data)
}

// atomicWrite writes data to path through a temp file in the same
// directory followed by a rename.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadAll returns a snapshot of the record set.
func (s *FileStore) LoadAll() (map[string]*types.Record, error) {
	state, err := s.loadState()
	if err != nil {
		return nil, err
	}
	records := make(map[string]*types.Record, len(state.Records))
	for id, rec := range state.Records {
		records[id] = rec.Clone()
	}
	return records, nil
}

// Save merges records into the store; see Store.Save.
func (s *FileStore) Save(records map[string]*types.Record, partial bool) error {
	state, err := s.loadState()
	if err != nil {
		return err
	}
	if partial {
		for id, rec := range records {
			state.Records[id] = rec.Clone()
		}
	} else {
		replaced := make(map[string]*types.Record, len(records))
		for id, rec := range records {
			replaced[id] = rec.Clone()
		}
		state.Records = replaced
	}
	return s.writeState(state)
}

// Counters returns the persisted counters.
func (s *FileStore) Counters() (Counters, error) {
	state, err := s.loadState()
	if err != nil {
		return Counters{}, err
	}
	return state.Counters, nil
}

// SetCounters persists the counters.
func (s *FileStore) SetCounters(c Counters) error {
	state, err := s.loadState()
	if err != nil {
		return err
	}
	state.Counters = c
	return s.writeState(state)
}

func (s *FileStore) loadCommits() ([]Commit, error) {
	data, err := os.ReadFile(s.commitsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading commit log: %w", err)
	}
	var commits []Commit
	if err := json.Unmarshal(data, &commits); err != nil {
		return nil, fmt.Errorf("parsing commit log: %w", err)
	}
	return commits, nil
}

// checksum fingerprints the current records file. A missing file hashes
// to the empty-state fingerprint.
func (s *FileStore) checksum() (string, error) {
	data, err := os.ReadFile(s.recordsPath())
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading records file: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Commit appends a commit recording the current state checksum.
func (s *FileStore) Commit(message string) (Commit, error) {
	commits, err := s.loadCommits()
	if err != nil {
		return Commit{}, err
	}
	sum, err := s.checksum()
	if err != nil {
		return Commit{}, err
	}
	commit := Commit{
		ID:        uuid.NewString(),
		Message:   message,
		Timestamp: time.Now().UTC(),
		Checksum:  sum,
	}
	commits = append(commits, commit)
	data, err := json.MarshalIndent(commits, "", "  ")
	if err != nil {
		return Commit{}, fmt.Errorf("marshaling commit log: %w", err)
	}
	if err := atomicWrite(s.commitsPath(), data); err != nil {
		return Commit{}, err
	}
	return commit, nil
}

// HasChanges compares the current state checksum with the last commit.
func (s *FileStore) HasChanges() (bool, error) {
	commits, err := s.loadCommits()
	if err != nil {
		return false, err
	}
	sum, err := s.checksum()
	if err != nil {
		return false, err
	}
	if len(commits) == 0 {
		// Nothing committed yet: any existing records are uncommitted.
		if _, err := os.Stat(s.recordsPath()); os.IsNotExist(err) {
			return false, nil
		}
		return true, nil
	}
	return commits[len(commits)-1].Checksum != sum, nil
}

// Commits returns the commit log, oldest first.
func (s *FileStore) Commits() ([]Commit, error) {
	return s.loadCommits()
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }
