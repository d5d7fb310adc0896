package modstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned when a case or registry entry does not exist.
var ErrNotFound = errors.New("not found")

// Store owns the moderation document and is the only writer of its
// backing file. Every mutation goes through update, which holds the
// store lock across mutate and persist, so read-modify-write cycles
// issued by command handlers and by the scheduler cannot interleave.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the document at path, or starts empty when no file exists
// yet. There is no separate recovery step: entries that expired while
// the process was down are reversed on the first scheduler tick.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.doc = document{Modlogs: make(map[string][]Case)}
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if s.doc.Modlogs == nil {
		s.doc.Modlogs = make(map[string][]Case)
	}
	return s, nil
}

// update runs fn on the document and persists the result. When fn
// fails nothing is written. When the write fails the mutation is kept
// in memory; the next successful persist writes the full current state.
func (s *Store) update(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.doc); err != nil {
		return err
	}
	return s.persistLocked()
}

// Persist writes the current document. Used by the scheduler to flush
// once per tick instead of once per drained entry.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
