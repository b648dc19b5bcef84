// Package favorites holds the client-local favorites overlay: a set of
// contact snapshots persisted outside the contact repository, under one
// fixed storage path. The set is the source of truth for the IsFavorite
// flag; the repository knows nothing about it.
package favorites

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/aradsms/phonebook_web/internal/phonebook/domain"
)

// Store is a file-backed favorite set. It is read once at construction and
// rewritten on every change. Single-writer by design; cross-process
// consistency is out of scope.
type Store struct {
	mu       sync.Mutex
	path     string
	logger   *slog.Logger
	contacts []*domain.Contact // insertion order, unique by id
}

// NewStore loads the favorite set from path. A missing file is an empty set.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("reading favorites store: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.contacts); err != nil {
		return nil, fmt.Errorf("decoding favorites store: %w", err)
	}
	for _, ct := range s.contacts {
		ct.IsFavorite = true
	}
	return s, nil
}

// List returns the favorited contacts in stored order.
func (s *Store) List() []*domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Contains reports whether the contact id is favorited.
func (s *Store) Contains(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Toggle flips membership for the given contact snapshot and persists the
// set. It returns the new favorite state.
func (s *Store) Toggle(contact *domain.Contact) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(contact.ID); i >= 0 {
		s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
		return false, s.persistLocked()
	}

	snapshot := *contact
	snapshot.IsFavorite = true
	s.contacts = append(s.contacts, &snapshot)
	return true, s.persistLocked()
}

// Remove drops the contact from the set if present. Used after a contact is
// deleted so the set never holds a dangling id.
func (s *Store) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
	return s.persistLocked()
}

// Update refreshes the stored snapshot after a successful edit. No-op when
// the contact is not favorited.
func (s *Store) Update(contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(contact.ID)
	if i < 0 {
		return nil
	}
	snapshot := *contact
	snapshot.IsFavorite = true
	s.contacts[i] = &snapshot
	return s.persistLocked()
}

// Merge builds the display list: favorites first in stored order, then the
// server page with already-favorited ids filtered out. No id appears twice,
// and favorites are shown regardless of the server's filter or page window.
func (s *Store) Merge(serverContacts []*domain.Contact) []*domain.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.copyLocked()
	for _, ct := range serverContacts {
		if s.indexLocked(ct.ID) >= 0 {
			continue
		}
		ct.IsFavorite = false
		merged = append(merged, ct)
	}
	return merged
}

func (s *Store) indexLocked(id int64) int {
	for i, ct := range s.contacts {
		if ct.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) copyLocked() []*domain.Contact {
	out := make([]*domain.Contact, len(s.contacts))
	for i, ct := range s.contacts {
		snapshot := *ct
		out[i] = &snapshot
	}
	return out
}

// persistLocked rewrites the whole collection. Write goes through a temp
// file plus rename so the store file is never left half-written.
func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.contacts, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding favorites store: %w", err)
	}
	if len(s.contacts) == 0 {
		data = []byte("[]")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".favorites-*.tmp")
	if err != nil {
		return fmt.Errorf("creating favorites temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing favorites store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing favorites temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing favorites store: %w", err)
	}
	s.logger.Debug("Favorites store persisted", "path", s.path, "count", len(s.contacts))
	return nil
}
