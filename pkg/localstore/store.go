package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Well-known snapshot keys mirrored by attached clients.
const (
	KeyCompanies      = "app-companies"
	KeyBankAccounts   = "app-bank-accounts"
	KeyDigitalWallets = "app-digital-wallets"
)

// Event notifies subscribers that the snapshot under Key was replaced.
type Event struct {
	Key string
}

// Store persists JSON-serialised arrays wholesale, one file per key.
// There are no partial updates: every write replaces the full value and
// fires a change event so other readers can refresh.
type Store struct {
	fs  afero.Fs
	dir string

	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

// New constructs a snapshot store rooted at dir on the supplied filesystem.
func New(fs afero.Fs, dir string) (*Store, error) {
	if fs == nil {
		return nil, errors.New("localstore: filesystem is required")
	}
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("localstore: create dir: %w", err)
	}
	return &Store{
		fs:   fs,
		dir:  dir,
		subs: make(map[int]chan Event),
	}, nil
}

// Read unmarshals the stored value for key into dest. It reports false
// without error when no snapshot exists yet.
func (s *Store) Read(key string, dest any) (bool, error) {
	if s == nil {
		return false, errors.New("localstore: store not initialised")
	}
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("localstore: read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("localstore: decode %s: %w", key, err)
	}
	return true, nil
}

// Write replaces the stored value for key wholesale and notifies subscribers.
func (s *Store) Write(key string, value any) error {
	if s == nil {
		return errors.New("localstore: store not initialised")
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: encode %s: %w", key, err)
	}

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("localstore: write %s: %w", key, err)
	}

	s.notify(Event{Key: key})
	return nil
}

// Delete removes the snapshot for key and notifies subscribers. Missing keys are ignored.
func (s *Store) Delete(key string) error {
	if s == nil {
		return errors.New("localstore: store not initialised")
	}
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("localstore: delete %s: %w", key, err)
	}

	s.notify(Event{Key: key})
	return nil
}

// Subscribe registers a change listener. The returned cancel func must be
// called to release the subscription. Slow subscribers drop events rather
// than blocking writers.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

func (s *Store) notify(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (s *Store) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("localstore: key is required")
	}
	if strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("localstore: invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}
