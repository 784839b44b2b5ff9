package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/belote-scorekeeper/internal/domain/round"
	"github.com/riskibarqy/belote-scorekeeper/internal/domain/session"
	"github.com/riskibarqy/belote-scorekeeper/internal/infrastructure/repository/record"
	"github.com/riskibarqy/belote-scorekeeper/internal/platform/logging"
)

// SessionStore keeps encoded records in process memory, the same way a browser keeps them in local storage.
type SessionStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	logger  *logging.Logger
}

func NewSessionStore(logger *logging.Logger) *SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &SessionStore{
		records: make(map[string][]byte),
		logger:  logger,
	}
}

func (s *SessionStore) Load(ctx context.Context) (session.Snapshot, error) {
	s.mu.RLock()
	names := cloneBytes(s.records[record.KeyTeamNames])
	rounds := cloneBytes(s.records[record.KeyRounds])
	s.mu.RUnlock()

	return record.Snapshot(ctx, s.logger, names, rounds), nil
}

func (s *SessionStore) SaveTeamNames(_ context.Context, names round.TeamNames) error {
	payload, err := record.EncodeTeamNames(names)
	if err != nil {
		return err
	}
	s.Put(record.KeyTeamNames, payload)
	return nil
}

func (s *SessionStore) SaveRounds(_ context.Context, rounds []round.Round) error {
	payload, err := record.EncodeRounds(rounds)
	if err != nil {
		return err
	}
	s.Put(record.KeyRounds, payload)
	return nil
}

func (s *SessionStore) ClearTeamNames(_ context.Context) error {
	s.delete(record.KeyTeamNames)
	return nil
}

func (s *SessionStore) ClearRounds(_ context.Context) error {
	s.delete(record.KeyRounds)
	return nil
}

// Put stores a raw payload under key. Used to seed data written by older versions.
func (s *SessionStore) Put(key string, payload []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = cloneBytes(payload)
}

// Raw returns the stored payload for key.
func (s *SessionStore) Raw(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, ok := s.records[key]
	return cloneBytes(payload), ok
}

func (s *SessionStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
