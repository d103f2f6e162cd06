package history

import (
	"context"
	"encoding/json"
	"sync"

	"calc-pro/internal/observability"

	"go.uber.org/zap"
)

// Store persists the whole history as one serialized value. Load reports
// malformed data as an empty history, never as an error.
type Store interface {
	Load(ctx context.Context) (History, error)
	Save(ctx context.Context, h History) error
}

// decode turns persisted bytes into a History, treating anything unreadable
// as absence of data.
func decode(ctx context.Context, data []byte) History {
	if len(data) == 0 {
		return History{}
	}
	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		observability.LoggerWithTrace(ctx).Warn("discarding malformed history", zap.Error(err))
		return History{}
	}
	return truncate(h)
}

func encode(h History) ([]byte, error) {
	if h == nil {
		h = History{}
	}
	return json.Marshal(h)
}

// MemoryStore keeps the serialized list in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decode(ctx, s.data), nil
}

func (s *MemoryStore) Save(_ context.Context, h History) error {
	data, err := encode(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// SetRaw replaces the stored bytes verbatim.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), data...)
	s.mu.Unlock()
}

var _ Store = (*MemoryStore)(nil)
