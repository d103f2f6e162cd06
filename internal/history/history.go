// Package history keeps the capped, newest-first list of completed
// calculations and persists it through an injected Store.
package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"calc-pro/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MaxEntries caps the history; older entries fall off the tail.
const MaxEntries = 50

// StorageKey names the single persisted entry holding the whole list.
const StorageKey = "calc_history"

var ErrNotFound = errors.New("calculation not found")

// Calculation is one completed evaluation. Immutable once recorded.
type Calculation struct {
	ID         string `json:"id"`
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Timestamp  int64  `json:"timestamp"` // epoch milliseconds
}

// History is ordered newest first.
type History []Calculation

// Recorder owns the in-memory history and writes the full list back to its
// Store after every mutation. Safe for concurrent use.
type Recorder struct {
	mu      sync.RWMutex
	store   Store
	entries History
	now     func() time.Time

	// saveMu is held from taking the snapshot through Store.Save, so saves
	// land in mutation order and the last one matches the in-memory list.
	saveMu sync.Mutex
}

// Option customises a Recorder.
type Option func(*Recorder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// NewRecorder loads the persisted history once. A store that cannot be read
// leaves the recorder empty; the failure is logged, not returned.
func NewRecorder(ctx context.Context, store Store, opts ...Option) *Recorder {
	r := &Recorder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		observability.LoggerWithTrace(ctx).Warn("history load failed, starting empty", zap.Error(err))
		entries = History{}
	}
	r.entries = truncate(entries)
	r.observe(ctx)

	return r
}

// Record prepends a new calculation and persists the list.
func (r *Recorder) Record(ctx context.Context, expression, result string) Calculation {
	c := Calculation{
		ID:         newID(),
		Expression: expression,
		Result:     result,
		Timestamp:  r.now().UnixMilli(),
	}

	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	next := make(History, 0, len(r.entries)+1)
	next = append(next, c)
	next = append(next, r.entries...)
	r.entries = truncate(next)
	snapshot := r.entries.clone()
	r.mu.Unlock()

	r.persist(ctx, snapshot, "record")
	return c
}

// Clear empties the history and persists the empty list.
func (r *Recorder) Clear(ctx context.Context) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	r.entries = History{}
	r.mu.Unlock()

	r.persist(ctx, History{}, "clear")
}

// List returns a copy of the history, newest first.
func (r *Recorder) List() History {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries.clone()
}

// Len is the number of stored calculations.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Get looks a calculation up by id.
func (r *Recorder) Get(id string) (Calculation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.entries {
		if c.ID == id {
			return c, nil
		}
	}
	return Calculation{}, ErrNotFound
}

func (r *Recorder) persist(ctx context.Context, h History, op string) {
	if err := r.store.Save(ctx, h); err != nil {
		observability.LoggerWithTrace(ctx).Error("history save failed",
			zap.String("operation", op),
			zap.Int("entries", len(h)),
			zap.Error(err),
		)
	}
	r.observe(ctx)
	mutationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", op)))
}

func (r *Recorder) observe(ctx context.Context) {
	entriesGauge.Record(ctx, int64(r.Len()))
}

func (h History) clone() History {
	out := make(History, len(h))
	copy(out, h)
	return out
}

func truncate(h History) History {
	if h == nil {
		return History{}
	}
	if len(h) > MaxEntries {
		return h[:MaxEntries]
	}
	return h
}

func newID() string {
	return uuid.NewString()
}
