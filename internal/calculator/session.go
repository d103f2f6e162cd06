package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"calc-pro/internal/assistant"
	"calc-pro/internal/expr"
	"calc-pro/internal/history"
)

// Keys understood by Session.Press besides the digits and + - * /.
const (
	KeyDecimal = "."
	KeyPercent = "%"
	KeyDelete  = "DEL"
	KeyClear   = "AC"
	KeyEquals  = "="
)

var (
	ErrUnknownKey      = errors.New("unknown key")
	ErrNothingToAsk    = errors.New("nothing to ask: no prompt and no operand")
	ErrSessionNotFound = errors.New("session not found")
)

// Recorder is the slice of the history store a session writes to.
type Recorder interface {
	Record(ctx context.Context, expression, result string) history.Calculation
	Get(id string) (history.Calculation, error)
	Len() int
}

// Solver answers AI inquiries.
type Solver interface {
	Solve(ctx context.Context, query string) (string, error)
}

// Session is one calculator: the accumulator, the last outcome (its Failure is
// the single visible error), the last AI answer and the in-flight inquiry.
type Session struct {
	ID string

	mu      sync.Mutex
	acc     Accumulator
	last    Outcome
	answer  string
	slot    assistant.Slot // begun and finished under mu
	history Recorder
	solver  Solver
}

func NewSession(id string, rec Recorder, solver Solver) *Session {
	return &Session{
		ID:      id,
		acc:     NewAccumulator(),
		history: rec,
		solver:  solver,
	}
}

// Snapshot is the externally visible session state.
type Snapshot struct {
	ID          string   `json:"id"`
	Expression  string   `json:"expression"`
	Display     string   `json:"display"`
	Error       *Failure `json:"error,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Loading     bool     `json:"loading"`
	HistorySize int      `json:"history_size"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		ID:          s.ID,
		Expression:  s.acc.Committed(),
		Display:     s.acc.Operand(),
		Error:       s.last.Failure,
		Answer:      s.answer,
		Loading:     s.slot.Busy(),
		HistorySize: s.history.Len(),
	}
}

// Press applies one key. Only "=" and "%" can produce a non-zero Outcome;
// an unrecognised key returns ErrUnknownKey and changes nothing.
func (s *Session) Press(ctx context.Context, key string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case isDigit(key):
		s.acc.InputDigit(key)
		s.last = Outcome{}
	case isOperator(key):
		s.acc.InputOperator(key)
		s.last = Outcome{}
	case key == KeyDecimal:
		s.acc.InputDecimalPoint()
		s.last = Outcome{}
	case key == KeyPercent:
		if err := s.acc.Percent(); err != nil {
			s.last = evaluationFailure(err)
			return s.last, nil
		}
		s.last = Outcome{Value: s.acc.Operand()}
		return s.last, nil
	case key == KeyDelete:
		s.acc.DeleteLast()
	case key == KeyClear:
		s.acc.ClearAll()
		s.last = Outcome{}
	case key == KeyEquals:
		return s.evaluateLocked(ctx), nil
	default:
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return Outcome{}, nil
}

// Evaluate computes the accumulated expression. On success the result
// becomes the operand and is recorded in history. A syntax error or a
// non-finite result leaves the expression and history untouched.
func (s *Session) Evaluate(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked(ctx)
}

func (s *Session) evaluateLocked(ctx context.Context) Outcome {
	full := s.acc.Expression()

	res, err := expr.Evaluate(full)
	if err != nil {
		s.last = evaluationFailure(err)
		return s.last
	}
	if !res.Finite {
		s.last = evaluationFailure(fmt.Errorf("%q evaluates to a non-finite value", res.Sanitized))
		return s.last
	}

	s.acc.Load(res.Value)
	s.history.Record(ctx, full, res.Value)
	s.last = Outcome{Value: res.Value}
	return s.last
}

// SelectHistory continues from a previous result.
func (s *Session) SelectHistory(id string) error {
	c, err := s.history.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc.Load(c.Result)
	s.last = Outcome{}
	return nil
}

// Inquire sends prompt, or the accumulated expression when prompt is blank,
// to the assistant. A newer inquiry supersedes this one: the superseded call
// is cancelled, returns assistant.ErrSuperseded and changes nothing.
func (s *Session) Inquire(ctx context.Context, prompt string) (Outcome, error) {
	s.mu.Lock()
	query := strings.TrimSpace(prompt)
	if query == "" {
		if s.acc.Operand() == InitialOperand {
			s.mu.Unlock()
			return Outcome{}, ErrNothingToAsk
		}
		query = s.acc.Expression()
	}
	s.answer = ""
	s.last = Outcome{}
	ictx, ticket := s.slot.Begin(ctx)
	s.mu.Unlock()

	text, err := s.solver.Solve(ictx, query)

	// The ticket check and the state update form one step under s.mu, so a
	// newer inquiry cannot begin in between.
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.slot.Finish(ticket) {
		return Outcome{}, assistant.ErrSuperseded
	}
	if err != nil {
		s.answer = ""
		s.last = assistantFailure(assistant.Message(err), err)
		return s.last, nil
	}
	s.answer = text
	s.last = Outcome{Value: text}
	return s.last, nil
}

// DismissAnswer closes the AI answer panel.
func (s *Session) DismissAnswer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = ""
}

// Close cancels any in-flight inquiry.
func (s *Session) Close() {
	s.slot.Abort()
}

func isDigit(key string) bool {
	return len(key) == 1 && key[0] >= '0' && key[0] <= '9'
}

func isOperator(key string) bool {
	switch key {
	case "+", "-", "*", "/":
		return true
	}
	return false
}

// keyClass groups keys for metrics.
func keyClass(key string) string {
	switch {
	case isDigit(key):
		return "digit"
	case isOperator(key):
		return "operator"
	case key == KeyDecimal:
		return "decimal"
	case key == KeyPercent:
		return "percent"
	case key == KeyDelete:
		return "delete"
	case key == KeyClear:
		return "clear"
	case key == KeyEquals:
		return "evaluate"
	}
	return "unknown"
}
