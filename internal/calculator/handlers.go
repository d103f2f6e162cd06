package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"calc-pro/internal/assistant"
	"calc-pro/internal/expr"
	"calc-pro/internal/handlers"
	"calc-pro/internal/history"
	"calc-pro/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// HistoryLister is the read and clear side of the shared history.
type HistoryLister interface {
	List() history.History
	Clear(ctx context.Context)
}

// Handler serves the calculator HTTP API.
type Handler struct {
	sessions *Registry
	history  HistoryLister
}

func NewHandler(sessions *Registry, hist HistoryLister) *Handler {
	return &Handler{sessions: sessions, history: hist}
}

// ---------------------------------------------------------------------------
// Stateless evaluator
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "evaluate")
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.String("calculator.expression", req.Expression))

	start := time.Now()
	res, err := expr.Evaluate(req.Expression)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", expr.InvalidExpressionMessage, err, http.StatusUnprocessableEntity, w)
		return
	}

	recordEvaluation(ctx, span, "evaluate", res, elapsed)

	logger.Info("expression evaluated",
		zap.String("expression", req.Expression),
		zap.String("sanitized", res.Sanitized),
		zap.String("result", res.Value),
		zap.Float64("duration_ms", elapsed),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Expression: req.Expression,
		Sanitized:  res.Sanitized,
		Result:     res.Value,
	})
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.create")
	defer span.End()

	s := h.sessions.Create(ctx)
	span.SetAttributes(attribute.String("calculator.session", s.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("session opened",
		zap.String("session", s.ID),
		zap.Int("open_sessions", h.sessions.Len()),
	)
	handlers.WriteJSON(w, http.StatusCreated, s.Snapshot())
}

// GetSession handles GET /sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.get")
	defer span.End()

	s, ok := h.session(ctx, span, logger, w, r, "session.get")
	if !ok {
		return
	}
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "session.delete")
	defer span.End()

	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("calculator.session", id))
	if err := h.sessions.Delete(ctx, id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "session.delete", err.Error(), err, http.StatusNotFound, w)
		return
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("session closed", zap.String("session", id))
	w.WriteHeader(http.StatusNoContent)
}

// PressKeys handles POST /sessions/{sessionID}/keys. Each key gets its own
// child span; the first unknown key stops the sequence with 400 and the keys
// before it stay applied.
func (h *Handler) PressKeys(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "keys")
	defer span.End()

	s, ok := h.session(ctx, span, logger, w, r, "keys")
	if !ok {
		return
	}

	var req KeysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "invalid request body", err, http.StatusBadRequest, w)
		return
	}
	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "keys", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	}
	span.SetAttributes(attribute.Int("calculator.keys_count", len(req.Keys)))

	for i, key := range req.Keys {
		keyCtx, keySpan := tracer.Start(ctx, "calculator.key."+keyClass(key),
			trace.WithAttributes(
				attribute.Int("calculator.key.index", i),
				attribute.String("calculator.key", key),
			),
		)

		start := time.Now()
		out, err := s.Press(keyCtx, key)
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0

		if err != nil {
			keySpan.RecordError(err)
			keySpan.SetStatus(codes.Error, err.Error())
			keySpan.End()

			span.SetStatus(codes.Error, "failed at key "+strconv.Itoa(i))
			observability.RecordError(ctx, span, logger, errorCounter, "keys", err.Error(), err, http.StatusBadRequest, w)
			return
		}

		keysCounter.Add(keyCtx, 1, metric.WithAttributes(attribute.String("class", keyClass(key))))

		switch {
		case out.Failed():
			observability.RecordFailure(keyCtx, keySpan, logger, errorCounter, "key."+keyClass(key), string(out.Failure.Kind), out.Failure.Message, out.Failure.Err)
		case key == KeyEquals:
			recordSessionEvaluation(keyCtx, keySpan, out.Value, elapsed)
			logger.Info("session expression evaluated",
				zap.String("session", s.ID),
				zap.String("result", out.Value),
				zap.Float64("duration_ms", elapsed),
			)
			keySpan.SetStatus(codes.Ok, "")
		default:
			keySpan.SetStatus(codes.Ok, "")
		}
		keySpan.End()
	}

	snap := s.Snapshot()
	logger.Debug("keys applied",
		zap.String("session", s.ID),
		zap.Int("keys", len(req.Keys)),
		zap.String("expression", snap.Expression),
		zap.String("display", snap.Display),
	)
	handlers.WriteJSON(w, http.StatusOK, snap)
}

// SelectHistory handles POST /sessions/{sessionID}/history/{calcID}.
func (h *Handler) SelectHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "history.select")
	defer span.End()

	s, ok := h.session(ctx, span, logger, w, r, "history.select")
	if !ok {
		return
	}

	calcID := chi.URLParam(r, "calcID")
	span.SetAttributes(attribute.String("calculator.history_id", calcID))
	if err := s.SelectHistory(calcID); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history.select", err.Error(), err, http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// Inquire handles POST /sessions/{sessionID}/inquiry. The request blocks
// until the assistant answers; an assistant failure is reported in the
// snapshot, not as an HTTP error.
func (h *Handler) Inquire(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "inquiry")
	defer span.End()

	s, ok := h.session(ctx, span, logger, w, r, "inquiry")
	if !ok {
		return
	}

	var req InquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "inquiry", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	out, err := s.Inquire(ctx, req.Prompt)
	switch {
	case errors.Is(err, ErrNothingToAsk):
		observability.RecordError(ctx, span, logger, errorCounter, "inquiry", err.Error(), err, http.StatusBadRequest, w)
		return
	case errors.Is(err, assistant.ErrSuperseded):
		observability.RecordError(ctx, span, logger, errorCounter, "inquiry", err.Error(), err, http.StatusConflict, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "inquiry", err.Error(), err, http.StatusInternalServerError, w)
		return
	}

	if out.Failed() {
		observability.RecordFailure(ctx, span, logger, errorCounter, "inquiry", string(out.Failure.Kind), out.Failure.Message, out.Failure.Err)
	} else {
		span.SetStatus(codes.Ok, "")
		logger.Info("inquiry answered",
			zap.String("session", s.ID),
			zap.Int("answer_len", len(out.Value)),
		)
	}
	handlers.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// DismissAnswer handles DELETE /sessions/{sessionID}/answer.
func (h *Handler) DismissAnswer(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "answer.dismiss")
	defer span.End()

	s, ok := h.session(ctx, span, logger, w, r, "answer.dismiss")
	if !ok {
		return
	}
	s.DismissAnswer()
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, s.Snapshot())
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// ListHistory handles GET /history.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	_, span, _ := h.start(r, "history.list")
	defer span.End()

	entries := h.history.List()
	span.SetAttributes(attribute.Int("history.entries", len(entries)))
	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// ClearHistory handles DELETE /history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := h.start(r, "history.clear")
	defer span.End()

	h.history.Clear(ctx)
	span.SetStatus(codes.Ok, "")
	logger.Info("history cleared")
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func (h *Handler) start(r *http.Request, opName string) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "calculator."+opName,
		trace.WithAttributes(
			attribute.String("calculator.operation", opName),
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	return ctx, span, observability.LoggerWithTrace(ctx)
}

func (h *Handler) session(ctx context.Context, span trace.Span, logger *zap.Logger, w http.ResponseWriter, r *http.Request, opName string) (*Session, bool) {
	id := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("calculator.session", id))

	s, err := h.sessions.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusNotFound, w)
		return nil, false
	}
	return s, true
}

func recordEvaluation(ctx context.Context, span trace.Span, opName string, res expr.Result, elapsed float64) {
	attrs := metric.WithAttributes(
		attribute.String("operation", opName),
		attribute.Bool("finite", res.Finite),
	)
	evaluationsCounter.Add(ctx, 1, attrs)
	evalHistogram.Record(ctx, elapsed, attrs)
	if res.Finite {
		resultGauge.Record(ctx, res.Number, metric.WithAttributes(attribute.String("operation", opName)))
	}

	span.AddEvent("evaluation.complete", trace.WithAttributes(
		attribute.String("result", res.Value),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(attribute.String("calculator.result", res.Value))
	span.SetStatus(codes.Ok, "")
}

func recordSessionEvaluation(ctx context.Context, span trace.Span, value string, elapsed float64) {
	res := expr.Result{Value: value, Finite: true}
	if f, ok := expr.ParseOperand(value); ok {
		res.Number = f
	}
	recordEvaluation(ctx, span, "session", res, elapsed)
}
