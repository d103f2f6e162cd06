package calculator

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"calc-pro/internal/expr"
	"calc-pro/internal/history"
	"calc-pro/internal/testutil"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, solver Solver) (http.Handler, *history.Recorder) {
	t.Helper()
	rec := history.NewRecorder(context.Background(), history.NewMemoryStore())
	h := NewHandler(NewRegistry(rec, solver), rec)

	r := chi.NewRouter()
	RegisterRoutes(r, h)
	return r, rec
}

func openSession(t *testing.T, router http.Handler) Snapshot {
	t.Helper()
	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions", nil), router)
	testutil.CheckResponseCode(t, http.StatusCreated, rr.Code)

	var snap Snapshot
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	return snap
}

func sendKeys(t *testing.T, router http.Handler, id string, keys ...string) (int, Snapshot) {
	t.Helper()
	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions/"+id+"/keys", KeysRequest{Keys: keys}), router)

	var snap Snapshot
	if rr.Code == http.StatusOK {
		testutil.DecodeJSONBody(t, rr.Body, &snap)
	}
	return rr.Code, snap
}

func TestEvaluateHandler(t *testing.T) {
	router, rec := newTestRouter(t, &fakeSolver{})

	tests := []struct {
		name       string
		expression string
		wantStatus int
		wantResult string
	}{
		{"sum", "2 + 3", http.StatusOK, "5"},
		{"parentheses", "(1 + 2) * 3", http.StatusOK, "9"},
		{"division by zero", "10 / 0", http.StatusOK, expr.NonFinite},
		{"malformed", "5 + * ", http.StatusUnprocessableEntity, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.JSONRequest(t, http.MethodPost, "/calculator/evaluate", EvaluateRequest{Expression: tt.expression})
			rr := testutil.ExecuteRequest(req, router)
			testutil.CheckResponseCode(t, tt.wantStatus, rr.Code)

			if tt.wantStatus != http.StatusOK {
				if msg := testutil.ErrorMessage(t, rr.Body); msg != expr.InvalidExpressionMessage {
					t.Fatalf("expected error %q, got %q", expr.InvalidExpressionMessage, msg)
				}
				return
			}

			var resp EvaluateResponse
			testutil.DecodeJSONBody(t, rr.Body, &resp)
			if resp.Result != tt.wantResult {
				t.Fatalf("expected result %q, got %q", tt.wantResult, resp.Result)
			}
		})
	}

	if rec.Len() != 0 {
		t.Fatalf("stateless evaluation must not record history, got %d entries", rec.Len())
	}
}

func TestEvaluateHandlerRejectsBadBody(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{})

	req := testutil.JSONRequest(t, http.MethodPost, "/calculator/evaluate", nil)
	rr := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, rr.Code)
}

func TestSessionKeysFlow(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{})
	snap := openSession(t, router)

	if snap.Display != "0" || snap.Expression != "" || snap.Loading {
		t.Fatalf("unexpected fresh snapshot %+v", snap)
	}

	code, snap := sendKeys(t, router, snap.ID, "1", "2", "+", "3")
	testutil.CheckResponseCode(t, http.StatusOK, code)
	if snap.Expression != "12 + " || snap.Display != "3" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	code, snap = sendKeys(t, router, snap.ID, "=")
	testutil.CheckResponseCode(t, http.StatusOK, code)
	if snap.Display != "15" || snap.HistorySize != 1 || snap.Error != nil {
		t.Fatalf("unexpected snapshot after evaluation %+v", snap)
	}
}

func TestSessionKeysEvaluationErrorInSnapshot(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{})
	id := openSession(t, router).ID

	code, snap := sendKeys(t, router, id, "9", "/", "0", "=")
	testutil.CheckResponseCode(t, http.StatusOK, code)
	if snap.Error == nil || snap.Error.Kind != KindEvaluation || snap.Error.Message != expr.InvalidExpressionMessage {
		t.Fatalf("expected evaluation error in snapshot, got %+v", snap.Error)
	}
	if snap.HistorySize != 0 {
		t.Fatalf("failed evaluation must not record history")
	}
}

func TestSessionKeysRejectsUnknownAndEmpty(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{})
	id := openSession(t, router).ID

	code, _ := sendKeys(t, router, id)
	testutil.CheckResponseCode(t, http.StatusBadRequest, code)

	code, _ = sendKeys(t, router, id, "4", "sin")
	testutil.CheckResponseCode(t, http.StatusBadRequest, code)

	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodGet, "/sessions/"+id, nil), router)
	var snap Snapshot
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "4" {
		t.Fatalf("keys before the unknown one should stay applied, display %q", snap.Display)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{})

	for _, req := range []*http.Request{
		testutil.JSONRequest(t, http.MethodGet, "/sessions/nope", nil),
		testutil.JSONRequest(t, http.MethodDelete, "/sessions/nope", nil),
		testutil.JSONRequest(t, http.MethodPost, "/sessions/nope/keys", KeysRequest{Keys: []string{"1"}}),
		testutil.JSONRequest(t, http.MethodPost, "/sessions/nope/inquiry", InquiryRequest{Prompt: "hi"}),
		testutil.JSONRequest(t, http.MethodDelete, "/sessions/nope/answer", nil),
	} {
		rr := testutil.ExecuteRequest(req, router)
		testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{})
	id := openSession(t, router).ID

	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodDelete, "/sessions/"+id, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, rr.Code)

	rr = testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodGet, "/sessions/"+id, nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	router, rec := newTestRouter(t, &fakeSolver{})
	id := openSession(t, router).ID
	sendKeys(t, router, id, "2", "*", "2", "1", "=")
	sendKeys(t, router, id, "AC", "1", "-", "1", "=")

	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodGet, "/history", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var resp HistoryResponse
	testutil.DecodeJSONBody(t, rr.Body, &resp)
	if len(resp.Entries) != 2 || resp.Entries[0].Expression != "1 - 1" || resp.Entries[1].Result != "42" {
		t.Fatalf("unexpected history %+v", resp.Entries)
	}

	rr = testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions/"+id+"/history/"+resp.Entries[1].ID, nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)
	var snap Snapshot
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Display != "42" {
		t.Fatalf("expected display 42 after selecting history, got %q", snap.Display)
	}

	rr = testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions/"+id+"/history/missing", nil), router)
	testutil.CheckResponseCode(t, http.StatusNotFound, rr.Code)

	rr = testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodDelete, "/history", nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, rr.Code)
	if rec.Len() != 0 {
		t.Fatalf("expected empty history after clear, got %d", rec.Len())
	}
}

func TestInquiryHandler(t *testing.T) {
	solver := &fakeSolver{answer: "**4**"}
	router, _ := newTestRouter(t, solver)
	id := openSession(t, router).ID

	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions/"+id+"/inquiry", InquiryRequest{}), router)
	testutil.CheckResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions/"+id+"/inquiry", InquiryRequest{Prompt: "2+2"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var snap Snapshot
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Answer != "**4**" || snap.Error != nil {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	rr = testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodDelete, "/sessions/"+id+"/answer", nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}
	if _, ok := payload["answer"]; ok {
		t.Fatal("did not expect answer after dismissal")
	}
}

func TestInquiryHandlerReportsAssistantFailure(t *testing.T) {
	router, _ := newTestRouter(t, &fakeSolver{err: context.DeadlineExceeded})
	id := openSession(t, router).ID

	rr := testutil.ExecuteRequest(testutil.JSONRequest(t, http.MethodPost, "/sessions/"+id+"/inquiry", InquiryRequest{Prompt: "2+2"}), router)
	testutil.CheckResponseCode(t, http.StatusOK, rr.Code)

	var snap Snapshot
	testutil.DecodeJSONBody(t, rr.Body, &snap)
	if snap.Error == nil || snap.Error.Kind != KindAssistant {
		t.Fatalf("expected assistant error in snapshot, got %+v", snap.Error)
	}
}
