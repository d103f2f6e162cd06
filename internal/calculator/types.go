package calculator

import "calc-pro/internal/history"

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
// Result is "Error" when the expression evaluates to a non-finite number.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Sanitized  string `json:"sanitized"`
	Result     string `json:"result"`
}

// KeysRequest is the JSON body for POST /sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"` // digits, "+", "-", "*", "/", ".", "%", "DEL", "AC", "="
}

// InquiryRequest is the JSON body for POST /sessions/{id}/inquiry. A blank
// prompt asks about the current expression.
type InquiryRequest struct {
	Prompt string `json:"prompt"`
}

// HistoryResponse is the JSON response for GET /history, newest first.
type HistoryResponse struct {
	Entries history.History `json:"entries"`
}
