package calculator

import "calc-pro/internal/expr"

// ErrorKind says which feature produced a failure.
type ErrorKind string

const (
	KindEvaluation ErrorKind = "evaluation"
	KindAssistant  ErrorKind = "assistant"
)

// Failure is the user-visible half of an Outcome.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// Outcome is what evaluation and inquiries return: either a Value or a
// Failure. The zero Outcome means "nothing to report".
type Outcome struct {
	Value   string
	Failure *Failure
}

func (o Outcome) Failed() bool { return o.Failure != nil }

func evaluationFailure(err error) Outcome {
	return Outcome{Failure: &Failure{Kind: KindEvaluation, Message: expr.InvalidExpressionMessage, Err: err}}
}

func assistantFailure(msg string, err error) Outcome {
	return Outcome{Failure: &Failure{Kind: KindAssistant, Message: msg, Err: err}}
}
