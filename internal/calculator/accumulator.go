package calculator

import (
	"errors"

	"calc-pro/internal/expr"
)

// InitialOperand is the sentinel the operand starts from; the first digit
// replaces it.
const InitialOperand = "0"

// ErrInvalidOperand is returned by Percent when the operand has no leading number.
var ErrInvalidOperand = errors.New("operand is not a number")

// Accumulator turns key presses into a committed prefix and an in-progress
// operand. Their concatenation is always the candidate expression. It does
// not validate: consecutive operators produce text the evaluator rejects.
type Accumulator struct {
	committed string
	operand   string
}

// NewAccumulator returns an empty expression showing the initial operand.
func NewAccumulator() Accumulator {
	return Accumulator{operand: InitialOperand}
}

// InputDigit appends d to the operand, replacing the initial "0".
func (a *Accumulator) InputDigit(d string) {
	if a.operand == InitialOperand {
		a.operand = d
		return
	}
	a.operand += d
}

// InputOperator commits the operand followed by op and starts a new operand.
func (a *Accumulator) InputOperator(op string) {
	a.committed += a.operand + " " + op + " "
	a.operand = InitialOperand
}

// InputDecimalPoint appends unconditionally, even to an operand that already
// has a decimal point.
func (a *Accumulator) InputDecimalPoint() {
	a.operand += "."
}

// Percent divides the operand by 100 in place. The committed prefix is not
// involved.
func (a *Accumulator) Percent() error {
	f, ok := expr.ParseOperand(a.operand)
	if !ok {
		return ErrInvalidOperand
	}
	a.operand = expr.FormatNumber(f / 100)
	return nil
}

// DeleteLast drops the operand's last character, falling back to "0".
func (a *Accumulator) DeleteLast() {
	if len(a.operand) > 1 {
		a.operand = a.operand[:len(a.operand)-1]
		return
	}
	a.operand = InitialOperand
}

// ClearAll resets the committed prefix and the operand.
func (a *Accumulator) ClearAll() {
	a.committed = ""
	a.operand = InitialOperand
}

// Load starts a new expression from v, e.g. a result or a history entry.
func (a *Accumulator) Load(v string) {
	a.committed = ""
	a.operand = v
}

// Committed is the finalized prefix awaiting the next operand.
func (a *Accumulator) Committed() string { return a.committed }

// Operand is the number being typed, the calculator display.
func (a *Accumulator) Operand() string { return a.operand }

// Expression is the committed prefix followed by the operand.
func (a *Accumulator) Expression() string { return a.committed + a.operand }
