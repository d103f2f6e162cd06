// Package expr evaluates calculator expressions with a restricted arithmetic
// parser: decimal numerals, + - * / %, unary signs and parentheses. There is no
// general-purpose evaluation anywhere in the path.
package expr

import (
	"math"
	"strconv"
	"strings"
)

// NonFinite is the result text for division by zero and other non-finite values.
const NonFinite = "Error"

// Result is a completed evaluation.
type Result struct {
	Sanitized string
	Value     string
	Finite    bool
	Number    float64
}

// Sanitize drops every character outside the calculator alphabet.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("+-*/%.() ", r):
			return r
		}
		return -1
	}, s)
}

// Evaluate sanitizes s and computes it. A malformed expression returns a
// *SyntaxError; a non-finite value is not an error here and yields Value "Error".
func Evaluate(s string) (Result, error) {
	clean := Sanitize(s)
	v, err := Compute(clean)
	if err != nil {
		return Result{Sanitized: clean}, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{Sanitized: clean, Value: NonFinite, Number: v}, nil
	}
	return Result{Sanitized: clean, Value: FormatNumber(v), Finite: true, Number: v}, nil
}

// FormatNumber renders f the way a calculator display expects: the shortest
// decimal that round-trips, switching to exponent form below 1e-6 and from 1e21.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	if exp == "" {
		exp = "0"
	}
	return mant + "e" + sign + exp
}

// ParseOperand reads the leading numeric prefix of an operand the way the
// percent key does: "12.5" -> 12.5, "5." -> 5, "1.2.3" -> 1.2. ok is false
// when no number leads the text.
func ParseOperand(s string) (f float64, ok bool) {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	f, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
