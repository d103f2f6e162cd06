package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokLParen
	tokRParen
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
	num  float64
}

type lexer struct {
	s string
	i int
}

func (l *lexer) next() token {
	for l.i < len(l.s) && l.s[l.i] == ' ' {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF, pos: l.i}
	}

	start := l.i
	switch l.s[l.i] {
	case '+':
		l.i++
		return token{kind: tokPlus, text: "+", pos: start}
	case '-':
		l.i++
		return token{kind: tokMinus, text: "-", pos: start}
	case '*':
		l.i++
		return token{kind: tokStar, text: "*", pos: start}
	case '/':
		l.i++
		return token{kind: tokSlash, text: "/", pos: start}
	case '%':
		l.i++
		return token{kind: tokPercent, text: "%", pos: start}
	case '(':
		l.i++
		return token{kind: tokLParen, text: "(", pos: start}
	case ')':
		l.i++
		return token{kind: tokRParen, text: ")", pos: start}
	}

	if c := l.s[l.i]; c == '.' || isDigit(c) {
		l.i = scanNumber(l.s, l.i)
		txt := l.s[start:l.i]
		f, err := strconv.ParseFloat(txt, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			// a lone "."
			return token{kind: tokInvalid, text: txt, pos: start}
		}
		return token{kind: tokNumber, text: txt, pos: start, num: f}
	}

	l.i++
	return token{kind: tokInvalid, text: l.s[start:l.i], pos: start}
}

// scanNumber accepts digits[.digits], .digits and "digits." with at most one
// decimal point, so "1.2.3" lexes as "1.2" followed by ".3".
func scanNumber(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

type parser struct {
	l   lexer
	cur token
}

func (p *parser) next() { p.cur = p.l.next() }

func (p *parser) unexpected() error {
	if p.cur.kind == tokEOF {
		return &SyntaxError{Pos: p.cur.pos, Msg: "unexpected end of expression"}
	}
	return &SyntaxError{Pos: p.cur.pos, Msg: fmt.Sprintf("unexpected %q", p.cur.text)}
}

// Compute parses and evaluates s as an arithmetic expression over decimal
// numerals, + - * / %, unary signs and parentheses. Any other token is a
// *SyntaxError. The result may be non-finite (division by zero).
func Compute(s string) (float64, error) {
	p := &parser{l: lexer{s: s}}
	p.next()
	if p.cur.kind == tokEOF {
		return 0, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	if p.cur.kind != tokEOF {
		return 0, p.unexpected()
	}
	return v, nil
}

func (p *parser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == tokPlus {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash || p.cur.kind == tokPercent {
		op := p.cur.kind
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case tokStar:
			left *= right
		case tokSlash:
			left /= right
		case tokPercent:
			left = math.Mod(left, right)
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (float64, error) {
	if p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		neg := p.cur.kind == tokMinus
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if neg {
			return -x, nil
		}
		return x, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	switch p.cur.kind {
	case tokNumber:
		v := p.cur.num
		p.next()
		return v, nil
	case tokLParen:
		open := p.cur.pos
		p.next()
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		if p.cur.kind != tokRParen {
			return 0, &SyntaxError{Pos: open, Msg: "expected ')'"}
		}
		p.next()
		return v, nil
	default:
		return 0, p.unexpected()
	}
}
