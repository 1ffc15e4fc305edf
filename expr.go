package cinit

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"
)

// Evaluate evaluates a C-style integer constant expression using the
// default symbol table (TRUE, FALSE). Empty input evaluates to 0.
func Evaluate(expr string) (int64, error) {
	return EvaluateWith(expr, DefaultEnv())
}

// EvaluateWith evaluates expr resolving identifiers through env. The full
// C precedence ladder is supported, from the ternary operator down to
// unary +, -, ! and ~. Division and modulo truncate toward zero; a zero
// divisor returns an ArithmeticError. Each call tokenizes afresh, so the
// evaluator is re-entrant.
func EvaluateWith(expr string, env *Environment) (int64, error) {
	text := strings.TrimSpace(expr)
	if text == "" {
		return 0, nil
	}
	if env == nil {
		env = DefaultEnv()
	}
	tokens, err := tokenizeExpr(text)
	if err != nil {
		return 0, err
	}
	p := &exprParser{tokens: tokens, env: env}
	value, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.typ != EOF {
		return 0, &SyntaxError{Message: "trailing input after expression", Fragment: tok.text()}
	}
	return value, nil
}

func tokenizeExpr(input string) ([]tokenInfo, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(input))
	s.Filename = "expr"
	s.Whitespace = 1<<' ' | 1<<'\t' | 1<<'\r' | 1<<'\n'
	s.Mode = scanner.ScanIdents | scanner.ScanInts
	var scanErr string
	s.Error = func(_ *scanner.Scanner, msg string) {
		if scanErr == "" {
			scanErr = msg
		}
	}
	var tokens []tokenInfo
	for {
		r := s.Scan()
		if scanErr != "" {
			return nil, &SyntaxError{Message: scanErr, Fragment: input}
		}
		if r == scanner.EOF {
			break
		}
		text := s.TokenText()
		switch r {
		case scanner.Int:
			// Unsigned magnitude, then reinterpreted as a signed value.
			n, err := strconv.ParseUint(text, 0, 64)
			if err != nil {
				return nil, &SyntaxError{Message: "unsupported number literal", Fragment: text}
			}
			tokens = append(tokens, tokenInfo{typ: NUMBER, num: int64(n)})
		case scanner.Ident:
			tokens = append(tokens, tokenInfo{typ: IDENT, val: text})
		default:
			op, ok := scanOperator(&s, text)
			if !ok {
				return nil, &SyntaxError{Message: "unsupported token in expression", Fragment: text}
			}
			tokens = append(tokens, tokenInfo{typ: OPERATOR, val: op})
		}
	}
	tokens = append(tokens, tokenInfo{typ: EOF})
	return tokens, nil
}

func scanOperator(s *scanner.Scanner, text string) (string, bool) {
	switch text {
	case "+", "-", "*", "/", "%", "^", "~", "?", ":", "(", ")":
		return text, true
	case "=":
		if s.Peek() == '=' {
			s.Next()
			return "==", true
		}
		return "", false
	case "!":
		if s.Peek() == '=' {
			s.Next()
			return "!=", true
		}
		return "!", true
	case "<":
		switch s.Peek() {
		case '<':
			s.Next()
			return "<<", true
		case '=':
			s.Next()
			return "<=", true
		}
		return "<", true
	case ">":
		switch s.Peek() {
		case '>':
			s.Next()
			return ">>", true
		case '=':
			s.Next()
			return ">=", true
		}
		return ">", true
	case "&":
		if s.Peek() == '&' {
			s.Next()
			return "&&", true
		}
		return "&", true
	case "|":
		if s.Peek() == '|' {
			s.Next()
			return "||", true
		}
		return "|", true
	}
	return "", false
}

// exprParser walks the token slice once, evaluating as it descends. No
// intermediate tree is built.
type exprParser struct {
	tokens []tokenInfo
	pos    int
	env    *Environment
}

func (p *exprParser) peek() tokenInfo {
	return p.tokens[p.pos]
}

func (p *exprParser) next() tokenInfo {
	tok := p.tokens[p.pos]
	if tok.typ != EOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) peekOp(op string) bool {
	tok := p.peek()
	return tok.typ == OPERATOR && tok.val == op
}

func (p *exprParser) expectOp(op string) error {
	tok := p.next()
	if tok.typ != OPERATOR || tok.val != op {
		return &SyntaxError{Message: fmt.Sprintf("expected %q", op), Fragment: tok.text()}
	}
	return nil
}

func (p *exprParser) parseTernary() (int64, error) {
	value, err := p.parseLogicalOr()
	if err != nil {
		return 0, err
	}
	if !p.peekOp("?") {
		return value, nil
	}
	p.next()
	// Both branches evaluate; operands have no side effects.
	trueValue, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if err := p.expectOp(":"); err != nil {
		return 0, err
	}
	falseValue, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if value != 0 {
		return trueValue, nil
	}
	return falseValue, nil
}

func (p *exprParser) parseLogicalOr() (int64, error) {
	value, err := p.parseLogicalAnd()
	if err != nil {
		return 0, err
	}
	for p.peekOp("||") {
		p.next()
		right, err := p.parseLogicalAnd()
		if err != nil {
			return 0, err
		}
		value = boolToInt(value != 0 || right != 0)
	}
	return value, nil
}

func (p *exprParser) parseLogicalAnd() (int64, error) {
	value, err := p.parseBitwiseOr()
	if err != nil {
		return 0, err
	}
	for p.peekOp("&&") {
		p.next()
		right, err := p.parseBitwiseOr()
		if err != nil {
			return 0, err
		}
		value = boolToInt(value != 0 && right != 0)
	}
	return value, nil
}

func (p *exprParser) parseBitwiseOr() (int64, error) {
	value, err := p.parseBitwiseXor()
	if err != nil {
		return 0, err
	}
	for p.peekOp("|") {
		p.next()
		right, err := p.parseBitwiseXor()
		if err != nil {
			return 0, err
		}
		value |= right
	}
	return value, nil
}

func (p *exprParser) parseBitwiseXor() (int64, error) {
	value, err := p.parseBitwiseAnd()
	if err != nil {
		return 0, err
	}
	for p.peekOp("^") {
		p.next()
		right, err := p.parseBitwiseAnd()
		if err != nil {
			return 0, err
		}
		value ^= right
	}
	return value, nil
}

func (p *exprParser) parseBitwiseAnd() (int64, error) {
	value, err := p.parseEquality()
	if err != nil {
		return 0, err
	}
	for p.peekOp("&") {
		p.next()
		right, err := p.parseEquality()
		if err != nil {
			return 0, err
		}
		value &= right
	}
	return value, nil
}

func (p *exprParser) parseEquality() (int64, error) {
	value, err := p.parseRelational()
	if err != nil {
		return 0, err
	}
	for p.peekOp("==") || p.peekOp("!=") {
		op := p.next().val
		right, err := p.parseRelational()
		if err != nil {
			return 0, err
		}
		if op == "==" {
			value = boolToInt(value == right)
		} else {
			value = boolToInt(value != right)
		}
	}
	return value, nil
}

func (p *exprParser) parseRelational() (int64, error) {
	value, err := p.parseShift()
	if err != nil {
		return 0, err
	}
	for p.peekOp("<") || p.peekOp(">") || p.peekOp("<=") || p.peekOp(">=") {
		op := p.next().val
		right, err := p.parseShift()
		if err != nil {
			return 0, err
		}
		switch op {
		case "<":
			value = boolToInt(value < right)
		case ">":
			value = boolToInt(value > right)
		case "<=":
			value = boolToInt(value <= right)
		default:
			value = boolToInt(value >= right)
		}
	}
	return value, nil
}

func (p *exprParser) parseShift() (int64, error) {
	value, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	for p.peekOp("<<") || p.peekOp(">>") {
		op := p.next().val
		right, err := p.parseAdditive()
		if err != nil {
			return 0, err
		}
		if op == "<<" {
			value <<= uint64(right)
		} else {
			value >>= uint64(right)
		}
	}
	return value, nil
}

func (p *exprParser) parseAdditive() (int64, error) {
	value, err := p.parseMultiplicative()
	if err != nil {
		return 0, err
	}
	for p.peekOp("+") || p.peekOp("-") {
		op := p.next().val
		right, err := p.parseMultiplicative()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			value += right
		} else {
			value -= right
		}
	}
	return value, nil
}

func (p *exprParser) parseMultiplicative() (int64, error) {
	value, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.peekOp("*") || p.peekOp("/") || p.peekOp("%") {
		op := p.next().val
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			value *= right
		case "/":
			if right == 0 {
				return 0, &ArithmeticError{Op: "division"}
			}
			value /= right
		default:
			if right == 0 {
				return 0, &ArithmeticError{Op: "modulo"}
			}
			value %= right
		}
	}
	return value, nil
}

func (p *exprParser) parseUnary() (int64, error) {
	if p.peekOp("+") || p.peekOp("-") || p.peekOp("!") || p.peekOp("~") {
		op := p.next().val
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "+":
			return operand, nil
		case "-":
			return -operand, nil
		case "!":
			return boolToInt(operand == 0), nil
		default:
			return ^operand, nil
		}
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (int64, error) {
	tok := p.peek()
	if tok.typ == OPERATOR && tok.val == "(" {
		p.next()
		value, err := p.parseTernary()
		if err != nil {
			return 0, err
		}
		if err := p.expectOp(")"); err != nil {
			return 0, err
		}
		return value, nil
	}
	if tok.typ == NUMBER {
		p.next()
		return tok.num, nil
	}
	if tok.typ == IDENT {
		p.next()
		if value, ok := p.env.Lookup(tok.val); ok {
			return value, nil
		}
		return 0, &UnresolvedIdentError{Name: tok.val}
	}
	return 0, &SyntaxError{Message: "unexpected token in expression", Fragment: tok.text()}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
