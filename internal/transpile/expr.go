package transpile

import (
	"strconv"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/token"
)

// precedence returns 0 (below LOWEST) for any token with no infix/postfix
// meaning, which is what stops the Pratt loop in parseExpression.
func (t *Transpiler) precedence() int {
	if p, ok := precedences[t.cur().Type]; ok {
		return p
	}
	return 0
}

// parseExpression is the Pratt loop: a prefix production followed by as
// many infix/postfix productions as bind tighter than minPrec.
func (t *Transpiler) parseExpression(minPrec int) (ast.Node, error) {
	left, err := t.parsePrefix()
	if err != nil {
		return nil, err
	}
	for minPrec <= t.precedence() {
		left, err = t.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (t *Transpiler) parsePrefix() (ast.Node, error) {
	tok := t.cur()
	switch tok.Type {
	case token.NUMBER:
		t.advance()
		n, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, newParseError(tok.Pos, "invalid number literal %q", tok.Literal)
		}
		return numLit(n), nil
	case token.STRING:
		t.advance()
		return strLit(tok.Literal), nil
	case token.TEMPLATE_STRING:
		t.advance()
		return t.parseTemplate(tok)
	case token.TRUE:
		t.advance()
		return boolLit(true), nil
	case token.FALSE:
		t.advance()
		return boolLit(false), nil
	case token.NULL:
		t.advance()
		return nullLit(), nil
	case token.IDENT:
		return t.parseIdentOrLambda()
	case token.LPAREN:
		return t.parseParenOrLambda()
	case token.LBRACKET:
		return t.parseListLiteral()
	case token.LBRACE:
		return t.parseObjectLiteral()
	case token.BANG:
		t.advance()
		operand, err := t.parseExpression(PREFIX)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr("not", operand), nil
	case token.MINUS:
		t.advance()
		operand, err := t.parseExpression(PREFIX)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr("sub", numLit(0), operand), nil
	case token.PLUS:
		t.advance()
		return t.parseExpression(PREFIX)
	default:
		return nil, newParseError(tok.Pos, "unexpected token %s (%q)", tok.Type, tok.Literal)
	}
}

// parseIdentOrLambda disambiguates a bare identifier from the start of an
// arrow lambda with a single unparenthesized parameter, `x => x + 1`.
func (t *Transpiler) parseIdentOrLambda() (ast.Node, error) {
	tok := t.advance()
	if t.at(token.ARROW) {
		t.advance()
		t.pushScope()
		t.bind(tok.Literal)
		var body ast.Node
		var err error
		if t.at(token.LBRACE) {
			body, err = t.parseBlockExpr()
		} else {
			body, err = t.parseExpression(ASSIGN + 1)
		}
		t.popScope()
		if err != nil {
			return nil, err
		}
		return buildLambda([]string{tok.Literal}, body), nil
	}
	return t.identNode(tok), nil
}

// identNode compiles a bare identifier reference to std.var(name). Call-
// target resolution (opcode call vs. std.apply, and the reverse-
// sanitization escape) happens separately in buildCall, since it only
// applies to identifiers used in call position.
func (t *Transpiler) identNode(tok token.Token) ast.Node {
	return ast.NewExpr("std.var", strLit(tok.Literal))
}

// parseParenOrLambda disambiguates `(expr)` grouping from `(params) => ..`
// / `(params) { ... }` by scanning ahead for a matching close-paren
// followed by => or {.
func (t *Transpiler) parseParenOrLambda() (ast.Node, error) {
	if t.looksLikeLambdaParams() {
		return t.parseArrowLambda()
	}
	t.advance() // (
	expr, err := t.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

// looksLikeLambdaParams scans from the current LPAREN to its matching
// RPAREN and reports whether => follows, without consuming tokens. (The
// function-declaration form, `(params) { block }` with no arrow, is
// parsed separately from the `function` keyword, never from here.)
func (t *Transpiler) looksLikeLambdaParams() bool {
	depth := 0
	i := t.pos
	for i < len(t.toks) {
		switch t.toks[i].Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				return i+1 < len(t.toks) && t.toks[i+1].Type == token.ARROW
			}
		case token.EOF:
			return false
		}
		i++
	}
	return false
}

func (t *Transpiler) parseListLiteral() (ast.Node, error) {
	t.advance() // [
	var elems []ast.Node
	for !t.at(token.RBRACKET) {
		e, err := t.parseExpression(ASSIGN + 1)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if !t.accept(token.COMMA) {
			break
		}
	}
	if _, err := t.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return ast.NewExpr("list.new", elems...), nil
}

// parseObjectLiteral handles `{ k: v, "k2": v2, [expr]: v3 }`, mapped to
// obj.new(key, value, key, value, ...) (§4.4).
func (t *Transpiler) parseObjectLiteral() (ast.Node, error) {
	t.advance() // {
	var args []ast.Node
	for !t.at(token.RBRACE) {
		var key ast.Node
		switch {
		case t.at(token.LBRACKET):
			t.advance()
			k, err := t.parseExpression(ASSIGN + 1)
			if err != nil {
				return nil, err
			}
			if _, err := t.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			key = k
		case t.at(token.STRING):
			key = strLit(t.advance().Literal)
		default:
			nameTok, err := t.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			key = strLit(nameTok.Literal)
		}
		if _, err := t.expect(token.COLON); err != nil {
			return nil, err
		}
		val, err := t.parseExpression(ASSIGN + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, key, val)
		if !t.accept(token.COMMA) {
			break
		}
	}
	if _, err := t.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return ast.NewExpr("obj.new", args...), nil
}

// parseTemplate splits a template-string token's raw content on `${...}`
// boundaries and builds str.concat(part, expr, part, ...) (§4.4).
func (t *Transpiler) parseTemplate(tok token.Token) (ast.Node, error) {
	parts := splitTemplate(tok.Literal)
	var args []ast.Node
	for _, p := range parts {
		if !p.isExpr {
			args = append(args, strLit(p.text))
			continue
		}
		node, err := Transpile(p.text, t.known)
		if err != nil {
			return nil, err
		}
		args = append(args, node)
	}
	if len(args) == 0 {
		return strLit(""), nil
	}
	return ast.NewExpr("str.concat", args...), nil
}

type templatePart struct {
	isExpr bool
	text   string
}

func splitTemplate(raw string) []templatePart {
	var out []templatePart
	var lit []rune
	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		if runes[i] == '$' && i+1 < len(runes) && runes[i+1] == '{' {
			if len(lit) > 0 {
				out = append(out, templatePart{text: string(lit)})
				lit = nil
			}
			depth := 1
			j := i + 2
			start := j
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			out = append(out, templatePart{isExpr: true, text: string(runes[start:j])})
			i = j + 1
			continue
		}
		lit = append(lit, runes[i])
		i++
	}
	if len(lit) > 0 {
		out = append(out, templatePart{text: string(lit)})
	}
	return out
}
