package transpile

import (
	"strings"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/token"
)

// parseInfix consumes one infix/postfix production given an already-parsed
// left operand, dispatching by the current token's type.
func (t *Transpiler) parseInfix(left ast.Node) (ast.Node, error) {
	switch t.cur().Type {
	case token.DOT:
		return t.parseMemberDot(left, false)
	case token.QUESTION_DOT:
		return t.parseOptional(left)
	case token.LBRACKET:
		return t.parseIndex(left, false)
	case token.LPAREN:
		return t.parseCallArgs(left)
	case token.AND_AND:
		t.advance()
		rhs, err := t.parseExpression(LOGIC_AND + 1)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr("and", left, rhs), nil
	case token.OR_OR:
		t.advance()
		rhs, err := t.parseExpression(LOGIC_OR + 1)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr("or", left, rhs), nil
	case token.QUESTION_QUESTION:
		return t.parseCoalesce(left)
	case token.IN:
		t.advance()
		rhs, err := t.parseExpression(EQUALITY + 1)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr("obj.has", rhs, left), nil
	case token.STAR_STAR:
		t.advance()
		rhs, err := t.parseExpression(POWER) // right-associative power tower
		if err != nil {
			return nil, err
		}
		return ast.NewExpr("^", left, rhs), nil
	case token.ASSIGN, token.PLUS_ASSIGN, token.MINUS_ASSIGN, token.STAR_ASSIGN,
		token.SLASH_ASSIGN, token.PERCENT_ASSIGN, token.STAR_STAR_ASSIGN,
		token.QUESTION_QUESTION_ASSIGN, token.AND_AND_ASSIGN, token.OR_OR_ASSIGN:
		return t.parseAssignment(left)
	default:
		op, ok := binaryOp[t.cur().Type]
		if !ok {
			return nil, newParseError(t.cur().Pos, "unexpected infix token %s", t.cur().Type)
		}
		prec := precedences[t.cur().Type]
		t.advance()
		rhs, err := t.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		return ast.NewExpr(op, left, rhs), nil
	}
}

func (t *Transpiler) parseMemberDot(left ast.Node, optional bool) (ast.Node, error) {
	t.advance() // .
	nameTok, err := t.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.NewExpr("obj.get", left, strLit(nameTok.Literal)), nil
}

func (t *Transpiler) parseIndex(left ast.Node, optional bool) (ast.Node, error) {
	t.advance() // [
	key, err := t.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return ast.NewExpr("obj.get", left, key), nil
}

func (t *Transpiler) parseCallArgs(callee ast.Node) (ast.Node, error) {
	t.advance() // (
	var args []ast.Node
	for !t.at(token.RPAREN) {
		a, err := t.parseExpression(ASSIGN + 1)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if !t.accept(token.COMMA) {
			break
		}
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return t.buildCall(callee, args), nil
}

// buildCall implements §4.4's call resolution rule: a bare, unshadowed
// identifier naming a known opcode compiles directly to that opcode call;
// anything else (a shadowed name, or an identifier that isn't a
// registered opcode) compiles to std.apply(callee, args...).
//
// Opcode names are themselves dotted ("std.throw", "list.push",
// "math.floor"), so a plain member-access call like std.throw("boom")
// must resolve through the dotted path, not through obj.get+apply, or
// every stdlib opcode outside the bare arithmetic/boolean names would be
// uncallable from surface syntax. flattenDottedCallee reconstructs that
// path from the obj.get chain the postfix parser already built.
func (t *Transpiler) buildCall(callee ast.Node, args []ast.Node) ast.Node {
	if varExpr, ok := callee.(*ast.Expr); ok && varExpr.Op == "std.var" {
		if nameLit, ok := varExpr.Args[0].(*ast.Literal); ok {
			name := nameLit.Val.Str()
			if !t.isLocal(name) {
				if strings.HasSuffix(name, "_") {
					if op, ok := reservedCallOpcode[strings.TrimSuffix(name, "_")]; ok {
						return ast.NewExpr(op, args...)
					}
				}
				if t.known[name] {
					return ast.NewExpr(name, args...)
				}
			}
		}
	} else if name, ok := t.flattenDottedCallee(callee); ok && t.known[name] {
		return ast.NewExpr(name, args...)
	}
	applyArgs := append([]ast.Node{callee}, args...)
	return ast.NewExpr("std.apply", applyArgs...)
}

// flattenDottedCallee reconstructs "a.b.c" from a chain of
// obj.get(obj.get(std.var("a"), "b"), "c") nodes, provided the root
// identifier isn't locally shadowed. Used only in call position.
func (t *Transpiler) flattenDottedCallee(node ast.Node) (string, bool) {
	e, ok := node.(*ast.Expr)
	if !ok {
		return "", false
	}
	switch e.Op {
	case "std.var":
		lit, ok := e.Args[0].(*ast.Literal)
		if !ok || lit.Val == nil || lit.Val.Kind() != ast.KindString {
			return "", false
		}
		name := lit.Val.Str()
		if t.isLocal(name) {
			return "", false
		}
		return name, true
	case "obj.get":
		base, ok := t.flattenDottedCallee(e.Args[0])
		if !ok {
			return "", false
		}
		keyLit, ok := e.Args[1].(*ast.Literal)
		if !ok || keyLit.Val == nil || keyLit.Val.Kind() != ast.KindString {
			return "", false
		}
		return base + "." + keyLit.Val.Str(), true
	default:
		return "", false
	}
}

// parseOptional handles `a?.b`, `a?.[k]`, and `a?.()`: the already-parsed
// left is hoisted into a temp binding so it is evaluated exactly once,
// then guarded with std.if(left != null, access, null) (§4.4).
func (t *Transpiler) parseOptional(left ast.Node) (ast.Node, error) {
	t.advance() // ?.
	tmp := t.newTemp()
	ref := ast.NewExpr("std.var", strLit(tmp))

	var access ast.Node
	var err error
	switch {
	case t.at(token.LBRACKET):
		access, err = t.parseIndex(ref, true)
	case t.at(token.LPAREN):
		access, err = t.parseCallArgs(ref)
	default:
		access, err = t.parseMemberDot(ref, true)
	}
	if err != nil {
		return nil, err
	}
	guarded := ast.NewExpr("std.if",
		ast.NewExpr("neq", ref, nullLit()),
		access,
		nullLit(),
	)
	return ast.NewExpr("std.seq", ast.NewExpr("std.let", strLit(tmp), left), guarded), nil
}

// parseCoalesce handles `a ?? b`, hoisting a into a temp so it is
// evaluated exactly once (§4.4).
func (t *Transpiler) parseCoalesce(left ast.Node) (ast.Node, error) {
	t.advance() // ??
	tmp := t.newTemp()
	rhs, err := t.parseExpression(COALESCE + 1)
	if err != nil {
		return nil, err
	}
	ref := ast.NewExpr("std.var", strLit(tmp))
	guarded := ast.NewExpr("std.if", ast.NewExpr("neq", ref, nullLit()), ref, rhs)
	return ast.NewExpr("std.seq", ast.NewExpr("std.let", strLit(tmp), left), guarded), nil
}

// assignTarget describes an lvalue: either a bound name (std.set/std.var)
// or an obj.get member (obj.set/obj.get), each with a getter/setter
// builder so compound assignment can read-then-write without re-parsing.
type assignTarget struct {
	get func() ast.Node
	set func(value ast.Node) ast.Node
}

func (t *Transpiler) resolveTarget(node ast.Node) (*assignTarget, bool) {
	e, ok := node.(*ast.Expr)
	if !ok {
		return nil, false
	}
	switch e.Op {
	case "std.var":
		name := e.Args[0].(*ast.Literal).Val.Str()
		return &assignTarget{
			get: func() ast.Node { return ast.NewExpr("std.var", strLit(name)) },
			set: func(v ast.Node) ast.Node { return ast.NewExpr("std.set", strLit(name), v) },
		}, true
	case "obj.get":
		objNode, keyNode := e.Args[0], e.Args[1]
		return &assignTarget{
			get: func() ast.Node { return ast.NewExpr("obj.get", objNode, keyNode) },
			set: func(v ast.Node) ast.Node { return ast.NewExpr("obj.set", objNode, keyNode, v) },
		}, true
	default:
		return nil, false
	}
}

// hoistMemberTarget rewrites an obj.get target into one backed by fresh
// temp variables, so a compound assignment's read and write don't each
// re-evaluate the object/key sub-expressions (§4.4's single-evaluation
// requirement). Identifier targets need no hoisting: std.var/std.set
// already reference the binding by name, not by re-evaluating an
// expression.
func (t *Transpiler) hoistMemberTarget(target ast.Node) (ast.Node, []ast.Node) {
	e, ok := target.(*ast.Expr)
	if !ok || e.Op != "obj.get" {
		return target, nil
	}
	tmpObj, tmpKey := t.newTemp(), t.newTemp()
	preamble := []ast.Node{
		ast.NewExpr("std.let", strLit(tmpObj), e.Args[0]),
		ast.NewExpr("std.let", strLit(tmpKey), e.Args[1]),
	}
	hoisted := ast.NewExpr("obj.get", ast.NewExpr("std.var", strLit(tmpObj)), ast.NewExpr("std.var", strLit(tmpKey)))
	return hoisted, preamble
}

func wrapPreamble(preamble []ast.Node, final ast.Node) ast.Node {
	if len(preamble) == 0 {
		return final
	}
	return ast.NewExpr("std.seq", append(append([]ast.Node{}, preamble...), final)...)
}

func (t *Transpiler) parseAssignment(left ast.Node) (ast.Node, error) {
	opTok := t.cur()
	pos := opTok.Pos
	t.advance()

	hoisted, preamble := t.hoistMemberTarget(left)
	target, ok := t.resolveTarget(hoisted)
	if !ok {
		return nil, newUnsupported(pos, "assignment to a non-identifier, non-member expression")
	}

	rhs, err := t.parseExpression(ASSIGN)
	if err != nil {
		return nil, err
	}

	var result ast.Node
	switch opTok.Type {
	case token.ASSIGN:
		result = target.set(rhs)
	case token.PLUS_ASSIGN:
		result = target.set(ast.NewExpr("add", target.get(), rhs))
	case token.MINUS_ASSIGN:
		result = target.set(ast.NewExpr("sub", target.get(), rhs))
	case token.STAR_ASSIGN:
		result = target.set(ast.NewExpr("mul", target.get(), rhs))
	case token.SLASH_ASSIGN:
		result = target.set(ast.NewExpr("div", target.get(), rhs))
	case token.PERCENT_ASSIGN:
		result = target.set(ast.NewExpr("mod", target.get(), rhs))
	case token.STAR_STAR_ASSIGN:
		result = target.set(ast.NewExpr("^", target.get(), rhs))
	case token.QUESTION_QUESTION_ASSIGN:
		result = ast.NewExpr("std.if", ast.NewExpr("neq", target.get(), nullLit()), target.get(), target.set(rhs))
	case token.AND_AND_ASSIGN:
		result = ast.NewExpr("std.if", target.get(), target.set(rhs), target.get())
	case token.OR_OR_ASSIGN:
		result = ast.NewExpr("std.if", target.get(), target.get(), target.set(rhs))
	default:
		return nil, newParseError(pos, "unsupported assignment operator %s", opTok.Type)
	}
	return wrapPreamble(preamble, result), nil
}
