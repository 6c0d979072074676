package transpile

import (
	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/token"
)

// parseStatements parses statements until the cursor sits on end (EOF for
// a program, RBRACE for a block already past its opening brace).
func (t *Transpiler) parseStatements(end token.Type) ([]ast.Node, error) {
	var out []ast.Node
	for !t.at(end) {
		s, err := t.parseStatement()
		if err != nil {
			return nil, err
		}
		if s != nil {
			out = append(out, s)
		}
	}
	return out, nil
}

// parseBlock parses `{ stmt* }` and returns the statement list (not yet
// wrapped in std.seq, so callers can special-case a single trailing
// expression, e.g. lambda-body `return` insertion at decompile time).
func (t *Transpiler) parseBlock() ([]ast.Node, error) {
	if _, err := t.expect(token.LBRACE); err != nil {
		return nil, err
	}
	t.pushScope()
	defer t.popScope()
	stmts, err := t.parseStatements(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (t *Transpiler) parseBlockExpr() (ast.Node, error) {
	stmts, err := t.parseBlock()
	if err != nil {
		return nil, err
	}
	if len(stmts) == 0 {
		return nullLit(), nil
	}
	return seqOf(stmts), nil
}

func (t *Transpiler) parseStatement() (ast.Node, error) {
	switch t.cur().Type {
	case token.SEMICOLON:
		t.advance()
		return nil, nil
	case token.LBRACE:
		return t.parseBlockExpr()
	case token.LET, token.CONST:
		return t.parseVarDecl()
	case token.FUNCTION:
		return t.parseFunctionDecl()
	case token.IF:
		return t.parseIf()
	case token.WHILE:
		return t.parseWhile()
	case token.FOR:
		return t.parseFor()
	case token.TRY:
		return t.parseTry()
	case token.RETURN:
		return t.parseReturn()
	case token.BREAK:
		t.advance()
		t.acceptSemi()
		return ast.NewExpr("std.break"), nil
	case token.CONTINUE:
		t.advance()
		t.acceptSemi()
		return ast.NewExpr("std.continue"), nil
	case token.DELETE:
		return t.parseDelete()
	case token.DECLARE, token.NAMESPACE:
		return t.skipDeclareOrNamespace()
	default:
		expr, err := t.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		t.acceptSemi()
		return expr, nil
	}
}

func (t *Transpiler) acceptSemi() { t.accept(token.SEMICOLON) }

// skipDeclareOrNamespace ignores a `declare ...;` or `namespace X { ... }`
// construct (§4.4: ambient type declarations and namespaces carry no
// runtime opcode and are dropped).
func (t *Transpiler) skipDeclareOrNamespace() (ast.Node, error) {
	isNamespace := t.at(token.NAMESPACE)
	t.advance()
	if isNamespace {
		for !t.at(token.LBRACE) && !t.at(token.EOF) {
			t.advance()
		}
		if t.at(token.LBRACE) {
			if _, err := t.parseBlock(); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	for !t.at(token.SEMICOLON) && !t.at(token.EOF) {
		t.advance()
	}
	t.acceptSemi()
	return nil, nil
}

// parseVarDecl handles `let x = expr;` / `const x = expr;`, producing
// std.let("x", expr). A bare `let x;` binds null.
func (t *Transpiler) parseVarDecl() (ast.Node, error) {
	t.advance() // let | const
	nameTok, err := t.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	var value ast.Node = nullLit()
	if t.accept(token.ASSIGN) {
		value, err = t.parseExpression(ASSIGN + 1)
		if err != nil {
			return nil, err
		}
	}
	t.acceptSemi()
	t.bind(nameTok.Literal)
	return ast.NewExpr("std.let", strLit(nameTok.Literal), value), nil
}

// parseFunctionDecl handles `function f(a, b) { ... }`, mapped to
// std.let("f", std.lambda(["a","b"], body)) so a named function is simply
// sugar over a let-bound lambda (§4.4).
func (t *Transpiler) parseFunctionDecl() (ast.Node, error) {
	t.advance() // function
	nameTok, err := t.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	t.bind(nameTok.Literal)
	lam, err := t.parseFunctionLambda()
	if err != nil {
		return nil, err
	}
	return ast.NewExpr("std.let", strLit(nameTok.Literal), lam), nil
}

// parseFunctionLambda parses `(params) { block }`, the body of a
// `function` declaration: always a statement block, never an arrow.
func (t *Transpiler) parseFunctionLambda() (ast.Node, error) {
	params, err := t.parseParamList()
	if err != nil {
		return nil, err
	}
	t.pushScope()
	for _, p := range params {
		t.bind(p)
	}
	defer t.popScope()
	body, err := t.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	return buildLambda(params, body), nil
}

// parseArrowLambda parses `(params) => expr` or `(params) => { block }`
// starting at the opening paren.
func (t *Transpiler) parseArrowLambda() (ast.Node, error) {
	params, err := t.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.ARROW); err != nil {
		return nil, err
	}
	t.pushScope()
	for _, p := range params {
		t.bind(p)
	}
	defer t.popScope()

	var body ast.Node
	if t.at(token.LBRACE) {
		body, err = t.parseBlockExpr()
	} else {
		body, err = t.parseExpression(ASSIGN + 1)
	}
	if err != nil {
		return nil, err
	}
	return buildLambda(params, body), nil
}

func buildLambda(params []string, body ast.Node) ast.Node {
	paramArgs := make([]ast.Node, len(params))
	for i, p := range params {
		paramArgs[i] = strLit(p)
	}
	return ast.NewExpr("std.lambda", ast.NewExpr("params", paramArgs...), body)
}

func (t *Transpiler) parseParamList() ([]string, error) {
	if _, err := t.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for !t.at(token.RPAREN) {
		nameTok, err := t.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, nameTok.Literal)
		if !t.accept(token.COMMA) {
			break
		}
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return params, nil
}

func (t *Transpiler) parseIf() (ast.Node, error) {
	t.advance() // if
	if _, err := t.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := t.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}
	thenExpr, err := t.parseStatement()
	if err != nil {
		return nil, err
	}
	if thenExpr == nil {
		thenExpr = nullLit()
	}
	if !t.accept(token.ELSE) {
		return ast.NewExpr("std.if", cond, thenExpr), nil
	}
	elseExpr, err := t.parseStatement()
	if err != nil {
		return nil, err
	}
	if elseExpr == nil {
		elseExpr = nullLit()
	}
	return ast.NewExpr("std.if", cond, thenExpr, elseExpr), nil
}

func (t *Transpiler) parseWhile() (ast.Node, error) {
	t.advance() // while
	if _, err := t.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := t.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := t.parseStatement()
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = nullLit()
	}
	return ast.NewExpr("std.while", cond, body), nil
}

// parseFor distinguishes `for (const x of xs) body` (mapped to std.for)
// from the C-style `for (init; cond; step) body`, desugared to
// std.seq(init, std.while(cond, std.seq(body, step))) per §4.4.
func (t *Transpiler) parseFor() (ast.Node, error) {
	t.advance() // for
	if _, err := t.expect(token.LPAREN); err != nil {
		return nil, err
	}

	if (t.at(token.LET) || t.at(token.CONST)) && isForOf(t) {
		t.advance() // let | const
		nameTok, err := t.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := t.expect(token.OF); err != nil {
			return nil, err
		}
		iterable, err := t.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
		if _, err := t.expect(token.RPAREN); err != nil {
			return nil, err
		}
		t.pushScope()
		t.bind(nameTok.Literal)
		body, err := t.parseStatement()
		t.popScope()
		if err != nil {
			return nil, err
		}
		if body == nil {
			body = nullLit()
		}
		return ast.NewExpr("std.for", strLit(nameTok.Literal), iterable, body), nil
	}

	t.pushScope()
	defer t.popScope()

	var init ast.Node = nullLit()
	var err error
	if !t.at(token.SEMICOLON) {
		init, err = t.parseStatement()
		if err != nil {
			return nil, err
		}
	} else {
		t.advance()
	}

	var cond ast.Node = boolLit(true)
	if !t.at(token.SEMICOLON) {
		cond, err = t.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := t.expect(token.SEMICOLON); err != nil {
		return nil, err
	}

	var step ast.Node = nullLit()
	if !t.at(token.RPAREN) {
		step, err = t.parseExpression(LOWEST)
		if err != nil {
			return nil, err
		}
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := t.parseStatement()
	if err != nil {
		return nil, err
	}
	if body == nil {
		body = nullLit()
	}

	loop := ast.NewExpr("std.while", cond, ast.NewExpr("std.seq", body, step))
	return ast.NewExpr("std.seq", init, loop), nil
}

// isForOf looks ahead past `let`/`const IDENT` to see whether an `of`
// token follows, disambiguating `for (const x of xs)` from a C-style
// `for (let i = 0; ...)` without backtracking the whole parser.
func isForOf(t *Transpiler) bool {
	save := t.pos
	defer func() { t.pos = save }()
	t.advance() // let | const
	if !t.at(token.IDENT) {
		return false
	}
	t.advance()
	return t.at(token.OF)
}

// parseTry handles `try { ... } catch (e) { ... }`, mapped to
// std.try(body, "e", catchBody) (§4.4's try/catch row).
func (t *Transpiler) parseTry() (ast.Node, error) {
	t.advance() // try
	body, err := t.parseBlockExpr()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.CATCH); err != nil {
		return nil, err
	}
	if _, err := t.expect(token.LPAREN); err != nil {
		return nil, err
	}
	errTok, err := t.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(token.RPAREN); err != nil {
		return nil, err
	}
	t.pushScope()
	t.bind(errTok.Literal)
	catchBody, err := t.parseBlockExpr()
	t.popScope()
	if err != nil {
		return nil, err
	}
	return ast.NewExpr("std.try", body, strLit(errTok.Literal), catchBody), nil
}

func (t *Transpiler) parseReturn() (ast.Node, error) {
	t.advance() // return
	if t.at(token.SEMICOLON) || t.at(token.RBRACE) {
		t.acceptSemi()
		return ast.NewExpr("std.return", nullLit()), nil
	}
	v, err := t.parseExpression(LOWEST)
	if err != nil {
		return nil, err
	}
	t.acceptSemi()
	return ast.NewExpr("std.return", v), nil
}

// parseDelete handles `delete o.k;` / `delete o[k];`, requiring a member
// target (§4.4: delete o.k -> obj.del(o, k)).
func (t *Transpiler) parseDelete() (ast.Node, error) {
	pos := t.cur().Pos
	t.advance() // delete
	target, err := t.parseExpression(POSTFIX)
	if err != nil {
		return nil, err
	}
	m, ok := target.(*ast.Expr)
	if !ok || m.Op != "obj.get" {
		return nil, newUnsupported(pos, "delete of a non-member expression")
	}
	t.acceptSemi()
	return ast.NewExpr("obj.del", m.Args[0], m.Args[1]), nil
}
