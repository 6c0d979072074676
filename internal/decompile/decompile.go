// Package decompile turns an opcode AST back into the curly-brace surface
// syntax internal/transpile accepts (§4.5). It is the transpiler's mirror
// image: where internal/transpile builds ast.Node trees from a token
// stream with a Pratt parser, this package walks ast.Node trees and emits
// source text, using its own mirror of the transpiler's operator and
// special-form mappings.
//
// The decompiler does not aim for a byte-identical round trip through
// human-authored source — it aims for the contract in §4.5:
// transpile(decompile(A)) reproduces A for any AST the transpiler could
// have produced. Infix operators are always parenthesized and a seq in
// expression position always becomes an immediately-invoked arrow lambda
// (in statement position it prints as plain statements), which is
// simpler (and always correct) than
// trying to recover the original author's whitespace or omitted
// parentheses.
package decompile

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cwbudde/verbscript/internal/ast"
)

// identPattern matches the surface-syntax bare-identifier grammar; a
// string literal key that matches it can be rendered with dot notation
// instead of bracket notation (§4.5).
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reverseBinaryOp maps an opcode name back to its infix operator token,
// the mirror of internal/transpile's binaryOp table.
var reverseBinaryOp = map[string]string{
	"add": "+", "sub": "-", "mul": "*", "div": "/", "mod": "%",
	"eq": "==", "neq": "!=",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=",
	"^": "**",
}

// Decompile renders node as a top-level program (statement context).
func Decompile(node ast.Node) (string, error) {
	p := &printer{}
	p.stmt(node)
	return p.buf.String(), nil
}

type printer struct {
	buf strings.Builder
}

func (p *printer) write(s string) { p.buf.WriteString(s) }

// stmt prints node in statement context: a std.seq (at any depth) becomes
// a semicolon-joined sequence of statements rather than an IIFE, matching
// §4.5's statement-vs-expression-context split for seq.
func (p *printer) stmt(node ast.Node) {
	for _, s := range flattenStmts(node) {
		p.write(p.expr(s))
		p.write(";\n")
	}
}

// flattenStmts recursively unrolls nested std.seq nodes into a flat
// statement list, so a seq appearing directly in statement position
// (whether the program's own top level or hoisted-assignment preamble
// wrapping) always prints as a plain sequence of statements rather than
// an IIFE, regardless of nesting depth.
func flattenStmts(node ast.Node) []ast.Node {
	e, ok := node.(*ast.Expr)
	if !ok || e.Op != "std.seq" {
		return []ast.Node{node}
	}
	var out []ast.Node
	for _, a := range e.Args {
		out = append(out, flattenStmts(a)...)
	}
	return out
}

// expr renders node as an expression, returning the source text rather
// than writing directly, since expressions nest inside other expressions.
func (p *printer) expr(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Literal:
		return literalText(n)
	case *ast.Expr:
		return p.exprNode(n)
	default:
		return "null"
	}
}

func literalText(l *ast.Literal) string {
	if l == nil || l.Val == nil {
		return "null"
	}
	switch l.Val.Kind() {
	case ast.KindNull:
		return "null"
	case ast.KindBool:
		if l.Val.Bool() {
			return "true"
		}
		return "false"
	case ast.KindNumber:
		return strconv.FormatFloat(l.Val.Number(), 'g', -1, 64)
	case ast.KindString:
		return strconv.Quote(l.Val.Str())
	default:
		return "null"
	}
}

// stringLiteralKey reports the literal string value of node and whether
// node is in fact a plain string literal (as opposed to a computed key
// expression).
func stringLiteralKey(node ast.Node) (string, bool) {
	lit, ok := node.(*ast.Literal)
	if !ok || lit.Val == nil || lit.Val.Kind() != ast.KindString {
		return "", false
	}
	return lit.Val.Str(), true
}

func (p *printer) exprNode(e *ast.Expr) string {
	if op, ok := reverseBinaryOp[e.Op]; ok && len(e.Args) == 2 {
		return "(" + p.expr(e.Args[0]) + " " + op + " " + p.expr(e.Args[1]) + ")"
	}
	switch e.Op {
	case "and":
		return p.variadicInfix("&&", e.Args)
	case "or":
		return p.variadicInfix("||", e.Args)
	case "not":
		return "(!" + p.expr(e.Args[0]) + ")"
	case "std.var":
		name, _ := stringLiteralKey(e.Args[0])
		return name
	case "std.let":
		name, _ := stringLiteralKey(e.Args[0])
		return "let " + name + " = " + p.expr(e.Args[1])
	case "std.set":
		name, _ := stringLiteralKey(e.Args[0])
		return name + " = " + p.expr(e.Args[1])
	case "obj.get":
		return p.memberAccess(e.Args[0], e.Args[1])
	case "obj.set":
		return p.memberAccess(e.Args[0], e.Args[1]) + " = " + p.expr(e.Args[2])
	case "obj.has":
		// reconstructed from the transpiler's (rhs, lhs) argument swap for "in"
		return "(" + p.expr(e.Args[1]) + " in " + p.expr(e.Args[0]) + ")"
	case "obj.del":
		return "delete " + p.memberAccess(e.Args[0], e.Args[1])
	case "obj.new":
		return p.objectLiteral(e.Args)
	case "list.new":
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = p.expr(a)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case "str.concat":
		return p.template(e.Args)
	case "std.if":
		return p.ifExpr(e)
	case "std.while":
		return p.whileExpr(e)
	case "std.for":
		return p.forExpr(e)
	case "std.seq":
		return p.seqExpr(e)
	case "std.break":
		return "break"
	case "std.continue":
		return "continue"
	case "std.return":
		if len(e.Args) == 0 {
			return "return"
		}
		return "return " + p.expr(e.Args[0])
	case "std.try":
		return p.tryExpr(e)
	case "std.lambda":
		return p.lambdaExpr(e)
	case "std.apply":
		return p.applyExpr(e)
	default:
		return p.callExpr(e.Op, e.Args)
	}
}

// variadicInfix joins args with op inside one pair of parentheses, for the
// variadic and/or opcodes — which the transpiler only ever emits at
// arity 2 (via && / ||'s left-associative chaining) but which remain
// directly callable at any arity since both are ordinary registered
// opcodes (e.g. and(a, b, c)).
func (p *printer) variadicInfix(op string, args []ast.Node) string {
	if len(args) == 0 {
		return "true"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = p.expr(a)
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

func (p *printer) memberAccess(objNode, keyNode ast.Node) string {
	obj := p.expr(objNode)
	if name, ok := stringLiteralKey(keyNode); ok && identPattern.MatchString(name) {
		return obj + "." + name
	}
	return obj + "[" + p.expr(keyNode) + "]"
}

func (p *printer) objectLiteral(args []ast.Node) string {
	var parts []string
	for i := 0; i+1 < len(args); i += 2 {
		keyText := ""
		if name, ok := stringLiteralKey(args[i]); ok && identPattern.MatchString(name) {
			keyText = name
		} else if name, ok := stringLiteralKey(args[i]); ok {
			keyText = strconv.Quote(name)
		} else {
			keyText = "[" + p.expr(args[i]) + "]"
		}
		parts = append(parts, keyText+": "+p.expr(args[i+1]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// template renders a str.concat chain back into a backtick template
// string, inlining literal parts verbatim and wrapping every other part
// in ${...}. This is the decompiler's one deliberate asymmetry with the
// transpiler: str.concat built from ordinary "+" string concatenation
// decompiles to the same template form, since the AST carries no marker
// distinguishing the two surface spellings.
func (p *printer) template(args []ast.Node) string {
	var sb strings.Builder
	sb.WriteByte('`')
	for _, a := range args {
		if lit, ok := a.(*ast.Literal); ok && lit.Val != nil && lit.Val.Kind() == ast.KindString {
			sb.WriteString(lit.Val.Str())
			continue
		}
		sb.WriteString("${")
		sb.WriteString(p.expr(a))
		sb.WriteString("}")
	}
	sb.WriteByte('`')
	return sb.String()
}

func (p *printer) ifExpr(e *ast.Expr) string {
	cond := p.expr(e.Args[0])
	then := p.block(e.Args[1])
	if len(e.Args) > 2 {
		return "if (" + cond + ") " + then + " else " + p.block(e.Args[2])
	}
	return "if (" + cond + ") " + then
}

func (p *printer) whileExpr(e *ast.Expr) string {
	return "while (" + p.expr(e.Args[0]) + ") " + p.block(e.Args[1])
}

func (p *printer) forExpr(e *ast.Expr) string {
	name, _ := stringLiteralKey(e.Args[0])
	return "for (const " + name + " of " + p.expr(e.Args[1]) + ") " + p.block(e.Args[2])
}

// seqExpr renders a std.seq in expression context as an immediately-
// invoked arrow lambda, since the surface language has no bare statement-
// block expression form (§4.5).
func (p *printer) seqExpr(e *ast.Expr) string {
	return "(() => " + p.blockWithReturn(e.Args) + ")()"
}

func (p *printer) tryExpr(e *ast.Expr) string {
	errName, _ := stringLiteralKey(e.Args[1])
	return "try " + p.block(e.Args[0]) + " catch (" + errName + ") " + p.block(e.Args[2])
}

func (p *printer) lambdaExpr(e *ast.Expr) string {
	paramsContainer, ok := e.Args[0].(*ast.Expr)
	var names []string
	if ok {
		for _, a := range paramsContainer.Args {
			if name, ok := stringLiteralKey(a); ok {
				names = append(names, name)
			}
		}
	}
	body := e.Args[1]
	return "(" + strings.Join(names, ", ") + ") => " + p.blockWithReturn([]ast.Node{body})
}

// applyExpr renders std.apply(fn, args...) back to an ordinary call
// expression. If fn itself decompiles to a plain identifier or member
// access, the call reads naturally as fn(args); any other callee
// (an inline lambda, say) is still printed directly as the call head.
func (p *printer) applyExpr(e *ast.Expr) string {
	if len(e.Args) == 0 {
		return "std.apply()"
	}
	fn := e.Args[0]
	return p.callExpr(p.expr(fn), e.Args[1:])
}

func (p *printer) callExpr(callee string, args []ast.Node) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = p.expr(a)
	}
	return callee + "(" + strings.Join(parts, ", ") + ")"
}

// block renders node as a brace-delimited statement block. A std.seq (at
// any nesting depth) unrolls into one statement per line; any other node
// becomes a single-statement block.
func (p *printer) block(node ast.Node) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for _, s := range flattenStmts(node) {
		sb.WriteString(p.expr(s))
		sb.WriteString("; ")
	}
	sb.WriteString("}")
	return sb.String()
}

// blockWithReturn renders stmts as a brace-delimited block with an
// explicit return inserted before the final statement, the lambda-body
// policy of §4.5 ("lambdas with a block body insert an explicit return on
// the final statement").
func (p *printer) blockWithReturn(stmts []ast.Node) string {
	var flat []ast.Node
	for _, s := range stmts {
		flat = append(flat, flattenStmts(s)...)
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, s := range flat {
		if i == len(flat)-1 && !isControlFlow(s) {
			sb.WriteString("return ")
			sb.WriteString(p.expr(s))
		} else {
			sb.WriteString(p.expr(s))
		}
		sb.WriteString("; ")
	}
	sb.WriteString("}")
	return sb.String()
}

// isControlFlow reports whether node already ends its own control flow
// (return/break/continue/throw), in which case blockWithReturn must not
// also prefix it with "return".
func isControlFlow(node ast.Node) bool {
	e, ok := node.(*ast.Expr)
	if !ok {
		return false
	}
	switch e.Op {
	case "std.return", "std.break", "std.continue", "std.throw":
		return true
	default:
		return false
	}
}

