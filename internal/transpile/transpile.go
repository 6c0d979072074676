// Package transpile turns the curly-brace surface syntax (§4.4) into the
// opcode AST internal/compiler and internal/interp operate on: a Pratt
// expression parser keyed by a precedence table, with prefix/infix parse
// functions that switch on the token type, plus a recursive-descent
// statement layer. There is
// no separate typed AST to build — parsing constructs ast.Node (opcode
// Expr and Literal trees) directly.
package transpile

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/verbscript/internal/ast"
	"github.com/cwbudde/verbscript/internal/lexer"
	"github.com/cwbudde/verbscript/internal/scripterr"
	"github.com/cwbudde/verbscript/internal/token"
)

// Precedence levels, lowest to highest. Compound assignment operators
// share ASSIGN's level and are handled in the same infix function, since
// this grammar has no separate statement-level assignment production.
const (
	_ int = iota
	LOWEST
	ASSIGN
	COALESCE
	LOGIC_OR
	LOGIC_AND
	EQUALITY
	COMPARE
	SUM
	PRODUCT
	POWER
	PREFIX
	POSTFIX
)

var precedences = map[token.Type]int{
	token.ASSIGN:                   ASSIGN,
	token.PLUS_ASSIGN:              ASSIGN,
	token.MINUS_ASSIGN:             ASSIGN,
	token.STAR_ASSIGN:              ASSIGN,
	token.SLASH_ASSIGN:             ASSIGN,
	token.PERCENT_ASSIGN:           ASSIGN,
	token.STAR_STAR_ASSIGN:         ASSIGN,
	token.QUESTION_QUESTION_ASSIGN: ASSIGN,
	token.AND_AND_ASSIGN:           ASSIGN,
	token.OR_OR_ASSIGN:             ASSIGN,
	token.QUESTION_QUESTION:        COALESCE,
	token.OR_OR:                    LOGIC_OR,
	token.AND_AND:                  LOGIC_AND,
	token.EQ:                       EQUALITY,
	token.NEQ:                      EQUALITY,
	token.IN:                       EQUALITY,
	token.LT:                       COMPARE,
	token.LTE:                      COMPARE,
	token.GT:                       COMPARE,
	token.GTE:                      COMPARE,
	token.PLUS:                     SUM,
	token.MINUS:                    SUM,
	token.STAR:                     PRODUCT,
	token.SLASH:                    PRODUCT,
	token.PERCENT:                  PRODUCT,
	token.STAR_STAR:                POWER,
	token.LPAREN:                   POSTFIX,
	token.LBRACKET:                 POSTFIX,
	token.DOT:                      POSTFIX,
	token.QUESTION_DOT:             POSTFIX,
}

// binaryOp maps a surface infix operator token to the opcode that
// implements it (§4.4's operator table).
var binaryOp = map[token.Type]string{
	token.PLUS: "add", token.MINUS: "sub", token.STAR: "mul",
	token.SLASH: "div", token.PERCENT: "mod",
	token.EQ: "eq", token.NEQ: "neq",
	token.LT: "<", token.LTE: "<=", token.GT: ">", token.GTE: ">=",
}

// ParseError reports a surface-syntax construct that could not be parsed
// at all (malformed input). UnsupportedConstruct reports syntax that
// parses but has no opcode-AST mapping (§4.4's two failure modes).
type ParseError struct{ *scripterr.CompilerError }
type UnsupportedConstruct struct{ *scripterr.CompilerError }

func newParseError(pos token.Position, format string, a ...any) error {
	return &ParseError{scripterr.NewCompilerError(
		scripterr.Position{Line: pos.Line, Column: pos.Column}, fmt.Sprintf(format, a...), "", "")}
}

func newUnsupported(pos token.Position, construct string) error {
	return &UnsupportedConstruct{scripterr.NewCompilerError(
		scripterr.Position{Line: pos.Line, Column: pos.Column},
		"unsupported construct: "+construct, "", "")}
}

// Transpiler walks a token stream and builds the opcode AST. KnownOpcodes
// is consulted by call-site resolution (§4.4: "f(a,b) compiles to an
// opcode call if f resolves to an opcode, unless shadowed by a local
// binding") — it is the registry's live opcode name set, supplied by the
// host embedding the engine.
type Transpiler struct {
	toks       []token.Token
	pos        int
	known      map[string]bool
	locals     []map[string]bool
	tmpCounter int
}

// Transpile parses source into an opcode AST. knownOpcodes should be the
// name set of the registry the resulting AST will run against (typically
// registry.Registry.Names(), as a set).
func Transpile(source string, knownOpcodes map[string]bool) (ast.Node, error) {
	t := &Transpiler{toks: lexer.All(source), known: knownOpcodes}
	if t.known == nil {
		t.known = map[string]bool{}
	}
	t.pushScope()
	stmts, err := t.parseStatements(token.EOF)
	if err != nil {
		return nil, err
	}
	return seqOf(stmts), nil
}

func seqOf(stmts []ast.Node) ast.Node {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return ast.NewExpr("std.seq", stmts...)
}

// --- token cursor -----------------------------------------------------

func (t *Transpiler) cur() token.Token { return t.toks[t.pos] }
func (t *Transpiler) advance() token.Token {
	tok := t.cur()
	if t.pos < len(t.toks)-1 {
		t.pos++
	}
	return tok
}
func (t *Transpiler) at(typ token.Type) bool { return t.cur().Type == typ }
func (t *Transpiler) accept(typ token.Type) bool {
	if t.at(typ) {
		t.advance()
		return true
	}
	return false
}
func (t *Transpiler) expect(typ token.Type) (token.Token, error) {
	if !t.at(typ) {
		return token.Token{}, newParseError(t.cur().Pos, "expected %s, got %s (%q)", typ, t.cur().Type, t.cur().Literal)
	}
	return t.advance(), nil
}

// --- scope tracking (shadowing rule, §4.4) -----------------------------

func (t *Transpiler) pushScope()    { t.locals = append(t.locals, map[string]bool{}) }
func (t *Transpiler) popScope()     { t.locals = t.locals[:len(t.locals)-1] }
func (t *Transpiler) bind(name string) {
	t.locals[len(t.locals)-1][name] = true
}
func (t *Transpiler) isLocal(name string) bool {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if t.locals[i][name] {
			return true
		}
	}
	return false
}

func (t *Transpiler) newTemp() string {
	t.tmpCounter++
	return "__tmp" + strconv.Itoa(t.tmpCounter)
}

// reservedCallOpcode maps a surface reserved word to the special-form
// opcode it names, for the reverse-sanitization call-target rule (§4.4):
// since "if", "while", etc. are keyword tokens and never lex as IDENT, the
// only way to invoke them as a call expression (rather than through their
// dedicated statement syntax) is a trailing-underscore escape, e.g.
// `if_(cond, then, else)` calling the std.if opcode directly.
var reservedCallOpcode = map[string]string{
	"if": "std.if", "while": "std.while", "for": "std.for",
	"let": "std.let", "return": "std.return", "break": "std.break",
	"continue": "std.continue", "try": "std.try",
}

func strLit(s string) ast.Node   { return ast.NewLiteral(ast.String(s)) }
func numLit(n float64) ast.Node  { return ast.NewLiteral(ast.Number(n)) }
func nullLit() ast.Node          { return ast.NewLiteral(ast.Null()) }
func boolLit(b bool) ast.Node    { return ast.NewLiteral(ast.Bool(b)) }
