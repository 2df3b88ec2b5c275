// Package codegen renders a types.Tree back to compact ECMAScript source.
//
// Output carries no insignificant whitespace. Parentheses are emitted only
// where operator precedence, associativity or statement-start ambiguity
// requires them, so generating and re-parsing yields an equivalent tree.
package codegen

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/sandrolain/esopt/pkg/types"
)

// Options configures a Generator.
type Options struct {
	// Logger receives a warning for every node the generator cannot render.
	Logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Options)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// Generator renders trees to source text. It is safe for concurrent use as
// long as each call renders a different tree.
type Generator struct {
	opts   Options
	logger *slog.Logger
}

// New creates a new Generator with the given options.
func New(opts ...Option) *Generator {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{opts: options, logger: logger}
}

// Output is the result of rendering a subtree.
type Output struct {
	Code string

	// Diagnostics lists nodes that could not be rendered. Each one appears
	// in Code as the placeholder /*Error*/.
	Diagnostics []*types.Error
}

// Generate renders the subtree rooted at id.
func (g *Generator) Generate(t *types.Tree, id types.NodeID) *Output {
	p := &printer{t: t, logger: g.logger}
	code := p.node(id)
	return &Output{Code: code, Diagnostics: p.diags}
}

var defaultGenerator = New()

// Generate renders the subtree rooted at id with the default generator.
// Unrenderable nodes are logged and emitted as /*Error*/.
func Generate(t *types.Tree, id types.NodeID) string {
	return defaultGenerator.Generate(t, id).Code
}

type printer struct {
	t      *types.Tree
	logger *slog.Logger
	diags  []*types.Error

	// noIn is set while printing a for-loop initializer, where a bare
	// "in" operator would be read as a for-in head.
	noIn bool
}

// node renders id in its natural role: statement kinds as statements,
// everything else as an expression.
func (p *printer) node(id types.NodeID) string {
	switch p.t.Kind(id) {
	case types.KindIdentifier, types.KindLiteral, types.KindThisExpression,
		types.KindArrayExpression, types.KindObjectExpression, types.KindProperty,
		types.KindSequenceExpression, types.KindMemberExpression, types.KindCallExpression,
		types.KindNewExpression, types.KindUnaryExpression, types.KindUpdateExpression,
		types.KindBinaryExpression, types.KindLogicalExpression,
		types.KindAssignmentExpression, types.KindConditionalExpression,
		types.KindFunctionExpression:
		return p.expr(id, lLowest)
	case types.KindVariableDeclarator:
		return p.declarator(id)
	case types.KindSwitchCase:
		return p.switchCase(id)
	case types.KindCatchClause:
		return p.catchClause(id)
	}
	return p.stmt(id)
}

func (p *printer) unresolved(id types.NodeID) string {
	kind := p.t.Kind(id)
	err := types.NewError(types.ErrUnresolvedNodeKind, fmt.Sprintf("no rendering rule for %s", kind), id)
	p.diags = append(p.diags, err)
	p.logger.Warn("unresolved node kind", "kind", kind.String(), "node", int(id))
	return "/*Error*/"
}

func (p *printer) stmts(list []types.NodeID) string {
	var b strings.Builder
	for _, c := range list {
		if c == types.NoNode {
			continue
		}
		b.WriteString(p.stmt(c))
	}
	return b.String()
}

// stmt renders id as a statement.
func (p *printer) stmt(id types.NodeID) string {
	t := p.t
	n := t.Node(id)
	if n == nil {
		return ";"
	}

	switch n.Kind {
	case types.KindProgram:
		return p.stmts(t.Children(id, types.FieldBody))

	case types.KindBlockStatement:
		return "{" + p.stmts(t.Children(id, types.FieldBody)) + "}"

	case types.KindDirective:
		return n.Raw + ";"

	case types.KindRaw:
		return n.Raw

	case types.KindEmptyStatement:
		return ";"

	case types.KindDebuggerStatement:
		return "debugger;"

	case types.KindExpressionStatement:
		return exprStmt(p.expr(t.Child(id, types.FieldExpression), lLowest))

	case types.KindVariableDeclaration:
		text := p.varDecl(id)
		if text == "" {
			switch t.Kind(n.Parent) {
			case types.KindProgram, types.KindBlockStatement, types.KindSwitchCase:
				return ""
			}
		}
		return text + ";"

	case types.KindFunctionDeclaration:
		return p.function(id)

	case types.KindReturnStatement:
		if arg := t.Child(id, types.FieldArgument); arg != types.NoNode {
			return keyword("return", p.expr(arg, lLowest)) + ";"
		}
		return "return;"

	case types.KindThrowStatement:
		return keyword("throw", p.expr(t.Child(id, types.FieldArgument), lLowest)) + ";"

	case types.KindBreakStatement, types.KindContinueStatement:
		kw := "break"
		if n.Kind == types.KindContinueStatement {
			kw = "continue"
		}
		if n.Label != "" {
			return kw + " " + n.Label + ";"
		}
		return kw + ";"

	case types.KindIfStatement:
		cons := t.Child(id, types.FieldConsequent)
		alt := t.Child(id, types.FieldAlternate)
		consText := p.stmt(cons)
		if alt != types.NoNode && p.endsWithOpenIf(cons) {
			consText = "{" + consText + "}"
		}
		text := "if(" + p.expr(t.Child(id, types.FieldTest), lLowest) + ")" + consText
		if alt != types.NoNode {
			text += keyword("else", p.stmt(alt))
		}
		return text

	case types.KindWhileStatement:
		return "while(" + p.expr(t.Child(id, types.FieldTest), lLowest) + ")" + p.stmt(t.Child(id, types.FieldBody))

	case types.KindDoWhileStatement:
		return keyword("do", p.stmt(t.Child(id, types.FieldBody))) +
			"while(" + p.expr(t.Child(id, types.FieldTest), lLowest) + ");"

	case types.KindForStatement:
		var b strings.Builder
		b.WriteString("for(")
		if init := t.Child(id, types.FieldInit); init != types.NoNode {
			saved := p.noIn
			p.noIn = true
			if t.Is(init, types.KindVariableDeclaration) {
				b.WriteString(p.varDecl(init))
			} else {
				b.WriteString(p.expr(init, lLowest))
			}
			p.noIn = saved
		}
		b.WriteString(";")
		if test := t.Child(id, types.FieldTest); test != types.NoNode {
			b.WriteString(p.expr(test, lLowest))
		}
		b.WriteString(";")
		if update := t.Child(id, types.FieldUpdate); update != types.NoNode {
			b.WriteString(p.expr(update, lLowest))
		}
		b.WriteString(")")
		b.WriteString(p.stmt(t.Child(id, types.FieldBody)))
		return b.String()

	case types.KindForInStatement:
		left := t.Child(id, types.FieldLeft)
		var head string
		if t.Is(left, types.KindVariableDeclaration) {
			saved := p.noIn
			p.noIn = true
			head = p.varDecl(left)
			p.noIn = saved
		} else {
			head = p.expr(left, lPostfix)
		}
		return "for(" + head + " in " + p.expr(t.Child(id, types.FieldRight), lLowest) + ")" +
			p.stmt(t.Child(id, types.FieldBody))

	case types.KindSwitchStatement:
		var b strings.Builder
		b.WriteString("switch(")
		b.WriteString(p.expr(t.Child(id, types.FieldDiscriminant), lLowest))
		b.WriteString("){")
		for _, c := range t.Children(id, types.FieldCases) {
			b.WriteString(p.switchCase(c))
		}
		b.WriteString("}")
		return b.String()

	case types.KindTryStatement:
		text := "try" + p.stmt(t.Child(id, types.FieldBlock))
		if h := t.Child(id, types.FieldHandler); h != types.NoNode {
			text += p.catchClause(h)
		}
		if f := t.Child(id, types.FieldFinalizer); f != types.NoNode {
			text += "finally" + p.stmt(f)
		}
		return text

	case types.KindWithStatement:
		return "with(" + p.expr(t.Child(id, types.FieldObject), lLowest) + ")" + p.stmt(t.Child(id, types.FieldBody))

	case types.KindLabeledStatement:
		return n.Label + ":" + p.stmt(t.Child(id, types.FieldBody))
	}

	if n.Kind.Valid() && n.Kind != types.KindSwitchCase && n.Kind != types.KindCatchClause &&
		n.Kind != types.KindVariableDeclarator {
		// An expression in statement position.
		return exprStmt(p.expr(id, lLowest))
	}
	return p.unresolved(id)
}

func (p *printer) varDecl(id types.NodeID) string {
	decls := p.t.Children(id, types.FieldDeclarations)
	if len(decls) == 0 {
		return ""
	}
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, p.declarator(d))
	}
	return p.t.Node(id).DeclKind + " " + strings.Join(parts, ",")
}

func (p *printer) declarator(id types.NodeID) string {
	name := p.expr(p.t.Child(id, types.FieldID), lLowest)
	if init := p.t.Child(id, types.FieldInit); init != types.NoNode {
		return name + "=" + p.expr(init, lAssign)
	}
	return name
}

func (p *printer) switchCase(id types.NodeID) string {
	var head string
	if test := p.t.Child(id, types.FieldTest); test != types.NoNode {
		head = keyword("case", p.expr(test, lLowest)) + ":"
	} else {
		head = "default:"
	}
	return head + p.stmts(p.t.Children(id, types.FieldConsequent))
}

func (p *printer) catchClause(id types.NodeID) string {
	return "catch(" + p.expr(p.t.Child(id, types.FieldParam), lLowest) + ")" +
		p.stmt(p.t.Child(id, types.FieldBody))
}

func (p *printer) function(id types.NodeID) string {
	t := p.t
	saved := p.noIn
	p.noIn = false
	defer func() { p.noIn = saved }()

	var b strings.Builder
	b.WriteString("function")
	if name := t.Child(id, types.FieldID); name != types.NoNode {
		b.WriteString(" ")
		b.WriteString(p.expr(name, lLowest))
	}
	b.WriteString("(")
	for i, param := range t.Children(id, types.FieldParams) {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(p.expr(param, lLowest))
	}
	b.WriteString(")")
	body := t.Child(id, types.FieldBody)
	if body == types.NoNode {
		b.WriteString("{}")
	} else {
		b.WriteString(p.stmt(body))
	}
	return b.String()
}

// endsWithOpenIf reports whether the statement ends with an if that has no
// else branch, so that a following else would bind to it.
func (p *printer) endsWithOpenIf(id types.NodeID) bool {
	t := p.t
	switch t.Kind(id) {
	case types.KindIfStatement:
		alt := t.Child(id, types.FieldAlternate)
		if alt == types.NoNode {
			return true
		}
		return p.endsWithOpenIf(alt)
	case types.KindWhileStatement, types.KindForStatement, types.KindForInStatement,
		types.KindWithStatement, types.KindLabeledStatement:
		return p.endsWithOpenIf(t.Child(id, types.FieldBody))
	}
	return false
}

// exprStmt terminates an expression statement, parenthesizing text that
// would otherwise start a block or a function declaration.
func exprStmt(text string) string {
	if text == "" {
		return ";"
	}
	if text[0] == '{' || startsWithWord(text, "function") {
		text = "(" + text + ")"
	}
	return text + ";"
}

// keyword joins a keyword and the text that follows it, inserting a space
// only when the two would otherwise merge into one token.
func keyword(kw, text string) string {
	if text == "" {
		return kw
	}
	if isIdentPart(text[0]) || text[0] == '"' || text[0] == '\'' {
		return kw + " " + text
	}
	return kw + text
}

func startsWithWord(text, word string) bool {
	if !strings.HasPrefix(text, word) {
		return false
	}
	return len(text) == len(word) || !isIdentPart(text[len(word)])
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '$' || c == '\\' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
