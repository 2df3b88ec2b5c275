package parser

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/js"

	"github.com/sandrolain/esopt/pkg/types"
)

// Parser converts the AST built by js.Parse into a types.Tree.
type Parser struct {
	src   string
	tree  *types.Tree
	opts  Options
	depth int
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...Option) *Parser {
	options := Options{
		MaxDepth: 500,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Parser{
		src:  input,
		tree: types.NewTree(),
		opts: options,
	}
}

// Parse parses the whole program and returns its tree.
func (p *Parser) Parse() (*types.Tree, error) {
	ast, err := js.Parse(parse.NewInputString(p.src), js.Options{})
	if err != nil {
		return nil, p.syntaxError(err)
	}
	body, err := p.statements(ast.List, true)
	if err != nil {
		return nil, err
	}
	p.tree.Program(body...)
	return p.tree, nil
}

// syntaxError converts an error returned by js.Parse. Errors located at the
// end of the input are caused by io.ErrUnexpectedEOF.
func (p *Parser) syntaxError(err error) error {
	var perr *parse.Error
	if !errors.As(err, &perr) {
		return types.NewError(types.ErrParse, "syntax error", types.NoNode).WithCause(err)
	}
	msg := fmt.Sprintf("%s at line %d, column %d", perr.Message, perr.Line, perr.Column)
	line, col, _ := parse.Position(strings.NewReader(p.src), len(p.src))
	if perr.Line == line && perr.Column == col {
		return types.NewError(types.ErrParse, msg, types.NoNode).WithCause(io.ErrUnexpectedEOF)
	}
	return types.NewError(types.ErrParse, msg, types.NoNode)
}

func (p *Parser) error(message string) error {
	return types.NewError(types.ErrParse, message, types.NoNode)
}

// errorNear reports message together with the source text of n.
func (p *Parser) errorNear(message string, n js.INode) error {
	return p.error(fmt.Sprintf("%s near %q", message, snippet(n)))
}

func (p *Parser) unsupported(what string, n js.INode) error {
	return p.errorNear(what+" is not supported", n)
}

func snippet(n js.INode) string {
	if n == nil {
		return ""
	}
	s := n.String()
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}

func (p *Parser) enter() error {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return p.error(fmt.Sprintf("nesting deeper than %d", p.opts.MaxDepth))
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// reference returns the name of an identifier used in an expression.
func (p *Parser) reference(v *js.Var) (string, error) {
	name := string(v.Name())
	if strictReserved[name] {
		return "", p.error(fmt.Sprintf("unexpected strict mode reserved word %q", name))
	}
	return name, nil
}

// binding returns the name declared by b. Only plain identifiers bind.
func (p *Parser) binding(b js.IBinding, what string) (string, error) {
	v, ok := b.(*js.Var)
	if !ok {
		return "", p.unsupported("destructuring "+what, b)
	}
	name, err := p.reference(v)
	if err != nil {
		return "", err
	}
	if restrictedBindings[name] {
		return "", p.error(fmt.Sprintf("%s may not be declared in strict mode", name))
	}
	return name, nil
}

// isTarget reports whether id may be assigned to.
func (p *Parser) isTarget(id types.NodeID) bool {
	n := p.tree.Node(id)
	switch n.Kind {
	case types.KindIdentifier:
		return !restrictedBindings[n.Name]
	case types.KindMemberExpression:
		return true
	}
	return false
}

func (p *Parser) expr(e js.IExpr) (types.NodeID, error) {
	switch e.(type) {
	case *js.BinaryExpr, *js.CommaExpr:
		// Operator chains are bounded by js.Parse.
	default:
		if err := p.enter(); err != nil {
			return types.NoNode, err
		}
		defer p.leave()
	}

	t := p.tree
	switch e := e.(type) {
	case nil:
		return types.NoNode, p.error("missing expression")
	case *js.Var:
		name, err := p.reference(e)
		if err != nil {
			return types.NoNode, err
		}
		return t.Ident(name), nil
	case *js.LiteralExpr:
		return p.literal(e)
	case *js.GroupExpr:
		return p.expr(e.X)
	case *js.CommaExpr:
		list, err := p.exprs(e.List)
		if err != nil {
			return types.NoNode, err
		}
		return t.Seq(list...), nil
	case *js.CondExpr:
		list, err := p.exprs([]js.IExpr{e.Cond, e.X, e.Y})
		if err != nil {
			return types.NoNode, err
		}
		return t.Cond(list[0], list[1], list[2]), nil
	case *js.BinaryExpr:
		return p.binary(e)
	case *js.UnaryExpr:
		return p.unaryExpr(e)
	case *js.DotExpr:
		if e.Optional {
			return types.NoNode, p.unsupported("optional chaining", e)
		}
		if e.Y.TokenType == js.PrivateIdentifierToken {
			return types.NoNode, p.unsupported("private name", e)
		}
		obj, err := p.expr(e.X)
		if err != nil {
			return types.NoNode, err
		}
		return t.Member(obj, t.Ident(string(e.Y.Data)), false), nil
	case *js.IndexExpr:
		if e.Optional {
			return types.NoNode, p.unsupported("optional chaining", e)
		}
		list, err := p.exprs([]js.IExpr{e.X, e.Y})
		if err != nil {
			return types.NoNode, err
		}
		return t.Member(list[0], list[1], true), nil
	case *js.CallExpr:
		if e.Optional {
			return types.NoNode, p.unsupported("optional chaining", e)
		}
		callee, err := p.expr(e.X)
		if err != nil {
			return types.NoNode, err
		}
		args, err := p.arguments(e.Args.List)
		if err != nil {
			return types.NoNode, err
		}
		return t.Call(callee, args...), nil
	case *js.NewExpr:
		callee, err := p.expr(e.X)
		if err != nil {
			return types.NoNode, err
		}
		var args []types.NodeID
		if e.Args != nil {
			if args, err = p.arguments(e.Args.List); err != nil {
				return types.NoNode, err
			}
		}
		return t.NewExpr(callee, args...), nil
	case *js.ArrayExpr:
		return p.array(e)
	case *js.ObjectExpr:
		return p.object(e)
	case *js.FuncDecl:
		return p.function(e, false)
	case *js.ArrowFunc:
		return types.NoNode, p.unsupported("arrow function", e)
	case *js.ClassDecl:
		return types.NoNode, p.unsupported("class", e)
	case *js.TemplateExpr:
		return types.NoNode, p.unsupported("template literal", e)
	case *js.YieldExpr:
		return types.NoNode, p.unsupported("yield", e)
	case *js.NewTargetExpr:
		return types.NoNode, p.unsupported("new.target", e)
	case *js.ImportMetaExpr:
		return types.NoNode, p.unsupported("import.meta", e)
	}
	return types.NoNode, p.unsupported("expression", e)
}

func (p *Parser) exprs(list []js.IExpr) ([]types.NodeID, error) {
	ids := make([]types.NodeID, 0, len(list))
	for _, e := range list {
		id, err := p.expr(e)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (p *Parser) literal(e *js.LiteralExpr) (types.NodeID, error) {
	t := p.tree
	raw := string(e.Data)
	switch e.TokenType {
	case js.StringToken:
		return p.str(raw)
	case js.RegExpToken:
		return t.Regex(raw), nil
	case js.ThisToken:
		return t.This(), nil
	case js.NullToken:
		return t.Null(), nil
	case js.TrueToken, js.FalseToken:
		return t.Bool(e.TokenType == js.TrueToken), nil
	case js.ImportToken:
		return types.NoNode, p.unsupported("dynamic import", e)
	case js.SuperToken:
		return types.NoNode, p.unsupported("super", e)
	case js.PrivateIdentifierToken:
		return types.NoNode, p.unsupported("private name", e)
	}
	if js.IsNumeric(e.TokenType) {
		return p.number(raw)
	}
	return types.NoNode, p.unsupported("literal", e)
}

// number converts a numeric literal. BigInts stay opaque and numbers that
// overflow keep their spelling.
func (p *Parser) number(raw string) (types.NodeID, error) {
	if strings.HasSuffix(raw, "n") {
		return p.tree.LiteralRaw(types.Value{Kind: types.ValueOpaque, Str: raw}, raw), nil
	}
	f, err := parseNumber(raw)
	if err != nil {
		return types.NoNode, p.error(err.Error())
	}
	if math.IsInf(f, 0) {
		return p.tree.LiteralRaw(types.NumberValue(f), raw), nil
	}
	return p.tree.Num(f), nil
}

// str converts a quoted string literal. Strings holding a lone surrogate
// cannot be represented in Go and stay opaque.
func (p *Parser) str(raw string) (types.NodeID, error) {
	s, ok, err := unquote(raw)
	if err != nil {
		return types.NoNode, p.error(fmt.Sprintf("%s in %s", err, raw))
	}
	if !ok {
		return p.tree.LiteralRaw(types.Value{Kind: types.ValueOpaque, Str: raw}, raw), nil
	}
	return p.tree.Str(s), nil
}

func (p *Parser) binary(e *js.BinaryExpr) (types.NodeID, error) {
	left, err := p.expr(e.X)
	if err != nil {
		return types.NoNode, err
	}
	right, err := p.expr(e.Y)
	if err != nil {
		return types.NoNode, err
	}

	t := p.tree
	switch {
	case assignOperators[e.Op]:
		if !p.isTarget(left) {
			return types.NoNode, p.errorNear("invalid assignment target", e.X)
		}
		return t.Assign(e.Op.String(), left, right), nil
	case logicalOperators[e.Op]:
		return t.Logical(e.Op.String(), left, right), nil
	}
	return t.Binary(e.Op.String(), left, right), nil
}

func (p *Parser) unaryExpr(e *js.UnaryExpr) (types.NodeID, error) {
	if u, ok := updateOperators[e.Op]; ok {
		arg, err := p.expr(e.X)
		if err != nil {
			return types.NoNode, err
		}
		if !p.isTarget(arg) {
			return types.NoNode, p.errorNear("invalid update target", e.X)
		}
		return p.tree.Update(u.op, u.prefix, arg), nil
	}

	op, ok := unaryOperators[e.Op]
	if !ok {
		return types.NoNode, p.unsupported(e.Op.String(), e)
	}
	arg, err := p.expr(e.X)
	if err != nil {
		return types.NoNode, err
	}
	if e.Op == js.DeleteToken && p.tree.Is(arg, types.KindIdentifier) {
		return types.NoNode, p.errorNear("delete of an unqualified identifier", e)
	}
	return p.unary(op, arg), nil
}

// unary builds a unary expression, folding negated numbers and void applied
// to a literal into single literals.
func (p *Parser) unary(op string, arg types.NodeID) types.NodeID {
	t := p.tree
	if n := t.Node(arg); n.Kind == types.KindLiteral {
		switch {
		case op == "-" && n.Value.Kind == types.ValueNumber && !math.IsInf(n.Value.Num, 0):
			return t.Num(-n.Value.Num)
		case op == "void" && n.Value.IsPrimitive():
			return t.Undefined()
		}
	}
	return t.Unary(op, arg)
}

func (p *Parser) arguments(list []js.Arg) ([]types.NodeID, error) {
	args := make([]types.NodeID, 0, len(list))
	for _, a := range list {
		if a.Rest {
			return nil, p.unsupported("spread argument", a.Value)
		}
		id, err := p.expr(a.Value)
		if err != nil {
			return nil, err
		}
		args = append(args, id)
	}
	return args, nil
}

func (p *Parser) array(e *js.ArrayExpr) (types.NodeID, error) {
	elems := make([]types.NodeID, 0, len(e.List))
	for _, el := range e.List {
		if el.Spread {
			return types.NoNode, p.unsupported("spread element", el.Value)
		}
		if el.Value == nil {
			elems = append(elems, types.NoNode)
			continue
		}
		id, err := p.expr(el.Value)
		if err != nil {
			return types.NoNode, err
		}
		elems = append(elems, id)
	}
	return p.tree.Array(elems...), nil
}

// object converts an object literal. Shorthand properties arrive from
// js.Parse as key: value pairs.
func (p *Parser) object(e *js.ObjectExpr) (types.NodeID, error) {
	props := make([]types.NodeID, 0, len(e.List))
	for _, prop := range e.List {
		if m, ok := prop.Value.(*js.MethodDecl); ok {
			what := "method definition"
			if m.Get || m.Set {
				what = "accessor property"
			}
			return types.NoNode, p.unsupported(what, m)
		}
		switch {
		case prop.Spread:
			return types.NoNode, p.unsupported("spread property", prop.Value)
		case prop.Init != nil:
			return types.NoNode, p.errorNear("invalid shorthand property initializer", prop.Init)
		case prop.Name == nil:
			return types.NoNode, p.unsupported("property", prop.Value)
		}

		key, computed, err := p.propertyKey(prop.Name)
		if err != nil {
			return types.NoNode, err
		}
		value, err := p.expr(prop.Value)
		if err != nil {
			return types.NoNode, err
		}
		props = append(props, p.tree.Property(key, value, computed))
	}
	return p.tree.Object(props...), nil
}

func (p *Parser) propertyKey(name *js.PropertyName) (types.NodeID, bool, error) {
	if name.IsComputed() {
		key, err := p.expr(name.Computed)
		return key, true, err
	}
	lit := name.Literal
	switch {
	case lit.TokenType == js.StringToken:
		key, err := p.str(string(lit.Data))
		return key, false, err
	case js.IsNumeric(lit.TokenType):
		key, err := p.number(string(lit.Data))
		return key, false, err
	case lit.TokenType == js.PrivateIdentifierToken:
		return types.NoNode, false, p.unsupported("private name", lit)
	}
	return p.tree.Ident(string(lit.Data)), false, nil
}

func (p *Parser) function(f *js.FuncDecl, declaration bool) (types.NodeID, error) {
	switch {
	case f.Async:
		return types.NoNode, p.unsupported("async function", f)
	case f.Generator:
		return types.NoNode, p.unsupported("generator function", f)
	case f.Params.Rest != nil:
		return types.NoNode, p.unsupported("rest parameter", f.Params.Rest)
	}

	name := ""
	if f.Name != nil {
		var err error
		if name, err = p.binding(f.Name, "function name"); err != nil {
			return types.NoNode, err
		}
	}
	params := make([]string, 0, len(f.Params.List))
	for _, param := range f.Params.List {
		if param.Default != nil {
			return types.NoNode, p.unsupported("default parameter", param.Default)
		}
		pname, err := p.binding(param.Binding, "parameter")
		if err != nil {
			return types.NoNode, err
		}
		params = append(params, pname)
	}

	body, err := p.statements(f.Body.List, true)
	if err != nil {
		return types.NoNode, err
	}
	block := p.tree.Block(body...)
	if declaration {
		return p.tree.FuncDecl(name, params, block), nil
	}
	return p.tree.FuncExpr(name, params, block), nil
}
