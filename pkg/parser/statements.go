package parser

import (
	"fmt"

	"github.com/tdewolff/parse/v2/js"

	"github.com/sandrolain/esopt/pkg/types"
)

// statements converts a statement list. With prologue set, the leading
// string literal statements become directives.
func (p *Parser) statements(list []js.IStmt, prologue bool) ([]types.NodeID, error) {
	body := make([]types.NodeID, 0, len(list))
	for _, s := range list {
		if _, ok := s.(*js.Comment); ok {
			continue
		}
		if prologue {
			if raw, ok := directive(s); ok {
				if _, _, err := unquote(raw); err != nil {
					return nil, p.error(fmt.Sprintf("%s in directive %s", err, raw))
				}
				body = append(body, p.tree.Directive(raw))
				continue
			}
			prologue = false
		}
		id, err := p.stmt(s)
		if err != nil {
			return nil, err
		}
		body = append(body, id)
	}
	return body, nil
}

// directive returns the quoted text of a string literal statement.
func directive(s js.IStmt) (string, bool) {
	switch s := s.(type) {
	case *js.DirectivePrologueStmt:
		return string(s.Value), true
	case *js.ExprStmt:
		if lit, ok := s.Value.(*js.LiteralExpr); ok && lit.TokenType == js.StringToken {
			return string(lit.Data), true
		}
	}
	return "", false
}

func (p *Parser) stmt(s js.IStmt) (types.NodeID, error) {
	if err := p.enter(); err != nil {
		return types.NoNode, err
	}
	defer p.leave()

	t := p.tree
	switch s := s.(type) {
	case *js.ExprStmt:
		expr, err := p.expr(s.Value)
		if err != nil {
			return types.NoNode, err
		}
		return t.ExprStmt(expr), nil
	case *js.DirectivePrologueStmt:
		str, err := p.str(string(s.Value))
		if err != nil {
			return types.NoNode, err
		}
		return t.ExprStmt(str), nil
	case *js.VarDecl:
		return p.varDecl(s)
	case *js.FuncDecl:
		return p.function(s, true)
	case *js.BlockStmt:
		return p.block(s)
	case *js.EmptyStmt:
		return t.Empty(), nil
	case *js.DebuggerStmt:
		return t.Debugger(), nil
	case *js.IfStmt:
		return p.ifStmt(s)
	case *js.WhileStmt:
		test, err := p.expr(s.Cond)
		if err != nil {
			return types.NoNode, err
		}
		body, err := p.stmt(s.Body)
		if err != nil {
			return types.NoNode, err
		}
		return t.While(test, body), nil
	case *js.DoWhileStmt:
		body, err := p.stmt(s.Body)
		if err != nil {
			return types.NoNode, err
		}
		test, err := p.expr(s.Cond)
		if err != nil {
			return types.NoNode, err
		}
		return t.DoWhile(body, test), nil
	case *js.ForStmt:
		return p.forStmt(s)
	case *js.ForInStmt:
		return p.forInStmt(s)
	case *js.ForOfStmt:
		return types.NoNode, p.unsupported("for-of", s)
	case *js.ReturnStmt:
		arg := types.NoNode
		if s.Value != nil {
			var err error
			if arg, err = p.expr(s.Value); err != nil {
				return types.NoNode, err
			}
		}
		return t.Return(arg), nil
	case *js.ThrowStmt:
		arg, err := p.expr(s.Value)
		if err != nil {
			return types.NoNode, err
		}
		return t.Throw(arg), nil
	case *js.BranchStmt:
		if s.Type == js.BreakToken {
			return t.Break(string(s.Label)), nil
		}
		return t.Continue(string(s.Label)), nil
	case *js.LabelledStmt:
		if _, ok := s.Value.(*js.FuncDecl); ok {
			return types.NoNode, p.errorNear("labeled function declaration", s)
		}
		body, err := p.stmt(s.Value)
		if err != nil {
			return types.NoNode, err
		}
		return t.Labeled(string(s.Label), body), nil
	case *js.TryStmt:
		return p.tryStmt(s)
	case *js.SwitchStmt:
		return p.switchStmt(s)
	case *js.WithStmt:
		object, err := p.expr(s.Cond)
		if err != nil {
			return types.NoNode, err
		}
		body, err := p.stmt(s.Body)
		if err != nil {
			return types.NoNode, err
		}
		return t.With(object, body), nil
	case *js.ClassDecl:
		return types.NoNode, p.unsupported("class", s)
	case *js.ImportStmt:
		return types.NoNode, p.unsupported("import declaration", s)
	case *js.ExportStmt:
		return types.NoNode, p.unsupported("export declaration", s)
	case nil:
		return types.NoNode, p.error("missing statement")
	}
	return types.NoNode, p.unsupported("statement", s)
}

func (p *Parser) block(b *js.BlockStmt) (types.NodeID, error) {
	body, err := p.statements(b.List, false)
	if err != nil {
		return types.NoNode, err
	}
	return p.tree.Block(body...), nil
}

func (p *Parser) varDecl(d *js.VarDecl) (types.NodeID, error) {
	decls := make([]types.NodeID, 0, len(d.List))
	for _, el := range d.List {
		name, err := p.binding(el.Binding, "declaration")
		if err != nil {
			return types.NoNode, err
		}
		init := types.NoNode
		if el.Default != nil {
			if init, err = p.expr(el.Default); err != nil {
				return types.NoNode, err
			}
		}
		decls = append(decls, p.tree.Declarator(name, init))
	}
	return p.tree.VarDecl(d.TokenType.String(), decls...), nil
}

func (p *Parser) ifStmt(s *js.IfStmt) (types.NodeID, error) {
	test, err := p.expr(s.Cond)
	if err != nil {
		return types.NoNode, err
	}
	cons, err := p.stmt(s.Body)
	if err != nil {
		return types.NoNode, err
	}
	alt := types.NoNode
	if s.Else != nil {
		if alt, err = p.stmt(s.Else); err != nil {
			return types.NoNode, err
		}
	}
	return p.tree.If(test, cons, alt), nil
}

// forStmt converts a for statement. js.Parse always gives the loop a block
// body and stands an empty declaration in for a missing initializer.
func (p *Parser) forStmt(s *js.ForStmt) (types.NodeID, error) {
	var err error
	init := types.NoNode
	if d, ok := s.Init.(*js.VarDecl); ok {
		if len(d.List) > 0 {
			init, err = p.varDecl(d)
		}
	} else if s.Init != nil {
		init, err = p.expr(s.Init)
	}
	if err != nil {
		return types.NoNode, err
	}

	test, update := types.NoNode, types.NoNode
	if s.Cond != nil {
		if test, err = p.expr(s.Cond); err != nil {
			return types.NoNode, err
		}
	}
	if s.Post != nil {
		if update, err = p.expr(s.Post); err != nil {
			return types.NoNode, err
		}
	}
	body, err := p.block(s.Body)
	if err != nil {
		return types.NoNode, err
	}
	return p.tree.For(init, test, update, body), nil
}

func (p *Parser) forInStmt(s *js.ForInStmt) (types.NodeID, error) {
	var left types.NodeID
	var err error
	if d, ok := s.Init.(*js.VarDecl); ok {
		left, err = p.varDecl(d)
	} else {
		left, err = p.expr(s.Init)
		if err == nil && !p.isTarget(left) {
			err = p.errorNear("invalid for-in target", s.Init)
		}
	}
	if err != nil {
		return types.NoNode, err
	}

	right, err := p.expr(s.Value)
	if err != nil {
		return types.NoNode, err
	}
	body, err := p.block(s.Body)
	if err != nil {
		return types.NoNode, err
	}
	return p.tree.ForIn(left, right, body), nil
}

func (p *Parser) tryStmt(s *js.TryStmt) (types.NodeID, error) {
	t := p.tree
	block, err := p.block(s.Body)
	if err != nil {
		return types.NoNode, err
	}

	handler := types.NoNode
	if s.Catch != nil {
		if s.Binding == nil {
			return types.NoNode, p.unsupported("catch without binding", s)
		}
		param, err := p.binding(s.Binding, "catch parameter")
		if err != nil {
			return types.NoNode, err
		}
		body, err := p.block(s.Catch)
		if err != nil {
			return types.NoNode, err
		}
		handler = t.Catch(param, body)
	}

	finalizer := types.NoNode
	if s.Finally != nil {
		if finalizer, err = p.block(s.Finally); err != nil {
			return types.NoNode, err
		}
	}
	return t.Try(block, handler, finalizer), nil
}

func (p *Parser) switchStmt(s *js.SwitchStmt) (types.NodeID, error) {
	disc, err := p.expr(s.Init)
	if err != nil {
		return types.NoNode, err
	}

	cases := make([]types.NodeID, 0, len(s.List))
	hasDefault := false
	for _, c := range s.List {
		test := types.NoNode
		if c.TokenType == js.DefaultToken {
			if hasDefault {
				return types.NoNode, p.error("more than one default clause in switch")
			}
			hasDefault = true
		} else if test, err = p.expr(c.Cond); err != nil {
			return types.NoNode, err
		}
		cons, err := p.statements(c.List, false)
		if err != nil {
			return types.NoNode, err
		}
		cases = append(cases, p.tree.Case(test, cons...))
	}
	return p.tree.Switch(disc, cases...), nil
}
