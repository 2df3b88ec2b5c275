package types

// Builders allocate detached subtrees. Metadata is assigned when the subtree
// is attached with SetRoot, Replace or Retrace.

func (t *Tree) withList(kind Kind, f Field, list []NodeID) NodeID {
	id := t.New(kind)
	t.SetChildren(id, f, append([]NodeID(nil), list...))
	return id
}

// Program builds a program node and makes it the root.
func (t *Tree) Program(body ...NodeID) NodeID {
	id := t.withList(KindProgram, FieldBody, body)
	t.SetRoot(id)
	return id
}

// Ident builds an identifier.
func (t *Tree) Ident(name string) NodeID {
	id := t.New(KindIdentifier)
	t.Node(id).Name = name
	return id
}

// Literal builds a literal carrying v. The raw text is the canonical
// serialization of v.
func (t *Tree) Literal(v Value) NodeID {
	id := t.New(KindLiteral)
	n := t.Node(id)
	n.Value = v
	n.Raw, _ = v.Serialize()
	return id
}

// LiteralRaw builds a literal with explicit source text.
func (t *Tree) LiteralRaw(v Value, raw string) NodeID {
	id := t.New(KindLiteral)
	n := t.Node(id)
	n.Value = v
	n.Raw = raw
	return id
}

// Num builds a number literal.
func (t *Tree) Num(f float64) NodeID { return t.Literal(NumberValue(f)) }

// Str builds a string literal.
func (t *Tree) Str(s string) NodeID { return t.Literal(StringValue(s)) }

// Bool builds a boolean literal.
func (t *Tree) Bool(b bool) NodeID { return t.Literal(BoolValue(b)) }

// Null builds the null literal.
func (t *Tree) Null() NodeID { return t.Literal(NullValue) }

// Undefined builds the undefined literal, rendered as "void 0".
func (t *Tree) Undefined() NodeID { return t.Literal(UndefinedValue) }

// Regex builds a regular expression literal from its source text.
func (t *Tree) Regex(raw string) NodeID {
	return t.LiteralRaw(Value{Kind: ValueRegExp, Str: raw}, raw)
}

// This builds a this expression.
func (t *Tree) This() NodeID { return t.New(KindThisExpression) }

// RawText builds an opaque pass-through node.
func (t *Tree) RawText(text string) NodeID {
	id := t.New(KindRaw)
	t.Node(id).Raw = text
	return id
}

func (t *Tree) operator(kind Kind, op string, fields ...NodeID) NodeID {
	id := t.New(kind)
	t.Node(id).Operator = op
	for i, spec := range Schema(kind) {
		t.SetChild(id, spec.Field, fields[i])
	}
	return id
}

// Binary builds a binary expression.
func (t *Tree) Binary(op string, left, right NodeID) NodeID {
	return t.operator(KindBinaryExpression, op, left, right)
}

// Logical builds a logical expression (&&, ||, ??).
func (t *Tree) Logical(op string, left, right NodeID) NodeID {
	return t.operator(KindLogicalExpression, op, left, right)
}

// Assign builds an assignment expression.
func (t *Tree) Assign(op string, left, right NodeID) NodeID {
	return t.operator(KindAssignmentExpression, op, left, right)
}

// Unary builds a prefix unary expression.
func (t *Tree) Unary(op string, arg NodeID) NodeID {
	return t.operator(KindUnaryExpression, op, arg)
}

// Update builds an increment or decrement.
func (t *Tree) Update(op string, prefix bool, arg NodeID) NodeID {
	id := t.operator(KindUpdateExpression, op, arg)
	t.Node(id).Prefix = prefix
	return id
}

// Cond builds a conditional expression.
func (t *Tree) Cond(test, cons, alt NodeID) NodeID {
	id := t.New(KindConditionalExpression)
	t.SetChild(id, FieldTest, test)
	t.SetChild(id, FieldConsequent, cons)
	t.SetChild(id, FieldAlternate, alt)
	return id
}

// Seq builds a sequence expression.
func (t *Tree) Seq(exprs ...NodeID) NodeID {
	return t.withList(KindSequenceExpression, FieldExpressions, exprs)
}

// Member builds a member expression; computed selects a[b] over a.b.
func (t *Tree) Member(object, property NodeID, computed bool) NodeID {
	id := t.New(KindMemberExpression)
	t.SetChild(id, FieldObject, object)
	t.SetChild(id, FieldProperty, property)
	t.Node(id).Computed = computed
	return id
}

// Call builds a call expression.
func (t *Tree) Call(callee NodeID, args ...NodeID) NodeID {
	id := t.withList(KindCallExpression, FieldArguments, args)
	t.SetChild(id, FieldCallee, callee)
	return id
}

// NewExpr builds a new expression.
func (t *Tree) NewExpr(callee NodeID, args ...NodeID) NodeID {
	id := t.withList(KindNewExpression, FieldArguments, args)
	t.SetChild(id, FieldCallee, callee)
	return id
}

// Array builds an array literal; NoNode elements are holes.
func (t *Tree) Array(elems ...NodeID) NodeID {
	return t.withList(KindArrayExpression, FieldElements, elems)
}

// Object builds an object literal from Property nodes.
func (t *Tree) Object(props ...NodeID) NodeID {
	return t.withList(KindObjectExpression, FieldProperties, props)
}

// Property builds an object literal property.
func (t *Tree) Property(key, value NodeID, computed bool) NodeID {
	id := t.New(KindProperty)
	t.SetChild(id, FieldKey, key)
	t.SetChild(id, FieldValue, value)
	t.Node(id).Computed = computed
	return id
}

func (t *Tree) function(kind Kind, name string, params []string, body NodeID) NodeID {
	id := t.New(kind)
	if name != "" {
		t.SetChild(id, FieldID, t.Ident(name))
	}
	ps := make([]NodeID, len(params))
	for i, p := range params {
		ps[i] = t.Ident(p)
	}
	t.SetChildren(id, FieldParams, ps)
	t.SetChild(id, FieldBody, body)
	return id
}

// FuncDecl builds a function declaration with the given block body.
func (t *Tree) FuncDecl(name string, params []string, body NodeID) NodeID {
	return t.function(KindFunctionDeclaration, name, params, body)
}

// FuncExpr builds a function expression; name may be empty.
func (t *Tree) FuncExpr(name string, params []string, body NodeID) NodeID {
	return t.function(KindFunctionExpression, name, params, body)
}

// Block builds a block statement.
func (t *Tree) Block(stmts ...NodeID) NodeID {
	return t.withList(KindBlockStatement, FieldBody, stmts)
}

// ExprStmt builds an expression statement.
func (t *Tree) ExprStmt(expr NodeID) NodeID {
	id := t.New(KindExpressionStatement)
	t.SetChild(id, FieldExpression, expr)
	return id
}

// Directive builds a directive prologue entry from its quoted text.
func (t *Tree) Directive(raw string) NodeID {
	id := t.New(KindDirective)
	t.Node(id).Raw = raw
	return id
}

// Empty builds an empty statement.
func (t *Tree) Empty() NodeID { return t.New(KindEmptyStatement) }

// Debugger builds a debugger statement.
func (t *Tree) Debugger() NodeID { return t.New(KindDebuggerStatement) }

// VarDecl builds a variable declaration from declarators.
func (t *Tree) VarDecl(kind string, decls ...NodeID) NodeID {
	id := t.withList(KindVariableDeclaration, FieldDeclarations, decls)
	t.Node(id).DeclKind = kind
	return id
}

// Declarator builds a variable declarator; init may be NoNode.
func (t *Tree) Declarator(name string, init NodeID) NodeID {
	id := t.New(KindVariableDeclarator)
	t.SetChild(id, FieldID, t.Ident(name))
	t.SetChild(id, FieldInit, init)
	return id
}

// Var is shorthand for a single-declarator var declaration.
func (t *Tree) Var(name string, init NodeID) NodeID {
	return t.VarDecl("var", t.Declarator(name, init))
}

// Return builds a return statement; arg may be NoNode.
func (t *Tree) Return(arg NodeID) NodeID {
	id := t.New(KindReturnStatement)
	t.SetChild(id, FieldArgument, arg)
	return id
}

// Throw builds a throw statement.
func (t *Tree) Throw(arg NodeID) NodeID {
	id := t.New(KindThrowStatement)
	t.SetChild(id, FieldArgument, arg)
	return id
}

// Break builds a break statement with an optional label.
func (t *Tree) Break(label string) NodeID {
	id := t.New(KindBreakStatement)
	t.Node(id).Label = label
	return id
}

// Continue builds a continue statement with an optional label.
func (t *Tree) Continue(label string) NodeID {
	id := t.New(KindContinueStatement)
	t.Node(id).Label = label
	return id
}

// If builds an if statement; alt may be NoNode.
func (t *Tree) If(test, cons, alt NodeID) NodeID {
	id := t.New(KindIfStatement)
	t.SetChild(id, FieldTest, test)
	t.SetChild(id, FieldConsequent, cons)
	t.SetChild(id, FieldAlternate, alt)
	return id
}

// While builds a while loop.
func (t *Tree) While(test, body NodeID) NodeID {
	id := t.New(KindWhileStatement)
	t.SetChild(id, FieldTest, test)
	t.SetChild(id, FieldBody, body)
	return id
}

// DoWhile builds a do-while loop.
func (t *Tree) DoWhile(body, test NodeID) NodeID {
	id := t.New(KindDoWhileStatement)
	t.SetChild(id, FieldBody, body)
	t.SetChild(id, FieldTest, test)
	return id
}

// For builds a for loop; init, test and update may be NoNode.
func (t *Tree) For(init, test, update, body NodeID) NodeID {
	id := t.New(KindForStatement)
	t.SetChild(id, FieldInit, init)
	t.SetChild(id, FieldTest, test)
	t.SetChild(id, FieldUpdate, update)
	t.SetChild(id, FieldBody, body)
	return id
}

// ForIn builds a for-in loop.
func (t *Tree) ForIn(left, right, body NodeID) NodeID {
	id := t.New(KindForInStatement)
	t.SetChild(id, FieldLeft, left)
	t.SetChild(id, FieldRight, right)
	t.SetChild(id, FieldBody, body)
	return id
}

// Switch builds a switch statement from SwitchCase nodes.
func (t *Tree) Switch(disc NodeID, cases ...NodeID) NodeID {
	id := t.withList(KindSwitchStatement, FieldCases, cases)
	t.SetChild(id, FieldDiscriminant, disc)
	return id
}

// Case builds a switch case; a NoNode test is the default clause.
func (t *Tree) Case(test NodeID, cons ...NodeID) NodeID {
	id := t.withList(KindSwitchCase, FieldConsequent, cons)
	t.SetChild(id, FieldTest, test)
	return id
}

// Try builds a try statement; handler and finalizer may be NoNode.
func (t *Tree) Try(block, handler, finalizer NodeID) NodeID {
	id := t.New(KindTryStatement)
	t.SetChild(id, FieldBlock, block)
	t.SetChild(id, FieldHandler, handler)
	t.SetChild(id, FieldFinalizer, finalizer)
	return id
}

// Catch builds a catch clause.
func (t *Tree) Catch(param string, body NodeID) NodeID {
	id := t.New(KindCatchClause)
	t.SetChild(id, FieldParam, t.Ident(param))
	t.SetChild(id, FieldBody, body)
	return id
}

// With builds a with statement.
func (t *Tree) With(object, body NodeID) NodeID {
	id := t.New(KindWithStatement)
	t.SetChild(id, FieldObject, object)
	t.SetChild(id, FieldBody, body)
	return id
}

// Labeled builds a labeled statement.
func (t *Tree) Labeled(label string, body NodeID) NodeID {
	id := t.New(KindLabeledStatement)
	t.Node(id).Label = label
	t.SetChild(id, FieldBody, body)
	return id
}

// UseStrict builds the "use strict" directive.
func (t *Tree) UseStrict() NodeID {
	return t.Directive(`"use strict"`)
}
