package types

import "strconv"

// Kind identifies the type of a tree node.
type Kind uint8

// Node kinds, following the ESTree vocabulary.
const (
	KindProgram Kind = iota

	// Declarations
	KindFunctionDeclaration
	KindFunctionExpression
	KindVariableDeclaration
	KindVariableDeclarator

	// Statements
	KindBlockStatement
	KindExpressionStatement
	KindDirective
	KindEmptyStatement
	KindDebuggerStatement
	KindReturnStatement
	KindThrowStatement
	KindBreakStatement
	KindContinueStatement
	KindIfStatement
	KindWhileStatement
	KindDoWhileStatement
	KindForStatement
	KindForInStatement
	KindSwitchStatement
	KindSwitchCase
	KindTryStatement
	KindCatchClause
	KindWithStatement
	KindLabeledStatement

	// Expressions
	KindIdentifier
	KindLiteral
	KindThisExpression
	KindArrayExpression
	KindObjectExpression
	KindProperty
	KindSequenceExpression
	KindMemberExpression
	KindCallExpression
	KindNewExpression
	KindUnaryExpression
	KindUpdateExpression
	KindBinaryExpression
	KindLogicalExpression
	KindAssignmentExpression
	KindConditionalExpression

	// KindRaw is an opaque pass-through text node.
	KindRaw

	kindCount
)

var kindNames = [kindCount]string{
	KindProgram:               "Program",
	KindFunctionDeclaration:   "FunctionDeclaration",
	KindFunctionExpression:    "FunctionExpression",
	KindVariableDeclaration:   "VariableDeclaration",
	KindVariableDeclarator:    "VariableDeclarator",
	KindBlockStatement:        "BlockStatement",
	KindExpressionStatement:   "ExpressionStatement",
	KindDirective:             "Directive",
	KindEmptyStatement:        "EmptyStatement",
	KindDebuggerStatement:     "DebuggerStatement",
	KindReturnStatement:       "ReturnStatement",
	KindThrowStatement:        "ThrowStatement",
	KindBreakStatement:        "BreakStatement",
	KindContinueStatement:     "ContinueStatement",
	KindIfStatement:           "IfStatement",
	KindWhileStatement:        "WhileStatement",
	KindDoWhileStatement:      "DoWhileStatement",
	KindForStatement:          "ForStatement",
	KindForInStatement:        "ForInStatement",
	KindSwitchStatement:       "SwitchStatement",
	KindSwitchCase:            "SwitchCase",
	KindTryStatement:          "TryStatement",
	KindCatchClause:           "CatchClause",
	KindWithStatement:         "WithStatement",
	KindLabeledStatement:      "LabeledStatement",
	KindIdentifier:            "Identifier",
	KindLiteral:               "Literal",
	KindThisExpression:        "ThisExpression",
	KindArrayExpression:       "ArrayExpression",
	KindObjectExpression:      "ObjectExpression",
	KindProperty:              "Property",
	KindSequenceExpression:    "SequenceExpression",
	KindMemberExpression:      "MemberExpression",
	KindCallExpression:        "CallExpression",
	KindNewExpression:         "NewExpression",
	KindUnaryExpression:       "UnaryExpression",
	KindUpdateExpression:      "UpdateExpression",
	KindBinaryExpression:      "BinaryExpression",
	KindLogicalExpression:     "LogicalExpression",
	KindAssignmentExpression:  "AssignmentExpression",
	KindConditionalExpression: "ConditionalExpression",
	KindRaw:                   "Raw",
}

// String returns the ESTree name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// IsFunction reports whether k is a function declaration or expression.
func (k Kind) IsFunction() bool {
	return k == KindFunctionDeclaration || k == KindFunctionExpression
}

// Field names a child slot of a node.
type Field uint8

// Child fields.
const (
	FieldNone Field = iota
	FieldBody
	FieldID
	FieldParams
	FieldExpression
	FieldExpressions
	FieldObject
	FieldProperty
	FieldCallee
	FieldArguments
	FieldDeclarations
	FieldInit
	FieldLeft
	FieldRight
	FieldArgument
	FieldTest
	FieldConsequent
	FieldAlternate
	FieldUpdate
	FieldElements
	FieldProperties
	FieldKey
	FieldValue
	FieldDiscriminant
	FieldCases
	FieldBlock
	FieldHandler
	FieldFinalizer
	FieldParam

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldNone:         "",
	FieldBody:         "body",
	FieldID:           "id",
	FieldParams:       "params",
	FieldExpression:   "expression",
	FieldExpressions:  "expressions",
	FieldObject:       "object",
	FieldProperty:     "property",
	FieldCallee:       "callee",
	FieldArguments:    "arguments",
	FieldDeclarations: "declarations",
	FieldInit:         "init",
	FieldLeft:         "left",
	FieldRight:        "right",
	FieldArgument:     "argument",
	FieldTest:         "test",
	FieldConsequent:   "consequent",
	FieldAlternate:    "alternate",
	FieldUpdate:       "update",
	FieldElements:     "elements",
	FieldProperties:   "properties",
	FieldKey:          "key",
	FieldValue:        "value",
	FieldDiscriminant: "discriminant",
	FieldCases:        "cases",
	FieldBlock:        "block",
	FieldHandler:      "handler",
	FieldFinalizer:    "finalizer",
	FieldParam:        "param",
}

// String returns the ESTree property name of the field.
func (f Field) String() string {
	if f < fieldCount {
		return fieldNames[f]
	}
	return "Field(" + strconv.Itoa(int(f)) + ")"
}

// FieldSpec describes one child slot in a kind's schema.
type FieldSpec struct {
	Field Field
	List  bool // ordered sequence of children rather than a single child
}

func one(f Field) FieldSpec  { return FieldSpec{Field: f} }
func many(f Field) FieldSpec { return FieldSpec{Field: f, List: true} }

// schemas lists child slots in traversal order for each kind.
var schemas = [kindCount][]FieldSpec{
	KindProgram:               {many(FieldBody)},
	KindFunctionDeclaration:   {one(FieldID), many(FieldParams), one(FieldBody)},
	KindFunctionExpression:    {one(FieldID), many(FieldParams), one(FieldBody)},
	KindVariableDeclaration:   {many(FieldDeclarations)},
	KindVariableDeclarator:    {one(FieldID), one(FieldInit)},
	KindBlockStatement:        {many(FieldBody)},
	KindExpressionStatement:   {one(FieldExpression)},
	KindReturnStatement:       {one(FieldArgument)},
	KindThrowStatement:        {one(FieldArgument)},
	KindIfStatement:           {one(FieldTest), one(FieldConsequent), one(FieldAlternate)},
	KindWhileStatement:        {one(FieldTest), one(FieldBody)},
	KindDoWhileStatement:      {one(FieldBody), one(FieldTest)},
	KindForStatement:          {one(FieldInit), one(FieldTest), one(FieldUpdate), one(FieldBody)},
	KindForInStatement:        {one(FieldLeft), one(FieldRight), one(FieldBody)},
	KindSwitchStatement:       {one(FieldDiscriminant), many(FieldCases)},
	KindSwitchCase:            {one(FieldTest), many(FieldConsequent)},
	KindTryStatement:          {one(FieldBlock), one(FieldHandler), one(FieldFinalizer)},
	KindCatchClause:           {one(FieldParam), one(FieldBody)},
	KindWithStatement:         {one(FieldObject), one(FieldBody)},
	KindLabeledStatement:      {one(FieldBody)},
	KindArrayExpression:       {many(FieldElements)},
	KindObjectExpression:      {many(FieldProperties)},
	KindProperty:              {one(FieldKey), one(FieldValue)},
	KindSequenceExpression:    {many(FieldExpressions)},
	KindMemberExpression:      {one(FieldObject), one(FieldProperty)},
	KindCallExpression:        {one(FieldCallee), many(FieldArguments)},
	KindNewExpression:         {one(FieldCallee), many(FieldArguments)},
	KindUnaryExpression:       {one(FieldArgument)},
	KindUpdateExpression:      {one(FieldArgument)},
	KindBinaryExpression:      {one(FieldLeft), one(FieldRight)},
	KindLogicalExpression:     {one(FieldLeft), one(FieldRight)},
	KindAssignmentExpression:  {one(FieldLeft), one(FieldRight)},
	KindConditionalExpression: {one(FieldTest), one(FieldConsequent), one(FieldAlternate)},
}

// Schema returns the ordered child slots of kind k. Leaf kinds and unknown
// kinds have no slots.
func Schema(k Kind) []FieldSpec {
	if k < kindCount {
		return schemas[k]
	}
	return nil
}

// slotIndex returns the position of f in k's schema, or -1.
func slotIndex(k Kind, f Field) int {
	for i, spec := range Schema(k) {
		if spec.Field == f {
			return i
		}
	}
	return -1
}
