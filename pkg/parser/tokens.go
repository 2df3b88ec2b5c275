package parser

import "github.com/tdewolff/parse/v2/js"

// strictReserved lists the words that js.Parse accepts as identifiers but
// strict mode code reserves. The other reserved words never reach the tree
// as names.
var strictReserved = map[string]bool{
	"implements": true, "interface": true, "let": true, "package": true,
	"private": true, "protected": true, "public": true, "static": true,
	"yield": true, "await": true, "enum": true,
}

// restrictedBindings cannot be declared or assigned in strict mode code.
var restrictedBindings = map[string]bool{
	"eval": true, "arguments": true,
}

// logicalOperators build LogicalExpression nodes. Every other binary token
// that is not an assignment builds a BinaryExpression.
var logicalOperators = map[js.TokenType]bool{
	js.AndToken: true, js.OrToken: true, js.NullishToken: true,
}

var assignOperators = map[js.TokenType]bool{
	js.EqToken: true, js.AddEqToken: true, js.SubEqToken: true, js.MulEqToken: true,
	js.DivEqToken: true, js.ModEqToken: true, js.ExpEqToken: true, js.LtLtEqToken: true,
	js.GtGtEqToken: true, js.GtGtGtEqToken: true, js.BitAndEqToken: true,
	js.BitOrEqToken: true, js.BitXorEqToken: true, js.AndEqToken: true,
	js.OrEqToken: true, js.NullishEqToken: true,
}

// unaryOperators maps prefix operator tokens to their source spelling.
var unaryOperators = map[js.TokenType]string{
	js.NotToken:    "!",
	js.BitNotToken: "~",
	js.PosToken:    "+",
	js.NegToken:    "-",
	js.TypeofToken: "typeof",
	js.VoidToken:   "void",
	js.DeleteToken: "delete",
}

type updateOperator struct {
	op     string
	prefix bool
}

var updateOperators = map[js.TokenType]updateOperator{
	js.PreIncrToken:  {"++", true},
	js.PreDecrToken:  {"--", true},
	js.PostIncrToken: {"++", false},
	js.PostDecrToken: {"--", false},
}
