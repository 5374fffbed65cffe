package behavior

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// clauseLexer tokenizes behavior clauses and state declarations. Rules are
// tried in order, so operators win over identifiers that may contain "-".
var clauseLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Operator", Pattern: `\+=|-=|=>|&&|\+\+|[=<>]`},
	{Name: "Punct", Pattern: `[{}]`},
	{Name: "State", Pattern: `\$[a-zA-Z0-9_/.:]+(?:-[a-zA-Z0-9_/.:]+)*`},
	{Name: "Predicate", Pattern: `\?[a-zA-Z0-9_/.:]+(?:-[a-zA-Z0-9_/.:]+)*`},
	{Name: "Ident", Pattern: `-?[a-zA-Z0-9_/.:~]+(?:-[a-zA-Z0-9_/.:~]+)*`},
})

// clauseNode is the parse tree of one behavior clause.
type clauseNode struct {
	Requires  *requiresNode  `  "requires" @@`
	Reads     *readsNode     `| "reads" @@`
	Publishes *publishesNode `| "publishes" @@`
	Alters    *altersNode    `| "alters" @@`
}

type requiresNode struct {
	Conditions []*conditionNode `@@ ( ( "and" | "&&" ) @@ )*`
}

type conditionNode struct {
	Quantifier string      `@( "no" | "not" | "some" | "exists" )`
	Target     *targetNode `@@`
}

type targetNode struct {
	Predicate string      `  @Predicate`
	Entity    *entityNode `| @@`
}

type entityNode struct {
	Name  string  `@( State | Ident )`
	Value *string `( ( "=" | "eql" ) @Ident )?`
}

type readsNode struct {
	Topic    string        `@Ident`
	Branches []*branchNode `( "then" "{" @@ ( ( "or" | "++" ) @@ )* "}" )?`
}

type branchNode struct {
	Conditions []*readConditionNode `@@ ( ( "and" | "&&" ) @@ )*`
}

type readConditionNode struct {
	Guard       *guardNode       `( @@ ( "implies" | "=>" ) )?`
	Consequence *consequenceNode `@@`
}

type guardNode struct {
	Operator string `"m" @( "=" | "eql" | ">" | "gtr" | "<" | "les" )`
	Value    string `@Ident`
}

type consequenceNode struct {
	Predicate string      `  ( "no" | "not" ) @Predicate`
	Update    *updateNode `| @@`
}

type updateNode struct {
	Target   string `@( State | Ident )`
	Operator string `@( "=" | "eql" | "+=" | "add" | "-=" | "rmv" )`
	Value    string `@Ident`
}

type publishesNode struct {
	Topic string  `@Ident`
	Value *string `( ( "=" | "eql" ) @Ident )?`
}

type altersNode struct {
	Updates []*alterNode `@@ ( ( "and" | "&&" ) @@ )*`
}

type alterNode struct {
	State    string `@State`
	Operator string `@( "=" | "eql" | "+=" | "add" | "-=" | "rmv" )`
	Value    string `@Ident`
}

// stateDeclNode is the parse tree of a state declaration such as "public int counter".
type stateDeclNode struct {
	Visibility string `@( "public" | "private" )?`
	Int        bool   `@"int"?`
	Name       string `@( State | Ident )`
}

var (
	clauseParser = participle.MustBuild[clauseNode](
		participle.Lexer(clauseLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)

	stateParser = participle.MustBuild[stateDeclNode](
		participle.Lexer(clauseLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)
)
