// Package astfront models the AST handed to the instrumenter by the
// external C/C++ front end. The front end itself is out of scope — it
// is specified only at its interface; this package is that interface's
// concrete shape for cmut, an ingester of the JSON a Clang-compatible
// front end produces with `-ast-dump=json`.
//
// The node/loc/type shape below mirrors how a Clang AST dump actually
// nests its fields (kind, inner, a type with a qualified-type string, a
// location with separate spelling/expansion positions).
package astfront

// Loc is a single source location, carrying both where a token was
// spelled and where it would appear after macro expansion. A node is
// mutable only if its *spelling* location lies in the main file,
// regardless of what its expansion location says.
type Loc struct {
	File   string
	Line   int
	Column int
	Offset int
	TokLen int // length in bytes of the token at this location, when known
}

// Range is a token range with independent spelling and expansion
// endpoints.
type Range struct {
	SpellingBegin  Loc
	SpellingEnd    Loc
	ExpansionBegin Loc
	ExpansionEnd   Loc
}

// InMainFile reports whether the range's spelling endpoints both lie in
// mainFile. Expansion locations are deliberately ignored: a macro body
// expanded into the main file still has its own header as its spelling
// file, and exclusion rule 1 must reject it.
func (r Range) InMainFile(mainFile string) bool {
	return r.SpellingBegin.File == mainFile && r.SpellingEnd.File == mainFile
}

// TypeInfo is the type of an expression, as spelled by the front end.
type TypeInfo struct {
	QualType string
}

// Node is one AST node. Only the fields the catalogue/visitor/rewriter
// actually consult are modelled; everything else a real Clang dump
// carries is ignored by the JSON decoder.
type Node struct {
	ID            string
	Kind          string
	Name          string
	Range         Range
	Type          *TypeInfo
	ValueCategory string // "lvalue", "xvalue", "prvalue", or "" when not an expression
	Opcode        string // operator spelling, for *Operator / *AssignOperator kinds
	Value         string // literal spelling, for *Literal kinds
	IsImplicit    bool
	IsPostfix     bool // UnaryOperator only: distinguishes x++ from ++x
	Inner         []*Node

	parent *Node
}

// Parent returns the node's enclosing node, or nil for the translation
// unit root. Populated by Link.
func (n *Node) Parent() *Node { return n.parent }

// Link walks the tree rooted at n and sets every child's parent pointer.
// The JSON decoder produces a tree with no back-edges; Link is run once
// right after decoding.
func Link(n *Node) {
	for _, c := range n.Inner {
		c.parent = n
		Link(c)
	}
}

// IsExpr reports whether the node is an expression node (has a type and
// a value category), as opposed to a statement or declaration.
func (n *Node) IsExpr() bool {
	return n.Type != nil && n.ValueCategory != ""
}

// IsLValue reports whether the node, if an expression, is an lvalue.
func (n *Node) IsLValue() bool {
	return n.ValueCategory == "lvalue"
}
