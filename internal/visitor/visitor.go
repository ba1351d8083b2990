// Package visitor implements MutateVisitor, the post-order AST walk
// that discovers mutation sites and enforces the six exclusion rules
// that keep every emitted mutation well-formed C/C++.
package visitor

import (
	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/mutation"
	"github.com/cmut-dev/cmut/internal/srcrange"
	"github.com/cmut-dev/cmut/internal/tree"
)

type locKey struct {
	File   string
	Line   int
	Column int
}

func keyOf(l astfront.Loc) locKey { return locKey{File: l.File, Line: l.Line, Column: l.Column} }

// exclusionContext is copied down the traversal by value so that one
// subtree's context (entering a function body, a constant-expression
// position) can never leak into a sibling subtree walked afterwards.
// declared is the one exception: a shared, read-only set built once
// before the walk starts.
type exclusionContext struct {
	mainFile          string
	inFunctionBody    bool
	inConstantContext bool
	declared          map[locKey]bool
}

func withInFunctionBody(ctx exclusionContext, v bool) exclusionContext {
	ctx.inFunctionBody = v
	return ctx
}

func withConstantContext(ctx exclusionContext, v bool) exclusionContext {
	ctx.inConstantContext = v
	return ctx
}

var functionLikeKinds = map[string]bool{
	"FunctionDecl": true, "CXXMethodDecl": true,
	"CXXConstructorDecl": true, "CXXDestructorDecl": true,
	"LambdaExpr": true,
}

// constantContextWrapperKinds holds the node kinds whose children are
// exclusively constant-expression positions: a fixed, variable-length,
// or dependent array bound, or a template argument. The standard
// either forbids an arbitrary expression there or requires it to be a
// compile-time constant, so wrapping one in a dispatcher call would
// produce ill-formed C++.
var constantContextWrapperKinds = map[string]bool{
	"ConstantArrayType": true, "VariableArrayType": true, "DependentSizedArrayType": true,
	"TemplateArgument": true,
}

var nonRemovableStmtKinds = map[string]bool{
	"DeclStmt": true, "LabelStmt": true, "CaseStmt": true, "DefaultStmt": true,
}

// MutateVisitor discovers mutation sites in one translation unit.
type MutateVisitor struct {
	MainFile string
	Source   string // the TU's raw text, sliced for RemoveStmt/mutation snippets

	escape            map[*astfront.Node]escapeFlags
	firstTopLevelDecl *astfront.Node
}

// New returns a visitor for a translation unit whose main file is
// mainFile and whose verbatim text is source.
func New(mainFile, source string) *MutateVisitor {
	return &MutateVisitor{MainFile: mainFile, Source: source, escape: map[*astfront.Node]escapeFlags{}}
}

// FirstTopLevelDecl returns the first main-file top-level declaration
// found by the most recent Discover call — the insertion point for the
// Rewriter's prelude.
func (v *MutateVisitor) FirstTopLevelDecl() *astfront.Node {
	return v.firstTopLevelDecl
}

// Discover walks the translation unit rooted at root and returns the
// flat, source-ordered list of discovered mutations together with the
// MutationTree root they were appended into.
func (v *MutateVisitor) Discover(root *astfront.Node) ([]*mutation.Mutation, *tree.Node) {
	declared := map[locKey]bool{}
	collectDeclLocations(root, declared)
	for _, c := range root.Inner {
		computeEscape(c, v.escape)
	}

	ctx := exclusionContext{mainFile: v.MainFile, declared: declared}
	rootNode := tree.NewNode()
	var flat []*mutation.Mutation

	for _, decl := range root.Inner {
		if v.firstTopLevelDecl == nil && decl.Range.InMainFile(v.MainFile) {
			v.firstTopLevelDecl = decl
		}
		v.walk(decl, ctx, rootNode, &flat)
	}
	return flat, rootNode
}

func collectDeclLocations(n *astfront.Node, out map[locKey]bool) {
	if n.Kind == "VarDecl" {
		out[keyOf(n.Range.SpellingBegin)] = true
	}
	for _, c := range n.Inner {
		collectDeclLocations(c, out)
	}
}

// walk is the single post-order recursion that both builds the
// MutationTree's decl-stack/statement-block nesting and classifies each
// node as a mutation site or not. node is the tree node mutations found
// under n are appended into.
func (v *MutateVisitor) walk(n *astfront.Node, ctx exclusionContext, node *tree.Node, flat *[]*mutation.Mutation) {
	switch {
	case functionLikeKinds[n.Kind]:
		v.walkFunctionLike(n, ctx, node, flat)
		return
	case n.Kind == "CompoundStmt":
		child := node.AddChild()
		v.discoverRemoveStmtCandidates(n, ctx, child, flat)
		for _, c := range n.Inner {
			v.walk(c, ctx, child, flat)
		}
		return
	case n.Kind == "CaseStmt":
		if len(n.Inner) > 0 {
			v.walk(n.Inner[0], withConstantContext(ctx, true), node, flat)
		}
		for _, c := range n.Inner[1:] {
			v.walk(c, ctx, node, flat)
		}
		return
	case n.Kind == "ParmVarDecl":
		for _, c := range n.Inner {
			v.walk(c, withConstantContext(ctx, true), node, flat)
		}
		return
	case constantContextWrapperKinds[n.Kind]:
		for _, c := range n.Inner {
			v.walk(c, withConstantContext(ctx, true), node, flat)
		}
		return
	default:
		// tryMutate before recursing: n's own span starts at or before
		// every child's (a prefix UnaryOperator's '-' precedes its
		// operand), so flat must record n first to stay source-ordered.
		v.tryMutate(n, ctx, node, flat)
		for _, c := range n.Inner {
			v.walk(c, ctx, node, flat)
		}
		return
	}
}

// walkFunctionLike opens a new decl-stack tree node for a function,
// method, constructor/destructor, or lambda, and marks in-function only
// the subtree under its compound-statement body (rule 3): parameter
// default values, base/member initializers, and capture lists are all
// reachable from here but are not themselves in-function.
func (v *MutateVisitor) walkFunctionLike(n *astfront.Node, ctx exclusionContext, parent *tree.Node, flat *[]*mutation.Mutation) {
	declNode := parent.AddChild()
	for _, c := range n.Inner {
		switch {
		case c.Kind == "CompoundStmt":
			v.walk(c, withInFunctionBody(ctx, true), declNode, flat)
		case c.Kind == "LambdaCapture":
			v.walk(c, withConstantContext(withInFunctionBody(ctx, false), true), declNode, flat)
		default:
			v.walk(c, withInFunctionBody(ctx, false), declNode, flat)
		}
	}
}

func (v *MutateVisitor) discoverRemoveStmtCandidates(compound *astfront.Node, ctx exclusionContext, node *tree.Node, flat *[]*mutation.Mutation) {
	if !ctx.inFunctionBody {
		return
	}
	for _, stmt := range compound.Inner {
		if nonRemovableStmtKinds[stmt.Kind] {
			continue
		}
		if !stmt.Range.InMainFile(ctx.mainFile) {
			continue
		}
		if ctx.declared[keyOf(stmt.Range.SpellingBegin)] {
			continue
		}
		if computeEscape(stmt, v.escape).blocksRemoval() {
			continue
		}
		m := mutation.NewRemoveStmt(mutation.RemoveStmt{
			Stmt:  stmt,
			Range: v.rangeOf(stmt),
		})
		node.AddMutation(m)
		*flat = append(*flat, m)
	}
}

// eligible applies exclusion rules 1-4; rule 5 (supported type) is
// checked by the caller once it has the node's Family, and rule 6 only
// binds RemoveStmt, handled separately in discoverRemoveStmtCandidates.
func eligible(n *astfront.Node, ctx exclusionContext) bool {
	if !n.Range.InMainFile(ctx.mainFile) {
		return false
	}
	if ctx.inConstantContext {
		return false
	}
	if !ctx.inFunctionBody {
		return false
	}
	if ctx.declared[keyOf(n.Range.SpellingBegin)] {
		return false
	}
	return true
}

func (v *MutateVisitor) rangeOf(n *astfront.Node) srcrange.Info {
	begin := n.Range.SpellingBegin
	end := n.Range.SpellingEnd
	endOffset := end.Offset + end.TokLen
	raw := srcrange.TextBetween(v.Source, begin.Offset, endOffset)
	return srcrange.NewWithOffsets(begin.Line, begin.Column, end.Line, end.Column+end.TokLen, begin.Offset, endOffset, raw)
}
