package visitor

import (
	"testing"

	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/mutation"
)

const mainFile = "main.cpp"

func loc(line, col, offset, tokLen int) astfront.Loc {
	return astfront.Loc{File: mainFile, Line: line, Column: col, Offset: offset, TokLen: tokLen}
}

func exprNode(kind, qualType, valueCategory string, l astfront.Loc) *astfront.Node {
	return &astfront.Node{
		Kind:          kind,
		Type:          &astfront.TypeInfo{QualType: qualType},
		ValueCategory: valueCategory,
		Range:         astfront.Range{SpellingBegin: l, SpellingEnd: l},
	}
}

func wrapInFunction(body *astfront.Node) *astfront.Node {
	fn := &astfront.Node{
		Kind:  "FunctionDecl",
		Name:  "f",
		Range: astfront.Range{SpellingBegin: loc(1, 1, 0, 0), SpellingEnd: loc(3, 1, 100, 0)},
		Inner: []*astfront.Node{body},
	}
	return fn
}

func root(decls ...*astfront.Node) *astfront.Node {
	r := &astfront.Node{Kind: "TranslationUnitDecl", Inner: decls}
	astfront.Link(r)
	return r
}

// a + b inside a function body, source "    a + b;" at line 2.
func TestDiscoverBasicArithmeticSite(t *testing.T) {
	src := "int f() {\n    a + b;\n}\n"
	a := exprNode("DeclRefExpr", "int", "lvalue", loc(2, 5, 14, 1))
	b := exprNode("DeclRefExpr", "int", "lvalue", loc(2, 9, 18, 1))
	bin := &astfront.Node{
		Kind: "BinaryOperator", Opcode: "+",
		Type: &astfront.TypeInfo{QualType: "int"}, ValueCategory: "prvalue",
		Range: astfront.Range{SpellingBegin: a.Range.SpellingBegin, SpellingEnd: b.Range.SpellingBegin},
		Inner: []*astfront.Node{a, b},
	}
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{bin},
		Range: astfront.Range{SpellingBegin: loc(1, 9, 8, 0), SpellingEnd: loc(3, 1, 21, 0)}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, src)
	muts, _ := v.Discover(tu)

	// a: ReplaceExpr; b: ReplaceExpr; the whole `a + b`: ReplaceExpr +
	// ReplaceBinaryOperator; and `a + b;` as an expression-statement is
	// itself a RemoveStmt candidate.
	if len(muts) != 5 {
		t.Fatalf("expected 5 mutations, got %d: %+v", len(muts), muts)
	}
	var sawBinary, sawRemove bool
	for _, m := range muts {
		if m.Kind == mutation.KindReplaceBinaryOperator {
			sawBinary = true
			if m.ReplaceBin.Operator != "+" {
				t.Errorf("ReplaceBinaryOperator operator = %q, want +", m.ReplaceBin.Operator)
			}
		}
		if m.Kind == mutation.KindRemoveStmt {
			sawRemove = true
		}
	}
	if !sawBinary {
		t.Fatalf("expected a ReplaceBinaryOperator mutation among %+v", muts)
	}
	if !sawRemove {
		t.Fatalf("expected a RemoveStmt mutation for the expression-statement among %+v", muts)
	}
}

func TestDiscoverExcludesNodesOutsideMainFile(t *testing.T) {
	headerLoc := astfront.Loc{File: "header.h", Line: 1, Column: 1, Offset: 0, TokLen: 1}
	macroExpr := exprNode("DeclRefExpr", "int", "lvalue", headerLoc)
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{macroExpr}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)
	if len(muts) != 0 {
		t.Fatalf("expected 0 mutations for a node outside the main file, got %d", len(muts))
	}
}

func TestDiscoverExcludesOutsideFunctionBody(t *testing.T) {
	globalInit := exprNode("IntegerLiteral", "int", "prvalue", loc(1, 10, 9, 1))
	globalInit.Value = "0"
	varDecl := &astfront.Node{Kind: "VarDecl", Name: "g", Range: astfront.Range{SpellingBegin: loc(1, 1, 0, 5), SpellingEnd: loc(1, 1, 0, 5)}, Inner: []*astfront.Node{globalInit}}
	tu := root(varDecl)

	v := New(mainFile, "int g = 0;")
	muts, _ := v.Discover(tu)
	if len(muts) != 0 {
		t.Fatalf("expected 0 mutations for a global initializer outside any function body, got %d", len(muts))
	}
}

func TestDiscoverExcludesDeclarationCollision(t *testing.T) {
	collideLoc := loc(2, 9, 18, 1)
	// Simulates `if (auto x = ...)`: the condition expression starts at
	// the exact location the compiler also records as x's declaration.
	condExpr := exprNode("DeclRefExpr", "int", "lvalue", collideLoc)
	varDecl := &astfront.Node{Kind: "VarDecl", Name: "x", Range: astfront.Range{SpellingBegin: collideLoc, SpellingEnd: collideLoc}}
	declStmt := &astfront.Node{Kind: "DeclStmt", Range: astfront.Range{SpellingBegin: collideLoc, SpellingEnd: collideLoc}, Inner: []*astfront.Node{varDecl}}
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{declStmt, condExpr}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)
	if len(muts) != 0 {
		t.Fatalf("expected the colliding expression to be excluded, got %d mutations", len(muts))
	}
}

func TestDiscoverExcludesUnsupportedType(t *testing.T) {
	classExpr := exprNode("DeclRefExpr", "MyClass", "lvalue", loc(2, 5, 14, 1))
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{classExpr}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)
	// Rule 5 only gates the typed mutations (ReplaceExpr/Unary/Binary);
	// the expression statement itself may still be a RemoveStmt
	// candidate, since omitting it has nothing to do with its type.
	for _, m := range muts {
		if m.Kind != mutation.KindRemoveStmt {
			t.Fatalf("expected only a RemoveStmt candidate for a class-typed expression statement, got %v", m.Kind)
		}
	}
}

func TestDiscoverRemoveStmtSkipsEscapeUnsafeStatements(t *testing.T) {
	safe := &astfront.Node{Kind: "CallExpr", Range: astfront.Range{SpellingBegin: loc(2, 5, 10, 5), SpellingEnd: loc(2, 10, 15, 1)}}
	unsafe := &astfront.Node{Kind: "ReturnStmt", Range: astfront.Range{SpellingBegin: loc(3, 5, 20, 6), SpellingEnd: loc(3, 12, 26, 1)},
		Inner: []*astfront.Node{exprNode("IntegerLiteral", "int", "prvalue", loc(3, 12, 26, 1))}}
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{safe, unsafe}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)

	var removals []*mutation.Mutation
	for _, m := range muts {
		if m.Kind == mutation.KindRemoveStmt {
			removals = append(removals, m)
		}
	}
	if len(removals) != 1 {
		t.Fatalf("expected exactly 1 RemoveStmt candidate, got %d", len(removals))
	}
	if removals[0].RemoveStmt.Stmt != safe {
		t.Fatalf("expected the safe CallExpr statement to be the surviving RemoveStmt candidate")
	}
}

func TestDiscoverRemoveStmtClearsBreakInsideItsOwnLoop(t *testing.T) {
	brk := &astfront.Node{Kind: "BreakStmt", Range: astfront.Range{SpellingBegin: loc(3, 9, 30, 6), SpellingEnd: loc(3, 14, 35, 1)}}
	innerBody := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{brk}}
	loop := &astfront.Node{Kind: "ForStmt", Inner: []*astfront.Node{innerBody},
		Range: astfront.Range{SpellingBegin: loc(2, 5, 10, 3), SpellingEnd: loc(4, 6, 40, 1)}}
	fnBody := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{loop}}
	fn := wrapInFunction(fnBody)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)

	var removals []*mutation.Mutation
	for _, m := range muts {
		if m.Kind == mutation.KindRemoveStmt {
			removals = append(removals, m)
		}
	}
	if len(removals) != 1 || removals[0].RemoveStmt.Stmt != loop {
		t.Fatalf("expected the whole for-loop (containing its own break) to be the sole RemoveStmt candidate, got %+v", removals)
	}
}

func TestDiscoverShortCircuitFlagsLeftOperand(t *testing.T) {
	lhs := exprNode("DeclRefExpr", "_Bool", "lvalue", loc(2, 5, 14, 1))
	rhs := exprNode("DeclRefExpr", "_Bool", "lvalue", loc(2, 10, 19, 1))
	bin := &astfront.Node{Kind: "BinaryOperator", Opcode: "&&",
		Type: &astfront.TypeInfo{QualType: "_Bool"}, ValueCategory: "prvalue",
		Range: astfront.Range{SpellingBegin: lhs.Range.SpellingBegin, SpellingEnd: rhs.Range.SpellingBegin},
		Inner: []*astfront.Node{lhs, rhs},
	}
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{bin}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)

	var lhsFlags *mutation.ReplaceExprFlags
	for _, m := range muts {
		if m.Kind == mutation.KindReplaceExpr && m.ReplaceExpr.Expr == lhs {
			lhsFlags = &m.ReplaceExpr.Flags
		}
	}
	if lhsFlags == nil {
		t.Fatalf("expected a ReplaceExpr mutation for the && left operand")
	}
	if !lhsFlags.IsBooleanShortCircuitLeft || lhsFlags.ShortCircuitOp != "&&" {
		t.Fatalf("expected IsBooleanShortCircuitLeft with op && , got %+v", lhsFlags)
	}
}

// TestDiscoverOrdersPrefixUnaryBeforeItsOperand covers a prefix
// UnaryOperator such as "-x", whose own SpellingBegin (the '-' token)
// precedes its operand's. The flat list must still record the
// UnaryOperator's own mutations ahead of its operand's.
func TestDiscoverOrdersPrefixUnaryBeforeItsOperand(t *testing.T) {
	x := exprNode("DeclRefExpr", "int", "lvalue", loc(2, 6, 15, 1))
	neg := &astfront.Node{Kind: "UnaryOperator", Opcode: "-", IsPostfix: false,
		Type: &astfront.TypeInfo{QualType: "int"}, ValueCategory: "prvalue",
		Range: astfront.Range{SpellingBegin: loc(2, 5, 14, 1), SpellingEnd: x.Range.SpellingBegin},
		Inner: []*astfront.Node{x},
	}
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{neg}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)

	negIdx, xIdx := -1, -1
	for i, m := range muts {
		if m.Kind == mutation.KindReplaceExpr && m.ReplaceExpr.Expr == neg {
			negIdx = i
		}
		if m.Kind == mutation.KindReplaceExpr && m.ReplaceExpr.Expr == x {
			xIdx = i
		}
	}
	if negIdx == -1 || xIdx == -1 {
		t.Fatalf("expected ReplaceExpr mutations for both the UnaryOperator and its operand, got %+v", muts)
	}
	if negIdx > xIdx {
		t.Fatalf("UnaryOperator's mutation (index %d) starts earlier in source than its operand's (index %d) but was appended after it", negIdx, xIdx)
	}
}

// TestDiscoverExcludesArraySizeExpression covers exclusion rule 2's
// array-bound clause: "int arr[N - 1];" must not offer N - 1 for
// mutation, even though it sits in a function body.
func TestDiscoverExcludesArraySizeExpression(t *testing.T) {
	n := exprNode("DeclRefExpr", "int", "lvalue", loc(2, 15, 24, 1))
	one := exprNode("IntegerLiteral", "int", "prvalue", loc(2, 19, 28, 1))
	size := &astfront.Node{Kind: "BinaryOperator", Opcode: "-",
		Type: &astfront.TypeInfo{QualType: "int"}, ValueCategory: "prvalue",
		Range: astfront.Range{SpellingBegin: n.Range.SpellingBegin, SpellingEnd: one.Range.SpellingBegin},
		Inner: []*astfront.Node{n, one},
	}
	arrType := &astfront.Node{Kind: "ConstantArrayType", Inner: []*astfront.Node{size}}
	decl := &astfront.Node{Kind: "VarDecl", Name: "arr", Inner: []*astfront.Node{arrType},
		Range: astfront.Range{SpellingBegin: loc(2, 5, 14, 3), SpellingEnd: loc(2, 22, 31, 1)}}
	compound := &astfront.Node{Kind: "CompoundStmt", Inner: []*astfront.Node{decl}}
	fn := wrapInFunction(compound)
	tu := root(fn)

	v := New(mainFile, "")
	muts, _ := v.Discover(tu)

	for _, m := range muts {
		if m.Kind == mutation.KindReplaceExpr && (m.ReplaceExpr.Expr == n || m.ReplaceExpr.Expr == one || m.ReplaceExpr.Expr == size) {
			t.Fatalf("an array size expression must never be offered for mutation, got %+v", m)
		}
	}
}
