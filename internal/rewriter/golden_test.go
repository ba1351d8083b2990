package rewriter

import (
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/catalogue"
	"github.com/cmut-dev/cmut/internal/ids"
	"github.com/cmut-dev/cmut/internal/mutation"
)

// loadGolden reads a fixture under testdata/golden and returns its
// input source and the substrings the rewritten output must contain,
// one per non-empty line of the fixture's want.txt file.
func loadGolden(t *testing.T, name string) (input string, want []string) {
	t.Helper()
	ar, err := txtar.ParseFile("../../testdata/golden/" + name)
	if err != nil {
		t.Fatalf("reading golden fixture %s: %v", name, err)
	}
	var gotWant bool
	for _, f := range ar.Files {
		switch f.Name {
		case "input.cc":
			input = strings.TrimRight(string(f.Data), "\n")
		case "want.txt":
			gotWant = true
			for _, line := range strings.Split(strings.TrimRight(string(f.Data), "\n"), "\n") {
				if line != "" {
					want = append(want, line)
				}
			}
		}
	}
	if input == "" || !gotWant {
		t.Fatalf("golden fixture %s missing input.cc or want.txt", name)
	}
	return input, want
}

func intType(qualType string) astfront.TypeDescriptor {
	return astfront.DescribeType(&astfront.TypeInfo{QualType: qualType}, false)
}

// TestGoldenRemoveStmt is S1: a bare expression statement becomes a
// guarded removal.
func TestGoldenRemoveStmt(t *testing.T) {
	src, want := loadGolden(t, "s1_remove_stmt.txtar")

	begin := strings.Index(src, "1 + 2;")
	end := begin + len("1 + 2")
	stmt := nodeAt(begin, end, "void", false)

	m := mutation.NewRemoveStmt(mutation.RemoveStmt{Stmt: stmt, Range: rangeAt(src, begin, end)})
	alloc := ids.NewAllocator()
	out := Rewrite(src, stmt, []*mutation.Mutation{m}, alloc, Options{})

	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in rewritten output: %s", w, out)
		}
	}
}

// TestGoldenReplaceUnaryMinusOnLiteral is S2: unary minus on a constant
// int literal.
func TestGoldenReplaceUnaryMinusOnLiteral(t *testing.T) {
	src, want := loadGolden(t, "s2_replace_unary_minus.txtar")

	begin := strings.Index(src, "-2")
	end := begin + len("-2")
	operand := nodeAt(begin+1, end, "int", false)
	expr := nodeAt(begin, end, "int", false, operand)

	m := mutation.NewReplaceUnaryOperator(mutation.ReplaceUnaryOperator{
		Expr:           expr,
		Operator:       "-",
		OperandType:    intType("int"),
		ResultType:     intType("int"),
		OperandRange:   rangeAt(src, begin+1, end),
		OperandIsConst: true,
	})

	alloc := ids.NewAllocator()
	out := Rewrite(src, expr, []*mutation.Mutation{m}, alloc, Options{Catalogue: catalogue.Options{Optimise: true}})

	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in rewritten output: %s", w, out)
		}
	}
}

// TestGoldenReplaceUnaryOnLValue is S3: post-decrement on an int
// lvalue, wrapped in a reference-returning lambda.
func TestGoldenReplaceUnaryOnLValue(t *testing.T) {
	src, want := loadGolden(t, "s3_replace_unary_lvalue.txtar")

	begin := strings.Index(src, "x--")
	end := begin + len("x--")
	operand := nodeAt(begin, begin+1, "int", true)
	expr := nodeAt(begin, end, "int", false, operand)

	m := mutation.NewReplaceUnaryOperator(mutation.ReplaceUnaryOperator{
		Expr:         expr,
		Operator:     "--post",
		OperandType:  intType("int"),
		ResultType:   intType("int"),
		OperandRange: rangeAt(src, begin, begin+1),
	})

	alloc := ids.NewAllocator()
	out := Rewrite(src, expr, []*mutation.Mutation{m}, alloc, Options{Catalogue: catalogue.Options{Optimise: true}})

	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in rewritten output: %s", w, out)
		}
	}
}

// TestGoldenShortCircuitAnd is S4: the left operand of && collapses to
// a single surviving "omit true" variant.
func TestGoldenShortCircuitAnd(t *testing.T) {
	src, want := loadGolden(t, "s4_short_circuit_and.txtar")

	begin := strings.Index(src, "a && b")
	end := begin + 1 // just "a"
	a := nodeAt(begin, end, "bool", true)

	m := mutation.NewReplaceExpr(mutation.ReplaceExpr{
		Expr:     a,
		ExprType: astfront.DescribeType(&astfront.TypeInfo{QualType: "bool"}, true),
		Range:    rangeAt(src, begin, end),
		Flags: mutation.ReplaceExprFlags{
			IsLValue:                  true,
			IsBooleanShortCircuitLeft: true,
			ShortCircuitOp:            "&&",
		},
	})

	alloc := ids.NewAllocator()
	out := Rewrite(src, a, []*mutation.Mutation{m}, alloc, Options{Catalogue: catalogue.Options{Optimise: true}})

	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in rewritten output: %s", w, out)
		}
	}
}

// TestGoldenUnsignedConstant is S5: an unsigned int constant gets a
// dedicated unsigned_int_constant dispatcher.
func TestGoldenUnsignedConstant(t *testing.T) {
	src, want := loadGolden(t, "s5_unsigned_constant.txtar")

	begin := strings.Index(src, "= 2") + 2
	end := begin + 1
	lit := nodeAt(begin, end, "unsigned int", false)

	m := mutation.NewReplaceExpr(mutation.ReplaceExpr{
		Expr:       lit,
		ExprType:   intType("unsigned int"),
		Range:      rangeAt(src, begin, end),
		IsConstant: true,
	})

	alloc := ids.NewAllocator()
	out := Rewrite(src, lit, []*mutation.Mutation{m}, alloc, Options{Catalogue: catalogue.Options{Optimise: true}})

	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("missing %q in rewritten output: %s", w, out)
		}
	}
}
