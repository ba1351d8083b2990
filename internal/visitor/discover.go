package visitor

import (
	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/mutation"
	"github.com/cmut-dev/cmut/internal/tree"
)

var supportedUnaryOps = map[string]bool{
	"+": true, "-": true, "~": true, "!": true, "++": true, "--": true,
}

var supportedBinaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
	"<": true, "<=": true, ">": true, ">=": true, "==": true, "!=": true,
	"&&": true, "||": true,
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// tryMutate classifies one visited node and, if eligible, appends
// whichever of the three expression mutation kinds apply to it
// (RemoveStmt is found by discoverRemoveStmtCandidates). A UnaryOperator or
// BinaryOperator/CompoundAssignOperator node gets BOTH a generic
// ReplaceExpr (replacing the whole subexpression) and its more specific
// operator-replacement mutation: each kind independently decides whether
// it applies to a node, rather than one owning a node kind exclusively.
func (v *MutateVisitor) tryMutate(n *astfront.Node, ctx exclusionContext, node *tree.Node, flat *[]*mutation.Mutation) {
	if n.IsImplicit || !n.IsExpr() || n.Type == nil {
		return
	}
	if !eligible(n, ctx) {
		return
	}
	fam := astfront.ClassifyType(n.Type.QualType)
	if fam == astfront.FamilyNone {
		return
	}

	m := v.buildReplaceExpr(n, fam)
	node.AddMutation(m)
	*flat = append(*flat, m)

	if n.Kind == "UnaryOperator" && supportedUnaryOps[n.Opcode] {
		if um := v.buildReplaceUnary(n); um != nil {
			node.AddMutation(um)
			*flat = append(*flat, um)
		}
	}
	if (n.Kind == "BinaryOperator" || n.Kind == "CompoundAssignOperator") && supportedBinaryOps[n.Opcode] {
		if bm := v.buildReplaceBinary(n); bm != nil {
			node.AddMutation(bm)
			*flat = append(*flat, bm)
		}
	}
}

func (v *MutateVisitor) buildReplaceExpr(n *astfront.Node, fam astfront.Family) *mutation.Mutation {
	flags := mutation.ReplaceExprFlags{
		IsLValue:              n.IsLValue(),
		IsIntegerLiteralZero:  n.IsIntegerLiteralValue("0"),
		IsIntegerLiteralOne:   n.IsIntegerLiteralValue("1"),
		IsFloatingLiteralZero: n.IsFloatingLiteralValue(0),
		IsFloatingLiteralOne:  n.IsFloatingLiteralValue(1),
	}
	if op, ok := shortCircuitLeftOperand(n); ok {
		flags.IsBooleanShortCircuitLeft = true
		flags.ShortCircuitOp = op
	}
	return mutation.NewReplaceExpr(mutation.ReplaceExpr{
		Expr:       n,
		ExprType:   astfront.DescribeType(n.Type, n.IsLValue()),
		Range:      v.rangeOf(n),
		Flags:      flags,
		IsConstant: n.IsCompileTimeConstant(),
	})
}

// shortCircuitLeftOperand reports the operator and true when n is the
// left operand of a && or || BinaryOperator, the position that
// collapses to a single surviving constant under optimisations.
func shortCircuitLeftOperand(n *astfront.Node) (op string, ok bool) {
	p := n.Parent()
	if p == nil || p.Kind != "BinaryOperator" {
		return "", false
	}
	if p.Opcode != "&&" && p.Opcode != "||" {
		return "", false
	}
	if len(p.Inner) == 0 || p.Inner[0] != n {
		return "", false
	}
	return p.Opcode, true
}

func (v *MutateVisitor) buildReplaceUnary(n *astfront.Node) *mutation.Mutation {
	if len(n.Inner) != 1 {
		return nil
	}
	operand := n.Inner[0]
	return mutation.NewReplaceUnaryOperator(mutation.ReplaceUnaryOperator{
		Expr:           n,
		Operator:       unaryOperatorLabel(n.Opcode, n.IsPostfix),
		OperandType:    astfront.DescribeType(operand.Type, operand.IsLValue()),
		ResultType:     astfront.DescribeType(n.Type, n.IsLValue()),
		OperandRange:   v.rangeOf(operand),
		OperandIsConst: operand.IsCompileTimeConstant(),
	})
}

// unaryOperatorLabel disambiguates ++/-- into the four-way pre/post
// split ReplaceUnaryOperator.Operator spelling needs.
func unaryOperatorLabel(opcode string, postfix bool) string {
	switch opcode {
	case "++":
		if postfix {
			return "++post"
		}
		return "++pre"
	case "--":
		if postfix {
			return "--post"
		}
		return "--pre"
	default:
		return opcode
	}
}

func (v *MutateVisitor) buildReplaceBinary(n *astfront.Node) *mutation.Mutation {
	if len(n.Inner) != 2 {
		return nil
	}
	lhs, rhs := n.Inner[0], n.Inner[1]
	return mutation.NewReplaceBinaryOperator(mutation.ReplaceBinaryOperator{
		Expr:      n,
		Operator:  n.Opcode,
		LHSType:   astfront.DescribeType(lhs.Type, lhs.IsLValue()),
		RHSType:   astfront.DescribeType(rhs.Type, rhs.IsLValue()),
		LHSRange:  v.rangeOf(lhs),
		RHSRange:  v.rangeOf(rhs),
		LHSIsLval: lhs.IsLValue(),
	})
}
