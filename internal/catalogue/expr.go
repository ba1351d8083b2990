package catalogue

import "github.com/cmut-dev/cmut/internal/astfront"

// ExprShape is the subset of a ReplaceExpr mutation's classification
// the catalogue needs to pick variants, keyed on the operand's type
// Family.
type ExprShape struct {
	Family astfront.Family
	IsLValue bool

	// ShortCircuitOp is "&&" or "||" when the expression is the left
	// operand of that operator, else "".
	ShortCircuitOp string

	IsIntegerLiteralZero  bool
	IsIntegerLiteralOne   bool
	IsFloatingLiteralZero bool
	IsFloatingLiteralOne  bool
	IsNegativeOneLiteral  bool
	IsBooleanLiteralTrue  bool
	IsBooleanLiteralFalse bool
}

// ReplaceExprVariants returns the ordered, pruned variant list for a
// ReplaceExpr mutation site.
func ReplaceExprVariants(s ExprShape, opt Options) []Variant {
	// Under optimisations, the left operand of && / || collapses to the
	// single variant that still exercises the right operand ("only false
	// survives" / "only true survives"): any other replacement either
	// short-circuits away the right operand entirely or is equivalent to
	// one of these two. Without optimisations this pruning doesn't apply
	// and the left operand falls through to its ordinary boolean-family
	// variant list below.
	if opt.Optimise {
		switch s.ShortCircuitOp {
		case "&&":
			return []Variant{{Name: "bool_omit_true", Template: "false"}}
		case "||":
			return []Variant{{Name: "bool_omit_false", Template: "true"}}
		}
	}

	var vs []Variant
	switch s.Family {
	case astfront.FamilySignedInt:
		vs = []Variant{
			{Name: "logical_not", Template: "!%s"},
			{Name: "bitwise_not", Template: "~%s"},
			{Name: "negate", Template: "-%s"},
			{Name: "const_0", Template: "0"},
			{Name: "const_1", Template: "1"},
			{Name: "const_neg1", Template: "-1"},
		}
	case astfront.FamilyUnsignedInt:
		// Unary minus and the -1 constant are dropped outright for
		// unsigned operands: both are well-defined (wraparound) but
		// neither is a meaningful mutation for an unsigned site.
		vs = []Variant{
			{Name: "logical_not", Template: "!%s"},
			{Name: "bitwise_not", Template: "~%s"},
			{Name: "const_0", Template: "0"},
			{Name: "const_1", Template: "1"},
		}
	case astfront.FamilyFloating:
		vs = []Variant{
			{Name: "negate", Template: "-%s"},
			{Name: "const_0", Template: "0.0"},
			{Name: "const_1", Template: "1.0"},
			{Name: "const_neg1", Template: "-1.0"},
		}
	case astfront.FamilyBoolean:
		vs = []Variant{
			{Name: "const_true", Template: "true"},
			{Name: "const_false", Template: "false"},
			{Name: "logical_not", Template: "!%s"},
		}
	default:
		return nil
	}

	if opt.Optimise {
		vs = pruneRedundantConstants(vs, s)
	}

	if s.IsLValue {
		vs = append(vs,
			Variant{Name: "pre_increment", Template: "++%s"},
			Variant{Name: "pre_decrement", Template: "--%s"},
		)
	}

	return vs
}

// pruneRedundantConstants drops a constant variant that would replace
// the expression with its own value: if the expression is the literal
// 0, the "replace with 0" variant is dropped; likewise for 1, -1, true,
// false, and the floating-point equivalents.
func pruneRedundantConstants(vs []Variant, s ExprShape) []Variant {
	drop := map[string]bool{}
	if s.IsIntegerLiteralZero || s.IsFloatingLiteralZero {
		drop["const_0"] = true
	}
	if s.IsIntegerLiteralOne || s.IsFloatingLiteralOne {
		drop["const_1"] = true
	}
	if s.IsNegativeOneLiteral {
		drop["const_neg1"] = true
	}
	if s.IsBooleanLiteralTrue {
		drop["const_true"] = true
	}
	if s.IsBooleanLiteralFalse {
		drop["const_false"] = true
	}
	if len(drop) == 0 {
		return vs
	}
	out := vs[:0:0]
	for _, v := range vs {
		if !drop[v.Name] {
			out = append(out, v)
		}
	}
	return out
}
