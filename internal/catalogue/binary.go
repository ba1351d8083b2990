package catalogue

// BinaryFamily partitions the binary operator space into the families
// that share a replacement-variant policy.
type BinaryFamily int

const (
	FamilyArithmetic BinaryFamily = iota
	FamilyBitwise
	FamilyRelational
	FamilyLogical
	FamilyAssignment
)

// BinaryShape classifies a ReplaceBinaryOperator site.
type BinaryShape struct {
	Operator           string
	Family             BinaryFamily
	IsFloatingOperands bool
	// LHSIsModifiableLValue gates the assignment family: it applies only
	// when the left operand is a modifiable lvalue.
	LHSIsModifiableLValue bool
	// RHSIsAdditiveIdentity and RHSIsMultiplicativeIdentity report
	// whether the right operand is the literal 0 / 1 (int or float).
	// Only the right operand is checked: `0 + x` and `1 * x` are valid
	// C/C++ but rare enough in practice that pruning on the left operand
	// too isn't worth the extra bookkeeping.
	RHSIsAdditiveIdentity       bool
	RHSIsMultiplicativeIdentity bool
}

var arithmeticOps = []string{"+", "-", "*", "/", "%"}
var bitwiseOps = []string{"&", "|", "^", "<<", ">>"}
var relationalOps = []string{"<", "<=", ">", ">=", "==", "!="}
var logicalOps = []string{"&&", "||"}

// assignmentOps lists plain "=" and every compound-assignment spelling
// of the arithmetic/bitwise operators.
var assignmentOps = []string{"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>="}

// ReplaceBinaryOperatorVariants returns the ordered, pruned variant list
// for a ReplaceBinaryOperator site, one family at a time, as a single
// table-driven implementation: there is no AST to mutate in place here,
// only an ordered template list to build.
func ReplaceBinaryOperatorVariants(s BinaryShape, opt Options) []BinaryVariant {
	var vs []BinaryVariant
	switch s.Family {
	case FamilyArithmetic:
		vs = filterFamily(arithmeticOps, s.Operator, s.IsFloatingOperands)
	case FamilyBitwise:
		vs = filterFamily(bitwiseOps, s.Operator, false)
	case FamilyRelational:
		vs = filterFamily(relationalOps, s.Operator, false)
	case FamilyLogical:
		vs = filterFamily(logicalOps, s.Operator, false)
	case FamilyAssignment:
		if !s.LHSIsModifiableLValue {
			return nil
		}
		vs = filterFamily(assignmentOps, s.Operator, s.IsFloatingOperands)
	default:
		return nil
	}
	if opt.Optimise {
		vs = pruneIdentityCollapse(vs, s)
	}
	return vs
}

// pruneIdentityCollapse drops a replacement operator that, given a
// known identity operand on the right, would reduce to exactly the
// same value as the unmutated site: `x * 1` and `x / 1` both equal `x`,
// so if the site is already one of the pair the other is a useless
// mutant, never killable by any test; the same holds for `+`/`-` with a
// right operand of 0. Only the sibling of the site's own operator is
// ever dropped by this rule — every other candidate in the family is
// left untouched.
func pruneIdentityCollapse(vs []BinaryVariant, s BinaryShape) []BinaryVariant {
	var collapseWith string
	switch {
	case s.RHSIsMultiplicativeIdentity && (s.Operator == "*" || s.Operator == "/"):
		collapseWith = siblingOp(s.Operator, "*", "/")
	case s.RHSIsMultiplicativeIdentity && (s.Operator == "*=" || s.Operator == "/="):
		collapseWith = siblingOp(s.Operator, "*=", "/=")
	case s.RHSIsAdditiveIdentity && (s.Operator == "+" || s.Operator == "-"):
		collapseWith = siblingOp(s.Operator, "+", "-")
	case s.RHSIsAdditiveIdentity && (s.Operator == "+=" || s.Operator == "-="):
		collapseWith = siblingOp(s.Operator, "+=", "-=")
	default:
		return vs
	}
	var pruned []BinaryVariant
	for _, v := range vs {
		if v.Operator == collapseWith {
			continue
		}
		pruned = append(pruned, v)
	}
	return pruned
}

// siblingOp returns whichever of a, b is not current.
func siblingOp(current, a, b string) string {
	if current == a {
		return b
	}
	return a
}

// filterFamily drops the current operator and, for arithmetic-shaped
// families (plain or compound-assignment), the modulo variant when
// either operand is floating: {+, -, *, /, %} with % excluded for
// floating operands.
func filterFamily(ops []string, current string, excludeModulo bool) []BinaryVariant {
	var vs []BinaryVariant
	for _, op := range ops {
		if op == current {
			continue
		}
		if excludeModulo && isModulo(op) {
			continue
		}
		vs = append(vs, BinaryVariant{Name: variantName(op), Operator: op})
	}
	return vs
}

func isModulo(op string) bool {
	return op == "%" || op == "%="
}

var binaryFamilyOf = func() map[string]BinaryFamily {
	m := map[string]BinaryFamily{}
	for _, op := range arithmeticOps {
		m[op] = FamilyArithmetic
	}
	for _, op := range bitwiseOps {
		m[op] = FamilyBitwise
	}
	for _, op := range relationalOps {
		m[op] = FamilyRelational
	}
	for _, op := range logicalOps {
		m[op] = FamilyLogical
	}
	for _, op := range assignmentOps {
		m[op] = FamilyAssignment
	}
	return m
}()

// ClassifyBinaryOperator maps an operator spelling to the family
// ReplaceBinaryOperatorVariants branches on.
func ClassifyBinaryOperator(op string) BinaryFamily {
	return binaryFamilyOf[op]
}

// BinaryOperatorTag exports variantName for the rewriter's dispatcher-
// naming use, where the same operator-to-identifier-fragment mapping
// applies to the site's own (pre-mutation) operator, not just to
// variants.
func BinaryOperatorTag(op string) string {
	return variantName(op)
}

// variantName derives a dispatcher-safe name fragment from an operator
// spelling.
func variantName(op string) string {
	names := map[string]string{
		"+": "add", "-": "sub", "*": "mul", "/": "div", "%": "rem",
		"&": "bitand", "|": "bitor", "^": "bitxor", "<<": "shl", ">>": "shr",
		"<": "lt", "<=": "le", ">": "gt", ">=": "ge", "==": "eq", "!=": "ne",
		"&&": "land", "||": "lor",
		"=": "assign", "+=": "add_assign", "-=": "sub_assign", "*=": "mul_assign",
		"/=": "div_assign", "%=": "rem_assign", "&=": "bitand_assign",
		"|=": "bitor_assign", "^=": "bitxor_assign", "<<=": "shl_assign", ">>=": "shr_assign",
	}
	if n, ok := names[op]; ok {
		return n
	}
	return "op"
}
