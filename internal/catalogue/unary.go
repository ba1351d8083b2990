package catalogue

// UnaryShape classifies a ReplaceUnaryOperator site, covering the
// pre/post inc-dec swap alongside the arithmetic/logical unary
// operators.
type UnaryShape struct {
	Operator          string // "+", "-", "~", "!", "++pre", "--pre", "++post", "--post"
	IsFloatingOperand bool
}

type unaryCandidate struct {
	name, template, op string
}

// identityTemplates renders the "identity" variant (the original,
// unmutated expression) in each operator's own syntax, keyed by the
// site's own operator spelling.
var identityTemplates = map[string]unaryCandidate{
	"+":      {"identity", "+%s", "+"},
	"-":      {"identity", "-%s", "-"},
	"~":      {"identity", "~%s", "~"},
	"!":      {"identity", "!%s", "!"},
	"++pre":  {"identity", "++%s", "++pre"},
	"--pre":  {"identity", "--%s", "--pre"},
	"++post": {"identity", "%s++", "++post"},
	"--post": {"identity", "%s--", "--post"},
}

// swapFamily is the set of non-side-effecting unary operators: every
// member is a valid replacement for any other member (subject to type
// exclusions), and a postfix inc/dec site also draws from it, since a
// postfix inc/dec and a swap-family operator both leave the expression
// a prvalue. Unary plus is deliberately left out of the family
// entirely — real Dredd's own ground truth never offers it as a
// replacement candidate (see DESIGN.md) — though a site whose own
// operator happens to be "+" is still a valid site and still draws its
// own candidates from the rest of this family.
var swapFamily = []unaryCandidate{
	{"negate", "-%s", "-"},
	{"bitwise_not", "~%s", "~"},
	{"logical_not", "!%s", "!"},
}

// ReplaceUnaryOperatorVariants returns the ordered variant list for a
// ReplaceUnaryOperator site.
//
// A pre/post inc-dec site only ever swaps within its own pre/post
// pair: the result's value category (lvalue for prefix, prvalue for
// postfix) has to be preserved, since a replacement producing the
// wrong category wouldn't type-check wherever the original's result
// was used. A postfix inc/dec site additionally draws from the swap
// family, since a postfix inc/dec and a swap-family operator both
// yield a prvalue; a prefix inc/dec site does not, since none of the
// swap family yields an lvalue. A swap-family (or unary-plus) site
// draws only from the rest of swapFamily and never offers inc/dec at
// all, regardless of whether the operand happens to be an lvalue:
// swapping a non-side-effecting operator for a side-effecting one is a
// different kind of mutation than this family models.
//
// The identity variant is unconditional for inc/dec sites and gated on
// !opt.Optimise for swap-family sites, matching an asymmetry present in
// Dredd's own mutator generation (see DESIGN.md).
func ReplaceUnaryOperatorVariants(s UnaryShape, opt Options) []Variant {
	switch {
	case s.Operator == "++pre" || s.Operator == "--pre":
		return []Variant{preIncDecSibling(s.Operator), identityVariant(s.Operator)}
	case s.Operator == "++post" || s.Operator == "--post":
		vs := append([]Variant{postIncDecSibling(s.Operator)}, filterSwapFamily(s.Operator, s.IsFloatingOperand)...)
		return append(vs, identityVariant(s.Operator))
	default:
		vs := filterSwapFamily(s.Operator, s.IsFloatingOperand)
		if !opt.Optimise {
			vs = append(vs, identityVariant(s.Operator))
		}
		return vs
	}
}

func preIncDecSibling(op string) Variant {
	if op == "++pre" {
		return Variant{Name: "pre_decrement", Template: "--%s"}
	}
	return Variant{Name: "pre_increment", Template: "++%s"}
}

func postIncDecSibling(op string) Variant {
	if op == "++post" {
		return Variant{Name: "post_decrement", Template: "%s--"}
	}
	return Variant{Name: "post_increment", Template: "%s++"}
}

// filterSwapFamily returns every swapFamily member except current and
// any ill-typed for the operand (bitwise_not is dropped for a floating
// operand).
func filterSwapFamily(current string, floatingOperand bool) []Variant {
	var vs []Variant
	for _, c := range swapFamily {
		if c.op == current {
			continue
		}
		if c.op == "~" && floatingOperand {
			continue
		}
		vs = append(vs, Variant{Name: c.name, Template: c.template})
	}
	return vs
}

func identityVariant(op string) Variant {
	t := identityTemplates[op]
	return Variant{Name: "identity", Template: t.template}
}

// unaryOperatorTags names each operator spelling the way dispatcher
// identifiers spell it, title-cased since an identifier fragment can't
// carry the raw operator punctuation.
var unaryOperatorTags = map[string]string{
	"+": "UnaryPlus", "-": "Minus", "~": "BitwiseNot", "!": "LogicalNot",
	"++pre": "PreInc", "--pre": "PreDec", "++post": "PostInc", "--post": "PostDec",
}

// UnaryOperatorTag renders a unary operator spelling for use inside a
// dispatcher identifier.
func UnaryOperatorTag(op string) string {
	if tag, ok := unaryOperatorTags[op]; ok {
		return tag
	}
	return "Op"
}
