// Package catalogue answers "which variants apply?" for each mutable
// site. It is organised one file per mutation kind (expr.go for
// ReplaceExpr, unary.go for ReplaceUnaryOperator, binary.go for
// ReplaceBinaryOperator), each producing an ordered list of C++
// replacement templates for its kind.
package catalogue

import (
	"fmt"
	"strings"
)

// Options controls catalogue-wide pruning behaviour. Optimise corresponds
// to the CLI's --no-mutation-opts flag being *absent* (the default is
// pruning enabled).
type Options struct {
	Optimise bool
}

// Variant is one ReplaceExpr/ReplaceUnaryOperator candidate: a name used
// to build the dispatcher's identifier and a printf-style template with
// at most one %s placeholder for the rendered operand text. Templates
// with no placeholder are pure constants ("0", "true", ...).
type Variant struct {
	Name     string
	Template string
}

// HasArg reports whether the variant's template references the operand.
func (v Variant) HasArg() bool {
	return strings.Contains(v.Template, "%s")
}

// Render substitutes arg into the variant's template.
func (v Variant) Render(arg string) string {
	if !v.HasArg() {
		return v.Template
	}
	return fmt.Sprintf(v.Template, arg)
}

// BinaryVariant is one ReplaceBinaryOperator candidate: a replacement
// operator rendered infix between the two (already-captured) operand
// texts, exactly as the original operator was.
type BinaryVariant struct {
	Name     string
	Operator string
}

// Render composes "lhs OP rhs" for both the arithmetic/relational/
// bitwise/logical families and the assignment family, which is also
// infix ("lhs = rhs", "lhs += rhs", ...).
func (v BinaryVariant) Render(lhs, rhs string) string {
	return lhs + " " + v.Operator + " " + rhs
}
