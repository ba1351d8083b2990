package astfront

import (
	"fmt"
	"strings"
)

// Family is the coarse arithmetic classification the catalogue
// branches on.
type Family int

const (
	// FamilyNone marks a type the catalogue has no variants for
	// (pointers, enums, classes, unions, dependent types — exclusion
	// rule 5).
	FamilyNone Family = iota
	FamilySignedInt
	FamilyUnsignedInt
	FamilyFloating
	FamilyBoolean
)

var unsignedBuiltins = map[string]bool{
	"unsigned char": true, "unsigned short": true, "unsigned int": true,
	"unsigned long": true, "unsigned long long": true,
}

var signedBuiltins = map[string]bool{
	"char": true, "signed char": true, "short": true, "int": true,
	"long": true, "long long": true,
}

var floatingBuiltins = map[string]bool{
	"float": true, "double": true, "long double": true,
}

var booleanBuiltins = map[string]bool{
	"_Bool": true, "bool": true,
}

// stripQualifiers removes the qualifier noise ("const ", "volatile ")
// and a trailing reference marker from a Clang qualType spelling, and
// reports whether a "volatile" qualifier and a reference were present.
func stripQualifiers(qualType string) (base string, isVolatile, isRef bool) {
	s := strings.TrimSpace(qualType)
	if strings.HasSuffix(s, "&") {
		isRef = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "&"))
	}
	for {
		switch {
		case strings.HasPrefix(s, "const "):
			s = strings.TrimPrefix(s, "const ")
		case strings.HasPrefix(s, "volatile "):
			isVolatile = true
			s = strings.TrimPrefix(s, "volatile ")
		case strings.HasSuffix(s, " const"):
			s = strings.TrimSuffix(s, " const")
		case strings.HasSuffix(s, " volatile"):
			isVolatile = true
			s = strings.TrimSuffix(s, " volatile")
		default:
			return strings.TrimSpace(s), isVolatile, isRef
		}
	}
}

// ClassifyType maps a Clang qualType spelling to its arithmetic Family.
// Only built-in arithmetic and boolean types are mutable per exclusion
// rule 5; everything else reports FamilyNone.
func ClassifyType(qualType string) Family {
	base, _, _ := stripQualifiers(qualType)
	switch {
	case unsignedBuiltins[base]:
		return FamilyUnsignedInt
	case signedBuiltins[base]:
		return FamilySignedInt
	case floatingBuiltins[base]:
		return FamilyFloating
	case booleanBuiltins[base]:
		return FamilyBoolean
	default:
		return FamilyNone
	}
}

// TypeDescriptor is the normalised type name of a mutated operand or
// expression. Name has spaces folded to underscores (e.g.
// "unsigned_int"); Ident renders it for the manifest's type fields and
// DispatcherName for generated dispatcher identifiers. Spelling keeps
// the natural (spaced) C++ type name alongside, for contexts — casts,
// lambda return types — where an identifier isn't what's wanted.
type TypeDescriptor struct {
	Name       string
	Spelling   string
	IsLValue   bool
	IsVolatile bool
}

// DescribeType builds a TypeDescriptor from a node's declared type and
// its value category.
func DescribeType(t *TypeInfo, isLValue bool) TypeDescriptor {
	if t == nil {
		return TypeDescriptor{}
	}
	base, isVolatile, _ := stripQualifiers(t.QualType)
	return TypeDescriptor{
		Name:       strings.ReplaceAll(base, " ", "_"),
		Spelling:   base,
		IsLValue:   isLValue,
		IsVolatile: isVolatile,
	}
}

// Ident renders the descriptor for the manifest's type fields (e.g.
// "unsigned_int", "volatile_int&"): spaces already folded to
// underscores by DescribeType, an "&" suffix
// for lvalues, and a "volatile_" prefix when the qualifier must
// propagate.
func (d TypeDescriptor) Ident() string {
	s := d.Name
	if d.IsVolatile {
		s = "volatile_" + s
	}
	if d.IsLValue {
		s += "&"
	}
	return s
}

// CppType renders the descriptor as an actual spelled C++ type, for use
// in casts and lambda return types where an identifier won't do.
func (d TypeDescriptor) CppType() string {
	s := d.Spelling
	if d.IsVolatile {
		s = "volatile " + s
	}
	if d.IsLValue {
		s += "&"
	}
	return s
}

// DispatcherName renders the descriptor for use inside a synthesised
// dispatcher identifier, where neither a space nor '&' can appear: the
// lvalue marker becomes a literal "_lvalue" suffix instead.
func (d TypeDescriptor) DispatcherName() string {
	s := d.Name
	if d.IsVolatile {
		s = "volatile_" + s
	}
	if d.IsLValue {
		s += "_lvalue"
	}
	return s
}

// literalKinds are the AST node kinds that are constant by construction.
var literalKinds = map[string]bool{
	"IntegerLiteral": true, "FloatingLiteral": true, "CXXBoolLiteralExpr": true,
	"CharacterLiteral": true,
}

// IsCompileTimeConstant reports whether n is, or is built purely out of,
// literal subexpressions — the flag attached to unary/binary operands
// and used to decide whether the lambda wrapper used for lazy
// re-evaluation can be omitted, since a constant has no side effects to
// defer.
func (n *Node) IsCompileTimeConstant() bool {
	if literalKinds[n.Kind] {
		return true
	}
	switch n.Kind {
	case "UnaryOperator", "ParenExpr", "ImplicitCastExpr", "ConstantExpr":
		for _, c := range n.Inner {
			if !c.IsCompileTimeConstant() {
				return false
			}
		}
		return len(n.Inner) > 0
	case "BinaryOperator":
		for _, c := range n.Inner {
			if !c.IsCompileTimeConstant() {
				return false
			}
		}
		return len(n.Inner) == 2
	default:
		return false
	}
}

// IsIntegerLiteralValue reports whether n is an IntegerLiteral spelling
// exactly want (e.g. "0" or "1").
func (n *Node) IsIntegerLiteralValue(want string) bool {
	return n.Kind == "IntegerLiteral" && n.Value == want
}

// IsFloatingLiteralValue reports whether n is a FloatingLiteral whose
// spelling parses to the same value as want (e.g. "0" or "1"); Clang
// spells floating literals in several equivalent ways ("0", "0.0",
// "0.000000e+00"), so comparison is by value, not by raw text.
func (n *Node) IsFloatingLiteralValue(want float64) bool {
	if n.Kind != "FloatingLiteral" {
		return false
	}
	v, ok := parseFloatLoose(n.Value)
	return ok && v == want
}

// IsNegativeOneLiteral reports whether n is the expression `-1`,
// represented by Clang as UnaryOperator{-, IntegerLiteral(1)}. The data
// model carries no is_negative_one_literal flag alongside
// is_integer_literal_zero/one, so this is derived straight from the
// front-end node kind rather than threaded as an extra manifest field;
// see DESIGN.md for why.
func (n *Node) IsNegativeOneLiteral() bool {
	if n.Kind != "UnaryOperator" || n.Opcode != "-" || len(n.Inner) != 1 {
		return false
	}
	return n.Inner[0].IsIntegerLiteralValue("1")
}

// IsBooleanLiteral reports whether n is the literal `true`/`false`,
// matching want.
func (n *Node) IsBooleanLiteral(want bool) bool {
	if n.Kind != "CXXBoolLiteralExpr" {
		return false
	}
	if want {
		return n.Value == "true" || n.Value == "1"
	}
	return n.Value == "false" || n.Value == "0"
}

func parseFloatLoose(s string) (float64, bool) {
	var v float64
	n, err := fmt.Sscan(s, &v)
	if err != nil || n != 1 {
		return 0, false
	}
	return v, true
}
