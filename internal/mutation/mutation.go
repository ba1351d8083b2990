// Package mutation holds the data model of a mutation site: the four
// mutation variants, modelled as a closed sum type — a tagged variant
// of four cases, each a plain record, dispatched by a single switch,
// in place of an open inheritance hierarchy.
package mutation

import (
	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/srcrange"
)

// Kind discriminates the four mutation variants.
type Kind int

const (
	KindRemoveStmt Kind = iota
	KindReplaceUnaryOperator
	KindReplaceBinaryOperator
	KindReplaceExpr
)

func (k Kind) String() string {
	switch k {
	case KindRemoveStmt:
		return "RemoveStmt"
	case KindReplaceUnaryOperator:
		return "ReplaceUnaryOperator"
	case KindReplaceBinaryOperator:
		return "ReplaceBinaryOperator"
	case KindReplaceExpr:
		return "ReplaceExpr"
	default:
		return "Unknown"
	}
}

// RemoveStmt is the payload of a statement-removal mutation.
type RemoveStmt struct {
	Stmt                *astfront.Node
	Range               srcrange.Info
	ExtendedOverComment bool
	ExtendedOverSemi    bool
}

// ReplaceUnaryOperator is the payload of a unary-operator mutation.
type ReplaceUnaryOperator struct {
	Expr           *astfront.Node
	Operator       string // "+", "-", "~", "!", "++pre", "--pre", "++post", "--post"
	OperandType    astfront.TypeDescriptor
	ResultType     astfront.TypeDescriptor
	OperandRange   srcrange.Info
	OperandIsConst bool
}

// ReplaceBinaryOperator is the payload of a binary-operator mutation.
type ReplaceBinaryOperator struct {
	Expr      *astfront.Node
	Operator  string
	LHSType   astfront.TypeDescriptor
	RHSType   astfront.TypeDescriptor
	LHSRange  srcrange.Info
	RHSRange  srcrange.Info
	LHSIsLval bool // left operand is a modifiable lvalue (assignment-family eligibility)
}

// ReplaceExprFlags are the boolean classifications a ReplaceExpr
// variant is selected against.
type ReplaceExprFlags struct {
	IsLValue                  bool
	IsBooleanShortCircuitLeft bool
	ShortCircuitOp            string // "&&" or "||", valid only when IsBooleanShortCircuitLeft
	IsIntegerLiteralZero      bool
	IsIntegerLiteralOne       bool
	IsFloatingLiteralZero     bool
	IsFloatingLiteralOne      bool
}

// ReplaceExpr is the payload of a general expression-replacement
// mutation.
type ReplaceExpr struct {
	Expr       *astfront.Node
	ExprType   astfront.TypeDescriptor
	Range      srcrange.Info
	Flags      ReplaceExprFlags
	IsConstant bool
}

// Mutation is one instrumented mutation site, exactly one of whose
// payload fields is non-nil depending on Kind.
type Mutation struct {
	Kind Kind

	RemoveStmt   *RemoveStmt
	ReplaceUnary *ReplaceUnaryOperator
	ReplaceBin   *ReplaceBinaryOperator
	ReplaceExpr  *ReplaceExpr

	// GlobalID is assigned lazily by the rewriter during the rewrite
	// pass, never at discovery time; it is -1 until then.
	GlobalID int32
}

// SourceRange returns the range recorded for the mutation, regardless of
// variant: the statement's range for RemoveStmt, the expression's range
// for ReplaceExpr, the operand's range for ReplaceUnaryOperator and the
// left operand's range for ReplaceBinaryOperator.
func (m *Mutation) SourceRange() srcrange.Info {
	switch m.Kind {
	case KindRemoveStmt:
		return m.RemoveStmt.Range
	case KindReplaceUnaryOperator:
		return m.ReplaceUnary.OperandRange
	case KindReplaceBinaryOperator:
		return m.ReplaceBin.LHSRange
	case KindReplaceExpr:
		return m.ReplaceExpr.Range
	default:
		return srcrange.Info{}
	}
}

// Node returns the underlying AST node the mutation attaches to.
func (m *Mutation) Node() *astfront.Node {
	switch m.Kind {
	case KindRemoveStmt:
		return m.RemoveStmt.Stmt
	case KindReplaceUnaryOperator:
		return m.ReplaceUnary.Expr
	case KindReplaceBinaryOperator:
		return m.ReplaceBin.Expr
	case KindReplaceExpr:
		return m.ReplaceExpr.Expr
	default:
		return nil
	}
}

// NewRemoveStmt builds a RemoveStmt mutation.
func NewRemoveStmt(p RemoveStmt) *Mutation {
	return &Mutation{Kind: KindRemoveStmt, RemoveStmt: &p, GlobalID: -1}
}

// NewReplaceUnaryOperator builds a ReplaceUnaryOperator mutation.
func NewReplaceUnaryOperator(p ReplaceUnaryOperator) *Mutation {
	return &Mutation{Kind: KindReplaceUnaryOperator, ReplaceUnary: &p, GlobalID: -1}
}

// NewReplaceBinaryOperator builds a ReplaceBinaryOperator mutation.
func NewReplaceBinaryOperator(p ReplaceBinaryOperator) *Mutation {
	return &Mutation{Kind: KindReplaceBinaryOperator, ReplaceBin: &p, GlobalID: -1}
}

// NewReplaceExpr builds a ReplaceExpr mutation.
func NewReplaceExpr(p ReplaceExpr) *Mutation {
	return &Mutation{Kind: KindReplaceExpr, ReplaceExpr: &p, GlobalID: -1}
}
