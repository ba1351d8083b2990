// Package rewriter turns a discovered, finalised mutation list into an
// instrumented translation unit: it synthesises the dispatcher
// functions, substitutes each site's call, extends and wraps statement
// removals, and inserts the once-per-TU prelude.
package rewriter

import (
	"fmt"

	"github.com/cmut-dev/cmut/internal/astfront"
	"github.com/cmut-dev/cmut/internal/catalogue"
	"github.com/cmut-dev/cmut/internal/ids"
	"github.com/cmut-dev/cmut/internal/mutation"
)

// Options controls one translation unit's rewrite pass.
type Options struct {
	Catalogue    catalogue.Options
	CoverageOnly bool
	Enabled      *EnabledSet
}

// EnabledSet restricts which variants the rewriter emits, per the CLI's
// --enabled-mutations-file flag: a variant is kept
// only if the global ID it would receive under this run's own dense,
// source-order allocation — computed the same way whether or not an
// EnabledSet is supplied — is a member. A nil EnabledSet, the common
// case, keeps every variant.
type EnabledSet struct {
	ids map[int32]bool
}

// NewEnabledSet builds an EnabledSet from a flat list of global IDs,
// typically every id present in a previously-decoded manifest file.
func NewEnabledSet(idList []int32) *EnabledSet {
	s := &EnabledSet{ids: make(map[int32]bool, len(idList))}
	for _, id := range idList {
		s.ids[id] = true
	}
	return s
}

func (s *EnabledSet) allows(id int32) bool {
	if s == nil {
		return true
	}
	return s.ids[id]
}

// nodeSpan returns a node's own byte range in the TU's source buffer.
func nodeSpan(n *astfront.Node) (begin, end int) {
	b, e := n.Range.SpellingBegin, n.Range.SpellingEnd
	return b.Offset, e.Offset + e.TokLen
}

// rewriteState threads the per-TU bookkeeping every site's edit
// builder needs: the buffer being sliced for verbatim operand text,
// the id allocator, the provisional (unfiltered) id counter an
// EnabledSet membership check is made against, and the dispatcher
// registry sites dedupe their declarations into.
type rewriteState struct {
	source   string
	firstID  int32
	alloc    *ids.Allocator
	provNext int32
	opts     Options
	registry *dispatcherRegistry
}

// filterSurviving advances the provisional counter by n regardless of
// outcome, so the numbering always matches what an unfiltered run over
// the same TU would assign, and reports which of the n candidates (in
// order) the Enabled set keeps.
func (st *rewriteState) filterSurviving(n int) []bool {
	keep := make([]bool, n)
	for i := 0; i < n; i++ {
		keep[i] = st.opts.Enabled.allows(st.provNext)
		st.provNext++
	}
	return keep
}

func recorderCall(localID int32) string {
	return fmt.Sprintf("__dredd_record_covered_mutants(%d); ", localID)
}

// Rewrite produces the instrumented source buffer for one translation
// unit. muts must be in source order, as Discover returns them; the
// mutations' GlobalID fields are assigned in place as a side effect, so
// the caller's manifest encode afterwards reflects the ids actually
// written into the generated code.
func Rewrite(source string, firstTopLevelDecl *astfront.Node, muts []*mutation.Mutation, alloc *ids.Allocator, opts Options) string {
	st := &rewriteState{
		source:   source,
		firstID:  alloc.Peek(),
		alloc:    alloc,
		provNext: alloc.Peek(),
		opts:     opts,
		registry: newDispatcherRegistry(),
	}

	var edits []Edit
	anyMutation := false
	for _, m := range muts {
		var e *Edit
		switch m.Kind {
		case mutation.KindRemoveStmt:
			e = st.buildRemoveStmt(m)
		case mutation.KindReplaceUnaryOperator:
			e = st.buildReplaceUnary(m)
		case mutation.KindReplaceBinaryOperator:
			e = st.buildReplaceBinary(m)
		case mutation.KindReplaceExpr:
			e = st.buildReplaceExpr(m)
		}
		if e != nil {
			edits = append(edits, *e)
			anyMutation = true
		}
	}

	body := Apply(source, edits)
	if !anyMutation || firstTopLevelDecl == nil {
		return body
	}

	prelude := BuildPrelude(st.registry.declarations())
	insertAt := firstTopLevelDecl.Range.SpellingBegin.Offset
	return body[:insertAt] + prelude + "\n" + body[insertAt:]
}

func (st *rewriteState) buildRemoveStmt(m *mutation.Mutation) *Edit {
	rs := m.RemoveStmt
	begin, origEnd := rs.Range.BeginOffset, rs.Range.EndOffset

	if st.opts.CoverageOnly {
		globalID := st.alloc.Reserve(1)
		m.GlobalID = globalID
		localID := globalID - st.firstID
		return &Edit{Begin: begin, End: begin, Render: func(string) string {
			return recorderCall(localID)
		}}
	}

	keep := st.filterSurviving(1)
	if !keep[0] {
		return nil
	}
	globalID := st.alloc.Reserve(1)
	m.GlobalID = globalID
	localID := globalID - st.firstID

	newEnd, overComment, overSemi, newline := extendRemoval(st.source, origEnd)
	rs.ExtendedOverComment = overComment
	rs.ExtendedOverSemi = overSemi
	trailing := " "
	if newline {
		trailing = "\n"
	}
	return &Edit{Begin: begin, End: newEnd, Render: func(inner string) string {
		return fmt.Sprintf("if (!__dredd_enabled_mutation(%d)) { %s }%s", localID, inner, trailing)
	}}
}

func (st *rewriteState) buildReplaceUnary(m *mutation.Mutation) *Edit {
	ru := m.ReplaceUnary
	n := ru.Expr
	operand := n.Inner[0]
	fam := astfront.ClassifyType(operand.Type.QualType)

	shape := catalogue.UnaryShape{
		Operator:          ru.Operator,
		IsFloatingOperand: fam == astfront.FamilyFloating,
	}
	candidates := catalogue.ReplaceUnaryOperatorVariants(shape, st.opts.Catalogue)

	if st.opts.CoverageOnly {
		globalID := st.alloc.Reserve(1)
		m.GlobalID = globalID
		localID := globalID - st.firstID
		begin, _ := nodeSpan(n)
		return &Edit{Begin: begin, End: begin, Render: func(string) string {
			return recorderCall(localID)
		}}
	}

	keep := st.filterSurviving(len(candidates))
	var surviving []catalogue.Variant
	for i, v := range candidates {
		if keep[i] {
			surviving = append(surviving, v)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	globalID := st.alloc.Reserve(len(surviving))
	m.GlobalID = globalID
	localID := globalID - st.firstID

	_, byLambda := wrapOperand(st.source[ru.OperandRange.BeginOffset:ru.OperandRange.EndOffset], ru.OperandType, operand.IsLValue(), ru.OperandIsConst)
	accessor := "arg"
	if byLambda {
		accessor = "arg()"
	}
	name := fmt.Sprintf("__dredd_replace_unary_operator_%s_%s", catalogue.UnaryOperatorTag(ru.Operator), ru.OperandType.DispatcherName())

	var rendered []string
	for _, v := range surviving {
		rendered = append(rendered, v.Render(accessor))
	}
	st.registry.declare(dispatcherSpec{
		name:       name,
		templated:  true,
		returnType: ru.ResultType.CppType(),
		variants:   rendered,
		fallback:   accessor,
	})

	begin, end := nodeSpan(n)
	return &Edit{Begin: begin, End: end, Priority: 1, Render: func(inner string) string {
		operandText := inner[ru.OperandRange.BeginOffset-begin : len(inner)-(end-ru.OperandRange.EndOffset)]
		argText, _ := wrapOperand(operandText, ru.OperandType, operand.IsLValue(), ru.OperandIsConst)
		return fmt.Sprintf("%s(%s, %d)", name, argText, localID)
	}}
}

func (st *rewriteState) buildReplaceBinary(m *mutation.Mutation) *Edit {
	rb := m.ReplaceBin
	n := rb.Expr
	lhsNode, rhsNode := n.Inner[0], n.Inner[1]
	fam := catalogue.ClassifyBinaryOperator(rb.Operator)
	floating := astfront.ClassifyType(lhsNode.Type.QualType) == astfront.FamilyFloating ||
		astfront.ClassifyType(rhsNode.Type.QualType) == astfront.FamilyFloating

	shape := catalogue.BinaryShape{
		Operator:                    rb.Operator,
		Family:                      fam,
		IsFloatingOperands:          floating,
		LHSIsModifiableLValue:       rb.LHSIsLval,
		RHSIsAdditiveIdentity:       rhsNode.IsIntegerLiteralValue("0") || rhsNode.IsFloatingLiteralValue(0),
		RHSIsMultiplicativeIdentity: rhsNode.IsIntegerLiteralValue("1") || rhsNode.IsFloatingLiteralValue(1),
	}
	candidates := catalogue.ReplaceBinaryOperatorVariants(shape, st.opts.Catalogue)

	if st.opts.CoverageOnly {
		globalID := st.alloc.Reserve(1)
		m.GlobalID = globalID
		localID := globalID - st.firstID
		begin, _ := nodeSpan(n)
		return &Edit{Begin: begin, End: begin, Render: func(string) string {
			return recorderCall(localID)
		}}
	}

	keep := st.filterSurviving(len(candidates))
	var surviving []catalogue.BinaryVariant
	for i, v := range candidates {
		if keep[i] {
			surviving = append(surviving, v)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	globalID := st.alloc.Reserve(len(surviving))
	m.GlobalID = globalID
	localID := globalID - st.firstID

	lhsText := st.source[rb.LHSRange.BeginOffset:rb.LHSRange.EndOffset]
	rhsText := st.source[rb.RHSRange.BeginOffset:rb.RHSRange.EndOffset]
	name := fmt.Sprintf("__dredd_replace_binary_operator_%s_%s_%s", catalogue.BinaryOperatorTag(rb.Operator), rb.LHSType.DispatcherName(), rb.RHSType.DispatcherName())

	var rendered []string
	for _, v := range surviving {
		rendered = append(rendered, v.Render("lhs", "rhs"))
	}
	// Binary operands are passed by value, never lambda-wrapped (see
	// DESIGN.md's note on short-circuit operators), so the
	// dispatcher can take their real spelled types directly with no
	// template needed.
	st.registry.declare(dispatcherSpec{
		name:       name,
		templated:  false,
		returnType: rb.LHSType.CppType(),
		paramTypes: []string{rb.LHSType.CppType(), rb.RHSType.CppType()},
		variants:   rendered,
		fallback:   fmt.Sprintf("lhs %s rhs", rb.Operator),
	})

	begin, end := nodeSpan(n)
	return &Edit{Begin: begin, End: end, Priority: 1, Render: func(string) string {
		return fmt.Sprintf("%s(%s, %s, %d)", name, lhsText, rhsText, localID)
	}}
}

func (st *rewriteState) buildReplaceExpr(m *mutation.Mutation) *Edit {
	rx := m.ReplaceExpr
	n := rx.Expr
	fam := astfront.ClassifyType(n.Type.QualType)

	shape := catalogue.ExprShape{
		Family:                fam,
		IsLValue:              rx.Flags.IsLValue,
		ShortCircuitOp:        rx.Flags.ShortCircuitOp,
		IsIntegerLiteralZero:  rx.Flags.IsIntegerLiteralZero,
		IsIntegerLiteralOne:   rx.Flags.IsIntegerLiteralOne,
		IsFloatingLiteralZero: rx.Flags.IsFloatingLiteralZero,
		IsFloatingLiteralOne:  rx.Flags.IsFloatingLiteralOne,
		IsNegativeOneLiteral:  n.IsNegativeOneLiteral(),
		IsBooleanLiteralTrue:  n.IsBooleanLiteral(true),
		IsBooleanLiteralFalse: n.IsBooleanLiteral(false),
	}
	candidates := catalogue.ReplaceExprVariants(shape, st.opts.Catalogue)

	if st.opts.CoverageOnly {
		globalID := st.alloc.Reserve(1)
		m.GlobalID = globalID
		localID := globalID - st.firstID
		begin, _ := nodeSpan(n)
		return &Edit{Begin: begin, End: begin, Render: func(string) string {
			return recorderCall(localID)
		}}
	}

	keep := st.filterSurviving(len(candidates))
	var surviving []catalogue.Variant
	for i, v := range candidates {
		if keep[i] {
			surviving = append(surviving, v)
		}
	}
	if len(surviving) == 0 {
		return nil
	}

	globalID := st.alloc.Reserve(len(surviving))
	m.GlobalID = globalID
	localID := globalID - st.firstID

	begin, end := nodeSpan(n)
	original := st.source[begin:end]
	_, byLambda := wrapOperand(original, rx.ExprType, rx.Flags.IsLValue, rx.IsConstant)
	accessor := "arg"
	if byLambda {
		accessor = "arg()"
	}

	var name string
	if rx.Flags.IsBooleanShortCircuitLeft && len(surviving) == 1 {
		name = "__dredd_replace_expr_" + surviving[0].Name
	} else {
		name = "__dredd_replace_expr_" + rx.ExprType.DispatcherName()
		if rx.IsConstant {
			name += "_constant"
		}
	}

	var rendered []string
	for _, v := range surviving {
		rendered = append(rendered, v.Render(accessor))
	}
	st.registry.declare(dispatcherSpec{
		name:       name,
		templated:  true,
		returnType: rx.ExprType.CppType(),
		variants:   rendered,
		fallback:   accessor,
	})

	return &Edit{Begin: begin, End: end, Priority: 2, Render: func(inner string) string {
		argText, _ := wrapOperand(inner, rx.ExprType, rx.Flags.IsLValue, rx.IsConstant)
		return fmt.Sprintf("%s(%s, %d)", name, argText, localID)
	}}
}
