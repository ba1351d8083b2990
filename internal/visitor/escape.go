package visitor

import "github.com/cmut-dev/cmut/internal/astfront"

// escapeFlags records, for the subtree rooted at a statement, which of
// exclusion rule 6's forbidden escapes it transitively contains. Flags
// are cleared as the walk ascends past the binding construct that
// catches them: a loop absorbs break/continue, a switch absorbs
// break/case. Flags never cross a function/lambda boundary because the
// walk does not propagate escapeFlags past one — it starts a fresh
// accumulation for each function body.
type escapeFlags struct {
	hasReturn   bool
	hasGoto     bool
	hasLabel    bool
	hasBreak    bool
	hasContinue bool
	hasCase     bool
}

func (a escapeFlags) or(b escapeFlags) escapeFlags {
	return escapeFlags{
		hasReturn:   a.hasReturn || b.hasReturn,
		hasGoto:     a.hasGoto || b.hasGoto,
		hasLabel:    a.hasLabel || b.hasLabel,
		hasBreak:    a.hasBreak || b.hasBreak,
		hasContinue: a.hasContinue || b.hasContinue,
		hasCase:     a.hasCase || b.hasCase,
	}
}

// blocksRemoval reports whether the flags disqualify the statement they
// were computed for from RemoveStmt eligibility.
func (f escapeFlags) blocksRemoval() bool {
	return f.hasReturn || f.hasGoto || f.hasLabel || f.hasBreak || f.hasContinue || f.hasCase
}

var loopKinds = map[string]bool{
	"ForStmt": true, "WhileStmt": true, "DoStmt": true, "CXXForRangeStmt": true,
}

// computeEscape walks n post-order, memoising each node's escape flags
// so that RemoveStmt candidacy for every statement in a compound can be
// looked up in O(1) rather than re-walked from scratch, by propagating
// each flag upward during the post-order walk, keeping the whole pass
// linear in the size of the TU.
func computeEscape(n *astfront.Node, memo map[*astfront.Node]escapeFlags) escapeFlags {
	if f, ok := memo[n]; ok {
		return f
	}
	var f escapeFlags
	switch n.Kind {
	case "ReturnStmt":
		f.hasReturn = true
	case "GotoStmt":
		f.hasGoto = true
	case "LabelStmt":
		f.hasLabel = true
	case "BreakStmt":
		f.hasBreak = true
	case "ContinueStmt":
		f.hasContinue = true
	case "CaseStmt", "DefaultStmt":
		f.hasCase = true
	}
	for _, c := range n.Inner {
		f = f.or(computeEscape(c, memo))
	}
	switch {
	case loopKinds[n.Kind]:
		f.hasBreak = false
		f.hasContinue = false
	case n.Kind == "SwitchStmt":
		f.hasBreak = false
		f.hasCase = false
	case functionLikeKinds[n.Kind]:
		// A nested function, method, or lambda is its own binding
		// construct for every escape: a return/goto/label/break/continue/
		// case inside it says nothing about the enclosing statement.
		f = escapeFlags{}
	}
	memo[n] = f
	return f
}
