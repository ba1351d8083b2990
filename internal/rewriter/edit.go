package rewriter

import (
	"sort"
	"strings"
)

// Edit describes one textual rewrite anchored to a byte range of the
// original buffer. Render receives the range's own text after any
// edits nested strictly inside it have already been applied, so a
// mutation sharing its node's full range with another (a ReplaceExpr
// wrapping the same subexpression a ReplaceBinaryOperator also claims)
// or a RemoveStmt enclosing both composes correctly: the innermost
// edit's replacement becomes the text the next one out wraps.
type Edit struct {
	Begin, End int
	// Priority breaks ties when two edits share the exact same range:
	// the higher-priority edit is treated as the outer one.
	Priority int
	Render   func(inner string) string
}

// Apply splices a set of edits into src. Every pair of edits must be
// either disjoint or one properly containing the other — true by
// construction here, since mutation ranges mirror AST nesting.
func Apply(src string, edits []Edit) string {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Begin != sorted[j].Begin {
			return sorted[i].Begin < sorted[j].Begin
		}
		if sorted[i].End != sorted[j].End {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Priority > sorted[j].Priority
	})
	return renderRange(src, sorted, 0, len(src))
}

// renderRange emits src[lo:hi] verbatim except where a top-level edit
// (one of edits not nested inside another) claims a sub-range; each
// such edit's own inner text is rendered recursively first.
func renderRange(src string, edits []Edit, lo, hi int) string {
	var b strings.Builder
	pos := lo
	i := 0
	for i < len(edits) {
		e := edits[i]
		j := i + 1
		for j < len(edits) && edits[j].Begin < e.End {
			j++
		}
		b.WriteString(src[pos:e.Begin])
		inner := renderRange(src, edits[i+1:j], e.Begin, e.End)
		b.WriteString(e.Render(inner))
		pos = e.End
		i = j
	}
	b.WriteString(src[pos:hi])
	return b.String()
}
