package rewriter

import (
	"fmt"
	"strings"

	"github.com/cmut-dev/cmut/internal/astfront"
)

// wrapOperand implements the call-site substitution rule. A
// compile-time constant is passed unwrapped, since it has no side
// effects a lazily-reevaluated dispatcher branch would need to defer.
// Anything else is wrapped in a capturing lambda so the dispatcher can
// choose, at its own call, whether to evaluate the original operand at
// all; an lvalue operand's wrapper returns a reference so an assigning
// variant (++/--) still targets the original storage.
func wrapOperand(original string, td astfront.TypeDescriptor, isLValue, isConstant bool) (argText string, byLambda bool) {
	if isConstant {
		return original, false
	}
	t := td.CppType()
	if isLValue && !strings.HasSuffix(t, "&") {
		t += "&"
	}
	return fmt.Sprintf("[&]() -> %s { return static_cast<%s>(%s); }", t, t, original), true
}

// extendRemoval implements the "Statement removal" token-range
// extension: greedily over trailing comments, then over one trailing
// semicolon. overComment and overSemi report which extensions fired,
// and trailingNewline decides the wrap's own trailing whitespace: a
// newline when a line comment was absorbed without a following
// semicolon, a space otherwise.
func extendRemoval(src string, end int) (newEnd int, overComment, overSemi, trailingNewline bool) {
	pos := end
	absorbedLineComment := false
	for {
		start := pos
		for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t') {
			pos++
		}
		if strings.HasPrefix(src[pos:], "//") {
			if nl := strings.IndexByte(src[pos:], '\n'); nl < 0 {
				pos = len(src)
			} else {
				pos += nl
			}
			absorbedLineComment = true
			overComment = true
			continue
		}
		if strings.HasPrefix(src[pos:], "/*") {
			if close := strings.Index(src[pos:], "*/"); close < 0 {
				pos = len(src)
			} else {
				pos += close + 2
			}
			absorbedLineComment = false
			overComment = true
			continue
		}
		if pos == start {
			break
		}
	}

	wsBeforeSemi := pos
	for wsBeforeSemi < len(src) && (src[wsBeforeSemi] == ' ' || src[wsBeforeSemi] == '\t') {
		wsBeforeSemi++
	}
	if wsBeforeSemi < len(src) && src[wsBeforeSemi] == ';' {
		pos = wsBeforeSemi + 1
		overSemi = true
	}
	return pos, overComment, overSemi, absorbedLineComment && !overSemi
}
