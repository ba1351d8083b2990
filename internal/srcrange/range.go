// Package srcrange canonicalises token ranges into the (line, column)
// pairs and elided source snippets recorded in the mutation manifest.
package srcrange

import "unicode/utf8"

// Position is a 1-based spelling location.
type Position struct {
	Line   int
	Column int
}

// Info is the canonical (startLine, startCol, endLine, endCol, snippet)
// tuple attached to every mutation in the manifest. BeginOffset/EndOffset
// are not part of the manifest wire format but carry the byte range the
// rewriter needs to splice the original buffer; EndOffset is exclusive.
type Info struct {
	Start       Position
	End         Position
	Snippet     string
	BeginOffset int
	EndOffset   int
}

const (
	maxSnippetRunes = 36
	keepHead        = 10
	keepTail        = 10
	ellipsis        = " … [snip] … "
)

// Elide applies the snippet elision law: raw text no longer than 36
// characters is kept verbatim; longer text keeps its first 10 and last
// 10 characters, joined by the fixed ellipsis marker. The law is
// symmetric by construction, since prefix and suffix are each taken
// directly from raw.
func Elide(raw string) string {
	if utf8.RuneCountInString(raw) <= maxSnippetRunes {
		return raw
	}
	runes := []rune(raw)
	head := string(runes[:keepHead])
	tail := string(runes[len(runes)-keepTail:])
	return head + ellipsis + tail
}

// New builds a range from explicit 1-based endpoints and the raw text of
// the token range (used for the snippet). end is exclusive of its own
// text, i.e. it names the position one past the final token.
func New(startLine, startCol, endLine, endCol int, raw string) Info {
	return Info{
		Start:   Position{Line: startLine, Column: startCol},
		End:     Position{Line: endLine, Column: endCol},
		Snippet: Elide(raw),
	}
}

// NewWithOffsets is New plus the byte-offset pair the rewriter needs to
// splice the original buffer; endOffset is exclusive.
func NewWithOffsets(startLine, startCol, endLine, endCol, beginOffset, endOffset int, raw string) Info {
	i := New(startLine, startCol, endLine, endCol, raw)
	i.BeginOffset = beginOffset
	i.EndOffset = endOffset
	return i
}

// TextBetween extracts the verbatim text of a byte-offset range from a
// translation unit's source buffer, endOffset exclusive. Out-of-bounds
// or empty ranges return "" rather than panicking, since a front end
// that omits tokLen leaves endOffset equal to beginOffset.
func TextBetween(buf string, beginOffset, endOffset int) string {
	if beginOffset < 0 || endOffset > len(buf) || beginOffset >= endOffset {
		return ""
	}
	return buf[beginOffset:endOffset]
}
