package astfront

import (
	"encoding/json"
	"fmt"
	"io"
)

// rawLoc mirrors a single location object from a Clang AST JSON dump.
// Clang elides fields that are unchanged from the previous location it
// printed (most commonly File), so Offset/Line/Column/File may each be
// individually absent; the carry resolver below (resolve/resolvePair)
// fills them in from whatever the enclosing node last saw.
type rawLoc struct {
	File         string  `json:"file,omitempty"`
	Line         int     `json:"line,omitempty"`
	Col          int     `json:"col,omitempty"`
	Offset       int     `json:"offset,omitempty"`
	TokLen       int     `json:"tokLen,omitempty"`
	SpellingLoc  *rawLoc `json:"spellingLoc,omitempty"`
	ExpansionLoc *rawLoc `json:"expansionLoc,omitempty"`
}

type rawRange struct {
	Begin *rawLoc `json:"begin,omitempty"`
	End   *rawLoc `json:"end,omitempty"`
}

type rawType struct {
	QualType string `json:"qualType,omitempty"`
}

type rawNode struct {
	ID            string     `json:"id,omitempty"`
	Kind          string     `json:"kind,omitempty"`
	Name          string     `json:"name,omitempty"`
	Loc           *rawLoc    `json:"loc,omitempty"`
	Range         *rawRange  `json:"range,omitempty"`
	Type          *rawType   `json:"type,omitempty"`
	ValueCategory string     `json:"valueCategory,omitempty"`
	Opcode        string     `json:"opcode,omitempty"`
	Value         string     `json:"value,omitempty"`
	IsImplicit    bool       `json:"isImplicit,omitempty"`
	IsPostfix     bool       `json:"isPostfix,omitempty"`
	Inner         []*rawNode `json:"inner,omitempty"`
}

// carry is the "last known" state used to fill in fields Clang elided
// because they repeat the previous location it printed.
type carry struct {
	file string
	line int
	col  int
}

func (c *carry) resolve(l *rawLoc) Loc {
	if l == nil {
		return Loc{File: c.file, Line: c.line, Column: c.col}
	}
	if l.File != "" {
		c.file = l.File
	}
	if l.Line != 0 {
		c.line = l.Line
	}
	if l.Col != 0 {
		c.col = l.Col
	}
	return Loc{File: c.file, Line: c.line, Column: c.col, Offset: l.Offset, TokLen: l.TokLen}
}

// resolvePair resolves a spelling/expansion pair sharing the same
// nominal location: the plain fields describe the spelling location
// unless overridden by an explicit spellingLoc, and the expansion
// location defaults to the spelling location when no expansionLoc is
// present (i.e. the token was not macro-expanded).
func resolvePair(c *carry, l *rawLoc) (spelling, expansion Loc) {
	if l == nil {
		loc := c.resolve(nil)
		return loc, loc
	}
	if l.SpellingLoc != nil {
		spelling = c.resolve(l.SpellingLoc)
	} else {
		spelling = c.resolve(&rawLoc{File: l.File, Line: l.Line, Col: l.Col, Offset: l.Offset, TokLen: l.TokLen})
	}
	if l.ExpansionLoc != nil {
		expansion = c.resolve(l.ExpansionLoc)
	} else {
		expansion = spelling
	}
	return spelling, expansion
}

// Parse decodes a Clang-style AST JSON dump into a Node tree rooted at
// the translation unit, with parent pointers linked.
func Parse(r io.Reader) (*Node, error) {
	var root rawNode
	if err := json.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("astfront: decode ast dump: %w", err)
	}
	c := &carry{}
	n := convert(&root, c)
	Link(n)
	return n, nil
}

func convert(raw *rawNode, c *carry) *Node {
	n := &Node{
		ID:            raw.ID,
		Kind:          raw.Kind,
		Name:          raw.Name,
		ValueCategory: raw.ValueCategory,
		Opcode:        raw.Opcode,
		Value:         raw.Value,
		IsImplicit:    raw.IsImplicit,
		IsPostfix:     raw.IsPostfix,
	}
	if raw.Type != nil {
		n.Type = &TypeInfo{QualType: raw.Type.QualType}
	}
	if raw.Range != nil {
		sb, eb := resolvePair(c, raw.Range.Begin)
		se, ee := resolvePair(c, raw.Range.End)
		n.Range = Range{SpellingBegin: sb, SpellingEnd: se, ExpansionBegin: eb, ExpansionEnd: ee}
	} else if raw.Loc != nil {
		sb, eb := resolvePair(c, raw.Loc)
		n.Range = Range{SpellingBegin: sb, SpellingEnd: sb, ExpansionBegin: eb, ExpansionEnd: eb}
	}
	for _, child := range raw.Inner {
		n.Inner = append(n.Inner, convert(child, c))
	}
	return n
}
