// Package manifestio encodes and decodes the mutation manifest: the
// per-translation-unit JSON document pairing a finalised mutation tree
// with the dense global IDs the rewriter assigned to it.
package manifestio

import (
	"encoding/json"
	"io"

	"github.com/cmut-dev/cmut/internal/mutation"
	"github.com/cmut-dev/cmut/internal/tree"
)

// Position is a 1-based source position.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"col"`
}

// Flags mirrors mutation.ReplaceExprFlags on the wire.
type Flags struct {
	IsLValue                  bool   `json:"is_lvalue"`
	IsBooleanShortCircuitLeft bool   `json:"is_boolean_short_circuit_left"`
	ShortCircuitOp            string `json:"short_circuit_op,omitempty"`
	IsIntegerLiteralZero      bool   `json:"is_integer_literal_zero"`
	IsIntegerLiteralOne       bool   `json:"is_integer_literal_one"`
	IsFloatingLiteralZero     bool   `json:"is_floating_literal_zero"`
	IsFloatingLiteralOne      bool   `json:"is_floating_literal_one"`
}

// Mutation is the flattened wire representation of the closed mutation
// union. id/start/end/snippet are common to every kind and are never
// omitted even when zero, per the manifest schema's "primitive fields
// are always printed" rule; the remaining fields are omitted when the
// Kind does not define them, since each variant has a distinct field
// set rather than a shared superset.
type Mutation struct {
	Kind    string   `json:"kind"`
	ID      int32    `json:"id"`
	Start   Position `json:"start"`
	End     Position `json:"end"`
	Snippet string   `json:"snippet"`

	Operator    string `json:"operator,omitempty"`
	OperandType string `json:"operand_type,omitempty"`
	LHSType     string `json:"lhs_type,omitempty"`
	RHSType     string `json:"rhs_type,omitempty"`
	ExprType    string `json:"expr_type,omitempty"`
	Flags       *Flags `json:"flags,omitempty"`
}

// Node is the wire representation of a MutationTreeNode.
type Node struct {
	Mutations []Mutation `json:"mutations"`
	Children  []*Node    `json:"children"`
}

// File is one translation unit's manifest entry.
type File struct {
	FilePath              string `json:"file_path"`
	FirstMutationIDInFile int32  `json:"first_mutation_id_in_file"`
	Tree                  *Node  `json:"tree"`
}

// Encode converts a finalised mutation tree into its wire form.
func Encode(filePath string, firstID int32, root *tree.Node) *File {
	return &File{FilePath: filePath, FirstMutationIDInFile: firstID, Tree: convertNode(root)}
}

func convertNode(n *tree.Node) *Node {
	out := &Node{Mutations: make([]Mutation, 0, len(n.Mutations)), Children: make([]*Node, 0, len(n.Children))}
	for _, m := range n.Mutations {
		out.Mutations = append(out.Mutations, convertMutation(m))
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, convertNode(c))
	}
	return out
}

func convertMutation(m *mutation.Mutation) Mutation {
	r := m.SourceRange()
	base := Mutation{
		ID:      m.GlobalID,
		Start:   Position{Line: r.Start.Line, Column: r.Start.Column},
		End:     Position{Line: r.End.Line, Column: r.End.Column},
		Snippet: r.Snippet,
	}
	switch m.Kind {
	case mutation.KindRemoveStmt:
		base.Kind = "RemoveStmt"
	case mutation.KindReplaceUnaryOperator:
		base.Kind = "ReplaceUnaryOp"
		base.Operator = m.ReplaceUnary.Operator
		base.OperandType = m.ReplaceUnary.OperandType.Ident()
	case mutation.KindReplaceBinaryOperator:
		base.Kind = "ReplaceBinaryOp"
		base.Operator = m.ReplaceBin.Operator
		base.LHSType = m.ReplaceBin.LHSType.Ident()
		base.RHSType = m.ReplaceBin.RHSType.Ident()
	case mutation.KindReplaceExpr:
		base.Kind = "ReplaceExpr"
		base.ExprType = m.ReplaceExpr.ExprType.Ident()
		flags := m.ReplaceExpr.Flags
		base.Flags = &Flags{
			IsLValue:                  flags.IsLValue,
			IsBooleanShortCircuitLeft: flags.IsBooleanShortCircuitLeft,
			ShortCircuitOp:            flags.ShortCircuitOp,
			IsIntegerLiteralZero:      flags.IsIntegerLiteralZero,
			IsIntegerLiteralOne:       flags.IsIntegerLiteralOne,
			IsFloatingLiteralZero:     flags.IsFloatingLiteralZero,
			IsFloatingLiteralOne:      flags.IsFloatingLiteralOne,
		}
	}
	return base
}

// Marshal renders a File under the manifest's canonical whitespace
// policy (always-indented, so two encodes of the same tree are
// byte-identical — invariant #6).
func Marshal(f *File) ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// Decode reads one manifest document.
func Decode(r io.Reader) (*File, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Document is the multi-file envelope the driver writes for a run over
// more than one translation unit.
type Document struct {
	Files []*File `json:"files"`
}

// DecodeDocument reads a multi-file manifest document, the shape
// produced by a full run over N translation units.
func DecodeDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// CollectIDs flattens every mutation ID present in a decoded manifest
// document, for building the --enabled-mutations-file restriction set
// a subsequent run's rewriter.EnabledSet is constructed from.
func CollectIDs(d *Document) []int32 {
	var ids []int32
	for _, f := range d.Files {
		if f.Tree == nil {
			continue
		}
		collectNodeIDs(f.Tree, &ids)
	}
	return ids
}

func collectNodeIDs(n *Node, out *[]int32) {
	for _, m := range n.Mutations {
		*out = append(*out, m.ID)
	}
	for _, c := range n.Children {
		collectNodeIDs(c, out)
	}
}
