// Package tree implements the mutation tree: a hierarchical container
// mirroring lexical nesting (translation unit -> declaration stack ->
// statement block -> mutation), with prune-empty and
// compress-single-child finalisation transforms.
package tree

import "github.com/cmut-dev/cmut/internal/mutation"

// Node is one level of the mutation tree.
type Node struct {
	Mutations []*mutation.Mutation
	Children  []*Node
}

// NewNode returns an empty tree node.
func NewNode() *Node {
	return &Node{}
}

// AddMutation appends m to this node's own mutation list. Mutations are
// appended to the innermost currently-open node as the visitor descends.
func (n *Node) AddMutation(m *mutation.Mutation) {
	n.Mutations = append(n.Mutations, m)
}

// AddChild appends and returns a new child node, used when the visitor
// enters a declaration or a compound statement.
func (n *Node) AddChild() *Node {
	c := NewNode()
	n.Children = append(n.Children, c)
	return c
}

// IsEmpty reports whether the subtree rooted at n transitively contains
// no mutations.
func (n *Node) IsEmpty() bool {
	if len(n.Mutations) > 0 {
		return false
	}
	for _, c := range n.Children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Count returns the total number of mutations in the subtree rooted at
// n.
func (n *Node) Count() int {
	total := len(n.Mutations)
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Finalize drops every mutation an EnabledSet elided entirely (the
// rewriter leaves its GlobalID at the constructor's -1 sentinel rather
// than assigning one, since a fully-elided site never reserves a global
// ID range), prunes empty subtrees, and compresses single-child,
// zero-own-mutation chains, returning the node the caller should treat
// as the tree's root from here on — n itself, if n keeps at least one
// mutation or at least two children, or the single surviving
// descendant n collapses into otherwise. A translation unit with
// exactly one top-level declaration is the common case this matters
// for: Discover's root starts with zero own mutations and one child,
// so it is itself subject to collapsing, not just its descendants.
// Finalize is idempotent: finalising an already-finalised tree returns
// it unchanged, since pruneElided and pruneEmpty find nothing left to
// remove and collapseSubtree finds no remaining zero-mutation
// single-child node to collapse.
func (n *Node) Finalize() *Node {
	n.pruneElided()
	n.pruneEmpty()
	return collapseSubtree(n)
}

// pruneElided removes every mutation left at its constructor's -1
// GlobalID sentinel: Rewrite assigns this sentinel's replacement only
// when at least one of a site's variants survives an EnabledSet
// restriction, so a mutation still carrying it here had every variant
// elided and must not reach the manifest as a dangling, ID-less entry.
func (n *Node) pruneElided() {
	kept := n.Mutations[:0]
	for _, m := range n.Mutations {
		if m.GlobalID >= 0 {
			kept = append(kept, m)
		}
	}
	n.Mutations = kept
	for _, c := range n.Children {
		c.pruneElided()
	}
}

func (n *Node) pruneEmpty() {
	kept := n.Children[:0]
	for _, c := range n.Children {
		c.pruneEmpty()
		if !c.IsEmpty() {
			kept = append(kept, c)
		}
	}
	n.Children = kept
}

// collapseSubtree compresses every single-child, zero-own-mutation
// chain within the subtree rooted at n, including n itself, and
// returns the node that takes n's place.
func collapseSubtree(n *Node) *Node {
	for i, c := range n.Children {
		n.Children[i] = collapseSubtree(c)
	}
	return collapseChain(n)
}

// collapseChain absorbs a node's child while the node itself contributes
// no mutations of its own and has exactly one child, removing
// uninformative single-child chains produced by nested blocks.
func collapseChain(n *Node) *Node {
	for len(n.Mutations) == 0 && len(n.Children) == 1 {
		n = n.Children[0]
	}
	return n
}
