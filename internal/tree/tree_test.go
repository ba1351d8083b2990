package tree

import (
	"testing"

	"github.com/cmut-dev/cmut/internal/mutation"
)

func sampleMutation() *mutation.Mutation {
	m := mutation.NewReplaceExpr(mutation.ReplaceExpr{})
	m.GlobalID = 0
	return m
}

func TestFinalizePrunesEmptySubtrees(t *testing.T) {
	root := NewNode()
	empty := root.AddChild()
	empty.AddChild()
	withMutation := root.AddChild()
	withMutation.AddMutation(sampleMutation())

	root.Finalize()

	if len(root.Children) != 1 {
		t.Fatalf("expected only the non-empty child to survive, got %d children", len(root.Children))
	}
	if root.Children[0] != withMutation {
		t.Fatalf("expected surviving child to be the one holding the mutation")
	}
}

func TestFinalizeCompressesSingleChildChains(t *testing.T) {
	root := NewNode()
	a := root.AddChild()
	b := a.AddChild()
	c := b.AddChild()
	c.AddMutation(sampleMutation())
	// Give root a second child so root itself isn't eligible for
	// collapsing — this test is about the a->b->c chain underneath it,
	// not the root; TestFinalizeCollapsesRootItself below covers that.
	other := root.AddChild()
	other.AddMutation(sampleMutation())

	root.Finalize()

	if len(root.Children) != 2 {
		t.Fatalf("expected two children after compression, got %d", len(root.Children))
	}
	if root.Children[0] != c {
		t.Fatalf("expected the chain a->b->c to collapse directly to c")
	}
}

// TestFinalizeCollapsesRootItself exercises the case a translation
// unit with exactly one top-level declaration always hits: a root with
// zero own mutations and, after pruning, exactly one surviving child.
// Finalize's return value, not the receiver, must reflect the
// collapse.
func TestFinalizeCollapsesRootItself(t *testing.T) {
	root := NewNode()
	decl := root.AddChild()
	stmt := decl.AddChild()
	stmt.AddMutation(sampleMutation())

	finalRoot := root.Finalize()

	if finalRoot != stmt {
		t.Fatalf("expected the whole root->decl->stmt chain to collapse to stmt, got a different node")
	}
	if len(finalRoot.Children) != 0 || len(finalRoot.Mutations) != 1 {
		t.Fatalf("collapsed root should be exactly the single-mutation leaf, got %+v", finalRoot)
	}
}

// TestFinalizeDropsFullyElidedMutations exercises the case an
// EnabledSet elides every candidate at a site: the rewriter leaves that
// mutation's GlobalID at the constructor's -1 sentinel rather than
// assigning one, and Finalize must drop it rather than let it reach the
// manifest as a dangling, ID-less entry.
func TestFinalizeDropsFullyElidedMutations(t *testing.T) {
	root := NewNode()
	elided := mutation.NewReplaceExpr(mutation.ReplaceExpr{})
	kept := sampleMutation()
	kept.GlobalID = 0
	root.AddMutation(elided)
	root.AddMutation(kept)
	// A second, otherwise-empty branch whose only mutation is elided
	// must be pruned away entirely, not survive as an empty node.
	onlyElided := root.AddChild()
	onlyElided.AddMutation(mutation.NewReplaceExpr(mutation.ReplaceExpr{}))

	root.Finalize()

	if len(root.Mutations) != 1 || root.Mutations[0] != kept {
		t.Fatalf("expected only the non-elided mutation to survive, got %+v", root.Mutations)
	}
	if len(root.Children) != 0 {
		t.Fatalf("expected the all-elided branch to be pruned, got %d children", len(root.Children))
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	root := NewNode()
	a := root.AddChild()
	a.AddMutation(sampleMutation())
	b := root.AddChild()
	b.AddChild().AddMutation(sampleMutation())

	root = root.Finalize()
	firstCount := root.Count()
	firstChildren := len(root.Children)

	root = root.Finalize()
	if root.Count() != firstCount {
		t.Fatalf("mutation count changed across a second Finalize: %d -> %d", firstCount, root.Count())
	}
	if len(root.Children) != firstChildren {
		t.Fatalf("child count changed across a second Finalize: %d -> %d", firstChildren, len(root.Children))
	}
}

func TestFinalizePreservesSiblingOrder(t *testing.T) {
	root := NewNode()
	first := root.AddChild()
	first.AddMutation(sampleMutation())
	second := root.AddChild()
	second.AddMutation(sampleMutation())
	third := root.AddChild()
	third.AddChild() // empty, pruned away

	root.Finalize()

	if len(root.Children) != 2 {
		t.Fatalf("expected 2 surviving children in original order, got %d", len(root.Children))
	}
	if root.Children[0] != first || root.Children[1] != second {
		t.Fatalf("sibling order not preserved by Finalize")
	}
}

func TestCountSumsAcrossSubtree(t *testing.T) {
	root := NewNode()
	root.AddMutation(sampleMutation())
	child := root.AddChild()
	child.AddMutation(sampleMutation())
	child.AddMutation(sampleMutation())

	if got := root.Count(); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
}
