package domain

import (
	"strings"
	"testing"

	"github.com/rybkr/gitorder/internal/gitcore"
)

// fakeSource is an in-memory object store mapping a commit to its parents.
// Hashes absent from the map behave like missing loose objects.
type fakeSource map[gitcore.Hash][]gitcore.Hash

func (f fakeSource) ReadCommit(hash gitcore.Hash) (*gitcore.Commit, error) {
	parents, ok := f[hash]
	if !ok {
		return nil, gitcore.ErrObjectNotFound
	}
	return &gitcore.Commit{ID: hash, Parents: parents}, nil
}

// mk expands a single hex character into a full 40-character hash.
func mk(c string) gitcore.Hash {
	return gitcore.Hash(strings.Repeat(c, 40))
}

func TestBuildLinearHistory(t *testing.T) {
	c1, c2, c3 := mk("1"), mk("2"), mk("3")
	src := fakeSource{
		c3: {c2},
		c2: {c1},
		c1: nil,
	}

	g := Build(src, []gitcore.Hash{c3})

	if len(g.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(g.Nodes))
	}
	if !g.Nodes[c3].HasParent(c2) || !g.Nodes[c2].HasParent(c1) {
		t.Fatalf("expected parent chain c3->c2->c1")
	}
	if _, ok := g.Nodes[c1].Children[c2]; !ok {
		t.Fatalf("expected c2 recorded as child of c1")
	}
	if len(g.Nodes[c1].Parents) != 0 {
		t.Fatalf("expected root commit to have no parents")
	}
	if len(g.Nodes[c3].Children) != 0 {
		t.Fatalf("expected branch tip to have no children")
	}
}

func TestBuildSeedsAlwaysPresent(t *testing.T) {
	c1, c2 := mk("1"), mk("2")
	src := fakeSource{
		c2: {c1},
		c1: nil,
	}

	// Duplicate seeds and seeds that are ancestors of one another collapse.
	seeds := []gitcore.Hash{c2, c2, c1}
	g := Build(src, seeds)

	for _, seed := range seeds {
		if _, ok := g.Nodes[seed]; !ok {
			t.Fatalf("seed %s missing from graph", seed)
		}
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("expected duplicate seeds to collapse, got %d nodes", len(g.Nodes))
	}
}

func TestBuildBidirectionalInvariant(t *testing.T) {
	c1, c2, c3, m := mk("1"), mk("2"), mk("3"), mk("4")
	src := fakeSource{
		m:  {c2, c3},
		c3: {c1},
		c2: {c1},
		c1: nil,
	}

	g := Build(src, []gitcore.Hash{m})

	for hash, node := range g.Nodes {
		for parent := range node.Parents {
			if _, ok := g.Nodes[parent].Children[hash]; !ok {
				t.Fatalf("%s lists parent %s but inverse child edge missing", hash, parent)
			}
		}
		for child := range node.Children {
			if !g.Nodes[child].HasParent(hash) {
				t.Fatalf("%s lists child %s but inverse parent edge missing", hash, child)
			}
		}
	}
}

func TestBuildMissingSeedObject(t *testing.T) {
	missing := mk("f")
	g := Build(fakeSource{}, []gitcore.Hash{missing})

	if len(g.Nodes) != 1 {
		t.Fatalf("expected exactly the seed node, got %d nodes", len(g.Nodes))
	}
	node := g.Nodes[missing]
	if len(node.Parents) != 0 || len(node.Children) != 0 {
		t.Fatalf("expected missing seed to be an isolated node, got %+v", node)
	}
}

func TestBuildMissingParentIsDeadEnd(t *testing.T) {
	c1, c2 := mk("1"), mk("2")
	src := fakeSource{
		c2: {c1},
		// c1's object is absent (shallow history).
	}

	g := Build(src, []gitcore.Hash{c2})

	node, ok := g.Nodes[c1]
	if !ok {
		t.Fatalf("expected missing parent to still get a node")
	}
	if len(node.Parents) != 0 {
		t.Fatalf("expected no parents recorded for missing object")
	}
	if _, ok := node.Children[c2]; !ok {
		t.Fatalf("expected child edge recorded by the node that referenced it")
	}
}

func TestSortedAdjacency(t *testing.T) {
	node := newCommitNode(mk("0"))
	node.addParent(mk("c"))
	node.addParent(mk("a"))
	node.addParent(mk("b"))

	parents := node.SortedParents()
	if len(parents) != 3 {
		t.Fatalf("expected 3 parents, got %d", len(parents))
	}
	for i := 1; i < len(parents); i++ {
		if parents[i-1] >= parents[i] {
			t.Fatalf("expected lexicographic order, got %#v", parents)
		}
	}
}
