package domain

import (
	"sort"

	"github.com/rybkr/gitorder/internal/gitcore"
)

// CommitSource supplies commit objects by hash. *gitcore.Repository satisfies
// it; tests use an in-memory map.
type CommitSource interface {
	ReadCommit(hash gitcore.Hash) (*gitcore.Commit, error)
}

// CommitNode is one commit in the ancestry graph, with bidirectional
// adjacency: Parents holds direct ancestors, Children the inverse relation.
type CommitNode struct {
	ID       gitcore.Hash
	Parents  map[gitcore.Hash]struct{}
	Children map[gitcore.Hash]struct{}
}

func newCommitNode(id gitcore.Hash) *CommitNode {
	return &CommitNode{
		ID:       id,
		Parents:  make(map[gitcore.Hash]struct{}),
		Children: make(map[gitcore.Hash]struct{}),
	}
}

func (n *CommitNode) addParent(parent gitcore.Hash) {
	n.Parents[parent] = struct{}{}
}

func (n *CommitNode) addChild(child gitcore.Hash) {
	n.Children[child] = struct{}{}
}

// HasParent reports whether the given hash is a direct ancestor of n.
func (n *CommitNode) HasParent(hash gitcore.Hash) bool {
	_, ok := n.Parents[hash]
	return ok
}

// SortedParents returns the parent hashes in lexicographic order.
// Set iteration order must never leak into output.
func (n *CommitNode) SortedParents() []gitcore.Hash {
	return sortedKeys(n.Parents)
}

// SortedChildren returns the child hashes in lexicographic order.
func (n *CommitNode) SortedChildren() []gitcore.Hash {
	return sortedKeys(n.Children)
}

func sortedKeys(set map[gitcore.Hash]struct{}) []gitcore.Hash {
	keys := make([]gitcore.Hash, 0, len(set))
	for hash := range set {
		keys = append(keys, hash)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Graph is the commit ancestry graph keyed by hash. It grows monotonically
// during Build and is read-only afterwards.
type Graph struct {
	Nodes map[gitcore.Hash]*CommitNode
}

func (g *Graph) ensure(hash gitcore.Hash) *CommitNode {
	node, ok := g.Nodes[hash]
	if !ok {
		node = newCommitNode(hash)
		g.Nodes[hash] = node
	}
	return node
}

// Build performs a worklist traversal of the object store starting from the
// seed hashes (branch heads) and materializes the ancestry graph. A commit
// whose object cannot be read stays in the graph as a dead end: no parents
// are recorded from it, but children discovered elsewhere still point at it.
func Build(src CommitSource, seeds []gitcore.Hash) *Graph {
	g := &Graph{Nodes: make(map[gitcore.Hash]*CommitNode)}
	visited := make(map[gitcore.Hash]bool)

	worklist := make([]gitcore.Hash, len(seeds))
	copy(worklist, seeds)

	for len(worklist) > 0 {
		curr := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if visited[curr] {
			continue
		}
		visited[curr] = true

		node := g.ensure(curr)

		commit, err := src.ReadCommit(curr)
		if err != nil {
			continue
		}

		for _, parent := range commit.Parents {
			if !visited[parent] {
				worklist = append(worklist, parent)
			}
			g.ensure(parent).addChild(curr)
			node.addParent(parent)
		}
	}

	return g
}
