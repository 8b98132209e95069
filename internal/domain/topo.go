package domain

import (
	"errors"
	"sort"

	"github.com/rybkr/gitorder/internal/gitcore"
)

// ErrCycleDetected is returned by Sort when the graph cannot be fully
// ordered. Commit parent references are acyclic by construction, so this
// only fires on a corrupted or hand-crafted store.
var ErrCycleDetected = errors.New("cycle detected in commit graph")

// Sort produces a topological ordering of the graph with children before
// parents: a node is emitted only once all of its children have been emitted.
// Ties between simultaneously ready nodes are broken by lexicographic hash
// order, so the result is deterministic for a given graph.
func Sort(g *Graph) ([]gitcore.Hash, error) {
	// A node's in-degree counts how many of its children have not yet been
	// emitted: each node contributes one to every parent it references.
	indegree := make(map[gitcore.Hash]int, len(g.Nodes))
	for hash := range g.Nodes {
		indegree[hash] = 0
	}
	for _, node := range g.Nodes {
		for parent := range node.Parents {
			indegree[parent]++
		}
	}

	var ready []gitcore.Hash
	for hash, degree := range indegree {
		if degree == 0 {
			ready = append(ready, hash)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	order := make([]gitcore.Hash, 0, len(g.Nodes))
	for len(ready) > 0 {
		curr := ready[0]
		ready = ready[1:]
		order = append(order, curr)

		for _, parent := range g.Nodes[curr].SortedParents() {
			indegree[parent]--
			if indegree[parent] == 0 {
				ready = insertSorted(ready, parent)
			}
		}
	}

	if len(order) != len(g.Nodes) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// insertSorted inserts hash into a lexicographically sorted slice, keeping it
// sorted. The ready queue stays small relative to the graph, so the linear
// shift is not a concern.
func insertSorted(sorted []gitcore.Hash, hash gitcore.Hash) []gitcore.Hash {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= hash })
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = hash
	return sorted
}
