// Package render flattens a topologically ordered commit graph into a
// line-oriented text stream. Because the order linearizes a graph that is not
// itself a chain, adjacent lines do not always correspond to a real
// parent/child edge; segment markers make every such break explicit so the
// graph structure stays recoverable from the flat text.
//
// Grammar:
//
//	commit line:        <hash>[ <branch1> <branch2> ...]   (branches sorted)
//	segment terminator: <parent1> <parent2> ...=           (bare "=" if no parents)
//	                    followed by one blank line
//	segment opener:     =<hash>[ <child1> <child2> ...]
package render

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rybkr/gitorder/internal/domain"
	"github.com/rybkr/gitorder/internal/gitcore"
)

// Render writes the segmented rendering of order to w. branches maps a head
// commit hash to the branch names pointing at it. The output is byte
// identical across runs for identical inputs: branch lists, parent lists,
// and child lists are always emitted in lexicographic order.
func Render(w io.Writer, g *domain.Graph, order []gitcore.Hash, branches map[gitcore.Hash][]string) error {
	bw := bufio.NewWriter(w)
	printed := make(map[gitcore.Hash]bool)
	openSegment := false

	for i, hash := range order {
		node, ok := g.Nodes[hash]
		if !ok || printed[hash] {
			// A valid order holds every graph node exactly once; skipping
			// keeps the renderer idempotent per hash regardless.
			continue
		}

		if openSegment {
			line := "=" + string(hash)
			if children := node.SortedChildren(); len(children) > 0 {
				line += " " + joinHashes(children)
			}
			fmt.Fprintln(bw, line)
			openSegment = false
		}

		line := string(hash)
		if names := branches[hash]; len(names) > 0 {
			sorted := append([]string(nil), names...)
			sort.Strings(sorted)
			line += " " + strings.Join(sorted, " ")
		}
		fmt.Fprintln(bw, line)
		printed[hash] = true

		if i+1 == len(order) {
			break
		}

		if !node.HasParent(order[i+1]) {
			fmt.Fprintln(bw, joinHashes(node.SortedParents())+"=")
			fmt.Fprintln(bw)
			openSegment = true
		}
	}

	return bw.Flush()
}

func joinHashes(hashes []gitcore.Hash) string {
	parts := make([]string, len(hashes))
	for i, h := range hashes {
		parts[i] = string(h)
	}
	return strings.Join(parts, " ")
}
