package server

import (
	"bytes"
	"errors"
	"log"
	"sort"

	"github.com/rybkr/gitorder/internal/domain"
	"github.com/rybkr/gitorder/internal/gitcore"
	"github.com/rybkr/gitorder/internal/render"
)

// cycleMarker is what the rendering degrades to when the sorter reports a
// cycle; the order payload is empty in that case.
const cycleMarker = "Cycle\n"

// refresh reopens the repository, rebuilds the graph, order, and rendering,
// and replaces the cached snapshot.
func (s *Server) refresh() error {
	snap, err := buildSnapshot(s.repoPath)
	if err != nil {
		return err
	}

	s.cacheMu.Lock()
	s.cached = *snap
	s.cacheMu.Unlock()
	return nil
}

// refreshAndBroadcast refreshes the snapshot and, when the rendered text
// changed, notifies all connected clients. The rendering is deterministic, so
// comparing it is equivalent to comparing graph plus order plus branches.
func (s *Server) refreshAndBroadcast() {
	snap, err := buildSnapshot(s.repoPath)
	if err != nil {
		log.Printf("Error refreshing repository: %v", err)
		return
	}

	s.cacheMu.RLock()
	changed := s.cached.render != snap.render
	infoChanged := s.cached.info != snap.info
	s.cacheMu.RUnlock()

	if !changed && !infoChanged {
		return
	}

	s.cacheMu.Lock()
	s.cached = *snap
	s.cacheMu.Unlock()

	if infoChanged {
		s.broadcastUpdate(MessageTypeInfo, snap.info)
	}
	if changed {
		s.broadcastUpdate(MessageTypeGraph, snap.graph)
		s.broadcastUpdate(MessageTypeOrder, snap.order)
		s.broadcastUpdate(MessageTypeRender, snap.render)
		log.Println("Repository graph changed, broadcasting update")
	}
}

func buildSnapshot(repoPath string) (*snapshot, error) {
	repo, err := gitcore.NewRepository(repoPath)
	if err != nil {
		return nil, err
	}

	index := repo.BranchIndex()
	graph := domain.Build(repo, repo.BranchHeads())

	head, headRef, detached := repo.Head()
	snap := &snapshot{
		info: InfoPayload{
			Name:     repo.Name(),
			GitDir:   repo.GitDir(),
			Head:     string(head),
			HeadRef:  headRef,
			Detached: detached,
		},
		graph: graphPayload(graph, index),
	}

	order, err := domain.Sort(graph)
	if err != nil {
		if !errors.Is(err, domain.ErrCycleDetected) {
			return nil, err
		}
		snap.order = []string{}
		snap.render = cycleMarker
		return snap, nil
	}

	snap.order = make([]string, len(order))
	for i, hash := range order {
		snap.order[i] = string(hash)
	}

	var buf bytes.Buffer
	if err := render.Render(&buf, graph, order, index); err != nil {
		return nil, err
	}
	snap.render = buf.String()

	return snap, nil
}

func graphPayload(g *domain.Graph, index map[gitcore.Hash][]string) *GraphPayload {
	payload := &GraphPayload{
		Nodes:    make([]GraphNode, 0, len(g.Nodes)),
		Branches: make(map[string][]string, len(index)),
	}

	for hash, names := range index {
		sorted := append([]string(nil), names...)
		sort.Strings(sorted)
		payload.Branches[string(hash)] = sorted
	}

	for _, hash := range sortedNodeKeys(g) {
		node := g.Nodes[hash]
		payload.Nodes = append(payload.Nodes, GraphNode{
			Hash:     string(hash),
			Parents:  hashStrings(node.SortedParents()),
			Children: hashStrings(node.SortedChildren()),
		})
	}

	return payload
}

func sortedNodeKeys(g *domain.Graph) []gitcore.Hash {
	keys := make([]gitcore.Hash, 0, len(g.Nodes))
	for hash := range g.Nodes {
		keys = append(keys, hash)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func hashStrings(hashes []gitcore.Hash) []string {
	if len(hashes) == 0 {
		return nil
	}
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = string(h)
	}
	return out
}
