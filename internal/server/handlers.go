package server

import (
	"net/http"
)

// handleInfo serves repository metadata. Used for initial page load and
// debugging.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.cacheMu.RLock()
	info := s.cached.info
	s.cacheMu.RUnlock()

	s.writeJSON(w, info)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.cacheMu.RLock()
	graph := s.cached.graph
	s.cacheMu.RUnlock()

	s.writeJSON(w, graph)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	s.cacheMu.RLock()
	order := s.cached.order
	s.cacheMu.RUnlock()

	s.writeJSON(w, order)
}

// handleRender serves the segmented rendering as plain text, exactly what the
// CLI prints for the same repository state.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	s.cacheMu.RLock()
	text := s.cached.render
	s.cacheMu.RUnlock()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}
