package server

import (
	"log"
	"time"
)

const (
	pollPeriod = 5 * time.Second
)

// pollLoop periodically rebuilds the snapshot as a fallback for filesystem
// events that the watcher misses (e.g. ref updates via atomic renames on
// platforms where fsnotify drops them).
func (s *Server) pollLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(pollPeriod)
	defer ticker.Stop()

	log.Printf("Repository polling started (period = %s)", pollPeriod)

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Repository polling stopped")
			return

		case <-ticker.C:
			func() {
				// Recover from panics to prevent one bad poll from killing
				// the server; corrupted repositories can surface anywhere.
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in poll loop: %v", r)
					}
				}()
				s.refreshAndBroadcast()
			}()
		}
	}
}
