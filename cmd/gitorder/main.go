package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/rybkr/gitorder/internal/domain"
	"github.com/rybkr/gitorder/internal/gitcore"
	"github.com/rybkr/gitorder/internal/render"
)

func main() {
	repoPath := flag.String("repo", ".", "Path to git repository")
	flag.Parse()

	log.SetFlags(0)

	repo, err := gitcore.NewRepository(*repoPath)
	if err != nil {
		log.Fatal(err)
	}

	graph := domain.Build(repo, repo.BranchHeads())

	order, err := domain.Sort(graph)
	if err != nil {
		if errors.Is(err, domain.ErrCycleDetected) {
			fmt.Println("Cycle")
			return
		}
		log.Fatal(err)
	}

	if err := render.Render(os.Stdout, graph, order, repo.BranchIndex()); err != nil {
		log.Fatal(err)
	}
}
