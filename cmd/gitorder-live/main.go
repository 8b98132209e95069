package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/term"

	"github.com/rybkr/gitorder/internal/gitcore"
	"github.com/rybkr/gitorder/internal/server"
)

func main() {
	repoPath := flag.String("repo", ".", "Path to git repository")
	port := flag.String("port", "8080", "Port to serve on")
	flag.Parse()

	// Fail fast before the server starts its background loops.
	if _, err := gitcore.NewRepository(*repoPath); err != nil {
		log.Fatal(err)
	}

	serv := server.NewServer(*repoPath, *port)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("gitorder live view at http://localhost:%s/api/render\n", *port)
	}
	if err := serv.Start(); err != nil {
		log.Fatal(err)
	}
}
