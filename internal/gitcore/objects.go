package gitcore

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrObjectNotFound signals that a referenced object has no readable loose
// object file on disk. During history traversal this is a normal outcome
// (shallow clones, grafted history), so every filesystem and decompression
// failure below is folded into it rather than propagated.
var ErrObjectNotFound = errors.New("object not found")

// ReadCommit reads and parses the loose commit object for the given hash.
// The object lives at objects/<hash[:2]>/<hash[2:]>, zlib-compressed, with a
// "commit <size>\x00" header before the text body.
func (r *Repository) ReadCommit(hash Hash) (*Commit, error) {
	objectPath := filepath.Join(r.gitDir, "objects", string(hash)[:2], string(hash)[2:])

	file, err := os.Open(objectPath)
	if err != nil {
		return nil, ErrObjectNotFound
	}
	defer file.Close()

	zr, err := zlib.NewReader(file)
	if err != nil {
		return nil, ErrObjectNotFound
	}
	defer zr.Close()

	content, err := io.ReadAll(zr)
	if err != nil {
		return nil, ErrObjectNotFound
	}

	nullIdx := bytes.IndexByte(content, 0)
	if nullIdx == -1 {
		return nil, ErrObjectNotFound
	}

	header := string(content[:nullIdx])
	if !strings.HasPrefix(header, "commit ") {
		// Annotated tags and other object types are not commits.
		return nil, ErrObjectNotFound
	}

	return parseCommitBody(content[nullIdx+1:], hash)
}

// parseCommitBody parses the decompressed text body of a commit object.
// Malformed signatures are tolerated: the parent references are the payload
// that drives the graph, the metadata is best effort.
func parseCommitBody(body []byte, hash Hash) (*Commit, error) {
	commit := &Commit{ID: hash}

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	inMessage := false
	var messageLines []string

	for scanner.Scan() {
		line := scanner.Text()
		if inMessage {
			messageLines = append(messageLines, line)
			continue
		}

		if line == "" {
			inMessage = true
			continue
		}

		switch {
		case strings.HasPrefix(line, "tree "):
			if tree, err := NewHash(strings.TrimPrefix(line, "tree ")); err == nil {
				commit.Tree = tree
			}
		case strings.HasPrefix(line, "parent "):
			parent, err := NewHash(strings.TrimPrefix(line, "parent "))
			if err != nil {
				continue
			}
			commit.Parents = append(commit.Parents, parent)
		case strings.HasPrefix(line, "author "):
			if sig, err := NewSignature(strings.TrimPrefix(line, "author ")); err == nil {
				commit.Author = sig
			}
		case strings.HasPrefix(line, "committer "):
			if sig, err := NewSignature(strings.TrimPrefix(line, "committer ")); err == nil {
				commit.Committer = sig
			}
		}
	}

	commit.Message = strings.TrimSpace(strings.Join(messageLines, "\n"))

	return commit, nil
}
