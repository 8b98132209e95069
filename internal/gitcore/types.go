package gitcore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Commit represents a Git commit object with its metadata and relationships.
type Commit struct {
	ID        Hash
	Tree      Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Message   string
}

// Signature represents a Git author or committer signature with name, email, and timestamp.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

var signatureSplit = regexp.MustCompile("[<>]")

// NewSignature parses a signature line in the format "Name <email> timestamp zone"
// and returns a Signature struct.
func NewSignature(signLine string) (Signature, error) {
	parts := signatureSplit.Split(signLine, -1)
	if len(parts) != 3 {
		return Signature{}, fmt.Errorf("invalid signature line: %q", signLine)
	}

	name := strings.TrimSpace(parts[0])
	email := strings.TrimSpace(parts[1])

	timeParts := strings.Fields(parts[2])
	if len(timeParts) < 1 {
		return Signature{}, fmt.Errorf("invalid signature line: %q", signLine)
	}
	unixTime, err := strconv.ParseInt(timeParts[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature timestamp: %q", signLine)
	}

	return Signature{
		Name:  name,
		Email: email,
		When:  time.Unix(unixTime, 0),
	}, nil
}
