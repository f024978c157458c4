// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet defines the character set used for the random portion of the ID.
// Lowercase-only keeps ids readable in file names and URLs.
var Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Node returns a new node id with the given type prefix, e.g. "req_x1y2…".
func Node(prefix string) (string, error) {
	if prefix == "" {
		prefix = "node"
	}
	return generate(prefix)
}

// Edge returns a new edge id.
func Edge() (string, error) {
	return generate("edge")
}

func generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + "_" + id, nil
}
