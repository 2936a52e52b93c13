// Package chunk splits answer text into bounded-length pieces for streaming.
package chunk

import (
	"fmt"
	"unicode"
)

const (
	// DefaultMin is the smallest length of every chunk except the last.
	DefaultMin = 600
	// DefaultMax is the largest length of any chunk.
	DefaultMax = 800
)

// Chunker splits text into chunks whose length, counted in Unicode code
// points, lies in [Min, Max]. Only the last chunk may be shorter than Min.
type Chunker struct {
	min int
	max int
}

// New creates a chunker for the window [min, max].
func New(min, max int) (*Chunker, error) {
	if min <= 0 || max < min {
		return nil, fmt.Errorf("invalid chunk window [%d, %d]", min, max)
	}
	return &Chunker{min: min, max: max}, nil
}

// Default returns a chunker for the [600, 800] window.
func Default() *Chunker {
	return &Chunker{min: DefaultMin, max: DefaultMax}
}

func (c *Chunker) Min() int { return c.min }
func (c *Chunker) Max() int { return c.max }

// boundary is one class of acceptable cut point. A cut at i splits r into
// r[:i] and r[i:].
type boundary func(r []rune, i int) bool

// boundaries are tried in priority order: sentence end, newline, whitespace.
var boundaries = []boundary{
	func(r []rune, i int) bool { return isTerminator(r[i-1]) && unicode.IsSpace(r[i]) },
	func(r []rune, i int) bool { return r[i] == '\n' },
	func(r []rune, i int) bool { return unicode.IsSpace(r[i]) },
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// Split returns the chunks of text in order. Whitespace is trimmed from both
// ends of each chunk and chunks that end up empty are dropped, so blank input
// yields no chunks. Split is deterministic.
func (c *Chunker) Split(text string) []string {
	rest := []rune(text)
	var chunks []string

	for {
		rest = trimLeft(rest)
		if len(rest) == 0 {
			return chunks
		}
		if len(rest) <= c.max {
			return append(chunks, string(trimRight(rest)))
		}

		cut := c.cutPoint(rest)
		if piece := trimRight(rest[:cut]); len(piece) > 0 {
			chunks = append(chunks, string(piece))
		}
		rest = rest[cut:]
	}
}

// cutPoint searches backward from max to min for the best boundary class,
// falling back to a hard cut at max. r must be longer than max.
func (c *Chunker) cutPoint(r []rune) int {
	for _, b := range boundaries {
		for i := c.max; i >= c.min; i-- {
			if b(r, i) && trimmedLen(r[:i]) >= c.min {
				return i
			}
		}
	}
	return c.max
}

func trimLeft(r []rune) []rune {
	i := 0
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return r[i:]
}

func trimRight(r []rune) []rune {
	return r[:trimmedLen(r)]
}

func trimmedLen(r []rune) int {
	n := len(r)
	for n > 0 && unicode.IsSpace(r[n-1]) {
		n--
	}
	return n
}
