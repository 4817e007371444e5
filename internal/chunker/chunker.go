// Package chunker splits extracted text into bounded, ordered segments
// suitable for embedding.
package chunker

import (
	"iter"
	"strings"
)

// DefaultSize is the default number of words per segment. Word-count
// chunking is a cheap proxy for semantic boundary preservation; the size
// trades context per chunk against retrieval granularity.
const DefaultSize = 500

// Split groups the whitespace-separated words of text into segments of size
// words (the last segment may be shorter), preserving word order and joining
// with single spaces. Segments that are empty after trimming are not
// yielded. Empty or whitespace-only input yields nothing.
//
// The returned sequence is lazy and restartable: ranging over it again
// reproduces identical output.
func Split(text string, size int) iter.Seq[string] {
	if size <= 0 {
		size = DefaultSize
	}
	return func(yield func(string) bool) {
		words := strings.Fields(text)
		for i := 0; i < len(words); i += size {
			end := i + size
			if end > len(words) {
				end = len(words)
			}
			segment := strings.Join(words[i:end], " ")
			if strings.TrimSpace(segment) == "" {
				continue
			}
			if !yield(segment) {
				return
			}
		}
	}
}
