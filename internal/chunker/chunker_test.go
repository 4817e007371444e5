package chunker

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(text string, size int) []string {
	return slices.Collect(Split(text, size))
}

func TestSplitGroupsWordsInOrder(t *testing.T) {
	got := collect("alpha beta gamma delta echo", 2)
	assert.Equal(t, []string{"alpha beta", "gamma delta", "echo"}, got)
}

func TestSplitSegmentCount(t *testing.T) {
	tests := []struct {
		name  string
		words int
		size  int
		want  int
	}{
		{"exact multiple", 10, 5, 2},
		{"remainder", 11, 5, 3},
		{"single short segment", 3, 500, 1},
		{"one word", 1, 1, 1},
		{"empty", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words := make([]string, tt.words)
			for i := range words {
				words[i] = "w"
			}
			got := collect(strings.Join(words, " "), tt.size)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSplitRoundTripPreservesWords(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog near the river bank"
	for _, size := range []int{1, 2, 3, 5, 100} {
		var rejoined []string
		for seg := range Split(text, size) {
			rejoined = append(rejoined, strings.Fields(seg)...)
		}
		assert.Equal(t, strings.Fields(text), rejoined, "size %d", size)
	}
}

func TestSplitEmptyAndWhitespaceInput(t *testing.T) {
	assert.Empty(t, collect("", 5))
	assert.Empty(t, collect("   \n\t  ", 5))
}

func TestSplitCollapsesWhitespace(t *testing.T) {
	got := collect("  alpha \n beta\t\tgamma  ", 2)
	assert.Equal(t, []string{"alpha beta", "gamma"}, got)
}

func TestSplitIsRestartable(t *testing.T) {
	seq := Split("one two three four five", 2)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	require.Equal(t, first, second)
	assert.Equal(t, []string{"one two", "three four", "five"}, first)
}

func TestSplitNonPositiveSizeFallsBackToDefault(t *testing.T) {
	got := collect("a b c", 0)
	require.Len(t, got, 1)
	assert.Equal(t, "a b c", got[0])
}

func TestSplitEarlyBreak(t *testing.T) {
	var got []string
	for seg := range Split("a b c d e f", 2) {
		got = append(got, seg)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a b", "c d"}, got)
}
