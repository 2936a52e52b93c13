package chunk

import (
	"math/rand"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vocabulary = []string{"lorem", "ipsum", "dolor", "sit", "amet", "consectetur", "adipiscing", "elit", "sed", "do"}

// prose returns exactly n ASCII characters of single-spaced words with no punctuation.
func prose(n int) string {
	var b strings.Builder
	for i := 0; b.Len() < n; i++ {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(vocabulary[i%len(vocabulary)])
	}
	return b.String()[:n]
}

// sentences returns single-spaced sentences of random length.
func sentences(rng *rand.Rand, count int) string {
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		n := 3 + rng.Intn(25)
		words := make([]string, n)
		for j := range words {
			words[j] = vocabulary[rng.Intn(len(vocabulary))]
		}
		out = append(out, strings.Join(words, " ")+".")
	}
	return strings.Join(out, " ")
}

// messy returns text mixing sentences, newlines, and paragraph breaks.
func messy(rng *rand.Rand, words int) string {
	var b strings.Builder
	for i := 0; i < words; i++ {
		b.WriteString(vocabulary[rng.Intn(len(vocabulary))])
		switch rng.Intn(20) {
		case 0:
			b.WriteString(". ")
		case 1:
			b.WriteString("\n")
		case 2:
			b.WriteString("?\n\n")
		default:
			b.WriteString(" ")
		}
	}
	return b.String()
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func assertWindow(t *testing.T, c *Chunker, chunks []string) {
	t.Helper()
	for i, ch := range chunks {
		n := utf8.RuneCountInString(ch)
		assert.NotEmpty(t, ch, "chunk %d is empty", i)
		assert.LessOrEqual(t, n, c.Max(), "chunk %d too long", i)
		if i < len(chunks)-1 {
			assert.GreaterOrEqual(t, n, c.Min(), "chunk %d too short", i)
		}
		assert.Equal(t, strings.TrimSpace(ch), ch, "chunk %d is not trimmed", i)
	}
}

func TestNewValidatesWindow(t *testing.T) {
	_, err := New(0, 10)
	assert.Error(t, err)
	_, err = New(10, 9)
	assert.Error(t, err)

	c, err := New(10, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Min())
	assert.Equal(t, 10, c.Max())
}

func TestSplitBlank(t *testing.T) {
	c := Default()
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split(" \n\t "))
}

func TestSplitShortText(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"Hola de vuelta"}, c.Split("Hola de vuelta"))
	assert.Equal(t, []string{"padded"}, c.Split("  \n padded \n"))
}

func TestSplit750CharsWithoutPunctuationIsOneChunk(t *testing.T) {
	c := Default()

	text := prose(750)
	chunks := c.Split(text)
	require.Len(t, chunks, 1)
	assert.Equal(t, strings.TrimSpace(text), chunks[0])

	solid := strings.Repeat("a", 750)
	assert.Equal(t, []string{solid}, c.Split(solid))
}

func TestSplitExactlyMax(t *testing.T) {
	c := Default()
	text := strings.Repeat("x", 800)
	assert.Equal(t, []string{text}, c.Split(text))
}

func TestSplitPrefersSentenceInsideWindow(t *testing.T) {
	c := Default()

	// Period at character 710, whitespace available all the way to 800.
	text := prose(709) + ". " + prose(889)
	require.Len(t, text, 1600)

	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, prose(709)+".", chunks[0])
	assertWindow(t, c, chunks)
}

func TestSplitPeriodBeyondMaxUsesWordBoundary(t *testing.T) {
	c := Default()

	// Period at character 810 is out of reach; the cut must still avoid a mid-word split.
	text := prose(809) + ". " + prose(789)
	require.Len(t, text, 1600)

	chunks := c.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	first := chunks[0]
	assert.Equal(t, byte(' '), text[len(first)], "first cut should land on a space")
	assert.True(t, strings.HasPrefix(text, first))
	assertWindow(t, c, chunks)
}

func TestSplitSentenceBeatsLaterNewline(t *testing.T) {
	c := Default()

	text := prose(620) + ". " + prose(100) + "\n" + prose(500)
	chunks := c.Split(text)
	assert.Equal(t, prose(620)+".", chunks[0])
	assertWindow(t, c, chunks)
}

func TestSplitNewlineBeatsLaterSpace(t *testing.T) {
	c := Default()

	text := prose(650) + "\n" + prose(500)
	chunks := c.Split(text)
	assert.Equal(t, strings.TrimSpace(prose(650)), chunks[0])
	assertWindow(t, c, chunks)
}

func TestSplitIgnoresBoundariesBeforeMin(t *testing.T) {
	c := Default()

	text := prose(300) + ". " + prose(1000)
	chunks := c.Split(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.GreaterOrEqual(t, len(chunks[0]), 600)
	assert.NotEqual(t, prose(300)+".", chunks[0])
	assertWindow(t, c, chunks)
}

func TestSplitHardCut(t *testing.T) {
	c := Default()

	text := strings.Repeat("x", 2000)
	chunks := c.Split(text)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 800)
	assert.Len(t, chunks[1], 800)
	assert.Len(t, chunks[2], 400)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitCountsCodePoints(t *testing.T) {
	c := Default()

	text := strings.Repeat("é", 1000)
	chunks := c.Split(text)
	require.Len(t, chunks, 2)
	assert.Equal(t, 800, utf8.RuneCountInString(chunks[0]))
	assert.Equal(t, 200, utf8.RuneCountInString(chunks[1]))
}

func TestSplitSmallWindow(t *testing.T) {
	c, err := New(5, 10)
	require.NoError(t, err)

	chunks := c.Split("one two three four five six seven")
	assert.Equal(t, []string{"one two", "three four", "five six", "seven"}, chunks)
}

func TestSplitProperties(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		text := messy(rng, 1+rng.Intn(1200))

		chunks := c.Split(text)
		assertWindow(t, c, chunks)
		assert.Equal(t, stripSpace(text), stripSpace(strings.Join(chunks, "")), "characters lost or duplicated")
		assert.Equal(t, chunks, c.Split(text), "split must be deterministic")
	}
}

func TestSplitFixedPoint(t *testing.T) {
	c := Default()
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 50; i++ {
		text := sentences(rng, 5+rng.Intn(60))

		chunks := c.Split(text)
		rejoined := strings.Join(chunks, " ")
		assert.Equal(t, text, rejoined, "single-spaced text is reproduced by restoring boundary spaces")
		assert.Equal(t, chunks, c.Split(rejoined))
	}
}
