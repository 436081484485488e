package elevenlabs

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTextChunker_BuffersUntilBoundary(t *testing.T) {
	c := newTextChunker()

	assert.Empty(t, c.feed("Hel"))
	assert.Empty(t, c.feed("lo"))
	assert.Equal(t, []string{"Hello "}, c.feed(" there"))
	assert.Empty(t, c.feed(""))
}

func TestTextChunker_ReleasesOnTrailingPunctuation(t *testing.T) {
	c := newTextChunker()

	assert.Empty(t, c.feed("Hola."))
	// The buffered sentence is released when the next delta arrives.
	assert.Equal(t, []string{"Hola. "}, c.feed("¿Qué"))
	assert.Equal(t, []string{"¿Qué "}, c.feed(" tal"), "leading space releases the pending word")
}

func TestTextChunker_EveryPieceEndsWithSpace(t *testing.T) {
	c := newTextChunker()

	var pieces []string
	for _, delta := range []string{"One", ",", " two", " and", " three."} {
		pieces = append(pieces, c.feed(delta)...)
	}
	if tail := c.flush(); tail != "" {
		pieces = append(pieces, tail)
	}

	assert.NotEmpty(t, pieces)
	for _, piece := range pieces {
		assert.Regexp(t, ` $`, piece)
	}
}

func TestTextChunker_MultibyteSplitterStaysIntact(t *testing.T) {
	c := newTextChunker()

	assert.Empty(t, c.feed("bueno"))
	pieces := c.feed("—claro")
	pieces = append(pieces, c.flush())

	assert.Equal(t, []string{"bueno— ", "claro "}, pieces)
	for _, piece := range pieces {
		assert.True(t, utf8.ValidString(piece), "piece %q must be valid UTF-8", piece)
	}
}

func TestTextChunker_FlushDrainsRemainder(t *testing.T) {
	c := newTextChunker()

	c.feed("adiós")
	assert.Equal(t, "adiós ", c.flush())
	assert.Equal(t, "", c.flush(), "second flush is empty")
}
