package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(DefaultStopwords())

	got := tok.Tokenize("Check THE new Lever-gun at http://www.photobucket.com/albums/x.jpg, 30-30 rocks! a")

	assert.Equal(t, []string{"check", "new", "lever", "gun", "rocks"}, got)
}

func TestTokenize_LengthBounds(t *testing.T) {
	tok := Tokenizer{MinLen: 2, MaxLen: 5}

	assert.Equal(t, []string{"ab", "abcde"}, tok.Tokenize("a ab abcde abcdef"))
}

func TestStopSet_Immutable(t *testing.T) {
	base := EnglishStopwords()
	extended := base.With("rifle")

	assert.True(t, extended.Contains("rifle"))
	assert.False(t, base.Contains("rifle"))
	assert.Equal(t, base.Len()+1, extended.Len())

	def := DefaultStopwords()
	for _, w := range []string{"photobucket", "http", "com", "gif", "jpg", "image", "images", "www", "albums", "smilies", "the"} {
		assert.True(t, def.Contains(w), w)
	}
	assert.False(t, EnglishStopwords().Contains("smilies"))
}

func TestDictionary_IDsAndBow(t *testing.T) {
	d := NewDictionary()
	d.Add([]string{"rifle", "brass", "rifle"})
	d.Add([]string{"scope", "brass", "ammo"})

	// new tokens of a document are numbered in sorted order
	assertID := func(tok string, want int) {
		id, ok := d.ID(tok)
		require.True(t, ok, tok)
		assert.Equal(t, want, id, tok)
	}
	assertID("brass", 0)
	assertID("rifle", 1)
	assertID("ammo", 2)
	assertID("scope", 3)
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, "scope", d.Token(3))
	assert.Equal(t, 2, d.DocFreq(0))
	assert.Equal(t, 1, d.DocFreq(1))

	bow := d.Doc2Bow([]string{"scope", "rifle", "unknown", "rifle"})
	assert.Equal(t, Document{{ID: 1, Count: 2}, {ID: 3, Count: 1}}, bow)
	assert.Equal(t, 3, bow.Len())
}

func TestBuildCorpus(t *testing.T) {
	corpus, dict := BuildCorpus([]string{"Brass and brass", "", "ammo brass"}, NewTokenizer(DefaultStopwords()))

	require.Len(t, corpus, 3)
	assert.Equal(t, 2, dict.Len())
	assert.Equal(t, Document{{ID: 0, Count: 2}}, corpus[0])
	assert.Empty(t, corpus[1])
	assert.Equal(t, Document{{ID: 0, Count: 1}, {ID: 1, Count: 1}}, corpus[2])
}
