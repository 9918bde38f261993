package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pairs = []struct {
	original string
	modified string
}{
	{"", ""},
	{"", "Penelitian ini dilakukan oleh penulis."},
	{"Saya melakukan penelitian ini.", ""},
	{"Saya melakukan penelitian ini.", "Penelitian ini dilakukan oleh penulis."},
	{"Hasil  penelitian\nmenunjukkan bahwa...", "Hasil penelitian menunjukkan, bahwa..."},
	{"a b c d e", "a c e f"},
	{"Smith, J. (2020). Judul buku.", "Smith, J. (2020). *Judul buku*."},
	{"kata-kata   berulang\t\tberulang", "kata kata berulang"},
	{"ÄÖÜ naïve café", "naive café ÄÖÜ"},
}

func TestReconstruction(t *testing.T) {
	for _, p := range pairs {
		for name, fn := range map[string]func(string, string) []Segment{"words": Words, "readable": Readable} {
			segs := fn(p.original, p.modified)
			assert.Equal(t, p.original, Reconstruct(segs, Added), "%s original for %q -> %q", name, p.original, p.modified)
			assert.Equal(t, p.modified, Reconstruct(segs, Removed), "%s modified for %q -> %q", name, p.original, p.modified)
			for _, s := range segs {
				assert.NotEmpty(t, s.Text, "%s produced an empty segment", name)
			}
		}
	}
}

func TestIdenticalInputs(t *testing.T) {
	x := "Bab I Pendahuluan"
	segs := Words(x, x)
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Text: x, Kind: Unchanged}, segs[0])
}

func TestEmptyOriginal(t *testing.T) {
	assert.Empty(t, Words("", ""))

	segs := Words("", "Abstrak")
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Text: "Abstrak", Kind: Added}, segs[0])
}

func TestNoSharedTokens(t *testing.T) {
	segs := Words("foo", "bar!")
	assert.Equal(t, []Segment{
		{Text: "foo", Kind: Removed},
		{Text: "bar!", Kind: Added},
	}, segs)
}

func TestWordGranularity(t *testing.T) {
	segs := Words("a b", "a c")
	assert.Equal(t, []Segment{
		{Text: "a ", Kind: Unchanged},
		{Text: "b", Kind: Removed},
		{Text: "c", Kind: Added},
	}, segs)

	// a single changed letter replaces the whole word
	segs = Words("penelitian", "penelitan")
	assert.Equal(t, []Segment{
		{Text: "penelitian", Kind: Removed},
		{Text: "penelitan", Kind: Added},
	}, segs)
}

func TestDeterministic(t *testing.T) {
	a := strings.Repeat("Saya melakukan penelitian ini. ", 50)
	b := strings.Repeat("Penelitian ini dilakukan oleh penulis. ", 50)
	first := Words(a, b)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Words(a, b))
	}
}

func TestRewrittenSentence(t *testing.T) {
	segs := Readable("Saya melakukan penelitian ini.", "Penelitian ini dilakukan oleh penulis.")

	var removed, added string
	for _, s := range segs {
		switch s.Kind {
		case Removed:
			removed += s.Text
		case Added:
			added += s.Text
		}
	}
	assert.Contains(t, removed, "Saya melakukan")
	assert.Contains(t, added, "dilakukan oleh penulis")
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"Halo", ",", "  ", "dunia", "!", "!"}, tokenize("Halo,  dunia!!"))
	assert.Empty(t, tokenize(""))
}

func TestStats(t *testing.T) {
	segs := Words("a b c", "a x c")
	assert.Equal(t, Summary{Unchanged: 2, Added: 1, Removed: 1}, Stats(segs))
}

func TestTokenRuneRoundTrip(t *testing.T) {
	for _, i := range []int{0, 1, 0xD7FE, 0xD7FF, 0xD800, 0x20000} {
		assert.Equal(t, i, runeIndex(tokenRune(i)))
		r := tokenRune(i)
		assert.False(t, r >= 0xD800 && r < 0xE000, "rune %x is a surrogate", r)
	}
}
