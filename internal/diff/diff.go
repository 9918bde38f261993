// Package diff computes word-level differences between an original text and
// its corrected version for display.
//
// Both inputs are split into tokens (runs of letters and digits, runs of
// whitespace, single punctuation marks). Each distinct token is mapped to one
// rune so that go-diff's Myers implementation works on whole words, then the
// result is expanded back to text. Concatenating the unchanged and removed
// segments yields the original; unchanged and added yields the modified text.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type Kind string

const (
	Unchanged Kind = "unchanged"
	Added     Kind = "added"
	Removed   Kind = "removed"
)

type Segment struct {
	Text string `json:"text" yaml:"text"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// Words returns the minimal word-level edit script between original and modified.
func Words(original, modified string) []Segment {
	return compute(original, modified, false)
}

// Readable is like Words but folds short coincidental equalities into the
// surrounding edits, which reads better when a sentence was rewritten.
func Readable(original, modified string) []Segment {
	return compute(original, modified, true)
}

func compute(original, modified string, semantic bool) []Segment {
	if original == modified {
		if original == "" {
			return nil
		}
		return []Segment{{Text: original, Kind: Unchanged}}
	}

	var enc encoder
	a := enc.encode(tokenize(original))
	b := enc.encode(tokenize(modified))

	dmp := diffmatchpatch.New()
	// no deadline: a timed-out diff is not reproducible
	dmp.DiffTimeout = 0
	diffs := dmp.DiffMainRunes(a, b, false)
	if semantic {
		diffs = dmp.DiffCleanupSemantic(diffs)
	}

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		text := enc.decode(d.Text)
		if text == "" {
			continue
		}
		segments = appendSegment(segments, Segment{Text: text, Kind: kindOf(d.Type)})
	}
	return segments
}

func kindOf(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return Added
	case diffmatchpatch.DiffDelete:
		return Removed
	default:
		return Unchanged
	}
}

func appendSegment(segments []Segment, s Segment) []Segment {
	if n := len(segments); n > 0 && segments[n-1].Kind == s.Kind {
		segments[n-1].Text += s.Text
		return segments
	}
	return append(segments, s)
}

// encoder assigns one rune per distinct token, skipping the surrogate range so
// the encoded text survives conversion to string inside go-diff.
type encoder struct {
	index  map[string]rune
	tokens []string
}

func (e *encoder) encode(tokens []string) []rune {
	if e.index == nil {
		e.index = make(map[string]rune)
	}
	out := make([]rune, len(tokens))
	for i, tok := range tokens {
		r, ok := e.index[tok]
		if !ok {
			r = tokenRune(len(e.tokens))
			e.index[tok] = r
			e.tokens = append(e.tokens, tok)
		}
		out[i] = r
	}
	return out
}

func (e *encoder) decode(s string) string {
	var b strings.Builder
	for _, r := range s {
		b.WriteString(e.tokens[runeIndex(r)])
	}
	return b.String()
}

const (
	surrogateMin = 0xD800
	surrogateLen = 0x800
)

func tokenRune(i int) rune {
	r := rune(i + 1)
	if r >= surrogateMin {
		r += surrogateLen
	}
	return r
}

func runeIndex(r rune) int {
	if r >= surrogateMin+surrogateLen {
		r -= surrogateLen
	}
	return int(r) - 1
}

// Reconstruct joins the segments that are not of the excluded kind. Passing
// Added rebuilds the original text, passing Removed rebuilds the modified text.
func Reconstruct(segments []Segment, exclude Kind) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Kind != exclude {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}
