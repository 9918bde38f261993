package diff

import "unicode"

type class int

const (
	classWord class = iota
	classSpace
	classSymbol
)

func classify(r rune) class {
	switch {
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classSymbol
	}
}

// tokenize splits s into word runs, whitespace runs and single symbols.
// Concatenating the tokens yields s.
func tokenize(s string) []string {
	var tokens []string
	start := -1
	var prev class
	for i, r := range s {
		c := classify(r)
		if start >= 0 && (c != prev || c == classSymbol) {
			tokens = append(tokens, s[start:i])
			start = -1
		}
		if start < 0 {
			start = i
		}
		prev = c
	}
	if start >= 0 {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

func isWord(tok string) bool {
	for _, r := range tok {
		return classify(r) == classWord
	}
	return false
}

// Summary counts words per segment kind.
type Summary struct {
	Unchanged int `json:"unchanged" yaml:"unchanged"`
	Added     int `json:"added" yaml:"added"`
	Removed   int `json:"removed" yaml:"removed"`
}

func Stats(segments []Segment) Summary {
	var s Summary
	for _, seg := range segments {
		n := 0
		for _, tok := range tokenize(seg.Text) {
			if isWord(tok) {
				n++
			}
		}
		switch seg.Kind {
		case Added:
			s.Added += n
		case Removed:
			s.Removed += n
		default:
			s.Unchanged += n
		}
	}
	return s
}
