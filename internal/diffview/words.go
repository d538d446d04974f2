package diffview

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// span covers runes [start, end).
type span struct {
	start int
	end   int
}

// Each distinct token is mapped onto one rune from the supplementary planes
// so diffmatchpatch can diff token sequences.
const (
	tokenRuneBase = 0x10000
	tokenRuneMax  = 0x10FFFF
)

// changedWordRanges returns the word ranges that differ between the old and
// new text of a change row.
func changedWordRanges(oldText, newText string) ([]span, []span) {
	if oldText == newText {
		return nil, nil
	}

	oldTokens := tokenize(oldText)
	newTokens := tokenize(newText)

	ids := make(map[string]rune)
	var vocab []string
	encode := func(tokens []string) ([]rune, bool) {
		out := make([]rune, len(tokens))
		for i, tok := range tokens {
			r, ok := ids[tok]
			if !ok {
				r = rune(tokenRuneBase + len(vocab))
				if r > tokenRuneMax {
					return nil, false
				}
				ids[tok] = r
				vocab = append(vocab, tok)
			}
			out[i] = r
		}
		return out, true
	}

	oldRunes, ok1 := encode(oldTokens)
	newRunes, ok2 := encode(newTokens)
	if !ok1 || !ok2 {
		return wholeLine(oldText), wholeLine(newText)
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(oldRunes, newRunes, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var oldSpans, newSpans []span
	oldPos, newPos := 0, 0
	for _, d := range diffs {
		width := 0
		for _, r := range d.Text {
			width += utf8.RuneCountInString(vocab[r-tokenRuneBase])
		}
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			oldPos += width
			newPos += width
		case diffmatchpatch.DiffDelete:
			oldSpans = appendSpan(oldSpans, oldPos, oldPos+width)
			oldPos += width
		case diffmatchpatch.DiffInsert:
			newSpans = appendSpan(newSpans, newPos, newPos+width)
			newPos += width
		}
	}
	return oldSpans, newSpans
}

func appendSpan(spans []span, start, end int) []span {
	if end <= start {
		return spans
	}
	if n := len(spans); n > 0 && spans[n-1].end == start {
		spans[n-1].end = end
		return spans
	}
	return append(spans, span{start: start, end: end})
}

func wholeLine(s string) []span {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return nil
	}
	return []span{{start: 0, end: n}}
}

// tokenize splits s into runs of word characters, runs of spaces and single
// punctuation runes.
func tokenize(s string) []string {
	var tokens []string
	var b strings.Builder
	kind := 0
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		k := runeKind(r)
		if k != kind || k == 3 {
			flush()
			kind = k
		}
		b.WriteRune(r)
	}
	flush()
	return tokens
}

func runeKind(r rune) int {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return 1
	case unicode.IsSpace(r):
		return 2
	default:
		return 3
	}
}
