package diffview

import (
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

type syntaxClass int

const (
	syntaxClassNone syntaxClass = iota
	syntaxClassKeyword
	syntaxClassString
	syntaxClassComment
	syntaxClassNumber
	syntaxClassFunction
)

// syntaxRange covers runes [start, end) of a line.
type syntaxRange struct {
	start int
	end   int
	class syntaxClass
}

func syntaxRangesForPath(path, text string) []syntaxRange {
	if text == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return nil
	}

	var out []syntaxRange
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		n := utf8.RuneCountInString(tok.Value)
		if class := classifyToken(tok.Type); class != syntaxClassNone && n > 0 {
			out = append(out, syntaxRange{start: pos, end: pos + n, class: class})
		}
		pos += n
	}
	return out
}

func classifyToken(t chroma.TokenType) syntaxClass {
	switch {
	case t.InCategory(chroma.Keyword):
		return syntaxClassKeyword
	case t.InSubCategory(chroma.LiteralString):
		return syntaxClassString
	case t.InCategory(chroma.Comment):
		return syntaxClassComment
	case t.InSubCategory(chroma.LiteralNumber):
		return syntaxClassNumber
	case t == chroma.NameFunction:
		return syntaxClassFunction
	}
	return syntaxClassNone
}
