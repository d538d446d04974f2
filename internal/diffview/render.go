package diffview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Options controls how row text is decorated.
type Options struct {
	Syntax   bool
	WordDiff bool
	TabWidth int
}

func DefaultOptions() Options {
	return Options{Syntax: true, WordDiff: true, TabWidth: 4}
}

type Layout struct {
	OldLines []string
	NewLines []string
}

const (
	cursorMark = "▸"
	prefixW    = 2
)

var (
	fileHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	hunkHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	cursorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true)
	gutterStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	addGutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	delGutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	addTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	delTextStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("210"))
	addWordStyle    = lipgloss.NewStyle().Background(lipgloss.Color("22")).Bold(true)
	delWordStyle    = lipgloss.NewStyle().Background(lipgloss.Color("52")).Bold(true)

	syntaxStyles = map[syntaxClass]lipgloss.Style{
		syntaxClassKeyword:  lipgloss.NewStyle().Foreground(lipgloss.Color("176")),
		syntaxClassString:   lipgloss.NewStyle().Foreground(lipgloss.Color("180")),
		syntaxClassComment:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		syntaxClassNumber:   lipgloss.NewStyle().Foreground(lipgloss.Color("117")),
		syntaxClassFunction: lipgloss.NewStyle().Foreground(lipgloss.Color("222")),
	}
)

// RenderSplit renders one old-side and one new-side line per row, each padded
// to exactly the given width.
func RenderSplit(rows []DiffRow, oldWidth, newWidth, cursor int, opts Options) Layout {
	oldWidth = max(1, oldWidth)
	newWidth = max(1, newWidth)
	oldNumW, newNumW := numberWidths(rows)

	out := Layout{
		OldLines: make([]string, 0, len(rows)),
		NewLines: make([]string, 0, len(rows)),
	}
	for i, row := range rows {
		isCursor := i == cursor
		if row.IsHeader() {
			out.OldLines = append(out.OldLines, renderHeader(row, oldWidth, isCursor))
			out.NewLines = append(out.NewLines, renderHeader(row, newWidth, isCursor))
			continue
		}

		var oldSpans, newSpans []span
		if opts.WordDiff && row.Kind == RowChange {
			oldSpans, newSpans = changedWordRanges(normalizeDisplayText(row.OldText, opts.TabWidth), normalizeDisplayText(row.NewText, opts.TabWidth))
		}
		out.OldLines = append(out.OldLines, renderSide(row, SideOld, oldWidth, oldNumW, isCursor, oldSpans, opts))
		out.NewLines = append(out.NewLines, renderSide(row, SideNew, newWidth, newNumW, isCursor, newSpans, opts))
	}
	return out
}

type Unified struct {
	Lines     []string
	RowStarts []int
}

// RenderUnified renders rows as a single column. Change rows take two lines,
// the deletion followed by the addition.
func RenderUnified(rows []DiffRow, width, cursor int, opts Options) Unified {
	width = max(1, width)
	oldNumW, newNumW := numberWidths(rows)
	numW := max(oldNumW, newNumW)

	out := Unified{
		Lines:     make([]string, 0, len(rows)),
		RowStarts: make([]int, 0, len(rows)),
	}
	for i, row := range rows {
		isCursor := i == cursor
		out.RowStarts = append(out.RowStarts, len(out.Lines))
		switch row.Kind {
		case RowFileHeader, RowHunkHeader:
			out.Lines = append(out.Lines, renderHeader(row, width, isCursor))
		case RowContext:
			out.Lines = append(out.Lines, renderSide(row, SideNew, width, numW, isCursor, nil, opts))
		case RowDelete:
			out.Lines = append(out.Lines, renderSide(row, SideOld, width, numW, isCursor, nil, opts))
		case RowAdd:
			out.Lines = append(out.Lines, renderSide(row, SideNew, width, numW, isCursor, nil, opts))
		case RowChange:
			var oldSpans, newSpans []span
			if opts.WordDiff {
				oldSpans, newSpans = changedWordRanges(normalizeDisplayText(row.OldText, opts.TabWidth), normalizeDisplayText(row.NewText, opts.TabWidth))
			}
			out.Lines = append(out.Lines,
				renderSide(row, SideOld, width, numW, isCursor, oldSpans, opts),
				renderSide(row, SideNew, width, numW, false, newSpans, opts),
			)
		}
	}
	return out
}

// RenderRaw renders the untouched patch text with line numbers.
func RenderRaw(text string, width, cursor, tabWidth int) []string {
	width = max(1, width)
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	numW := max(3, digits(len(lines)))

	out := make([]string, 0, len(lines))
	for i, line := range lines {
		prefix := renderPrefix(i == cursor)
		num := gutterStyle.Render(fmt.Sprintf("%*d ", numW, i+1))
		avail := max(0, width-prefixW-numW-1)
		body := ansi.Truncate(normalizeDisplayText(line, tabWidth), avail, "")
		out = append(out, padRight(prefix+num+rawLineStyle(line).Render(body), width))
	}
	return out
}

func rawLineStyle(line string) lipgloss.Style {
	switch {
	case strings.HasPrefix(line, "diff --git"):
		return fileHeaderStyle
	case strings.HasPrefix(line, "@@"):
		return hunkHeaderStyle
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return gutterStyle
	case strings.HasPrefix(line, "+"):
		return addTextStyle
	case strings.HasPrefix(line, "-"):
		return delTextStyle
	}
	return lipgloss.NewStyle()
}

func renderHeader(row DiffRow, width int, isCursor bool) string {
	header := row.OldText
	if header == "" {
		header = row.NewText
	}
	avail := max(0, width-prefixW)
	header = ansi.Truncate(header, avail, "…")

	style := hunkHeaderStyle
	if row.Kind == RowFileHeader {
		style = fileHeaderStyle
	}
	return padRight(renderPrefix(isCursor)+style.Render(header), width)
}

func renderSide(row DiffRow, side Side, width, numW int, isCursor bool, changed []span, opts Options) string {
	prefix := renderPrefix(isCursor)

	lineNo, text, marker, ok := sideContent(row, side)
	if !ok {
		return padRight(prefix, width)
	}

	num := ""
	if lineNo != nil {
		num = fmt.Sprintf("%d", *lineNo)
	}
	gutter := fmt.Sprintf("%c %*s ", marker, numW, num)
	gStyle, tStyle, wStyle := gutterStyle, lipgloss.NewStyle(), addWordStyle
	switch marker {
	case '-':
		gStyle, tStyle, wStyle = delGutterStyle, delTextStyle, delWordStyle
	case '+':
		gStyle, tStyle, wStyle = addGutterStyle, addTextStyle, addWordStyle
	}

	avail := width - prefixW - len(gutter)
	if avail <= 0 {
		return padRight(prefix+gStyle.Render(ansi.Truncate(gutter, max(0, width-prefixW), "")), width)
	}

	display := ansi.Truncate(normalizeDisplayText(text, opts.TabWidth), avail, "")
	var syntax []syntaxRange
	if opts.Syntax {
		syntax = syntaxRangesForPath(row.Path, display)
	}
	body := decorate(display, tStyle, wStyle, syntax, changed)
	return padRight(prefix+gStyle.Render(gutter)+body, width)
}

func renderPrefix(isCursor bool) string {
	if isCursor {
		return cursorStyle.Render(cursorMark) + " "
	}
	return "  "
}

// decorate styles runs of runes that share the same syntax class and change
// highlighting.
func decorate(text string, base, word lipgloss.Style, syntax []syntaxRange, changed []span) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	classes := make([]syntaxClass, len(runes))
	for _, r := range syntax {
		for i := r.start; i < r.end && i < len(runes); i++ {
			classes[i] = r.class
		}
	}
	marked := make([]bool, len(runes))
	for _, s := range changed {
		for i := s.start; i < s.end && i < len(runes); i++ {
			marked[i] = true
		}
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= len(runes); i++ {
		if i < len(runes) && classes[i] == classes[start] && marked[i] == marked[start] {
			continue
		}
		style := base
		if s, ok := syntaxStyles[classes[start]]; ok {
			style = s
		}
		if marked[start] {
			style = style.Inherit(word)
		}
		b.WriteString(style.Render(string(runes[start:i])))
		start = i
	}
	return b.String()
}

func sideContent(row DiffRow, side Side) (*int, string, rune, bool) {
	switch side {
	case SideOld:
		if row.OldLine == nil {
			return nil, "", ' ', false
		}
		marker := ' '
		if row.Kind == RowDelete || row.Kind == RowChange {
			marker = '-'
		}
		return row.OldLine, row.OldText, marker, true

	case SideNew:
		if row.NewLine == nil {
			return nil, "", ' ', false
		}
		marker := ' '
		if row.Kind == RowAdd || row.Kind == RowChange {
			marker = '+'
		}
		return row.NewLine, row.NewText, marker, true
	}

	return nil, "", ' ', false
}

func numberWidths(rows []DiffRow) (int, int) {
	maxOld := 0
	maxNew := 0
	for _, row := range rows {
		if row.OldLine != nil && *row.OldLine > maxOld {
			maxOld = *row.OldLine
		}
		if row.NewLine != nil && *row.NewLine > maxNew {
			maxNew = *row.NewLine
		}
	}
	return max(3, digits(maxOld)), max(3, digits(maxNew))
}

// normalizeDisplayText expands tabs and drops carriage returns so widths are
// predictable.
func normalizeDisplayText(s string, tabWidth int) string {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	if !strings.ContainsAny(s, "\t\r") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\r':
			continue
		case '\t':
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// padRight fits s to exactly width cells.
func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w > width {
		return ansi.Truncate(s, width, "")
	}
	if w == width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}
