package patch

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	fileHeaderRE = regexp.MustCompile(`diff --git a/(.+) b/(.+)`)
	hunkHeaderRE = regexp.MustCompile(`@@ -(\d+),?(\d*) \+(\d+),?(\d*) @@(.*)`)
	versionRE    = regexp.MustCompile(`^\d+(\.\d+)+`)
)

type stage int

const (
	stageNoFile stage = iota
	stageInFile
	stageInHunk
)

func (s stage) String() string {
	switch s {
	case stageInFile:
		return "in-file"
	case stageInHunk:
		return "in-hunk"
	default:
		return "no-file"
	}
}

// DroppedLine is a line that was ignored while a hunk was open.
type DroppedLine struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// scanner carries the fold state. The open file and hunk are only appended to
// the result on flush.
type scanner struct {
	stage   stage
	patch   Patch
	file    File
	hunk    Hunk
	oldLine int
	newLine int
	lineNo  int
	next    string
	last    bool
	dropped []DroppedLine
}

type rule struct {
	name  string
	match func(s *scanner, line string) bool
	apply func(s *scanner, line string)
}

// rules is evaluated in order; the first matching rule consumes the line.
var rules = []rule{
	{
		name:  "from",
		match: prefix("From:"),
		apply: func(s *scanner, line string) { s.patch.Header.From = strings.TrimSpace(line[5:]) },
	},
	{
		name:  "date",
		match: prefix("Date:"),
		apply: func(s *scanner, line string) { s.patch.Header.Date = strings.TrimSpace(line[5:]) },
	},
	{
		name:  "subject",
		match: prefix("Subject:"),
		apply: func(s *scanner, line string) { s.patch.Header.Subject = strings.TrimSpace(line[8:]) },
	},
	{
		name:  "file",
		match: prefix("diff --git"),
		apply: (*scanner).startFile,
	},
	{
		name: "index",
		match: func(s *scanner, line string) bool {
			return s.stage != stageNoFile && strings.HasPrefix(line, "index ")
		},
		apply: func(s *scanner, line string) { s.file.Index = line[len("index "):] },
	},
	{
		name: "paths",
		match: func(_ *scanner, line string) bool {
			return strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "+++ ")
		},
		apply: func(*scanner, string) {},
	},
	{
		name: "hunk",
		match: func(s *scanner, line string) bool {
			return s.stage != stageNoFile && strings.HasPrefix(line, "@@")
		},
		apply: (*scanner).startHunk,
	},
	{
		// A "-- " line ends the hunk when the hunk is already complete or when
		// a git version string follows it, as format-patch writes at the end
		// of a mail. Otherwise it is a deleted "- " line.
		name: "signature",
		match: func(s *scanner, line string) bool {
			return s.stage == stageInHunk && isSignature(line) &&
				(s.hunkComplete() || versionRE.MatchString(s.next))
		},
		apply: func(s *scanner, _ string) { s.flushHunk() },
	},
	{
		name: "body",
		match: func(s *scanner, _ string) bool {
			return s.stage == stageInHunk
		},
		apply: (*scanner).bodyLine,
	},
}

func prefix(p string) func(*scanner, string) bool {
	return func(_ *scanner, line string) bool {
		return strings.HasPrefix(line, p)
	}
}

// Parse converts patch text into a Patch. It never fails: lines it cannot
// place are ignored and malformed input yields a partial result.
func Parse(text string) Patch {
	s := scan(text)
	return s.patch
}

func scan(text string) *scanner {
	s := &scanner{patch: Patch{Files: []File{}}}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		s.lineNo = i + 1
		s.next = ""
		s.last = i == len(lines)-1
		if !s.last {
			s.next = lines[i+1]
		}
		s.step(line)
	}
	s.finish()
	return s
}

func (s *scanner) step(line string) {
	if r := classify(s, line); r != nil {
		r.apply(s, line)
	}
}

func classify(s *scanner, line string) *rule {
	for i := range rules {
		if rules[i].match(s, line) {
			return &rules[i]
		}
	}
	return nil
}

func (s *scanner) finish() {
	s.flushHunk()
	s.flushFile()
}

func (s *scanner) flushHunk() {
	if s.stage != stageInHunk {
		return
	}
	s.file.Hunks = append(s.file.Hunks, s.hunk)
	s.hunk = Hunk{}
	s.stage = stageInFile
}

func (s *scanner) flushFile() {
	if s.stage == stageNoFile {
		return
	}
	s.flushHunk()
	s.patch.Files = append(s.patch.Files, s.file)
	s.file = File{}
	s.stage = stageNoFile
}

func (s *scanner) startFile(line string) {
	s.flushFile()
	s.file = File{Hunks: []Hunk{}}
	if m := fileHeaderRE.FindStringSubmatch(line); m != nil {
		s.file.OldPath = m[1]
		s.file.NewPath = m[2]
	}
	s.stage = stageInFile
}

func (s *scanner) startHunk(line string) {
	m := hunkHeaderRE.FindStringSubmatch(line)
	if m == nil {
		return
	}
	oldStart, ok1 := atoi(m[1], 0)
	oldLines, ok2 := atoi(m[2], 1)
	newStart, ok3 := atoi(m[3], 0)
	newLines, ok4 := atoi(m[4], 1)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return
	}

	s.flushHunk()
	s.hunk = Hunk{
		OldStart: oldStart,
		OldLines: oldLines,
		NewStart: newStart,
		NewLines: newLines,
		Header:   strings.TrimSpace(m[5]),
		Lines:    []Line{},
	}
	s.oldLine = oldStart
	s.newLine = newStart
	s.stage = stageInHunk
}

func (s *scanner) bodyLine(line string) {
	if line == "" {
		if !s.last {
			s.drop(line, "empty line")
		}
		return
	}

	content := line[1:]
	switch line[0] {
	case '+':
		s.hunk.Lines = append(s.hunk.Lines, Line{
			Type:          LineAddition,
			Content:       content,
			NewLineNumber: intPtr(s.newLine),
		})
		s.newLine++
		s.file.Stats.Additions++
	case '-':
		s.hunk.Lines = append(s.hunk.Lines, Line{
			Type:          LineDeletion,
			Content:       content,
			OldLineNumber: intPtr(s.oldLine),
		})
		s.oldLine++
		s.file.Stats.Deletions++
	case ' ':
		s.hunk.Lines = append(s.hunk.Lines, Line{
			Type:          LineContext,
			Content:       content,
			OldLineNumber: intPtr(s.oldLine),
			NewLineNumber: intPtr(s.newLine),
		})
		s.oldLine++
		s.newLine++
	case '\\':
		s.drop(line, "no-newline marker")
	default:
		s.drop(line, "unknown line prefix")
	}
}

func (s *scanner) drop(line, reason string) {
	s.dropped = append(s.dropped, DroppedLine{Number: s.lineNo, Text: line, Reason: reason})
}

// isSignature matches the mail signature separator, with or without a
// trailing carriage return.
func isSignature(line string) bool {
	line = strings.TrimSuffix(line, "\r")
	return line == "-- " || line == "--"
}

// hunkComplete reports whether the open hunk has consumed the line counts its
// header declared.
func (s *scanner) hunkComplete() bool {
	var old, neu int
	for _, l := range s.hunk.Lines {
		switch l.Type {
		case LineContext:
			old++
			neu++
		case LineDeletion:
			old++
		case LineAddition:
			neu++
		}
	}
	return old >= s.hunk.OldLines && neu >= s.hunk.NewLines
}

func atoi(digits string, fallback int) (int, bool) {
	if digits == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func intPtr(n int) *int {
	v := n
	return &v
}
