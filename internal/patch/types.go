package patch

import (
	"encoding/json"
	"fmt"
)

// Patch is the structured form of a git format-patch or unified diff.
type Patch struct {
	Header Header `json:"header"`
	Files  []File `json:"files"`
}

// Header holds the mail-style preamble fields. Empty strings mean the field
// was not present.
type Header struct {
	From    string `json:"from,omitempty"`
	Date    string `json:"date,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// IsZero reports whether no header field was found.
func (h Header) IsZero() bool {
	return h.From == "" && h.Date == "" && h.Subject == ""
}

// File is one "diff --git" section. Paths are empty when the header line
// carried no a/ b/ pair.
type File struct {
	OldPath string `json:"oldPath"`
	NewPath string `json:"newPath"`
	Index   string `json:"index,omitempty"`
	Hunks   []Hunk `json:"hunks"`
	Stats   Stats  `json:"stats"`
}

// DisplayPath prefers the new path, falling back to the old one for deletions.
func (f File) DisplayPath() string {
	if f.NewPath != "" && f.NewPath != "/dev/null" {
		return f.NewPath
	}
	return f.OldPath
}

// Stats counts added and deleted lines.
type Stats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{Additions: s.Additions + o.Additions, Deletions: s.Deletions + o.Deletions}
}

// Hunk is one @@ section. Header is the text after the closing @@.
type Hunk struct {
	OldStart int    `json:"oldStart"`
	OldLines int    `json:"oldLines"`
	NewStart int    `json:"newStart"`
	NewLines int    `json:"newLines"`
	Header   string `json:"header"`
	Lines    []Line `json:"lines"`
}

// Title formats the hunk back into its @@ header line.
func (h Hunk) Title() string {
	title := fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	if h.Header != "" {
		title += " " + h.Header
	}
	return title
}

// LineType classifies a hunk line. It encodes to JSON as its name.
type LineType int

const (
	LineContext LineType = iota
	LineAddition
	LineDeletion
)

func (t LineType) String() string {
	switch t {
	case LineAddition:
		return "addition"
	case LineDeletion:
		return "deletion"
	default:
		return "context"
	}
}

func (t LineType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *LineType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "context":
		*t = LineContext
	case "addition":
		*t = LineAddition
	case "deletion":
		*t = LineDeletion
	default:
		return fmt.Errorf("unknown line type %q", s)
	}
	return nil
}

// Line is one classified hunk line. OldLineNumber is set for context and
// deletion lines, NewLineNumber for context and addition lines.
type Line struct {
	Type          LineType `json:"type"`
	Content       string   `json:"content"`
	OldLineNumber *int     `json:"oldLineNumber,omitempty"`
	NewLineNumber *int     `json:"newLineNumber,omitempty"`
}
