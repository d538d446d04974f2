package patch

import (
	"fmt"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// Report is a Patch together with what the lenient parse skipped and the
// outcome of a strict re-parse.
type Report struct {
	Patch       Patch
	Dropped     []DroppedLine
	Strict      error
	StrictFiles int
}

// Inspect parses text like Parse and additionally collects diagnostics.
func Inspect(text string) Report {
	s := scan(text)
	r := Report{
		Patch:   s.patch,
		Dropped: s.dropped,
	}

	fileDiffs, err := sgdiff.ParseMultiFileDiff([]byte(text))
	if err != nil {
		r.Strict = fmt.Errorf("strict parse: %w", err)
		return r
	}
	r.StrictFiles = len(fileDiffs)
	if r.StrictFiles != len(r.Patch.Files) {
		r.Strict = fmt.Errorf("strict parse found %d files, lenient parse found %d", r.StrictFiles, len(r.Patch.Files))
	}
	return r
}

func (r Report) Clean() bool {
	return r.Strict == nil && len(r.Dropped) == 0
}
