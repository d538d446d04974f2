package diffview

import (
	"fmt"

	"patchview/internal/patch"
)

// BuildRows flattens a parsed patch into display rows. Files for which
// collapsed returns true contribute only their header row.
func BuildRows(p patch.Patch, collapsed func(fileIndex int) bool) []DiffRow {
	rows := make([]DiffRow, 0, 64)
	for fileIdx, f := range p.Files {
		path := f.DisplayPath()
		rows = append(rows, DiffRow{
			Kind:      RowFileHeader,
			OldText:   fileHeaderText(f, collapsed != nil && collapsed(fileIdx)),
			Path:      path,
			FileIndex: fileIdx,
		})
		if collapsed != nil && collapsed(fileIdx) {
			continue
		}

		for hunkID, h := range f.Hunks {
			rows = append(rows, DiffRow{
				Kind:      RowHunkHeader,
				OldText:   h.Title(),
				Path:      path,
				FileIndex: fileIdx,
				HunkID:    hunkID,
			})

			lines := h.Lines
			for i := 0; i < len(lines); {
				switch lines[i].Type {
				case patch.LineContext:
					rows = append(rows, DiffRow{
						Kind:      RowContext,
						OldLine:   lines[i].OldLineNumber,
						NewLine:   lines[i].NewLineNumber,
						OldText:   lines[i].Content,
						NewText:   lines[i].Content,
						Path:      path,
						FileIndex: fileIdx,
						HunkID:    hunkID,
					})
					i++

				case patch.LineDeletion:
					start := i
					for i < len(lines) && lines[i].Type == patch.LineDeletion {
						i++
					}
					dels := lines[start:i]

					addStart := i
					for i < len(lines) && lines[i].Type == patch.LineAddition {
						i++
					}
					rows = append(rows, pairEditRuns(path, fileIdx, hunkID, dels, lines[addStart:i])...)

				case patch.LineAddition:
					start := i
					for i < len(lines) && lines[i].Type == patch.LineAddition {
						i++
					}
					rows = append(rows, pairEditRuns(path, fileIdx, hunkID, nil, lines[start:i])...)
				}
			}
		}
	}
	return rows
}

func pairEditRuns(path string, fileIdx, hunkID int, dels, adds []patch.Line) []DiffRow {
	count := max(len(dels), len(adds))
	out := make([]DiffRow, 0, count)
	for i := 0; i < count; i++ {
		row := DiffRow{Path: path, FileIndex: fileIdx, HunkID: hunkID}

		hasDel := i < len(dels)
		hasAdd := i < len(adds)
		if hasDel {
			row.OldLine = dels[i].OldLineNumber
			row.OldText = dels[i].Content
		}
		if hasAdd {
			row.NewLine = adds[i].NewLineNumber
			row.NewText = adds[i].Content
		}

		switch {
		case hasDel && hasAdd:
			row.Kind = RowChange
		case hasDel:
			row.Kind = RowDelete
		default:
			row.Kind = RowAdd
		}
		out = append(out, row)
	}
	return out
}

func fileHeaderText(f patch.File, collapsed bool) string {
	marker := "▾"
	if collapsed {
		marker = "▸"
	}
	path := f.DisplayPath()
	if f.OldPath != "" && f.NewPath != "" && f.OldPath != f.NewPath {
		path = f.OldPath + " → " + f.NewPath
	}
	if path == "" {
		path = "(unknown file)"
	}
	return fmt.Sprintf("%s %s  +%d -%d", marker, path, f.Stats.Additions, f.Stats.Deletions)
}

// FileRowIndex returns the row index of the header for fileIndex, or -1.
func FileRowIndex(rows []DiffRow, fileIndex int) int {
	for i, r := range rows {
		if r.Kind == RowFileHeader && r.FileIndex == fileIndex {
			return i
		}
	}
	return -1
}
