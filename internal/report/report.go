package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"patchview/internal/patch"
)

// StatTable returns a diffstat table with one row per file and a totals footer.
func StatTable(p patch.Patch) table.Writer {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"#", "FILE", "HUNKS", "ADDED", "REMOVED"})
	for i, f := range p.Files {
		path := f.DisplayPath()
		if f.OldPath != "" && f.NewPath != "" && f.OldPath != f.NewPath {
			path = fmt.Sprintf("%s → %s", f.OldPath, f.NewPath)
		}
		tw.AppendRow(table.Row{i + 1, path, len(f.Hunks), f.Stats.Additions, f.Stats.Deletions})
	}
	total := p.TotalStats()
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d file(s)", len(p.Files)), p.HunkCount(), total.Additions, total.Deletions})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	return tw
}

// WriteStat renders the stat table followed by header and diagnostic notes.
func WriteStat(w io.Writer, r patch.Report) error {
	h := r.Patch.Header
	if h.Subject != "" {
		if _, err := fmt.Fprintf(w, "Subject: %s\n", h.Subject); err != nil {
			return err
		}
	}
	if h.From != "" {
		if _, err := fmt.Fprintf(w, "From:    %s\n", h.From); err != nil {
			return err
		}
	}
	if r.Patch.Empty() {
		_, err := fmt.Fprintln(w, "No changes.")
		return err
	}
	if _, err := fmt.Fprintln(w, StatTable(r.Patch).Render()); err != nil {
		return err
	}
	if r.Clean() {
		return nil
	}
	if n := len(r.Dropped); n > 0 {
		if _, err := fmt.Fprintf(w, "%d line(s) inside hunks were ignored.\n", n); err != nil {
			return err
		}
	}
	if r.Strict != nil {
		if _, err := fmt.Fprintf(w, "warning: %v\n", r.Strict); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the parsed patch as indented JSON.
func WriteJSON(w io.Writer, p patch.Patch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode patch: %w", err)
	}
	return nil
}
