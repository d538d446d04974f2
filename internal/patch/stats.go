package patch

// TotalStats folds the per-file stats into document-level totals.
func (p Patch) TotalStats() Stats {
	var total Stats
	for _, f := range p.Files {
		total = total.Add(f.Stats)
	}
	return total
}

// Empty reports the displayable "no changes" state.
func (p Patch) Empty() bool {
	return len(p.Files) == 0
}

func (p Patch) HunkCount() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Hunks)
	}
	return n
}
