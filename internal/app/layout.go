package app

// paneWidths returns content widths for the file list and the diff area.
func paneWidths(totalWidth int, desiredLeft int, hideLeft bool, mode viewMode) (int, int) {
	// Border overhead for the diff area is 3 columns when split (outer left,
	// shared divider, outer right) and 2 otherwise.
	diffOverhead := 2
	if mode == viewSplit {
		diffOverhead = 3
	}

	if hideLeft {
		available := totalWidth - diffOverhead
		if available < 1 {
			return 0, 1
		}
		return 0, available
	}

	// The file list adds its own left and right border.
	available := totalWidth - diffOverhead - 2
	if available < 2 {
		return 1, 1
	}

	left := min(max(desiredLeft, 1), available/2)
	right := available - left
	return left, right
}

// splitRightPanes divides the diff area between the old and new side.
func splitRightPanes(totalWidth int) (int, int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left := totalWidth / 2
	return left, totalWidth - left
}
