package app

import "testing"

func TestPaneWidths(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		desired   int
		hide      bool
		mode      viewMode
		wantLeft  int
		wantRight int
	}{
		{"split with files", 120, 40, false, viewSplit, 40, 75},
		{"unified with files", 120, 40, false, viewUnified, 40, 76},
		{"raw with files", 120, 40, false, viewRaw, 40, 76},
		{"split hidden files", 120, 40, true, viewSplit, 0, 117},
		{"unified hidden files", 120, 40, true, viewUnified, 0, 118},
		{"file pane capped at half", 60, 50, false, viewUnified, 28, 28},
		{"tiny terminal", 4, 40, false, viewSplit, 1, 1},
		{"tiny hidden", 2, 40, true, viewSplit, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, right := paneWidths(tt.total, tt.desired, tt.hide, tt.mode)
			if left != tt.wantLeft || right != tt.wantRight {
				t.Fatalf("paneWidths() = (%d,%d), want (%d,%d)", left, right, tt.wantLeft, tt.wantRight)
			}
		})
	}
}

func TestSplitRightPanes(t *testing.T) {
	if l, r := splitRightPanes(75); l != 37 || r != 38 {
		t.Fatalf("splitRightPanes(75) = (%d,%d), want (37,38)", l, r)
	}
	if l, r := splitRightPanes(1); l != 1 || r != 1 {
		t.Fatalf("splitRightPanes(1) = (%d,%d), want (1,1)", l, r)
	}
}
