package patch

import (
	"reflect"
	"strings"
	"testing"
)

const authPatch = `Subject: [PATCH] Fix bug
diff --git a/src/auth.js b/src/auth.js
index 111..222 100644
--- a/src/auth.js
+++ b/src/auth.js
@@ -10,8 +10,8 @@ function authenticate(user) {
   if (!user) {
-    return user.isValid;
+    return user.isValid && user.isActive;
 }
`

const twoFilePatch = `From 3f2a1c9e8b7d6a5f4e3d2c1b0a9f8e7d6c5b4a39 Mon Sep 17 00:00:00 2001
From: Jane Doe <jane@example.com>
Date: Mon, 1 Jan 2024 10:00:00 +0000
Subject: [PATCH] Rename helper and add test

---
 a.go      | 3 ++-
 a_test.go | 2 ++
 2 files changed, 4 insertions(+), 1 deletion(-)

diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ -1,3 +1,4 @@
 package a
-func old() {}
+func renamed() {}
+func extra() {}
 // end
diff --git a/a_test.go b/a_test.go
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/a_test.go
@@ -0,0 +1,2 @@
+package a
+// test
--
2.43.0

`

func TestParseAuthExample(t *testing.T) {
	p := Parse(authPatch)

	if got, want := p.Header.Subject, "[PATCH] Fix bug"; got != want {
		t.Fatalf("Header.Subject = %q, want %q", got, want)
	}
	if len(p.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(p.Files))
	}
	f := p.Files[0]
	if f.OldPath != "src/auth.js" || f.NewPath != "src/auth.js" {
		t.Fatalf("paths = (%q,%q), want src/auth.js twice", f.OldPath, f.NewPath)
	}
	if f.Index != "111..222 100644" {
		t.Fatalf("Index = %q", f.Index)
	}
	if got, want := f.Stats, (Stats{Additions: 1, Deletions: 1}); got != want {
		t.Fatalf("Stats = %+v, want %+v", got, want)
	}
	if len(f.Hunks) != 1 {
		t.Fatalf("len(Hunks) = %d, want 1", len(f.Hunks))
	}
	h := f.Hunks[0]
	if h.OldStart != 10 || h.OldLines != 8 || h.NewStart != 10 || h.NewLines != 8 {
		t.Fatalf("hunk range = %d,%d %d,%d, want 10,8 10,8", h.OldStart, h.OldLines, h.NewStart, h.NewLines)
	}
	if h.Header != "function authenticate(user) {" {
		t.Fatalf("hunk Header = %q", h.Header)
	}

	wantTypes := []LineType{LineContext, LineDeletion, LineAddition, LineContext}
	if len(h.Lines) != len(wantTypes) {
		t.Fatalf("len(Lines) = %d, want %d", len(h.Lines), len(wantTypes))
	}
	for i, want := range wantTypes {
		if got := h.Lines[i].Type; got != want {
			t.Fatalf("Lines[%d].Type = %v, want %v", i, got, want)
		}
	}
	if got := h.Lines[2].Content; got != "    return user.isValid && user.isActive;" {
		t.Fatalf("addition content = %q", got)
	}
}

func TestParseLineNumbers(t *testing.T) {
	p := Parse(authPatch)
	lines := p.Files[0].Hunks[0].Lines

	assertNum(t, "ctx old", lines[0].OldLineNumber, 10)
	assertNum(t, "ctx new", lines[0].NewLineNumber, 10)
	assertNum(t, "del old", lines[1].OldLineNumber, 11)
	if lines[1].NewLineNumber != nil {
		t.Fatalf("deletion NewLineNumber = %d, want nil", *lines[1].NewLineNumber)
	}
	assertNum(t, "add new", lines[2].NewLineNumber, 11)
	if lines[2].OldLineNumber != nil {
		t.Fatalf("addition OldLineNumber = %d, want nil", *lines[2].OldLineNumber)
	}
	assertNum(t, "ctx old", lines[3].OldLineNumber, 12)
	assertNum(t, "ctx new", lines[3].NewLineNumber, 12)
}

func TestParseEmptyInput(t *testing.T) {
	p := Parse("")
	if !p.Header.IsZero() {
		t.Fatalf("Header = %+v, want zero", p.Header)
	}
	if p.Files == nil || len(p.Files) != 0 {
		t.Fatalf("Files = %#v, want empty non-nil slice", p.Files)
	}
	if !p.Empty() {
		t.Fatalf("Empty() = false, want true")
	}
}

func TestParseHeaderOnly(t *testing.T) {
	p := Parse("From: A <a@example.com>\nDate: Tue, 2 Jan 2024 00:00:00 +0000\nSubject:   Hello  \n\nbody text\n")
	if len(p.Files) != 0 {
		t.Fatalf("len(Files) = %d, want 0", len(p.Files))
	}
	want := Header{From: "A <a@example.com>", Date: "Tue, 2 Jan 2024 00:00:00 +0000", Subject: "Hello"}
	if p.Header != want {
		t.Fatalf("Header = %+v, want %+v", p.Header, want)
	}
}

func TestParseHunkWithoutCounts(t *testing.T) {
	p := Parse("diff --git a/x b/x\n@@ -5 +5 @@\n-a\n+b\n")
	h := p.Files[0].Hunks[0]
	if h.OldLines != 1 || h.NewLines != 1 {
		t.Fatalf("counts = (%d,%d), want (1,1)", h.OldLines, h.NewLines)
	}
	if h.OldStart != 5 || h.NewStart != 5 {
		t.Fatalf("starts = (%d,%d), want (5,5)", h.OldStart, h.NewStart)
	}
	if h.Header != "" {
		t.Fatalf("Header = %q, want empty", h.Header)
	}
}

func TestParseMultipleFilesAndSignature(t *testing.T) {
	p := Parse(twoFilePatch)

	if len(p.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(p.Files))
	}
	if got, want := p.Files[0].Stats, (Stats{Additions: 2, Deletions: 1}); got != want {
		t.Fatalf("Files[0].Stats = %+v, want %+v", got, want)
	}
	if got, want := p.Files[1].Stats, (Stats{Additions: 2}); got != want {
		t.Fatalf("Files[1].Stats = %+v, want %+v", got, want)
	}
	if n := len(p.Files[1].Hunks[0].Lines); n != 2 {
		t.Fatalf("second file line count = %d, want 2", n)
	}
	if got, want := p.TotalStats(), (Stats{Additions: 4, Deletions: 1}); got != want {
		t.Fatalf("TotalStats() = %+v, want %+v", got, want)
	}
	if p.Header.From != "Jane Doe <jane@example.com>" {
		t.Fatalf("Header.From = %q", p.Header.From)
	}
	if p.HunkCount() != 2 {
		t.Fatalf("HunkCount() = %d, want 2", p.HunkCount())
	}
}

func TestParseSignatureAfterIncompleteHunk(t *testing.T) {
	withSig := authPatch + "-- \n2.43.0\n"
	p := Parse(withSig)
	base := Parse(authPatch)
	if !reflect.DeepEqual(p.Files, base.Files) {
		t.Fatalf("signature block changed files:\n got %+v\nwant %+v", p.Files, base.Files)
	}
}

func TestParseSignatureWithCRLF(t *testing.T) {
	lf := Parse("diff --git a/a b/a\n@@ -1 +1 @@\n-x\n+y\n-- \n2.43.0\n")
	crlf := Parse("diff --git a/a b/a\n@@ -1 +1 @@\n-x\n+y\n-- \r\n2.43.0\r\n")

	want := Stats{Additions: 1, Deletions: 1}
	if got := lf.TotalStats(); got != want {
		t.Fatalf("LF TotalStats() = %+v, want %+v", got, want)
	}
	if got := crlf.TotalStats(); got != want {
		t.Fatalf("CRLF TotalStats() = %+v, want %+v", got, want)
	}
}

func TestParseCRLFSignatureAfterIncompleteHunk(t *testing.T) {
	p := Parse("diff --git a/a b/a\r\n@@ -1,3 +1,3 @@\r\n-x\r\n+y\r\n-- \r\n2.43.0\r\n")
	if got := p.TotalStats(); got != (Stats{Additions: 1, Deletions: 1}) {
		t.Fatalf("TotalStats() = %+v, want 1/1", got)
	}
}

func TestParseDashDashLineInsideHunkIsDeletion(t *testing.T) {
	// "-- " here removes a line containing "- ", the hunk still expects it.
	p := Parse("diff --git a/l b/l\n@@ -1,2 +1,1 @@\n-- \n keep\n")
	f := p.Files[0]
	if f.Stats.Deletions != 1 {
		t.Fatalf("Deletions = %d, want 1", f.Stats.Deletions)
	}
	if got := f.Hunks[0].Lines[0].Content; got != "- " {
		t.Fatalf("deleted content = %q, want %q", got, "- ")
	}
}

func TestParseDropsContentBeforeFirstFile(t *testing.T) {
	p := Parse("@@ -1 +1 @@\n+orphan\ndiff --git a/a b/a\n@@ -1 +1 @@\n+kept\n")
	if len(p.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(p.Files))
	}
	lines := p.Files[0].Hunks[0].Lines
	if len(lines) != 1 || lines[0].Content != "kept" {
		t.Fatalf("lines = %+v, want only kept", lines)
	}
}

func TestParseIgnoresUnknownLinesInHunk(t *testing.T) {
	p := Parse("diff --git a/a b/a\n@@ -1,2 +1,2 @@\n a\nGARBAGE\n\\ No newline at end of file\n-b\n+c\n")
	f := p.Files[0]
	if n := len(f.Hunks[0].Lines); n != 3 {
		t.Fatalf("len(Lines) = %d, want 3", n)
	}
	assertNum(t, "deletion old", f.Hunks[0].Lines[1].OldLineNumber, 2)
}

func TestParseFileHeaderWithoutPrefixes(t *testing.T) {
	p := Parse("diff --git weird\n@@ -1 +1 @@\n+x\n")
	if len(p.Files) != 1 {
		t.Fatalf("len(Files) = %d, want 1", len(p.Files))
	}
	if p.Files[0].OldPath != "" || p.Files[0].NewPath != "" {
		t.Fatalf("paths = (%q,%q), want empty", p.Files[0].OldPath, p.Files[0].NewPath)
	}
	if p.Files[0].Stats.Additions != 1 {
		t.Fatalf("Additions = %d, want 1", p.Files[0].Stats.Additions)
	}
}

func TestParseMalformedHunkHeaderIsIgnored(t *testing.T) {
	p := Parse("diff --git a/a b/a\n@@ nonsense @@\n+x\n")
	if n := len(p.Files[0].Hunks); n != 0 {
		t.Fatalf("len(Hunks) = %d, want 0", n)
	}
	if p.Files[0].Stats.Additions != 0 {
		t.Fatalf("Additions = %d, want 0", p.Files[0].Stats.Additions)
	}
}

func TestParsePreservesCarriageReturns(t *testing.T) {
	p := Parse("diff --git a/a b/a\r\n@@ -1 +1 @@\r\n+x\r\n")
	if got := p.Files[0].NewPath; got != "a\r" {
		t.Fatalf("NewPath = %q, want %q", got, "a\r")
	}
	if got := p.Files[0].Hunks[0].Lines[0].Content; got != "x\r" {
		t.Fatalf("Content = %q, want %q", got, "x\r")
	}
}

func TestParseIsDeterministic(t *testing.T) {
	for _, in := range []string{"", authPatch, twoFilePatch} {
		if a, b := Parse(in), Parse(in); !reflect.DeepEqual(a, b) {
			t.Fatalf("Parse() not deterministic for %q", in)
		}
	}
}

func TestParseStatsMatchLineCounts(t *testing.T) {
	for _, in := range []string{authPatch, twoFilePatch, authPatch + twoFilePatch} {
		p := Parse(in)
		for _, f := range p.Files {
			var adds, dels int
			for _, h := range f.Hunks {
				for _, l := range h.Lines {
					switch l.Type {
					case LineAddition:
						adds++
					case LineDeletion:
						dels++
					}
				}
			}
			if adds != f.Stats.Additions || dels != f.Stats.Deletions {
				t.Fatalf("%s: stats %+v, counted +%d -%d", f.NewPath, f.Stats, adds, dels)
			}
		}
	}
}

func TestParseLineNumbersStrictlyIncrease(t *testing.T) {
	p := Parse(twoFilePatch + authPatch)
	for _, f := range p.Files {
		for _, h := range f.Hunks {
			nextOld, nextNew := h.OldStart, h.NewStart
			for _, l := range h.Lines {
				if l.OldLineNumber != nil {
					if *l.OldLineNumber != nextOld {
						t.Fatalf("%s: old line %d, want %d", f.NewPath, *l.OldLineNumber, nextOld)
					}
					nextOld++
				}
				if l.NewLineNumber != nil {
					if *l.NewLineNumber != nextNew {
						t.Fatalf("%s: new line %d, want %d", f.NewPath, *l.NewLineNumber, nextNew)
					}
					nextNew++
				}
			}
		}
	}
}

func TestClassifyRulePriority(t *testing.T) {
	inHunk := &scanner{stage: stageInHunk, hunk: Hunk{OldLines: 5, NewLines: 5}}
	noFile := &scanner{stage: stageNoFile}

	tests := []struct {
		name  string
		state *scanner
		line  string
		want  string
	}{
		{"from", inHunk, "From: x", "from"},
		{"date", noFile, "Date: now", "date"},
		{"subject", noFile, "Subject: s", "subject"},
		{"file", inHunk, "diff --git a/x b/x", "file"},
		{"index needs file", noFile, "index abc", ""},
		{"index", inHunk, "index abc..def", "index"},
		{"minus paths", inHunk, "--- a/x", "paths"},
		{"plus paths", noFile, "+++ b/x", "paths"},
		{"hunk needs file", noFile, "@@ -1 +1 @@", ""},
		{"hunk", inHunk, "@@ -1 +1 @@", "hunk"},
		{"signature on open hunk", inHunk, "-- ", "body"},
		{"body", inHunk, "+x", "body"},
		{"outside hunk", noFile, "+x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ""
			if r := classify(tt.state, tt.line); r != nil {
				got = r.name
			}
			if got != tt.want {
				t.Fatalf("classify(%s, %q) = %q, want %q", tt.state.stage, tt.line, got, tt.want)
			}
		})
	}
}

func TestHunkTitle(t *testing.T) {
	h := Hunk{OldStart: 1, OldLines: 2, NewStart: 3, NewLines: 4, Header: "func f()"}
	if got, want := h.Title(), "@@ -1,2 +3,4 @@ func f()"; got != want {
		t.Fatalf("Title() = %q, want %q", got, want)
	}
}

func TestLineTypeJSON(t *testing.T) {
	b, err := LineDeletion.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `"deletion"` {
		t.Fatalf("MarshalJSON() = %s", b)
	}
	var lt LineType
	if err := lt.UnmarshalJSON([]byte(`"addition"`)); err != nil || lt != LineAddition {
		t.Fatalf("UnmarshalJSON() = %v, %v", lt, err)
	}
	if err := lt.UnmarshalJSON([]byte(`"bogus"`)); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDisplayPath(t *testing.T) {
	if got := (File{OldPath: "gone.txt", NewPath: "/dev/null"}).DisplayPath(); got != "gone.txt" {
		t.Fatalf("DisplayPath() = %q", got)
	}
	if got := (File{OldPath: "a", NewPath: "b"}).DisplayPath(); got != "b" {
		t.Fatalf("DisplayPath() = %q", got)
	}
}

func assertNum(t *testing.T, label string, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s = nil, want %d", label, want)
	}
	if *got != want {
		t.Fatalf("%s = %d, want %d", label, *got, want)
	}
}

func TestParseLargeHunkStartIsIgnored(t *testing.T) {
	huge := strings.Repeat("9", 40)
	p := Parse("diff --git a/a b/a\n@@ -" + huge + " +1 @@\n+x\n")
	if n := len(p.Files[0].Hunks); n != 0 {
		t.Fatalf("len(Hunks) = %d, want 0", n)
	}
}
