package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeGit struct {
	rev      string
	worktree bool
	err      error
}

func (f *fakeGit) FormatPatch(_ context.Context, _, rev string) (string, error) {
	f.rev = rev
	return "Subject: from git\n", f.err
}

func (f *fakeGit) WorktreeDiff(context.Context, string) (string, error) {
	f.worktree = true
	return "diff --git a/x b/x\n", f.err
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fix.patch")
	if err := os.WriteFile(path, []byte("diff --git a/a b/a\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := Loader{StdinIsTTY: true}.Load(context.Background(), Spec{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Text != "diff --git a/a b/a\n" {
		t.Fatalf("Text = %q", got.Text)
	}
	if got.Title() != "fix.patch" {
		t.Fatalf("Title() = %q, want fix.patch", got.Title())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Loader{}.Load(context.Background(), Spec{Path: filepath.Join(t.TempDir(), "nope")})
	if err == nil || !strings.Contains(err.Error(), "read patch") {
		t.Fatalf("Load() error = %v, want read patch error", err)
	}
}

func TestLoadFromStdin(t *testing.T) {
	l := Loader{Stdin: strings.NewReader("piped"), StdinIsTTY: false}
	got, err := l.Load(context.Background(), Spec{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Text != "piped" || got.Name != "stdin" {
		t.Fatalf("Load() = %+v", got)
	}

	l = Loader{Stdin: strings.NewReader("dash"), StdinIsTTY: true}
	got, err = l.Load(context.Background(), Spec{Path: "-"})
	if err != nil || got.Text != "dash" {
		t.Fatalf("Load(-) = %+v, %v", got, err)
	}
}

func TestLoadWithoutInputOnTerminal(t *testing.T) {
	l := Loader{Stdin: strings.NewReader("ignored"), StdinIsTTY: true}
	if _, err := l.Load(context.Background(), Spec{}); !errors.Is(err, ErrNoInput) {
		t.Fatalf("Load() error = %v, want ErrNoInput", err)
	}
}

func TestLoadFromGit(t *testing.T) {
	g := &fakeGit{}
	l := Loader{Git: g, StdinIsTTY: true}

	got, err := l.Load(context.Background(), Spec{Rev: "HEAD~1"})
	if err != nil {
		t.Fatalf("Load(rev) error = %v", err)
	}
	if g.rev != "HEAD~1" || got.Name != "HEAD~1" {
		t.Fatalf("rev = %q name = %q", g.rev, got.Name)
	}

	if _, err := l.Load(context.Background(), Spec{Worktree: true}); err != nil || !g.worktree {
		t.Fatalf("Load(worktree) error = %v, called = %v", err, g.worktree)
	}

	g.err = errors.New("boom")
	if _, err := l.Load(context.Background(), Spec{Rev: "x"}); err == nil {
		t.Fatalf("expected error from git")
	}
}

func TestLoadRejectsConflictingSources(t *testing.T) {
	if _, err := (Loader{}).Load(context.Background(), Spec{Path: "a", Rev: "b"}); err == nil {
		t.Fatalf("expected error for conflicting sources")
	}
}
