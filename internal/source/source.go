package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	gitint "patchview/internal/git"
)

var ErrNoInput = errors.New("no patch given: pass a file, --rev, --worktree or pipe a patch on stdin")

// Spec selects where patch text comes from. At most one of Path, Rev and
// Worktree may be set. Path "-" reads stdin.
type Spec struct {
	Path     string
	Rev      string
	Worktree bool
	Dir      string
}

func (s Spec) validate() error {
	n := 0
	if s.Path != "" {
		n++
	}
	if s.Rev != "" {
		n++
	}
	if s.Worktree {
		n++
	}
	if n > 1 {
		return fmt.Errorf("choose only one of a file, --rev and --worktree")
	}
	return nil
}

// Loaded is patch text plus a short name for titles.
type Loaded struct {
	Name string
	Text string
}

type Loader struct {
	Git        gitint.PatchService
	Stdin      io.Reader
	StdinIsTTY bool
}

func NewLoader() Loader {
	return Loader{
		Git:        gitint.NewPatchService(),
		Stdin:      os.Stdin,
		StdinIsTTY: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

func (l Loader) Load(ctx context.Context, spec Spec) (Loaded, error) {
	if err := spec.validate(); err != nil {
		return Loaded{}, err
	}

	switch {
	case spec.Rev != "":
		text, err := l.Git.FormatPatch(ctx, spec.Dir, spec.Rev)
		if err != nil {
			return Loaded{}, fmt.Errorf("load revision %s: %w", spec.Rev, err)
		}
		return Loaded{Name: spec.Rev, Text: text}, nil

	case spec.Worktree:
		text, err := l.Git.WorktreeDiff(ctx, spec.Dir)
		if err != nil {
			return Loaded{}, fmt.Errorf("load worktree diff: %w", err)
		}
		return Loaded{Name: "worktree", Text: text}, nil

	case spec.Path == "-":
		return l.readStdin()

	case spec.Path != "":
		data, err := os.ReadFile(spec.Path)
		if err != nil {
			return Loaded{}, fmt.Errorf("read patch: %w", err)
		}
		return Loaded{Name: spec.Path, Text: string(data)}, nil
	}

	if l.StdinIsTTY || l.Stdin == nil {
		return Loaded{}, ErrNoInput
	}
	return l.readStdin()
}

func (l Loader) readStdin() (Loaded, error) {
	if l.Stdin == nil {
		return Loaded{}, ErrNoInput
	}
	data, err := io.ReadAll(l.Stdin)
	if err != nil {
		return Loaded{}, fmt.Errorf("read stdin: %w", err)
	}
	return Loaded{Name: "stdin", Text: string(data)}, nil
}

// Title shortens a loaded name for display.
func (l Loaded) Title() string {
	name := l.Name
	if i := strings.LastIndexAny(name, `/\`); i >= 0 && i < len(name)-1 {
		name = name[i+1:]
	}
	return name
}
