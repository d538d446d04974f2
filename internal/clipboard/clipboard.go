package clipboard

import (
	"context"
	"errors"
	"os"
	"runtime"
	"strings"

	"patchview/internal/util"
)

var ErrUnsupported = errors.New("no clipboard command for this platform")

// Copier writes text to the clipboard. Command overrides the platform default
// and is split on whitespace.
type Copier struct {
	Command string
}

func (c Copier) CopyText(ctx context.Context, text string) error {
	argv := c.argv(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "")
	if len(argv) == 0 {
		return ErrUnsupported
	}
	_, err := util.RunWithStdin(ctx, "", text, argv[0], argv[1:]...)
	return err
}

func (c Copier) argv(goos string, wayland bool) []string {
	if fields := strings.Fields(c.Command); len(fields) > 0 {
		return fields
	}
	switch goos {
	case "darwin":
		return []string{"pbcopy"}
	case "linux", "freebsd", "openbsd":
		if wayland {
			return []string{"wl-copy"}
		}
		return []string{"xclip", "-selection", "clipboard"}
	case "windows":
		return []string{"clip"}
	}
	return nil
}
