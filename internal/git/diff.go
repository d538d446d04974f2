package git

import (
	"context"
	"fmt"
	"strings"

	"patchview/internal/util"
)

// PatchService produces patch text from a repository.
type PatchService interface {
	FormatPatch(ctx context.Context, cwd, rev string) (string, error)
	WorktreeDiff(ctx context.Context, cwd string) (string, error)
}

type patchService struct{}

func NewPatchService() PatchService {
	return patchService{}
}

// FormatPatch renders a single commit in git format-patch mail form.
func (patchService) FormatPatch(ctx context.Context, cwd, rev string) (string, error) {
	rev = strings.TrimSpace(rev)
	if rev == "" {
		return "", fmt.Errorf("format-patch: empty revision")
	}
	if strings.HasPrefix(rev, "-") {
		return "", fmt.Errorf("format-patch: invalid revision %q", rev)
	}
	root, err := DiscoverRepoRoot(ctx, cwd)
	if err != nil {
		return "", fmt.Errorf("find repository: %w", err)
	}
	return util.Run(ctx, root, "git", "format-patch", "-1", "--stdout", "--no-color", rev)
}

// WorktreeDiff returns all tracked changes against HEAD.
func (patchService) WorktreeDiff(ctx context.Context, cwd string) (string, error) {
	root, err := DiscoverRepoRoot(ctx, cwd)
	if err != nil {
		return "", fmt.Errorf("find repository: %w", err)
	}
	out, err := util.Run(ctx, root, "git", "diff", "HEAD", "--no-color", "-U3")
	if err != nil {
		// A repository without commits has no HEAD; fall back to the index.
		if util.ExitCode(err) == 128 {
			return util.Run(ctx, root, "git", "diff", "--no-color", "-U3")
		}
		return "", err
	}
	return out, nil
}
