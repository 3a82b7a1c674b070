//go:build linux

package screen

import (
	"context"
	"os/exec"
	"path/filepath"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

// screenshotTool prefers gnome-screenshot and falls back to scrot.
func screenshotTool() (string, error) {
	for _, name := range []string{"gnome-screenshot", "scrot"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", apperrors.New(apperrors.ScreenCaptureFailed, "no screenshot tool found (install gnome-screenshot or scrot)")
}

func screenshotCommand(ctx context.Context, tool, out string) *exec.Cmd {
	if filepath.Base(tool) == "scrot" {
		return exec.CommandContext(ctx, tool, "-o", out)
	}
	return exec.CommandContext(ctx, tool, "-f", out)
}
