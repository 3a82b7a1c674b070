//go:build darwin

package screen

import (
	"context"
	"os/exec"
)

func screenshotTool() (string, error) {
	return exec.LookPath("screencapture")
}

// -x: no sound, -t png, -m: main display only
func screenshotCommand(ctx context.Context, tool, out string) *exec.Cmd {
	return exec.CommandContext(ctx, tool, "-x", "-t", "png", "-m", out)
}
