//go:build windows

package screen

import (
	"context"
	"os/exec"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

func screenshotTool() (string, error) {
	return "", apperrors.New(apperrors.ScreenCaptureFailed, "no screenshot command on windows; use the native backend")
}

func screenshotCommand(ctx context.Context, tool, out string) *exec.Cmd {
	return exec.CommandContext(ctx, tool, out)
}
