package screen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// commandBackend shells out to the platform screenshot tool.
type commandBackend struct {
	tempDir string
	tool    string
}

// NewCommand creates a capturer backed by the OS screenshot command.
func NewCommand() (Capturer, error) {
	tool, err := screenshotTool()
	if err != nil {
		return nil, err
	}
	tmpDir, err := os.MkdirTemp("", "aiba-screen-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	return newBase("command:"+tool, &commandBackend{tempDir: tmpDir, tool: tool}, tmpDir), nil
}

func (b *commandBackend) captureRaw(ctx context.Context) ([]byte, error) {
	tmpFile := filepath.Join(b.tempDir, "screenshot.png")
	cmd := screenshotCommand(ctx, b.tool, tmpFile)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w: %s", b.tool, err, stderr.String())
	}

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}
	_ = os.Remove(tmpFile)
	return data, nil
}

func (b *commandBackend) cleanup() {}
