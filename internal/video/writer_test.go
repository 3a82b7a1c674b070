package video

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/GriffinCanCode/aiba/internal/errors"
)

func testFrame(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestCreateWriteClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "screen_analysis.avi")

	w, err := Create(path, 32, 16, 20)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	require.NoError(t, w.AddFrame(testFrame(t, color.White)))
	require.NoError(t, w.AddFrame(testFrame(t, color.Black)))
	assert.Equal(t, 2, w.Frames())

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "close is idempotent")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))
	assert.Contains(t, string(data), "MJPG")
}

func TestCreateInvalidFormat(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "x.avi"), 0, 10, 20)
	assert.True(t, apperrors.IsCode(err, apperrors.InvalidArgument))
}

func TestCreateUnwritablePath(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "missing", "dir", "x.avi"), 32, 16, 20)
	assert.True(t, apperrors.IsCode(err, apperrors.VideoEncodeFailed))
}
