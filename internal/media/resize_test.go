package media

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		for y := range height {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestTargetSize(t *testing.T) {
	assert.Equal(t, LandscapeSize, TargetSize(1920, 1080))
	assert.Equal(t, PortraitSize, TargetSize(1080, 1920))
	assert.Equal(t, SquareSize, TargetSize(500, 500))
}

func TestResize(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          image.Point
	}{
		{"landscape", 300, 100, LandscapeSize},
		{"portrait", 90, 160, PortraitSize},
		{"square", 64, 64, SquareSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resize(encodePNG(t, tt.width, tt.height))
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, tt.want, image.Pt(cfg.Width, cfg.Height))
		})
	}
}

func TestResize_JPEGInput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, 40, 30)), nil))

	out, err := Resize(buf.Bytes())
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, LandscapeSize.X, cfg.Width)
}

func TestResize_Undecodable(t *testing.T) {
	_, err := Resize([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUndecodableImage)
}

func TestCoverCrop(t *testing.T) {
	// wider than 16:9, crop the sides
	crop := coverCrop(image.Rect(0, 0, 400, 90), LandscapeSize)
	assert.Equal(t, image.Rect(120, 0, 280, 90), crop)

	// taller than the target, crop top and bottom
	crop = coverCrop(image.Rect(0, 0, 100, 100), LandscapeSize)
	assert.Equal(t, image.Rect(0, 22, 100, 78), crop)
}
