package imageprocessor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAvatar_CropsAndResizes(t *testing.T) {
	out, err := NewProcessor(80).Avatar(bytes.NewReader(pngBytes(t, 120, 60)))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, AvatarSize, img.Bounds().Dx())
	assert.Equal(t, AvatarSize, img.Bounds().Dy())
}

func TestAvatar_RejectsNonImages(t *testing.T) {
	_, err := NewProcessor(0).Avatar(strings.NewReader("%PDF-1.7 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestSquareCrop(t *testing.T) {
	assert.Equal(t, image.Rect(30, 0, 90, 60), squareCrop(image.Rect(0, 0, 120, 60)))
	assert.Equal(t, image.Rect(0, 20, 40, 60), squareCrop(image.Rect(0, 0, 40, 80)))
}
