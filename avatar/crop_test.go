package avatar

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framedPNG(t *testing.T, w, h int, content image.Rectangle) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if (image.Point{x, y}).In(content) {
				c = color.RGBA{200, 30, 30, 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestCrop_TrimsUniformFrame(t *testing.T) {
	content := image.Rect(10, 12, 30, 28)
	out, err := Crop(framedPNG(t, 40, 40, content))
	require.NoError(t, err)

	img := decode(t, out)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(200), r>>8)
	assert.Equal(t, uint32(30), g>>8)
	assert.Equal(t, uint32(30), b>>8)
}

func TestCrop_NoFrameKeepsSize(t *testing.T) {
	out, err := Crop(framedPNG(t, 32, 24, image.Rectangle{}))
	require.NoError(t, err)
	img := decode(t, out)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 24, img.Bounds().Dy())
}

func TestCrop_Errors(t *testing.T) {
	_, err := Crop([]byte("not an image"))
	assert.Error(t, err)

	_, err = Crop(framedPNG(t, 2, 2, image.Rectangle{}))
	assert.ErrorIs(t, err, errTooSmall)
}

func TestCrop_SubtleNoiseIsBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 30, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			v := uint8(250 - (x+y)%4)
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	r, err := contentBounds(img)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 30), r)
}
