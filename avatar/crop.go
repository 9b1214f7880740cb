package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg" // decode support for providers returning JPEG
	"image/png"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	// tolerance and edgeStrength are percentages of the maximum RGB distance.
	tolerance    = 15
	edgeStrength = 10
	maxRGBDist   = 441.0
	// scanMargin skips the outermost rows/columns, which are often anti-aliased.
	scanMargin = 5
)

var errTooSmall = errors.New("image too small to crop")

// Crop removes a uniform frame around a generated portrait and returns the
// result PNG-encoded. The background is sampled at (2,2); each side is scanned
// inward for the first row or column that differs from the background enough,
// either sharply against its neighbour or strongly on its own.
func Crop(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode avatar: %w", err)
	}
	r, err := contentBounds(src)
	if err != nil {
		return nil, err
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), src, r.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}

type frameScanner struct {
	img            image.Image
	origin         image.Point
	bg             colorful.Color
	colorThreshold float64
	gradThreshold  float64
}

func (s frameScanner) at(x, y int) colorful.Color {
	c, _ := colorful.MakeColor(s.img.At(s.origin.X+x, s.origin.Y+y))
	return c
}

func (s frameScanner) isContent(x, y, px, py int) bool {
	curr := s.at(x, y)
	dist := curr.DistanceRgb(s.bg) * 255
	if dist < s.colorThreshold {
		return false
	}
	grad := curr.DistanceRgb(s.at(px, py)) * 255
	return grad > s.gradThreshold || dist > s.colorThreshold*2.5
}

// contentBounds returns the crop rectangle in img coordinates.
func contentBounds(img image.Image) (image.Rectangle, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return image.Rectangle{}, errTooSmall
	}
	s := frameScanner{
		img:            img,
		origin:         b.Min,
		colorThreshold: tolerance / 100.0 * maxRGBDist,
		gradThreshold:  edgeStrength / 100.0 * maxRGBDist,
	}
	s.bg = s.at(2, 2)

	top, bottom, left, right := 0, h-1, 0, w-1

scanTop:
	for y := scanMargin; y < h-scanMargin; y++ {
		for x := 0; x < w; x++ {
			if s.isContent(x, y, x, y-1) {
				top = y
				break scanTop
			}
		}
	}
scanBottom:
	for y := h - scanMargin - 1; y >= top; y-- {
		for x := 0; x < w; x++ {
			if s.isContent(x, y, x, y+1) {
				bottom = y
				break scanBottom
			}
		}
	}
scanLeft:
	for x := scanMargin; x < w-scanMargin; x++ {
		for y := top; y <= bottom; y++ {
			if s.isContent(x, y, x-1, y) {
				left = x
				break scanLeft
			}
		}
	}
scanRight:
	for x := w - scanMargin - 1; x >= left; x-- {
		for y := top; y <= bottom; y++ {
			if s.isContent(x, y, x+1, y) {
				right = x
				break scanRight
			}
		}
	}

	if right < left || bottom < top {
		return image.Rectangle{}, errors.New("empty crop region")
	}
	return image.Rect(left, top, right+1, bottom+1).Add(b.Min), nil
}
