package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	_ "image/jpeg"
	_ "image/png"
)

// StillDecoder decodes compressed stills (PNG or JPEG) into tightly packed
// RGBA buffers at a target resolution. Stills at a different size than the
// target are resampled with nearest-neighbour, which is exact for the common
// case of a density-1 screenshot matching the viewport.
type StillDecoder struct{}

// NewStillDecoder creates a decoder for bridge stills.
func NewStillDecoder() *StillDecoder {
	return &StillDecoder{}
}

// Decode implements Decoder.
func (d *StillDecoder) Decode(still []byte, targetWidth, targetHeight int) ([]byte, error) {
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, fmt.Errorf("invalid target resolution %dx%d", targetWidth, targetHeight)
	}

	img, _, err := image.Decode(bytes.NewReader(still))
	if err != nil {
		return nil, err
	}

	rgba := toRGBA(img)
	src := rgba.Bounds()
	if src.Dx() == targetWidth && src.Dy() == targetHeight {
		return packPixels(rgba, targetWidth, targetHeight), nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	for y := 0; y < targetHeight; y++ {
		sy := src.Min.Y + y*src.Dy()/targetHeight
		for x := 0; x < targetWidth; x++ {
			sx := src.Min.X + x*src.Dx()/targetWidth
			scaled.Set(x, y, rgba.At(sx, sy))
		}
	}
	return packPixels(scaled, targetWidth, targetHeight), nil
}

// toRGBA converts any decoded image into RGBA form.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba
}

// packPixels copies an RGBA image into a tightly packed width*height*4 buffer,
// dropping any stride padding.
func packPixels(img *image.RGBA, width, height int) []byte {
	out := make([]byte, width*height*4)
	b := img.Bounds()
	for y := 0; y < height; y++ {
		srcOff := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(out[y*width*4:(y+1)*width*4], img.Pix[srcOff:srcOff+width*4])
	}
	return out
}
