// Package quantize reduces a raw frame sequence to a single shared palette of
// at most 256 colors and maps every frame to palette indices.
package quantize

import (
	"fmt"
	"sort"

	"github.com/diffclip/diffclip/internal/capture"
	"github.com/diffclip/diffclip/internal/clip"
)

// maxSamples bounds the number of pixels fed to the median-cut pass across
// all frames combined. Mapping still touches every pixel.
const maxSamples = 32768

// Quantize builds one shared palette from the frame sequence and maps every
// frame to an IndexedFrame of matching dimensions. Frames are consumed in
// order; the caller should drop the raw frames afterwards.
func Quantize(frames []capture.RawFrame) (clip.Palette, []clip.IndexedFrame, error) {
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("no frames to quantize")
	}

	palette := BuildPalette(frames)

	indexed := make([]clip.IndexedFrame, len(frames))
	memo := make(map[uint32]byte)
	for i, f := range frames {
		pix := make([]byte, f.Width*f.Height)
		for p := 0; p < len(pix); p++ {
			off := p * 4
			key := uint32(f.Pix[off])<<16 | uint32(f.Pix[off+1])<<8 | uint32(f.Pix[off+2])
			idx, ok := memo[key]
			if !ok {
				idx = nearest(palette, f.Pix[off], f.Pix[off+1], f.Pix[off+2])
				memo[key] = idx
			}
			pix[p] = idx
		}
		indexed[i] = clip.IndexedFrame{Pix: pix, DelayCs: 1, Disposal: clip.DisposalNone}
	}

	return palette, indexed, nil
}

// BuildPalette runs median-cut quantization over a uniform-stride sample of
// all frames' pixels and returns at most 256 representative colors.
func BuildPalette(frames []capture.RawFrame) clip.Palette {
	samples := sampleColors(frames)

	boxes := [][]clip.Color{samples}
	for len(boxes) < clip.MaxPaletteSize {
		best, channel := pickBox(boxes)
		if best < 0 {
			break
		}
		lo, hi := splitBox(boxes[best], channel)
		boxes[best] = lo
		boxes = append(boxes, hi)
	}

	palette := make(clip.Palette, len(boxes))
	for i, box := range boxes {
		palette[i] = meanColor(box)
	}
	return palette
}

// sampleColors takes every strideth pixel across the whole frame sequence so
// the sample count stays bounded regardless of clip size.
func sampleColors(frames []capture.RawFrame) []clip.Color {
	total := 0
	for _, f := range frames {
		total += f.Width * f.Height
	}
	stride := total / maxSamples
	if stride < 1 {
		stride = 1
	}

	samples := make([]clip.Color, 0, total/stride+1)
	counter := 0
	for _, f := range frames {
		n := f.Width * f.Height
		for p := 0; p < n; p++ {
			if counter%stride == 0 {
				off := p * 4
				samples = append(samples, clip.Color{R: f.Pix[off], G: f.Pix[off+1], B: f.Pix[off+2]})
			}
			counter++
		}
	}
	return samples
}

// pickBox returns the index of the box with the greatest single-channel
// spread and that channel, or (-1, 0) if no box can be split further.
func pickBox(boxes [][]clip.Color) (int, int) {
	best, bestChannel, bestSpread := -1, 0, 0
	for i, box := range boxes {
		if len(box) < 2 {
			continue
		}
		spread, channel := boxSpread(box)
		if spread > bestSpread {
			best, bestChannel, bestSpread = i, channel, spread
		}
	}
	return best, bestChannel
}

// boxSpread returns the largest channel spread within a box and its channel
// (0=R, 1=G, 2=B).
func boxSpread(box []clip.Color) (int, int) {
	var lo, hi [3]int
	for ch := 0; ch < 3; ch++ {
		lo[ch], hi[ch] = 255, 0
	}
	for _, c := range box {
		for ch, v := range [3]int{int(c.R), int(c.G), int(c.B)} {
			if v < lo[ch] {
				lo[ch] = v
			}
			if v > hi[ch] {
				hi[ch] = v
			}
		}
	}

	spread, channel := 0, 0
	for ch := 0; ch < 3; ch++ {
		if hi[ch]-lo[ch] > spread {
			spread, channel = hi[ch]-lo[ch], ch
		}
	}
	return spread, channel
}

// splitBox sorts a box by the given channel and cuts it at the median.
// Both halves are non-empty for boxes of two or more colors.
func splitBox(box []clip.Color, channel int) ([]clip.Color, []clip.Color) {
	sort.Slice(box, func(i, j int) bool {
		return channelValue(box[i], channel) < channelValue(box[j], channel)
	})
	mid := len(box) / 2
	return box[:mid], box[mid:]
}

func channelValue(c clip.Color, channel int) uint8 {
	switch channel {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// meanColor returns the average color of a box.
func meanColor(box []clip.Color) clip.Color {
	if len(box) == 0 {
		return clip.Color{}
	}
	var r, g, b int
	for _, c := range box {
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
	}
	n := len(box)
	return clip.Color{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((b + n/2) / n),
	}
}

// nearest returns the palette index closest to (r, g, b) by Euclidean
// distance, ties broken by lowest index.
func nearest(palette clip.Palette, r, g, b uint8) byte {
	best, bestDist := 0, 1<<30
	for i, c := range palette {
		dr := int(c.R) - int(r)
		dg := int(c.G) - int(g)
		db := int(c.B) - int(b)
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return byte(best)
}
