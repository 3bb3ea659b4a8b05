package gif

import (
	"bytes"
	stdgif "image/gif"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diffclip/diffclip/internal/clip"
)

func testClip(t *testing.T, frames []clip.IndexedFrame, palette clip.Palette, w, h int) *clip.AnimatedClip {
	t.Helper()
	return &clip.AnimatedClip{
		Frames:    frames,
		Palette:   palette,
		Width:     w,
		Height:    h,
		LoopCount: 0,
	}
}

func TestRoundTripSmallClip(t *testing.T) {
	palette := clip.Palette{
		{R: 0, G: 0, B: 0},
		{R: 255, G: 0, B: 0},
		{R: 0, G: 255, B: 0},
	}
	frames := []clip.IndexedFrame{
		{Pix: []byte{0, 1, 1, 0}, DelayCs: 20, Disposal: clip.DisposalNone},
		{Pix: []byte{2, 2, 2, 2}, DelayCs: 60, Disposal: clip.DisposalNone},
	}

	data, err := EncodeBytes(testClip(t, frames, palette, 2, 2))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("GIF89a")))
	require.Equal(t, byte(0x3B), data[len(data)-1])

	decoded, err := stdgif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, decoded.Image, 2)
	require.Equal(t, []int{20, 60}, decoded.Delay)
	require.Equal(t, 0, decoded.LoopCount)
	require.Equal(t, 2, decoded.Config.Width)
	require.Equal(t, 2, decoded.Config.Height)

	// Per-pixel colors equal the palette entries chosen upstream.
	for fi, frame := range frames {
		img := decoded.Image[fi]
		for p, idx := range frame.Pix {
			want := palette[idx]
			r, g, b, a := img.At(p%2, p/2).RGBA()
			require.Equal(t, uint32(want.R)*0x101, r, "frame %d pixel %d", fi, p)
			require.Equal(t, uint32(want.G)*0x101, g)
			require.Equal(t, uint32(want.B)*0x101, b)
			require.Equal(t, uint32(0xFFFF), a)
		}
	}
}

func TestRoundTripFullPaletteAndDictionaryReset(t *testing.T) {
	palette := make(clip.Palette, 256)
	for i := range palette {
		palette[i] = clip.Color{R: uint8(i), G: uint8(255 - i), B: uint8(i / 2)}
	}

	// Enough random pixels to fill the LZW dictionary past 4096 codes.
	rng := rand.New(rand.NewSource(7))
	w, h := 200, 200
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = byte(rng.Intn(256))
	}
	frames := []clip.IndexedFrame{{Pix: pix, DelayCs: 10, Disposal: clip.DisposalNone}}

	data, err := EncodeBytes(testClip(t, frames, palette, w, h))
	require.NoError(t, err)

	decoded, err := stdgif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, decoded.Image, 1)
	require.Equal(t, pix, decoded.Image[0].Pix)
}

func TestRoundTripSingleIndexRuns(t *testing.T) {
	// Long runs of one index grow the dictionary fastest and walk the code
	// width across its transitions; a settled static clip is exactly this.
	palette := clip.Palette{{R: 10, G: 20, B: 30}}
	for _, n := range []int{4, 9, 64, 221} {
		frames := []clip.IndexedFrame{{Pix: make([]byte, n), DelayCs: 10, Disposal: clip.DisposalNone}}

		data, err := EncodeBytes(testClip(t, frames, palette, n, 1))
		require.NoError(t, err, "run length %d", n)

		decoded, err := stdgif.DecodeAll(bytes.NewReader(data))
		require.NoError(t, err, "run length %d", n)
		require.Len(t, decoded.Image, 1, "run length %d", n)
		require.Equal(t, frames[0].Pix, decoded.Image[0].Pix, "run length %d", n)
	}
}

func TestRoundTripTinyPalette(t *testing.T) {
	// A single-color clip still needs a valid 2-entry padded table.
	palette := clip.Palette{{R: 128, G: 128, B: 128}}
	frames := []clip.IndexedFrame{{Pix: []byte{0, 0, 0, 0, 0, 0}, DelayCs: 300, Disposal: clip.DisposalNone}}

	data, err := EncodeBytes(testClip(t, frames, palette, 3, 2))
	require.NoError(t, err)

	decoded, err := stdgif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, decoded.Image, 1)
	require.Equal(t, []int{300}, decoded.Delay)
}

func TestMinimumDelayEnforced(t *testing.T) {
	palette := clip.Palette{{R: 1, G: 2, B: 3}}
	frames := []clip.IndexedFrame{{Pix: []byte{0}, DelayCs: 0, Disposal: clip.DisposalNone}}

	data, err := EncodeBytes(testClip(t, frames, palette, 1, 1))
	require.NoError(t, err)

	decoded, err := stdgif.DecodeAll(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, []int{1}, decoded.Delay)
}

func TestValidationErrors(t *testing.T) {
	palette := clip.Palette{{R: 1, G: 2, B: 3}}

	_, err := EncodeBytes(testClip(t, nil, palette, 1, 1))
	require.Error(t, err)

	_, err = EncodeBytes(testClip(t, []clip.IndexedFrame{{Pix: []byte{0}, DelayCs: 1}}, nil, 1, 1))
	require.Error(t, err)

	// Index beyond palette length.
	frames := []clip.IndexedFrame{{Pix: []byte{3}, DelayCs: 1, Disposal: clip.DisposalNone}}
	_, err = EncodeBytes(testClip(t, frames, palette, 1, 1))
	require.Error(t, err)

	// Index buffer size mismatch.
	frames = []clip.IndexedFrame{{Pix: []byte{0, 0}, DelayCs: 1, Disposal: clip.DisposalNone}}
	_, err = EncodeBytes(testClip(t, frames, palette, 1, 1))
	require.Error(t, err)
}

func TestPaddedPaletteSizing(t *testing.T) {
	require.Equal(t, 2, paddedPaletteSize(1))
	require.Equal(t, 2, paddedPaletteSize(2))
	require.Equal(t, 4, paddedPaletteSize(3))
	require.Equal(t, 256, paddedPaletteSize(200))

	require.Equal(t, byte(0), colorTableSizeField(2))
	require.Equal(t, byte(1), colorTableSizeField(4))
	require.Equal(t, byte(7), colorTableSizeField(256))

	require.Equal(t, byte(2), lzwMinCodeSize(2))
	require.Equal(t, byte(2), lzwMinCodeSize(4))
	require.Equal(t, byte(3), lzwMinCodeSize(8))
	require.Equal(t, byte(8), lzwMinCodeSize(256))
}
