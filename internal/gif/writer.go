// Package gif serializes an animated clip into a GIF89a bitstream decodable
// by any conforming viewer.
package gif

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/diffclip/diffclip/internal/clip"
)

const (
	headerGIF89a = "GIF89a"

	blockExtension        = 0x21
	blockGraphicControl   = 0xF9
	blockApplication      = 0xFF
	blockImageDescriptor  = 0x2C
	blockTrailer          = 0x3B
	graphicControlPayload = 0x04
)

// Extension is the suggested file extension for encoded clips.
const Extension = ".gif"

// EncodeBytes serializes the clip and returns the raw artifact.
func EncodeBytes(c *clip.AnimatedClip) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes the clip as a GIF89a stream: header, logical screen
// descriptor, global color table, looping extension, then one graphic control
// extension + image descriptor + LZW-compressed index data per frame, and a
// trailer.
func Encode(w io.Writer, c *clip.AnimatedClip) error {
	if err := validate(c); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	padded := paddedPaletteSize(len(c.Palette))
	sizeField := colorTableSizeField(padded)

	bw.WriteString(headerGIF89a)

	// Logical screen descriptor. Packed byte: global color table present,
	// 8-bit color resolution, table size field.
	writeUint16(bw, uint16(c.Width))
	writeUint16(bw, uint16(c.Height))
	bw.WriteByte(0x80 | 0x70 | sizeField)
	bw.WriteByte(0x00) // background color index
	bw.WriteByte(0x00) // pixel aspect ratio

	// Global color table, padded with filler entries to a power of two.
	for _, entry := range c.Palette {
		bw.WriteByte(entry.R)
		bw.WriteByte(entry.G)
		bw.WriteByte(entry.B)
	}
	for i := len(c.Palette); i < padded; i++ {
		bw.WriteByte(0x00)
		bw.WriteByte(0x00)
		bw.WriteByte(0x00)
	}

	writeLoopExtension(bw, c.LoopCount)

	minCodeSize := lzwMinCodeSize(padded)
	for _, frame := range c.Frames {
		writeGraphicControl(bw, frame)

		// Image descriptor: every frame covers the full canvas at (0,0).
		bw.WriteByte(blockImageDescriptor)
		writeUint16(bw, 0)
		writeUint16(bw, 0)
		writeUint16(bw, uint16(c.Width))
		writeUint16(bw, uint16(c.Height))
		bw.WriteByte(0x00) // no local color table, not interlaced

		bw.WriteByte(minCodeSize)
		if err := lzwCompress(bw, frame.Pix, int(minCodeSize)); err != nil {
			return err
		}
		bw.WriteByte(0x00) // block terminator
	}

	bw.WriteByte(blockTrailer)
	return bw.Flush()
}

// writeLoopExtension writes the NETSCAPE2.0 application extension declaring
// the loop count (0 = infinite).
func writeLoopExtension(bw *bufio.Writer, loopCount int) {
	bw.WriteByte(blockExtension)
	bw.WriteByte(blockApplication)
	bw.WriteByte(0x0B)
	bw.WriteString("NETSCAPE2.0")
	bw.WriteByte(0x03)
	bw.WriteByte(0x01)
	writeUint16(bw, uint16(loopCount))
	bw.WriteByte(0x00)
}

// writeGraphicControl writes the per-frame graphic control extension carrying
// the display delay and disposal policy.
func writeGraphicControl(bw *bufio.Writer, frame clip.IndexedFrame) {
	delay := frame.DelayCs
	if delay < 1 {
		delay = 1
	}
	if delay > 0xFFFF {
		delay = 0xFFFF
	}

	bw.WriteByte(blockExtension)
	bw.WriteByte(blockGraphicControl)
	bw.WriteByte(graphicControlPayload)
	bw.WriteByte(byte(frame.Disposal) << 2) // no transparency, no user input
	writeUint16(bw, uint16(delay))
	bw.WriteByte(0x00) // transparent color index (unused)
	bw.WriteByte(0x00) // block terminator
}

// validate checks the clip against the container's structural limits.
func validate(c *clip.AnimatedClip) error {
	if len(c.Frames) == 0 {
		return fmt.Errorf("clip has no frames")
	}
	if len(c.Palette) == 0 || len(c.Palette) > clip.MaxPaletteSize {
		return fmt.Errorf("palette size %d out of range [1, %d]", len(c.Palette), clip.MaxPaletteSize)
	}
	if c.Width <= 0 || c.Height <= 0 || c.Width > 0xFFFF || c.Height > 0xFFFF {
		return fmt.Errorf("canvas %dx%d out of range", c.Width, c.Height)
	}
	for i, f := range c.Frames {
		if len(f.Pix) != c.Width*c.Height {
			return fmt.Errorf("frame %d has %d indices, want %d", i, len(f.Pix), c.Width*c.Height)
		}
		for _, idx := range f.Pix {
			if int(idx) >= len(c.Palette) {
				return fmt.Errorf("frame %d references index %d beyond palette of %d", i, idx, len(c.Palette))
			}
		}
	}
	return nil
}

// paddedPaletteSize returns the next power of two at or above n, minimum 2.
func paddedPaletteSize(n int) int {
	size := 2
	for size < n {
		size *= 2
	}
	return size
}

// colorTableSizeField encodes a padded table size as the descriptor's 3-bit
// field (table holds 1 << (field + 1) entries).
func colorTableSizeField(padded int) byte {
	field := byte(0)
	for 1<<(field+1) < padded {
		field++
	}
	return field
}

// lzwMinCodeSize returns the initial LZW code size for a padded palette,
// minimum 2 per the format.
func lzwMinCodeSize(padded int) byte {
	size := byte(2)
	for 1<<size < padded {
		size++
	}
	return size
}

func writeUint16(bw *bufio.Writer, v uint16) {
	bw.WriteByte(byte(v))
	bw.WriteByte(byte(v >> 8))
}
