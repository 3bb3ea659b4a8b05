// Package clip holds the durable clip data model: the shared palette, the
// indexed frame sequence, and the assembled animated clip.
package clip

// MaxPaletteSize is the color-depth ceiling for one clip.
const MaxPaletteSize = 256

// Color is one palette entry.
type Color struct {
	R, G, B uint8
}

// Palette is the ordered list of colors shared by every frame in a clip.
type Palette []Color

// Disposal is the per-frame canvas treatment before drawing the next frame.
type Disposal byte

const (
	// DisposalNone leaves the canvas in place ("do not dispose").
	DisposalNone Disposal = 1
	// DisposalBackground resets the canvas to the background color.
	DisposalBackground Disposal = 2
)

// IndexedFrame is one displayed frame: palette indices for every pixel, a
// display delay in centiseconds (minimum 1), and a disposal policy.
type IndexedFrame struct {
	Pix      []byte // one palette index per pixel, width*height
	DelayCs  int
	Disposal Disposal
}

// AnimatedClip is the sole durable output of a capture: coalesced indexed
// frames plus the shared palette. LoopCount 0 means loop forever.
type AnimatedClip struct {
	Frames    []IndexedFrame
	Palette   Palette
	Width     int
	Height    int
	LoopCount int
}

// TotalDelayCs returns the summed display time of all frames.
func (c *AnimatedClip) TotalDelayCs() int {
	total := 0
	for _, f := range c.Frames {
		total += f.DelayCs
	}
	return total
}
