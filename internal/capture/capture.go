// Package capture drives the renderer and decoder in a timed loop to produce
// an ordered sequence of raw frames for one clip.
package capture

import (
	"bytes"
	"context"
	"hash/fnv"
	"log"
	"time"

	"github.com/diffclip/diffclip/internal/errors"
	"github.com/diffclip/diffclip/internal/render"
)

// settleRun is the number of consecutive byte-identical frames that ends the
// capture loop early. A static page yields 1 unique frame plus settleRun
// confirming duplicates.
const settleRun = 3

// RawFrame is one decoded RGBA frame. RawFrames exist only between capture
// and quantization and are never persisted.
type RawFrame struct {
	Pix    []byte // tightly packed RGBA, 4 bytes per pixel
	Width  int
	Height int
	Index  int
}

// Capture runs the acquisition loop and returns the ordered frame sequence.
// The session's renderer must already be live; decoder failure on any frame
// aborts the whole capture.
func Capture(ctx context.Context, session *render.Session, cfg Config) ([]RawFrame, error) {
	r := session.Renderer
	width, height := cfg.ViewportWidth(), cfg.EffectiveHeight()

	if err := r.ConfigureViewport(ctx, width, height, cfg.PixelDensity()); err != nil {
		return nil, err
	}

	status, err := r.Navigate(ctx, cfg.URL())
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 400 {
		// Anything outside 2xx/3xx is suspect, but the rendered content, even
		// an error page, is still worth capturing.
		log.Printf("warning: navigation to %s returned status %d, capturing anyway", cfg.URL(), status)
	}

	if err := r.WaitForFontsReady(ctx); err != nil {
		return nil, err
	}
	if cfg.PreRollMs() > 0 {
		if err := sleep(ctx, time.Duration(cfg.PreRollMs())*time.Millisecond); err != nil {
			return nil, err
		}
	}

	if sel := cfg.Selector(); sel != "" {
		count, err := r.ScrollSelectorIntoView(ctx, sel)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errors.NewSelectorNotFound(sel)
		}
	}

	totalFrames := cfg.TotalFrames()
	interval := time.Duration(cfg.FrameIntervalMs()) * time.Millisecond

	frames := make([]RawFrame, 0, totalFrames)
	var prevHash uint64
	var prevPix []byte
	identicalRun := 0

	for i := 0; i < totalFrames; i++ {
		still, err := r.CaptureStill(ctx)
		if err != nil {
			return nil, err
		}

		pix, err := session.Decoder.Decode(still, width, height)
		if err != nil {
			return nil, errors.NewDecodeFailed(i, err)
		}

		frames = append(frames, RawFrame{Pix: pix, Width: width, Height: height, Index: i})

		// Settle detection: hash guard first, byte compare only on hash match.
		h := hashPix(pix)
		if prevPix != nil && h == prevHash && bytes.Equal(pix, prevPix) {
			identicalRun++
			if identicalRun >= settleRun {
				break
			}
		} else {
			identicalRun = 0
		}
		prevHash, prevPix = h, pix

		if i < totalFrames-1 {
			if err := sleep(ctx, interval); err != nil {
				return nil, err
			}
		}
	}

	return frames, nil
}

// hashPix returns the FNV-1a 64-bit hash of a pixel buffer.
func hashPix(pix []byte) uint64 {
	h := fnv.New64a()
	h.Write(pix)
	return h.Sum64()
}

// sleep waits for d or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
