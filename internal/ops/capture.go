// Package ops implements the operations exposed by the CLI and MCP surfaces.
package ops

import (
	"context"
	"crypto/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/diffclip/diffclip/internal/capture"
	"github.com/diffclip/diffclip/internal/clip"
	"github.com/diffclip/diffclip/internal/config"
	"github.com/diffclip/diffclip/internal/errors"
	"github.com/diffclip/diffclip/internal/gif"
	"github.com/diffclip/diffclip/internal/quantize"
	"github.com/diffclip/diffclip/internal/render"
)

// CaptureInput contains parameters for the Capture operation. Zero-valued
// viewport, duration, and fps fields fall back to the app config defaults.
type CaptureInput struct {
	URL             string
	ViewportWidth   int
	ViewportHeight  int
	DurationSeconds float64
	FPS             float64
	PreRollMs       int
	Selector        string
	OutputPath      string // optional: write the artifact here
}

// CaptureOutput describes the finished artifact handed to the publisher.
type CaptureOutput struct {
	ClipID         string `json:"clip_id"`
	Extension      string `json:"extension"`
	SizeBytes      int    `json:"size_bytes"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	CapturedFrames int    `json:"captured_frames"`
	FrameCount     int    `json:"frame_count"`
	DelaysCs       []int  `json:"delays_cs"`
	TotalDelayCs   int    `json:"total_delay_cs"`
	PaletteSize    int    `json:"palette_size"`
	LoopCount      int    `json:"loop_count"`
	OutputPath     string `json:"output_path,omitempty"`

	// Data is the encoded artifact itself; callers forward it to the
	// publisher rather than re-reading OutputPath.
	Data []byte `json:"-"`
}

// Capture runs the full pipeline: acquisition, quantization, coalescing,
// encoding, and the size guard. Raw frames are discarded once quantization
// completes; the clip is the sole durable output.
func Capture(ctx context.Context, session *render.Session, cfg *config.Config, input CaptureInput) (*CaptureOutput, error) {
	if input.ViewportWidth == 0 {
		input.ViewportWidth = cfg.DefaultViewportWidth
	}
	if input.ViewportHeight == 0 {
		input.ViewportHeight = cfg.DefaultViewportHeight
	}
	if input.DurationSeconds == 0 {
		input.DurationSeconds = cfg.DefaultDurationSeconds
	}
	if input.FPS == 0 {
		input.FPS = float64(cfg.DefaultFPS)
	}

	capCfg, err := capture.NewConfig(input.URL, input.ViewportWidth, input.ViewportHeight,
		input.DurationSeconds, input.FPS, input.PreRollMs, input.Selector)
	if err != nil {
		return nil, err
	}

	rawFrames, err := capture.Capture(ctx, session, capCfg)
	if err != nil {
		return nil, err
	}

	palette, indexedFrames, err := quantize.Quantize(rawFrames)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	capturedFrames := len(rawFrames)
	rawFrames = nil // raw pixels are never persisted past quantization

	coalesced := clip.Coalesce(indexedFrames, capCfg.BaseDelayCs())

	// When settle detection stopped capture early, the page was static for
	// the remainder of the window; the final frame holds for the frames that
	// were never captured so the clip still plays the requested duration.
	if skipped := capCfg.TotalFrames() - capturedFrames; skipped > 0 {
		coalesced[len(coalesced)-1].DelayCs += capCfg.BaseDelayCs() * skipped
	}

	animated := &clip.AnimatedClip{
		Frames:    coalesced,
		Palette:   palette,
		Width:     capCfg.ViewportWidth(),
		Height:    capCfg.EffectiveHeight(),
		LoopCount: 0,
	}

	data, err := gif.EncodeBytes(animated)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	limit := cfg.MaxClipBytes
	if limit == 0 {
		limit = config.DefaultMaxClipBytes
	}
	if err := clip.Guard(len(data), limit); err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	out := &CaptureOutput{
		ClipID:         id,
		Extension:      gif.Extension,
		SizeBytes:      len(data),
		Width:          animated.Width,
		Height:         animated.Height,
		CapturedFrames: capturedFrames,
		FrameCount:     len(coalesced),
		DelaysCs:       delays(coalesced),
		TotalDelayCs:   animated.TotalDelayCs(),
		PaletteSize:    len(palette),
		LoopCount:      animated.LoopCount,
		Data:           data,
	}

	if input.OutputPath != "" {
		if err := os.WriteFile(input.OutputPath, data, 0o644); err != nil {
			return nil, errors.NewInternal(err)
		}
		out.OutputPath = input.OutputPath
	}

	return out, nil
}

func delays(frames []clip.IndexedFrame) []int {
	out := make([]int, len(frames))
	for i, f := range frames {
		out[i] = f.DelayCs
	}
	return out
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
