package capture

import (
	"fmt"
	"math"

	"github.com/diffclip/diffclip/internal/errors"
)

// Clamp bounds for capture parameters.
const (
	MinDurationSeconds = 0.1
	MaxDurationSeconds = 10
	MinFPS             = 1
	MaxFPS             = 10

	// Mobile-size override: viewports at most this wide and taller than the
	// clamp height are captured at the clamp height to keep above-the-fold
	// framing instead of a very tall clip.
	mobileMaxWidth    = 430
	mobileClampHeight = 667
)

// Config is an immutable, validated capture configuration. Construct with
// NewConfig; invalid numeric inputs are rejected there, out-of-range values
// are clamped.
type Config struct {
	url             string
	viewportWidth   int
	viewportHeight  int
	durationSeconds float64
	fps             int
	preRollMs       int
	selector        string
}

// NewConfig validates and clamps capture parameters. Non-finite duration or
// fps is a CONFIG_INVALID error; out-of-range values are clamped to their
// documented bounds. Pixel density is fixed at 1.
func NewConfig(url string, viewportWidth, viewportHeight int, durationSeconds, fps float64, preRollMs int, selector string) (Config, error) {
	if url == "" {
		return Config{}, errors.NewConfigInvalid("url is required")
	}
	if math.IsNaN(durationSeconds) || math.IsInf(durationSeconds, 0) {
		return Config{}, errors.NewConfigInvalid("duration must be a finite number")
	}
	if math.IsNaN(fps) || math.IsInf(fps, 0) {
		return Config{}, errors.NewConfigInvalid("fps must be a finite number")
	}
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return Config{}, errors.NewConfigInvalid(fmt.Sprintf("viewport must be positive, got %dx%d", viewportWidth, viewportHeight))
	}

	durationSeconds = math.Min(math.Max(durationSeconds, MinDurationSeconds), MaxDurationSeconds)

	intFPS := int(math.Round(fps))
	if intFPS < MinFPS {
		intFPS = MinFPS
	}
	if intFPS > MaxFPS {
		intFPS = MaxFPS
	}

	if preRollMs < 0 {
		preRollMs = 0
	}

	return Config{
		url:             url,
		viewportWidth:   viewportWidth,
		viewportHeight:  viewportHeight,
		durationSeconds: durationSeconds,
		fps:             intFPS,
		preRollMs:       preRollMs,
		selector:        selector,
	}, nil
}

// URL returns the capture target.
func (c Config) URL() string { return c.url }

// ViewportWidth returns the configured viewport width in device pixels.
func (c Config) ViewportWidth() int { return c.viewportWidth }

// ViewportHeight returns the configured viewport height in device pixels.
func (c Config) ViewportHeight() int { return c.viewportHeight }

// DurationSeconds returns the clamped capture duration.
func (c Config) DurationSeconds() float64 { return c.durationSeconds }

// FPS returns the clamped integer frame rate.
func (c Config) FPS() int { return c.fps }

// PreRollMs returns the pre-roll delay in milliseconds.
func (c Config) PreRollMs() int { return c.preRollMs }

// Selector returns the optional element selector ("" if unset).
func (c Config) Selector() string { return c.selector }

// PixelDensity returns the fixed pixel density factor.
func (c Config) PixelDensity() float64 { return 1 }

// EffectiveHeight returns the capture height after the mobile-size override.
func (c Config) EffectiveHeight() int {
	if c.viewportWidth <= mobileMaxWidth && c.viewportHeight > mobileClampHeight {
		return mobileClampHeight
	}
	return c.viewportHeight
}

// TotalFrames returns the maximum number of frames for this configuration.
func (c Config) TotalFrames() int {
	return int(math.Ceil(c.durationSeconds * float64(c.fps)))
}

// FrameIntervalMs returns the nominal inter-frame pacing delay.
func (c Config) FrameIntervalMs() int {
	return int(math.Round(1000 / float64(c.fps)))
}

// BaseDelayCs returns the per-frame display delay in centiseconds, minimum 1.
func (c Config) BaseDelayCs() int {
	cs := int(math.Round(1000 / float64(c.fps) / 10))
	if cs < 1 {
		cs = 1
	}
	return cs
}
