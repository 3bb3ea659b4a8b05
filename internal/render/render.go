// Package render defines the external rendering collaborators the capture
// core drives: a Renderer that loads pages and produces compressed stills,
// and a Decoder that turns a still into raw pixels.
package render

import "context"

// Renderer is a navigable page-rendering engine. Implementations are assumed
// live before a capture starts; the core does not manage their lifecycle.
type Renderer interface {
	// ConfigureViewport sets the rendering surface size in device pixels and
	// the pixel density factor.
	ConfigureViewport(ctx context.Context, width, height int, pixelDensity float64) error

	// Navigate loads the URL and returns the navigation HTTP status.
	Navigate(ctx context.Context, url string) (int, error)

	// WaitForFontsReady blocks until the page's fonts have loaded.
	WaitForFontsReady(ctx context.Context) error

	// ScrollSelectorIntoView scrolls the first match into view and returns
	// the number of visible elements matching the selector.
	ScrollSelectorIntoView(ctx context.Context, selector string) (int, error)

	// CaptureStill returns one compressed still of the current page state.
	CaptureStill(ctx context.Context) ([]byte, error)
}

// Decoder turns a compressed still into a raw RGBA buffer at the target
// resolution (tightly packed, 4 bytes per pixel, row-major).
type Decoder interface {
	Decode(still []byte, targetWidth, targetHeight int) ([]byte, error)
}

// Session bundles one renderer and one decoder for the duration of a single
// clip capture. Sessions are not shared across captures; the owning caller
// must Close on every exit path.
type Session struct {
	Renderer Renderer
	Decoder  Decoder

	closer func() error
	closed bool
}

// NewSession creates a session over an already-initialized renderer and
// decoder. closer may be nil when the collaborators need no teardown.
func NewSession(r Renderer, d Decoder, closer func() error) *Session {
	return &Session{Renderer: r, Decoder: d, closer: closer}
}

// Close releases the session. Safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
