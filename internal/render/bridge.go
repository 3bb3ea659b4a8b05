package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/diffclip/diffclip/internal/errors"
)

// BridgeRenderer drives a companion rendering bridge over HTTP. The bridge
// owns the actual browser; this client only issues commands and pulls stills.
type BridgeRenderer struct {
	baseURL string
	client  *http.Client
}

// NewBridgeRenderer creates a renderer client for the bridge at baseURL.
func NewBridgeRenderer(baseURL string) (*BridgeRenderer, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigInvalid(fmt.Sprintf("invalid bridge URL: %q", baseURL))
	}
	return &BridgeRenderer{
		baseURL: u.String(),
		client:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// ConfigureViewport implements Renderer.
func (b *BridgeRenderer) ConfigureViewport(ctx context.Context, width, height int, pixelDensity float64) error {
	_, err := b.postJSON(ctx, "/viewport", map[string]any{
		"width":         width,
		"height":        height,
		"pixel_density": pixelDensity,
	})
	return err
}

// Navigate implements Renderer. The returned status is the navigation HTTP
// status reported by the bridge, not the bridge's own response status.
func (b *BridgeRenderer) Navigate(ctx context.Context, pageURL string) (int, error) {
	body, err := b.postJSON(ctx, "/navigate", map[string]any{"url": pageURL})
	if err != nil {
		return 0, err
	}
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, errors.NewRendererUnavailable(fmt.Errorf("malformed navigate response: %w", err))
	}
	return resp.Status, nil
}

// WaitForFontsReady implements Renderer.
func (b *BridgeRenderer) WaitForFontsReady(ctx context.Context) error {
	_, err := b.postJSON(ctx, "/fonts/wait", nil)
	return err
}

// ScrollSelectorIntoView implements Renderer.
func (b *BridgeRenderer) ScrollSelectorIntoView(ctx context.Context, selector string) (int, error) {
	body, err := b.postJSON(ctx, "/selector/count", map[string]any{"selector": selector})
	if err != nil {
		return 0, err
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, errors.NewRendererUnavailable(fmt.Errorf("malformed selector response: %w", err))
	}
	return resp.Count, nil
}

// CaptureStill implements Renderer. The bridge returns compressed image bytes
// (PNG by default) for the current page state.
func (b *BridgeRenderer) CaptureStill(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"/still", nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.NewRendererUnavailable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewRendererUnavailable(fmt.Errorf("bridge /still returned %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}

// postJSON posts a JSON payload to the bridge and returns the response body.
func (b *BridgeRenderer) postJSON(ctx context.Context, path string, payload map[string]any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+path, body)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.NewRendererUnavailable(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewRendererUnavailable(fmt.Errorf("bridge %s returned %d", path, resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}
