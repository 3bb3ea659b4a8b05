package render

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/diffclip/diffclip/internal/errors"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeMatchingSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 80), B: 9, A: 255})
		}
	}

	pix, err := NewStillDecoder().Decode(encodePNG(t, img), 4, 3)
	require.NoError(t, err)
	require.Len(t, pix, 4*3*4)
	require.Equal(t, img.Pix, pix)
}

func TestDecodeScalesToTarget(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 0, color.RGBA{G: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})
	img.Set(1, 1, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	pix, err := NewStillDecoder().Decode(encodePNG(t, img), 4, 4)
	require.NoError(t, err)
	require.Len(t, pix, 4*4*4)

	// Nearest-neighbour: each source pixel becomes a 2x2 block.
	require.Equal(t, byte(255), pix[0])          // (0,0) red
	require.Equal(t, byte(255), pix[3*4+1])      // (3,0) green
	require.Equal(t, byte(255), pix[3*4*4+2])    // (0,3) blue
	require.Equal(t, byte(255), pix[(3*4+3)*4])  // (3,3) white
	require.Equal(t, byte(255), pix[(3*4+3)*4+2])
}

func TestDecodeInvalidData(t *testing.T) {
	_, err := NewStillDecoder().Decode([]byte("not an image"), 4, 4)
	require.Error(t, err)
}

func TestDecodeInvalidTarget(t *testing.T) {
	_, err := NewStillDecoder().Decode(nil, 0, 4)
	require.Error(t, err)
}

func TestNewBridgeRendererRejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "127.0.0.1:9333", "/relative"} {
		_, err := NewBridgeRenderer(raw)
		require.Error(t, err, "url %q", raw)
		require.True(t, errors.Is(err, errors.ErrConfigInvalid))
	}
}

func TestBridgeRendererEndpoints(t *testing.T) {
	still := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 2, 2)))

	var viewportBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/viewport", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&viewportBody))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/navigate", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"status": 404})
	})
	mux.HandleFunc("/fonts/wait", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/selector/count", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"count": 2})
	})
	mux.HandleFunc("/still", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(still)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	b, err := NewBridgeRenderer(srv.URL)
	require.NoError(t, err)

	ctx := context.Background()

	require.NoError(t, b.ConfigureViewport(ctx, 375, 667, 1))
	require.Equal(t, float64(375), viewportBody["width"])
	require.Equal(t, float64(667), viewportBody["height"])

	status, err := b.Navigate(ctx, "http://example.test/")
	require.NoError(t, err)
	require.Equal(t, 404, status)

	require.NoError(t, b.WaitForFontsReady(ctx))

	count, err := b.ScrollSelectorIntoView(ctx, "#hero")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	got, err := b.CaptureStill(ctx)
	require.NoError(t, err)
	require.Equal(t, still, got)
}

func TestBridgeRendererUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBridgeRenderer(srv.URL)
	require.NoError(t, err)

	_, navErr := b.Navigate(context.Background(), "http://example.test/")
	require.True(t, errors.Is(navErr, errors.ErrRendererUnavailable))

	_, stillErr := b.CaptureStill(context.Background())
	require.True(t, errors.Is(stillErr, errors.ErrRendererUnavailable))
}

func TestSessionCloseIdempotent(t *testing.T) {
	closes := 0
	s := NewSession(nil, nil, func() error {
		closes++
		return nil
	})

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, closes)
}
