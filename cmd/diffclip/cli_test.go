package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diffclip/diffclip/internal/config"
	"github.com/diffclip/diffclip/internal/ops"
	"github.com/diffclip/diffclip/internal/render"
)

// stubRenderer serves canned stills without a live bridge.
type stubRenderer struct {
	static        bool
	selectorCount int
	calls         int
}

func (s *stubRenderer) ConfigureViewport(context.Context, int, int, float64) error { return nil }
func (s *stubRenderer) Navigate(context.Context, string) (int, error)              { return 200, nil }
func (s *stubRenderer) WaitForFontsReady(context.Context) error                    { return nil }

func (s *stubRenderer) ScrollSelectorIntoView(context.Context, string) (int, error) {
	return s.selectorCount, nil
}

func (s *stubRenderer) CaptureStill(context.Context) ([]byte, error) {
	s.calls++
	if s.static {
		return []byte{1}, nil
	}
	return []byte{byte(s.calls * 40)}, nil
}

type stubDecoder struct{}

func (stubDecoder) Decode(still []byte, w, h int) ([]byte, error) {
	pix := make([]byte, w*h*4)
	for p := 0; p < w*h; p++ {
		pix[p*4+1] = still[0]
		pix[p*4+3] = 255
	}
	return pix, nil
}

// testConfig returns a default config with a small viewport for testing.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DefaultViewportWidth = 16
	cfg.DefaultViewportHeight = 12
	return cfg
}

// stubSession returns a session factory backed by the given renderer.
func stubSession(r *stubRenderer) func() (*render.Session, error) {
	return func() (*render.Session, error) {
		return render.NewSession(r, stubDecoder{}, nil), nil
	}
}

// runApp runs the CLI with captured stdout.
func runApp(t *testing.T, cfg *config.Config, r *stubRenderer, args ...string) (string, error) {
	t.Helper()

	app := newCLIApp(cfg, stubSession(r))

	oldStdout := os.Stdout
	pr, pw, _ := os.Pipe()
	os.Stdout = pw

	err := app.Run(append([]string{"diffclip"}, args...))

	pw.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(pr)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestCLICapture tests the capture command end to end.
func TestCLICapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.gif")

	out, err := runApp(t, testConfig(), &stubRenderer{},
		"capture", "-d", "0.5", "--fps", "10", "-o", path, "http://example.test/")
	if err != nil {
		t.Fatalf("capture command failed: %v", err)
	}

	var output ops.CaptureOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	if output.ClipID == "" {
		t.Error("expected non-empty clip ID")
	}
	if output.FrameCount != 5 {
		t.Errorf("expected frame_count=5, got %d", output.FrameCount)
	}
	if output.Width != 16 || output.Height != 12 {
		t.Errorf("expected 16x12 clip, got %dx%d", output.Width, output.Height)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		t.Fatalf("expected clip file at %s: %v", path, statErr)
	}
	if info.Size() != int64(output.SizeBytes) {
		t.Errorf("file size %d does not match reported %d", info.Size(), output.SizeBytes)
	}
}

// TestCLICaptureMissingURL tests that capture requires a URL argument.
func TestCLICaptureMissingURL(t *testing.T) {
	_, err := runApp(t, testConfig(), &stubRenderer{}, "capture")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "CONFIG_INVALID") {
		t.Errorf("expected CONFIG_INVALID in %q", err.Error())
	}
}

// TestCLICaptureSelectorNotFound tests selector failure propagation.
func TestCLICaptureSelectorNotFound(t *testing.T) {
	r := &stubRenderer{selectorCount: 0}

	_, err := runApp(t, testConfig(), r,
		"capture", "-d", "0.5", "--fps", "10", "-s", "#missing", "http://example.test/")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "SELECTOR_NOT_FOUND") {
		t.Errorf("expected SELECTOR_NOT_FOUND in %q", err.Error())
	}
	if r.calls != 0 {
		t.Errorf("still captured %d times before selector failure", r.calls)
	}
}

// TestCLIInspect tests the inspect command against a captured clip.
func TestCLIInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.gif")

	if _, err := runApp(t, testConfig(), &stubRenderer{static: true},
		"capture", "-d", "0.5", "--fps", "10", "-o", path, "http://example.test/"); err != nil {
		t.Fatalf("capture command failed: %v", err)
	}

	out, err := runApp(t, testConfig(), &stubRenderer{}, "inspect", path)
	if err != nil {
		t.Fatalf("inspect command failed: %v", err)
	}

	var output ops.InspectOutput
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}

	if output.FrameCount != 1 {
		t.Errorf("expected frame_count=1 for a static page, got %d", output.FrameCount)
	}
	if output.TotalDelayCs != 50 {
		t.Errorf("expected total_delay_cs=50, got %d", output.TotalDelayCs)
	}
}

// TestCLIInspectMissingPath tests that inspect requires a path argument.
func TestCLIInspectMissingPath(t *testing.T) {
	_, err := runApp(t, testConfig(), &stubRenderer{}, "inspect")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "CONFIG_INVALID") {
		t.Errorf("expected CONFIG_INVALID in %q", err.Error())
	}
}
