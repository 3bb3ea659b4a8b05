package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/diffclip/diffclip/internal/config"
	"github.com/diffclip/diffclip/internal/errors"
	"github.com/diffclip/diffclip/internal/ops"
	"github.com/diffclip/diffclip/internal/render"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	cfg *config.Config

	// newSession builds the capture session; replaced in tests.
	newSession func() (*render.Session, error)
}

// NewHandlers creates a Handlers instance whose sessions talk to the
// rendering bridge configured in cfg.
func NewHandlers(cfg *config.Config) *Handlers {
	return &Handlers{
		cfg: cfg,
		newSession: func() (*render.Session, error) {
			renderer, err := render.NewBridgeRenderer(cfg.BridgeURL)
			if err != nil {
				return nil, err
			}
			return render.NewSession(renderer, render.NewStillDecoder(), nil), nil
		},
	}
}

// Request types for each tool

// CaptureRequest represents the arguments for clip_capture.
type CaptureRequest struct {
	URL             string  `json:"url"`
	ViewportWidth   int     `json:"viewport_width,omitempty"`
	ViewportHeight  int     `json:"viewport_height,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	FPS             float64 `json:"fps,omitempty"`
	PreRollMs       int     `json:"pre_roll_ms,omitempty"`
	Selector        string  `json:"selector,omitempty"`
	OutputPath      string  `json:"output_path,omitempty"`
}

// InspectRequest represents the arguments for clip_inspect.
type InspectRequest struct {
	Path string `json:"path"`
}

// Handler implementations

// HandleCapture handles the clip_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult(errors.NewConfigInvalid(err.Error())), nil
	}

	session, err := h.newSession()
	if err != nil {
		return errorResult(err), nil
	}
	defer session.Close()

	result, err := ops.Capture(ctx, session, h.cfg, ops.CaptureInput{
		URL:             input.URL,
		ViewportWidth:   input.ViewportWidth,
		ViewportHeight:  input.ViewportHeight,
		DurationSeconds: input.DurationSeconds,
		FPS:             input.FPS,
		PreRollMs:       input.PreRollMs,
		Selector:        input.Selector,
		OutputPath:      input.OutputPath,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleInspect handles the clip_inspect tool call.
func (h *Handlers) HandleInspect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[InspectRequest](req)
	if err != nil {
		return errorResult(errors.NewConfigInvalid(err.Error())), nil
	}

	result, err := ops.Inspect(ops.InspectInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if clipErr, ok := err.(*errors.ClipError); ok {
		errorObj := map[string]any{
			"code":    clipErr.Code,
			"message": clipErr.Message,
			"status":  clipErr.Status,
		}
		if clipErr.Code != errors.ErrInternal && clipErr.Details != nil {
			errorObj["details"] = clipErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
