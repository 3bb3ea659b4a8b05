package mcp

import "github.com/mark3labs/mcp-go/mcp"

// captureToolDef describes the clip_capture tool.
var captureToolDef = mcp.NewTool("clip_capture",
	mcp.WithDescription("Capture a short animated clip of a web page's rendering over a few seconds and encode it as a GIF under the configured byte limit."),
	mcp.WithString("url",
		mcp.Required(),
		mcp.Description("URL to capture"),
	),
	mcp.WithNumber("viewport_width",
		mcp.Description("Viewport width in device pixels (default from config)"),
	),
	mcp.WithNumber("viewport_height",
		mcp.Description("Viewport height in device pixels (default from config)"),
	),
	mcp.WithNumber("duration_seconds",
		mcp.Description("Capture duration in seconds, clamped to [0.1, 10]"),
	),
	mcp.WithNumber("fps",
		mcp.Description("Capture frame rate, clamped to integer [1, 10]"),
	),
	mcp.WithNumber("pre_roll_ms",
		mcp.Description("Delay before the first frame, in milliseconds"),
	),
	mcp.WithString("selector",
		mcp.Description("Optional element selector; zero visible matches fails the capture"),
	),
	mcp.WithString("output_path",
		mcp.Description("Path to write the encoded clip to"),
	),
)

// inspectToolDef describes the clip_inspect tool.
var inspectToolDef = mcp.NewTool("clip_inspect",
	mcp.WithDescription("Inspect an existing clip artifact: frame count, per-frame delays, dimensions, loop count, and byte size."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path of the clip artifact to inspect"),
	),
)
