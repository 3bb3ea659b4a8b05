package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/diffclip/diffclip/internal/config"
	"github.com/diffclip/diffclip/internal/errors"
	"github.com/diffclip/diffclip/internal/ops"
	"github.com/diffclip/diffclip/internal/render"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(cfg *config.Config, newSession func() (*render.Session, error)) *cli.App {
	app := &cli.App{
		Name:    "diffclip",
		Usage:   "Web page clip capture for visual diffs",
		Version: Version,
		Commands: []*cli.Command{
			captureCmd(cfg, newSession),
			inspectCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// captureCmd creates the capture command.
func captureCmd(cfg *config.Config, newSession func() (*render.Session, error)) *cli.Command {
	return &cli.Command{
		Name:      "capture",
		Usage:     "Capture an animated clip of a web page and encode it as a GIF",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Usage: "Viewport width in device pixels"},
			&cli.IntFlag{Name: "height", Usage: "Viewport height in device pixels"},
			&cli.Float64Flag{Name: "duration", Aliases: []string{"d"}, Usage: "Capture duration in seconds (0.1-10)"},
			&cli.Float64Flag{Name: "fps", Usage: "Capture frame rate (1-10)"},
			&cli.IntFlag{Name: "pre-roll-ms", Usage: "Delay before the first frame, in milliseconds"},
			&cli.StringFlag{Name: "selector", Aliases: []string{"s"}, Usage: "Element selector that must match before capture"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Path to write the encoded clip to"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewConfigInvalid("url argument is required"))
			}

			session, err := newSession()
			if err != nil {
				return outputError(err)
			}
			defer session.Close()

			input := ops.CaptureInput{
				URL:             c.Args().First(),
				ViewportWidth:   c.Int("width"),
				ViewportHeight:  c.Int("height"),
				DurationSeconds: c.Float64("duration"),
				FPS:             c.Float64("fps"),
				PreRollMs:       c.Int("pre-roll-ms"),
				Selector:        c.String("selector"),
				OutputPath:      c.String("out"),
			}

			output, err := ops.Capture(c.Context, session, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// inspectCmd creates the inspect command.
func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect an existing clip artifact",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewConfigInvalid("path argument is required"))
			}

			output, err := ops.Inspect(ops.InspectInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if clipErr, ok := err.(*errors.ClipError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", clipErr.Code, clipErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
