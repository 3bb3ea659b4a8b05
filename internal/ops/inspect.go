package ops

import (
	"bytes"
	"fmt"
	stdgif "image/gif"
	"os"

	"github.com/diffclip/diffclip/internal/errors"
)

// InspectInput contains parameters for the Inspect operation.
type InspectInput struct {
	Path string // required
}

// InspectOutput reports the structure of an existing clip artifact, the same
// figures a publisher would validate before upload.
type InspectOutput struct {
	Path         string `json:"path"`
	SizeBytes    int    `json:"size_bytes"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FrameCount   int    `json:"frame_count"`
	DelaysCs     []int  `json:"delays_cs"`
	TotalDelayCs int    `json:"total_delay_cs"`
	LoopCount    int    `json:"loop_count"`
}

// Inspect decodes a clip artifact and reports its frame structure.
func Inspect(input InspectInput) (*InspectOutput, error) {
	if input.Path == "" {
		return nil, errors.NewConfigInvalid("path is required")
	}

	data, err := os.ReadFile(input.Path)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	decoded, err := stdgif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("not a decodable clip: %w", err))
	}

	total := 0
	for _, d := range decoded.Delay {
		total += d
	}

	return &InspectOutput{
		Path:         input.Path,
		SizeBytes:    len(data),
		Width:        decoded.Config.Width,
		Height:       decoded.Config.Height,
		FrameCount:   len(decoded.Image),
		DelaysCs:     decoded.Delay,
		TotalDelayCs: total,
		LoopCount:    decoded.LoopCount,
	}, nil
}
