package clip

import "github.com/diffclip/diffclip/internal/errors"

// Guard rejects an encoded artifact that exceeds the byte limit. It runs once,
// after encoding completes; the artifact is never truncated or downscaled.
func Guard(measuredBytes, limitBytes int) error {
	if measuredBytes > limitBytes {
		return errors.NewSizeExceeded(measuredBytes, limitBytes)
	}
	return nil
}
