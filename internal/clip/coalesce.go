package clip

import "bytes"

// Coalesce merges consecutive byte-identical indexed frames into single
// displayed frames whose delay is the sum of the merged frames' delays.
// baseDelayCs is the per-captured-frame display delay (minimum 1 enforced by
// the caller's config). A fully static capture collapses to one frame whose
// delay still equals the requested capture duration.
//
// Frames are compared post-quantization: two raw frames that quantize to the
// same indices are merged even if their original pixels differed.
func Coalesce(frames []IndexedFrame, baseDelayCs int) []IndexedFrame {
	if len(frames) == 0 {
		return nil
	}
	if baseDelayCs < 1 {
		baseDelayCs = 1
	}

	out := make([]IndexedFrame, 0, len(frames))
	run := frames[0]
	runLength := 1

	flush := func() {
		run.DelayCs = baseDelayCs * runLength
		out = append(out, run)
	}

	for _, f := range frames[1:] {
		if bytes.Equal(f.Pix, run.Pix) {
			runLength++
			continue
		}
		flush()
		run = f
		runLength = 1
	}
	flush()

	return out
}
