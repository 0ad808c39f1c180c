// Package timeline converts millisecond page durations into frame ranges
// and maps absolute playback frames back to (page, local frame) pairs.
package timeline

import (
	"math"

	"github.com/clipmill/clipmill/internal/composition"
)

// FrameRange is one page's span on the absolute frame axis.
type FrameRange struct {
	Start int // first absolute frame of the page
	Count int // number of frames the page occupies
}

// FrameCount returns the frames a single page spans at the given rate.
// Each page is rounded independently so drift stays bounded per page
// instead of compounding across the timeline.
func FrameCount(durationMS float64, fps int) int {
	return int(math.Round(durationMS / 1000 * float64(fps)))
}

// FrameRanges computes each page's absolute frame range by running sum.
func FrameRanges(pages []composition.Page, fps int) []FrameRange {
	ranges := make([]FrameRange, len(pages))
	start := 0
	for i, p := range pages {
		count := FrameCount(p.DurationMS, fps)
		ranges[i] = FrameRange{Start: start, Count: count}
		start += count
	}
	return ranges
}

// TotalFrames is the composition's full span in frames.
func TotalFrames(pages []composition.Page, fps int) int {
	total := 0
	for _, p := range pages {
		total += FrameCount(p.DurationMS, fps)
	}
	return total
}

// Locate maps an absolute frame to (page index, local frame). A frame past
// the end clamps to the last page's final frame. With zero pages it returns
// (-1, 0); callers synthesize an empty frame for that case.
func Locate(pages []composition.Page, fps int, absFrame int) (pageIndex, localFrame int) {
	if len(pages) == 0 {
		return -1, 0
	}
	if absFrame < 0 {
		absFrame = 0
	}

	ranges := FrameRanges(pages, fps)
	for i, r := range ranges {
		if absFrame < r.Start+r.Count {
			return i, absFrame - r.Start
		}
	}

	last := ranges[len(ranges)-1]
	end := last.Count - 1
	if end < 0 {
		end = 0
	}
	return len(pages) - 1, end
}
