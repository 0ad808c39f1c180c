package timeline

import (
	"testing"

	"github.com/clipmill/clipmill/internal/composition"
)

func pagesOf(durationsMS ...float64) []composition.Page {
	pages := make([]composition.Page, len(durationsMS))
	for i, d := range durationsMS {
		pages[i] = composition.Page{ID: string(rune('a' + i)), DurationMS: d}
	}
	return pages
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		durationMS float64
		fps        int
		want       int
	}{
		{1000, 30, 30},
		{5000, 30, 150},
		{3000, 30, 90},
		{500, 30, 15},
		{1017, 30, 31}, // 30.51 rounds up
		{983, 30, 29},  // 29.49 rounds down
		{0, 30, 0},
		{1000, 60, 60},
	}
	for _, tt := range tests {
		if got := FrameCount(tt.durationMS, tt.fps); got != tt.want {
			t.Errorf("FrameCount(%v, %d) = %d, want %d", tt.durationMS, tt.fps, got, tt.want)
		}
	}
}

func TestFrameRangesRunningSum(t *testing.T) {
	pages := pagesOf(5000, 3000)
	ranges := FrameRanges(pages, 30)

	want := []FrameRange{{Start: 0, Count: 150}, {Start: 150, Count: 90}}
	if len(ranges) != len(want) {
		t.Fatalf("got %d ranges, want %d", len(ranges), len(want))
	}
	for i := range want {
		if ranges[i] != want[i] {
			t.Errorf("range[%d] = %+v, want %+v", i, ranges[i], want[i])
		}
	}
}

func TestTotalFramesMatchesRangeSum(t *testing.T) {
	pages := pagesOf(5000, 3000, 1017, 250)
	total := TotalFrames(pages, 30)

	sum := 0
	for _, r := range FrameRanges(pages, 30) {
		sum += r.Count
	}
	if total != sum {
		t.Errorf("TotalFrames = %d, sum of range counts = %d", total, sum)
	}
}

func TestLocate(t *testing.T) {
	pages := pagesOf(5000, 3000)

	tests := []struct {
		name      string
		frame     int
		wantPage  int
		wantLocal int
	}{
		{"origin", 0, 0, 0},
		{"inside first page", 100, 0, 100},
		{"first frame of second page", 150, 1, 0},
		{"inside second page", 200, 1, 50},
		{"last valid frame", 239, 1, 89},
		{"past the end clamps", 240, 1, 89},
		{"far past the end clamps", 10000, 1, 89},
		{"negative clamps to origin", -5, 0, 0},
	}
	for _, tt := range tests {
		page, local := Locate(pages, 30, tt.frame)
		if page != tt.wantPage || local != tt.wantLocal {
			t.Errorf("%s: Locate(%d) = (%d, %d), want (%d, %d)",
				tt.name, tt.frame, page, local, tt.wantPage, tt.wantLocal)
		}
	}
}

func TestLocateZeroPages(t *testing.T) {
	page, local := Locate(nil, 30, 42)
	if page != -1 || local != 0 {
		t.Errorf("Locate with zero pages = (%d, %d), want (-1, 0)", page, local)
	}
}

func TestLocateSkipsZeroDurationPages(t *testing.T) {
	pages := pagesOf(0, 1000)
	page, local := Locate(pages, 30, 0)
	if page != 1 || local != 0 {
		t.Errorf("Locate(0) with leading empty page = (%d, %d), want (1, 0)", page, local)
	}
}
