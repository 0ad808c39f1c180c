package layout

import (
	"math"
	"testing"

	"github.com/clipmill/clipmill/internal/composition"
)

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-6
}

func TestVisibilityDelayBoundary(t *testing.T) {
	tests := []struct {
		delayMS  float64
		fps      int
		boundary int // first visible frame: round(delay/1000*fps)
	}{
		{0, 30, 0},
		{500, 30, 15},
		{250, 30, 8},
		{50, 30, 2},
		{1000, 60, 60},
	}
	for _, tt := range tests {
		el := composition.Element{Type: composition.ElementImage, DelayMS: tt.delayMS}
		if tt.boundary > 0 {
			if Visible(&el, tt.boundary-1, tt.fps) {
				t.Errorf("delay=%v fps=%d: frame %d should be invisible", tt.delayMS, tt.fps, tt.boundary-1)
			}
		}
		if !Visible(&el, tt.boundary, tt.fps) {
			t.Errorf("delay=%v fps=%d: frame %d should be visible (boundary inclusive)", tt.delayMS, tt.fps, tt.boundary)
		}
		if !Visible(&el, tt.boundary+10, tt.fps) {
			t.Errorf("delay=%v fps=%d: frame %d should stay visible", tt.delayMS, tt.fps, tt.boundary+10)
		}
	}
}

func TestResolveElementInvisibleProducesNoStyle(t *testing.T) {
	el := composition.Element{Type: composition.ElementVideo, DelayMS: 2000, Left: 10, Width: 100, Height: 50}
	if _, ok := ResolveElement(&el, 0, 30); ok {
		t.Error("element with pending delay resolved as visible")
	}
}

func TestResolveElementPassthrough(t *testing.T) {
	opacity := 0.5
	el := composition.Element{
		Type:     composition.ElementImage,
		Left:     10,
		Top:      20,
		Width:    300,
		Height:   150,
		Rotation: 45,
		Opacity:  &opacity,
		ZIndex:   3,
	}
	s, ok := ResolveElement(&el, 0, 30)
	if !ok {
		t.Fatal("element should be visible at frame 0")
	}
	if s.Left != 10 || s.Top != 20 || s.Width != 300 || s.Height != 150 {
		t.Errorf("geometry = %+v, want authored values", s)
	}
	if s.Rotation != 45 || s.Opacity != 0.5 || s.ZIndex != 3 {
		t.Errorf("rotation/opacity/zIndex = %v/%v/%d, want 45/0.5/3", s.Rotation, s.Opacity, s.ZIndex)
	}
}

func TestOpacityDefaultsToOne(t *testing.T) {
	el := composition.Element{Type: composition.ElementImage}
	s, _ := ResolveElement(&el, 0, 30)
	if s.Opacity != 1 {
		t.Errorf("default opacity = %v, want 1", s.Opacity)
	}
}

func TestTextHeightDerivedFromFontSize(t *testing.T) {
	el := composition.Element{Type: composition.ElementText, Text: "hi", FontSize: 24, Width: 200}
	s, _ := ResolveElement(&el, 0, 30)
	if !approx(s.Height, 36) {
		t.Errorf("text height = %v, want 36 (fontSize*1.5)", s.Height)
	}
	if s.FontSize != 24 {
		t.Errorf("FontSize = %v, want 24", s.FontSize)
	}
}

func TestGroupIntrinsicSizeFromContent(t *testing.T) {
	group := composition.Element{
		Type: composition.ElementGroup,
		Children: []composition.Element{
			{Type: composition.ElementImage, Left: 50, Top: 10, Width: 100, Height: 40},
			{Type: composition.ElementText, Left: 0, Top: 60, FontSize: 20},
		},
	}
	s, _ := ResolveElement(&group, 0, 30)
	if !approx(s.Width, 150) {
		t.Errorf("group width = %v, want 150", s.Width)
	}
	if !approx(s.Height, 90) { // text: 60 + 20*1.5
		t.Errorf("group height = %v, want 90", s.Height)
	}
}
