// Package layout resolves element visibility and absolute on-canvas
// geometry for a given playback frame. Everything here is a pure function
// of (snapshot, frame); there is no shared state.
package layout

import (
	"math"

	"github.com/clipmill/clipmill/internal/composition"
)

// textHeightFactor estimates a text block's height from its font size;
// text has authored width but derived height.
const textHeightFactor = 1.5

// Style is an element's absolute resolved geometry for one frame.
type Style struct {
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
	ZIndex   int     `json:"zIndex"`
	// FontSize carries the scaled size for text elements; zero otherwise.
	FontSize float64 `json:"fontSize,omitempty"`
}

// Visible reports whether an element has come on screen at the given local
// frame: the boundary frame round(delay/1000*fps) itself is visible.
func Visible(el *composition.Element, localFrame, fps int) bool {
	if fps <= 0 {
		return false
	}
	return float64(localFrame)/float64(fps) >= el.DelayMS/1000
}

// widthOf dispatches intrinsic width on the element's variant tag.
func widthOf(el *composition.Element) float64 {
	if el.Type == composition.ElementGroup && el.Width == 0 {
		w, _ := groupContentBounds(el)
		return w
	}
	return el.Width
}

// heightOf dispatches intrinsic height on the element's variant tag. Text
// height is derived from font size rather than authored.
func heightOf(el *composition.Element) float64 {
	switch el.Type {
	case composition.ElementText:
		return el.FontSize * textHeightFactor
	case composition.ElementGroup:
		if el.Height == 0 {
			_, h := groupContentBounds(el)
			return h
		}
	}
	return el.Height
}

// ResolveElement computes an element's unscaled geometry at a local frame.
// Returns ok=false while the element's delay has not elapsed; invisible
// elements produce no style.
func ResolveElement(el *composition.Element, localFrame, fps int) (Style, bool) {
	if !Visible(el, localFrame, fps) {
		return Style{}, false
	}

	s := Style{
		Left:     el.Left,
		Top:      el.Top,
		Width:    widthOf(el),
		Height:   heightOf(el),
		Rotation: el.Rotation,
		Opacity:  el.EffectiveOpacity(),
		ZIndex:   el.ZIndex,
	}
	if el.Type == composition.ElementText {
		s.FontSize = el.FontSize
	}
	return s, true
}

// groupContentBounds computes the content box of a group's direct children:
// the max extent of left+width and top+height, with text heights estimated.
func groupContentBounds(group *composition.Element) (w, h float64) {
	for i := range group.Children {
		c := &group.Children[i]
		w = math.Max(w, c.Left+widthOf(c))
		h = math.Max(h, c.Top+heightOf(c))
	}
	return w, h
}
