package layout

import (
	"github.com/clipmill/clipmill/internal/composition"
	"github.com/clipmill/clipmill/internal/timeline"
)

// Layer is one positioned visual unit in a resolved frame. Animation is the
// untouched authored descriptor, forwarded for the presentation layer to
// drive; this engine does not interpolate it.
type Layer struct {
	ElementID string                  `json:"elementId"`
	Type      composition.ElementType `json:"type"`
	Style     Style                   `json:"style"`
	Visible   bool                    `json:"visible"`
	Src       string                  `json:"src,omitempty"`
	Text      string                  `json:"text,omitempty"`
	Animation *composition.Animation  `json:"animation,omitempty"`
}

// Frame is the fully resolved visual state for one playback instant.
type Frame struct {
	PageIndex  int     `json:"pageIndex"`
	LocalFrame int     `json:"localFrame"`
	Background string  `json:"background,omitempty"`
	Layers     []Layer `json:"layers"`
	// NoContent marks the synthetic frame returned for an empty or
	// malformed composition, so the host can render an explicit empty state.
	NoContent bool `json:"noContent,omitempty"`
}

// ResolveFrame maps an absolute frame to the flat list of positioned layers
// the host should draw. It is a pure function of (comp, absFrame) and never
// fails: empty compositions yield a single synthetic no-content frame.
func ResolveFrame(comp *composition.Composition, absFrame int) Frame {
	if comp == nil || len(comp.Pages) == 0 || comp.FPS <= 0 {
		return Frame{PageIndex: 0, NoContent: true}
	}

	pageIdx, localFrame := timeline.Locate(comp.Pages, comp.FPS, absFrame)
	page := &comp.Pages[pageIdx]

	frame := Frame{
		PageIndex:  pageIdx,
		LocalFrame: localFrame,
		Background: page.Background,
	}
	for i := range page.Elements {
		appendLayers(&frame.Layers, &page.Elements[i], 0, 0, 1, localFrame, comp.FPS)
	}
	return frame
}

// appendLayers walks the element tree, accumulating the parent origin and
// the product of ancestor group scales, and emits flat absolute layers.
func appendLayers(layers *[]Layer, el *composition.Element, offX, offY, scale float64, localFrame, fps int) {
	if el.Type == composition.ElementGroup {
		gl, ok := LayoutGroup(el, localFrame, fps)
		if !ok {
			return
		}
		abs := gl.Style
		abs.Left = offX + abs.Left*scale
		abs.Top = offY + abs.Top*scale
		abs.Width *= scale
		abs.Height *= scale
		*layers = append(*layers, newLayer(el, abs))

		childScale := scale * gl.Scale
		for i := range el.Children {
			appendLayers(layers, &el.Children[i], abs.Left, abs.Top, childScale, localFrame, fps)
		}
		return
	}

	s, ok := ResolveElement(el, localFrame, fps)
	if !ok {
		return
	}
	s.Left = offX + s.Left*scale
	s.Top = offY + s.Top*scale
	s.Width *= scale
	if el.Type == composition.ElementText {
		s.FontSize *= scale
		s.Height = s.FontSize * textHeightFactor
	} else {
		s.Height *= scale
	}
	*layers = append(*layers, newLayer(el, s))
}

func newLayer(el *composition.Element, s Style) Layer {
	return Layer{
		ElementID: el.ID,
		Type:      el.Type,
		Style:     s,
		Visible:   true,
		Src:       el.Src,
		Text:      el.Text,
		Animation: el.Animation,
	}
}
