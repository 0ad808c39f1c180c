package layout

import (
	"math"

	"github.com/clipmill/clipmill/internal/composition"
)

// ChildLayout pairs a group child with its scaled geometry. Positions stay
// relative to the group origin; FlattenFrame converts them to absolute.
type ChildLayout struct {
	Element *composition.Element
	Style   Style
}

// GroupLayout is the resolved geometry of a group and its direct children.
type GroupLayout struct {
	Style    Style
	Scale    float64
	Children []ChildLayout
}

// LayoutGroup resolves a group's bounding box and the uniform scale applied
// to its children. Authored group size wins over computed content bounds; a
// single scale factor (not independent x/y) keeps children undistorted.
// Invisible children contribute nothing. Empty groups degrade to zero-size
// bounds at origin with identity scale.
func LayoutGroup(group *composition.Element, localFrame, fps int) (GroupLayout, bool) {
	style, ok := ResolveElement(group, localFrame, fps)
	if !ok {
		return GroupLayout{}, false
	}

	contentW, contentH := groupContentBounds(group)

	groupW := group.Width
	if groupW == 0 {
		groupW = contentW
	}
	groupH := group.Height
	if groupH == 0 {
		groupH = contentH
	}
	style.Width = groupW
	style.Height = groupH

	scale := 1.0
	if contentW > 0 && contentH > 0 {
		scale = math.Min(groupW/contentW, groupH/contentH)
	}

	out := GroupLayout{Style: style, Scale: scale}
	for i := range group.Children {
		child := &group.Children[i]
		cs, visible := ResolveElement(child, localFrame, fps)
		if !visible {
			continue
		}
		cs.Left *= scale
		cs.Top *= scale
		cs.Width *= scale
		if child.Type == composition.ElementText {
			// Text height is derived, so the font scales instead.
			cs.FontSize *= scale
			cs.Height = cs.FontSize * textHeightFactor
		} else {
			cs.Height *= scale
		}
		out.Children = append(out.Children, ChildLayout{Element: child, Style: cs})
	}
	return out, true
}
