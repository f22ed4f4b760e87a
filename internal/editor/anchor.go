package editor

import "photomark/pkg/geometry"

// Anchor names one of the nine fixed positions watermarks can be placed at.
type Anchor string

const (
	AnchorTopLeft      Anchor = "topLeft"
	AnchorTopCenter    Anchor = "topCenter"
	AnchorTopRight     Anchor = "topRight"
	AnchorMiddleLeft   Anchor = "middleLeft"
	AnchorMiddleCenter Anchor = "middleCenter"
	AnchorMiddleRight  Anchor = "middleRight"
	AnchorBottomLeft   Anchor = "bottomLeft"
	AnchorBottomCenter Anchor = "bottomCenter"
	AnchorBottomRight  Anchor = "bottomRight"
)

// anchorPadding is the fixed inset from each canvas edge.
const anchorPadding = 20

// Resolve maps the anchor to a coordinate on a canvas of the given size.
// Unknown anchors fall back to bottomRight.
func (a Anchor) Resolve(canvas geometry.Size) geometry.Point {
	w, h := canvas.Width, canvas.Height
	switch a {
	case AnchorTopLeft:
		return geometry.Pt(anchorPadding, anchorPadding)
	case AnchorTopCenter:
		return geometry.Pt(w/2, anchorPadding)
	case AnchorTopRight:
		return geometry.Pt(w-anchorPadding, anchorPadding)
	case AnchorMiddleLeft:
		return geometry.Pt(anchorPadding, h/2)
	case AnchorMiddleCenter:
		return geometry.Pt(w/2, h/2)
	case AnchorMiddleRight:
		return geometry.Pt(w-anchorPadding, h/2)
	case AnchorBottomLeft:
		return geometry.Pt(anchorPadding, h-anchorPadding)
	case AnchorBottomCenter:
		return geometry.Pt(w/2, h-anchorPadding)
	default:
		return geometry.Pt(w-anchorPadding, h-anchorPadding)
	}
}
