package export

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"photomark/pkg/geometry"
)

// layerTransform maps source pixel coordinates of a w×h raster onto the
// destination rect, rotated about the rect center. Inverse() gives the
// sampling transform used by the compositor.
func layerTransform(dst geometry.Rect, srcW, srcH, degrees float64) *mat.Dense {
	rad := degrees * math.Pi / 180
	center := translation(dst.X+dst.Width/2, dst.Y+dst.Height/2)
	rotate := rotation(rad)
	scale := scaling(dst.Width/srcW, dst.Height/srcH)
	origin := translation(-srcW/2, -srcH/2)

	var a, b, m mat.Dense
	a.Mul(center, rotate)
	b.Mul(&a, scale)
	m.Mul(&b, origin)
	return &m
}

// invert returns the inverse transform, or nil for a degenerate matrix
// (zero-sized rect); the caller skips drawing in that case.
func invert(m *mat.Dense) *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil
	}
	return &inv
}

// apply maps a point through the transform.
func apply(m *mat.Dense, x, y float64) (float64, float64) {
	return m.At(0, 0)*x + m.At(0, 1)*y + m.At(0, 2),
		m.At(1, 0)*x + m.At(1, 1)*y + m.At(1, 2)
}

// destBounds returns the axis-aligned bounding box of the transformed
// source rectangle.
func destBounds(m *mat.Dense, srcW, srcH float64) geometry.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range [][2]float64{{0, 0}, {srcW, 0}, {0, srcH}, {srcW, srcH}} {
		x, y := apply(m, corner[0], corner[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return geometry.RectOf(minX, minY, maxX-minX, maxY-minY)
}

func translation(tx, ty float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, tx,
		0, 1, ty,
		0, 0, 1,
	})
}

func rotation(rad float64) *mat.Dense {
	c, s := math.Cos(rad), math.Sin(rad)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

func scaling(sx, sy float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	})
}
