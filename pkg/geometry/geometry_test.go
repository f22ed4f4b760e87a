package geometry

import (
	"math"
	"testing"
)

func TestPointDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"same point", Pt(3, 4), Pt(3, 4), 0},
		{"axis aligned", Pt(0, 0), Pt(5, 0), 5},
		{"pythagorean", Pt(0, 0), Pt(3, 4), 5},
		{"negative coords", Pt(-1, -1), Pt(2, 3), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Distance(tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Pt(2, 3).Add(Pt(1, -1))
	if p != Pt(3, 2) {
		t.Errorf("Add = %v, want (3,2)", p)
	}
	p = Pt(2, 3).Sub(Pt(1, -1))
	if p != Pt(1, 4) {
		t.Errorf("Sub = %v, want (1,4)", p)
	}
	p = Pt(2, 3).Scaled(2)
	if p != Pt(4, 6) {
		t.Errorf("Scaled = %v, want (4,6)", p)
	}
}

func TestSizeEmpty(t *testing.T) {
	tests := []struct {
		name string
		size Size
		want bool
	}{
		{"positive", Sz(10, 20), false},
		{"zero width", Sz(0, 20), true},
		{"zero height", Sz(10, 0), true},
		{"negative", Sz(-1, 20), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.size.Empty(); got != tt.want {
				t.Errorf("Empty(%v) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}
}

func TestRectContains(t *testing.T) {
	r := RectOf(10, 10, 100, 50)
	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Pt(50, 30), true},
		{"on edge", Pt(10, 10), true},
		{"far corner", Pt(110, 60), true},
		{"left of rect", Pt(9, 30), false},
		{"below rect", Pt(50, 61), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectCenterAndScale(t *testing.T) {
	r := RectOf(10, 20, 100, 60)
	if c := r.Center(); c != Pt(60, 50) {
		t.Errorf("Center = %v, want (60,50)", c)
	}
	if s := r.Scaled(0.5); s != RectOf(5, 10, 50, 30) {
		t.Errorf("Scaled = %v, want (5,10,50,30)", s)
	}
}

func TestRectIntersects(t *testing.T) {
	base := RectOf(0, 0, 100, 100)
	tests := []struct {
		name  string
		other Rect
		want  bool
	}{
		{"overlapping", RectOf(50, 50, 100, 100), true},
		{"contained", RectOf(25, 25, 10, 10), true},
		{"touching edge", RectOf(100, 0, 50, 50), false},
		{"disjoint", RectOf(200, 200, 10, 10), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%v) = %v, want %v", tt.other, got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects symmetric (%v) = %v, want %v", tt.other, got, tt.want)
			}
		})
	}
}
