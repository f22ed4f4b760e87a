package editor

import (
	"encoding/json"
	"reflect"
	"testing"

	"photomark/pkg/geometry"
)

func TestDefaultProps(t *testing.T) {
	canvas := geometry.Sz(800, 600)

	t.Run("text", func(t *testing.T) {
		l := NewLayer(KindText, "Text 1", canvas, Patch{})
		p := l.Props.(*TextProps)
		if p.FontSize != 24 {
			t.Errorf("FontSize = %v, want 24", p.FontSize)
		}
		if p.Color != "#000000" {
			t.Errorf("Color = %q, want #000000", p.Color)
		}
		if p.Background != "" {
			t.Errorf("Background = %q, want transparent", p.Background)
		}
		if p.Opacity != 0.8 {
			t.Errorf("Opacity = %v, want 0.8", p.Opacity)
		}
		if p.X != 400 || p.Y != 300 {
			t.Errorf("position = (%v, %v), want canvas center (400, 300)", p.X, p.Y)
		}
	})

	t.Run("frame", func(t *testing.T) {
		p := NewLayer(KindFrame, "Frame 1", canvas, Patch{}).Props.(*FrameProps)
		if p.Style != FrameSolid {
			t.Errorf("Style = %q, want solid", p.Style)
		}
		if p.BorderWidth != 10 {
			t.Errorf("BorderWidth = %v, want 10", p.BorderWidth)
		}
	})

	t.Run("collage", func(t *testing.T) {
		p := NewLayer(KindCollage, "Collage 1", canvas, Patch{}).Props.(*CollageProps)
		if p.Rows != 2 || p.Cols != 2 {
			t.Errorf("grid = %dx%d, want 2x2", p.Rows, p.Cols)
		}
		if p.Gap != 10 {
			t.Errorf("Gap = %v, want 10", p.Gap)
		}
		if len(p.Images) != 0 {
			t.Errorf("Images = %v, want empty", p.Images)
		}
	})

	t.Run("image", func(t *testing.T) {
		p := NewLayer(KindImage, "Image 1", canvas, Patch{}).Props.(*ImageProps)
		if p.Width != 800 || p.Height != 600 {
			t.Errorf("size = %vx%v, want canvas 800x600", p.Width, p.Height)
		}
		if p.Opacity != 1.0 {
			t.Errorf("Opacity = %v, want 1.0", p.Opacity)
		}
	})
}

func TestNewLayerDefaultsAndOverrides(t *testing.T) {
	l := NewLayer(KindFrame, "Frame 1", geometry.Sz(800, 600), Patch{
		BorderWidth: Float(25),
	})
	if l.ID == "" {
		t.Fatal("layer must get a generated id")
	}
	if !l.Visible {
		t.Fatal("layers default to visible")
	}
	if l.Locked {
		t.Fatal("layers default to unlocked")
	}
	p := l.Props.(*FrameProps)
	if p.BorderWidth != 25 {
		t.Errorf("override BorderWidth = %v, want 25", p.BorderWidth)
	}
	if p.Style != FrameSolid {
		t.Errorf("unpatched Style = %q, want default solid", p.Style)
	}
}

func TestNewLayerUnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewLayer with an unknown kind must panic")
		}
	}()
	NewLayer(Kind(99), "?", geometry.Sz(800, 600), Patch{})
}

func TestLayerIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		l := NewLayer(KindText, "t", geometry.Sz(10, 10), Patch{})
		if seen[l.ID] {
			t.Fatalf("duplicate id %q", l.ID)
		}
		seen[l.ID] = true
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := NewLayer(KindCollage, "Collage 1", geometry.Sz(800, 600), Patch{
		Images: []string{"a.png", "b.png"},
	})
	clone := orig.Clone()

	clone.Props.(*CollageProps).Images[0] = "scribbled.png"
	clone.Name = "renamed"

	if orig.Props.(*CollageProps).Images[0] != "a.png" {
		t.Fatal("clone shares the Images slice with the original")
	}
	if orig.Name != "Collage 1" {
		t.Fatal("clone shares scalar state with the original")
	}
}

func TestLayerJSONRoundTrip(t *testing.T) {
	canvas := geometry.Sz(800, 600)
	layers := []*Layer{
		NewLayer(KindImage, "Image 1", canvas, Patch{Src: Str("base.png")}),
		NewLayer(KindText, "Text 1", canvas, Patch{Text: Str("hello"), FontSize: Float(32)}),
		NewLayer(KindFrame, "Frame 1", canvas, Patch{Style: Str(FrameDashed)}),
		NewLayer(KindCollage, "Collage 1", canvas, Patch{Images: []string{"a.png"}}),
		NewLayer(KindImageWatermark, "Watermark 1", canvas, Patch{Src: Str("logo.png"), X: Float(10)}),
	}

	for _, orig := range layers {
		t.Run(orig.Kind.String(), func(t *testing.T) {
			data, err := json.Marshal(orig)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got Layer
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(orig, &got) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", &got, orig)
			}
		})
	}
}

func TestLayerUnmarshalUnknownType(t *testing.T) {
	payload := []byte(`{"id":"x","type":"hologram","name":"?","visible":true,"props":{}}`)
	var l Layer
	if err := json.Unmarshal(payload, &l); err == nil {
		t.Fatal("unknown layer type must fail to decode")
	}
}

func TestKindFromString(t *testing.T) {
	for _, kind := range []Kind{KindImage, KindText, KindFrame, KindCollage, KindImageWatermark} {
		got, err := KindFromString(kind.String())
		if err != nil {
			t.Fatalf("KindFromString(%q): %v", kind.String(), err)
		}
		if got != kind {
			t.Fatalf("KindFromString(%q) = %v, want %v", kind.String(), got, kind)
		}
	}
	if _, err := KindFromString("hologram"); err == nil {
		t.Fatal("want error for unknown type name")
	}
}

func TestPatchIgnoresInapplicableFields(t *testing.T) {
	l := NewLayer(KindFrame, "Frame 1", geometry.Sz(800, 600), Patch{})
	// Text-only fields directed at a frame merge nothing and corrupt nothing.
	Patch{Text: Str("oops"), FontSize: Float(99), BorderWidth: Float(3)}.Apply(l.Props)
	p := l.Props.(*FrameProps)
	if p.BorderWidth != 3 {
		t.Errorf("BorderWidth = %v, want 3", p.BorderWidth)
	}
}
