package export

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"photomark/internal/editor"
)

func solidImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newSession(t *testing.T) *editor.Engine {
	t.Helper()
	e := editor.NewEngine()
	base := solidImage(80, 60, color.RGBA{R: 40, G: 120, B: 200, A: 255})
	e.SetImage(editor.BaseImage{Src: "base.png", Data: base}, 80, 60)
	return e
}

func TestRenderDimensionsFollowScale(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
		wantW int
		wantH int
	}{
		{"native", 1, 80, 60},
		{"double", 2, 160, 120},
		{"half", 0.5, 40, 30},
		{"zero falls back to native", 0, 80, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newSession(t)
			out, err := Render(e, Request{Format: FormatPNG, Scale: tt.scale})
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got := out.Bounds(); got.Dx() != tt.wantW || got.Dy() != tt.wantH {
				t.Fatalf("bounds = %dx%d, want %dx%d", got.Dx(), got.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderWithoutCanvasFails(t *testing.T) {
	e := editor.NewEngine()
	e.SetCanvasSize(0, 0)
	if _, err := Render(e, Request{Format: FormatPNG, Scale: 1}); err == nil {
		t.Fatal("Render accepted an empty canvas")
	}
}

func TestRenderDrawsBaseImage(t *testing.T) {
	e := newSession(t)
	out, err := Render(e, Request{Format: FormatPNG, Scale: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	r, g, b, _ := out.At(40, 30).RGBA()
	if r>>8 != 40 || g>>8 != 120 || b>>8 != 200 {
		t.Fatalf("center pixel = %d,%d,%d, want base color 40,120,200", r>>8, g>>8, b>>8)
	}
}

func TestRenderFrameStrokesBorder(t *testing.T) {
	e := newSession(t)
	e.AddFrame(editor.Patch{
		BorderWidth: editor.Float(5),
		Color:       editor.Str("#ff0000"),
		Opacity:     editor.Float(1),
	})
	out, err := Render(e, Request{Format: FormatPNG, Scale: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Inside the top band.
	r, g, b, _ := out.At(40, 2).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Fatalf("border pixel = %d,%d,%d, want red", r>>8, g>>8, b>>8)
	}
	// Past the band the base image shows through.
	r, _, _, _ = out.At(40, 30).RGBA()
	if r>>8 == 255 {
		t.Fatal("canvas interior painted over by the frame")
	}
}

func TestRenderSkipsHiddenLayers(t *testing.T) {
	e := newSession(t)
	frame := e.AddFrame(editor.Patch{
		BorderWidth: editor.Float(5),
		Color:       editor.Str("#00ff00"),
		Opacity:     editor.Float(1),
	})
	e.ToggleLayerVisibility(frame.ID)

	out, err := Render(e, Request{Format: FormatPNG, Scale: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	_, g, _, _ := out.At(40, 2).RGBA()
	if g>>8 == 255 {
		t.Fatal("hidden layer was rendered")
	}
}

func TestRenderMissingSourceFails(t *testing.T) {
	e := newSession(t)
	e.AddImageWatermark("no-such-file.png", editor.AnchorBottomRight, editor.Patch{})
	if _, err := Render(e, Request{Format: FormatPNG, Scale: 1}); err == nil {
		t.Fatal("Render succeeded with an unreadable layer source")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{"jpeg", FormatJPEG, false},
		{"jpg", FormatJPEG, false},
		{"webp", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFormat(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	src := solidImage(8, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := Encode(&buf, src, Request{Format: FormatPNG}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("decoded bounds = %v", b)
	}
}

func TestEncodeJPEGClampsQuality(t *testing.T) {
	src := solidImage(8, 6, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	for _, q := range []float64{-1, 0, 0.8, 2} {
		var buf bytes.Buffer
		if err := Encode(&buf, src, Request{Format: FormatJPEG, Quality: q}); err != nil {
			t.Fatalf("Encode(quality=%v): %v", q, err)
		}
		if buf.Len() == 0 {
			t.Fatalf("Encode(quality=%v) wrote nothing", q)
		}
	}
}

func TestEncodeUnknownFormatFails(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, solidImage(2, 2, color.RGBA{A: 255}), Request{Format: "gif"}); err == nil {
		t.Fatal("Encode accepted an unknown format")
	}
}
