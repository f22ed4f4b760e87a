// Package template provides JSON layout templates: named, categorized layer
// sets with a canvas definition that can be loaded into an editing session.
package template

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"photomark/internal/editor"
	"photomark/pkg/geometry"
)

// Canvas describes the canvas a template was designed for.
type Canvas struct {
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
}

// Size returns the canvas dimensions.
func (c Canvas) Size() geometry.Size {
	return geometry.Sz(c.Width, c.Height)
}

// Config is the loadable part of a template.
type Config struct {
	Layers []*editor.Layer `json:"layers"`
	Canvas Canvas          `json:"canvas"`
}

// Template is a named, categorized layer arrangement.
type Template struct {
	Name     string `json:"name"`
	NameEn   string `json:"nameEn,omitempty"`
	Category string `json:"category,omitempty"`
	Config   Config `json:"config"`
}

// Parse decodes and validates a template payload. Malformed input yields a
// nil template and an error; it never panics, so callers can surface a
// user-facing message.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	return Parse(data)
}

func (t *Template) validate() error {
	if t.Config.Canvas.Size().Empty() {
		return fmt.Errorf("template %q: canvas dimensions must be positive", t.Name)
	}
	seen := make(map[string]bool, len(t.Config.Layers))
	for i, l := range t.Config.Layers {
		if l == nil {
			return fmt.Errorf("template %q: layer %d is null", t.Name, i)
		}
		if l.ID == "" {
			l.ID = uuid.NewString()
		}
		if seen[l.ID] {
			return fmt.Errorf("template %q: duplicate layer id %q", t.Name, l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

// Apply sizes the engine's canvas from the template, then loads its layers.
// Canvas sizing belongs to this collaborator, not the engine.
func (t *Template) Apply(e *editor.Engine) {
	e.SetCanvasSize(t.Config.Canvas.Width, t.Config.Canvas.Height)
	e.LoadFromTemplate(t.Config.Layers)
}

// Builtins returns the starter templates shipped with the application.
func Builtins() []*Template {
	corner := editor.NewLayer(editor.KindText, "Text 1", geometry.Sz(800, 600), editor.Patch{
		Text: editor.Str("© photomark"),
		X:    editor.Float(780),
		Y:    editor.Float(580),
	})
	framed := editor.NewLayer(editor.KindFrame, "Frame 1", geometry.Sz(800, 600), editor.Patch{
		BorderWidth: editor.Float(24),
		Color:       editor.Str("#ffffff"),
	})
	grid := editor.NewLayer(editor.KindCollage, "Collage 1", geometry.Sz(1200, 1200), editor.Patch{
		Rows: editor.Int(2),
		Cols: editor.Int(2),
		Gap:  editor.Float(16),
	})

	return []*Template{
		{
			Name:     "Corner signature",
			NameEn:   "Corner signature",
			Category: "watermark",
			Config: Config{
				Layers: []*editor.Layer{corner},
				Canvas: Canvas{Width: 800, Height: 600, BackgroundColor: "#ffffff"},
			},
		},
		{
			Name:     "White border",
			NameEn:   "White border",
			Category: "frame",
			Config: Config{
				Layers: []*editor.Layer{framed},
				Canvas: Canvas{Width: 800, Height: 600, BackgroundColor: "#ffffff"},
			},
		},
		{
			Name:     "Square grid",
			NameEn:   "Square grid",
			Category: "collage",
			Config: Config{
				Layers: []*editor.Layer{grid},
				Canvas: Canvas{Width: 1200, Height: 1200, BackgroundColor: "#ffffff"},
			},
		},
	}
}
