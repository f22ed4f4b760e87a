// Package editor implements the photomark editing session core: the layer
// model, bounded undo/redo history, and the state engine that all UI
// collaborators drive through its public operations.
package editor

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"photomark/pkg/geometry"
)

// Kind discriminates the closed set of layer variants.
type Kind int

const (
	KindImage Kind = iota
	KindText
	KindFrame
	KindCollage
	KindImageWatermark
)

// kindNames maps kinds to their wire names used in templates and project JSON.
var kindNames = map[Kind]string{
	KindImage:          "image",
	KindText:           "text",
	KindFrame:          "frame",
	KindCollage:        "collage",
	KindImageWatermark: "imageWatermark",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Label returns the human-readable label used for auto-generated layer names.
func (k Kind) Label() string {
	switch k {
	case KindImage:
		return "Image"
	case KindText:
		return "Text"
	case KindFrame:
		return "Frame"
	case KindCollage:
		return "Collage"
	case KindImageWatermark:
		return "Watermark"
	default:
		panic(fmt.Sprintf("editor: unknown layer kind %d", int(k)))
	}
}

// KindFromString resolves a wire name to a Kind.
func KindFromString(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown layer type %q", s)
}

// Props is the variant-specific payload of a layer. The set of
// implementations is closed: exactly one props type exists per Kind, and
// every type switch over Props handles all five or panics, so a sixth
// variant cannot slip through silently.
type Props interface {
	Kind() Kind
	Clone() Props

	sealed()
}

// Frame border styles.
const (
	FrameSolid  = "solid"
	FrameDashed = "dashed"
)

// ImageProps is the payload of an image layer.
type ImageProps struct {
	Src      string  `json:"src"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
}

func (p *ImageProps) Kind() Kind { return KindImage }
func (p *ImageProps) Clone() Props {
	c := *p
	return &c
}
func (p *ImageProps) sealed() {}

// TextProps is the payload of a text watermark layer.
type TextProps struct {
	Text       string  `json:"text"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	Color      string  `json:"color"`
	Background string  `json:"background,omitempty"`
	Rotation   float64 `json:"rotation"`
	Opacity    float64 `json:"opacity"`
}

func (p *TextProps) Kind() Kind { return KindText }
func (p *TextProps) Clone() Props {
	c := *p
	return &c
}
func (p *TextProps) sealed() {}

// FrameProps is the payload of a frame layer. A frame always spans the full
// canvas, so it carries no position of its own.
type FrameProps struct {
	Style       string  `json:"style"`
	BorderWidth float64 `json:"borderWidth"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
}

func (p *FrameProps) Kind() Kind { return KindFrame }
func (p *FrameProps) Clone() Props {
	c := *p
	return &c
}
func (p *FrameProps) sealed() {}

// CollageProps is the payload of a collage layer: a grid of source images
// composited as one logical layer.
type CollageProps struct {
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Gap        float64  `json:"gap"`
	Images     []string `json:"images"`
	Background string   `json:"background"`
	Opacity    float64  `json:"opacity"`
}

func (p *CollageProps) Kind() Kind { return KindCollage }
func (p *CollageProps) Clone() Props {
	c := *p
	c.Images = append([]string(nil), p.Images...)
	return &c
}
func (p *CollageProps) sealed() {}

// WatermarkProps is the payload of an image watermark layer. Width and
// Height of zero mean the source's natural size.
type WatermarkProps struct {
	Src      string  `json:"src"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Opacity  float64 `json:"opacity"`
}

func (p *WatermarkProps) Kind() Kind { return KindImageWatermark }
func (p *WatermarkProps) Clone() Props {
	c := *p
	return &c
}
func (p *WatermarkProps) sealed() {}

// Layer is one editable element of the composition.
type Layer struct {
	ID      string
	Kind    Kind
	Name    string
	Visible bool
	Locked  bool
	Props   Props
}

// NewLayer builds a layer of the given kind with variant defaults sized to
// the canvas, then applies overrides (overrides win). Construction is pure:
// no engine state is touched. An unknown kind is a programming error and
// panics.
func NewLayer(kind Kind, name string, canvas geometry.Size, overrides Patch) *Layer {
	props := defaultProps(kind, canvas)
	overrides.Apply(props)
	return &Layer{
		ID:      uuid.NewString(),
		Kind:    kind,
		Name:    name,
		Visible: true,
		Props:   props,
	}
}

// Clone returns a deep copy sharing no mutable state with the original.
func (l *Layer) Clone() *Layer {
	c := *l
	c.Props = l.Props.Clone()
	return &c
}

func defaultProps(kind Kind, canvas geometry.Size) Props {
	switch kind {
	case KindImage:
		return &ImageProps{
			Width:   canvas.Width,
			Height:  canvas.Height,
			Opacity: 1.0,
		}
	case KindText:
		return &TextProps{
			X:          canvas.Width / 2,
			Y:          canvas.Height / 2,
			FontSize:   24,
			FontFamily: "sans-serif",
			Color:      "#000000",
			Opacity:    0.8,
		}
	case KindFrame:
		return &FrameProps{
			Style:       FrameSolid,
			BorderWidth: 10,
			Color:       "#000000",
			Opacity:     1.0,
		}
	case KindCollage:
		return &CollageProps{
			Rows:       2,
			Cols:       2,
			Gap:        10,
			Background: "#ffffff",
			Opacity:    1.0,
		}
	case KindImageWatermark:
		return &WatermarkProps{
			Opacity: 0.8,
		}
	default:
		panic(fmt.Sprintf("editor: unknown layer kind %d", int(kind)))
	}
}

// layerJSON is the wire envelope for the tagged union.
type layerJSON struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Visible bool            `json:"visible"`
	Lock    bool            `json:"lock"`
	Props   json.RawMessage `json:"props"`
}

// MarshalJSON encodes the layer with its variant discriminator.
func (l *Layer) MarshalJSON() ([]byte, error) {
	props, err := json.Marshal(l.Props)
	if err != nil {
		return nil, err
	}
	return json.Marshal(layerJSON{
		ID:      l.ID,
		Type:    l.Kind.String(),
		Name:    l.Name,
		Visible: l.Visible,
		Lock:    l.Locked,
		Props:   props,
	})
}

// UnmarshalJSON decodes the envelope, then dispatches on the type tag to the
// matching props variant.
func (l *Layer) UnmarshalJSON(data []byte) error {
	var env layerJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	kind, err := KindFromString(env.Type)
	if err != nil {
		return err
	}

	var props Props
	switch kind {
	case KindImage:
		props = &ImageProps{}
	case KindText:
		props = &TextProps{}
	case KindFrame:
		props = &FrameProps{}
	case KindCollage:
		props = &CollageProps{}
	case KindImageWatermark:
		props = &WatermarkProps{}
	default:
		panic(fmt.Sprintf("editor: unknown layer kind %d", int(kind)))
	}
	if len(env.Props) > 0 {
		if err := json.Unmarshal(env.Props, props); err != nil {
			return fmt.Errorf("layer %q props: %w", env.ID, err)
		}
	}

	l.ID = env.ID
	l.Kind = kind
	l.Name = env.Name
	l.Visible = env.Visible
	l.Locked = env.Lock
	l.Props = props
	return nil
}
