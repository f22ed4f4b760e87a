package editor

// Patch is a partial property update. Nil fields leave the current value
// untouched; the merge is shallow. Fields that do not exist on the target
// variant are ignored, so a caller acting on a stale selection cannot
// corrupt an unrelated layer.
type Patch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	Opacity  *float64
	Src      *string

	// Text layers
	Text       *string
	FontSize   *float64
	FontFamily *string
	Color      *string
	Background *string

	// Frame layers
	Style       *string
	BorderWidth *float64

	// Collage layers
	Rows   *int
	Cols   *int
	Gap    *float64
	Images []string
}

// Float returns a pointer to v, for building patches inline.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for building patches inline.
func Int(v int) *int { return &v }

// Str returns a pointer to v, for building patches inline.
func Str(v string) *string { return &v }

// Apply merges the patch into props in place. The switch covers every
// variant; a new Kind without a case here panics rather than merging
// nothing silently.
func (p Patch) Apply(props Props) {
	switch v := props.(type) {
	case *ImageProps:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setF(&v.Width, p.Width)
		setF(&v.Height, p.Height)
		setF(&v.Rotation, p.Rotation)
		setF(&v.Opacity, p.Opacity)
		setS(&v.Src, p.Src)
	case *TextProps:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setF(&v.Rotation, p.Rotation)
		setF(&v.Opacity, p.Opacity)
		setF(&v.FontSize, p.FontSize)
		setS(&v.Text, p.Text)
		setS(&v.FontFamily, p.FontFamily)
		setS(&v.Color, p.Color)
		setS(&v.Background, p.Background)
	case *FrameProps:
		setF(&v.BorderWidth, p.BorderWidth)
		setF(&v.Opacity, p.Opacity)
		setS(&v.Style, p.Style)
		setS(&v.Color, p.Color)
	case *CollageProps:
		setI(&v.Rows, p.Rows)
		setI(&v.Cols, p.Cols)
		setF(&v.Gap, p.Gap)
		setF(&v.Opacity, p.Opacity)
		setS(&v.Background, p.Background)
		if p.Images != nil {
			v.Images = append([]string(nil), p.Images...)
		}
	case *WatermarkProps:
		setF(&v.X, p.X)
		setF(&v.Y, p.Y)
		setF(&v.Width, p.Width)
		setF(&v.Height, p.Height)
		setF(&v.Rotation, p.Rotation)
		setF(&v.Opacity, p.Opacity)
		setS(&v.Src, p.Src)
	default:
		panic("editor: patch applied to unknown props variant")
	}
}

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setI(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setS(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
