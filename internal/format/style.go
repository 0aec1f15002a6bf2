// Package format converts cell styles between the canonical StyleRecord used
// by the modification overlay, the remote spreadsheet API's CellFormat and
// excelize styles.
package format

// StyleRecord is the canonical per-cell style. Zero values mean "unset".
type StyleRecord struct {
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	TextColor       string   `json:"textColor,omitempty"`
	FontWeight      string   `json:"fontWeight,omitempty"` // "normal" or "bold"
	FontStyle       string   `json:"fontStyle,omitempty"`  // "normal" or "italic"
	TextAlign       string   `json:"textAlign,omitempty"`  // "left", "center" or "right"
	FontSize        float64  `json:"fontSize,omitempty"`
	Borders         *Borders `json:"borders,omitempty"`
}

// Borders holds the four optional cell edges.
type Borders struct {
	Top    *Border `json:"top,omitempty"`
	Bottom *Border `json:"bottom,omitempty"`
	Left   *Border `json:"left,omitempty"`
	Right  *Border `json:"right,omitempty"`
}

// Border describes a single edge.
type Border struct {
	Style string `json:"style"`
	Color string `json:"color"`
	Width int    `json:"width"`
}

// CellStyle attaches a style to a cell of the base grid.
type CellStyle struct {
	Row    int         `json:"row"`
	Col    int         `json:"col"`
	Format StyleRecord `json:"format"`
}

const (
	WeightNormal = "normal"
	WeightBold   = "bold"
	StyleNormal  = "normal"
	StyleItalic  = "italic"
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
)

// IsZero reports whether no field of the record is set.
func (s StyleRecord) IsZero() bool {
	return s.BackgroundColor == "" && s.TextColor == "" && s.FontWeight == "" &&
		s.FontStyle == "" && s.TextAlign == "" && s.FontSize == 0 && s.Borders == nil
}

// Merge overlays patch on base, one top-level key at a time. Borders are
// replaced as a whole, not merged edge by edge.
func Merge(base, patch StyleRecord) StyleRecord {
	out := base
	if patch.BackgroundColor != "" {
		out.BackgroundColor = patch.BackgroundColor
	}
	if patch.TextColor != "" {
		out.TextColor = patch.TextColor
	}
	if patch.FontWeight != "" {
		out.FontWeight = patch.FontWeight
	}
	if patch.FontStyle != "" {
		out.FontStyle = patch.FontStyle
	}
	if patch.TextAlign != "" {
		out.TextAlign = patch.TextAlign
	}
	if patch.FontSize != 0 {
		out.FontSize = patch.FontSize
	}
	if patch.Borders != nil {
		out.Borders = patch.Borders.clone()
	} else if base.Borders != nil {
		out.Borders = base.Borders.clone()
	}
	return out
}

func (b *Borders) clone() *Borders {
	if b == nil {
		return nil
	}
	cp := func(e *Border) *Border {
		if e == nil {
			return nil
		}
		c := *e
		return &c
	}
	return &Borders{Top: cp(b.Top), Bottom: cp(b.Bottom), Left: cp(b.Left), Right: cp(b.Right)}
}
