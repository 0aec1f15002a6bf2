package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is the remote API's RGB color, each channel in [0, 1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// TextFormat is the remote API's text styling block.
type TextFormat struct {
	ForegroundColor *Color `json:"foregroundColor,omitempty"`
	Bold            *bool  `json:"bold,omitempty"`
	Italic          *bool  `json:"italic,omitempty"`
	FontSize        int    `json:"fontSize,omitempty"`
}

// APIBorder is one edge as the remote API represents it.
type APIBorder struct {
	Style string `json:"style"`
	Color *Color `json:"color,omitempty"`
	Width int    `json:"width,omitempty"`
}

// APIBorders groups the four edges.
type APIBorders struct {
	Top    *APIBorder `json:"top,omitempty"`
	Bottom *APIBorder `json:"bottom,omitempty"`
	Left   *APIBorder `json:"left,omitempty"`
	Right  *APIBorder `json:"right,omitempty"`
}

// CellFormat is the subset of the remote API's cell format this module
// produces and consumes.
type CellFormat struct {
	BackgroundColor     *Color      `json:"backgroundColor,omitempty"`
	TextFormat          *TextFormat `json:"textFormat,omitempty"`
	HorizontalAlignment string      `json:"horizontalAlignment,omitempty"`
	Borders             *APIBorders `json:"borders,omitempty"`
}

// ToCellFormat converts a StyleRecord to the remote representation.
// Unparseable colors are dropped.
func ToCellFormat(s StyleRecord) CellFormat {
	var cf CellFormat
	if c, err := ParseHexColor(s.BackgroundColor); err == nil {
		cf.BackgroundColor = &c
	}

	var tf TextFormat
	hasText := false
	if c, err := ParseHexColor(s.TextColor); err == nil {
		tf.ForegroundColor = &c
		hasText = true
	}
	if s.FontWeight != "" {
		b := s.FontWeight == WeightBold
		tf.Bold = &b
		hasText = true
	}
	if s.FontStyle != "" {
		i := s.FontStyle == StyleItalic
		tf.Italic = &i
		hasText = true
	}
	if s.FontSize > 0 {
		tf.FontSize = int(math.Round(s.FontSize))
		hasText = true
	}
	if hasText {
		cf.TextFormat = &tf
	}

	if s.TextAlign != "" {
		cf.HorizontalAlignment = strings.ToUpper(s.TextAlign)
	}

	if s.Borders != nil {
		cf.Borders = &APIBorders{
			Top:    toAPIBorder(s.Borders.Top),
			Bottom: toAPIBorder(s.Borders.Bottom),
			Left:   toAPIBorder(s.Borders.Left),
			Right:  toAPIBorder(s.Borders.Right),
		}
	}
	return cf
}

// FromCellFormat converts the remote representation back to a StyleRecord.
func FromCellFormat(cf CellFormat) StyleRecord {
	var s StyleRecord
	if cf.BackgroundColor != nil {
		s.BackgroundColor = cf.BackgroundColor.Hex()
	}
	if tf := cf.TextFormat; tf != nil {
		if tf.ForegroundColor != nil {
			s.TextColor = tf.ForegroundColor.Hex()
		}
		if tf.Bold != nil {
			s.FontWeight = WeightNormal
			if *tf.Bold {
				s.FontWeight = WeightBold
			}
		}
		if tf.Italic != nil {
			s.FontStyle = StyleNormal
			if *tf.Italic {
				s.FontStyle = StyleItalic
			}
		}
		if tf.FontSize > 0 {
			s.FontSize = float64(tf.FontSize)
		}
	}
	switch cf.HorizontalAlignment {
	case "LEFT":
		s.TextAlign = AlignLeft
	case "CENTER":
		s.TextAlign = AlignCenter
	case "RIGHT":
		s.TextAlign = AlignRight
	}
	if b := cf.Borders; b != nil {
		s.Borders = &Borders{
			Top:    fromAPIBorder(b.Top),
			Bottom: fromAPIBorder(b.Bottom),
			Left:   fromAPIBorder(b.Left),
			Right:  fromAPIBorder(b.Right),
		}
	}
	return s
}

func toAPIBorder(b *Border) *APIBorder {
	if b == nil {
		return nil
	}
	out := &APIBorder{Width: b.Width}
	switch strings.ToLower(b.Style) {
	case "dashed":
		out.Style = "DASHED"
	case "dotted":
		out.Style = "DOTTED"
	case "double":
		out.Style = "DOUBLE"
	case "none":
		out.Style = "NONE"
	default:
		switch {
		case b.Width >= 3:
			out.Style = "SOLID_THICK"
		case b.Width == 2:
			out.Style = "SOLID_MEDIUM"
		default:
			out.Style = "SOLID"
		}
	}
	if c, err := ParseHexColor(b.Color); err == nil {
		out.Color = &c
	}
	return out
}

func fromAPIBorder(b *APIBorder) *Border {
	if b == nil {
		return nil
	}
	out := &Border{Width: b.Width}
	switch b.Style {
	case "SOLID_MEDIUM":
		out.Style = "solid"
		if out.Width == 0 {
			out.Width = 2
		}
	case "SOLID_THICK":
		out.Style = "solid"
		if out.Width == 0 {
			out.Width = 3
		}
	case "":
		out.Style = "solid"
	default:
		out.Style = strings.ToLower(b.Style)
	}
	if out.Width == 0 {
		out.Width = 1
	}
	if b.Color != nil {
		out.Color = b.Color.Hex()
	}
	return out
}

// ParseHexColor parses "#RRGGBB" (the leading '#' is optional).
func ParseHexColor(hex string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return Color{
		Red:   float64((v>>16)&0xff) / 255,
		Green: float64((v>>8)&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}, nil
}

// Hex renders the color as "#RRGGBB".
func (c Color) Hex() string {
	ch := func(f float64) int {
		return int(math.Round(math.Max(0, math.Min(1, f)) * 255))
	}
	return fmt.Sprintf("#%02X%02X%02X", ch(c.Red), ch(c.Green), ch(c.Blue))
}
