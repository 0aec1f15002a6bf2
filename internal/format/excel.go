package format

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelize border style ids.
const (
	xlBorderThin   = 1
	xlBorderMedium = 2
	xlBorderDash   = 3
	xlBorderDot    = 4
	xlBorderThick  = 5
	xlBorderDouble = 6
)

// ToExcelStyle converts a StyleRecord to an excelize style definition.
func ToExcelStyle(s StyleRecord) *excelize.Style {
	st := &excelize.Style{}
	if c := normalizeHex(s.BackgroundColor); c != "" {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c}}
	}
	if s.TextColor != "" || s.FontWeight != "" || s.FontStyle != "" || s.FontSize > 0 {
		st.Font = &excelize.Font{
			Bold:   s.FontWeight == WeightBold,
			Italic: s.FontStyle == StyleItalic,
			Size:   s.FontSize,
			Color:  normalizeHex(s.TextColor),
		}
	}
	if s.TextAlign != "" {
		st.Alignment = &excelize.Alignment{Horizontal: s.TextAlign}
	}
	if b := s.Borders; b != nil {
		for _, e := range []struct {
			side   string
			border *Border
		}{{"top", b.Top}, {"bottom", b.Bottom}, {"left", b.Left}, {"right", b.Right}} {
			if e.border == nil {
				continue
			}
			st.Border = append(st.Border, excelize.Border{
				Type:  e.side,
				Color: normalizeHex(e.border.Color),
				Style: excelBorderStyle(e.border),
			})
		}
	}
	return st
}

// FromExcelStyle converts an excelize style back to a StyleRecord. Only
// the fields a StyleRecord can express are read.
func FromExcelStyle(st *excelize.Style) StyleRecord {
	var s StyleRecord
	if st == nil {
		return s
	}
	if st.Fill.Type == "pattern" && st.Fill.Pattern == 1 && len(st.Fill.Color) > 0 {
		s.BackgroundColor = normalizeHex(st.Fill.Color[0])
	}
	if f := st.Font; f != nil {
		if f.Bold {
			s.FontWeight = WeightBold
		}
		if f.Italic {
			s.FontStyle = StyleItalic
		}
		s.FontSize = f.Size
		s.TextColor = normalizeHex(f.Color)
	}
	if a := st.Alignment; a != nil {
		switch a.Horizontal {
		case AlignLeft, AlignCenter, AlignRight:
			s.TextAlign = a.Horizontal
		}
	}
	for _, xb := range st.Border {
		if xb.Style == 0 {
			continue
		}
		if s.Borders == nil {
			s.Borders = &Borders{}
		}
		b := borderFromExcel(xb)
		switch xb.Type {
		case "top":
			s.Borders.Top = b
		case "bottom":
			s.Borders.Bottom = b
		case "left":
			s.Borders.Left = b
		case "right":
			s.Borders.Right = b
		}
	}
	return s
}

func excelBorderStyle(b *Border) int {
	switch strings.ToLower(b.Style) {
	case "dashed":
		return xlBorderDash
	case "dotted":
		return xlBorderDot
	case "double":
		return xlBorderDouble
	}
	switch {
	case b.Width >= 3:
		return xlBorderThick
	case b.Width == 2:
		return xlBorderMedium
	default:
		return xlBorderThin
	}
}

func borderFromExcel(xb excelize.Border) *Border {
	b := &Border{Style: "solid", Width: 1, Color: normalizeHex(xb.Color)}
	switch xb.Style {
	case xlBorderMedium:
		b.Width = 2
	case xlBorderThick:
		b.Width = 3
	case xlBorderDash:
		b.Style = "dashed"
	case xlBorderDot:
		b.Style = "dotted"
	case xlBorderDouble:
		b.Style = "double"
		b.Width = 3
	}
	return b
}

// normalizeHex turns "#rrggbb", "rrggbb" or ARGB "aarrggbb" into "#RRGGBB".
// Anything else yields "".
func normalizeHex(c string) string {
	h := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(h) == 8 {
		h = h[2:]
	}
	if len(h) != 6 {
		return ""
	}
	for _, r := range h {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return ""
		}
	}
	return "#" + h
}
