package analyzer

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// White is the default sheet background and is ignored by color aggregation.
const White = "#FFFFFF"

// NormalizeColor converts RGB or ARGB hex, with or without a leading '#',
// to upper-case "#RRGGBB". Anything else yields "".
func NormalizeColor(s string) string {
	s = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if len(s) == 8 {
		s = s[2:]
	}
	if len(s) != 6 {
		return ""
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return ""
		}
	}
	return "#" + s
}

// IndexedColor resolves a legacy palette index to "#RRGGBB", or "" when out
// of range.
func IndexedColor(i int) string {
	if i < 0 || i >= len(excelize.IndexedColorMapping) {
		return ""
	}
	return NormalizeColor(excelize.IndexedColorMapping[i])
}

// deriveStyle maps an excelize style onto the analyzer's formatting and
// color model. Every font, border and alignment the style declares is kept.
func deriveStyle(st *excelize.Style) (Formatting, Colors) {
	var (
		fm  Formatting
		col Colors
	)
	if st == nil {
		return fm, col
	}

	if fill := st.Fill; fill.Type != "" && len(fill.Color) > 0 {
		ff := &FillFormat{Type: fill.Type, Pattern: fill.Pattern}
		for _, c := range fill.Color {
			if n := NormalizeColor(c); n != "" {
				ff.Colors = append(ff.Colors, n)
			}
		}
		if len(ff.Colors) > 0 {
			ff.Foreground = ff.Colors[0]
			col.Background = ff.Colors[0]
		}
		if len(ff.Colors) > 1 {
			ff.Background = ff.Colors[1]
			col.BackgroundSecondary = ff.Colors[1]
		}
		fm.Fill = ff
	}

	if font := st.Font; font != nil {
		color := NormalizeColor(font.Color)
		if color == "" && font.ColorIndexed > 0 {
			color = IndexedColor(font.ColorIndexed)
		}
		fm.Font = &FontFormat{
			Name:      font.Family,
			Size:      font.Size,
			Bold:      font.Bold,
			Italic:    font.Italic,
			Underline: font.Underline,
			Color:     color,
		}
		col.Text = color
	}

	for _, b := range st.Border {
		fm.Borders = append(fm.Borders, BorderFormat{
			Type:  b.Type,
			Color: NormalizeColor(b.Color),
			Style: b.Style,
		})
	}
	if a := st.Alignment; a != nil {
		fm.Alignment = &AlignmentFormat{
			Horizontal: a.Horizontal,
			Vertical:   a.Vertical,
			WrapText:   a.WrapText,
			Indent:     a.Indent,
		}
	}

	return fm, col
}
