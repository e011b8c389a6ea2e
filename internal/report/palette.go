package report

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// Default series palette, applied positionally when a question has no custom
// colors and more than one category.
var defaultPalette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// AllocateColors assigns one color per category. Precedence: explicit
// overrides verbatim when there are enough, overrides cycled round-robin when
// there are some, the base color for a lone category, otherwise the default
// palette extended by a deterministic HSL walk. Pure function; identical
// inputs always yield identical output.
func AllocateColors(count int, baseColor string, overrides []*string) []string {
	if count <= 0 {
		return []string{}
	}

	set := make([]string, 0, len(overrides))
	for _, o := range overrides {
		if o == nil {
			continue
		}
		if c := NormalizeHexColor(*o); c != "" {
			set = append(set, c)
		}
	}

	out := make([]string, count)
	switch {
	case len(set) >= count:
		copy(out, set[:count])
	case len(set) > 0:
		for i := 0; i < count; i++ {
			out[i] = set[i%len(set)]
		}
	case count == 1:
		base := NormalizeHexColor(baseColor)
		if base == "" {
			base = defaultPalette[0]
		}
		out[0] = base
	default:
		for i := 0; i < count; i++ {
			if i < len(defaultPalette) {
				out[i] = defaultPalette[i]
			} else {
				out[i] = generatedColor(i - len(defaultPalette))
			}
		}
	}
	return out
}

// generatedColor walks hue in 40 degree steps and varies saturation and
// lightness by index, so large category counts keep distinct colors within
// one full palette cycle.
func generatedColor(i int) string {
	hue := float64((i * 40) % 360)
	sat := 0.55 + 0.12*float64(i%3)
	light := 0.42 + 0.10*float64(i%2)
	r, g, b := hslToRGB(hue, sat, light)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func hslToRGB(h, s, l float64) (uint8, uint8, uint8) {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return uint8(math.Round((r + m) * 255)), uint8(math.Round((g + m) * 255)), uint8(math.Round((b + m) * 255))
}

// NormalizeHexColor canonicalizes "#rrggbb"/"rrggbb" into upper-case
// "#RRGGBB", returning "" for anything that does not parse.
func NormalizeHexColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	s = strings.ToUpper(s)
	if len(s) != 7 {
		return ""
	}
	if _, _, _, err := ParseHexRGB(s); err != nil {
		return ""
	}
	return s
}

func ParseHexRGB(s string) (r, g, b uint8, err error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("expected 6 hex chars")
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid hex color")
	}
	return raw[0], raw[1], raw[2], nil
}
