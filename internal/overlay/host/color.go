package host

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseColor parses #rgb, #rgba, #rrggbb or #rrggbbaa into RGBA in [0, 1].
func ParseColor(s string) ([4]float32, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return [4]float32{}, fmt.Errorf("color %q: missing #", s)
	}

	switch len(hex) {
	case 3, 4:
		var long strings.Builder
		for _, c := range hex {
			long.WriteRune(c)
			long.WriteRune(c)
		}
		hex = long.String()
	case 6, 8:
	default:
		return [4]float32{}, fmt.Errorf("color %q: bad length", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]float32{}, fmt.Errorf("color %q: %w", s, err)
	}
	return [4]float32{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
