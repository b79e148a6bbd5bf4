package certificate

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// The sixteen basic named colors, as clients tend to send them.
var namedColors = map[string]color.NRGBA{
	"black":   {0x00, 0x00, 0x00, 0xff},
	"silver":  {0xc0, 0xc0, 0xc0, 0xff},
	"gray":    {0x80, 0x80, 0x80, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"maroon":  {0x80, 0x00, 0x00, 0xff},
	"red":     {0xff, 0x00, 0x00, 0xff},
	"purple":  {0x80, 0x00, 0x80, 0xff},
	"fuchsia": {0xff, 0x00, 0xff, 0xff},
	"green":   {0x00, 0x80, 0x00, 0xff},
	"lime":    {0x00, 0xff, 0x00, 0xff},
	"olive":   {0x80, 0x80, 0x00, 0xff},
	"yellow":  {0xff, 0xff, 0x00, 0xff},
	"navy":    {0x00, 0x00, 0x80, 0xff},
	"blue":    {0x00, 0x00, 0xff, 0xff},
	"teal":    {0x00, 0x80, 0x80, 0xff},
	"aqua":    {0x00, 0xff, 0xff, 0xff},
}

// ParseColor interprets a text box color value: #RGB, #RRGGBB or #RRGGBBAA
// (case-insensitive), or a basic named color.
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(v, "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	switch len(hex) {
	case 3:
		r, okR := hexNibble(hex[0])
		g, okG := hexNibble(hex[1])
		b, okB := hexNibble(hex[2])
		if !okR || !okG || !okB {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		return color.NRGBA{R: r * 0x11, G: g * 0x11, B: b * 0x11, A: 0xff}, nil
	case 6, 8:
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
		}
		if len(hex) == 6 {
			n = n<<8 | 0xff
		}
		return color.NRGBA{
			R: uint8(n >> 24),
			G: uint8(n >> 16),
			B: uint8(n >> 8),
			A: uint8(n),
		}, nil
	}
	return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
