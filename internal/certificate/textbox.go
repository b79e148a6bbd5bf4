// Package certificate renders positioned text boxes onto a template image.
// The renderer is a pure function of its inputs: decoding and validation
// happen at the boundary, drawing never fails.
package certificate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Nominal box geometry used when a descriptor omits or zeroes a field.
const (
	defaultBoxW     = 100
	defaultBoxH     = 50
	defaultFontSize = 60
	defaultColor    = "#000000"
)

// Pixels is an integer pixel measure. It accepts JSON numbers and numeric
// strings; fractional values truncate toward zero.
type Pixels int

func (p *Pixels) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			return err
		}
		s = strings.TrimSpace(quoted)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("value %q is not a number", s)
	}
	*p = Pixels(f)
	return nil
}

// HAlign places text horizontally inside its box.
type HAlign string

// VAlign places text vertically inside its box.
type VAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"

	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "middle"
	AlignBottom VAlign = "bottom"
)

// TextBox positions one run of text on the certificate. FontSize is the
// starting size for the fit search, not a guarantee.
type TextBox struct {
	X         Pixels `json:"x"`
	Y         Pixels `json:"y"`
	W         Pixels `json:"w"`
	H         Pixels `json:"h"`
	Text      string `json:"text"`
	FontSize  Pixels `json:"fontSize"`
	FontColor string `json:"fontColor"`
	FontFile  string `json:"fontFile"`
	HAlign    HAlign `json:"hAlign"`
	VAlign    VAlign `json:"vAlign"`
}

// UnmarshalJSON fills omitted fields with the nominal defaults and
// normalizes whatever came in.
func (b *TextBox) UnmarshalJSON(data []byte) error {
	type plain TextBox
	box := plain{
		W:         defaultBoxW,
		H:         defaultBoxH,
		FontSize:  defaultFontSize,
		FontColor: defaultColor,
		HAlign:    AlignCenter,
		VAlign:    AlignBottom,
	}
	if err := json.Unmarshal(data, &box); err != nil {
		return err
	}
	*b = TextBox(box)
	b.normalize()
	return nil
}

// normalize repairs out-of-range values instead of rejecting them:
// non-positive dimensions revert to the nominal box, unrecognized
// alignments revert to the default placement.
func (b *TextBox) normalize() {
	if b.W <= 0 {
		b.W = defaultBoxW
	}
	if b.H <= 0 {
		b.H = defaultBoxH
	}
	switch b.HAlign {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		b.HAlign = AlignCenter
	}
	switch b.VAlign {
	case AlignTop, AlignMiddle, AlignBottom:
	default:
		b.VAlign = AlignBottom
	}
}

// DecodeBoxes parses a text_boxes payload. It insists on a JSON array and
// rejects uncoercible values up front, so callers can map failures to a
// client error before any rendering work starts.
func DecodeBoxes(data []byte) ([]TextBox, error) {
	var boxes []TextBox
	if err := json.Unmarshal(data, &boxes); err != nil {
		return nil, fmt.Errorf("invalid text_boxes JSON: %w", err)
	}
	if boxes == nil {
		return nil, errors.New("text_boxes must be a JSON array")
	}
	for i := range boxes {
		if _, err := ParseColor(boxes[i].FontColor); err != nil {
			return nil, fmt.Errorf("text box %d: %w", i, err)
		}
	}
	return boxes, nil
}
