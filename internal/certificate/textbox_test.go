package certificate

import (
	"strings"
	"testing"
)

func TestDecodeBoxesDefaults(t *testing.T) {
	boxes, err := DecodeBoxes([]byte(`[{}]`))
	if err != nil {
		t.Fatalf("DecodeBoxes: %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("got %d boxes, want 1", len(boxes))
	}
	want := TextBox{
		X: 0, Y: 0, W: 100, H: 50,
		FontSize:  60,
		FontColor: "#000000",
		HAlign:    AlignCenter,
		VAlign:    AlignBottom,
	}
	if boxes[0] != want {
		t.Fatalf("defaults = %+v, want %+v", boxes[0], want)
	}
}

func TestDecodeBoxesFullObject(t *testing.T) {
	payload := `[{
		"x": 120, "y": 340, "w": 400, "h": 80,
		"text": "Jane Doe",
		"fontSize": 48,
		"fontColor": "navy",
		"fontFile": "Great-Vibes.ttf",
		"hAlign": "right",
		"vAlign": "top"
	}]`
	boxes, err := DecodeBoxes([]byte(payload))
	if err != nil {
		t.Fatalf("DecodeBoxes: %v", err)
	}
	b := boxes[0]
	if b.X != 120 || b.Y != 340 || b.W != 400 || b.H != 80 {
		t.Errorf("geometry = %d,%d %dx%d", b.X, b.Y, b.W, b.H)
	}
	if b.Text != "Jane Doe" || b.FontSize != 48 || b.FontFile != "Great-Vibes.ttf" {
		t.Errorf("content = %+v", b)
	}
	if b.HAlign != AlignRight || b.VAlign != AlignTop {
		t.Errorf("alignment = %v/%v", b.HAlign, b.VAlign)
	}
}

func TestDecodeBoxesCoercion(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    TextBox
	}{
		{
			"numeric strings",
			`[{"x": "150", "y": "40.9", "w": "300", "h": "75"}]`,
			TextBox{X: 150, Y: 40, W: 300, H: 75, FontSize: 60, FontColor: "#000000", HAlign: AlignCenter, VAlign: AlignBottom},
		},
		{
			"floats truncate toward zero",
			`[{"x": 99.9, "y": -3.7, "fontSize": 60.5}]`,
			TextBox{X: 99, Y: -3, W: 100, H: 50, FontSize: 60, FontColor: "#000000", HAlign: AlignCenter, VAlign: AlignBottom},
		},
		{
			"null keeps the default",
			`[{"w": null, "fontSize": null}]`,
			TextBox{W: 100, H: 50, FontSize: 60, FontColor: "#000000", HAlign: AlignCenter, VAlign: AlignBottom},
		},
		{
			"non-positive dimensions revert",
			`[{"w": 0, "h": -20}]`,
			TextBox{W: 100, H: 50, FontSize: 60, FontColor: "#000000", HAlign: AlignCenter, VAlign: AlignBottom},
		},
		{
			"unknown alignments revert",
			`[{"hAlign": "justified", "vAlign": "baseline"}]`,
			TextBox{W: 100, H: 50, FontSize: 60, FontColor: "#000000", HAlign: AlignCenter, VAlign: AlignBottom},
		},
		{
			"null element decodes to the nominal box",
			`[null]`,
			TextBox{W: 100, H: 50, FontSize: 60, FontColor: "#000000", HAlign: AlignCenter, VAlign: AlignBottom},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boxes, err := DecodeBoxes([]byte(tt.payload))
			if err != nil {
				t.Fatalf("DecodeBoxes: %v", err)
			}
			if boxes[0] != tt.want {
				t.Fatalf("box = %+v, want %+v", boxes[0], tt.want)
			}
		})
	}
}

func TestDecodeBoxesRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		errPart string
	}{
		{"malformed JSON", `[{"x": }]`, "invalid text_boxes JSON"},
		{"object instead of array", `{"x": 1}`, "invalid text_boxes JSON"},
		{"string instead of array", `"boxes"`, "invalid text_boxes JSON"},
		{"null", `null`, "must be a JSON array"},
		{"uncoercible coordinate", `[{"x": "twelve"}]`, "not a number"},
		{"boolean coordinate", `[{"y": true}]`, "not a number"},
		{"invalid color", `[{}, {"fontColor": "#GG0000"}]`, "text box 1"},
		{"empty color", `[{"fontColor": ""}]`, "invalid color"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBoxes([]byte(tt.payload))
			if err == nil {
				t.Fatalf("DecodeBoxes(%s) succeeded", tt.payload)
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Fatalf("error %q does not mention %q", err, tt.errPart)
			}
		})
	}
}

func TestDecodeBoxesEmptyArray(t *testing.T) {
	boxes, err := DecodeBoxes([]byte(`[]`))
	if err != nil {
		t.Fatalf("DecodeBoxes: %v", err)
	}
	if len(boxes) != 0 {
		t.Fatalf("got %d boxes from an empty array", len(boxes))
	}
}
