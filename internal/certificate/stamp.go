package certificate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the QR edge length used when a request does not pick one.
const DefaultQRSize = 400

// QRStamp asks for a QR code to be drawn onto the rendered certificate,
// typically a verification link. The code is pasted after all text boxes.
type QRStamp struct {
	Text string `json:"text"`
	X    Pixels `json:"x"`
	Y    Pixels `json:"y"`
	Size Pixels `json:"size"`
}

// DecodeStamp parses an optional qr_stamp payload. Absent input or blank
// text means no stamp and returns nil.
func DecodeStamp(data []byte) (*QRStamp, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var s QRStamp
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("invalid qr_stamp JSON: %w", err)
	}
	if strings.TrimSpace(s.Text) == "" {
		return nil, nil
	}
	if s.Size <= 0 {
		s.Size = DefaultQRSize
	}
	return &s, nil
}

// Apply pastes the stamp's QR code onto img at the stamp position.
func (s *QRStamp) Apply(img *image.NRGBA) (*image.NRGBA, error) {
	code, err := qrcode.New(s.Text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	return imaging.Paste(img, code.Image(int(s.Size)), image.Pt(int(s.X), int(s.Y))), nil
}

// QRPNG returns PNG bytes of a QR code for text, for direct download.
func QRPNG(text string, size int) ([]byte, error) {
	png, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("generate qr code: %w", err)
	}
	return png, nil
}
