package certificate

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DecodeTemplate decodes an uploaded template image. The bytes come
// straight off the wire, so failures are client errors.
func DecodeTemplate(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode template image: %w", err)
	}
	return img, nil
}
