// Package export encodes rendered certificates into their delivery
// formats: a JPEG raster and a single-page PDF wrapping it.
package export

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
)

const (
	// JPEGQuality is the fixed raster quality of every certificate output.
	JPEGQuality = 92
	// pdfDPI maps certificate pixels onto the PDF page: the page is sized
	// so the image prints at exactly this density.
	pdfDPI = 100
)

// JPEG writes img to w as a JPEG.
func JPEG(w io.Writer, img image.Image) error {
	err := imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	if err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

// PDF writes img to w as a one-page PDF whose page exactly wraps the image.
func PDF(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	pageW := float64(bounds.Dx()) * 72 / pdfDPI
	pageH := float64(bounds.Dy()) * 72 / pdfDPI

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	var jpg bytes.Buffer
	if err := JPEG(&jpg, img); err != nil {
		return err
	}
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	doc.RegisterImageOptionsReader("certificate", opts, &jpg)
	doc.ImageOptions("certificate", 0, 0, pageW, pageH, false, opts, 0, "")

	if err := doc.Error(); err != nil {
		return fmt.Errorf("compose pdf: %w", err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
