// Package api exposes the certificate service over HTTP.
package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certifyhq/certify/internal/certificate"
	"github.com/certifyhq/certify/internal/config"
	"github.com/certifyhq/certify/internal/export"
	"github.com/certifyhq/certify/internal/fonts"
	"github.com/certifyhq/certify/internal/mailer"
	"github.com/certifyhq/certify/internal/util"
)

// API holds the handlers' collaborators.
type API struct {
	log      *zap.Logger
	renderer *certificate.Renderer
	fonts    *fonts.Provider
	sender   mailer.Sender
	smtp     config.SMTP
}

// New wires the HTTP layer to its collaborators.
func New(log *zap.Logger, renderer *certificate.Renderer, provider *fonts.Provider, sender mailer.Sender, smtp config.SMTP) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		log:      log,
		renderer: renderer,
		fonts:    provider,
		sender:   sender,
		smtp:     smtp,
	}
}

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Certify API is running"})
}

// listFonts returns the catalog, optionally narrowed by ?q=.
func (a *API) listFonts(c *gin.Context) {
	list, err := a.fonts.List(c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if list == nil {
		list = []fonts.Info{}
	}
	c.JSON(http.StatusOK, gin.H{"fonts": list})
}

// fontFile serves one font for client-side previews.
func (a *API) fontFile(c *gin.Context) {
	name := c.Param("filename")
	path, err := a.fonts.ResolvePath(name)
	switch {
	case errors.Is(err, fonts.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid font filename"})
		return
	case errors.Is(err, fonts.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Font not found: " + name})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := "font/ttf"
	if strings.EqualFold(filepath.Ext(name), ".otf") {
		contentType = "font/otf"
	}
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400")
	c.File(path)
}

// generateSingle renders one certificate and returns the requested formats
// base64-encoded.
func (a *API) generateSingle(c *gin.Context) {
	includeJPG := boolForm(c, "include_jpg", true)
	includePDF := boolForm(c, "include_pdf", true)
	if !includeJPG && !includePDF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one format (PDF or JPG) must be selected"})
		return
	}

	img, ok := a.renderFromForm(c)
	if !ok {
		return
	}
	name := util.SanitizeFilename(c.DefaultPostForm("filename", "certificate"))

	resp := gin.H{"filename": name}
	if includeJPG {
		var buf bytes.Buffer
		if err := export.JPEG(&buf, img); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["jpg"] = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	if includePDF {
		var buf bytes.Buffer
		if err := export.PDF(&buf, img); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp["pdf"] = base64.StdEncoding.EncodeToString(buf.Bytes())
	}
	c.JSON(http.StatusOK, resp)
}

// qrPNG returns a standalone QR code as PNG.
func (a *API) qrPNG(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text query parameter is required"})
		return
	}
	size := certificate.DefaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v > 0 {
		size = v
	}
	png, err := certificate.QRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// renderFromForm parses the shared multipart rendering inputs (text_boxes,
// optional qr_stamp, template upload) and produces the certificate image.
// On failure it writes the error response and reports false.
func (a *API) renderFromForm(c *gin.Context) (*image.NRGBA, bool) {
	boxes, stamp, ok := a.decodeRenderInputs(c)
	if !ok {
		return nil, false
	}
	return a.renderTemplate(c, boxes, stamp)
}

// decodeRenderInputs validates the JSON parts of a rendering request
// before anything heavier runs.
func (a *API) decodeRenderInputs(c *gin.Context) ([]certificate.TextBox, *certificate.QRStamp, bool) {
	boxes, err := certificate.DecodeBoxes([]byte(c.PostForm("text_boxes")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	stamp, err := certificate.DecodeStamp([]byte(c.PostForm("qr_stamp")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	return boxes, stamp, true
}

// renderTemplate reads the uploaded template and draws boxes and stamp
// onto it.
func (a *API) renderTemplate(c *gin.Context, boxes []certificate.TextBox, stamp *certificate.QRStamp) (*image.NRGBA, bool) {
	fh, err := c.FormFile("template")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template image is required"})
		return nil, false
	}
	data, err := util.ReadFormFile(fh)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to load template image: " + err.Error()})
		return nil, false
	}
	tpl, err := certificate.DecodeTemplate(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to load template image: " + err.Error()})
		return nil, false
	}

	img := a.renderer.Render(tpl, boxes)
	if stamp != nil {
		img, err = stamp.Apply(img)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return nil, false
		}
	}
	return img, true
}

// boolForm reads a boolean form field, keeping def when the field is absent
// or unparsable.
func boolForm(c *gin.Context, key string, def bool) bool {
	v, ok := c.GetPostForm(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(v)))
	if err != nil {
		return def
	}
	return b
}
