package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/certifyhq/certify/internal/export"
	"github.com/certifyhq/certify/internal/mailer"
	"github.com/certifyhq/certify/internal/util"
)

const notConfiguredMsg = "Email credentials not configured. Set EMAIL_USER and EMAIL_PASS environment variables."

// emailConfig reports whether delivery is set up, masking the sender.
func (a *API) emailConfig(c *gin.Context) {
	if a.smtp.User == "" {
		c.JSON(http.StatusOK, gin.H{"configured": false, "message": "Email not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"configured": true,
		"sender":     maskSender(a.smtp.User),
		"host":       a.smtp.Host,
	})
}

// sendEmail renders a certificate and emails it in one call.
func (a *API) sendEmail(c *gin.Context) {
	attachJPG := boolForm(c, "attach_jpg", true)
	attachPDF := boolForm(c, "attach_pdf", true)
	if !attachJPG && !attachPDF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one attachment type (PDF or JPG) must be selected"})
		return
	}

	recipient, ok := requireForm(c, "recipient_email")
	if !ok {
		return
	}
	subject, ok := requireForm(c, "email_subject")
	if !ok {
		return
	}
	bodyPlain, ok := requireForm(c, "email_body_plain")
	if !ok {
		return
	}

	boxes, stamp, ok := a.decodeRenderInputs(c)
	if !ok {
		return
	}
	if !a.smtp.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": notConfiguredMsg})
		return
	}
	img, ok := a.renderTemplate(c, boxes, stamp)
	if !ok {
		return
	}
	name := util.SanitizeFilename(c.DefaultPostForm("filename", "certificate"))

	var attachments []mailer.Attachment
	if attachJPG {
		var buf bytes.Buffer
		if err := export.JPEG(&buf, img); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		attachments = append(attachments, mailer.Attachment{Filename: name + ".jpg", Data: buf.Bytes()})
	}
	if attachPDF {
		var buf bytes.Buffer
		if err := export.PDF(&buf, img); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		attachments = append(attachments, mailer.Attachment{Filename: name + ".pdf", Data: buf.Bytes()})
	}

	a.deliver(c, mailer.Message{
		To:          recipient,
		Subject:     subject,
		BodyPlain:   bodyPlain,
		BodyHTML:    c.PostForm("email_body_html"),
		Attachments: attachments,
	})
}

// sendEmailV2 emails certificates the client already rendered, so the
// server does no image work at all.
func (a *API) sendEmailV2(c *gin.Context) {
	var req struct {
		RecipientEmail string `json:"recipient_email"`
		EmailSubject   string `json:"email_subject"`
		EmailBodyPlain string `json:"email_body_plain"`
		EmailBodyHTML  string `json:"email_body_html"`
		Filename       string `json:"filename"`
		JPGBase64      string `json:"jpg_base64"`
		PDFBase64      string `json:"pdf_base64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.RecipientEmail) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient_email is required"})
		return
	}
	if strings.TrimSpace(req.EmailSubject) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_subject is required"})
		return
	}
	if strings.TrimSpace(req.EmailBodyPlain) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_body_plain is required"})
		return
	}
	if req.JPGBase64 == "" && req.PDFBase64 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one attachment (jpg_base64 or pdf_base64) must be provided"})
		return
	}
	if !a.smtp.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": notConfiguredMsg})
		return
	}

	name := util.SanitizeFilename(req.Filename)
	var attachments []mailer.Attachment
	if req.JPGBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.JPGBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid jpg_base64: " + err.Error()})
			return
		}
		attachments = append(attachments, mailer.Attachment{Filename: name + ".jpg", Data: data})
	}
	if req.PDFBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.PDFBase64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pdf_base64: " + err.Error()})
			return
		}
		attachments = append(attachments, mailer.Attachment{Filename: name + ".pdf", Data: data})
	}

	a.deliver(c, mailer.Message{
		To:          req.RecipientEmail,
		Subject:     req.EmailSubject,
		BodyPlain:   req.EmailBodyPlain,
		BodyHTML:    req.EmailBodyHTML,
		Attachments: attachments,
	})
}

// deliver sends msg and writes the outcome, mapping authentication
// failures to 401 and everything else that breaks to 500.
func (a *API) deliver(c *gin.Context, msg mailer.Message) {
	err := a.sender.Send(c.Request.Context(), msg)
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": notConfiguredMsg})
	case errors.Is(err, mailer.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "SMTP authentication failed. Check server credentials."})
	case err != nil:
		a.log.Error("send email", zap.String("recipient", msg.To), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email: " + err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"message":   "Email sent to " + msg.To,
			"recipient": msg.To,
		})
	}
}

// requireForm fetches a mandatory form field, answering 400 when absent.
func requireForm(c *gin.Context, key string) (string, bool) {
	v, ok := c.GetPostForm(key)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " is required"})
		return "", false
	}
	return v, true
}

// maskSender hides most of the sender address for the config probe:
// "certs@example.com" comes back as "cer***@example.com".
func maskSender(addr string) string {
	parts := strings.Split(addr, "@")
	if len(parts) == 2 {
		return firstN(parts[0], 3) + "***@" + parts[1]
	}
	return firstN(addr, 3) + "***"
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
