package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every endpoint on r. The surface is flat, no
// version prefix: the existing frontend addresses these paths directly.
func (a *API) RegisterRoutes(r *gin.Engine) {
	r.GET("/", a.health)
	r.GET("/fonts", a.listFonts)
	r.GET("/fonts/:filename", a.fontFile)
	r.GET("/qr", a.qrPNG)
	r.GET("/email-config", a.emailConfig)
	r.POST("/generate-single", a.generateSingle)
	r.POST("/send-email", a.sendEmail)
	r.POST("/send-email-v2", a.sendEmailV2)
}
