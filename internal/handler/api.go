package handler

import (
	"github.com/centaura/cms/internal/logger"
	"github.com/centaura/cms/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	content   *service.Content
	homepage  *service.HomepageService
	log       *logger.Logger
	uploadDir string
	uploadURL string
	resources []string
}

const siteName = "Centaura"

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, log *logger.Logger, uploadDir, uploadURL string) *API {
	if log == nil {
		log = logger.Nop()
	}
	content := service.NewContent(gdb)

	return &API{
		db:        gdb,
		content:   content,
		homepage:  service.NewHomepageService(content),
		log:       log.With("component", "http"),
		uploadDir: uploadDir,
		uploadURL: uploadURL,
	}
}

// Content exposes the stores the handlers write through.
func (a *API) Content() *service.Content {
	return a.content
}

// renderHTML 渲染后台模板，自动附加站点名、当前用户与 CSRF token。
func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	session := sessions.Default(c)
	if _, exists := payload["username"]; !exists {
		payload["username"] = session.Get(sessionUsernameKey)
	}
	if _, exists := payload["csrfToken"]; !exists {
		payload["csrfToken"] = a.csrfToken(c)
	}
	if _, exists := payload["siteName"]; !exists {
		payload["siteName"] = siteName
	}
	if _, exists := payload["saved"]; !exists {
		payload["saved"] = c.Query("saved") == "1"
	}

	c.HTML(status, template, payload)
}
