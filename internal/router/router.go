package router

import (
	"net/http"
	"time"

	"github.com/centaura/cms/internal/config"
	"github.com/centaura/cms/internal/handler"
	"github.com/centaura/cms/internal/logger"
	"github.com/centaura/cms/internal/view"
	"github.com/centaura/cms/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "centaura_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg config.AppConfig, api *handler.API, log *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(log))

	handler.RegisterValidatorTagNames()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handler.CSRFHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 加载模板并添加自定义函数
	r.SetHTMLTemplate(web.Templates(view.FuncMap()))

	// 静态文件服务
	r.Static(cfg.UploadURLPath, cfg.UploadDir)
	if cfg.UploadURLPath != "/uploads" {
		r.Static("/uploads", cfg.UploadDir)
	}

	r.GET("/", api.Index)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/healthz", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/homepage", api.GetHomepage)

		auth := apiGroup.Group("/auth")
		auth.GET("/csrf", api.CSRFToken)
		auth.POST("/login", api.Login)
		auth.GET("/session", api.Session)
		auth.POST("/logout", handler.APIAuthRequired(), handler.CSRFProtected(), api.Logout)

		protected := apiGroup.Group("")
		protected.Use(handler.APIAuthRequired(), handler.CSRFProtected())
		protected.POST("/media-assets/upload", api.UploadMedia)

		api.RegisterResources(apiGroup, protected)
	}

	// 后台管理路由
	dashboard := r.Group("/dashboard")
	dashboard.Use(handler.CSRFProtected())
	{
		dashboard.GET("/login", api.ShowLogin)
		dashboard.POST("/login", api.DashboardLogin)
		dashboard.GET("/logout", api.DashboardLogout)

		// 需要认证的后台路由
		auth := dashboard.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("", api.ShowDashboard)
			auth.GET("/gallery", api.ShowGallery)
			auth.POST("/gallery/upload", api.UploadGalleryImage)
			auth.POST("/gallery/:id/delete", api.DeleteGalleryImage)

			api.RegisterDashboard(auth)
		}
	}

	return r
}
