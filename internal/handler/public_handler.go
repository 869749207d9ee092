package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetHomepage 返回首页聚合数据，只有存储不可用时才返回 500。
func (a *API) GetHomepage(c *gin.Context) {
	page, err := a.homepage.Build(c.Request.Context())
	if err != nil {
		a.log.Error("build homepage failed", "error", err)
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to load homepage")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Index 描述 API 的入口地址
func (a *API) Index(c *gin.Context) {
	resources := make(gin.H, len(a.resources))
	for _, name := range a.resources {
		resources[name] = "/api/" + name
	}

	c.JSON(http.StatusOK, gin.H{
		"name":      siteName + " CMS",
		"homepage":  "/api/homepage",
		"auth":      gin.H{"csrf": "/api/auth/csrf", "login": "/api/auth/login", "logout": "/api/auth/logout", "session": "/api/auth/session"},
		"dashboard": "/dashboard",
		"resources": resources,
	})
}

// healthPingTimeout bounds the database ping behind /healthz.
const healthPingTimeout = 2 * time.Second

// HealthCheck 探测数据库连接，失败时记录日志并返回 503。
func (a *API) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	started := time.Now()
	err := a.pingDatabase(ctx)
	latency := time.Since(started)
	if err != nil {
		a.log.Error("database ping failed", "error", err, "latency", latency)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up", "latency_ms": latency.Milliseconds()})
}

func (a *API) pingDatabase(ctx context.Context) error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
