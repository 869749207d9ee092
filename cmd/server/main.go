package main

import (
	stdlog "log"

	"github.com/centaura/cms/internal/config"
	"github.com/centaura/cms/internal/db"
	"github.com/centaura/cms/internal/handler"
	"github.com/centaura/cms/internal/logger"
	"github.com/centaura/cms/internal/router"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		stdlog.Fatalf("failed to initialize logger: %v", err)
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabaseDSN()); err != nil {
		log.Fatal("failed to initialize database", "error", err)
	}

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		created, err := db.EnsureUser(db.DB, cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			log.Fatal("failed to ensure admin user", "error", err)
		}
		if created {
			log.Info("admin user created", "username", cfg.AdminUsername)
		}
	}

	api := handler.NewAPI(db.DB, log, cfg.UploadDir, cfg.UploadURLPath)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg, api, log)
	log.Info("server listening", "addr", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal("failed to run server", "error", err)
	}
}
