package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/internal/bootstrap"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLog := logger.New(cfg.Logging.Level)
	defer appLog.Close()
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("STARTUP", "build app: "+err.Error())
	}
	defer app.Close()

	appLog.Info("STARTUP", "OceanView API ready on "+cfg.HTTP.Address)
	if err := bootstrap.Run(ctx, cfg, app.Router(), appLog); err != nil {
		appLog.Fatal("SERVER", err.Error())
	}
	appLog.LogProcess("SHUTDOWN", "server stopped")
}
