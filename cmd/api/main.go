package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	staticdir "vendor-onboarding-service/internal/adapter/directory"
	httpadp "vendor-onboarding-service/internal/adapter/http"
	"vendor-onboarding-service/internal/adapter/middleware"
	"vendor-onboarding-service/internal/adapter/repository/mysql"
	"vendor-onboarding-service/internal/config"
	directoryDomain "vendor-onboarding-service/internal/domain/directory"
	"vendor-onboarding-service/internal/domain/vendor"
	"vendor-onboarding-service/internal/infrastructure/cache"
	"vendor-onboarding-service/internal/infrastructure/db"
	"vendor-onboarding-service/internal/infrastructure/logger"
	"vendor-onboarding-service/internal/usecase/onboarding"
	"vendor-onboarding-service/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gdb, err := db.OpenGorm(cfg.MySQLDSN())
	if err != nil {
		zlog.Fatal("open mysql", zap.Error(err))
	}
	if err := gdb.AutoMigrate(&vendor.VendorOnboardingRecord{}, &mysql.ApproverChainEntry{}); err != nil {
		zlog.Fatal("migrate", zap.Error(err))
	}

	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		zlog.Fatal("open redis", zap.Error(err))
	}

	store := mysql.NewVendorRepository(gdb)
	var dir directoryDomain.Directory = mysql.NewDirectoryRepository(gdb)
	if len(cfg.ApproverChains) > 0 {
		dir = staticdir.NewStaticDirectory(cfg.ApproverChains)
		zlog.Info("using static approver directory", zap.Int("units", len(cfg.ApproverChains)))
	}

	uc := onboarding.NewUsecase(store, dir, workflow.NewEngine(), zlog)
	health := httpadp.NewHandler()
	vendors := httpadp.NewVendorHandler(uc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())

	e.GET("/health", health.Health)
	e.GET("/vendors", vendors.ListVendors)
	e.GET("/vendors/:email", vendors.GetVendor)

	idem := middleware.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second, zlog)
	e.POST("/vendors", vendors.SubmitVendor, idem)
	e.POST("/vendors/:email/approve", vendors.ApproveVendor, idem)
	e.POST("/vendors/:email/decline", vendors.DeclineVendor, idem)
	e.POST("/vendors/:email/resubmit", vendors.ResubmitVendor, idem)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.AppPort
		zlog.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
}
