package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/marketplace-api/internal/config"
	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/router"
	"github.com/iliyamo/marketplace-api/internal/service"
	"github.com/iliyamo/marketplace-api/internal/storage"
)

func setupLogger(cfg config.Config) *logrus.Logger {
	log := logrus.StandardLogger()
	if cfg.Env == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}
	return log
}

func main() {
	cfg := config.Load() // Load environment config
	log := setupLogger(cfg)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database unavailable")
	}
	defer db.Close()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(startCtx, db); err != nil {
		log.WithError(err).Fatal("migrate failed")
	}
	if cfg.SeedOnStart {
		if _, err := database.Seed(startCtx, db, cfg.BcryptCost); err != nil {
			log.WithError(err).Fatal("seed failed")
		}
	}

	// Optional infrastructure: each piece degrades to a no-op when absent.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()

	var images handler.ImageStore
	if sc := config.LoadStorageConfig(); sc.Enabled {
		store, err := storage.NewMinIOStore(startCtx, sc)
		if err != nil {
			log.WithError(err).Warn("image storage unavailable; uploads disabled")
		} else {
			images = store
		}
	}
	cancelStart()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events handler.EventPublisher
	if bc := config.LoadBrokerConfig(); bc.Enabled {
		events = service.NewPublisher(bc.URL)
		if bc.StartConsumer {
			consumer := queue.NewConsumer(bc.URL, bc.LogDir)
			go func() {
				if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					log.WithError(err).Error("event consumer stopped")
				}
			}()
		}
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(middleware.RequestLogger(log))

	users := repository.NewUserRepo(db)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e,
		handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)),
		cfg.JWTSecret, middleware.NewTokenBucket(rateCfg, rdb), cfg.DiagnosticsEnabled)
	router.RegisterCatalogue(e,
		handler.NewProductHandler(repository.NewProductRepo(db), images, rdb, cacheCfg.Prefix),
		cfg.JWTSecret, middleware.NewRedisCache(cacheCfg, rdb))
	router.RegisterShopping(e,
		handler.NewCartHandler(repository.NewCartRepo(db)),
		handler.NewOrderHandler(repository.NewOrderRepo(db), events),
		handler.NewPaymentHandler(repository.NewPaymentRepo(db), events))
	router.RegisterFeedback(e,
		handler.NewFeedbackHandler(repository.NewFeedbackRepo(db)),
		handler.NewDashboardHandler(repository.NewDashboardRepo(db)))
	router.RegisterAdmin(e, handler.NewAdminHandler(users), cfg.JWTSecret, cfg.DiagnosticsEnabled)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		log.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-runCtx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	if err := handler.WaitEvents(shutdownCtx); err != nil {
		log.WithError(err).Warn("pending events not published before shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("server stopped")
}
