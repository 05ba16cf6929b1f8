package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/juniormojica/estuarriendo-sub000/internal/cache"
	"github.com/juniormojica/estuarriendo-sub000/internal/handler"
	"github.com/juniormojica/estuarriendo-sub000/internal/middleware"
	"github.com/juniormojica/estuarriendo-sub000/internal/model"
	"github.com/juniormojica/estuarriendo-sub000/internal/notify"
	"github.com/juniormojica/estuarriendo-sub000/internal/repository"
	"github.com/juniormojica/estuarriendo-sub000/internal/service"
	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
	"github.com/juniormojica/estuarriendo-sub000/pkg/database"
	"github.com/juniormojica/estuarriendo-sub000/pkg/jwtutil"
	"github.com/juniormojica/estuarriendo-sub000/pkg/logger"
	"github.com/juniormojica/estuarriendo-sub000/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.Load("property-service")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Configuration loaded", conf.LogConfig()...)

	prometheus.InitMetrics(conf)

	db, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(db, model.All()...); err != nil {
		log.Fatal("Failed to migrate database models", zap.Error(err))
	}

	// A nil *cache.Client must not end up inside the interfaces below
	var (
		viewCache service.ViewCache
		pinger    handler.Pinger
	)
	if redisClient := cache.NewClient(&conf.Cache); redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx); err != nil {
			log.Warn("Redis not reachable, container views will be read from the database", zap.Error(err))
		}
		cancel()
		viewCache = redisClient
		pinger = redisClient
		defer redisClient.Close()
	}

	store := repository.NewStore(db)
	composer := service.NewComposer(store)
	hierarchy := service.NewHierarchy(store, composer, conf.Listing.ContainerDeletePolicy, viewCache)
	lifecycle := service.NewLifecycle(store, viewCache)
	h := handler.New(hierarchy, composer, lifecycle, notify.New(&conf.Notifier))

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(middleware.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.Health(db, pinger))
	h.Register(e, middleware.JWTAuthMiddleware(jwt))

	log.Info("Starting property-service on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
