package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/jobs"
	"github.com/junaidrashid-git/storefront-api/logger"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/notification"
	"github.com/junaidrashid-git/storefront-api/observability"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/realtime"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("❌ Failed to init logger: %v", err)
	}
	defer logg.Sync()
	logg.Info("✅ Starting application...", "port", cfg.Port, "storage", cfg.StorageDriver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, logg, cfg)
	if err != nil {
		logg.Fatal("❌ Failed to init tracing", "error", err)
	}

	db := initDatabase(cfg, logg)
	if err := models.AutoMigrate(db); err != nil {
		logg.Fatal("❌ AutoMigrate failed", "error", err)
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logg.Fatal("❌ Failed to init storage", "driver", cfg.StorageDriver, "error", err)
	}

	var mail mailer.Mailer = mailer.NewLogMailer(logg)
	if cfg.SendGridAPIKey != "" {
		sg, err := mailer.NewSendGrid(logg, mailer.SendGridConfig{
			APIKey: cfg.SendGridAPIKey,
			From:   mailer.Address{Email: cfg.MailFrom, Name: cfg.MailFromName},
		})
		if err != nil {
			logg.Fatal("❌ Failed to init SendGrid", "error", err)
		}
		mail = sg
	}

	hub := realtime.NewHub(logg, cfg.CORSOrigins)
	publishers := events.Multi{hub}
	if cfg.AMQPURL != "" {
		rabbit, err := events.NewRabbitPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logg.Fatal("❌ Failed to connect to RabbitMQ", "error", err)
		}
		defer rabbit.Close()
		publishers = append(publishers, rabbit)
		logg.Info("order events published to RabbitMQ", "exchange", cfg.AMQPExchange)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		limiter = ratelimit.NewRedis(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst)
	} else {
		mem := ratelimit.NewMemory(cfg.RateLimitRPS, cfg.RateLimitBurst)
		go mem.Run(ctx, 5*time.Minute)
		limiter = mem
	}

	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseCredentials, cfg.FirebaseProjectID)
	if err != nil {
		logg.Fatal("❌ Failed to init Firebase", "error", err)
	}

	formatter, err := notification.NewFormatter("")
	if err != nil {
		logg.Fatal("❌ Failed to parse notification template", "error", err)
	}

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.MaxMultipartMemory = 32 << 20
	r.Use(
		middleware.Recovery(logg),
		middleware.RequestID(),
		otelgin.Middleware(cfg.ServiceName),
		middleware.RequestLogger(logg),
		middleware.ErrorHandler(logg),
	)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// Serve uploaded images
	if local, ok := store.(*storage.LocalStore); ok {
		r.Static("/uploads", local.Dir())
		if cfg.BackupDir != "" {
			// 2 AM daily
			go local.Backup(ctx, logg, cfg.BackupDir, cfg.BackupRetention, 2, 0)
		}
	}

	routes.SetupRoutes(r, routes.Deps{
		DB:        db,
		Config:    cfg,
		Log:       logg,
		Mailer:    mail,
		Store:     store,
		Events:    publishers,
		Hub:       hub,
		Verifier:  verifier,
		Tokens:    auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL, cfg.GuestTokenTTL),
		Limiter:   limiter,
		Formatter: formatter,
	})

	janitor := &jobs.Janitor{DB: db, Log: logg, Interval: time.Hour}
	go janitor.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logg.Info("🚀 Server running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("❌ Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("server shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logg.Error("tracing shutdown failed", "error", err)
	}
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// initDatabase opens postgres with gorm errors translated into sentinel errors.
func initDatabase(cfg config.Config, logg *logger.Logger) *gorm.DB {
	level := gormLogger.Warn
	if cfg.LogMode != "prod" && cfg.LogMode != "production" {
		level = gormLogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	})
	if err != nil {
		logg.Fatal("❌ DB connection failed", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logg.Fatal("❌ DB handle unavailable", "error", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db
}
