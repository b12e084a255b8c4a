package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/blocks"
	"portfolio-backend/internal/cache"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/messages"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/notifications"
	"portfolio-backend/internal/portfolio"
	"portfolio-backend/internal/skills"
	"portfolio-backend/internal/uploads"
	"portfolio-backend/internal/users"
	"portfolio-backend/internal/validation"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Error("mongo connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("mongo connected", slog.String("db", cfg.MongoDB))
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		logger.Error("index creation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tx := db.NewTransactor(client, cfg.MongoTransactions)

	var cacheStore cache.Cache = cache.NewMemory()
	var redisClient *redis.Client
	redisOpts := cache.RedisOptions{URL: cfg.RedisURL, Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	if redisOpts.Enabled() {
		redisClient, err = cache.NewRedisClient(redisOpts)
		if err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		redisCache := cache.NewRedis(redisClient)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("redis connected")
		cacheStore = redisCache
		defer redisClient.Close()
	}

	var contactLimiter middleware.Limiter = middleware.NewRateLimiter(cfg.RateLimitContact, cfg.RateLimitWindow())
	if cfg.RateLimitStore == "redis" {
		if redisClient == nil {
			logger.Error("rate limit store redis requires REDIS_URL or REDIS_ADDR")
			os.Exit(1)
		}
		contactLimiter = middleware.NewRedisRateLimiter(redisClient, cfg.RateLimitContact, cfg.RateLimitWindow())
	}
	logger.Info("contact rate limit", slog.String("store", cfg.RateLimitStore), slog.Int("limit", cfg.RateLimitContact))

	jwtManager := auth.NewManager(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTTLMinutes)*time.Minute,
	)
	if jwtManager == nil {
		logger.Warn("JWT_SECRET missing, admin sessions disabled")
	}

	mailer := notifications.NewMailer(notifications.Settings{
		BrevoAPIKey:      cfg.BrevoAPIKey,
		BrevoSenderEmail: cfg.BrevoSenderEmail,
		BrevoSenderName:  cfg.BrevoSenderName,
		BrevoSandbox:     cfg.BrevoSandbox,
		SMTPHost:         cfg.SMTPHost,
		SMTPPort:         cfg.SMTPPort,
		SMTPUser:         cfg.SMTPUser,
		SMTPPass:         cfg.SMTPPass,
		SenderName:       cfg.BrevoSenderName,
	})
	notifier := notifications.NewContactNotifier(mailer, cfg.ContactEmail)
	if notifier == nil {
		logger.Info("contact notifications disabled")
	}

	val := validation.New()

	portfolioRepo := portfolio.NewRepository(cols.PortfolioItems)
	blocksService := blocks.NewService(blocks.NewRepository(cols.ContentBlocks), portfolioRepo, tx, cfg.Timezone, logger)
	portfolioService := portfolio.NewService(portfolioRepo, portfolio.NewMediaRepository(cols.PortfolioMedia), blocksService, tx, cfg.Timezone).
		WithCache(cacheStore, cfg.CacheTTL()).
		WithLogger(logger)
	blocksService.OnChange(func(ctx context.Context, _ string) {
		portfolioService.Invalidate(ctx)
	})

	skillsService := skills.NewService(skills.NewRepository(cols.Skills), tx, cfg.Timezone).
		WithCache(cacheStore, cfg.CacheTTL()).
		WithLogger(logger)

	messagesService := messages.NewService(messages.NewRepository(cols.ContactMessages), cfg.Timezone).
		WithLogger(logger)
	if notifier != nil {
		messagesService.WithNotifier(notifier)
	}

	uploadStore, err := uploads.NewLocalStore(cfg.UploadDir, cfg.UploadMaxBytes())
	if err != nil {
		logger.Error("upload dir unavailable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	app := &application{
		cfg:     cfg,
		log:     logger,
		tokens:  jwtManager,
		limiter: contactLimiter,
		server: &handlers.Server{
			Users:  users.NewService(users.NewRepository(cols.Users), cfg.Timezone),
			Tokens: jwtManager,
			Stats: handlers.ServiceStats{
				Portfolio: portfolioService,
				Skills:    skillsService,
				Messages:  messagesService,
			},
			Val:          val,
			Log:          logger,
			CookieSecure: cfg.CookieSecure,
		},
		portfolio: portfolio.NewHandler(portfolioService, val, logger),
		blocks:    blocks.NewHandler(blocksService, val, logger),
		skills:    skills.NewHandler(skillsService, val, logger),
		messages:  messages.NewHandler(messagesService, val, logger),
		uploads:   uploads.NewHandler(uploadStore, cfg.UploadMaxBytes(), logger),
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", slog.String("addr", cfg.ServerAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	messagesService.Wait()
	logger.Info("server stopped")
}
