package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/config"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/poller"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/repository"
	"github.com/fjod/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type eventPublisher interface {
	service.OrderEventPublisher
	Close() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up MongoDB connection
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()
	if err := repository.CreateIndexes(ctx, mongoDB); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}
	log.Info().Str("database", cfg.MongoDBName).Msg("connected to MongoDB")

	users := repository.NewMongoUserRepository(mongoDB)
	products := repository.NewMongoProductRepository(mongoDB)
	coupons := repository.NewMongoCouponRepository(mongoDB)
	orders := repository.NewMongoOrderRepository(mongoDB)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("redis ping succeeded")

	var events eventPublisher = publisher.NoopPublisher{}
	brokers := cfg.Brokers()
	if len(brokers) > 0 {
		events = publisher.NewOrderPublisher(brokers...)
	} else {
		log.Warn().Msg("KAFKA_BROKERS is empty, order events are disabled")
	}
	defer func() {
		if err := events.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close order publisher")
		}
	}()

	cartService := service.NewCartService(users, products, log)
	productService := service.NewProductService(products, cache.NewRedisCache(redisClient, cfg.FeaturedCacheTTL), log)
	couponService := service.NewCouponService(coupons, log)
	checkoutService := service.NewCheckoutService(
		coupons, orders, couponService,
		payment.NewStripeProcessor(cfg.StripeSecretKey),
		events, cfg.ClientURL, log,
	)
	analyticsService := service.NewAnalyticsService(users, products, orders)

	if len(brokers) > 0 {
		cartCleaner := poller.NewPoller(cartService, log, brokers...)
		defer cartCleaner.Close()
		go cartCleaner.Run(ctx)
	}

	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(cartService, cfg.RequestTimeout, log),
		Coupons:        h.NewCouponHandler(couponService, cfg.RequestTimeout, log),
		Checkout:       h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout, log),
		Analytics:      h.NewAnalyticsHandler(analyticsService, cfg.RequestTimeout, log),
		Products:       h.NewProductHandler(productService, cfg.RequestTimeout, log),
		Users:          users,
		TokenSecret:    cfg.AccessTokenSecret,
		RequestTimeout: cfg.RequestTimeout,
		Log:            log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
