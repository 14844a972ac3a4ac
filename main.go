package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creme-store/cache"
	"creme-store/cart"
	"creme-store/config"
	"creme-store/consumers"
	"creme-store/controllers"
	"creme-store/database"
	"creme-store/flows"
	"creme-store/mailer"
	"creme-store/pricing"
	"creme-store/rabbitmq"
	"creme-store/repository"
	"creme-store/routes"
	"creme-store/services"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not loaded: %v", err)
	}

	cfg := config.LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer store.Close(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis initialization failed: %v", err)
	}

	var publisher services.EventPublisher
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Printf("Warning: RabbitMQ unavailable, order events are disabled: %v", err)
	} else {
		defer rmq.Close()
		if err := rmq.SetupQueues(); err != nil {
			log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
		}
		publisher = rmq
	}

	var model flows.Model
	if cfg.GeminiAPIKey != "" {
		gemini, err := flows.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Gemini initialization failed: %v", err)
		}
		defer gemini.Close()
		model = gemini
	} else {
		log.Printf("Warning: GEMINI_API_KEY not set, AI flows are disabled")
	}
	runner := flows.NewRunner(model)

	mail, err := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	if err != nil {
		log.Fatalf("Mailer initialization failed: %v", err)
	}

	policy := pricing.ShippingPolicy{Fee: cfg.ShippingFee, FreeShippingThreshold: cfg.FreeShippingThreshold}
	carts := cart.NewRedisStore(redisClient, cfg.CartTTL)
	orders := services.NewOrderService(store, store, policy, publisher)

	h := &controllers.Controller{
		Orders:   orders,
		Checkout: services.NewCheckoutService(carts, orders),
		Catalog:  services.NewCatalogService(store, cache.NewRedisCache(redisClient)),
		Carts:    carts,
		Flows:    runner,
		Mailer:   mail,
	}

	if rmq != nil {
		consumer := consumers.NewOrderConsumer(store, store, runner, mail)
		if err := consumer.Start(rmq.Channel, cfg); err != nil {
			log.Fatalf("Failed to start order consumer: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           routes.SetupRouter(h, cfg.JWTSecret, cfg.AllowedOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Creme store starting on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "mysql":
		db, err := database.OpenMySQL(cfg.MySQLDSN())
		if err != nil {
			return nil, err
		}
		if err := database.MigrateMySQL(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return repository.NewMySQLStore(db), nil
	case "mongo":
		db, err := database.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		store := repository.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q (want mysql or mongo)", cfg.StoreDriver)
	}
}
