package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/hunter4ass/OWLD/internal/catalog"
	"github.com/hunter4ass/OWLD/internal/config"
	"github.com/hunter4ass/OWLD/internal/identity"
	"github.com/hunter4ass/OWLD/internal/progression"
	"github.com/hunter4ass/OWLD/internal/repository"
	"github.com/hunter4ass/OWLD/internal/service"
	httptransport "github.com/hunter4ass/OWLD/internal/transport/http"
	"github.com/hunter4ass/OWLD/internal/transport/http/handler"
	kafkatransport "github.com/hunter4ass/OWLD/internal/transport/kafka"
	"github.com/hunter4ass/OWLD/pkg/db"
	"github.com/hunter4ass/OWLD/pkg/kafka"
	"github.com/hunter4ass/OWLD/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger, err := config.NewLogger(config.LoggerConfig{
		Level: utils.ParseWithFallback("LOG_LEVEL", "info"),
		Env:   cfg.Env,
	})
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tp, err := utils.InitTracer(ctx, "delivery-service")
	if err != nil {
		log.Fatalf("Failed to init trace: %v", err)
	}

	pool, err := db.NewPostgresDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Error connecting to postgres: %v", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing redis client: %v\n", err)
		}
	}()

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("Error creating kafka producer: %v", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Printf("Error closing kafka producer: %v\n", err)
		}
	}()

	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	cartRepo := repository.NewCartRepository(redisClient, logger)

	catalogService := catalog.NewCachedService(
		catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger),
		redisClient,
	)
	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.Timeout, logger)

	engine := progression.NewEngine(logger, progression.Delays{
		Pending:    cfg.Progression.Pending,
		Preparing:  cfg.Progression.Preparing,
		Collecting: cfg.Progression.Collecting,
		Delivering: cfg.Progression.Delivering,
	})

	authService := service.NewAuthService(userRepo, identityClient, logger)
	cartService := service.NewCartService(cartRepo, catalogService, logger)
	orderService := service.NewOrderService(orderRepo, cartRepo, catalogService, engine, producer, cfg.Kafka.OrderEvents, logger)

	// orders interrupted by the previous shutdown pick up where they left off
	if err := orderService.ResumeProgressions(ctx); err != nil {
		log.Fatalf("Error resuming order progressions: %v", err)
	}

	notifier := kafkatransport.NewNotifier(logger)
	go notifier.Start(ctx, cfg.Kafka.Brokers, cfg.Kafka.OrderEvents)

	app := fiber.New()

	app.Use(otelfiber.Middleware())

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.Limiter.Max,
		Expiration: cfg.Limiter.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Try again later.",
			})
		},
	}))

	handlers := &httptransport.Handlers{
		Auth:    handler.NewAuthHandler(authService, orderService, logger),
		Product: handler.NewProductHandler(catalogService, logger),
		Cart:    handler.NewCartHandler(cartService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}

	httptransport.RegisterRoutes(app, handlers)

	go func() {
		log.Println("HTTP Service listening on: " + cfg.HTTP.Port)
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatalf("Error listening on HTTP port %v: %v\n", cfg.HTTP.Port, err)
		}
	}()

	logger.Info("Delivery service started!")

	<-ctx.Done()

	log.Println("Shutting down gracefully...")
	shutdownContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownContext); err != nil {
		log.Printf("Error shutting down HTTP app: %v\n", err)
	} else {
		log.Println("HTTP App stopped gracefully")
	}

	orderService.Shutdown()

	if err := tp.Shutdown(shutdownContext); err != nil {
		log.Printf("Error shutting down telemetry: %v\n", err)
	} else {
		log.Println("Telemetry stopped correctly")
	}
}
