package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-delivery/internal/config"
	"food-delivery/internal/database"
	"food-delivery/internal/database/gormstore"
	"food-delivery/internal/logger"
	"food-delivery/internal/messaging"
	"food-delivery/internal/models"
	"food-delivery/internal/report"
	"food-delivery/internal/services/notification"
	"food-delivery/internal/services/order"
)

// backend is a store the process can migrate and close
type backend interface {
	order.Store
	Migrate(ctx context.Context) error
	Close() error
}

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (order-service, migrate, report, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port, overrides http.port")
		migrate    = flag.Bool("migrate", false, "Apply migrations before serving (order-service mode)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count (notification-subscriber mode)")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		if err := cfg.OverrideHTTPPort(*port); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid --port: %v\n", err)
			os.Exit(1)
		}
	}

	// stdout belongs to the table in report mode
	logOut := os.Stdout
	if *mode == "report" {
		logOut = os.Stderr
	}
	log := logger.NewWithWriter(logOut, *mode, logger.ParseLevel(cfg.Log.Level))
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":      *mode,
		"db_driver": cfg.Database.Driver,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch *mode {
	case "order-service":
		err = runOrderService(ctx, cfg, log, *migrate)
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	case "report":
		err = runReport(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// openBackend connects to the configured database driver
func openBackend(cfg *config.Config, log *logger.Logger) (backend, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		store, err := gormstore.Open(cfg, log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		db, err := database.New(cfg, log)
		if err != nil {
			return nil, err
		}
		return database.NewStore(db), nil
	}
}

func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger, migrate bool) error {
	requestID := logger.GenerateRequestID()

	priceMode, err := models.ParseLinePriceMode(cfg.Orders.LinePriceMode)
	if err != nil {
		return err
	}

	store, err := openBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var publisher order.EventPublisher = messaging.NopPublisher{}
	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, map[string]interface{}{
			"exchange": cfg.RabbitMQ.Exchange,
		})
		events := messaging.NewPublisher(conn, log)
		defer events.Close()
		publisher = events
	}

	service := order.NewService(store, publisher, log, priceMode)
	handler := order.NewHandler(service, log, order.HandlerOptions{
		CORS:         cfg.HTTP.CORS,
		QueryTimeout: cfg.Database.QueryTimeout,
		LogBodies:    cfg.Log.LogBodies,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Order Service started on port %d", cfg.HTTP.Port), requestID, map[string]interface{}{
			"port":            cfg.HTTP.Port,
			"line_price_mode": priceMode,
			"events_enabled":  cfg.RabbitMQ.Enabled,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case err := <-serverErr:
		return fmt.Errorf("http server failed: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	return store.Migrate(ctx)
}

func runReport(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, err := openBackend(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.Database.QueryTimeout)
	defer cancel()

	orders, err := store.ListOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}
	return report.RenderOrders(os.Stdout, orders)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.OrderNotificationsQueue, "notification-subscriber", prefetch)
	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}
