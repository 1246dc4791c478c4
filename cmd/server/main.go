package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"

	"smart-waste-service/internal/adapters/events"
	"smart-waste-service/internal/adapters/mqtt"
	"smart-waste-service/internal/adapters/repositories"
	"smart-waste-service/internal/api"
	"smart-waste-service/internal/config"
	"smart-waste-service/internal/domain"
	"smart-waste-service/internal/ports"
	"smart-waste-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (SQLite, MQTT, Redis) behind ports and starts
// the broker listener, the schedulers, and the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := repositories.InitSchema(db); err != nil {
		log.Fatal(err)
	}
	if seedPath := config.Get("CONTAINERS_SEED_PATH", ""); seedPath != "" {
		if err := repositories.SeedContainersFromJSON(db, seedPath); err != nil {
			log.Fatal(err)
		}
	}

	publisher, closePublisher, err := newPublisher(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closePublisher()

	telemetryStore := repositories.NewSqlTelemetryStore(db)
	containerRepo := repositories.NewSqlContainerRepository(db)
	alertRepo := repositories.NewSqlAlertRepository(db)
	routeRepo := repositories.NewSqlRouteRepository(db)

	defaultLoc := domain.Coordinate{Lat: cfg.DepotLat, Lon: cfg.DepotLon}
	if cfg.DefaultLat != nil && cfg.DefaultLon != nil {
		defaultLoc = domain.Coordinate{Lat: *cfg.DefaultLat, Lon: *cfg.DefaultLon}
	}

	ingest := &services.Ingest{
		Store:  telemetryStore,
		Events: publisher,
		Calibration: domain.Calibration{
			EmptyCm: cfg.FillEmptyCm,
			FullCm:  cfg.FillFullCm,
		},
		Thresholds: domain.Thresholds{
			FullPct:        cfg.AlertFullPct,
			LowBatteryPct:  cfg.AlertLowBatteryPct,
			WeakSignalRSSI: cfg.AlertWeakSignalRSSI,
		},
		DefaultLocation: defaultLoc,
		SensorTypes:     config.DefaultSensorTypes(),
	}

	optimizer := &services.RouteOptimizer{
		Containers:     containerRepo,
		Routes:         routeRepo,
		SpeedKmh:       cfg.TruckSpeedKmh,
		PerStopMinutes: cfg.PerStopMinutes,
		RecencyWindow:  time.Duration(cfg.RecencyWindowHours) * time.Hour,
	}
	lifecycle := &services.RouteLifecycle{Routes: routeRepo}
	sweep := &services.OfflineSweep{
		Containers: containerRepo,
		Alerts:     alertRepo,
		Events:     publisher,
		Window:     time.Duration(cfg.OfflineWindowMinutes) * time.Minute,
	}

	ingestor := mqtt.NewIngestor(mqtt.Options{
		BrokerURL: cfg.MQTTBrokerURL,
		ClientID:  cfg.MQTTClientID,
		Username:  cfg.MQTTUsername,
		Password:  cfg.MQTTPassword,
		TopicRoot: cfg.MQTTTopicRoot,
		Backoff:   time.Duration(cfg.MQTTReconnectSeconds) * time.Second,
	}, ingest, publisher)

	go ingestor.Run(ctx)

	scheduler := newScheduler(ctx, cfg, sweep, optimizer)
	scheduler.Start()
	defer scheduler.Stop()

	router := api.NewRouter(api.Deps{
		Containers:           containerRepo,
		Routes:               routeRepo,
		Alerts:               alertRepo,
		Optimizer:            optimizer,
		Lifecycle:            lifecycle,
		DefaultFillThreshold: cfg.RouteFillThreshold,
		DefaultDepot:         domain.Coordinate{Lat: cfg.DepotLat, Lon: cfg.DepotLon},
		RecencyWindow:        time.Duration(cfg.RecencyWindowHours) * time.Hour,
		IngestStats:          ingestor.Stats,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return db, nil
}

// newPublisher picks the event sink: redis when configured, process log
// otherwise.
func newPublisher(ctx context.Context, cfg *config.Config) (ports.EventPublisher, func(), error) {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, events go to the log")
		return events.NewLogPublisher(), func() {}, nil
	}

	pub, err := events.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Publishing events to redis addr=%s", cfg.RedisAddr)
	return pub, func() { _ = pub.Close() }, nil
}

// newScheduler registers the periodic jobs: the offline sweep always, the
// automatic optimization pass only when a cron expression is configured.
func newScheduler(ctx context.Context, cfg *config.Config, sweep *services.OfflineSweep, optimizer *services.RouteOptimizer) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc(cfg.OfflineSweepCron, func() {
		raised, err := sweep.Run(ctx)
		if err != nil {
			log.Printf("offline sweep failed: %v", err)
			return
		}
		if raised > 0 {
			log.Printf("offline sweep raised %d alerts", raised)
		}
	}); err != nil {
		log.Fatalf("invalid OFFLINE_SWEEP_CRON %q: %v", cfg.OfflineSweepCron, err)
	}

	if cfg.AutoOptimizeCron != "" {
		depot := domain.Coordinate{Lat: cfg.DepotLat, Lon: cfg.DepotLon}
		if _, err := c.AddFunc(cfg.AutoOptimizeCron, func() {
			res, err := optimizer.Optimize(ctx, services.OptimizeRequest{
				FillThreshold: cfg.RouteFillThreshold,
				Depot:         depot,
			})
			if err != nil {
				log.Printf("auto optimize failed: %v", err)
				return
			}
			log.Printf("auto optimize: %s", res.Message)
		}); err != nil {
			log.Fatalf("invalid AUTO_OPTIMIZE_CRON %q: %v", cfg.AutoOptimizeCron, err)
		}
	}

	return c
}
