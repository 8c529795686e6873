package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khanbasharat3a1/motor-monitor/internal/freshness"
	"github.com/khanbasharat3a1/motor-monitor/internal/handlers"
	"github.com/khanbasharat3a1/motor-monitor/internal/logger"
	"github.com/khanbasharat3a1/motor-monitor/internal/oracle"
	"github.com/khanbasharat3a1/motor-monitor/internal/repository"
	"github.com/khanbasharat3a1/motor-monitor/internal/server"
	"github.com/khanbasharat3a1/motor-monitor/internal/service"

	motormonitor "github.com/khanbasharat3a1/motor-monitor"
	"github.com/spf13/viper"
)

const (
	defaultEvaluateTick = 15 * time.Second
	defaultSweepTick    = 10 * time.Second
	defaultOracleWait   = 3 * time.Second
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	tracker := freshness.NewTracker(loadTimeouts())
	hub := handlers.NewHub(log)
	services := service.NewService(repos, tracker, newPredictor(log), hub, log)
	apiHandler := handlers.NewHandler(services, hub, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the evaluation engine and the liveness monitor
	go services.Engine.Run(ctx, tickFromConfig("engine.evaluate_interval", defaultEvaluateTick))
	go services.Monitor.Run(ctx, tickFromConfig("engine.sweep_interval", defaultSweepTick))

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "motor.db")
		dbPath = "motor.db"
	}
	return repository.InitDB(dbPath)
}

// loadTimeouts applies configured per-source freshness windows over the
// hardware defaults.
func loadTimeouts() freshness.Timeouts {
	t := freshness.DefaultTimeouts()
	if d := viper.GetDuration("timeouts.sensor"); d > 0 {
		t.Timeout[motormonitor.SourceSensor] = d
	}
	if d := viper.GetDuration("timeouts.controller"); d > 0 {
		t.Timeout[motormonitor.SourceController] = d
	}
	return t
}

// newPredictor builds the predictive client, or the disabled stand-in when
// no scoring service is configured.
func newPredictor(log *logger.Logger) oracle.Client {
	url := viper.GetString("oracle.url")
	if url == "" {
		log.Infow("oracle.url not set; predictive scoring disabled")
		return oracle.Disabled{}
	}
	timeout := viper.GetDuration("oracle.timeout")
	if timeout <= 0 {
		timeout = defaultOracleWait
	}
	return oracle.NewHTTPClient(url, timeout)
}

func tickFromConfig(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
