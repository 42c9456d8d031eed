// authcore - authentication and authorisation service
//
// authcore stores user accounts, checks credentials, issues signed access
// and refresh tokens and enforces role-based access policies over its HTTP
// API. Every login, refresh and registration is written to the audit trail
// and optionally fanned out to MQTT and InfluxDB.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-logic-authcore/migrations"

	"github.com/nerrad567/gray-logic-authcore/internal/api"
	"github.com/nerrad567/gray-logic-authcore/internal/audit"
	"github.com/nerrad567/gray-logic-authcore/internal/auth"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-authcore/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-authcore/internal/password"
	"github.com/nerrad567/gray-logic-authcore/internal/user"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, serves until ctx is cancelled, then tears
// everything down in reverse order. Separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting authcore",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Database
	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	checks := map[string]api.HealthChecker{"database": db}

	// Audit sinks. The SQLite trail is always on; MQTT and InfluxDB are optional.
	events := audit.NewSQLiteRepository(db.DB)
	sinks := []audit.Sink{events}

	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		sinks = append(sinks, audit.NewMQTTSink(mqttClient, byte(cfg.MQTT.QoS))) //nolint:gosec // G115: qos validated 0-2
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		sinks = append(sinks, audit.NewMetricsSink(influxClient))
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	recorder := audit.NewRecorder(log.Logger, sinks...)

	// Accounts
	hasher, err := password.NewHasher(password.Config{
		Algorithm:     cfg.Security.Password.Algorithm,
		BcryptCost:    cfg.Security.Password.BcryptCost,
		MaxConcurrent: cfg.Security.Password.MaxConcurrent,
	})
	if err != nil {
		return fmt.Errorf("creating password hasher: %w", err)
	}

	users := user.NewService(user.NewSQLiteRepository(db.DB), hasher)

	if cfg.Bootstrap.Enabled {
		if _, seedErr := user.SeedAdmin(ctx, users, user.SeedConfig{
			Username: cfg.Bootstrap.AdminUsername,
			Name:     cfg.Bootstrap.AdminName,
			Password: cfg.Bootstrap.AdminPassword,
		}, log.Logger); seedErr != nil {
			return fmt.Errorf("seeding admin account: %w", seedErr)
		}
	}

	// Tokens and credentials
	issuer, err := auth.NewTokenIssuer(auth.IssuerConfig{
		SigningKey: []byte(cfg.Security.JWT.SigningKey),
		Algorithm:  cfg.Security.JWT.Algorithm,
		AccessTTL:  cfg.AccessTokenTTL(),
		RefreshTTL: cfg.RefreshTokenTTL(),
	})
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	validator, err := auth.NewCredentialValidator(ctx, users, hasher)
	if err != nil {
		return fmt.Errorf("creating credential validator: %w", err)
	}

	authSvc := auth.NewService(validator, issuer, users,
		auth.WithRecorder(recorder),
		auth.WithLogger(log.Logger),
	)

	// HTTP API
	apiServer, err := api.New(api.Deps{
		Config:  cfg.API,
		Logger:  log,
		Auth:    authSvc,
		Users:   users,
		Audit:   events,
		Version: version,
		Checks:  checks,
		Stats:   db,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := apiServer.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "address", apiServer.Addr())

	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// API server, InfluxDB, MQTT, database.
	return nil
}

// getConfigPath returns the configuration file path.
// Uses AUTHCORE_CONFIG if set, otherwise the default.
func getConfigPath() string {
	if path := os.Getenv("AUTHCORE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck returns the first failing dependency.
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	for name, c := range checks {
		if err := c.HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
