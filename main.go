package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"

	"volGuardBot/config"
	"volGuardBot/internal/adapters/binanceclient"
	"volGuardBot/internal/adapters/logger"
	"volGuardBot/internal/adapters/paperbroker"
	"volGuardBot/internal/adapters/sqlite"
	"volGuardBot/internal/adapters/statestore"
	"volGuardBot/internal/app"
	"volGuardBot/internal/monitoring"
	"volGuardBot/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	var appLogger ports.Logger
	if cfg.LogFormat == "json" {
		appLogger = logger.NewZerologLogger(os.Stderr, cfg.LogLevel)
	} else {
		appLogger = logger.NewStdLogger(cfg.LogLevel)
	}
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String(), "format": cfg.LogFormat})

	// 3. Initialize Audit Store (Database Adapter)
	audit, err := sqlite.NewAuditStore(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize audit store")
		log.Fatalf("FATAL: Failed to initialize audit store: %v", err)
	}
	defer func() {
		if err := audit.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing audit store")
		}
	}()

	// 4. Initialize State Store
	states, err := statestore.NewFileStore(cfg.StateDir, appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize state store")
		log.Fatalf("FATAL: Failed to initialize state store: %v", err)
	}

	// 5. Initialize Exchange Client (Binance Adapter)
	exchange, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	appLogger.Info(context.Background(), "Binance client initialized", map[string]interface{}{"testnet": cfg.IsTestnet})

	// 6. Initialize Order Recorder
	// Order submission belongs to an external service; the paper broker
	// records intended orders so the engine is runnable on its own.
	broker, err := paperbroker.New(appLogger)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize paper broker")
		log.Fatalf("FATAL: Failed to initialize paper broker: %v", err)
	}

	// 7. Optional metrics endpoint
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", monitoring.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				appLogger.Error(context.Background(), err, "Metrics endpoint stopped")
			}
		}()
		appLogger.Info(context.Background(), "Metrics endpoint started", map[string]interface{}{"addr": cfg.MetricsAddr})
	}

	// 8. Initialize Application Service
	service, err := app.NewRiskService(cfg, appLogger, exchange, exchange, broker, audit, states)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize risk service")
		log.Fatalf("FATAL: Failed to initialize risk service: %v", err)
	}
	appLogger.Info(context.Background(), "Risk service initialized")

	// 9. Start the Service
	if err := service.Start(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Risk service exited with error")
		log.Fatalf("FATAL: Risk service exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
