package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"oiscanner/internal/config"
	"oiscanner/internal/gfdl"
	"oiscanner/internal/logger"
	"oiscanner/internal/models"
	"oiscanner/internal/scanner"
	"oiscanner/internal/state"
	"oiscanner/internal/storage"
	"oiscanner/internal/telegram"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	registry, err := models.NewRegistry(cfg.Universe.Symbols, cfg.Universe.LotSizes, cfg.Universe.DefaultLotSize)
	if err != nil {
		logger.Fatal("Failed to build instrument registry: %v", err)
	}
	logger.Info("Tracking %d instruments across %d underlyings",
		registry.Size(), len(registry.Underlyings()))

	store := state.New(registry, cfg.Scanner.MomentumWindow)
	sc := scanner.New(registry, store, scanner.Config{
		OIRocThreshold:         cfg.Scanner.OIRocThreshold,
		MomentumWindow:         cfg.Scanner.MomentumWindow,
		MinLotsSizeAlert:       cfg.Scanner.MinLotsSizeAlert,
		MinLotsMomentum:        cfg.Scanner.MinLotsMomentum,
		MomentumOIRocThreshold: cfg.Scanner.MomentumOIRocThreshold,
		ATMBandRatio:           cfg.Scanner.ATMBandRatio,
	})

	var journal *storage.Journal
	if cfg.Journal.Enabled {
		journal, err = storage.New(cfg.Journal.MaxAlerts, cfg.Journal.DBPath)
		if err != nil {
			logger.Fatal("Failed to initialize alert journal: %v", err)
		}
		defer func() {
			if err := journal.Close(); err != nil {
				logger.Error("Failed to close alert journal: %v", err)
			}
		}()
	} else {
		logger.Debug("Alert journal disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var dispatcher *telegram.Dispatcher
	if cfg.Telegram.Enabled {
		client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
			cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		dispatcher = telegram.NewDispatcher(client, cfg.Telegram.QueueSize)
		dispatcher.Start(ctx)
		if err := client.SendStartup(); err != nil {
			logger.Warn("Failed to send startup notification: %v", err)
		}
		defer func() {
			if err := client.SendShutdown(); err != nil {
				logger.Warn("Failed to send shutdown notification: %v", err)
			}
		}()
		logger.Info("Telegram dispatcher started")
	} else {
		logger.Debug("Telegram notifications disabled")
	}

	handleTick := func(symbol string, price, oi *float64) {
		for _, finding := range sc.Ingest(symbol, price, oi) {
			if journal != nil {
				if err := journal.Add(finding); err != nil {
					logger.Warn("Failed to journal %s alert for %s: %v",
						finding.Kind, finding.Symbol, err)
				}
			}
			if dispatcher != nil {
				dispatcher.Enqueue(finding.Message)
			}
		}
	}

	client := gfdl.NewClient(gfdl.Config{
		WSSURL:           cfg.GFDL.WSSURL,
		APIKey:           cfg.GFDL.APIKey,
		Exchange:         cfg.GFDL.Exchange,
		Symbols:          cfg.Universe.Symbols,
		HandshakeTimeout: cfg.GFDL.HandshakeTimeout,
		AuthRetryBackoff: cfg.GFDL.AuthRetryBackoff,
		ReconnectBackoff: cfg.GFDL.ReconnectBackoff,
	}, handleTick)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, stopping scanner")
		cancel()
	}()

	logger.Info("Starting scanner (momentum window: %v, OI RoC threshold: %.1f%%)",
		cfg.Scanner.MomentumWindow, cfg.Scanner.OIRocThreshold)
	client.Run(ctx)

	if dispatcher != nil {
		dispatcher.Wait()
	}
	logger.Info("Scanner stopped")
}
