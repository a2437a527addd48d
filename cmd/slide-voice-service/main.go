// main package for the slide-voice narration service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/book-expert/logger"
	"github.com/book-expert/slide-voice/internal/config"
	"github.com/book-expert/slide-voice/internal/core"
	"github.com/book-expert/slide-voice/internal/fileutil"
	"github.com/book-expert/slide-voice/internal/narration"
	"github.com/book-expert/slide-voice/internal/objectstore"
	"github.com/book-expert/slide-voice/internal/tts"
	"github.com/book-expert/slide-voice/internal/tts/ssml"
	"github.com/book-expert/slide-voice/internal/tts/text"
	"github.com/book-expert/slide-voice/internal/worker"
)

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run(ctx context.Context) error {
	// 1. Create a temporary logger for the bootstrap process
	bootstrapLog, err := setupLogger(os.TempDir(), "slide-voice-service-bootstrap.log")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	defer func() { _ = bootstrapLog.Close() }()

	bootstrapLog.Info("Bootstrap logger created.")

	// 2. Load configuration using the central configurator
	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	// 3. Initialize the final logger based on the loaded configuration
	err = fileutil.EnsureDir(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create log directory: %v", err)

		return err
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir, "slide-voice-service.log")
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	// 4. Connect to NATS and bind the deck bucket
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		finalLog.Error("Failed to connect to NATS at %s: %v", cfg.NATS.URL, err)

		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsConnection.Close()

	js, err := jetstream.New(natsConnection)
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := objectstore.New(ctx, js, cfg.NATS.DeckObjectStoreBucket)
	if err != nil {
		finalLog.Error("Failed to bind object store: %v", err)

		return err
	}

	// 5. Wire the narration pipeline
	client := tts.NewHTTPClient(cfg.TTS.ServiceURL, cfg.TTS.APIKey, cfg.TTS.Timeout())

	healthErr := client.HealthCheck(ctx)
	if healthErr != nil {
		finalLog.Warn("Speech service not healthy yet: %v", healthErr)
	}

	narrator := narration.New(client, core.ChainMarkup(text.NewNormalizer(), ssml.New()), finalLog, cfg.TTS.Workers)
	natsWorker := worker.NewNatsWorker(
		natsConnection, cfg.NATS.NarrationSubject, store, narrator, cfg.DeckOptions(), finalLog,
	)

	finalLog.System("slide-voice-service initialized. Listening for jobs on subject: %s", cfg.NATS.NarrationSubject)

	err = natsWorker.Run(ctx)
	if err != nil {
		finalLog.Error("Worker stopped with error: %v", err)

		return err
	}

	finalLog.System("slide-voice-service stopped.")

	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
