// Package worker provides a NATS worker that narrates decks on request.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/logger"
	"github.com/book-expert/slide-voice/internal/core"
	"github.com/book-expert/slide-voice/internal/narration"
	"github.com/book-expert/slide-voice/internal/pptx"
)

const (
	handleMessageTimeout = 10 * time.Minute
	outputKeySuffix      = ".pptx"
)

// Narrator narrates an open deck.
type Narrator interface {
	NarrateDeck(ctx context.Context, deck narration.Deck, opts narration.Options) ([]narration.SlideResult, error)
}

// NatsWorker listens for narration jobs on a NATS subject and processes them.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	store          core.ObjectStore
	narrator       Narrator
	deckOptions    pptx.Options
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker. deckOptions controls
// where decks are unpacked and how narration clips are placed.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	store core.ObjectStore,
	narrator Narrator,
	deckOptions pptx.Options,
	log *logger.Logger,
) *NatsWorker {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		store:          store,
		narrator:       narrator,
		deckOptions:    deckOptions,
		log:            log,
	}
}

// Run subscribes to the job subject and blocks until ctx is cancelled.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	w.log.Info("Listening for narration jobs on %s", w.subject)

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate event: %v", err)

		return
	}

	reply := &NarrationCompletedEvent{Header: event.Header, DeckKey: event.DeckKey}

	outputKey, narrated, err := w.processNarrationJob(ctx, event)
	if err != nil {
		w.log.Error("Failed to process narration job for workflow %s: %v", event.Header.WorkflowID, err)

		reply.Error = err.Error()
	} else {
		w.log.Info("Narrated %d slides of %s into %s", len(narrated), event.DeckKey, outputKey)

		reply.OutputKey = outputKey
		reply.NarratedSlides = narrated
	}

	err = publishReplyEvent(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish reply event for workflow %s: %v", event.Header.WorkflowID, err)
	}
}

// processNarrationJob downloads the deck, narrates it in a scratch workspace
// and uploads the result under a new key.
func (w *NatsWorker) processNarrationJob(ctx context.Context, event *NarrationJobEvent) (string, []int, error) {
	deckData, err := w.store.Download(ctx, event.DeckKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to download deck for key '%s': %w", event.DeckKey, err)
	}

	jobDir, err := os.MkdirTemp(w.deckOptions.ScratchDir, "narration-job-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create job directory: %w", err)
	}

	defer func() {
		removeErr := os.RemoveAll(jobDir)
		if removeErr != nil {
			w.log.Warn("Failed to remove job directory %s: %v", jobDir, removeErr)
		}
	}()

	inputPath := filepath.Join(jobDir, "input.pptx")

	err = os.WriteFile(inputPath, deckData, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("failed to write deck to %s: %w", inputPath, err)
	}

	outputData, narrated, err := w.narrateFile(ctx, inputPath, jobDir, event)
	if err != nil {
		return "", nil, err
	}

	outputKey := uuid.NewString() + outputKeySuffix

	err = w.store.Upload(ctx, outputKey, outputData)
	if err != nil {
		return "", nil, fmt.Errorf("failed to upload narrated deck for key '%s': %w", outputKey, err)
	}

	return outputKey, narrated, nil
}

func (w *NatsWorker) narrateFile(
	ctx context.Context,
	inputPath, jobDir string,
	event *NarrationJobEvent,
) ([]byte, []int, error) {
	deckOptions := w.deckOptions
	deckOptions.ScratchDir = jobDir

	file, err := pptx.Open(inputPath, deckOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open deck '%s': %w", event.DeckKey, err)
	}

	defer func() {
		closeErr := file.Close()
		if closeErr != nil {
			w.log.Warn("Failed to close deck workspace: %v", closeErr)
		}
	}()

	results, err := w.narrator.NarrateDeck(ctx, file, narration.Options{
		Voice:    event.Voice,
		Language: event.Language,
		Slides:   event.Slides,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to narrate deck '%s': %w", event.DeckKey, err)
	}

	outputPath := filepath.Join(jobDir, "output.pptx")

	err = file.Export(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to export narrated deck: %w", err)
	}

	outputData, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read narrated deck: %w", err)
	}

	narrated := make([]int, 0, len(results))
	for _, result := range results {
		narrated = append(narrated, result.Index)
	}

	return outputData, narrated, nil
}

// publishReplyEvent marshals and responds with the completion event.
func publishReplyEvent(msg *nats.Msg, replyEvent *NarrationCompletedEvent) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func parseAndValidateEvent(msg *nats.Msg) (*NarrationJobEvent, error) {
	var event NarrationJobEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	err = event.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid narration job: %w", err)
	}

	return &event, nil
}
