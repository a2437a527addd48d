package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/book-expert/events"
	"github.com/book-expert/slide-voice/internal/fileutil"
	"github.com/book-expert/slide-voice/internal/objectstore"
	"github.com/book-expert/slide-voice/internal/worker"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		output  string
		voice   string
		lang    string
		slides  []int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "submit <deck>",
		Short: "Upload a deck and ask the narration service to narrate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if !fileutil.IsPresentation(args[0]) {
				return fmt.Errorf("%s is not a .pptx file", args[0])
			}

			deckData, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read deck: %w", err)
			}

			if voice == "" {
				voice = cfg.TTS.Voice
			}

			if lang == "" {
				lang = cfg.TTS.Language
			}

			natsConnection, err := nats.Connect(cfg.NATS.URL)
			if err != nil {
				return fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
			}
			defer natsConnection.Close()

			js, err := jetstream.New(natsConnection)
			if err != nil {
				return fmt.Errorf("create JetStream context: %w", err)
			}

			store, err := objectstore.New(cmd.Context(), js, cfg.NATS.DeckObjectStoreBucket)
			if err != nil {
				return err
			}

			deckKey := "decks/" + uuid.NewString() + "-" + fileutil.SanitizeFilename(filepath.Base(args[0]))

			err = store.Upload(cmd.Context(), deckKey, deckData)
			if err != nil {
				return err
			}

			job := worker.NarrationJobEvent{
				Header: events.EventHeader{
					Timestamp:  time.Now(),
					WorkflowID: uuid.NewString(),
					EventID:    uuid.NewString(),
				},
				DeckKey:  deckKey,
				Voice:    voice,
				Language: lang,
				Slides:   slides,
			}

			err = job.Validate()
			if err != nil {
				return fmt.Errorf("invalid narration job: %w", err)
			}

			jobData, err := json.Marshal(job)
			if err != nil {
				return fmt.Errorf("marshal narration job: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as %s; waiting for narration\n", args[0], deckKey)

			replyMsg, err := natsConnection.Request(cfg.NATS.NarrationSubject, jobData, timeout)
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					return fmt.Errorf("no reply from the narration service within %s", timeout)
				}

				return fmt.Errorf("request narration: %w", err)
			}

			var reply worker.NarrationCompletedEvent

			err = json.Unmarshal(replyMsg.Data, &reply)
			if err != nil {
				return fmt.Errorf("decode narration reply: %w", err)
			}

			if reply.Error != "" {
				return fmt.Errorf("narration failed: %s", reply.Error)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Narrated slides %v into %s\n", reply.NarratedSlides, reply.OutputKey)

			if output == "" {
				return nil
			}

			narrated, err := store.Download(cmd.Context(), reply.OutputKey)
			if err != nil {
				return err
			}

			err = os.WriteFile(output, narrated, 0o600)
			if err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", output, fileutil.FormatFileSize(int64(len(narrated))))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Download the narrated deck to this path")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice id (default tts.voice)")
	cmd.Flags().StringVar(&lang, "language", "", "BCP 47 language code (default tts.language)")
	cmd.Flags().IntSliceVar(&slides, "slides", nil, "Zero-based slide indices to narrate (default all with notes)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "How long to wait for the narration reply")

	return cmd
}
