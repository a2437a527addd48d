package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/book-expert/slide-voice/internal/core"
	"github.com/book-expert/slide-voice/internal/fileutil"
	"github.com/book-expert/slide-voice/internal/narration"
	"github.com/book-expert/slide-voice/internal/tts"
	"github.com/book-expert/slide-voice/internal/tts/ssml"
	"github.com/book-expert/slide-voice/internal/tts/text"
)

func newNarrateCommand(ctx *commandContext) *cobra.Command {
	var (
		output    string
		voice     string
		lang      string
		slides    []int
		skipCheck bool
	)

	cmd := &cobra.Command{
		Use:   "narrate <deck>",
		Short: "Synthesize speaker notes and embed them as narration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			log, err := ctx.logger()
			if err != nil {
				return err
			}

			if voice == "" {
				voice = cfg.TTS.Voice
			}

			if lang == "" {
				lang = cfg.TTS.Language
			}

			lang, err = tts.CanonicalLanguage(lang)
			if err != nil {
				return err
			}

			client := tts.NewHTTPClient(cfg.TTS.ServiceURL, cfg.TTS.APIKey, cfg.TTS.Timeout())
			if !skipCheck {
				err = client.HealthCheck(cmd.Context())
				if err != nil {
					return fmt.Errorf("speech service at %s is not available: %w", cfg.TTS.ServiceURL, err)
				}
			}

			file, err := ctx.openDeck(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			narrator := narration.New(client, core.ChainMarkup(text.NewNormalizer(), ssml.New()), log, cfg.TTS.Workers)

			results, err := narrator.NarrateDeck(cmd.Context(), file, narration.Options{
				Voice:    voice,
				Language: lang,
				Slides:   slides,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				reused := ""
				if result.Reused {
					reused = "yes"
				}

				rows = append(rows, []string{
					strconv.Itoa(result.Index),
					result.AudioPart,
					fileutil.FormatFileSize(int64(result.Bytes)),
					strconv.Itoa(result.Delay),
					reused,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out,
				[]string{"Slide", "Audio", "Size", "Delay", "Reused"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))

			return exportDeck(out, file, outputPath(output, args[0], "narrated"))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output deck (default <deck>-narrated.pptx)")
	cmd.Flags().StringVar(&voice, "voice", "", "Voice id (default tts.voice)")
	cmd.Flags().StringVar(&lang, "language", "", "BCP 47 language code (default tts.language)")
	cmd.Flags().IntSliceVar(&slides, "slides", nil, "Zero-based slide indices to narrate (default all with notes)")
	cmd.Flags().BoolVar(&skipCheck, "skip-health-check", false, "Do not probe the speech service before starting")

	return cmd
}
