// Package narration turns slide notes into spoken narration clips and embeds
// them into the slides of an open presentation.
package narration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/book-expert/logger"
	"github.com/book-expert/slide-voice/internal/core"
	"github.com/book-expert/slide-voice/internal/pptx"
	"github.com/book-expert/slide-voice/internal/pptx/audio"
)

const defaultWorkers = 4

var (
	// ErrVoiceRequired is returned when no voice is configured.
	ErrVoiceRequired = errors.New("voice is required")
	// ErrNothingToNarrate is returned when no selected slide has notes.
	ErrNothingToNarrate = errors.New("no selected slide has notes to narrate")
)

// Deck is the part of an open presentation the narrator needs.
type Deck interface {
	Slides() []*pptx.Slide
	Slide(index int) (*pptx.Slide, error)
	InsertNarration(index int, clip audio.Clip) (*audio.Result, error)
}

// Options select what to narrate and how.
type Options struct {
	Voice    string
	Language string
	// Slides restricts narration to these zero-based indices. Empty means
	// every slide with notes.
	Slides []int
}

// SlideResult reports one narrated slide.
type SlideResult struct {
	Index     int
	AudioPart string
	Bytes     int
	Reused    bool
	Delay     int
}

// Narrator synthesizes notes in parallel and inserts the clips one slide at
// a time.
type Narrator struct {
	synth   core.SpeechSynthesizer
	markup  core.MarkupTransformer
	log     *logger.Logger
	workers int
}

// New creates a Narrator. workers bounds concurrent synthesis requests.
func New(synth core.SpeechSynthesizer, markup core.MarkupTransformer, log *logger.Logger, workers int) *Narrator {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Narrator{synth: synth, markup: markup, log: log, workers: workers}
}

type job struct {
	index int
	text  string
	audio []byte
}

// NarrateDeck synthesizes the notes of the selected slides and inserts one
// auto-playing clip per slide. Synthesis failures abort before any slide is
// modified.
func (n *Narrator) NarrateDeck(ctx context.Context, deck Deck, opts Options) ([]SlideResult, error) {
	if strings.TrimSpace(opts.Voice) == "" {
		return nil, ErrVoiceRequired
	}

	jobs, err := n.selectJobs(deck, opts.Slides)
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		return nil, ErrNothingToNarrate
	}

	n.log.Info("Synthesizing narration for %d slides with voice %s (%d workers)", len(jobs), opts.Voice, n.workers)

	err = n.synthesize(ctx, jobs, opts)
	if err != nil {
		return nil, err
	}

	results := make([]SlideResult, 0, len(jobs))

	for _, current := range jobs {
		inserted, err := deck.InsertNarration(current.index, audio.Clip{
			Name: fmt.Sprintf("Narration %d", current.index+1),
			Data: current.audio,
		})
		if err != nil {
			return results, fmt.Errorf("failed to insert narration into slide %d: %w", current.index, err)
		}

		n.log.Info("Inserted narration into slide %d (%s, delay %d)", current.index, inserted.AudioPart, inserted.Delay)

		results = append(results, SlideResult{
			Index:     current.index,
			AudioPart: inserted.AudioPart,
			Bytes:     len(current.audio),
			Reused:    inserted.AudioReused,
			Delay:     inserted.Delay,
		})
	}

	return results, nil
}

func (n *Narrator) selectJobs(deck Deck, indices []int) ([]*job, error) {
	var slides []*pptx.Slide

	if len(indices) == 0 {
		slides = deck.Slides()
	} else {
		seen := make(map[int]bool, len(indices))

		for _, index := range indices {
			slide, err := deck.Slide(index)
			if err != nil {
				return nil, err
			}

			if !seen[index] {
				seen[index] = true

				slides = append(slides, slide)
			}
		}
	}

	jobs := make([]*job, 0, len(slides))

	for _, slide := range slides {
		text := strings.TrimSpace(slide.Notes())
		if text == "" {
			n.log.Warn("Skipping slide %d: no notes", slide.Index())

			continue
		}

		jobs = append(jobs, &job{index: slide.Index(), text: text})
	}

	return jobs, nil
}

func (n *Narrator) synthesize(ctx context.Context, jobs []*job, opts Options) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(n.workers)

	for _, current := range jobs {
		group.Go(func() error {
			data, err := n.synth.Synthesize(groupCtx, n.markup.Transform(current.text), opts.Voice, opts.Language)
			if err != nil {
				n.log.Error("Synthesis failed for slide %d: %v", current.index, err)

				return fmt.Errorf("failed to synthesize slide %d: %w", current.index, err)
			}

			current.audio = data

			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return fmt.Errorf("failed to synthesize narration: %w", err)
	}

	return nil
}
