// Package notesscript exchanges slide notes with a YAML document so notes
// can be edited outside the presentation and applied back in one pass.
package notesscript

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// ErrDuplicateIndex is returned when a script lists the same slide twice.
var ErrDuplicateIndex = errors.New("slide listed more than once")

// Script is the YAML notes document.
type Script struct {
	Source string       `yaml:"source,omitempty"`
	Slides []SlideNotes `yaml:"slides"`
}

// SlideNotes holds the notes of one slide.
type SlideNotes struct {
	Index int    `yaml:"index"`
	Notes string `yaml:"notes"`
}

// Deck is the part of an open presentation the script needs.
type Deck interface {
	Source() string
	SlideCount() int
	AllNotes() []string
	SetNotes(index int, text string) error
}

// Export captures the current notes of every slide.
func Export(deck Deck) *Script {
	notes := deck.AllNotes()
	script := &Script{
		Source: filepath.Base(deck.Source()),
		Slides: make([]SlideNotes, 0, len(notes)),
	}

	for index, text := range notes {
		script.Slides = append(script.Slides, SlideNotes{Index: index, Notes: text})
	}

	return script
}

// Validate checks the script against a deck with slideCount slides.
func (s *Script) Validate(slideCount int) error {
	seen := make(map[int]bool, len(s.Slides))

	for position, entry := range s.Slides {
		err := validation.Validate(entry.Index, validation.By(indexInRange(slideCount)))
		if err != nil {
			return fmt.Errorf("slides[%d]: %w", position, err)
		}

		if seen[entry.Index] {
			return fmt.Errorf("slides[%d]: index %d: %w", position, entry.Index, ErrDuplicateIndex)
		}

		seen[entry.Index] = true
	}

	return nil
}

// indexInRange checks a slide index against the deck size. Zero is checked
// like any other index, unlike validation.Min and validation.Max.
func indexInRange(slideCount int) validation.RuleFunc {
	return func(value any) error {
		index, _ := value.(int)
		if index < 0 || index >= slideCount {
			return &opc.SlideIndexError{Index: index, Count: slideCount}
		}

		return nil
	}
}

// Apply validates the whole script and then sets the notes of every listed
// slide. It returns the number of slides whose notes changed.
func Apply(deck Deck, script *Script) (int, error) {
	err := script.Validate(deck.SlideCount())
	if err != nil {
		return 0, err
	}

	current := deck.AllNotes()
	changed := 0

	for _, entry := range script.Slides {
		if current[entry.Index] == entry.Notes {
			continue
		}

		err = deck.SetNotes(entry.Index, entry.Notes)
		if err != nil {
			return changed, fmt.Errorf("failed to set notes of slide %d: %w", entry.Index, err)
		}

		changed++
	}

	return changed, nil
}

// Decode reads a script from r.
func Decode(r io.Reader) (*Script, error) {
	var script Script

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(&script)
	if err != nil {
		return nil, fmt.Errorf("failed to decode notes script: %w", err)
	}

	return &script, nil
}

// Encode writes the script to w as YAML.
func (s *Script) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)

	err := encoder.Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode notes script: %w", err)
	}

	return encoder.Close()
}
