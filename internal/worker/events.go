package worker

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/book-expert/events"
)

// NarrationJobEvent asks the worker to narrate a deck held in the object
// store.
type NarrationJobEvent struct {
	Header   events.EventHeader `json:"header"`
	DeckKey  string             `json:"deck_key"`
	Voice    string             `json:"voice"`
	Language string             `json:"language,omitempty"`
	// Slides lists zero-based slide indices. Empty means every slide with
	// notes.
	Slides []int `json:"slides,omitempty"`
}

// Validate checks the fields the worker relies on.
func (e NarrationJobEvent) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.DeckKey, validation.Required),
		validation.Field(&e.Voice, validation.Required),
		validation.Field(&e.Slides, validation.Each(validation.Min(0))),
	)
}

// NarrationCompletedEvent is the reply to a NarrationJobEvent.
type NarrationCompletedEvent struct {
	Header         events.EventHeader `json:"header"`
	DeckKey        string             `json:"deck_key"`
	OutputKey      string             `json:"output_key,omitempty"`
	NarratedSlides []int              `json:"narrated_slides,omitempty"`
	Error          string             `json:"error,omitempty"`
}
