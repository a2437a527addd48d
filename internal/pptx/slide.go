package pptx

import (
	"github.com/book-expert/slide-voice/internal/pptx/notes"
	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// Slide is one slide of an open presentation. Notes edits are held in memory
// until File.SaveNotes persists them.
type Slide struct {
	index    int
	part     string
	workDir  string
	notes    string
	hasNotes bool
	changed  bool
}

func loadSlide(workDir string, index int, part string) (*Slide, error) {
	text, linked, err := notes.Read(workDir, part)
	if err != nil {
		if linked {
			return nil, &opc.NotesReadError{SlideIndex: index, Err: err}
		}

		return nil, err
	}

	return &Slide{
		index:    index,
		part:     part,
		workDir:  workDir,
		notes:    text,
		hasNotes: linked,
	}, nil
}

// Index returns the zero-based position of the slide.
func (s *Slide) Index() int { return s.index }

// Part returns the slide part path, e.g. ppt/slides/slide3.xml.
func (s *Slide) Part() string { return s.part }

// Notes returns the current in-memory notes text.
func (s *Slide) Notes() string { return s.notes }

// HasNotesPart reports whether the slide was linked to a notes part when it
// was loaded or last saved.
func (s *Slide) HasNotesPart() bool { return s.hasNotes }

// Changed reports whether the notes were edited since the last save.
func (s *Slide) Changed() bool { return s.changed }

// SetNotes replaces the in-memory notes text. Setting identical text does
// not mark the slide as changed.
func (s *Slide) SetNotes(text string) {
	if text == s.notes {
		return
	}

	s.notes = text
	s.changed = true
}

// SaveNotes writes edited notes into the workspace.
func (s *Slide) SaveNotes() error {
	if !s.changed {
		return nil
	}

	err := notes.Write(s.workDir, s.part, s.notes)
	if err != nil {
		return err
	}

	s.changed = false
	s.hasNotes = true

	return nil
}
