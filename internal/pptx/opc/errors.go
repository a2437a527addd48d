package opc

import (
	"errors"
	"fmt"
)

// Error kinds reported by the package engine. Typed errors below unwrap to
// one of these so callers can match with errors.Is.
var (
	ErrNotFound                  = errors.New("not found")
	ErrInvalidPackage            = errors.New("invalid presentation package")
	ErrSlideIndexOutOfRange      = errors.New("slide index out of range")
	ErrRelationshipsMissing      = errors.New("relationships part not found")
	ErrRelationshipTargetMissing = errors.New("relationship target not found")
	ErrRelationshipIDUnresolved  = errors.New("relationship id not found")
	ErrNotesUnreadable           = errors.New("slide notes not readable")
)

// InvalidPackageError reports an archive that cannot be accepted or a missing
// prerequisite part.
type InvalidPackageError struct {
	Path   string
	Reason string
}

func (e *InvalidPackageError) Error() string {
	return fmt.Sprintf("invalid PPTX file '%s': %s", e.Path, e.Reason)
}

func (e *InvalidPackageError) Unwrap() error { return ErrInvalidPackage }

// SlideIndexError reports a slide index outside [0, Count).
type SlideIndexError struct {
	Index int
	Count int
}

func (e *SlideIndexError) Error() string {
	return fmt.Sprintf("slide index %d out of range: presentation has %d slide(s)", e.Index, e.Count)
}

func (e *SlideIndexError) Unwrap() error { return ErrSlideIndexOutOfRange }

// RelsNotFoundError reports a missing .rels part that was required.
type RelsNotFoundError struct {
	RelsPath string
}

func (e *RelsNotFoundError) Error() string {
	return fmt.Sprintf("relationships file not found in PPTX: '%s'", e.RelsPath)
}

func (e *RelsNotFoundError) Unwrap() error { return ErrRelationshipsMissing }

// RelationshipTargetError reports a relationship whose resolved target part
// does not exist in the workspace.
type RelationshipTargetError struct {
	Source string
	Target string
}

func (e *RelationshipTargetError) Error() string {
	return fmt.Sprintf("relationship target '%s' not found from relationships source '%s'", e.Target, e.Source)
}

func (e *RelationshipTargetError) Unwrap() error { return ErrRelationshipTargetMissing }

// RelationshipIDError reports an r:id attribute with no matching entry.
type RelationshipIDError struct {
	Source string
	ID     string
}

func (e *RelationshipIDError) Error() string {
	return fmt.Sprintf("relationship id '%s' not found in relationships source '%s'", e.ID, e.Source)
}

func (e *RelationshipIDError) Unwrap() error { return ErrRelationshipIDUnresolved }

// NotesReadError reports a notes part that is linked but cannot be parsed.
type NotesReadError struct {
	SlideIndex int
	Err        error
}

func (e *NotesReadError) Error() string {
	return fmt.Sprintf("slide notes not found for slide %d: %v", e.SlideIndex, e.Err)
}

func (e *NotesReadError) Unwrap() []error { return []error{ErrNotesUnreadable, e.Err} }
