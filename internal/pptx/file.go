// Package pptx opens presentation packages into a private scratch workspace,
// exposes slide-level notes and narration edits, and re-packages the result.
package pptx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/book-expert/slide-voice/internal/pptx/audio"
	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

const workspacePattern = "slide-voice-*"

var slideNumberPattern = regexp.MustCompile(`slide(\d+)\.xml$`)

// ErrClosed is returned by operations on a File after Close.
var ErrClosed = errors.New("presentation is closed")

// Options configure how a package is opened.
type Options struct {
	// ScratchDir hosts the extracted workspace. Empty means os.TempDir.
	ScratchDir string
	Narration  audio.Options
}

// File is an open presentation backed by an extracted workspace. A File is
// not safe for concurrent use.
type File struct {
	source   string
	workDir  string
	slides   []*Slide
	inserter *audio.Inserter
	now      func() time.Time
}

// Open extracts the package at archivePath and loads its slides in
// slide-number order.
func Open(archivePath string, opts Options) (*File, error) {
	_, err := os.Stat(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: file '%s'", opc.ErrNotFound, archivePath)
		}

		return nil, fmt.Errorf("failed to stat '%s': %w", archivePath, err)
	}

	workDir, err := os.MkdirTemp(opts.ScratchDir, workspacePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	err = extract(archivePath, workDir)
	if err != nil {
		_ = os.RemoveAll(workDir)

		return nil, err
	}

	file := &File{
		source:   archivePath,
		workDir:  workDir,
		inserter: audio.NewInserter(opts.Narration),
		now:      time.Now,
	}

	err = file.loadSlides()
	if err != nil {
		_ = os.RemoveAll(workDir)

		return nil, err
	}

	return file, nil
}

// Source returns the path the package was opened from.
func (f *File) Source() string { return f.source }

// WorkDir returns the extracted workspace directory.
func (f *File) WorkDir() string { return f.workDir }

// SlideCount returns the number of slides.
func (f *File) SlideCount() int { return len(f.slides) }

// Slides returns the slides in presentation order.
func (f *File) Slides() []*Slide {
	return append([]*Slide(nil), f.slides...)
}

// Slide returns the slide at the zero-based index.
func (f *File) Slide(index int) (*Slide, error) {
	if index < 0 || index >= len(f.slides) {
		return nil, &opc.SlideIndexError{Index: index, Count: len(f.slides)}
	}

	return f.slides[index], nil
}

// AllNotes returns the in-memory notes of every slide.
func (f *File) AllNotes() []string {
	all := make([]string, len(f.slides))
	for i, slide := range f.slides {
		all[i] = slide.notes
	}

	return all
}

// SetNotes updates the in-memory notes of one slide.
func (f *File) SetNotes(index int, text string) error {
	err := f.checkOpen()
	if err != nil {
		return err
	}

	slide, err := f.Slide(index)
	if err != nil {
		return err
	}

	slide.SetNotes(text)

	return nil
}

// SaveNotes persists every edited slide's notes into the workspace.
func (f *File) SaveNotes() error {
	err := f.checkOpen()
	if err != nil {
		return err
	}

	for _, slide := range f.slides {
		err := slide.SaveNotes()
		if err != nil {
			return err
		}
	}

	return nil
}

// InsertNarration adds an auto-playing clip to one slide.
func (f *File) InsertNarration(index int, clip audio.Clip) (*audio.Result, error) {
	err := f.checkOpen()
	if err != nil {
		return nil, err
	}

	slide, err := f.Slide(index)
	if err != nil {
		return nil, err
	}

	return f.inserter.Insert(f.workDir, slide.part, clip)
}

// InsertNarrationFile adds the MP3 file at mp3Path to one slide.
func (f *File) InsertNarrationFile(index int, mp3Path string) (*audio.Result, error) {
	err := f.checkOpen()
	if err != nil {
		return nil, err
	}

	slide, err := f.Slide(index)
	if err != nil {
		return nil, err
	}

	return f.inserter.InsertFile(f.workDir, slide.part, mp3Path)
}

// Close removes the workspace. It is safe to call more than once.
func (f *File) Close() error {
	if f.workDir == "" {
		return nil
	}

	err := os.RemoveAll(f.workDir)
	f.workDir = ""

	if err != nil {
		return fmt.Errorf("failed to remove workspace: %w", err)
	}

	return nil
}

func (f *File) checkOpen() error {
	if f.workDir == "" {
		return fmt.Errorf("%w: %s", ErrClosed, f.source)
	}

	return nil
}

func (f *File) loadSlides() error {
	rels, err := opc.LoadRelationships(f.workDir, opc.PresentationRelsPart)
	if err != nil {
		return err
	}

	parts := orderSlideParts(rels.TargetsByType(opc.RelTypeSlide))

	f.slides = make([]*Slide, 0, len(parts))
	for index, part := range parts {
		slide, err := loadSlide(f.workDir, index, part)
		if err != nil {
			return err
		}

		f.slides = append(f.slides, slide)
	}

	return nil
}

// orderSlideParts resolves presentation slide targets and sorts them by the
// number in their file name rather than relationship order.
func orderSlideParts(targets []string) []string {
	type numbered struct {
		number int
		part   string
	}

	slides := make([]numbered, 0, len(targets))
	for _, target := range targets {
		part := opc.Resolve(opc.PresentationPart, target)

		number := -1
		if match := slideNumberPattern.FindStringSubmatch(part); match != nil {
			number, _ = strconv.Atoi(match[1])
		}

		slides = append(slides, numbered{number: number, part: part})
	}

	sort.SliceStable(slides, func(i, j int) bool {
		return slides[i].number < slides[j].number
	})

	parts := make([]string, len(slides))
	for i, slide := range slides {
		parts[i] = slide.part
	}

	return parts
}

func extract(archivePath, workDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return &opc.InvalidPackageError{Path: archivePath, Reason: "cannot open as ZIP: " + err.Error()}
	}
	defer reader.Close()

	hasPresentation := false

	for _, entry := range reader.File {
		if entry.Name == opc.PresentationPart {
			hasPresentation = true
		}
	}

	if !hasPresentation {
		return &opc.InvalidPackageError{Path: archivePath, Reason: "missing " + opc.PresentationPart}
	}

	for _, entry := range reader.File {
		err = extractEntry(entry, workDir)
		if err != nil {
			return err
		}
	}

	return nil
}

func extractEntry(entry *zip.File, workDir string) error {
	name := path.Clean(entry.Name)
	if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return &opc.InvalidPackageError{Path: entry.Name, Reason: "entry escapes the package root"}
	}

	if entry.FileInfo().IsDir() {
		return nil
	}

	src, err := entry.Open()
	if err != nil {
		return &opc.InvalidPackageError{Path: entry.Name, Reason: "cannot read entry: " + err.Error()}
	}
	defer src.Close()

	dst := opc.LocalPath(workDir, name)

	err = os.MkdirAll(filepath.Dir(dst), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", name, err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", name, err)
	}

	_, err = io.Copy(out, src)
	if err != nil {
		_ = out.Close()

		return &opc.InvalidPackageError{Path: entry.Name, Reason: "cannot extract entry: " + err.Error()}
	}

	err = out.Close()
	if err != nil {
		return fmt.Errorf("failed to close '%s': %w", name, err)
	}

	return nil
}
