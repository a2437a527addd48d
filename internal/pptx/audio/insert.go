// Package audio inserts auto-playing narration clips into slides of an
// extracted presentation workspace.
package audio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
	"github.com/book-expert/slide-voice/internal/pptx/timing"
)

const defaultClipName = "Narration"

// Clip is one narration payload. Data is treated as an opaque MP3 stream.
type Clip struct {
	Name string
	Data []byte
}

// Options configure narration insertion.
type Options struct {
	Volume   int
	Geometry Geometry
}

// DefaultOptions returns the volume and icon placement PowerPoint uses.
func DefaultOptions() Options {
	return Options{Volume: timing.DefaultVolume, Geometry: DefaultGeometry()}
}

// Result describes the parts and identifiers touched by one insertion.
type Result struct {
	SlidePart   string
	AudioPart   string
	IconPart    string
	AudioReused bool
	ShapeID     int
	Delay       int
	MediaRelID  string
	AudioRelID  string
	ImageRelID  string
}

// Inserter adds narration clips to slides.
type Inserter struct {
	opts Options
	icon func() ([]byte, error)
}

// NewInserter returns an Inserter; zero-valued options fall back to defaults.
func NewInserter(opts Options) *Inserter {
	defaults := DefaultOptions()
	if opts.Volume <= 0 {
		opts.Volume = defaults.Volume
	}

	if opts.Geometry.CX <= 0 || opts.Geometry.CY <= 0 {
		opts.Geometry = defaults.Geometry
	}

	return &Inserter{opts: opts, icon: NarrationIcon}
}

// InsertFile reads an MP3 file and inserts it into slidePart. The shape is
// named after the file stem.
func (i *Inserter) InsertFile(workDir, slidePart, mp3Path string) (*Result, error) {
	data, err := os.ReadFile(mp3Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: MP3 file '%s'", opc.ErrNotFound, mp3Path)
		}

		return nil, fmt.Errorf("failed to read MP3 file '%s': %w", mp3Path, err)
	}

	name := strings.TrimSuffix(filepath.Base(mp3Path), filepath.Ext(mp3Path))

	return i.Insert(workDir, slidePart, Clip{Name: name, Data: data})
}

// Insert embeds clip into slidePart so it plays when the slide is shown.
// Media files are deduplicated by content; relationships are keyed by
// (type, target) so repeating an insertion adds no relationships.
func (i *Inserter) Insert(workDir, slidePart string, clip Clip) (*Result, error) {
	info, err := os.Stat(workDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: workspace '%s'", opc.ErrNotFound, workDir)
	}

	if len(clip.Data) == 0 {
		return nil, fmt.Errorf("%w: audio payload for '%s' is empty", opc.ErrNotFound, slidePart)
	}

	if !opc.Exists(workDir, slidePart) {
		return nil, fmt.Errorf("%w: slide '%s' in workspace", opc.ErrNotFound, slidePart)
	}

	iconData, err := i.icon()
	if err != nil {
		return nil, err
	}

	result := &Result{SlidePart: slidePart}

	result.AudioPart, result.AudioReused, err = audioKind.store(workDir, clip.Data)
	if err != nil {
		return nil, err
	}

	result.IconPart, _, err = imageKind.store(workDir, iconData)
	if err != nil {
		return nil, err
	}

	err = registerMediaTypes(workDir)
	if err != nil {
		return nil, err
	}

	refs, err := linkMedia(workDir, slidePart, result.AudioPart, result.IconPart)
	if err != nil {
		return nil, err
	}

	result.MediaRelID, result.AudioRelID, result.ImageRelID = refs.media, refs.audio, refs.image

	narration, err := i.wireSlide(workDir, slidePart, clipName(clip), refs)
	if err != nil {
		return nil, err
	}

	result.ShapeID = narration.ShapeID
	result.Delay = narration.Delay

	return result, nil
}

func (i *Inserter) wireSlide(workDir, slidePart, name string, refs pictureRefs) (timing.Narration, error) {
	doc, err := opc.ReadXML(workDir, slidePart)
	if err != nil {
		return timing.Narration{}, err
	}

	slide := doc.Root()
	opc.EnsureNamespace(slide, "a", opc.NamespaceA)
	opc.EnsureNamespace(slide, "r", opc.NamespaceR)
	opc.EnsureNamespace(slide, "p", opc.NamespaceP)

	spid := timing.MaxShapeID(slide) + 1

	cSld := opc.EnsureChild(slide, "p:cSld")
	spTree := opc.EnsureChild(cSld, "p:spTree")
	spTree.AddChild(newPicture(spid, name, refs, i.opts.Geometry))

	narration := timing.AddNarration(slide, spid, i.opts.Volume)

	err = opc.WriteXML(workDir, slidePart, doc)
	if err != nil {
		return timing.Narration{}, err
	}

	return narration, nil
}

func registerMediaTypes(workDir string) error {
	types, err := opc.LoadContentTypes(workDir)
	if err != nil {
		return err
	}

	addedMP3 := types.EnsureDefault(audioKind.extension, opc.ContentTypeMP3)
	addedPNG := types.EnsureDefault(imageKind.extension, opc.ContentTypePNG)

	if !addedMP3 && !addedPNG {
		return nil
	}

	return types.Save(workDir)
}

func linkMedia(workDir, slidePart, audioPart, iconPart string) (pictureRefs, error) {
	relsPath := opc.RelsPathFor(slidePart)

	rels, err := opc.LoadRelationshipsOrEmpty(workDir, relsPath)
	if err != nil {
		return pictureRefs{}, err
	}

	audioTarget := opc.Relativize(slidePart, audioPart)
	iconTarget := opc.Relativize(slidePart, iconPart)

	var refs pictureRefs

	refs.media, _ = rels.Ensure(opc.RelTypeMedia, audioTarget)
	refs.audio, _ = rels.Ensure(opc.RelTypeAudio, audioTarget)
	refs.image, _ = rels.Ensure(opc.RelTypeImage, iconTarget)

	err = rels.Save(workDir, relsPath)
	if err != nil {
		return pictureRefs{}, err
	}

	return refs, nil
}

func clipName(clip Clip) string {
	if name := strings.TrimSpace(clip.Name); name != "" {
		return name
	}

	if title := clipTitle(clip.Data); title != "" {
		return title
	}

	return defaultClipName
}
