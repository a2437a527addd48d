package pptx_test

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/slide-voice/internal/pptx"
	"github.com/book-expert/slide-voice/internal/pptx/audio"
	"github.com/book-expert/slide-voice/internal/pptx/opc"
	"github.com/book-expert/slide-voice/internal/pptx/pptxtest"
)

func openDeck(t *testing.T, path string) *pptx.File {
	t.Helper()

	file, err := pptx.Open(path, pptx.Options{ScratchDir: t.TempDir()})
	require.NoError(t, err)

	t.Cleanup(func() { _ = file.Close() })

	return file
}

func TestOpen_OrdersSlidesByNumber(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.Deck(t, 11))

	require.Equal(t, 11, file.SlideCount())

	for i, slide := range file.Slides() {
		assert.Equal(t, i, slide.Index())
		assert.Equal(t, "ppt/slides/slide"+strconv.Itoa(i+1)+".xml", slide.Part())
		assert.Empty(t, slide.Notes())
		assert.False(t, slide.HasNotesPart())
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := pptx.Open(filepath.Join(t.TempDir(), "missing.pptx"), pptx.Options{})
	require.ErrorIs(t, err, opc.ErrNotFound)

	notZip := filepath.Join(t.TempDir(), "plain.pptx")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o600))

	_, err = pptx.Open(notZip, pptx.Options{})

	var invalid *opc.InvalidPackageError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, notZip, invalid.Path)

	parts := pptxtest.Parts(pptxtest.Options{Slides: 1})
	delete(parts, opc.PresentationPart)

	_, err = pptx.Open(pptxtest.Archive(t, parts), pptx.Options{})
	require.ErrorIs(t, err, opc.ErrInvalidPackage)

	parts = pptxtest.Parts(pptxtest.Options{Slides: 1})
	parts["../evil.txt"] = "escape"

	_, err = pptx.Open(pptxtest.Archive(t, parts), pptx.Options{})
	require.ErrorIs(t, err, opc.ErrInvalidPackage)

	parts = pptxtest.Parts(pptxtest.Options{Slides: 1})
	delete(parts, opc.PresentationRelsPart)

	_, err = pptx.Open(pptxtest.Archive(t, parts), pptx.Options{})
	require.ErrorIs(t, err, opc.ErrRelationshipsMissing)
}

func TestOpen_CleansWorkspaceOnFailure(t *testing.T) {
	t.Parallel()

	scratch := t.TempDir()
	parts := pptxtest.Parts(pptxtest.Options{Slides: 1})
	delete(parts, opc.PresentationRelsPart)

	_, err := pptx.Open(pptxtest.Archive(t, parts), pptx.Options{ScratchDir: scratch})
	require.Error(t, err)

	entries, err := os.ReadDir(scratch)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpen_UnreadableNotes(t *testing.T) {
	t.Parallel()

	parts := pptxtest.Parts(pptxtest.Options{Slides: 2})
	parts["ppt/slides/_rels/slide2.xml.rels"] = strings.Replace(parts["ppt/slides/_rels/slide2.xml.rels"],
		"</Relationships>",
		`<Relationship Id="rId2" Type="`+opc.RelTypeNotesSlide+`" Target="../notesSlides/notesSlide2.xml"/></Relationships>`, 1)

	_, err := pptx.Open(pptxtest.Archive(t, parts), pptx.Options{ScratchDir: t.TempDir()})

	var unreadable *opc.NotesReadError
	require.ErrorAs(t, err, &unreadable)
	assert.Equal(t, 1, unreadable.SlideIndex)
	assert.True(t, errors.Is(err, opc.ErrNotesUnreadable))
	assert.True(t, errors.Is(err, opc.ErrNotFound))
}

func TestSlide_IndexBoundaries(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.Deck(t, 3))

	for _, index := range []int{3, -1, 100} {
		_, err := file.Slide(index)

		var outOfRange *opc.SlideIndexError
		require.ErrorAs(t, err, &outOfRange)
		assert.Equal(t, index, outOfRange.Index)
		assert.Equal(t, 3, outOfRange.Count)
		assert.True(t, errors.Is(err, opc.ErrSlideIndexOutOfRange))
	}

	require.ErrorIs(t, file.SetNotes(3, "x"), opc.ErrSlideIndexOutOfRange)

	_, err := file.InsertNarration(-1, audio.Clip{Data: []byte("x")})
	require.ErrorIs(t, err, opc.ErrSlideIndexOutOfRange)

	slide, err := file.Slide(2)
	require.NoError(t, err)
	assert.Equal(t, "ppt/slides/slide3.xml", slide.Part())
}

func TestSetNotes_TracksChanges(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.Deck(t, 2))

	require.NoError(t, file.SetNotes(0, ""))

	slide, err := file.Slide(0)
	require.NoError(t, err)
	assert.False(t, slide.Changed())

	require.NoError(t, file.SetNotes(0, "edited"))
	assert.True(t, slide.Changed())
	assert.Equal(t, []string{"edited", ""}, file.AllNotes())
	assert.False(t, opc.Exists(file.WorkDir(), "ppt/notesSlides/notesSlide1.xml"))

	require.NoError(t, file.SaveNotes())
	assert.False(t, slide.Changed())
	assert.True(t, slide.HasNotesPart())
	assert.True(t, opc.Exists(file.WorkDir(), "ppt/notesSlides/notesSlide1.xml"))
	assert.False(t, opc.Exists(file.WorkDir(), "ppt/notesSlides/notesSlide2.xml"))
}

func TestInsertNarration(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.Deck(t, 2))

	result, err := file.InsertNarration(1, audio.Clip{Name: "Two", Data: []byte("\xff\xfbclip")})
	require.NoError(t, err)
	assert.Equal(t, "ppt/slides/slide2.xml", result.SlidePart)
	assert.True(t, opc.Exists(file.WorkDir(), result.AudioPart))

	mp3Path := filepath.Join(t.TempDir(), "one.mp3")
	require.NoError(t, os.WriteFile(mp3Path, []byte("\xff\xfbother"), 0o600))

	result, err = file.InsertNarrationFile(0, mp3Path)
	require.NoError(t, err)
	assert.Equal(t, "ppt/media/media2.mp3", result.AudioPart)
}

func TestClose_RemovesWorkspace(t *testing.T) {
	t.Parallel()

	file, err := pptx.Open(pptxtest.Deck(t, 1), pptx.Options{ScratchDir: t.TempDir()})
	require.NoError(t, err)

	workDir := file.WorkDir()
	require.DirExists(t, workDir)

	require.NoError(t, file.Close())
	require.NoError(t, file.Close())
	assert.NoDirExists(t, workDir)
}

func TestClose_RejectsLaterEdits(t *testing.T) {
	t.Parallel()

	file, err := pptx.Open(pptxtest.Deck(t, 1), pptx.Options{ScratchDir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.ErrorIs(t, file.SetNotes(0, "late"), pptx.ErrClosed)
	require.ErrorIs(t, file.SaveNotes(), pptx.ErrClosed)

	_, err = file.InsertNarration(0, audio.Clip{Name: "Late", Data: []byte("\xff\xfbclip")})
	require.ErrorIs(t, err, pptx.ErrClosed)

	_, err = file.InsertNarrationFile(0, filepath.Join(t.TempDir(), "late.mp3"))
	require.ErrorIs(t, err, pptx.ErrClosed)

	_, err = file.NotesCount()
	require.ErrorIs(t, err, pptx.ErrClosed)

	dst := filepath.Join(t.TempDir(), "late.pptx")
	require.ErrorIs(t, file.Export(dst), pptx.ErrClosed)
	assert.NoFileExists(t, dst)
}
