package pptx_test

import (
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/slide-voice/internal/pptx"
	"github.com/book-expert/slide-voice/internal/pptx/audio"
	"github.com/book-expert/slide-voice/internal/pptx/opc"
	"github.com/book-expert/slide-voice/internal/pptx/pptxtest"
)

var modifiedPattern = regexp.MustCompile(
	`<dcterms:modified xsi:type="dcterms:W3CDTF">\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z</dcterms:modified>`)

func TestExport_RoundTrip(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.Deck(t, 3))

	require.NoError(t, file.SetNotes(0, "Opening\nremarks"))
	require.NoError(t, file.SetNotes(2, "Closing"))

	_, err := file.InsertNarration(2, audio.Clip{Data: []byte("\xff\xfbclosing")})
	require.NoError(t, err)

	dst := filepath.Join(t.TempDir(), "out.pptx")
	require.NoError(t, file.Export(dst))
	assert.NoFileExists(t, dst+".lock")

	reopened := openDeck(t, dst)
	assert.Equal(t, file.SlideCount(), reopened.SlideCount())
	assert.Equal(t, []string{"Opening\nremarks", "", "Closing"}, reopened.AllNotes())

	count, err := reopened.NotesCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	parts, order := pptxtest.ReadArchive(t, dst)
	require.NotEmpty(t, order)
	assert.Equal(t, opc.ContentTypesPart, order[0])
	assert.Contains(t, parts["docProps/app.xml"], "<Notes>2</Notes>")
	assert.Regexp(t, modifiedPattern, parts["docProps/core.xml"])
	assert.NotContains(t, parts["docProps/core.xml"], "<dcterms:modified xsi:type=\"dcterms:W3CDTF\">2024-01-01")
	assert.Contains(t, parts, "ppt/media/media1.mp3")
	assert.Contains(t, parts, "ppt/notesMasters/notesMaster1.xml")
}

func TestExport_WithoutDocumentProperties(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.DeckWith(t, pptxtest.Options{Slides: 1, WithoutDocProps: true}))
	require.NoError(t, file.SetNotes(0, "note"))

	dst := filepath.Join(t.TempDir(), "out.pptx")
	require.NoError(t, file.Export(dst))

	parts, _ := pptxtest.ReadArchive(t, dst)
	assert.NotContains(t, parts, "docProps/app.xml")
	assert.Contains(t, parts["ppt/notesSlides/notesSlide1.xml"], "note")
}

func TestExport_AddsMissingNotesCount(t *testing.T) {
	t.Parallel()

	parts := pptxtest.Parts(pptxtest.Options{Slides: 1})
	parts["docProps/app.xml"] = strings.Replace(parts["docProps/app.xml"], "<Notes>0</Notes>", "", 1)

	file := openDeck(t, pptxtest.Archive(t, parts))
	require.NoError(t, file.SetNotes(0, "note"))

	dst := filepath.Join(t.TempDir(), "out.pptx")
	require.NoError(t, file.Export(dst))

	exported, _ := pptxtest.ReadArchive(t, dst)
	assert.Contains(t, exported["docProps/app.xml"], "<Slides>1</Slides><Notes>1</Notes>")
}

func TestExport_DestinationLocked(t *testing.T) {
	t.Parallel()

	file := openDeck(t, pptxtest.Deck(t, 1))
	dst := filepath.Join(t.TempDir(), "out.pptx")

	lock := flock.New(dst + ".lock")
	locked, err := lock.TryLock()
	require.NoError(t, err)
	require.True(t, locked)

	t.Cleanup(func() { _ = lock.Unlock() })

	require.ErrorIs(t, file.Export(dst), pptx.ErrExportBusy)
	assert.NoFileExists(t, dst)
}
