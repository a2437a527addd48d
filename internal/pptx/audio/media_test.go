package audio

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
	"github.com/book-expert/slide-voice/internal/pptx/pptxtest"
)

func TestStore_ReusesIdenticalMedia(t *testing.T) {
	t.Parallel()

	workDir := pptxtest.Workspace(t, 1)
	pptxtest.WritePart(t, workDir, "ppt/media/media1.mp3", "first")
	pptxtest.WritePart(t, workDir, "ppt/media/media2.mp3", "second")

	part, reused, err := audioKind.store(workDir, []byte("second"))
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, "ppt/media/media2.mp3", part)

	part, reused, err = audioKind.store(workDir, []byte("third"))
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, "ppt/media/media3.mp3", part)
}

// Not parallel: swaps readMedia.
func TestStore_ReportsUnreadableMedia(t *testing.T) {
	workDir := pptxtest.Workspace(t, 1)
	pptxtest.WritePart(t, workDir, "ppt/media/media1.mp3", "first")

	errDenied := errors.New("permission denied")
	readMedia = func(string) ([]byte, error) { return nil, errDenied }

	t.Cleanup(func() { readMedia = os.ReadFile })

	_, _, err := audioKind.store(workDir, []byte("first"))
	require.ErrorIs(t, err, errDenied)
	assert.Contains(t, err.Error(), "ppt/media/media1.mp3")
	assert.False(t, opc.Exists(workDir, "ppt/media/media2.mp3"))
}
