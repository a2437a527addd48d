package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/slide-voice/internal/pptx/pptxtest"
)

// runCLI executes the command tree with args and returns its output.
func runCLI(t *testing.T, configPath string, stdin string, args ...string) (string, error) {
	t.Helper()

	cmdCtx := newCommandContext()
	t.Cleanup(cmdCtx.close)

	root := newRootCommand(cmdCtx)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config", configPath}, args...))

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func writeConfig(t *testing.T, serviceURL string) string {
	t.Helper()

	dir := t.TempDir()
	if serviceURL == "" {
		serviceURL = "http://127.0.0.1:1"
	}

	content := fmt.Sprintf("[tts]\nservice_url = %q\nworkers = 2\n\n[paths]\nbase_logs_dir = %q\nscratch_dir = %q\n",
		serviceURL, filepath.Join(dir, "logs"), dir)

	path := filepath.Join(dir, "slide-voice.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestSlidesCommand(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "")
	deck := pptxtest.Deck(t, 3)

	out, err := runCLI(t, cfg, "", "slides", deck)
	require.NoError(t, err)
	assert.Contains(t, out, "ppt/slides/slide1.xml")
	assert.Contains(t, out, "ppt/slides/slide3.xml")
	assert.Less(t, strings.Index(out, "slide1.xml"), strings.Index(out, "slide3.xml"))
}

func TestNotesSetAndGet(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "")
	deck := pptxtest.Deck(t, 2)
	edited := filepath.Join(t.TempDir(), "edited.pptx")

	out, err := runCLI(t, cfg, "Line one\nLine two\n", "notes", "set", deck, "1", "-", "-o", edited)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+edited)

	out, err = runCLI(t, cfg, "", "notes", "get", edited, "1")
	require.NoError(t, err)
	assert.Equal(t, "Line one\nLine two\n", out)

	_, err = runCLI(t, cfg, "", "notes", "get", edited, "5")
	require.Error(t, err)

	_, err = runCLI(t, cfg, "", "notes", "get", edited, "one")
	require.Error(t, err)
}

func TestNotesExportImport(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "")
	deck := pptxtest.Deck(t, 2)
	dir := t.TempDir()
	script := filepath.Join(dir, "notes.yaml")

	_, err := runCLI(t, cfg, "", "notes", "export", deck, "-o", script)
	require.NoError(t, err)

	data, err := os.ReadFile(script)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "notes: \"\"", "notes: Hello there", 1)
	require.NoError(t, os.WriteFile(script, []byte(edited), 0o600))

	out, err := runCLI(t, cfg, "", "notes", "import", deck, script)
	require.NoError(t, err)
	assert.Contains(t, out, "Updated notes on 1 slides")

	derived := strings.TrimSuffix(deck, ".pptx") + "-notes.pptx"

	out, err = runCLI(t, cfg, "", "notes", "get", derived, "0")
	require.NoError(t, err)
	assert.Equal(t, "Hello there\n", out)
}

func TestAttachCommand(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, "")
	deck := pptxtest.Deck(t, 1)
	dir := t.TempDir()
	clip := filepath.Join(dir, "intro.mp3")
	require.NoError(t, os.WriteFile(clip, []byte("\xff\xfbclip"), 0o600))

	out, err := runCLI(t, cfg, "", "attach", deck, "0", clip, "-o", filepath.Join(dir, "out.pptx"))
	require.NoError(t, err)
	assert.Contains(t, out, "ppt/media/media1.mp3")

	parts, _ := pptxtest.ReadArchive(t, filepath.Join(dir, "out.pptx"))
	assert.Contains(t, parts["ppt/slides/slide1.xml"], `name="intro"`)
}

func TestNarrateCommand(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /v1/text:synthesize", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("\xff\xfbspoken"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	cfg := writeConfig(t, server.URL)
	deck := pptxtest.Deck(t, 2)
	withNotes := filepath.Join(t.TempDir(), "with-notes.pptx")
	narrated := filepath.Join(t.TempDir(), "narrated.pptx")

	_, err := runCLI(t, cfg, "", "notes", "set", deck, "1", "Read this _aloud_ ...", "-o", withNotes)
	require.NoError(t, err)

	out, err := runCLI(t, cfg, "", "narrate", withNotes, "-o", narrated, "--voice", "test-voice")
	require.NoError(t, err)
	assert.Contains(t, out, "ppt/media/media1.mp3")

	parts, _ := pptxtest.ReadArchive(t, narrated)
	assert.Equal(t, "\xff\xfbspoken", parts["ppt/media/media1.mp3"])
	assert.Contains(t, parts["ppt/slides/slide2.xml"], "<p:timing>")
	assert.NotContains(t, parts["ppt/slides/slide1.xml"], "<p:timing>")
}

func TestNarrateCommand_ServiceUnavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	cfg := writeConfig(t, server.URL)

	_, err := runCLI(t, cfg, "", "narrate", pptxtest.Deck(t, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}
