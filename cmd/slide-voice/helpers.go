package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/book-expert/slide-voice/internal/fileutil"
	"github.com/book-expert/slide-voice/internal/pptx"
)

const previewWidth = 60

func parseSlideIndex(raw string) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid slide index %q", raw)
	}

	return index, nil
}

// outputPath returns flagValue, or a sibling of deckPath named with suffix.
func outputPath(flagValue, deckPath, suffix string) string {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path
	}

	return fileutil.DerivedPath(deckPath, suffix)
}

func exportDeck(out io.Writer, file *pptx.File, dst string) error {
	err := file.Export(dst)
	if err != nil {
		return err
	}

	info, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", dst, err)
	}

	fmt.Fprintf(out, "Wrote %s (%s)\n", dst, fileutil.FormatFileSize(info.Size()))

	return nil
}

// readText returns value, or standard input when value is "-".
func readText(in io.Reader, value string) (string, error) {
	if value != "-" {
		return value, nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read notes from stdin: %w", err)
	}

	return strings.TrimRight(string(data), "\r\n"), nil
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)

	runes := []rune(line)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth-1]) + "…"
	}

	return line
}

func lineCount(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	return strings.Count(text, "\n") + 1
}
