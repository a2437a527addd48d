// Package fileutil holds small filesystem and formatting helpers shared by
// the binaries and the narration pipeline.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultDirPermissions  = 0o750
	invalidCharReplacement = "_"

	kilobyte = 1024
	megabyte = 1024 * kilobyte
	gigabyte = 1024 * megabyte

	presentationExtension = ".pptx"
)

var filenameReplacer = strings.NewReplacer(
	"<", invalidCharReplacement,
	">", invalidCharReplacement,
	":", invalidCharReplacement,
	"\"", invalidCharReplacement,
	"/", invalidCharReplacement,
	"\\", invalidCharReplacement,
	"|", invalidCharReplacement,
	"?", invalidCharReplacement,
	"*", invalidCharReplacement,
)

// EnsureDir creates path and its parents when missing.
func EnsureDir(path string) error {
	_, statErr := os.Stat(path)
	if errors.Is(statErr, fs.ErrNotExist) {
		mkdirErr := os.MkdirAll(path, defaultDirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, mkdirErr)
		}
	}

	return nil
}

// SanitizeFilename replaces characters that are invalid in most filesystems.
func SanitizeFilename(filename string) string {
	return filenameReplacer.Replace(filename)
}

// FormatFileSize formats a size as a human-readable string, e.g. "1.2 MB".
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= gigabyte:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gigabyte)
	case bytes >= megabyte:
		return fmt.Sprintf("%.1f MB", float64(bytes)/megabyte)
	case bytes >= kilobyte:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kilobyte)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// IsPresentation reports whether filename has a .pptx extension.
func IsPresentation(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), presentationExtension)
}

// DerivedPath returns the sibling path of deckPath with suffix inserted
// before the extension: deck.pptx becomes deck-narrated.pptx.
func DerivedPath(deckPath, suffix string) string {
	ext := filepath.Ext(deckPath)
	stem := strings.TrimSuffix(deckPath, ext)

	if ext == "" {
		ext = presentationExtension
	}

	return stem + "-" + SanitizeFilename(suffix) + ext
}
