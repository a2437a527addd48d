package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"regexp"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// MediaDir is the package directory holding embedded media parts.
const MediaDir = "ppt/media"

// readMedia reads an existing media file while looking for a duplicate.
var readMedia = os.ReadFile

// mediaKind describes one family of numbered media files such as
// media<N>.mp3.
type mediaKind struct {
	prefix    string
	extension string
	pattern   *regexp.Regexp
}

func newMediaKind(prefix, extension string) mediaKind {
	return mediaKind{
		prefix:    prefix,
		extension: extension,
		pattern:   regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(\d+)\.` + regexp.QuoteMeta(extension) + `$`),
	}
}

var (
	audioKind = newMediaKind("media", "mp3")
	imageKind = newMediaKind("image", "png")
)

// existing lists the file names of this kind present in the media directory.
func (k mediaKind) existing(workDir string) ([]string, error) {
	mediaFS := os.DirFS(opc.LocalPath(workDir, MediaDir))

	matches, err := doublestar.Glob(mediaFS, k.prefix+"*."+k.extension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s for %s files: %w", MediaDir, k.extension, err)
	}

	names := make([]string, 0, len(matches))

	for _, name := range matches {
		if k.pattern.MatchString(name) {
			names = append(names, name)
		}
	}

	return names, nil
}

// nextName returns <prefix><max+1>.<ext> over the existing names.
func (k mediaKind) nextName(existing []string) string {
	highest := 0

	for _, name := range existing {
		match := k.pattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}

		n, err := strconv.Atoi(match[1])
		if err == nil && n > highest {
			highest = n
		}
	}

	return k.prefix + strconv.Itoa(highest+1) + "." + k.extension
}

// store writes data under the media directory unless a file of the same kind
// already holds identical bytes, and returns the part path used.
func (k mediaKind) store(workDir string, data []byte) (part string, reused bool, err error) {
	names, err := k.existing(workDir)
	if err != nil {
		return "", false, err
	}

	digest := contentDigest(data)

	for _, name := range names {
		candidate := path.Join(MediaDir, name)

		existing, err := readMedia(opc.LocalPath(workDir, candidate))
		if err != nil {
			return "", false, fmt.Errorf("failed to read existing media '%s': %w", candidate, err)
		}

		if contentDigest(existing) == digest {
			return candidate, true, nil
		}
	}

	part = path.Join(MediaDir, k.nextName(names))

	err = opc.WriteFile(workDir, part, data)
	if err != nil {
		return "", false, err
	}

	return part, false, nil
}

// contentDigest returns the hex-encoded SHA-256 digest of data.
func contentDigest(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}
