package audio

import (
	"bytes"
	"strings"

	"github.com/bogem/id3v2"
)

// clipTitle returns the ID3 title of an MP3 payload, or "" when the payload
// carries no readable tag.
func clipTitle(data []byte) string {
	tag, err := id3v2.ParseReader(bytes.NewReader(data), id3v2.Options{
		Parse:       true,
		ParseFrames: []string{"Title"},
	})
	if err != nil {
		return ""
	}

	return strings.TrimSpace(tag.Title())
}
