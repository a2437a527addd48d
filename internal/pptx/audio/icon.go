package audio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"golang.org/x/image/vector"
)

const iconSize = 96

var iconColor = color.RGBA{R: 0x44, G: 0x72, B: 0xC4, A: 0xFF}

// NarrationIcon returns the PNG bytes of the speaker glyph placed on slides
// next to inserted narration. The encoding is deterministic so repeated
// insertions deduplicate to one media part.
var NarrationIcon = sync.OnceValues(renderNarrationIcon)

func renderNarrationIcon() ([]byte, error) {
	raster := vector.NewRasterizer(iconSize, iconSize)

	// Speaker body and cone.
	raster.MoveTo(14, 36)
	raster.LineTo(32, 36)
	raster.LineTo(54, 16)
	raster.LineTo(54, 80)
	raster.LineTo(32, 60)
	raster.LineTo(14, 60)
	raster.ClosePath()

	// Sound waves.
	addBar(raster, 62, 38, 68, 58)
	addBar(raster, 74, 28, 80, 68)

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	raster.Draw(img, img.Bounds(), image.NewUniform(iconColor), image.Point{})

	var buf bytes.Buffer

	encoder := png.Encoder{CompressionLevel: png.BestCompression, BufferPool: nil}

	err := encoder.Encode(&buf, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode narration icon: %w", err)
	}

	return buf.Bytes(), nil
}

func addBar(raster *vector.Rasterizer, x0, y0, x1, y1 float32) {
	raster.MoveTo(x0, y0)
	raster.LineTo(x1, y0)
	raster.LineTo(x1, y1)
	raster.LineTo(x0, y1)
	raster.ClosePath()
}
