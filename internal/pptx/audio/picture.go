package audio

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// Default icon placement in EMU.
const (
	DefaultIconX  = 5730875
	DefaultIconY  = 3063875
	DefaultIconCX = 730250
	DefaultIconCY = 730250
)

const (
	creationIDExtURI = "{FF2B5EF4-FFF2-40B4-BE49-F238E27FC236}"
	mediaExtURI      = "{DAA4B4D4-6D71-4841-9C94-3DE7FCFB9230}"
)

// Geometry places the narration icon on the slide, in EMU.
type Geometry struct {
	X  int
	Y  int
	CX int
	CY int
}

// DefaultGeometry is the icon placement used when none is configured.
func DefaultGeometry() Geometry {
	return Geometry{X: DefaultIconX, Y: DefaultIconY, CX: DefaultIconCX, CY: DefaultIconCY}
}

// pictureRefs are the slide relationship ids the picture shape points at.
type pictureRefs struct {
	media string
	audio string
	image string
}

// newPicture builds the p:pic shape that carries the narration clip.
func newPicture(spid int, name string, refs pictureRefs, geometry Geometry) *etree.Element {
	pic := opc.NewElement("p:pic")

	nvPicPr := opc.SubElement(pic, "p:nvPicPr")
	cNvPr := opc.SubElement(nvPicPr, "p:cNvPr", opc.A("id", strconv.Itoa(spid)), opc.A("name", name))
	opc.SubElement(cNvPr, "a:hlinkClick", opc.A("r:id", ""), opc.A("action", "ppaction://media"))

	extLst := opc.SubElement(cNvPr, "a:extLst")
	ext := opc.SubElement(extLst, "a:ext", opc.A("uri", creationIDExtURI))
	opc.SubElement(ext, "a16:creationId",
		opc.A("xmlns:a16", opc.NamespaceA16),
		opc.A("id", "{"+strings.ToUpper(uuid.NewString())+"}"),
	)

	cNvPicPr := opc.SubElement(nvPicPr, "p:cNvPicPr")
	opc.SubElement(cNvPicPr, "a:picLocks", opc.A("noChangeAspect", "1"))

	nvPr := opc.SubElement(nvPicPr, "p:nvPr")
	opc.SubElement(nvPr, "a:audioFile", opc.A("r:link", refs.audio))
	nvExtLst := opc.SubElement(nvPr, "p:extLst")
	nvExt := opc.SubElement(nvExtLst, "p:ext", opc.A("uri", mediaExtURI))
	opc.SubElement(nvExt, "p14:media",
		opc.A("xmlns:p14", opc.NamespaceP14),
		opc.A("r:embed", refs.media),
	)

	blipFill := opc.SubElement(pic, "p:blipFill")
	opc.SubElement(blipFill, "a:blip", opc.A("r:embed", refs.image))
	stretch := opc.SubElement(blipFill, "a:stretch")
	opc.SubElement(stretch, "a:fillRect")

	spPr := opc.SubElement(pic, "p:spPr")
	xfrm := opc.SubElement(spPr, "a:xfrm")
	opc.SubElement(xfrm, "a:off", opc.A("x", strconv.Itoa(geometry.X)), opc.A("y", strconv.Itoa(geometry.Y)))
	opc.SubElement(xfrm, "a:ext", opc.A("cx", strconv.Itoa(geometry.CX)), opc.A("cy", strconv.Itoa(geometry.CY)))
	prstGeom := opc.SubElement(spPr, "a:prstGeom", opc.A("prst", "rect"))
	opc.SubElement(prstGeom, "a:avLst")

	return pic
}
