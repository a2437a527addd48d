// Package pptxtest builds small presentation packages for tests.
package pptxtest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

const (
	nsA    = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP    = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRels = "http://schemas.openxmlformats.org/package/2006/relationships"
	relOD  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	header = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// Options shape the generated package.
type Options struct {
	Slides int
	// WithoutTheme omits ppt/theme/theme1.xml.
	WithoutTheme bool
	// WithoutDocProps omits docProps/core.xml and docProps/app.xml.
	WithoutDocProps bool
}

// Workspace writes an extracted package with the given number of slides into
// a temporary directory and returns it.
func Workspace(t testing.TB, slides int) string {
	t.Helper()

	return WorkspaceWith(t, Options{Slides: slides})
}

// WorkspaceWith writes an extracted package described by opts.
func WorkspaceWith(t testing.TB, opts Options) string {
	t.Helper()

	dir := t.TempDir()
	for part, content := range Parts(opts) {
		WritePart(t, dir, part, content)
	}

	return dir
}

// Deck writes a .pptx archive with the given number of slides and returns
// its path.
func Deck(t testing.TB, slides int) string {
	t.Helper()

	return DeckWith(t, Options{Slides: slides})
}

// DeckWith writes a .pptx archive described by opts.
func DeckWith(t testing.TB, opts Options) string {
	t.Helper()

	return Archive(t, Parts(opts))
}

// Archive zips parts into a new file and returns its path.
func Archive(t testing.TB, parts map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "deck.pptx")

	out, err := os.Create(path)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	for name, content := range parts {
		entry, err := writer.Create(name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())

	return path
}

// WritePart writes content to part inside dir.
func WritePart(t testing.TB, dir, part, content string) {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(part))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// ReadPart returns the content of part inside dir.
func ReadPart(t testing.TB, dir, part string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(part)))
	require.NoError(t, err)

	return string(data)
}

// ReadArchive returns every entry of a .pptx archive keyed by name, in
// archive order as the second result.
func ReadArchive(t testing.TB, path string) (map[string]string, []string) {
	t.Helper()

	reader, err := zip.OpenReader(path)
	require.NoError(t, err)

	defer reader.Close()

	parts := make(map[string]string, len(reader.File))
	order := make([]string, 0, len(reader.File))

	for _, entry := range reader.File {
		src, err := entry.Open()
		require.NoError(t, err)

		content, err := io.ReadAll(src)
		require.NoError(t, err)
		require.NoError(t, src.Close())

		parts[entry.Name] = string(content)
		order = append(order, entry.Name)
	}

	return parts, order
}

// Parts returns the part contents of a minimal presentation. Slide
// relationships in the presentation are declared in reverse slide order.
func Parts(opts Options) map[string]string {
	parts := map[string]string{
		"[Content_Types].xml":                          contentTypes(opts),
		"_rels/.rels":                                  rootRels(opts),
		"ppt/presentation.xml":                         presentation(opts.Slides),
		"ppt/_rels/presentation.xml.rels":              presentationRels(opts),
		"ppt/slideMasters/slideMaster1.xml":            slideMaster,
		"ppt/slideMasters/_rels/slideMaster1.xml.rels": slideMasterRels,
		"ppt/slideLayouts/slideLayout1.xml":            slideLayout,
		"ppt/slideLayouts/_rels/slideLayout1.xml.rels": slideLayoutRels,
	}

	if !opts.WithoutTheme {
		parts["ppt/theme/theme1.xml"] = Theme
	}

	if !opts.WithoutDocProps {
		parts["docProps/core.xml"] = coreProperties
		parts["docProps/app.xml"] = appProperties(opts.Slides)
	}

	for number := 1; number <= opts.Slides; number++ {
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", number)] = Slide(number)
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", number)] = slideRels
	}

	return parts
}

// Theme is the primary theme content.
const Theme = header + `<a:theme xmlns:a="` + nsA + `" name="Office Theme">` +
	`<a:themeElements><a:clrScheme name="Office"><a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`</a:clrScheme></a:themeElements></a:theme>`

// Slide returns the XML of slide number with a title shape.
func Slide(number int) string {
	return header + `<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:cSld><p:spTree>` +
		`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>` +
		`<p:spPr/><p:txBody><a:bodyPr/><a:p><a:r><a:t>` + fmt.Sprintf("Slide %d", number) + `</a:t></a:r></a:p></p:txBody></p:sp>` +
		`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`
}

func contentTypes(opts Options) string {
	var builder strings.Builder

	builder.WriteString(header)
	builder.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	builder.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	builder.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	builder.WriteString(override("/ppt/presentation.xml",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"))
	builder.WriteString(override("/ppt/slideMasters/slideMaster1.xml",
		"application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"))
	builder.WriteString(override("/ppt/slideLayouts/slideLayout1.xml",
		"application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"))

	for number := 1; number <= opts.Slides; number++ {
		builder.WriteString(override(fmt.Sprintf("/ppt/slides/slide%d.xml", number),
			"application/vnd.openxmlformats-officedocument.presentationml.slide+xml"))
	}

	if !opts.WithoutTheme {
		builder.WriteString(override("/ppt/theme/theme1.xml",
			"application/vnd.openxmlformats-officedocument.theme+xml"))
	}

	if !opts.WithoutDocProps {
		builder.WriteString(override("/docProps/core.xml",
			"application/vnd.openxmlformats-package.core-properties+xml"))
		builder.WriteString(override("/docProps/app.xml",
			"application/vnd.openxmlformats-officedocument.extended-properties+xml"))
	}

	builder.WriteString(`</Types>`)

	return builder.String()
}

func override(partName, contentType string) string {
	return `<Override PartName="` + partName + `" ContentType="` + contentType + `"/>`
}

func relationship(id, relType, target string) string {
	return `<Relationship Id="` + id + `" Type="` + relType + `" Target="` + target + `"/>`
}

func rootRels(opts Options) string {
	rels := relationship("rId1", relOD+"officeDocument", "ppt/presentation.xml")
	if !opts.WithoutDocProps {
		rels += relationship("rId2",
			"http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties",
			"docProps/core.xml")
		rels += relationship("rId3", relOD+"extended-properties", "docProps/app.xml")
	}

	return header + `<Relationships xmlns="` + nsRels + `">` + rels + `</Relationships>`
}

func presentation(slides int) string {
	var ids strings.Builder
	for number := 1; number <= slides; number++ {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 255+number, number+1)
	}

	return header + `<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
		`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>` +
		`<p:sldIdLst>` + ids.String() + `</p:sldIdLst>` +
		`<p:sldSz cx="9144000" cy="6858000"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`
}

func presentationRels(opts Options) string {
	var rels strings.Builder

	rels.WriteString(relationship("rId1", relOD+"slideMaster", "slideMasters/slideMaster1.xml"))

	for number := opts.Slides; number >= 1; number-- {
		rels.WriteString(relationship(fmt.Sprintf("rId%d", number+1), relOD+"slide",
			fmt.Sprintf("slides/slide%d.xml", number)))
	}

	if !opts.WithoutTheme {
		rels.WriteString(relationship(fmt.Sprintf("rId%d", opts.Slides+2), relOD+"theme", "theme/theme1.xml"))
	}

	return header + `<Relationships xmlns="` + nsRels + `">` + rels.String() + `</Relationships>`
}

func appProperties(slides int) string {
	return header + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties" ` +
		`xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		`<Application>Microsoft Office PowerPoint</Application>` +
		fmt.Sprintf(`<Slides>%d</Slides><Notes>0</Notes>`, slides) +
		`</Properties>`
}

const coreProperties = header + `<cp:coreProperties ` +
	`xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
	`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
	`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
	`<dc:title>Fixture</dc:title>` +
	`<dcterms:created xsi:type="dcterms:W3CDTF">2024-01-01T00:00:00Z</dcterms:created>` +
	`<dcterms:modified xsi:type="dcterms:W3CDTF">2024-01-01T00:00:00Z</dcterms:modified>` +
	`</cp:coreProperties>`

const slideRels = header + `<Relationships xmlns="` + nsRels + `">` +
	`<Relationship Id="rId1" Type="` + relOD + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`</Relationships>`

const slideMaster = header + `<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr/></p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" ` +
	`accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst></p:sldMaster>`

const slideMasterRels = header + `<Relationships xmlns="` + nsRels + `">` +
	`<Relationship Id="rId1" Type="` + relOD + `slideLayout" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="` + relOD + `theme" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const slideLayout = header + `<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr/></p:spTree></p:cSld></p:sldLayout>`

const slideLayoutRels = header + `<Relationships xmlns="` + nsRels + `">` +
	`<Relationship Id="rId1" Type="` + relOD + `slideMaster" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`
