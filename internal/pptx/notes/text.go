package notes

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// ExtractText returns the text of every body placeholder shape in a notes
// part, one line per paragraph.
func ExtractText(notesRoot *etree.Element) string {
	var paragraphs []string

	for _, shape := range bodyShapes(notesRoot) {
		for _, paragraph := range shape.FindElements(".//p") {
			var line strings.Builder

			for _, run := range paragraph.FindElements(".//t") {
				line.WriteString(run.Text())
			}

			paragraphs = append(paragraphs, line.String())
		}
	}

	return strings.Join(paragraphs, "\n")
}

// setText replaces the body placeholder paragraphs with one paragraph per
// line of text. Empty text yields a single empty paragraph.
func setText(notesRoot *etree.Element, text string) {
	txBody := ensureBodyTextBody(notesRoot)

	for _, paragraph := range txBody.SelectElements("p") {
		txBody.RemoveChild(paragraph)
	}

	lines := []string{""}
	if text != "" {
		lines = strings.Split(text, "\n")
	}

	for _, line := range lines {
		paragraph := opc.SubElement(txBody, "a:p")
		if line == "" {
			continue
		}

		run := opc.SubElement(paragraph, "a:r")
		opc.SubElement(run, "a:t").SetText(line)
	}
}

// bodyShapes returns the shapes holding a p:ph[@type='body'] placeholder.
func bodyShapes(notesRoot *etree.Element) []*etree.Element {
	var shapes []*etree.Element

	for _, ph := range notesRoot.FindElements(".//ph[@type='body']") {
		nvPr := ph.Parent()
		if nvPr == nil || nvPr.Parent() == nil || nvPr.Parent().Parent() == nil {
			continue
		}

		shapes = append(shapes, nvPr.Parent().Parent())
	}

	return shapes
}

// ensureBodyTextBody returns the p:txBody of the first body placeholder,
// creating the shape tree and placeholder when the part has none.
func ensureBodyTextBody(notesRoot *etree.Element) *etree.Element {
	cSld := opc.EnsureChild(notesRoot, "p:cSld")
	spTree := opc.EnsureChild(cSld, "p:spTree")

	shapes := bodyShapes(notesRoot)

	var shape *etree.Element
	if len(shapes) > 0 {
		shape = shapes[0]
	} else {
		shape = newBodyPlaceholder(spTree, nextShapeID(spTree))
	}

	txBody := opc.EnsureChild(shape, "p:txBody")
	if txBody.SelectElement("bodyPr") == nil {
		txBody.InsertChildAt(0, opc.NewElement("a:bodyPr"))
	}

	return txBody
}

// newBodyPlaceholder appends the notes body placeholder shape to spTree.
func newBodyPlaceholder(spTree *etree.Element, shapeID int) *etree.Element {
	shape := opc.SubElement(spTree, "p:sp")

	nvSpPr := opc.SubElement(shape, "p:nvSpPr")
	opc.SubElement(nvSpPr, "p:cNvPr", opc.A("id", strconv.Itoa(shapeID)), opc.A("name", "Notes Placeholder 2"))
	opc.SubElement(nvSpPr, "p:cNvSpPr")
	nvPr := opc.SubElement(nvSpPr, "p:nvPr")
	opc.SubElement(nvPr, "p:ph", opc.A("type", "body"), opc.A("idx", "1"))

	opc.SubElement(shape, "p:spPr")
	txBody := opc.SubElement(shape, "p:txBody")
	opc.SubElement(txBody, "a:bodyPr")

	return shape
}

func nextShapeID(spTree *etree.Element) int {
	highest := 0

	for _, cNvPr := range spTree.FindElements(".//cNvPr[@id]") {
		id, err := strconv.Atoi(cNvPr.SelectAttrValue("id", ""))
		if err == nil && id > highest {
			highest = id
		}
	}

	return highest + 1
}

// addShapeTreeHeader writes the group properties every spTree starts with.
func addShapeTreeHeader(spTree *etree.Element) {
	nvGrpSpPr := opc.SubElement(spTree, "p:nvGrpSpPr")
	opc.SubElement(nvGrpSpPr, "p:cNvPr", opc.A("id", "1"), opc.A("name", ""))
	opc.SubElement(nvGrpSpPr, "p:cNvGrpSpPr")
	opc.SubElement(nvGrpSpPr, "p:nvPr")
	opc.SubElement(spTree, "p:grpSpPr")
}

// newNotesSlide builds a notes part holding text.
func newNotesSlide(text string) *etree.Document {
	doc := opc.NewXMLDocument("p:notes",
		opc.A("xmlns:a", opc.NamespaceA),
		opc.A("xmlns:r", opc.NamespaceR),
		opc.A("xmlns:p", opc.NamespaceP),
	)
	root := doc.Root()

	cSld := opc.SubElement(root, "p:cSld")
	spTree := opc.SubElement(cSld, "p:spTree")
	addShapeTreeHeader(spTree)

	newBodyPlaceholder(spTree, 3)
	setText(root, text)

	return doc
}
