// Package notes reads and writes slide speaker notes, materializing the
// notes slide, notes master, theme, relationships and content-type entries
// a package lacks.
package notes

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

const (
	notesSlidesDir     = "ppt/notesSlides"
	notesSlidePattern  = notesSlidesDir + "/notesSlide*.xml"
	slideRelsPattern   = "ppt/slides/_rels/*.xml.rels"
	notesSlidePrefix   = "notesSlide"
	notesSlideFileType = ".xml"
)

// Read returns the notes text of slidePart and whether a notes relationship
// exists. The slide relationships part must exist.
func Read(workDir, slidePart string) (string, bool, error) {
	rels, err := opc.LoadRelationships(workDir, opc.RelsPathFor(slidePart))
	if err != nil {
		return "", false, err
	}

	targets := rels.TargetsByType(opc.RelTypeNotesSlide)
	if len(targets) == 0 {
		return "", false, nil
	}

	doc, err := opc.ReadXML(workDir, opc.Resolve(slidePart, targets[0]))
	if err != nil {
		return "", true, err
	}

	return ExtractText(doc.Root()), true, nil
}

// Write stores text as the notes of slidePart. An existing notes part is
// rewritten in place; otherwise the notes part and every missing
// prerequisite is created.
func Write(workDir, slidePart, text string) error {
	slideRelsPath := opc.RelsPathFor(slidePart)

	slideRels, err := opc.LoadRelationships(workDir, slideRelsPath)
	if err != nil {
		return err
	}

	if targets := slideRels.TargetsByType(opc.RelTypeNotesSlide); len(targets) > 0 {
		return rewrite(workDir, slideRelsPath, opc.Resolve(slidePart, targets[0]), text)
	}

	masterPart, err := ensureNotesMaster(workDir)
	if err != nil {
		return err
	}

	notesPart, err := freeNotesPart(workDir, slidePart)
	if err != nil {
		return err
	}

	err = opc.WriteXML(workDir, notesPart, newNotesSlide(text))
	if err != nil {
		return err
	}

	notesRels := opc.NewRelationships()
	notesRels.Add(opc.RelTypeNotesMaster, opc.Relativize(notesPart, masterPart))
	notesRels.Add(opc.RelTypeSlide, opc.Relativize(notesPart, slidePart))

	err = notesRels.Save(workDir, opc.RelsPathFor(notesPart))
	if err != nil {
		return err
	}

	slideRels.Add(opc.RelTypeNotesSlide, opc.Relativize(slidePart, notesPart))

	err = slideRels.Save(workDir, slideRelsPath)
	if err != nil {
		return err
	}

	types, err := opc.LoadContentTypes(workDir)
	if err != nil {
		return err
	}

	types.EnsureOverride(opc.PartName(notesPart), opc.ContentTypeNotesSlide)
	types.EnsureOverride(opc.PartName(masterPart), opc.ContentTypeNotesMaster)

	return types.Save(workDir)
}

// PartNameForSlide derives notesSlide<N>.xml from slide<N>.xml.
func PartNameForSlide(slidePart string) string {
	stem := strings.TrimSuffix(path.Base(slidePart), path.Ext(slidePart))

	return notesSlidePrefix + strings.Replace(stem, "slide", "", 1) + notesSlideFileType
}

// freeNotesPart picks the notes part for a slide that has none. The name
// derived from the slide is used unless a part of that name exists or another
// slide already links to it; then the highest taken number plus one is used.
func freeNotesPart(workDir, slidePart string) (string, error) {
	preferred := path.Join(notesSlidesDir, PartNameForSlide(slidePart))

	taken, err := takenNotesParts(workDir)
	if err != nil {
		return "", err
	}

	if !taken[preferred] {
		return preferred, nil
	}

	highest := 0

	for part := range taken {
		number, ok := notesPartNumber(part)
		if ok && number > highest {
			highest = number
		}
	}

	return path.Join(notesSlidesDir, notesSlidePrefix+strconv.Itoa(highest+1)+notesSlideFileType), nil
}

// takenNotesParts collects the notes parts present in the workspace and the
// notes targets of every slide relationships part.
func takenNotesParts(workDir string) (map[string]bool, error) {
	workspace := os.DirFS(workDir)
	taken := make(map[string]bool)

	present, err := doublestar.Glob(workspace, notesSlidePattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes slides: %w", err)
	}

	for _, part := range present {
		taken[part] = true
	}

	relsParts, err := doublestar.Glob(workspace, slideRelsPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan slide relationships: %w", err)
	}

	for _, relsPath := range relsParts {
		rels, err := opc.LoadRelationships(workDir, relsPath)
		if err != nil {
			return nil, err
		}

		owner := path.Join(path.Dir(path.Dir(relsPath)), strings.TrimSuffix(path.Base(relsPath), ".rels"))
		for _, target := range rels.TargetsByType(opc.RelTypeNotesSlide) {
			taken[opc.Resolve(owner, target)] = true
		}
	}

	return taken, nil
}

func notesPartNumber(part string) (int, bool) {
	digits := strings.TrimSuffix(strings.TrimPrefix(path.Base(part), notesSlidePrefix), notesSlideFileType)

	number, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return number, true
}

func rewrite(workDir, slideRelsPath, notesPart, text string) error {
	if !opc.Exists(workDir, notesPart) {
		return &opc.RelationshipTargetError{Source: slideRelsPath, Target: notesPart}
	}

	doc, err := opc.ReadXML(workDir, notesPart)
	if err != nil {
		return err
	}

	setText(doc.Root(), text)

	return opc.WriteXML(workDir, notesPart, doc)
}
