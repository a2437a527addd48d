package notes

import (
	"fmt"
	"os"

	"github.com/beevik/etree"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// Default locations for synthesized notes-master parts.
const (
	NotesMasterPart = "ppt/notesMasters/notesMaster1.xml"
	NotesThemePart  = "ppt/theme/theme2.xml"
)

// defaultColorMap is the p:clrMap PowerPoint writes for notes masters.
var defaultColorMap = []opc.Attr{
	opc.A("bg1", "lt1"),
	opc.A("tx1", "dk1"),
	opc.A("bg2", "lt2"),
	opc.A("tx2", "dk2"),
	opc.A("accent1", "accent1"),
	opc.A("accent2", "accent2"),
	opc.A("accent3", "accent3"),
	opc.A("accent4", "accent4"),
	opc.A("accent5", "accent5"),
	opc.A("accent6", "accent6"),
	opc.A("hlink", "hlink"),
	opc.A("folHlink", "folHlink"),
}

// ensureNotesMaster guarantees the package has a linked, content-typed notes
// master with a theme and returns its part path.
func ensureNotesMaster(workDir string) (string, error) {
	presentation, err := opc.ReadXML(workDir, opc.PresentationPart)
	if err != nil {
		return "", err
	}

	presentationRels, err := opc.LoadRelationships(workDir, opc.PresentationRelsPart)
	if err != nil {
		return "", err
	}

	masterTarget, err := linkNotesMaster(workDir, presentation, presentationRels)
	if err != nil {
		return "", err
	}

	masterPart := opc.Resolve(opc.PresentationPart, masterTarget)

	themePart, err := ensureNotesMasterFiles(workDir, masterPart)
	if err != nil {
		return "", err
	}

	types, err := opc.LoadContentTypes(workDir)
	if err != nil {
		return "", err
	}

	types.EnsureOverride(opc.PartName(masterPart), opc.ContentTypeNotesMaster)
	types.EnsureOverride(opc.PartName(themePart), opc.ContentTypeTheme)

	err = types.Save(workDir)
	if err != nil {
		return "", err
	}

	return masterPart, nil
}

// linkNotesMaster returns the presentation-relative target of the notes
// master, creating the relationship and the p:notesMasterId entry when the
// presentation has none.
func linkNotesMaster(workDir string, presentation *etree.Document, rels *opc.Relationships) (string, error) {
	masters := rels.ByType(opc.RelTypeNotesMaster)

	idElem := presentation.Root().FindElement(".//notesMasterId[@r:id]")
	if idElem != nil {
		rid := idElem.SelectAttrValue("r:id", "")

		for _, rel := range masters {
			if rel.ID == rid && rel.Target != "" {
				return rel.Target, nil
			}
		}

		return "", &opc.RelationshipIDError{Source: opc.PresentationRelsPart, ID: rid}
	}

	var rid, target string

	if len(masters) > 0 {
		rid, target = masters[0].ID, masters[0].Target
	} else {
		target = opc.Relativize(opc.PresentationPart, NotesMasterPart)
		rid = rels.Add(opc.RelTypeNotesMaster, target)

		err := rels.Save(workDir, opc.PresentationRelsPart)
		if err != nil {
			return "", err
		}
	}

	appendNotesMasterID(presentation.Root(), rid)

	err := opc.WriteXML(workDir, opc.PresentationPart, presentation)
	if err != nil {
		return "", err
	}

	return target, nil
}

// appendNotesMasterID adds p:notesMasterId under p:notesMasterIdLst, which
// is placed right after p:sldMasterIdLst when it has to be created.
func appendNotesMasterID(presentation *etree.Element, rid string) {
	opc.EnsureNamespace(presentation, "r", opc.NamespaceR)

	list := presentation.SelectElement("notesMasterIdLst")
	if list == nil {
		list = opc.NewElement("p:notesMasterIdLst")

		position := 1
		if masters := presentation.SelectElement("sldMasterIdLst"); masters != nil {
			position = masters.Index() + 1
		}

		presentation.InsertChildAt(position, list)
	}

	opc.SubElement(list, "p:notesMasterId", opc.A("r:id", rid))
}

// ensureNotesMasterFiles creates the notes master part, its relationships and
// a theme when missing, and returns the theme part path.
func ensureNotesMasterFiles(workDir, masterPart string) (string, error) {
	if !opc.Exists(workDir, masterPart) {
		err := opc.WriteXML(workDir, masterPart, newNotesMaster())
		if err != nil {
			return "", err
		}
	}

	relsPath := opc.RelsPathFor(masterPart)

	rels, err := opc.LoadRelationshipsOrEmpty(workDir, relsPath)
	if err != nil {
		return "", err
	}

	if themes := rels.TargetsByType(opc.RelTypeTheme); len(themes) > 0 {
		return opc.Resolve(masterPart, themes[0]), nil
	}

	err = cloneTheme(workDir)
	if err != nil {
		return "", err
	}

	rels.Add(opc.RelTypeTheme, opc.Relativize(masterPart, NotesThemePart))

	err = rels.Save(workDir, relsPath)
	if err != nil {
		return "", err
	}

	return NotesThemePart, nil
}

// cloneTheme copies the primary theme to the notes theme slot unless that
// slot is already taken.
func cloneTheme(workDir string) error {
	if opc.Exists(workDir, NotesThemePart) {
		return nil
	}

	if !opc.Exists(workDir, opc.PrimaryThemePart) {
		return &opc.InvalidPackageError{
			Path:   opc.PrimaryThemePart,
			Reason: "required theme part is missing; cannot create " + NotesThemePart,
		}
	}

	data, err := os.ReadFile(opc.LocalPath(workDir, opc.PrimaryThemePart))
	if err != nil {
		return fmt.Errorf("failed to read primary theme: %w", err)
	}

	return opc.WriteFile(workDir, NotesThemePart, data)
}

func newNotesMaster() *etree.Document {
	doc := opc.NewXMLDocument("p:notesMaster",
		opc.A("xmlns:a", opc.NamespaceA),
		opc.A("xmlns:r", opc.NamespaceR),
		opc.A("xmlns:p", opc.NamespaceP),
	)
	root := doc.Root()

	cSld := opc.SubElement(root, "p:cSld")
	spTree := opc.SubElement(cSld, "p:spTree")
	addShapeTreeHeader(spTree)

	opc.SubElement(root, "p:clrMap", defaultColorMap...)

	return doc
}
