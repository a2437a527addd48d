package pptx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gofrs/flock"
	"github.com/klauspost/compress/zip"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

const (
	slideRelsPattern = "ppt/slides/_rels/slide*.xml.rels"
	modifiedLayout   = "2006-01-02T15:04:05Z"
)

// ErrExportBusy is returned when another process holds the destination lock.
var ErrExportBusy = errors.New("export destination is locked by another writer")

// Export saves pending notes, refreshes the document properties and writes
// the workspace as a new package at dst. The workspace stays open.
func (f *File) Export(dst string) error {
	err := f.SaveNotes()
	if err != nil {
		return err
	}

	err = f.updateCoreProperties()
	if err != nil {
		return err
	}

	err = f.updateAppProperties()
	if err != nil {
		return err
	}

	lock := flock.New(dst + ".lock")

	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock '%s': %w", dst, err)
	}

	if !locked {
		return fmt.Errorf("%w: %s", ErrExportBusy, dst)
	}

	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(dst + ".lock")
	}()

	return writeArchive(f.workDir, dst)
}

// NotesCount returns the number of slides whose relationships include a
// notes slide.
func (f *File) NotesCount() (int, error) {
	err := f.checkOpen()
	if err != nil {
		return 0, err
	}

	return countSlidesWithNotes(f.workDir)
}

func (f *File) updateCoreProperties() error {
	if !opc.Exists(f.workDir, opc.CorePropertiesPart) {
		return nil
	}

	doc, err := opc.ReadXML(f.workDir, opc.CorePropertiesPart)
	if err != nil {
		return err
	}

	root := doc.Root()
	opc.EnsureNamespace(root, "dcterms", opc.NamespaceDCTerms)
	opc.EnsureNamespace(root, "xsi", opc.NamespaceXSI)

	modified := root.SelectElement("modified")
	if modified == nil {
		modified = opc.SubElement(root, "dcterms:modified")
	}

	modified.CreateAttr("xsi:type", "dcterms:W3CDTF")
	modified.SetText(f.now().UTC().Format(modifiedLayout))

	return opc.WriteXML(f.workDir, opc.CorePropertiesPart, doc)
}

func (f *File) updateAppProperties() error {
	if !opc.Exists(f.workDir, opc.AppPropertiesPart) {
		return nil
	}

	count, err := countSlidesWithNotes(f.workDir)
	if err != nil {
		return err
	}

	doc, err := opc.ReadXML(f.workDir, opc.AppPropertiesPart)
	if err != nil {
		return err
	}

	root := doc.Root()

	notesElem := root.SelectElement("Notes")
	if notesElem == nil {
		notesElem = opc.NewElement(root.Space + prefixSeparator(root.Space) + "Notes")

		if slides := root.SelectElement("Slides"); slides != nil {
			root.InsertChildAt(slides.Index()+1, notesElem)
		} else {
			root.AddChild(notesElem)
		}
	}

	notesElem.SetText(strconv.Itoa(count))

	return opc.WriteXML(f.workDir, opc.AppPropertiesPart, doc)
}

func prefixSeparator(space string) string {
	if space == "" {
		return ""
	}

	return ":"
}

func countSlidesWithNotes(workDir string) (int, error) {
	matches, err := doublestar.Glob(os.DirFS(workDir), slideRelsPattern, doublestar.WithFilesOnly())
	if err != nil {
		return 0, fmt.Errorf("failed to scan slide relationships: %w", err)
	}

	count := 0

	for _, relsPath := range matches {
		rels, err := opc.LoadRelationships(workDir, relsPath)
		if err != nil {
			return 0, err
		}

		if len(rels.TargetsByType(opc.RelTypeNotesSlide)) > 0 {
			count++
		}
	}

	return count, nil
}

// writeArchive zips the workspace into a temporary file beside dst and
// renames it into place. The content types part is written first.
func writeArchive(workDir, dst string) error {
	names, err := workspaceFiles(workDir)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".slide-voice-export-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}

	tmpName := tmp.Name()

	err = writeEntries(tmp, workDir, names)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return err
	}

	err = tmp.Close()
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to close temporary archive: %w", err)
	}

	err = os.Rename(tmpName, dst)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("failed to move archive to '%s': %w", dst, err)
	}

	return nil
}

func writeEntries(out io.Writer, workDir string, names []string) error {
	archive := zip.NewWriter(out)

	for _, name := range names {
		err := addEntry(archive, workDir, name)
		if err != nil {
			_ = archive.Close()

			return err
		}
	}

	err := archive.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	return nil
}

func addEntry(archive *zip.Writer, workDir, name string) error {
	src, err := os.Open(opc.LocalPath(workDir, name))
	if err != nil {
		return fmt.Errorf("failed to open part '%s': %w", name, err)
	}
	defer src.Close()

	entry, err := archive.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to add part '%s': %w", name, err)
	}

	_, err = io.Copy(entry, src)
	if err != nil {
		return fmt.Errorf("failed to write part '%s': %w", name, err)
	}

	return nil
}

func workspaceFiles(workDir string) ([]string, error) {
	var names []string

	err := fs.WalkDir(os.DirFS(workDir), ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !entry.IsDir() {
			names = append(names, name)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace: %w", err)
	}

	sort.SliceStable(names, func(i, j int) bool {
		if names[i] == opc.ContentTypesPart || names[j] == opc.ContentTypesPart {
			return names[i] == opc.ContentTypesPart
		}

		return names[i] < names[j]
	})

	return names, nil
}
