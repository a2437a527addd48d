package opc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
)

const (
	dirPermissions  = 0o750
	filePermissions = 0o600
	xmlDeclaration  = `version="1.0" encoding="UTF-8" standalone="yes"`
)

// Attr is an attribute used when matching or creating elements. Key may
// carry a namespace prefix such as "r:id".
type Attr struct {
	Key   string
	Value string
}

// A is shorthand for an Attr literal.
func A(key, value string) Attr {
	return Attr{Key: key, Value: value}
}

// LocalPath maps a part path to its file inside the workspace directory.
func LocalPath(workDir, part string) string {
	return filepath.Join(workDir, filepath.FromSlash(part))
}

// Exists reports whether the part is present in the workspace.
func Exists(workDir, part string) bool {
	info, err := os.Stat(LocalPath(workDir, part))

	return err == nil && !info.IsDir()
}

// ReadXML parses a part from the workspace. A missing part is reported as
// ErrNotFound.
func ReadXML(workDir, part string) (*etree.Document, error) {
	data, err := os.ReadFile(LocalPath(workDir, part))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: part '%s'", ErrNotFound, part)
		}

		return nil, fmt.Errorf("failed to read part '%s': %w", part, err)
	}

	doc := etree.NewDocument()

	err = doc.ReadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse part '%s': %w", part, err)
	}

	if doc.Root() == nil {
		return nil, fmt.Errorf("failed to parse part '%s': no root element", part)
	}

	return doc, nil
}

// WriteXML serializes doc into the workspace, creating parent directories.
func WriteXML(workDir, part string, doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("failed to serialize part '%s': %w", part, err)
	}

	return WriteFile(workDir, part, data)
}

// WriteFile writes raw part bytes into the workspace, creating parent
// directories.
func WriteFile(workDir, part string, data []byte) error {
	target := LocalPath(workDir, part)

	err := os.MkdirAll(filepath.Dir(target), dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create directory for part '%s': %w", part, err)
	}

	err = os.WriteFile(target, data, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write part '%s': %w", part, err)
	}

	return nil
}

// NewXMLDocument returns a document with the standard XML declaration and a
// root element named tag.
func NewXMLDocument(tag string, attrs ...Attr) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", xmlDeclaration)

	root := doc.CreateElement(tag)
	for _, attr := range attrs {
		root.CreateAttr(attr.Key, attr.Value)
	}

	return doc
}

// NewElement builds a detached element with attributes in the given order.
func NewElement(tag string, attrs ...Attr) *etree.Element {
	elem := etree.NewElement(tag)
	for _, attr := range attrs {
		elem.CreateAttr(attr.Key, attr.Value)
	}

	return elem
}

// SubElement appends a new child element to parent.
func SubElement(parent *etree.Element, tag string, attrs ...Attr) *etree.Element {
	child := NewElement(tag, attrs...)
	parent.AddChild(child)

	return child
}

// FindOrInsert returns the first child element of parent that satisfies
// match. When none does, the element produced by build is appended and
// returned with inserted set to true.
func FindOrInsert(
	parent *etree.Element,
	match func(*etree.Element) bool,
	build func() *etree.Element,
) (elem *etree.Element, inserted bool) {
	for _, child := range parent.ChildElements() {
		if match(child) {
			return child, false
		}
	}

	elem = build()
	parent.AddChild(elem)

	return elem, true
}

// EnsureChild finds the first child with the same local name as tag whose
// attributes include attrs, creating it when absent.
func EnsureChild(parent *etree.Element, tag string, attrs ...Attr) *etree.Element {
	child, _ := FindOrInsert(parent, matchTag(tag, attrs), func() *etree.Element {
		return NewElement(tag, attrs...)
	})

	return child
}

// MatchesTag reports whether elem has the local name of tag and carries every
// attribute in attrs.
func MatchesTag(elem *etree.Element, tag string, attrs ...Attr) bool {
	return matchTag(tag, attrs)(elem)
}

func matchTag(tag string, attrs []Attr) func(*etree.Element) bool {
	_, local := splitTag(tag)

	return func(elem *etree.Element) bool {
		if elem.Tag != local {
			return false
		}

		for _, attr := range attrs {
			found := elem.SelectAttr(attr.Key)
			if found == nil || found.Value != attr.Value {
				return false
			}
		}

		return true
	}
}

// EnsureNamespace declares xmlns:prefix on root when it is not yet declared.
func EnsureNamespace(root *etree.Element, prefix, uri string) {
	key := "xmlns:" + prefix
	if root.SelectAttr(key) == nil {
		root.CreateAttr(key, uri)
	}
}

func splitTag(tag string) (space, local string) {
	for i := range len(tag) {
		if tag[i] == ':' {
			return tag[:i], tag[i+1:]
		}
	}

	return "", tag
}
