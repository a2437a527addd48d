package opc

import (
	"strings"

	"github.com/beevik/etree"
)

const (
	ctDefaultTag      = "Default"
	ctOverrideTag     = "Override"
	ctAttrExtension   = "Extension"
	ctAttrPartName    = "PartName"
	ctAttrContentType = "ContentType"
)

// ContentTypes is the package-wide [Content_Types].xml registry.
type ContentTypes struct {
	doc *etree.Document
}

// LoadContentTypes reads the registry part from the workspace.
func LoadContentTypes(workDir string) (*ContentTypes, error) {
	doc, err := ReadXML(workDir, ContentTypesPart)
	if err != nil {
		return nil, err
	}

	return &ContentTypes{doc: doc}, nil
}

// Save writes the registry back to the workspace.
func (c *ContentTypes) Save(workDir string) error {
	return WriteXML(workDir, ContentTypesPart, c.doc)
}

// EnsureDefault registers a Default entry for extension (matched
// case-insensitively) and reports whether one was added.
func (c *ContentTypes) EnsureDefault(extension, contentType string) bool {
	_, added := FindOrInsert(c.doc.Root(),
		func(e *etree.Element) bool {
			return e.Tag == ctDefaultTag &&
				strings.EqualFold(e.SelectAttrValue(ctAttrExtension, ""), extension)
		},
		func() *etree.Element {
			return NewElement(ctDefaultTag, A(ctAttrExtension, extension), A(ctAttrContentType, contentType))
		},
	)

	return added
}

// EnsureOverride registers an Override entry for an absolute part name and
// reports whether one was added.
func (c *ContentTypes) EnsureOverride(partName, contentType string) bool {
	_, added := FindOrInsert(c.doc.Root(),
		func(e *etree.Element) bool {
			return e.Tag == ctOverrideTag && e.SelectAttrValue(ctAttrPartName, "") == partName
		},
		func() *etree.Element {
			return NewElement(ctOverrideTag, A(ctAttrPartName, partName), A(ctAttrContentType, contentType))
		},
	)

	return added
}

// Override returns the content type registered for partName.
func (c *ContentTypes) Override(partName string) (string, bool) {
	for _, elem := range c.doc.Root().ChildElements() {
		if elem.Tag == ctOverrideTag && elem.SelectAttrValue(ctAttrPartName, "") == partName {
			return elem.SelectAttrValue(ctAttrContentType, ""), true
		}
	}

	return "", false
}

// Default returns the content type registered for extension.
func (c *ContentTypes) Default(extension string) (string, bool) {
	for _, elem := range c.doc.Root().ChildElements() {
		if elem.Tag == ctDefaultTag && strings.EqualFold(elem.SelectAttrValue(ctAttrExtension, ""), extension) {
			return elem.SelectAttrValue(ctAttrContentType, ""), true
		}
	}

	return "", false
}
