package opc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	relationshipTag  = "Relationship"
	relIDPrefix      = "rId"
	relAttrID        = "Id"
	relAttrType      = "Type"
	relAttrTarget    = "Target"
	relationshipsTag = "Relationships"
)

// Relationship is one typed edge recorded in a .rels part.
type Relationship struct {
	ID     string
	Type   string
	Target string
}

// Relationships is an in-memory .rels document.
type Relationships struct {
	doc *etree.Document
}

// NewRelationships returns an empty relationships document.
func NewRelationships() *Relationships {
	return &Relationships{doc: NewXMLDocument(relationshipsTag, A("xmlns", NamespaceRels))}
}

// ParseRelationships parses .rels bytes.
func ParseRelationships(data []byte) (*Relationships, error) {
	doc := etree.NewDocument()

	err := doc.ReadFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse relationships: %w", err)
	}

	if doc.Root() == nil {
		return nil, fmt.Errorf("failed to parse relationships: no root element")
	}

	return &Relationships{doc: doc}, nil
}

// LoadRelationships reads a .rels part and fails with RelsNotFoundError when
// it is absent.
func LoadRelationships(workDir, relsPath string) (*Relationships, error) {
	if !Exists(workDir, relsPath) {
		return nil, &RelsNotFoundError{RelsPath: relsPath}
	}

	doc, err := ReadXML(workDir, relsPath)
	if err != nil {
		return nil, err
	}

	return &Relationships{doc: doc}, nil
}

// LoadRelationshipsOrEmpty reads a .rels part, treating absence as a part
// with no relationships yet.
func LoadRelationshipsOrEmpty(workDir, relsPath string) (*Relationships, error) {
	if !Exists(workDir, relsPath) {
		return NewRelationships(), nil
	}

	return LoadRelationships(workDir, relsPath)
}

// Save writes the document to relsPath inside the workspace.
func (r *Relationships) Save(workDir, relsPath string) error {
	return WriteXML(workDir, relsPath, r.doc)
}

// All returns every relationship in document order.
func (r *Relationships) All() []Relationship {
	elems := r.elements()
	out := make([]Relationship, 0, len(elems))

	for _, elem := range elems {
		out = append(out, Relationship{
			ID:     elem.SelectAttrValue(relAttrID, ""),
			Type:   elem.SelectAttrValue(relAttrType, ""),
			Target: elem.SelectAttrValue(relAttrTarget, ""),
		})
	}

	return out
}

// TargetsByType returns the non-empty targets of every relationship of
// relType, in document order.
func (r *Relationships) TargetsByType(relType string) []string {
	var targets []string

	for _, rel := range r.All() {
		if rel.Type == relType && rel.Target != "" {
			targets = append(targets, rel.Target)
		}
	}

	return targets
}

// ByType returns every relationship of relType, in document order.
func (r *Relationships) ByType(relType string) []Relationship {
	var out []Relationship

	for _, rel := range r.All() {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}

	return out
}

// FindByTypeAndTarget returns the id of the first relationship with exactly
// this type and target.
func (r *Relationships) FindByTypeAndTarget(relType, target string) (string, bool) {
	for _, rel := range r.All() {
		if rel.Type == relType && rel.Target == target {
			return rel.ID, true
		}
	}

	return "", false
}

// Lookup returns the relationship with the given id.
func (r *Relationships) Lookup(id string) (Relationship, bool) {
	for _, rel := range r.All() {
		if rel.ID == id {
			return rel, true
		}
	}

	return Relationship{}, false
}

// NextID returns rId<max+1> over all ids of the form rId<digits>.
func (r *Relationships) NextID() string {
	highest := 0

	for _, rel := range r.All() {
		digits, ok := strings.CutPrefix(rel.ID, relIDPrefix)
		if !ok || !isDigits(digits) {
			continue
		}

		n, err := strconv.Atoi(digits)
		if err == nil && n > highest {
			highest = n
		}
	}

	return relIDPrefix + strconv.Itoa(highest+1)
}

// Add appends a relationship with an allocated id. It does not check for
// duplicates; use Ensure for that.
func (r *Relationships) Add(relType, target string) string {
	return r.AddWithID(r.NextID(), relType, target)
}

// AddWithID appends a relationship with a caller-chosen id.
func (r *Relationships) AddWithID(id, relType, target string) string {
	SubElement(r.doc.Root(), relationshipTag,
		A(relAttrID, id),
		A(relAttrType, relType),
		A(relAttrTarget, target),
	)

	return id
}

// Ensure returns the id of the relationship (relType, target), adding it
// when absent.
func (r *Relationships) Ensure(relType, target string) (id string, added bool) {
	elem, added := FindOrInsert(r.doc.Root(),
		func(e *etree.Element) bool {
			return e.Tag == relationshipTag &&
				e.SelectAttrValue(relAttrType, "") == relType &&
				e.SelectAttrValue(relAttrTarget, "") == target
		},
		func() *etree.Element {
			return NewElement(relationshipTag,
				A(relAttrID, r.NextID()),
				A(relAttrType, relType),
				A(relAttrTarget, target),
			)
		},
	)

	return elem.SelectAttrValue(relAttrID, ""), added
}

func (r *Relationships) elements() []*etree.Element {
	var out []*etree.Element

	for _, child := range r.doc.Root().ChildElements() {
		if child.Tag == relationshipTag {
			out = append(out, child)
		}
	}

	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}
