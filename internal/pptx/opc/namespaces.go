package opc

// XML namespace URIs used by the presentation parts this package edits.
const (
	NamespaceA       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NamespaceP       = "http://schemas.openxmlformats.org/presentationml/2006/main"
	NamespaceR       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NamespaceRels    = "http://schemas.openxmlformats.org/package/2006/relationships"
	NamespaceP14     = "http://schemas.microsoft.com/office/powerpoint/2010/main"
	NamespaceA16     = "http://schemas.microsoft.com/office/drawing/2014/main"
	NamespaceCT      = "http://schemas.openxmlformats.org/package/2006/content-types"
	NamespaceDCTerms = "http://purl.org/dc/terms/"
	NamespaceXSI     = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceExtProp = "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"
)

// Relationship type URIs.
const (
	RelTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	RelTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	RelTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	RelTypeNotesMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster"
	RelTypeTheme       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
	RelTypeAudio       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/audio"
	RelTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	RelTypeMedia       = "http://schemas.microsoft.com/office/2007/relationships/media"
)

// Content types registered by the notes and audio subsystems.
const (
	ContentTypeNotesMaster = "application/vnd.openxmlformats-officedocument.presentationml.notesMaster+xml"
	ContentTypeNotesSlide  = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	ContentTypeTheme       = "application/vnd.openxmlformats-officedocument.theme+xml"
	ContentTypeMP3         = "audio/mpeg"
	ContentTypePNG         = "image/png"
)

// Well-known part paths.
const (
	PresentationPart     = "ppt/presentation.xml"
	ContentTypesPart     = "[Content_Types].xml"
	CorePropertiesPart   = "docProps/core.xml"
	AppPropertiesPart    = "docProps/app.xml"
	PrimaryThemePart     = "ppt/theme/theme1.xml"
	PresentationRelsPart = "ppt/_rels/presentation.xml.rels"
)
