package opc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		source, target, expected string
	}{
		{"ppt/slides/slide1.xml", "../notesSlides/notesSlide1.xml", "ppt/notesSlides/notesSlide1.xml"},
		{"ppt/presentation.xml", "slides/slide2.xml", "ppt/slides/slide2.xml"},
		{"ppt/notesMasters/notesMaster1.xml", "../theme/theme2.xml", "ppt/theme/theme2.xml"},
		{"ppt/slides/slide1.xml", "./../media/./media1.mp3", "ppt/media/media1.mp3"},
		{"ppt/presentation.xml", "/ppt/slides/slide1.xml", "ppt/slides/slide1.xml"},
		{"ppt/slides/slide3.xml", "/ppt/notesSlides/../notesSlides/notesSlide3.xml", "ppt/notesSlides/notesSlide3.xml"},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, opc.Resolve(testCase.source, testCase.target))
	}
}

func TestRelativize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		source, dest, expected string
	}{
		{"ppt/slides/slide1.xml", "ppt/notesSlides/notesSlide1.xml", "../notesSlides/notesSlide1.xml"},
		{"ppt/presentation.xml", "ppt/notesMasters/notesMaster1.xml", "notesMasters/notesMaster1.xml"},
		{"ppt/notesSlides/notesSlide3.xml", "ppt/slides/slide3.xml", "../slides/slide3.xml"},
		{"ppt/slides/slide1.xml", "ppt/slides/slide2.xml", "slide2.xml"},
		{"[Content_Types].xml", "ppt/presentation.xml", "ppt/presentation.xml"},
	}

	for _, testCase := range testCases {
		target := opc.Relativize(testCase.source, testCase.dest)
		assert.Equal(t, testCase.expected, target)
		assert.Equal(t, testCase.dest, opc.Resolve(testCase.source, target))
	}
}

func TestRelsPathFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ppt/slides/_rels/slide4.xml.rels", opc.RelsPathFor("ppt/slides/slide4.xml"))
	assert.Equal(t, "ppt/_rels/presentation.xml.rels", opc.RelsPathFor(opc.PresentationPart))
}

func TestPartName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/ppt/notesSlides/notesSlide1.xml", opc.PartName("ppt/notesSlides/notesSlide1.xml"))
	assert.Equal(t, "/ppt/theme/theme2.xml", opc.PartName("/ppt/theme/theme2.xml"))
}
