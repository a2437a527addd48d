package timing_test

import (
	"strconv"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/slide-voice/internal/pptx/timing"
)

const bareSlide = `<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
	`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:sp><p:nvSpPr><p:cNvPr id="4" name="Title"/></p:nvSpPr></p:sp></p:spTree></p:cSld>` +
	`<p:extLst><p:ext uri="{BB962C8B-B14F-4D97-AF65-F5344CB8AC3E}"/></p:extLst></p:sld>`

func parseSlide(t *testing.T, xml string) *etree.Element {
	t.Helper()

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(xml))

	return doc.Root()
}

func commandDelays(t *testing.T, slide *etree.Element) []int {
	t.Helper()

	var delays []int

	for _, par := range timing.CommandParent(slide).SelectElements("par") {
		cond := par.FindElement("./cTn/stCondLst/cond[@delay]")
		require.NotNil(t, cond)

		delay, err := strconv.Atoi(cond.SelectAttrValue("delay", ""))
		require.NoError(t, err)

		delays = append(delays, delay)
	}

	return delays
}

func TestAddNarration_DelaysFollowInsertionOrder(t *testing.T) {
	t.Parallel()

	for _, count := range []int{0, 1, 2, 5} {
		t.Run(strconv.Itoa(count), func(t *testing.T) {
			t.Parallel()

			slide := parseSlide(t, bareSlide)

			for i := range count {
				narration := timing.AddNarration(slide, 10+i, timing.DefaultVolume)
				assert.Equal(t, i, narration.Delay)
			}

			if count == 0 {
				assert.Nil(t, slide.SelectElement("timing"))

				return
			}

			delays := commandDelays(t, slide)
			require.Len(t, delays, count)

			expected := make([]int, count)
			for i := range count {
				expected[i] = count - 1 - i
			}

			assert.Equal(t, expected, delays)
			assert.Len(t, timing.RootChildList(slide).SelectElements("audio"), count)
		})
	}
}

func TestAddNarration_SecondInsertionPrecedesFirst(t *testing.T) {
	t.Parallel()

	slide := parseSlide(t, bareSlide)

	first := timing.AddNarration(slide, 5, timing.DefaultVolume)
	second := timing.AddNarration(slide, 6, timing.DefaultVolume)

	assert.Equal(t, 0, first.Delay)
	assert.Equal(t, 1, second.Delay)

	commands := timing.CommandParent(slide).SelectElements("par")
	require.Len(t, commands, 2)
	assert.Equal(t, "6", commands[0].FindElement(".//spTgt").SelectAttrValue("spid", ""))
	assert.Equal(t, "5", commands[1].FindElement(".//spTgt").SelectAttrValue("spid", ""))

	audios := timing.RootChildList(slide).SelectElements("audio")
	require.Len(t, audios, 2)
	assert.Equal(t, "6", audios[0].FindElement(".//spTgt").SelectAttrValue("spid", ""))
	assert.Equal(t, "80000", audios[0].SelectElement("cMediaNode").SelectAttrValue("vol", ""))
}

func TestAddNarration_TimeNodeIDsAreUnique(t *testing.T) {
	t.Parallel()

	slide := parseSlide(t, bareSlide)

	for i := range 3 {
		timing.AddNarration(slide, 20+i, timing.DefaultVolume)
	}

	seen := map[string]bool{}
	for _, cTn := range slide.FindElements(".//cTn") {
		id := cTn.SelectAttrValue("id", "")
		require.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate cTn id %s", id)
		seen[id] = true
	}

	assert.Equal(t, len(seen), timing.MaxTimeNodeID(slide))
}

func TestAddNarration_TimingPrecedesExtensionList(t *testing.T) {
	t.Parallel()

	slide := parseSlide(t, bareSlide)
	timing.AddNarration(slide, 5, timing.DefaultVolume)

	children := slide.ChildElements()
	require.Len(t, children, 3)
	assert.Equal(t, "timing", children[1].Tag)
	assert.Equal(t, "extLst", children[2].Tag)
}

func TestAddNarration_ReusesTreeFromEarlierSession(t *testing.T) {
	t.Parallel()

	slide := parseSlide(t, bareSlide)
	timing.AddNarration(slide, 5, timing.DefaultVolume)

	saved := etree.NewDocument()
	saved.SetRoot(slide.Copy())

	xml, err := saved.WriteToString()
	require.NoError(t, err)

	reopened := parseSlide(t, xml)
	narration := timing.AddNarration(reopened, 6, timing.DefaultVolume)

	assert.Equal(t, 1, narration.Delay)
	assert.Len(t, reopened.FindElements(".//seq"), 1)
	assert.Len(t, reopened.FindElements(".//prevCondLst"), 1)
	assert.Len(t, reopened.FindElements(".//nextCondLst"), 1)
	assert.Equal(t, []int{1, 0}, commandDelays(t, reopened))
}

func TestNextDelay_IgnoresNonNumericDelays(t *testing.T) {
	t.Parallel()

	parent := etree.NewElement("p:childTnLst")
	par := parent.CreateElement("p:par")
	cTn := par.CreateElement("p:cTn")
	cond := cTn.CreateElement("p:stCondLst").CreateElement("p:cond")
	cond.CreateAttr("delay", "indefinite")

	assert.Equal(t, 0, timing.NextDelay(parent))

	parent.InsertChildAt(0, timing.NewCommandNode(3, 7, 100))
	assert.Equal(t, 8, timing.NextDelay(parent))
}

func TestMaxShapeID(t *testing.T) {
	t.Parallel()

	slide := parseSlide(t, bareSlide)
	assert.Equal(t, 4, timing.MaxShapeID(slide))
	assert.Equal(t, 0, timing.MaxTimeNodeID(slide))

	timing.AddNarration(slide, 9, timing.DefaultVolume)
	assert.Equal(t, 9, timing.MaxShapeID(slide))
}
