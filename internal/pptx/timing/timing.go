// Package timing builds the animation timing tree of a slide so that
// narration clips inserted on the slide play automatically.
//
// Layout maintained under p:sld:
//
//	p:timing/p:tnLst/p:par/p:cTn[tmRoot]/p:childTnLst          audio parent
//	  p:audio ...                                              one per clip
//	  p:seq/p:cTn[mainSeq]/p:childTnLst/p:par/p:cTn/p:childTnLst command parent
//	    p:par (delay N) -> p:par -> p:cTn[mediacall] -> p:cmd playFrom(0.0)
//
// Every call re-derives its position from the live tree.
package timing

import (
	"strconv"

	"github.com/beevik/etree"

	"github.com/book-expert/slide-voice/internal/pptx/opc"
)

// DefaultVolume is the cMediaNode volume PowerPoint writes for narration.
const DefaultVolume = 80000

// Narration describes one timing insertion result.
type Narration struct {
	ShapeID     int
	Delay       int
	CommandID   int
	AudioNodeID int
}

// RootChildList ensures p:timing/p:tnLst/p:par/p:cTn(tmRoot)/p:childTnLst
// exists under slide and returns the childTnLst. The root cTn gets an id
// only when it lacks one.
func RootChildList(slide *etree.Element) *etree.Element {
	timing := ensureTiming(slide)
	tnLst := opc.EnsureChild(timing, "p:tnLst")
	par := opc.EnsureChild(tnLst, "p:par")
	rootCTn := opc.EnsureChild(par, "p:cTn",
		opc.A("dur", "indefinite"),
		opc.A("restart", "never"),
		opc.A("nodeType", "tmRoot"),
	)
	assignID(slide, rootCTn)

	return opc.EnsureChild(rootCTn, "p:childTnLst")
}

// CommandParent ensures the main sequence and its first click group exist and
// returns the childTnLst that holds narration command nodes. The sequence
// navigation conditions are created once and reused.
func CommandParent(slide *etree.Element) *etree.Element {
	rootList := RootChildList(slide)

	seq := opc.EnsureChild(rootList, "p:seq", opc.A("concurrent", "1"), opc.A("nextAc", "seek"))
	seqCTn := opc.EnsureChild(seq, "p:cTn", opc.A("dur", "indefinite"), opc.A("nodeType", "mainSeq"))
	assignID(slide, seqCTn)

	seqList := opc.EnsureChild(seqCTn, "p:childTnLst")
	group := opc.EnsureChild(seqList, "p:par")
	groupCTn := opc.EnsureChild(group, "p:cTn", opc.A("fill", "hold"))
	assignID(slide, groupCTn)

	stCondLst := ensureFirst(groupCTn, "p:stCondLst")
	opc.EnsureChild(stCondLst, "p:cond", opc.A("delay", "indefinite"))
	onBegin := opc.EnsureChild(stCondLst, "p:cond", opc.A("evt", "onBegin"), opc.A("delay", "0"))
	opc.EnsureChild(onBegin, "p:tn", opc.A("val", seqCTn.SelectAttrValue("id", "")))

	commandParent := opc.EnsureChild(groupCTn, "p:childTnLst")

	ensureNavigation(seq, "p:prevCondLst", "onPrev")
	ensureNavigation(seq, "p:nextCondLst", "onNext")

	return commandParent
}

// NextDelay returns 1 + the largest numeric start delay among the command
// nodes directly under commandParent, or 0 when there are none.
func NextDelay(commandParent *etree.Element) int {
	highest := -1

	for _, cond := range commandParent.FindElements("./par/cTn/stCondLst/cond[@delay]") {
		value := cond.SelectAttrValue("delay", "")
		if !isDigits(value) {
			continue
		}

		delay, err := strconv.Atoi(value)
		if err == nil && delay > highest {
			highest = delay
		}
	}

	return highest + 1
}

// AddNarration wires one auto-playing narration for the shape spid into the
// slide timing tree. The command node is inserted first under the command
// parent and the audio node first under the root child list; playback order
// follows the delay value.
func AddNarration(slide *etree.Element, spid, volume int) Narration {
	commandParent := CommandParent(slide)
	audioParent := RootChildList(slide)

	commandID := MaxTimeNodeID(slide) + 1
	delay := NextDelay(commandParent)
	commandParent.InsertChildAt(0, NewCommandNode(spid, delay, commandID))

	audioID := MaxTimeNodeID(slide) + 1
	audioParent.InsertChildAt(0, NewAudioNode(spid, audioID, volume))

	return Narration{
		ShapeID:     spid,
		Delay:       delay,
		CommandID:   commandID,
		AudioNodeID: audioID,
	}
}

// NewCommandNode builds the p:par that calls playFrom(0.0) on spid after
// delay. It uses the three cTn ids baseID, baseID+1 and baseID+2.
func NewCommandNode(spid, delay, baseID int) *etree.Element {
	par := opc.NewElement("p:par")
	outer := opc.SubElement(par, "p:cTn", opc.A("id", strconv.Itoa(baseID)), opc.A("fill", "hold"))

	stCondLst := opc.SubElement(outer, "p:stCondLst")
	opc.SubElement(stCondLst, "p:cond", opc.A("delay", strconv.Itoa(delay)))

	outerList := opc.SubElement(outer, "p:childTnLst")
	innerPar := opc.SubElement(outerList, "p:par")
	inner := opc.SubElement(innerPar, "p:cTn",
		opc.A("id", strconv.Itoa(baseID+1)),
		opc.A("presetID", "1"),
		opc.A("presetClass", "mediacall"),
		opc.A("presetSubtype", "0"),
		opc.A("fill", "hold"),
		opc.A("nodeType", "afterEffect"),
	)

	innerCond := opc.SubElement(inner, "p:stCondLst")
	opc.SubElement(innerCond, "p:cond", opc.A("delay", "0"))

	innerList := opc.SubElement(inner, "p:childTnLst")
	cmd := opc.SubElement(innerList, "p:cmd", opc.A("type", "call"), opc.A("cmd", "playFrom(0.0)"))
	behavior := opc.SubElement(cmd, "p:cBhvr")
	opc.SubElement(behavior, "p:cTn", opc.A("id", strconv.Itoa(baseID+2)), opc.A("dur", "1"), opc.A("fill", "hold"))
	target := opc.SubElement(behavior, "p:tgtEl")
	opc.SubElement(target, "p:spTgt", opc.A("spid", strconv.Itoa(spid)))

	return par
}

// NewAudioNode builds the p:audio media node for spid, ending when the
// slide stops audio.
func NewAudioNode(spid, timingID, volume int) *etree.Element {
	audio := opc.NewElement("p:audio")
	media := opc.SubElement(audio, "p:cMediaNode", opc.A("vol", strconv.Itoa(volume)), opc.A("showWhenStopped", "0"))

	cTn := opc.SubElement(media, "p:cTn", opc.A("id", strconv.Itoa(timingID)), opc.A("fill", "hold"), opc.A("display", "0"))
	stCondLst := opc.SubElement(cTn, "p:stCondLst")
	opc.SubElement(stCondLst, "p:cond", opc.A("delay", "indefinite"))

	endCondLst := opc.SubElement(cTn, "p:endCondLst")
	cond := opc.SubElement(endCondLst, "p:cond", opc.A("evt", "onStopAudio"), opc.A("delay", "0"))
	slideTarget := opc.SubElement(cond, "p:tgtEl")
	opc.SubElement(slideTarget, "p:sldTgt")

	shapeTarget := opc.SubElement(media, "p:tgtEl")
	opc.SubElement(shapeTarget, "p:spTgt", opc.A("spid", strconv.Itoa(spid)))

	return audio
}

// ensureTiming returns p:timing, inserting it before p:extLst when the slide
// carries an extension list.
func ensureTiming(slide *etree.Element) *etree.Element {
	for _, child := range slide.ChildElements() {
		if child.Tag == "timing" {
			return child
		}
	}

	timing := opc.NewElement("p:timing")

	ext := slide.SelectElement("extLst")
	if ext == nil {
		slide.AddChild(timing)
	} else {
		slide.InsertChildAt(ext.Index(), timing)
	}

	return timing
}

// ensureFirst returns the child tag of parent, creating it as the first
// element child so it precedes p:childTnLst.
func ensureFirst(parent *etree.Element, tag string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if opc.MatchesTag(child, tag) {
			return child
		}
	}

	elem := opc.NewElement(tag)
	parent.InsertChildAt(0, elem)

	return elem
}

func ensureNavigation(seq *etree.Element, listTag, event string) {
	list := opc.EnsureChild(seq, listTag)
	cond := opc.EnsureChild(list, "p:cond", opc.A("evt", event), opc.A("delay", "0"))
	target := opc.EnsureChild(cond, "p:tgtEl")
	opc.EnsureChild(target, "p:sldTgt")
}

func assignID(slide, cTn *etree.Element) {
	if cTn.SelectAttr("id") != nil {
		return
	}

	cTn.CreateAttr("id", strconv.Itoa(MaxTimeNodeID(slide)+1))
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
