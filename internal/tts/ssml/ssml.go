// Package ssml converts the lightweight notes markup used in slide notes into
// SSML for the speech synthesizer.
//
// Supported markup:
//
//	[voice-name]text   a line spoken by another voice
//	. .. ...           a pause of one second per dot
//	_text_             strong emphasis
package ssml

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	voiceLine = regexp.MustCompile(`^\[([^\]]+)\](.*)$`)
	dotRun    = regexp.MustCompile(`\.+`)

	escaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
)

// Rule rewrites one markup construct.
type Rule interface {
	Apply(text string) string
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(text string) string

// Apply calls f(text).
func (f RuleFunc) Apply(text string) string { return f(text) }

// Processor applies an ordered list of rules and wraps the result in a
// <speak> element.
type Processor struct {
	rules []Rule
}

// New returns a Processor with the break, emphasis and voice rules. Voice
// runs last so that a pause at the end of a voice line is still recognized.
func New() *Processor {
	return &Processor{rules: []Rule{RuleFunc(Break), RuleFunc(Emphasis), RuleFunc(Voice)}}
}

// Transform escapes XML special characters in raw, applies the rules in
// order and wraps the result in <speak>.
func (p *Processor) Transform(raw string) string {
	text := escaper.Replace(raw)
	for _, rule := range p.rules {
		text = rule.Apply(text)
	}

	return "<speak>" + text + "</speak>"
}

// Voice wraps every line that starts with [name] in <voice name="name">.
func Voice(text string) string {
	lines := strings.SplitAfter(text, "\n")

	var out strings.Builder

	for _, line := range lines {
		body, ending := splitLineEnding(line)

		match := voiceLine.FindStringSubmatch(body)
		if match == nil {
			out.WriteString(line)

			continue
		}

		out.WriteString(`<voice name="`)
		out.WriteString(match[1])
		out.WriteString(`">`)
		out.WriteString(match[2])
		out.WriteString("</voice>")
		out.WriteString(ending)
	}

	return out.String()
}

// Break replaces whitespace-delimited runs of dots with a pause lasting one
// second per dot.
func Break(text string) string {
	matches := dotRun.FindAllStringIndex(text, -1)
	if matches == nil {
		return text
	}

	var out strings.Builder

	last := 0

	for _, match := range matches {
		start, end := match[0], match[1]
		if !spaceBefore(text, start) || !spaceAfter(text, end) {
			continue
		}

		out.WriteString(text[last:start])
		out.WriteString(`<break time="`)
		out.WriteString(strconv.Itoa(end - start))
		out.WriteString(`s"/>`)

		last = end
	}

	out.WriteString(text[last:])

	return out.String()
}

// Emphasis replaces whitespace-delimited _text_ spans with strong emphasis.
// Underscores inside a word are kept, so _my_variable_ emphasizes
// my_variable.
func Emphasis(text string) string {
	var out strings.Builder

	last := 0

	for i := 0; i < len(text); i++ {
		if text[i] != '_' || !spaceBefore(text, i) {
			continue
		}

		closing := closingUnderscore(text, i+1)
		if closing < 0 {
			continue
		}

		out.WriteString(text[last:i])
		out.WriteString(`<emphasis level="strong">`)
		out.WriteString(text[i+1 : closing])
		out.WriteString("</emphasis>")

		last = closing + 1
		i = closing
	}

	out.WriteString(text[last:])

	return out.String()
}

// closingUnderscore returns the first underscore after at least one
// character, on the same line, that is followed by whitespace or the end of
// text. It returns -1 when there is none.
func closingUnderscore(text string, from int) int {
	for j := from + 1; j < len(text); j++ {
		switch text[j] {
		case '\n':
			return -1
		case '_':
			if spaceAfter(text, j+1) {
				return j
			}
		}
	}

	return -1
}

func splitLineEnding(line string) (body, ending string) {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return line[:len(line)-2], "\r\n"
	case strings.HasSuffix(line, "\n"):
		return line[:len(line)-1], "\n"
	default:
		return line, ""
	}
}

func spaceBefore(text string, index int) bool {
	if index == 0 {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(text[:index])

	return unicode.IsSpace(r)
}

func spaceAfter(text string, index int) bool {
	if index >= len(text) {
		return true
	}

	r, _ := utf8.DecodeRuneInString(text[index:])

	return unicode.IsSpace(r)
}
