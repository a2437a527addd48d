// Package text normalizes speaker notes into text a speech engine reads
// naturally. Line structure and the pause, emphasis and voice markers the
// markup rules look for are preserved.
package text

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	numberBaseTen      = 10
	numberBaseTwenty   = 20
	numberBaseHundred  = 100
	numberBaseThousand = 1000
	// maxNumberForWords is the largest integer spelled out; larger numbers
	// are left as digits.
	maxNumberForWords = 999999
)

var (
	urlPattern       = regexp.MustCompile(`https?://\S+`)
	referencePattern = regexp.MustCompile(`\[\d+\]|\(\d+\)|[¹²³⁴⁵⁶⁷⁸⁹⁰]+`)
	citationPattern  = regexp.MustCompile(`\([^)]*\d{4}[^)]*\)`)
	numberPattern    = regexp.MustCompile(`\b\d+\b`)
	blankRunPattern  = regexp.MustCompile(`[ \t\f\v]+`)
)

// Normalizer rewrites notes text for speech.
type Normalizer struct {
	abbreviations *strings.Replacer
	punctuation   *strings.Replacer
	spellNumbers  bool
}

// Option customizes a Normalizer.
type Option func(*Normalizer)

// WithNumbersAsDigits leaves integers as digits instead of spelling them
// out.
func WithNumbersAsDigits() Option {
	return func(n *Normalizer) { n.spellNumbers = false }
}

// NewNormalizer returns a Normalizer for English notes.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		abbreviations: strings.NewReplacer(
			"Mr.", "Mister",
			"Mrs.", "Misses",
			"Ms.", "Miss",
			"Dr.", "Doctor",
			"St.", "Saint",
			"Co.", "Company",
			"Ltd.", "Limited",
			"Corp.", "Corporation",
			"Inc.", "Incorporated",
			"e.g.", "for example",
			"i.e.", "that is",
			"vs.", "versus",
		),
		punctuation: strings.NewReplacer(
			"—", " - ",
			"–", "-",
			"‒", "-",
			"…", "...",
			"“", `"`, "”", `"`,
			"‘", "'", "’", "'",
		),
		spellNumbers: true,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Transform normalizes every line of raw.
func (n *Normalizer) Transform(raw string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = n.normalizeLine(line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func (n *Normalizer) normalizeLine(line string) string {
	urls := urlPattern.FindAllString(line, -1)
	line = urlPattern.ReplaceAllString(line, "\x00")

	line = n.punctuation.Replace(line)
	line = n.abbreviations.Replace(line)
	line = citationPattern.ReplaceAllString(line, "")
	line = referencePattern.ReplaceAllString(line, "")

	if n.spellNumbers {
		line = spellIntegers(line)
	}

	for _, url := range urls {
		line = strings.Replace(line, "\x00", url, 1)
	}

	return strings.TrimSpace(blankRunPattern.ReplaceAllString(line, " "))
}

// spellIntegers spells out standalone integers. Digits that are part of a
// decimal, a grouped number or a version string are kept.
func spellIntegers(line string) string {
	var out strings.Builder

	last := 0

	for _, loc := range numberPattern.FindAllStringIndex(line, -1) {
		start, end := loc[0], loc[1]
		if partOfLargerNumber(line, start, end) {
			continue
		}

		number, err := strconv.Atoi(line[start:end])
		if err != nil {
			continue
		}

		out.WriteString(line[last:start])
		out.WriteString(integerToWords(number))

		last = end
	}

	out.WriteString(line[last:])

	return out.String()
}

func partOfLargerNumber(line string, start, end int) bool {
	if start >= 2 && isJoiner(line[start-1]) && isDigit(line[start-2]) {
		return true
	}

	return end+1 < len(line) && isJoiner(line[end]) && isDigit(line[end+1])
}

func isJoiner(b byte) bool { return b == '.' || b == ',' || b == ':' }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

var (
	ones = []string{
		"", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine",
	}
	teens = []string{
		"ten", "eleven", "twelve", "thirteen", "fourteen",
		"fifteen", "sixteen", "seventeen", "eighteen", "nineteen",
	}
	tens = []string{
		"", "", "twenty", "thirty", "forty", "fifty",
		"sixty", "seventy", "eighty", "ninety",
	}
)

func underHundred(number int) string {
	switch {
	case number < numberBaseTen:
		return ones[number]
	case number < numberBaseTwenty:
		return teens[number-numberBaseTen]
	case number%numberBaseTen == 0:
		return tens[number/numberBaseTen]
	default:
		return tens[number/numberBaseTen] + " " + ones[number%numberBaseTen]
	}
}

func underThousand(number int) string {
	if number < numberBaseHundred {
		return underHundred(number)
	}

	result := ones[number/numberBaseHundred] + " hundred"
	if rest := number % numberBaseHundred; rest > 0 {
		result += " " + underHundred(rest)
	}

	return result
}

// integerToWords spells out 0..999999 in English.
func integerToWords(number int) string {
	if number < 0 || number > maxNumberForWords {
		return strconv.Itoa(number)
	}

	if number == 0 {
		return "zero"
	}

	var parts []string

	if thousands := number / numberBaseThousand; thousands > 0 {
		parts = append(parts, underThousand(thousands)+" thousand")
	}

	if rest := number % numberBaseThousand; rest > 0 {
		parts = append(parts, underThousand(rest))
	}

	return strings.Join(parts, " ")
}
