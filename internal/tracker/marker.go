package tracker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Verdict is the classification of one tutor reply.
type Verdict int

const (
	// VerdictQuestion means the reply carries no feedback markers; the tutor
	// is posing a new question.
	VerdictQuestion Verdict = iota
	VerdictCorrect
	VerdictIncorrect
	// VerdictAmbiguous means both positive and negative markers matched.
	// It is discarded like a question rather than guessed.
	VerdictAmbiguous
)

// String returns the verdict name.
func (v Verdict) String() string {
	switch v {
	case VerdictCorrect:
		return "correct"
	case VerdictIncorrect:
		return "incorrect"
	case VerdictAmbiguous:
		return "ambiguous"
	default:
		return "question"
	}
}

// IsFeedback reports whether the verdict grades the student's last answer.
func (v Verdict) IsFeedback() bool {
	return v == VerdictCorrect || v == VerdictIncorrect
}

// PositiveMarkers are matched against the lower-cased first line of a reply.
var PositiveMarkers = []string{
	"✅", "✔", "correct", "yes!", "excellent", "great job", "well done",
	"perfect", "right", "you got it",
}

// NegativeMarkers are matched against the lower-cased first line of a reply.
var NegativeMarkers = []string{
	"❌", "✗", "not quite", "not correct", "incorrect", "try again", "wrong", "almost",
}

// Classify inspects the first line of a tutor reply and decides whether it
// praises, corrects, or is neither.
//
// Negative phrases are matched first and their spans blanked out, so
// "not correct" never also counts as "correct". Alphabetic markers only match
// on word boundaries ("alright" is not "right").
func Classify(reply string) Verdict {
	line := FirstLine(reply)
	if line == "" {
		return VerdictQuestion
	}

	neg, rest := scan(line, NegativeMarkers)
	pos, _ := scan(rest, PositiveMarkers)

	switch {
	case pos && neg:
		return VerdictAmbiguous
	case pos:
		return VerdictCorrect
	case neg:
		return VerdictIncorrect
	default:
		return VerdictQuestion
	}
}

// FirstLine returns the reply text up to the first line break, trimmed and
// lower-cased.
func FirstLine(reply string) string {
	if i := strings.IndexAny(reply, "\r\n"); i >= 0 {
		reply = reply[:i]
	}
	return strings.ToLower(strings.TrimSpace(reply))
}

// scan reports whether any marker occurs in s, and returns s with every
// matched span replaced by spaces.
func scan(s string, markers []string) (bool, string) {
	found := false
	for _, m := range markers {
		from := 0
		for {
			i := strings.Index(s[from:], m)
			if i < 0 {
				break
			}
			i += from
			end := i + len(m)
			if bounded(s, i, end, m) {
				found = true
				s = s[:i] + strings.Repeat(" ", len(m)) + s[end:]
			}
			from = end
		}
	}
	return found, s
}

// bounded reports whether s[i:end] stands as its own word. Glyph markers
// and markers ending in punctuation are matched anywhere.
func bounded(s string, i, end int, marker string) bool {
	first, _ := utf8.DecodeRuneInString(marker)
	if !unicode.IsLetter(first) {
		return true
	}
	if i > 0 {
		prev, _ := utf8.DecodeLastRuneInString(s[:i])
		if unicode.IsLetter(prev) {
			return false
		}
	}
	last, _ := utf8.DecodeLastRuneInString(marker)
	if !unicode.IsLetter(last) {
		return true
	}
	if end < len(s) {
		next, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(next) {
			return false
		}
	}
	return true
}
