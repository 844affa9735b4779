package pathtemplate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// token is either a literal run of text or a single placeholder letter.
type token struct {
	literal     string
	placeholder byte
}

// tokenize splits s into literals and %<letter> placeholders. "%%" is a literal
// percent sign, a % followed by anything other than a supported letter is kept
// literally.
func tokenize(s string) []token {
	var tokens []token
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' || i+1 >= len(s) {
			lit.WriteByte(c)
			continue
		}
		next := s[i+1]
		if next == '%' {
			lit.WriteByte('%')
			i++
			continue
		}
		if _, ok := placeholders[next]; ok {
			flush()
			tokens = append(tokens, token{placeholder: next})
			i++
			continue
		}
		lit.WriteByte(c)
	}
	flush()
	return tokens
}

// HasPlaceholder reports whether s contains at least one supported placeholder.
func HasPlaceholder(s string) bool {
	for _, tok := range tokenize(s) {
		if tok.placeholder != 0 {
			return true
		}
	}
	return false
}

// Format substitutes strftime-style placeholders in s with values from t.
// Unsupported letters are kept as written.
func Format(s string, t time.Time) string {
	var b strings.Builder
	for _, tok := range tokenize(s) {
		if tok.placeholder == 0 {
			b.WriteString(tok.literal)
			continue
		}
		b.WriteString(placeholders[tok.placeholder](t))
	}
	return b.String()
}

// placeholders maps the supported strftime letters to their rendering. Every
// rendering stays within placeholderClass; %e, %z and %Z are left out as they
// render spaces, signs or zone names such as "+03".
var placeholders = map[byte]func(t time.Time) string{
	'Y': func(t time.Time) string { return t.Format("2006") },
	'y': func(t time.Time) string { return t.Format("06") },
	'm': func(t time.Time) string { return t.Format("01") },
	'd': func(t time.Time) string { return t.Format("02") },
	'j': func(t time.Time) string { return fmt.Sprintf("%03d", t.YearDay()) },
	'H': func(t time.Time) string { return t.Format("15") },
	'I': func(t time.Time) string { return t.Format("03") },
	'M': func(t time.Time) string { return t.Format("04") },
	'S': func(t time.Time) string { return t.Format("05") },
	'p': func(t time.Time) string { return t.Format("PM") },
	'a': func(t time.Time) string { return t.Format("Mon") },
	'A': func(t time.Time) string { return t.Format("Monday") },
	'b': func(t time.Time) string { return t.Format("Jan") },
	'h': func(t time.Time) string { return t.Format("Jan") },
	'B': func(t time.Time) string { return t.Format("January") },
	'u': func(t time.Time) string {
		wd := int(t.Weekday())
		if wd == 0 {
			wd = 7
		}
		return strconv.Itoa(wd)
	},
	'w': func(t time.Time) string { return strconv.Itoa(int(t.Weekday())) },
	'V': func(t time.Time) string {
		_, week := t.ISOWeek()
		return fmt.Sprintf("%02d", week)
	},
	'G': func(t time.Time) string {
		year, _ := t.ISOWeek()
		return strconv.Itoa(year)
	},
	's': func(t time.Time) string { return strconv.FormatInt(t.Unix(), 10) },
}

// placeholderClass is what each placeholder matches when collecting artifacts.
// It is deliberately loose so that artifacts written with another locale or an
// older template still match.
const placeholderClass = "[0-9a-zA-Z]+"

// ToRegex converts a single path segment into an anchored regular expression.
// Literal text is quoted and every placeholder matches placeholderClass.
func ToRegex(segment string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, tok := range tokenize(segment) {
		if tok.placeholder == 0 {
			b.WriteString(regexp.QuoteMeta(tok.literal))
			continue
		}
		b.WriteString(placeholderClass)
	}
	b.WriteByte('$')
	return b.String()
}
