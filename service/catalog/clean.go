package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

var symbols = "1234567890!@#$%^&*()-=_+[]{};\"|;'\\<>?/.,~`"

// guffParenWords are qualifiers that frequently decorate scraped song
// names but never appear in catalog track titles.
var guffParenWords = []string{
	"acoustic", "bonus", "cover", "cut", "demo", "edit", "encore", "extended",
	"instrumental", "interlude", "intro", "jam", "live", "medley", "mix",
	"orchestral", "original", "outro", "piano", "radio", "rehearsal",
	"remastered", "remaster", "remix", "reprise", "session", "short",
	"single", "snippet", "solo", "tape", "teaser", "tease", "version", "ver",
	"with", "without",
}

// QueryCleaner strips guff qualifiers from scraped song names so the
// search oracle sees the canonical title.
type QueryCleaner struct {
	titleExpressions []*regexp2.Regexp
	parenGuffExpr    *regexp2.Regexp
}

func NewQueryCleaner() *QueryCleaner {
	titlePatterns := []string{
		`(?<title>.+?)\s+(?<enclosed>\(.+\)|\[.+\]|\{.+\}|\<.+\>)$`,
		`(?<title>.+?)\s+?(?<feat>[\[\(]?(?:feat(?:uring)?|ft)\b\.?)\s*?(?<artists>.+)\s*`,
		`(?<title>.+?)(?:\s+?[\u2010\u2012\u2013\u2014~/-])(?![^(]*\))(?<dash>.*)`,
	}

	compiled := make([]*regexp2.Regexp, 0, len(titlePatterns))
	for _, pattern := range titlePatterns {
		compiled = append(compiled, regexp2.MustCompile(`(?i)`+pattern, 0))
	}

	return &QueryCleaner{
		titleExpressions: compiled,
		parenGuffExpr:    regexp2.MustCompile(`(20[0-9]{2}|19[0-9]{2})`, 0),
	}
}

// isLikelyGuff reports whether trailing paren or dash text is decoration
// rather than part of the title.
func (qc *QueryCleaner) isLikelyGuff(text string) bool {
	pt := strings.ToLower(text)
	beforeLen := utf8.RuneCountInString(pt)

	for _, guff := range guffParenWords {
		pt = strings.ReplaceAll(pt, guff, "")
	}

	pt, _ = qc.parenGuffExpr.Replace(pt, "", -1, -1)
	afterLen := utf8.RuneCountInString(pt)
	replaced := beforeLen - afterLen

	chars := 0
	guffChars := replaced
	for _, ch := range pt {
		if strings.ContainsRune(symbols, ch) {
			guffChars++
		}
		if unicode.IsLetter(ch) {
			chars++
		}
	}

	return guffChars > chars
}

// balancedBrackets reports whether every bracket pair in text is balanced;
// unbalanced input is left untouched rather than mangled.
func (qc *QueryCleaner) balancedBrackets(text string) bool {
	brackets := []struct {
		open, close rune
	}{
		{'(', ')'}, {'[', ']'}, {'{', '}'}, {'<', '>'},
	}
	for _, pair := range brackets {
		if strings.Count(text, string(pair.open)) != strings.Count(text, string(pair.close)) {
			return false
		}
	}
	return true
}

// CleanTitle strips likely guff from a scraped song name. The second
// return reports whether anything was removed.
func (qc *QueryCleaner) CleanTitle(text string) (string, bool) {
	text = strings.TrimSpace(text)

	if !qc.balancedBrackets(text) {
		return text, false
	}

	var changed bool

	for _, expr := range qc.titleExpressions {
		match, _ := expr.FindStringMatch(text)
		if match == nil {
			continue
		}

		groups := make(map[string]string)
		for _, name := range expr.GetGroupNames() {
			groups[name] = strings.TrimSpace(match.GroupByName(name).String())
		}

		if guffy := groups["enclosed"]; guffy != "" && qc.isLikelyGuff(guffy) {
			text = groups["title"]
			changed = true
			break
		}

		if feat := groups["feat"]; feat != "" {
			text = groups["title"]
			changed = true
			break
		}

		if dash := groups["dash"]; dash != "" && qc.isLikelyGuff(dash) {
			text = groups["title"]
			changed = true
			break
		}
	}

	return strings.TrimSpace(text), changed
}
