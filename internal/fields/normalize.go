package fields

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

// PendingSuffix is appended to titles synthesized from raw tokens.
const PendingSuffix = "（请填写）"

var (
	markerPattern = regexp.MustCompile(`^\s*(?:[-*•·●○▪■□◆◇►]+|\d{1,3}\s*[.、)）:：]|[（(]\s*\d{1,3}\s*[)）]|[一二三四五六七八九十]{1,3}\s*[、.．)）]|[a-zA-Z]\s*[.)）]\s+)\s*`)

	fillerWords = []string{"我想要", "我要", "帮我", "需要", "收集", "包含", "包括", "字段", "信息", "请"}

	paragraphHints = []string{"备注", "说明", "描述", "建议", "comment", "note", "description", "feedback"}
)

// StripMarker removes one leading bullet or ordinal marker from s.
func StripMarker(s string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(s, ""))
}

// HasMarker reports whether s starts with a bullet or ordinal marker.
func HasMarker(s string) bool {
	return markerPattern.MatchString(s)
}

// Clean strips a leading marker and filler words from a raw token.
func Clean(raw string) string {
	s := StripMarker(raw)
	for _, w := range fillerWords {
		s = strings.ReplaceAll(s, w, "")
	}
	return strings.Trim(strings.TrimSpace(s), "：:，,。.、;；")
}

// IsParagraphHint reports whether text suggests a free-form multi-line answer.
func IsParagraphHint(text string) bool {
	for _, h := range paragraphHints {
		if form.ContainsKeyword(text, h) {
			return true
		}
	}
	return false
}

// Normalize maps a raw field name or token to a question descriptor. Library
// matches return a copy of the canonical descriptor; anything else becomes an
// optional text or paragraph question keyed by the slugified token. The
// boolean is false when nothing usable remains after cleaning.
func Normalize(raw string) (form.Question, bool) {
	token := Clean(raw)
	if token == "" {
		return form.Question{}, false
	}
	if e, ok := Match(token); ok {
		return e.Question(), true
	}

	key := form.Slugify(token)
	if key == "" {
		return form.Question{}, false
	}
	qtype := form.TypeText
	if IsParagraphHint(token) {
		qtype = form.TypeParagraph
	}
	return form.Question{
		Key:   key,
		Title: Prettify(token) + PendingSuffix,
		Type:  qtype,
	}, true
}

// Prettify turns underscores and hyphens into spaces and capitalizes each word.
func Prettify(token string) string {
	token = strings.NewReplacer("_", " ", "-", " ").Replace(token)
	words := strings.Fields(token)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
