package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/a3tai/mcp-form-drafter/internal/fields"
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/textquality"
)

const (
	// MinTextRunes is the shortest normalized text worth extracting from.
	MinTextRunes = 20

	maxInterrogative = 15
	maxListItems     = 12
	minListItems     = 3
	maxSentences     = 8
	maxFieldLines    = 30

	paragraphTitleRunes = 36
	sentencePrefix      = "请根据文档内容说明："
)

var (
	blankLineRun      = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
	questionMarker    = regexp.MustCompile(`^(?i)(?:q|问|问题)\s*\d*\s*[:：.、]`)
	sentenceBoundary  = regexp.MustCompile(`[。！？!?；;\n]+|\.(?:\s+|$)`)
	bareURL           = regexp.MustCompile(`^(?i)(?:https?://|www\.)\S+$`)
	interrogativeEnds = []string{"?", "？", "吗"}
)

// strategy turns normalized text into candidate questions. An empty result
// hands over to the next strategy.
type strategy func(text string) []form.Question

var textStrategies = []strategy{
	interrogativeLines,
	listItems,
	declarativeSentences,
	bareFieldNames,
}

// NormalizeText strips control characters, unifies line endings, collapses
// runs of blank lines, applies NFC and trims.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError || r == '\uFEFF' {
			return -1
		}
		return r
	}, text)
	text = norm.NFC.String(text)
	text = blankLineRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ExtractQuestions runs the text strategies in order and returns the first
// non-empty result. Text shorter than MinTextRunes yields nothing.
func ExtractQuestions(text string) []form.Question {
	normalized := NormalizeText(text)
	if utf8.RuneCountInString(normalized) < MinTextRunes {
		return nil
	}
	for _, s := range textStrategies {
		if questions := s(normalized); len(questions) > 0 {
			return form.Finalize(questions, form.MaxQuestions)
		}
	}
	return nil
}

func interrogativeLines(text string) []form.Question {
	var questions []form.Question
	for _, line := range splitLines(text) {
		if len(questions) == maxInterrogative {
			break
		}
		if textquality.Score(line) < textquality.LineThreshold {
			continue
		}
		n := utf8.RuneCountInString(line)
		if n < 4 || n > 120 {
			continue
		}
		asks := isInterrogative(line)
		if !asks && !questionMarker.MatchString(line) {
			continue
		}

		title := line
		if !asks {
			title += fields.PendingSuffix
		}
		qtype := form.TypeText
		if n > paragraphTitleRunes {
			qtype = form.TypeParagraph
		}
		questions = append(questions, form.Question{
			Key:   fmt.Sprintf("pdf_q_%d", len(questions)+1),
			Title: title,
			Type:  qtype,
		})
	}
	return questions
}

func listItems(text string) []form.Question {
	var items []string
	for _, line := range splitLines(text) {
		if !fields.HasMarker(line) {
			continue
		}
		item := fields.StripMarker(line)
		if n := utf8.RuneCountInString(item); n < 2 || n > 60 {
			continue
		}
		items = append(items, item)
	}
	if len(items) < minListItems {
		return nil
	}
	if len(items) > maxListItems {
		items = items[:maxListItems]
	}

	questions := make([]form.Question, 0, len(items))
	for i, item := range items {
		qtype := form.TypeText
		if fields.IsParagraphHint(item) {
			qtype = form.TypeParagraph
		}
		questions = append(questions, form.Question{
			Key:   fmt.Sprintf("pdf_list_%d", i+1),
			Title: item + fields.PendingSuffix,
			Type:  qtype,
		})
	}
	return questions
}

func declarativeSentences(text string) []form.Question {
	var questions []form.Question
	for _, fragment := range sentenceBoundary.Split(text, -1) {
		if len(questions) == maxSentences {
			break
		}
		sentence := strings.TrimSpace(fragment)
		if n := utf8.RuneCountInString(sentence); n < 8 || n > 72 {
			continue
		}
		if bareURL.MatchString(sentence) {
			continue
		}
		questions = append(questions, form.Question{
			Key:   fmt.Sprintf("pdf_sentence_%d", len(questions)+1),
			Title: sentencePrefix + sentence,
			Type:  form.TypeParagraph,
		})
	}
	return questions
}

func bareFieldNames(text string) []form.Question {
	lines := splitLines(text)
	if len(lines) > maxFieldLines {
		lines = lines[:maxFieldLines]
	}

	var questions []form.Question
	for _, line := range lines {
		if utf8.RuneCountInString(line) > 40 {
			continue
		}
		name := fields.StripMarker(line)
		if utf8.RuneCountInString(name) < 2 {
			continue
		}
		if q, ok := fields.Normalize(name); ok {
			questions = append(questions, q)
		}
	}
	return form.Finalize(questions, form.MaxQuestions)
}

// splitLines returns the trimmed non-empty lines of text.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isInterrogative(line string) bool {
	for _, end := range interrogativeEnds {
		if strings.HasSuffix(line, end) {
			return true
		}
	}
	return false
}
