package form

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}_\p{Han}]+`)

// Slugify turns a raw token into a question key: runs of characters that are
// neither word characters nor CJK collapse to "_", and the result is lowercased.
func Slugify(s string) string {
	slug := nonWordRun.ReplaceAllString(strings.TrimSpace(s), "_")
	return strings.ToLower(strings.Trim(slug, "_"))
}

// Sanitize enforces the per-question invariants: non-choice questions carry no
// options, answer or points; choice answers must be one of the options.
func Sanitize(q Question) Question {
	if q.Points < 0 {
		q.Points = 0
	}
	if q.Type != TypeChoice {
		q.Options = nil
		q.CorrectAnswer = ""
		q.Points = 0
		return q
	}
	if q.CorrectAnswer != "" && !lo.Contains(q.Options, q.CorrectAnswer) {
		q.CorrectAnswer = ""
	}
	return q
}

// Dedupe keeps the first question for every key and drops later duplicates.
// Questions with an empty key are always kept.
func Dedupe(questions []Question) []Question {
	seen := make(map[string]struct{}, len(questions))
	return lo.Filter(questions, func(q Question, _ int) bool {
		if q.Key == "" {
			return true
		}
		if _, ok := seen[q.Key]; ok {
			return false
		}
		seen[q.Key] = struct{}{}
		return true
	})
}

// Finalize sanitizes, de-duplicates and caps a question list.
func Finalize(questions []Question, limit int) []Question {
	out := Dedupe(lo.Map(questions, func(q Question, _ int) Question { return Sanitize(q) }))
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Truncate returns at most n runes of s.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
