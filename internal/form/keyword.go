package form

import (
	"strings"
	"unicode/utf8"
)

// ContainsKeyword does a case-insensitive containment check. ASCII keywords
// must sit on word boundaries so "age" does not match "message". Other
// keywords, such as CJK terms, match anywhere.
func ContainsKeyword(text, keyword string) bool {
	return containsKeyword(text, keyword, true)
}

// ContainsWordPrefix is like ContainsKeyword but only requires an ASCII
// keyword to start a word, so "quiz" matches "quizzes" while "api" does not
// match "capital".
func ContainsWordPrefix(text, keyword string) bool {
	return containsKeyword(text, keyword, false)
}

func containsKeyword(text, keyword string, wholeWord bool) bool {
	text = strings.ToLower(text)
	keyword = strings.ToLower(keyword)
	if keyword == "" {
		return false
	}
	if !isASCII(keyword) {
		return strings.Contains(text, keyword)
	}
	for start := 0; start <= len(text)-len(keyword); {
		i := strings.Index(text[start:], keyword)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(keyword)
		if !isASCIIWordByte(text, i-1) && (!wholeWord || !isASCIIWordByte(text, end)) {
			return true
		}
		start = i + 1
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isASCIIWordByte(s string, i int) bool {
	if i < 0 || i >= len(s) {
		return false
	}
	c := s[i]
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}
