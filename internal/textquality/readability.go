// Package textquality scores extracted text to detect OCR and encoding garbage.
package textquality

import (
	"strings"
	"unicode"
)

// Gate thresholds used by the extraction pipeline.
const (
	// LineThreshold is the minimum score for a single text-layer line to be
	// considered when looking for interrogative lines.
	LineThreshold = 0.50
	// TextLayerThreshold is the minimum score for a PDF text layer to be used at all.
	TextLayerThreshold = 0.42
	// OCRThreshold is the minimum score for recovered OCR text to be accepted.
	OCRThreshold = 0.35
)

const punctuation = ".,;:!?'\"()[]{}<>-_/\\@#%&*+=~|$^`" +
	"，。、；：？！“”‘’（）《》〈〉【】「」『』…—·～％＃＆＊＋＝－／"

// IsReadable reports whether r belongs to the readable character class:
// CJK ideographs, ASCII letters and digits, and a fixed punctuation set.
func IsReadable(r rune) bool {
	switch {
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return true
	case unicode.Is(unicode.Han, r):
		return true
	default:
		return strings.ContainsRune(punctuation, r)
	}
}

// Score returns the fraction of non-whitespace runes in text that are
// readable. An empty or all-whitespace text scores 0.
func Score(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if IsReadable(r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}
