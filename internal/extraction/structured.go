package extraction

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/a3tai/mcp-form-drafter/internal/fields"
	"github.com/a3tai/mcp-form-drafter/internal/form"
)

const byteOrderMark = "\uFEFF"

var headerSeparator = regexp.MustCompile(`[,\t;]`)

// CSVFieldNames returns the header cells of the first non-empty line.
func CSVFieldNames(data []byte) []string {
	text := strings.TrimPrefix(decodeText(data), byteOrderMark)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(line, byteOrderMark))
		if line == "" {
			continue
		}
		cells := lo.Map(headerSeparator.Split(line, -1), func(cell string, _ int) string {
			return strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), `"'`))
		})
		return lo.Compact(cells)
	}
	return nil
}

// JSONFieldNames returns the keys of the payload's object, or of the first
// element when the payload is an array of objects, in document order.
// Anything else, including invalid JSON, yields no names.
func JSONFieldNames(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte(byteOrderMark))
	if !json.Valid(data) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}

	switch tok {
	case json.Delim('{'):
		return objectKeys(dec)
	case json.Delim('['):
		next, err := dec.Token()
		if err != nil || next != json.Delim('{') {
			return nil
		}
		return objectKeys(dec)
	default:
		return nil
	}
}

// objectKeys reads the keys of the object whose opening brace was just
// consumed, skipping over values.
func objectKeys(dec *json.Decoder) []string {
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
		if strings.TrimSpace(key) != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// FieldQuestions maps raw field names to questions through the field
// normalizer, keeping the first question for each key.
func FieldQuestions(names []string) []form.Question {
	questions := make([]form.Question, 0, len(names))
	for _, name := range names {
		if q, ok := fields.Normalize(name); ok {
			questions = append(questions, q)
		}
	}
	return form.Finalize(questions, form.MaxQuestions)
}

func decodeText(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
