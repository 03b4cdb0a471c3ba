package googleforms

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

var errNoQuestions = errors.New("draft has no questions")

// DecodeDraft reads a draft submitted for publishing. It accepts the draft
// object itself or a build result that wraps it under "draft".
func DecodeDraft(raw []byte) (form.Draft, error) {
	var wrapped struct {
		Draft *form.Draft `json:"draft"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return form.Draft{}, fmt.Errorf("invalid draft json: %w", err)
	}

	var d form.Draft
	if wrapped.Draft != nil {
		d = *wrapped.Draft
	} else if err := json.Unmarshal(raw, &d); err != nil {
		return form.Draft{}, fmt.Errorf("invalid draft json: %w", err)
	}
	if len(d.Questions) == 0 {
		return form.Draft{}, errNoQuestions
	}
	return d, nil
}
