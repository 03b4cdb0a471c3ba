package llm

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
)

// WireQuestion is the question shape the model is asked to return.
type WireQuestion struct {
	Key           string   `json:"key" jsonschema:"description=Stable snake_case identifier unique within the draft"`
	Title         string   `json:"title" jsonschema:"description=Question text shown to respondents"`
	Type          string   `json:"type" jsonschema:"enum=text,enum=paragraph,enum=choice"`
	Required      bool     `json:"required"`
	Options       []string `json:"options" jsonschema:"maxItems=8,description=Choice options; empty unless type is choice"`
	CorrectAnswer string   `json:"correctAnswer" jsonschema:"description=For graded choice questions the exact text of the correct option; otherwise empty"`
	Points        float64  `json:"points" jsonschema:"minimum=0"`
}

// WireDraft is the top-level object the model is asked to return.
type WireDraft struct {
	IsQuiz      bool           `json:"isQuiz"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []WireQuestion `json:"questions" jsonschema:"minItems=1,maxItems=15"`
}

var (
	schemaOnce sync.Once
	schemaJSON string
)

// Schema reflects the JSON schema of WireDraft.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&WireDraft{})
}

// SchemaJSON returns the indented schema embedded in the system instruction.
func SchemaJSON() string {
	schemaOnce.Do(func() {
		b, err := json.MarshalIndent(Schema(), "", "  ")
		if err != nil {
			panic("llm: marshal draft schema: " + err.Error())
		}
		schemaJSON = string(b)
	})
	return schemaJSON
}
