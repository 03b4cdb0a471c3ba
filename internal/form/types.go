// Package form defines the question and draft model handed to the forms-creation collaborator.
package form

// QuestionType is the kind of form item a question maps to.
type QuestionType string

const (
	TypeText      QuestionType = "text"
	TypeParagraph QuestionType = "paragraph"
	TypeChoice    QuestionType = "choice"
)

// Limits on draft and question shape.
const (
	MaxQuestions  = 15
	MinOptions    = 2
	MaxOptions    = 8
	MaxSourceText = 12000
)

// GenerationMode records which generator produced a draft.
type GenerationMode string

const (
	ModeLLM  GenerationMode = "llm"
	ModeRule GenerationMode = "rule"
)

// Question is a single form item.
type Question struct {
	Key           string       `json:"key"`
	Title         string       `json:"title"`
	Type          QuestionType `json:"type"`
	Required      bool         `json:"required"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	Points        int          `json:"points,omitempty"`
}

// Draft is the assembled title, description and ordered question list.
type Draft struct {
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Questions      []Question     `json:"questions"`
	IsQuiz         bool           `json:"isQuiz"`
	GenerationMode GenerationMode `json:"generationMode"`
	LLMModelUsed   *string        `json:"llmModelUsed"`
	NeedLLMForQuiz bool           `json:"needLlmForQuiz"`
}

// IsValidType reports whether t is one of the known question types.
func IsValidType(t QuestionType) bool {
	switch t {
	case TypeText, TypeParagraph, TypeChoice:
		return true
	default:
		return false
	}
}

// Clone returns a deep copy of q so table entries are never shared.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]string(nil), q.Options...)
	}
	return c
}

// HasAnswer reports whether q carries a usable correct answer.
func (q Question) HasAnswer() bool {
	return q.Type == TypeChoice && q.CorrectAnswer != ""
}
