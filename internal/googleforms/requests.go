// Package googleforms publishes drafts as Google Forms.
package googleforms

import (
	"github.com/samber/lo"
	forms "google.golang.org/api/forms/v1"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

const (
	choiceRadio        = "RADIO"
	maskDescription    = "description"
	maskQuizSettings   = "quizSettings.isQuiz"
	fieldLocationIndex = "Index"
)

// NewForm is the create call payload. Only the title can be set at creation;
// everything else goes through BuildRequests.
func NewForm(d form.Draft) *forms.Form {
	return &forms.Form{
		Info: &forms.Info{
			Title:         d.Title,
			DocumentTitle: d.Title,
		},
	}
}

// BuildRequests turns a draft into the ordered batch applied after the form
// is created: description, quiz mode when requested, then one item per
// question at its position in the draft.
func BuildRequests(d form.Draft) []*forms.Request {
	requests := make([]*forms.Request, 0, len(d.Questions)+2)

	requests = append(requests, &forms.Request{
		UpdateFormInfo: &forms.UpdateFormInfoRequest{
			Info:       &forms.Info{Description: d.Description},
			UpdateMask: maskDescription,
		},
	})

	if d.IsQuiz {
		requests = append(requests, &forms.Request{
			UpdateSettings: &forms.UpdateSettingsRequest{
				Settings:   &forms.FormSettings{QuizSettings: &forms.QuizSettings{IsQuiz: true}},
				UpdateMask: maskQuizSettings,
			},
		})
	}

	for i, q := range d.Questions {
		requests = append(requests, &forms.Request{
			CreateItem: &forms.CreateItemRequest{
				Item: &forms.Item{
					Title:        q.Title,
					QuestionItem: &forms.QuestionItem{Question: question(q, d.IsQuiz)},
				},
				// Index 0 is the zero value and would be omitted otherwise.
				Location: &forms.Location{Index: int64(i), ForceSendFields: []string{fieldLocationIndex}},
			},
		})
	}

	return requests
}

func question(q form.Question, quiz bool) *forms.Question {
	out := &forms.Question{Required: q.Required}

	if q.Type != form.TypeChoice {
		out.TextQuestion = &forms.TextQuestion{Paragraph: q.Type == form.TypeParagraph}
		return out
	}

	out.ChoiceQuestion = &forms.ChoiceQuestion{
		Type: choiceRadio,
		Options: lo.Map(q.Options, func(o string, _ int) *forms.Option {
			return &forms.Option{Value: o}
		}),
	}
	if quiz && q.HasAnswer() {
		out.Grading = &forms.Grading{
			PointValue:     int64(max(q.Points, 1)),
			CorrectAnswers: &forms.CorrectAnswers{Answers: []*forms.CorrectAnswer{{Value: q.CorrectAnswer}}},
		}
	}
	return out
}
