package llm

import (
	"fmt"
	"strings"

	"github.com/a3tai/mcp-form-drafter/internal/form"
)

// MaxSourceExcerpt caps how much uploaded text is sent to the model.
const MaxSourceExcerpt = 6000

// Request describes one draft generation.
type Request struct {
	Prompt string
	// Quiz requests a graded quiz; drafts without enough answers are rejected.
	Quiz bool
	// DesiredCount is the quiz length hint. Ignored unless Quiz is set.
	DesiredCount   int
	SourceFilename string
	SourceText     string
}

const systemTemplate = `你是一个表单设计助手。根据用户的需求（以及可选的上传文件内容）设计一份在线表单或测验。

规则：
- 只输出一个 JSON 对象，不要输出任何解释或 Markdown。
- questions 数量为 1 到 15 个，每个 key 唯一，使用 snake_case。
- type 只能是 text、paragraph 或 choice。
- choice 题提供 2 到 8 个选项；非 choice 题 options 为空数组、correctAnswer 为空字符串、points 为 0。
- 如果是测验（isQuiz=true），每道题都应是 choice 题，correctAnswer 必须与某个选项完全一致，points 为正数。

JSON Schema：
%s`

// SystemInstruction is the fixed instruction sent with every request.
func SystemInstruction() string {
	return fmt.Sprintf(systemTemplate, SchemaJSON())
}

// UserMessage assembles the user turn from the prompt, the quiz length
// hint, the source filename and an excerpt of the source text.
func UserMessage(req Request) string {
	var b strings.Builder

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		prompt = "（用户未提供文字需求，请根据上传文件设计表单）"
	}
	b.WriteString("用户需求：")
	b.WriteString(prompt)
	b.WriteString("\n")

	if req.Quiz {
		count := req.DesiredCount
		if count <= 0 {
			count = 8
		}
		fmt.Fprintf(&b, "这是一份测验，请生成 %d 道带正确答案的单选题，isQuiz 设为 true。\n", min(count, form.MaxQuestions))
	}

	if name := strings.TrimSpace(req.SourceFilename); name != "" {
		fmt.Fprintf(&b, "上传文件：%s\n", name)
	}
	if text := strings.TrimSpace(req.SourceText); text != "" {
		b.WriteString("文件内容摘录：\n")
		b.WriteString(form.Truncate(text, MaxSourceExcerpt))
		b.WriteString("\n")
	}

	return b.String()
}
