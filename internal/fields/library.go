// Package fields holds the canonical field vocabulary and maps raw field
// names or prompt tokens onto canonical question descriptors.
package fields

import (
	"github.com/a3tai/mcp-form-drafter/internal/form"
)

// Entry is one canonical field in the library.
type Entry struct {
	Key      string
	Keywords []string
	Title    string
	Type     form.QuestionType
	Required bool
	Options  []string
}

// Question returns a fresh copy of the entry as a question descriptor.
func (e Entry) Question() form.Question {
	return form.Question{
		Key:      e.Key,
		Title:    e.Title,
		Type:     e.Type,
		Required: e.Required,
		Options:  append([]string(nil), e.Options...),
	}
}

// Library is scanned in order; the first entry with a matching keyword wins.
var library = []Entry{
	{Key: "name", Keywords: []string{"姓名", "名字", "称呼", "name", "full name"}, Title: "姓名", Type: form.TypeText, Required: true},
	{Key: "email", Keywords: []string{"邮箱", "邮件", "email", "e-mail", "mail"}, Title: "邮箱", Type: form.TypeText, Required: true},
	{Key: "phone", Keywords: []string{"电话", "手机", "联系方式", "phone", "mobile"}, Title: "手机号码", Type: form.TypeText},
	{Key: "gender", Keywords: []string{"性别", "gender"}, Title: "性别", Type: form.TypeChoice, Options: []string{"男", "女", "不便透露"}},
	{Key: "age", Keywords: []string{"年龄", "age"}, Title: "年龄", Type: form.TypeText},
	{Key: "company", Keywords: []string{"公司", "单位", "机构", "company", "organization"}, Title: "公司/单位", Type: form.TypeText},
	{Key: "position", Keywords: []string{"职位", "岗位", "职务", "position", "job title"}, Title: "职位", Type: form.TypeText},
	{Key: "school", Keywords: []string{"学校", "院校", "school", "university", "college"}, Title: "学校", Type: form.TypeText},
	{Key: "major", Keywords: []string{"专业", "major"}, Title: "专业", Type: form.TypeText},
	{Key: "city", Keywords: []string{"城市", "所在地", "city"}, Title: "所在城市", Type: form.TypeText},
	{Key: "address", Keywords: []string{"地址", "住址", "address"}, Title: "联系地址", Type: form.TypeText},
	{Key: "date", Keywords: []string{"日期", "时间", "date", "time"}, Title: "日期/时间", Type: form.TypeText},
	{Key: "headcount", Keywords: []string{"人数", "headcount"}, Title: "参与人数", Type: form.TypeText},
	{Key: "resume", Keywords: []string{"简历", "resume", "cv"}, Title: "简历链接", Type: form.TypeText},
	{Key: "feedback", Keywords: []string{"建议", "意见", "反馈", "feedback", "suggestion"}, Title: "意见或建议", Type: form.TypeParagraph},
	{Key: "remark", Keywords: []string{"备注", "remark", "note", "comment"}, Title: "备注", Type: form.TypeParagraph},
}

// Lookup returns the library entry with the given key.
func Lookup(key string) (Entry, bool) {
	for _, e := range library {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Canonical returns a copy of the canonical question for key. It panics on an
// unknown key, which is a programming error.
func Canonical(key string) form.Question {
	e, ok := Lookup(key)
	if !ok {
		panic("fields: unknown canonical key " + key)
	}
	return e.Question()
}

// Match returns the first library entry with a keyword contained in text.
func Match(text string) (Entry, bool) {
	for _, e := range library {
		if e.matches(text) {
			return e, true
		}
	}
	return Entry{}, false
}

// ScanAll returns every library entry with a keyword hit in text, in library order.
func ScanAll(text string) []form.Question {
	var out []form.Question
	for _, e := range library {
		if e.matches(text) {
			out = append(out, e.Question())
		}
	}
	return out
}

func (e Entry) matches(text string) bool {
	for _, kw := range e.Keywords {
		if form.ContainsKeyword(text, kw) {
			return true
		}
	}
	return false
}
