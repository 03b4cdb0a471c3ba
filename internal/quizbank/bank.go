// Package quizbank holds the pre-authored quiz questions used when no LLM
// draft is available.
package quizbank

import (
	"github.com/a3tai/mcp-form-drafter/internal/form"
	"github.com/a3tai/mcp-form-drafter/internal/intent"
)

// Entry is a single pre-authored question with its correct answer.
type Entry struct {
	Key     string
	Title   string
	Options []string
	Answer  string
}

var banks = map[intent.Topic][]Entry{
	intent.TopicOpenAI: {
		{Key: "openai_company", Title: "ChatGPT 是由哪家公司推出的？", Options: []string{"OpenAI", "Google", "Meta", "Microsoft"}, Answer: "OpenAI"},
		{Key: "openai_gpt_meaning", Title: "GPT 中的 “T” 代表什么？", Options: []string{"Transformer", "Token", "Training", "Tensor"}, Answer: "Transformer"},
		{Key: "openai_token", Title: "大模型计费与上下文长度通常以什么为单位？", Options: []string{"Token", "字节", "句子", "段落"}, Answer: "Token"},
		{Key: "openai_temperature", Title: "调高 temperature 参数通常会让输出变得？", Options: []string{"更随机多样", "更确定", "更短", "更快"}, Answer: "更随机多样"},
		{Key: "openai_system_prompt", Title: "用于设定模型整体行为与角色的消息类型是？", Options: []string{"system 消息", "user 消息", "assistant 消息", "tool 消息"}, Answer: "system 消息"},
		{Key: "openai_hallucination", Title: "模型生成看似合理但与事实不符的内容，这种现象称为？", Options: []string{"幻觉", "过拟合", "欠拟合", "梯度消失"}, Answer: "幻觉"},
		{Key: "openai_embedding", Title: "把文本转换为向量以便做语义检索的接口是？", Options: []string{"Embeddings", "Moderation", "Images", "Audio"}, Answer: "Embeddings"},
		{Key: "openai_few_shot", Title: "在提示词中给出几个示例来引导模型，这种做法叫？", Options: []string{"少样本提示", "零样本提示", "微调", "蒸馏"}, Answer: "少样本提示"},
	},
	intent.TopicChina: {
		{Key: "china_capital", Title: "中国的首都是哪座城市？", Options: []string{"北京", "上海", "南京", "西安"}, Answer: "北京"},
		{Key: "china_longest_river", Title: "中国最长的河流是？", Options: []string{"长江", "黄河", "珠江", "黑龙江"}, Answer: "长江"},
		{Key: "china_highest_peak", Title: "中国境内最高的山峰是？", Options: []string{"珠穆朗玛峰", "泰山", "黄山", "峨眉山"}, Answer: "珠穆朗玛峰"},
		{Key: "china_great_wall", Title: "被称为“万里长城”的古代防御工程主要修建于哪个朝代时连成一体？", Options: []string{"秦朝", "唐朝", "宋朝", "清朝"}, Answer: "秦朝"},
		{Key: "china_inventions", Title: "以下哪项属于中国古代四大发明？", Options: []string{"造纸术", "蒸汽机", "电话", "望远镜"}, Answer: "造纸术"},
		{Key: "china_provinces", Title: "中国共有多少个省级行政区？", Options: []string{"34", "31", "28", "36"}, Answer: "34"},
		{Key: "china_currency", Title: "中国的法定货币是？", Options: []string{"人民币", "港币", "日元", "美元"}, Answer: "人民币"},
		{Key: "china_festival", Title: "农历正月初一是中国的哪个传统节日？", Options: []string{"春节", "中秋节", "端午节", "清明节"}, Answer: "春节"},
	},
}

var generic = []Entry{
	{Key: "general_planet", Title: "太阳系中体积最大的行星是？", Options: []string{"木星", "土星", "地球", "火星"}, Answer: "木星"},
	{Key: "general_water", Title: "水的化学式是？", Options: []string{"H2O", "CO2", "O2", "NaCl"}, Answer: "H2O"},
	{Key: "general_boiling", Title: "标准大气压下水的沸点是多少摄氏度？", Options: []string{"100", "90", "80", "120"}, Answer: "100"},
	{Key: "general_continents", Title: "地球上共有几个大洲？", Options: []string{"7", "5", "6", "8"}, Answer: "7"},
	{Key: "general_ocean", Title: "世界上面积最大的海洋是？", Options: []string{"太平洋", "大西洋", "印度洋", "北冰洋"}, Answer: "太平洋"},
	{Key: "general_light", Title: "光在真空中的传播速度约为每秒多少公里？", Options: []string{"30万", "3万", "300万", "3千"}, Answer: "30万"},
	{Key: "general_days", Title: "闰年的二月有多少天？", Options: []string{"29", "28", "30", "31"}, Answer: "29"},
	{Key: "general_primary_colors", Title: "以下哪种颜色属于光的三原色？", Options: []string{"绿色", "黄色", "紫色", "橙色"}, Answer: "绿色"},
	{Key: "general_binary", Title: "十进制数 2 用二进制表示是？", Options: []string{"10", "11", "01", "2"}, Answer: "10"},
	{Key: "general_hours", Title: "一天有多少小时？", Options: []string{"24", "12", "48", "36"}, Answer: "24"},
}

// HasBank reports whether topic has a dedicated answer bank.
func HasBank(topic intent.Topic) bool {
	_, ok := banks[topic]
	return ok
}

// Capacity is the most questions Draw can return for topic.
func Capacity(topic intent.Topic) int {
	return len(banks[topic]) + len(generic)
}

// Draw returns up to n graded questions for topic in bank order. Unknown
// topics draw from the generic bank; a known bank that runs out is padded
// from the generic bank.
func Draw(topic intent.Topic, n int) []form.Question {
	if n <= 0 {
		return nil
	}
	entries := append(append([]Entry(nil), banks[topic]...), generic...)
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]form.Question, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Question())
	}
	return out
}

// Question converts the entry into a required, one-point choice question.
func (e Entry) Question() form.Question {
	return form.Question{
		Key:           e.Key,
		Title:         e.Title,
		Type:          form.TypeChoice,
		Required:      true,
		Options:       append([]string(nil), e.Options...),
		CorrectAnswer: e.Answer,
		Points:        1,
	}
}
