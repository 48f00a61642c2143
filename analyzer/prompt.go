package analyzer

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给生成服务的一轮消息。
type Prompt struct {
	Mode   Mode
	Text   string
	System string
	User   string
}

const (
	wordSystem     = "你是一个专业的英语教师助手，擅长解析英语单词。请只返回约定格式的JSON对象，不要输出任何额外说明。"
	sentenceSystem = "你是一个专业的英语教师助手，擅长解析英语句子结构。请只返回约定格式的JSON对象，不要输出任何额外说明。"
)

// BuildPrompt 根据模式生成提示词。text 原样嵌入，调用方负责保证其非空。
func BuildPrompt(text string, mode Mode) Prompt {
	if mode == ModeWord {
		return Prompt{Mode: mode, Text: text, System: wordSystem, User: buildWordPrompt(text)}
	}
	return Prompt{Mode: ModeSentence, Text: text, System: sentenceSystem, User: buildSentencePrompt(text)}
}

func buildWordPrompt(word string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("请以JSON格式提供英语单词\"%s\"的详细分析，包括以下内容：\n", word))
	sb.WriteString("1. 单词拼写和音标（英式和美式）\n")
	sb.WriteString("2. 所有词性及对应的中文释义\n")
	sb.WriteString("3. 常见用法和搭配\n")
	sb.WriteString("4. 恰好3个包含该单词的例句（英文+中文翻译）\n")
	sb.WriteString("5. 词源和记忆技巧（必须使用中文解释）\n\n")
	sb.WriteString("格式要求：\n")
	sb.WriteString(`{
  "word": "单词",
  "phonetics": {
    "uk": "英式音标",
    "us": "美式音标"
  },
  "definitions": [
    {
      "partOfSpeech": "词性",
      "meanings": ["中文释义1", "中文释义2"]
    }
  ],
  "usages": ["常见搭配1", "常见搭配2"],
  "examples": [
    {"english": "英文例句1", "chinese": "中文翻译1"},
    {"english": "英文例句2", "chinese": "中文翻译2"},
    {"english": "英文例句3", "chinese": "中文翻译3"}
  ],
  "etymology": "词源简介（请使用中文）",
  "tips": "记忆技巧（请使用中文）"
}`)
	sb.WriteString("\n\n请确保JSON格式正确可被直接解析；无论输入是什么语言，释义、词源和记忆技巧都必须使用中文解释。")
	return sb.String()
}

func buildSentencePrompt(sentence string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("请严格按照JSON格式提供对英语句子\"%s\"的详细解析。\n\n", sentence))
	sb.WriteString("要求：\n")
	sb.WriteString("1. 必须返回符合JSON规范的数据\n")
	sb.WriteString("2. 不要包含任何额外的解释性文字\n")
	sb.WriteString("3. 所有字符串必须使用双引号而不是单引号\n")
	sb.WriteString("4. sentence 字段原样返回输入句子\n")
	sb.WriteString("5. components 按句中出现顺序列出，每项标注句法角色\n")
	sb.WriteString("6. keyPhrases 至少3项，grammar 至少2项\n\n")
	sb.WriteString("格式要求：\n")
	sb.WriteString("{\n")
	sb.WriteString(fmt.Sprintf("  \"sentence\": \"%s\",\n", sentence))
	sb.WriteString(`  "translation": "整体中文翻译",
  "structure": {
    "type": "句子类型",
    "explanation": "结构解释"
  },
  "components": [
    {
      "text": "句子片段",
      "role": "句法角色",
      "explanation": "解释"
    }
  ],
  "keyPhrases": [
    {
      "phrase": "短语或词汇",
      "meaning": "含义",
      "usage": "用法说明"
    }
  ],
  "grammar": [
    {
      "aspect": "语法点",
      "explanation": "详细解释"
    }
  ]
}`)
	return sb.String()
}
