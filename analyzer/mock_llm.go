package analyzer

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// MockGenerator 一个本地占位实现，便于离线调试，不调用外部模型。
// 输出故意带上代码块和说明文字，与真实模型的常见输出一致。
type MockGenerator struct{}

func (MockGenerator) Generate(ctx context.Context, prompt Prompt, _ GenerationConfig) (RawResult, error) {
	if err := ctx.Err(); err != nil {
		return RawResult{}, newError(KindTransport, "request canceled by caller", err)
	}

	var payload any
	if prompt.Mode == ModeWord {
		payload = mockWord(prompt.Text)
	} else {
		payload = mockSentence(prompt.Text)
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return RawResult{}, newError(KindMalformedUpstreamResponse, "mock payload", err)
	}

	var sb strings.Builder
	sb.WriteString("以下是分析结果：\n\n")
	sb.WriteString("```json\n")
	sb.Write(data)
	sb.WriteString("\n```\n")
	return RawResult{Text: sb.String(), Model: "mock", Timestamp: time.Now()}, nil
}

func mockWord(word string) WordAnalysis {
	return WordAnalysis{
		Word:      word,
		Phonetics: Phonetics{UK: "/mɒk/", US: "/mɑːk/"},
		Definitions: []Definition{
			{PartOfSpeech: "n.", Meanings: []string{"示例释义"}},
		},
		Usages: []string{word + " something"},
		Examples: []Example{
			{English: "This is the first " + word + ".", Chinese: "这是第一个示例。"},
			{English: "This is the second " + word + ".", Chinese: "这是第二个示例。"},
			{English: "This is the third " + word + ".", Chinese: "这是第三个示例。"},
		},
		Etymology: "离线模式生成的占位词源。",
		Tips:      "离线模式生成的占位记忆技巧。",
	}
}

func mockSentence(sentence string) SentenceAnalysis {
	return SentenceAnalysis{
		Sentence:    sentence,
		Translation: "离线模式生成的占位翻译。",
		Structure:   Structure{Type: "简单句", Explanation: "占位结构说明。"},
		Components: []Component{
			{Role: "整句", Text: sentence, Explanation: "占位成分说明。"},
		},
		KeyPhrases: []KeyPhrase{
			{Phrase: sentence, Meaning: "占位含义", Usage: "占位用法"},
		},
		Grammar: []GrammarPoint{
			{Aspect: "占位语法点", Explanation: "占位语法说明。"},
		},
	}
}
