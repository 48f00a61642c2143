package analyzer

import (
	"errors"
	"strings"
	"time"
)

// Mode 决定提示词形状与校验 schema。
type Mode string

const (
	ModeWord     Mode = "word"
	ModeSentence Mode = "sentence"
)

var (
	ErrEmptyText   = errors.New("text is required")
	ErrInvalidMode = errors.New("mode must be \"word\" or \"sentence\"")
)

// ParseMode accepts the wire names used by the HTTP API and the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWord:
		return ModeWord, nil
	case ModeSentence:
		return ModeSentence, nil
	default:
		return "", ErrInvalidMode
	}
}

// Request 是一次用户提交，创建后不可变。
type Request struct {
	Text string
	Mode Mode
}

// NewRequest trims text and rejects empty input or unknown modes.
func NewRequest(text string, mode Mode) (Request, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Request{}, ErrEmptyText
	}
	if mode != ModeWord && mode != ModeSentence {
		return Request{}, ErrInvalidMode
	}
	return Request{Text: text, Mode: mode}, nil
}

// RawResult 是生成服务返回的原始文本。
type RawResult struct {
	Text      string
	Model     string
	Timestamp time.Time
}

// WordAnalysis is the word-mode contract.
type WordAnalysis struct {
	Word        string       `json:"word"`
	Phonetics   Phonetics    `json:"phonetics"`
	Definitions []Definition `json:"definitions"`
	Usages      []string     `json:"usages"`
	Examples    []Example    `json:"examples"`
	Etymology   string       `json:"etymology"`
	Tips        string       `json:"tips"`
}

type Phonetics struct {
	UK string `json:"uk"`
	US string `json:"us"`
}

type Definition struct {
	PartOfSpeech string   `json:"partOfSpeech"`
	Meanings     []string `json:"meanings"`
}

type Example struct {
	English string `json:"english"`
	Chinese string `json:"chinese"`
}

// SentenceAnalysis is the sentence-mode contract.
type SentenceAnalysis struct {
	Sentence    string         `json:"sentence"`
	Translation string         `json:"translation"`
	Structure   Structure      `json:"structure"`
	Components  []Component    `json:"components"`
	KeyPhrases  []KeyPhrase    `json:"keyPhrases"`
	Grammar     []GrammarPoint `json:"grammar"`
}

type Structure struct {
	Type        string `json:"type"`
	Explanation string `json:"explanation"`
}

type Component struct {
	Role        string `json:"role"`
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

type KeyPhrase struct {
	Phrase  string `json:"phrase"`
	Meaning string `json:"meaning"`
	Usage   string `json:"usage"`
}

type GrammarPoint struct {
	Aspect      string `json:"aspect"`
	Explanation string `json:"explanation"`
}

// Result 是一次成功分析的产物，Word 与 Sentence 恰有一个非空。
type Result struct {
	Mode     Mode              `json:"mode"`
	Word     *WordAnalysis     `json:"word,omitempty"`
	Sentence *SentenceAnalysis `json:"sentence,omitempty"`
	Render   RenderModel       `json:"render"`
}

// Analysis returns whichever validated value the result carries.
func (r Result) Analysis() any {
	if r.Word != nil {
		return r.Word
	}
	if r.Sentence != nil {
		return r.Sentence
	}
	return nil
}
