package analyzer

import (
	"regexp"
	"strings"
)

// Format 是某个模式期望模型输出的形状。
type Format int

const (
	FormatJSON Format = iota
	// FormatMarkup 模型直接输出模板标记，提取时不做截取。
	FormatMarkup
)

var modeFormats = map[Mode]Format{
	ModeWord:     FormatJSON,
	ModeSentence: FormatJSON,
}

// FormatOf returns the output format expected for mode.
func FormatOf(mode Mode) Format {
	if f, ok := modeFormats[mode]; ok {
		return f
	}
	return FormatJSON
}

// fenceRe matches opening and closing code fence markers with an optional language tag.
var fenceRe = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// Extract isolates the candidate payload from raw model text for mode.
func Extract(raw string, mode Mode) (string, error) {
	candidate, err := ExtractFormat(raw, FormatOf(mode))
	if ae, ok := AsError(err); ok {
		ae.Mode = mode
	}
	return candidate, err
}

// ExtractFormat 去掉代码块标记和前后说明文字。JSON 取第一个 "{" 到最后一个 "}"。
// 对自身输出重复调用结果不变。
func ExtractFormat(raw string, format Format) (string, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	if format == FormatMarkup {
		return text, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < 0 || end < start {
		return "", newError(KindNoStructureFound, "no JSON object in model output", nil)
	}
	return text[start : end+1], nil
}
