package analyzer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// RenderModel 是展示层消费的稳定结构。所有文本均来自模型，展示前需按不可信内容处理。
type RenderModel struct {
	Mode     Mode      `json:"mode"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Sections []Section `json:"sections"`
}

type Section struct {
	Key     string  `json:"key"`
	Heading string  `json:"heading"`
	Entries []Entry `json:"entries"`
}

type Entry struct {
	Label string `json:"label,omitempty"`
	Text  string `json:"text"`
	Note  string `json:"note,omitempty"`
}

// ToRenderModel maps a validated *WordAnalysis or *SentenceAnalysis.
// Any other input yields an empty model.
func ToRenderModel(v any) RenderModel {
	switch a := v.(type) {
	case *WordAnalysis:
		return wordRenderModel(a)
	case *SentenceAnalysis:
		return sentenceRenderModel(a)
	default:
		return RenderModel{}
	}
}

func wordRenderModel(w *WordAnalysis) RenderModel {
	defs := make([]Entry, 0, len(w.Definitions))
	for _, d := range w.Definitions {
		defs = append(defs, Entry{Label: d.PartOfSpeech, Text: strings.Join(d.Meanings, "；")})
	}
	usages := make([]Entry, 0, len(w.Usages))
	for _, u := range w.Usages {
		usages = append(usages, Entry{Text: u})
	}
	examples := make([]Entry, 0, len(w.Examples))
	for _, e := range w.Examples {
		examples = append(examples, Entry{Text: e.English, Note: e.Chinese})
	}
	return RenderModel{
		Mode:     ModeWord,
		Title:    w.Word,
		Subtitle: fmt.Sprintf("英 %s  美 %s", w.Phonetics.UK, w.Phonetics.US),
		Sections: []Section{
			{Key: "definitions", Heading: "释义", Entries: defs},
			{Key: "usages", Heading: "常见用法", Entries: usages},
			{Key: "examples", Heading: "例句", Entries: examples},
			{Key: "etymology", Heading: "词源", Entries: []Entry{{Text: w.Etymology}}},
			{Key: "tips", Heading: "记忆技巧", Entries: []Entry{{Text: w.Tips}}},
		},
	}
}

func sentenceRenderModel(s *SentenceAnalysis) RenderModel {
	components := make([]Entry, 0, len(s.Components))
	for _, c := range s.Components {
		components = append(components, Entry{Label: c.Role, Text: c.Text, Note: c.Explanation})
	}
	phrases := make([]Entry, 0, len(s.KeyPhrases))
	for _, p := range s.KeyPhrases {
		phrases = append(phrases, Entry{Label: p.Phrase, Text: p.Meaning, Note: p.Usage})
	}
	grammar := make([]Entry, 0, len(s.Grammar))
	for _, g := range s.Grammar {
		grammar = append(grammar, Entry{Label: g.Aspect, Text: g.Explanation})
	}
	return RenderModel{
		Mode:     ModeSentence,
		Title:    s.Sentence,
		Subtitle: s.Translation,
		Sections: []Section{
			{Key: "structure", Heading: "句子结构", Entries: []Entry{{Label: s.Structure.Type, Text: s.Structure.Explanation}}},
			{Key: "components", Heading: "句子成分", Entries: components},
			{Key: "keyPhrases", Heading: "关键词汇与短语", Entries: phrases},
			{Key: "grammar", Heading: "语法分析", Entries: grammar},
		},
	}
}

// Markdown renders the model as a Markdown document.
func (m RenderModel) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# " + inline(m.Title) + "\n\n")
	if m.Subtitle != "" {
		sb.WriteString(inline(m.Subtitle) + "\n\n")
	}
	for _, sec := range m.Sections {
		sb.WriteString("## " + sec.Heading + "\n\n")
		for _, e := range sec.Entries {
			sb.WriteString("- ")
			if e.Label != "" {
				sb.WriteString("**" + inline(e.Label) + "** ")
			}
			sb.WriteString(inline(e.Text))
			if e.Note != "" {
				sb.WriteString("  \n  " + inline(e.Note))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML 用 goldmark 转换 Markdown。模型文本已在 inline 中转义，输出里只有本包生成的结构标记。
func (m RenderModel) HTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(m.Markdown()), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// inline 把多行文本压成一行并转义 Markdown 标点，模型文本只会作为字面文本出现。
func inline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownPunct, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// markdownPunct is the ASCII punctuation CommonMark allows to be backslash-escaped.
const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
