package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt_EmbedsTextVerbatim(t *testing.T) {
	tests := []struct {
		name string
		text string
		mode Mode
	}{
		{"word", "serendipity", ModeWord},
		{"word with punctuation", "don't", ModeWord},
		{"sentence", "The quick brown fox jumps over the lazy dog.", ModeSentence},
		{"sentence with unicode", "Café culture is “different” here.", ModeSentence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPrompt(tt.text, tt.mode)
			assert.Equal(t, tt.mode, p.Mode)
			assert.Equal(t, tt.text, p.Text)
			assert.NotEmpty(t, strings.TrimSpace(p.System))
			assert.NotEmpty(t, strings.TrimSpace(p.User))
			assert.Contains(t, p.User, tt.text)
		})
	}
}

func TestBuildPrompt_WordSections(t *testing.T) {
	p := BuildPrompt("ephemeral", ModeWord)

	for _, key := range []string{`"word"`, `"phonetics"`, `"definitions"`, `"usages"`, `"examples"`, `"etymology"`, `"tips"`} {
		assert.Contains(t, p.User, key)
	}
	assert.Contains(t, p.User, "恰好3个")
	assert.Contains(t, p.User, "必须使用中文")
	assert.NotContains(t, p.User, `"translation"`)
}

func TestBuildPrompt_SentenceSections(t *testing.T) {
	sentence := "She sells sea shells."
	p := BuildPrompt(sentence, ModeSentence)

	for _, key := range []string{`"sentence"`, `"translation"`, `"structure"`, `"components"`, `"keyPhrases"`, `"grammar"`} {
		assert.Contains(t, p.User, key)
	}
	assert.Contains(t, p.User, `"sentence": "`+sentence+`"`)
	assert.Contains(t, p.User, "keyPhrases 至少3项")
	assert.Contains(t, p.User, "grammar 至少2项")
	assert.NotEqual(t, BuildPrompt(sentence, ModeWord).System, p.System)
}
