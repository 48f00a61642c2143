package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hiSentenceJSON = `{"sentence":"Hi.","translation":"嗨。","structure":{"type":"simple","explanation":"x"},"components":[{"role":"s","text":"Hi","explanation":"y"}],"keyPhrases":[{"phrase":"Hi","meaning":"嗨","usage":"greeting"}],"grammar":[{"aspect":"tense","explanation":"none"}]}`

func TestExtract_FencedWithCommentary(t *testing.T) {
	raw := "Here you go:\n```json\n" + hiSentenceJSON + "\n```\nHope that helps!"

	got, err := Extract(raw, ModeSentence)
	require.NoError(t, err)
	assert.Equal(t, hiSentenceJSON, got)

	plain, err := Extract(hiSentenceJSON, ModeSentence)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestExtract_Idempotent(t *testing.T) {
	inputs := []string{
		"```\n{\"a\": 1}\n```",
		"prefix {\"a\": {\"b\": 2}} suffix",
		"  {\"text\": \"braces { inside } strings\"}  ",
		"Sure! ```JSON\n{\"k\":\"v\"}```",
	}
	for _, in := range inputs {
		once, err := Extract(in, ModeWord)
		require.NoError(t, err, in)
		twice, err := Extract(once, ModeWord)
		require.NoError(t, err, in)
		assert.Equal(t, once, twice, in)
	}
}

func TestExtract_NoStructure(t *testing.T) {
	inputs := []string{
		"",
		"I'm sorry, I can't help with that.",
		"only an opening { brace",
		"only a closing } brace",
		"} reversed {",
		"```json\n```",
	}
	for _, in := range inputs {
		_, err := Extract(in, ModeSentence)
		require.Error(t, err, in)
		ae, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindNoStructureFound, ae.Kind)
		assert.Equal(t, ModeSentence, ae.Mode)
		assert.Equal(t, "extraction", ae.Kind.Stage())
	}
}

func TestExtract_IncidentalBracesInProse(t *testing.T) {
	raw := "Note {this}.\n```json\n{\"a\":1}\n```\nUse {it} well."
	got, err := Extract(raw, ModeWord)
	require.NoError(t, err)
	// first "{" to last "}" spans the prose braces too; validation rejects it later
	assert.Equal(t, "{this}.\n\n{\"a\":1}\n\nUse {it}", got)
}

func TestExtractFormat_MarkupPassesThrough(t *testing.T) {
	raw := "```html\n<div class=\"word\"><h1>hello</h1></div>\n```"
	got, err := ExtractFormat(raw, FormatMarkup)
	require.NoError(t, err)
	assert.Equal(t, `<div class="word"><h1>hello</h1></div>`, got)

	again, err := ExtractFormat(got, FormatMarkup)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatOf(ModeWord))
	assert.Equal(t, FormatJSON, FormatOf(ModeSentence))
}
