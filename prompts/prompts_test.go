package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCtx = ContextData{
	PersonaPrompt:            "a friendly barista in Madrid",
	TargetLanguage:           "Spanish",
	PracticeTopicDescription: "ordering coffee",
}

func TestRenderSystemPrompt_SubstitutesContext(t *testing.T) {
	prompt, err := RenderSystemPrompt(testCtx, "")
	require.NoError(t, err)

	assert.Contains(t, prompt, "a friendly barista in Madrid")
	assert.Contains(t, prompt, "learning Spanish")
	assert.Contains(t, prompt, "ordering coffee")
	assert.NotContains(t, prompt, "Global Feedback Rules")
}

func TestRenderSystemPrompt_AppendsEvaluationRules(t *testing.T) {
	prompt, err := RenderSystemPrompt(testCtx, "Always flag false friends.")
	require.NoError(t, err)

	assert.Contains(t, prompt, "**Global Feedback Rules:**")
	assert.Contains(t, prompt, "Always flag false friends.")
}

func TestRenderSystemPrompt_FallbackTopic(t *testing.T) {
	ctx := testCtx
	ctx.PracticeTopicDescription = FallbackTopicDescription
	prompt, err := RenderSystemPrompt(ctx, "")
	require.NoError(t, err)

	assert.Contains(t, prompt, "an open conversation")
}

func TestRenderTranscriptionInstruction_IsLiteralAndNonCorrective(t *testing.T) {
	prompt, err := RenderTranscriptionInstruction(testCtx)
	require.NoError(t, err)

	assert.Contains(t, prompt, "literal, verbatim transcription")
	assert.Contains(t, prompt, "Do not correct")
	assert.Contains(t, prompt, "Target Language: Spanish")
}

func TestRenderFeedbackPrompt_QuotesUserMessage(t *testing.T) {
	prompt, err := RenderFeedbackPrompt(testCtx, "", "I goed to the store")
	require.NoError(t, err)

	assert.Contains(t, prompt, `"I goed to the store"`)
	assert.Contains(t, prompt, "Actionability Mandate")
	assert.Contains(t, prompt, "Audio Analysis Protocol")
}

func TestRenderFeedbackPrompt_EmptyPreviousFeedbackBecomesNone(t *testing.T) {
	prompt, err := RenderFeedbackPrompt(testCtx, "  ", "hola")
	require.NoError(t, err)

	assert.Contains(t, prompt, "previous feedback given to the user: none")
}

func TestRenderFeedbackPrompt_CarriesPreviousFeedback(t *testing.T) {
	prompt, err := RenderFeedbackPrompt(testCtx, "- correction: use went", "hola")
	require.NoError(t, err)

	assert.Contains(t, prompt, "- correction: use went")
	assert.NotContains(t, prompt, ": none")
}
