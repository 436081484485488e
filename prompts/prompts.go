// Package prompts renders the system, transcription and feedback prompts from
// the resolved turn context and the operator-configured evaluation rules.
package prompts

import (
	"strings"
	"text/template"
)

// FallbackTopicDescription is substituted when no practice topic is selected
// or the selected topic cannot be resolved.
const FallbackTopicDescription = "an open conversation"

// ContextData holds the flat prompt-context mapping produced by the context
// resolver.
type ContextData struct {
	PersonaPrompt            string
	TargetLanguage           string
	PracticeTopicDescription string
}

const contextBlock = `
**Conversation Context:**
- Target Language: {{.TargetLanguage}}
- AI Persona: {{.PersonaPrompt}}
- Practice Topic: {{.PracticeTopicDescription}}
`

const systemPromptText = `You are an AI language tutor. You are acting as {{.PersonaPrompt}}.
The user is learning {{.TargetLanguage}}. Your conversation must be primarily in this language.
Your responses must be concise to encourage the user to speak. Never use Markdown formatting.
The user is practicing the following topic: {{.PracticeTopicDescription}}.
{{- if .EvaluationRules}}

**Global Feedback Rules:**
{{.EvaluationRules}}
{{- end}}`

const transcriptionPromptText = `You are transcribing audio from a language learner.
{{template "context" .}}
**Instructions:**
Provide a literal, verbatim transcription of their speech.
Do not correct any grammatical errors, mispronunciations, or phrasing.
The raw, uncorrected text is required for accurate feedback.
Transcribe the whole audio, every part of it, even parts that do not look like words.`

const feedbackPromptText = `You are an AI language coach. Your task is to provide feedback on a user's message based on the context provided.
{{template "context" .}}
**Analysis Rules:**
1. **Actionability Mandate:** Analyze the user's message. Generate feedback ONLY for specific, actionable errors or areas for improvement. If the message is correct and requires no changes, you MUST return an empty list of feedback. Do not provide generic praise.
2. **Stateful Context:** Consider the previous feedback given to the user: {{.PreviousFeedback}}. Do not repeat feedback for issues the user has successfully corrected. Focus on new or persistent errors.

**Feedback Type Rules:**
- Use 'correction' for clear grammatical or vocabulary errors.
- Use 'suggestion' for stylistic improvements or better phrasing.
- Use 'tip' for general advice related to the language.
- Use 'pronunciation' for any audio-related feedback.

**Audio Analysis Protocol (Only if audio is provided):**
When analyzing audio, provide specific and detailed comments on the user's speech. Focus on:
- **Pronunciation:** Comment on the clarity of individual words or sounds.
- **Intonation:** Describe the melodic rise and fall of their voice.
- **Rhythm:** Comment on the pacing and stress patterns of their speech.

**User's message:**
"{{.UserMessage}}"`

var (
	systemTmpl        = template.Must(template.New("system").Parse(systemPromptText))
	transcriptionTmpl = template.Must(
		template.Must(template.New("transcription").Parse(transcriptionPromptText)).
			New("context").Parse(strings.TrimSpace(contextBlock) + "\n"))
	feedbackTmpl = template.Must(
		template.Must(template.New("feedback").Parse(feedbackPromptText)).
			New("context").Parse(strings.TrimSpace(contextBlock) + "\n"))
)

type systemData struct {
	ContextData
	EvaluationRules string
}

type feedbackData struct {
	ContextData
	PreviousFeedback string
	UserMessage      string
}

// RenderSystemPrompt renders the persona system prompt. The evaluation rules
// are an operator-configured free-text block appended verbatim; empty rules
// render nothing.
func RenderSystemPrompt(ctx ContextData, evaluationRules string) (string, error) {
	var sb strings.Builder
	err := systemTmpl.Execute(&sb, systemData{ContextData: ctx, EvaluationRules: strings.TrimSpace(evaluationRules)})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTranscriptionInstruction renders the literal, non-corrective
// transcription instruction. Correction must not happen at this stage: the
// feedback pass needs the raw text.
func RenderTranscriptionInstruction(ctx ContextData) (string, error) {
	var sb strings.Builder
	if err := transcriptionTmpl.Lookup("transcription").Execute(&sb, ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderFeedbackPrompt renders the structured-feedback instruction.
// previousFeedback is the serialized feedback of the prior turn, used to
// suppress repeats; pass "none" when there is none.
func RenderFeedbackPrompt(ctx ContextData, previousFeedback, userMessage string) (string, error) {
	if strings.TrimSpace(previousFeedback) == "" {
		previousFeedback = "none"
	}
	var sb strings.Builder
	err := feedbackTmpl.Lookup("feedback").Execute(&sb, feedbackData{
		ContextData:      ctx,
		PreviousFeedback: previousFeedback,
		UserMessage:      userMessage,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
