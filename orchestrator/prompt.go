package orchestrator

import (
	"lingokit/core"
	"lingokit/prompts"
)

// buildPrompt appends the user message to history and assembles the full
// message list for the chat completion: rendered system prompt first, then
// the entire history including the new message. Voice turns keep their audio
// attached to the history message. The system prompt is re-rendered every
// turn so persona or topic switches take effect immediately.
func (o *TurnOrchestrator) buildPrompt(userText string, userAudio []byte, turnCtx *TurnContext, evaluationRules string) ([]core.ChatMessage, error) {
	userMessage := core.UserMessage(userText)
	if len(userAudio) > 0 {
		userMessage.Media = &[]core.ChatMedia{{Data: userAudio, MediaType: core.ChatMediaTypeAudioWAV}}
	}
	o.history = append(o.history, userMessage)

	systemPrompt, err := prompts.RenderSystemPrompt(prompts.ContextData{
		PersonaPrompt:            turnCtx.PersonaPrompt,
		TargetLanguage:           turnCtx.TargetLanguage,
		PracticeTopicDescription: turnCtx.PracticeTopicDescription,
	}, evaluationRules)
	if err != nil {
		return nil, err
	}

	messages := make([]core.ChatMessage, 0, len(o.history)+1)
	messages = append(messages, core.SystemMessage(systemPrompt))
	messages = append(messages, o.history...)
	return messages, nil
}
