package orchestrator

import (
	"context"
	"strings"

	"lingokit/core"
	"lingokit/events/turn"
	"lingokit/prompts"
)

// runFeedbackStage analyzes the user's message independently of the reply
// path. A failed completion is absorbed into an empty list, so the listener
// always receives exactly one feedback event per turn and the remembered
// last-turn feedback is always replaced, never carried over.
func (o *TurnOrchestrator) runFeedbackStage(ctx context.Context, turnID string, turnCtx *TurnContext, userText string, audio []byte) {
	prompt, err := prompts.RenderFeedbackPrompt(prompts.ContextData{
		PersonaPrompt:            turnCtx.PersonaPrompt,
		TargetLanguage:           turnCtx.TargetLanguage,
		PracticeTopicDescription: turnCtx.PracticeTopicDescription,
	}, formatFeedbackItems(o.lastFeedback), userText)

	var items []core.FeedbackItem
	if err == nil {
		items, err = o.deps.LLM.GenerateFeedback(ctx, prompt, audio)
	}
	if err != nil {
		err = &core.FeedbackError{Err: err}
		o.logger.With(map[string]any{"turn_id": turnID, "error": err}).Error("feedback generation failed, delivering empty list")
		items = nil
	}
	if items == nil {
		items = []core.FeedbackItem{}
	}

	o.lastFeedback = items
	o.emit(ctx, turnID, "FeedbackStage", &turn.FeedbackListEvent{Items: items})
}

// formatFeedbackItems renders the previous turn's feedback for prompt
// injection. Empty input yields an empty string; the template substitutes
// its own placeholder.
func formatFeedbackItems(items []core.FeedbackItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(string(item.Kind))
		b.WriteString(": ")
		b.WriteString(item.Reasoning)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
