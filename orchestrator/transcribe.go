package orchestrator

import (
	"context"

	"lingokit/events/turn"
	"lingokit/prompts"
)

// runTranscriptionStage converts the voice payload to text, relaying partial
// transcripts to the listener as they arrive. An empty transcript is a valid
// outcome (silent or unintelligible audio); only an upstream failure is
// fatal. The returned transcript stands in for typed text everywhere
// downstream.
func (o *TurnOrchestrator) runTranscriptionStage(ctx context.Context, turnID string, wav []byte, turnCtx *TurnContext) (string, error) {
	instruction, err := prompts.RenderTranscriptionInstruction(prompts.ContextData{
		PersonaPrompt:            turnCtx.PersonaPrompt,
		TargetLanguage:           turnCtx.TargetLanguage,
		PracticeTopicDescription: turnCtx.PracticeTopicDescription,
	})
	if err != nil {
		return "", err
	}

	deltas := make(chan string)
	relay := make(chan struct{})
	go func() {
		defer close(relay)
		for delta := range deltas {
			o.emit(ctx, turnID, "TranscriptionStage", &turn.TranscriptionDeltaEvent{Delta: delta})
		}
	}()

	transcript, err := o.deps.LLM.Transcribe(ctx, wav, instruction, deltas)
	close(deltas)
	<-relay
	if err != nil {
		return "", err
	}
	return transcript, nil
}
