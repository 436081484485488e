package orchestrator

import (
	"context"
	"strings"

	"lingokit/core"
	"lingokit/events/turn"
)

// runResponseStage streams the chat completion, relaying each text delta to
// the listener and feeding it into the synthesis session at the same time.
// It returns the accumulated reply audio as raw PCM. A failed synthesis
// session degrades the turn to text-only (nil PCM, nil error); a failed chat
// stream is fatal. Exactly one assistant message is appended to history on
// every path, so pairing survives even a partial reply.
func (o *TurnOrchestrator) runResponseStage(ctx context.Context, turnID string, messages []core.ChatMessage, voiceID string) ([]byte, error) {
	textDeltas := make(chan string)
	ttsText := make(chan string, 16)
	audioChan := make(chan core.AudioChunk)

	var ttsErr error
	ttsDone := make(chan struct{})
	go func() {
		defer close(ttsDone)
		defer close(audioChan)
		ttsErr = o.deps.Speech.StreamSpeech(ctx, voiceID, ttsText, audioChan)
	}()

	var pcm []byte
	var audioSeconds float64
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for chunk := range audioChan {
			if chunk.Data != nil {
				pcm = append(pcm, *chunk.Data...)
				audioSeconds += chunk.GetDurationInSeconds()
			}
			o.emit(ctx, turnID, "ResponseStage", &turn.AudioChunkEvent{Chunk: chunk})
		}
	}()

	llmErrChan := make(chan error, 1)
	go func() {
		llmErrChan <- o.deps.LLM.StreamChat(ctx, messages, textDeltas)
		close(textDeltas)
	}()

	var reply strings.Builder
	forwarding := true
	for delta := range textDeltas {
		reply.WriteString(delta)
		o.emit(ctx, turnID, "ResponseStage", &turn.TextDeltaEvent{Delta: delta})
		if forwarding {
			// A dead synthesis session must not stall the text stream.
			select {
			case ttsText <- delta:
			case <-ttsDone:
				forwarding = false
			case <-ctx.Done():
				forwarding = false
			}
		}
	}
	close(ttsText)
	llmErr := <-llmErrChan
	<-ttsDone
	<-collectorDone

	o.history = append(o.history, core.AssistantMessage(reply.String()))

	if llmErr != nil {
		return nil, llmErr
	}
	if ttsErr != nil {
		o.logger.With(map[string]any{"turn_id": turnID, "error": ttsErr}).Warn("speech synthesis degraded, completing turn without audio")
		return nil, nil
	}
	o.logger.With(map[string]any{"turn_id": turnID, "audio_seconds": audioSeconds}).Debug("reply synthesis complete")
	return pcm, nil
}
