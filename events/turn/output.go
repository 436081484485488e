package turn

import "lingokit/core"

// TextDeltaEvent carries a single token of the AI's streaming reply.
type TextDeltaEvent struct {
	Delta string
}

func (e *TextDeltaEvent) GetId() string {
	return "turn.text_delta"
}

// AudioChunkEvent carries one synthesized audio chunk of the AI's reply.
type AudioChunkEvent struct {
	Chunk core.AudioChunk
}

func (e *AudioChunkEvent) GetId() string {
	return "turn.audio_chunk"
}

// TranscriptionDeltaEvent carries a partial transcript of the user's voice
// message, in the order produced by the upstream transcription stream.
type TranscriptionDeltaEvent struct {
	Delta string
}

func (e *TranscriptionDeltaEvent) GetId() string {
	return "turn.transcription_delta"
}

// FeedbackListEvent carries the language feedback on the user's last message.
// An empty list means "no issues found"; a failed feedback call is emitted
// the same way.
type FeedbackListEvent struct {
	Items []core.FeedbackItem
}

func (e *FeedbackListEvent) GetId() string {
	return "turn.feedback_list"
}

// AudioReadyEvent announces the URL of the persisted reply audio.
type AudioReadyEvent struct {
	URL string
}

func (e *AudioReadyEvent) GetId() string {
	return "turn.audio_ready"
}

// CompletedEvent is the terminal event of a turn: both join branches
// (audio persistence and feedback) have reported.
type CompletedEvent struct{}

func (e *CompletedEvent) GetId() string {
	return "turn.completed"
}

// FailedEvent is the terminal event of a turn that hit an unrecoverable
// fault. The connection survives; the turn does not.
type FailedEvent struct {
	Reason string
}

func (e *FailedEvent) GetId() string {
	return "turn.failed"
}
