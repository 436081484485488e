package core

import "fmt"

// DataIntegrityError indicates a referenced entity id that does not resolve
// to a stored record. Fatal to the turn but not to the connection.
type DataIntegrityError struct {
	Entity string
	ID     int64
	Err    error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("data integrity: %s %d not found", e.Entity, e.ID)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }

// TranscriptionError wraps a failed speech-to-text call. Fatal for audio
// turns: there is no silent-transcript fallback.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// SynthesisError wraps a failed speech-synthesis stream. Absorbed in the
// response-generation stage: the turn completes with text and empty audio.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// FeedbackError wraps a failed feedback completion. Absorbed in the feedback
// stage: the turn completes with an empty feedback list.
type FeedbackError struct {
	Err error
}

func (e *FeedbackError) Error() string {
	return fmt.Sprintf("feedback generation failed: %v", e.Err)
}

func (e *FeedbackError) Unwrap() error { return e.Err }
