// Package orchestrator implements the turn pipeline: one user message fans
// out into transcription (voice turns), streamed response generation with
// concurrent incremental speech synthesis, audio persistence and an
// independent feedback pass, all surfaced to the live listener as turn
// events and joined before the turn is declared finished.
package orchestrator

import (
	"context"
	"errors"

	"github.com/sourcegraph/conc"

	"lingokit/core"
	"lingokit/events/turn"
	"lingokit/store"
)

// LLMService is the upstream LLM capability consumed by the pipeline.
type LLMService interface {
	// StreamChat sends each reply delta to outChan in arrival order and
	// returns when the stream ends. The caller owns outChan.
	StreamChat(ctx context.Context, messages []core.ChatMessage, outChan chan<- string) error
	// GenerateFeedback returns typed feedback items for the rendered
	// feedback prompt; audio, when non-nil, is attached for richer analysis.
	GenerateFeedback(ctx context.Context, prompt string, audio []byte) ([]core.FeedbackItem, error)
	// Transcribe runs speech-to-text over a WAV payload, sending partial
	// transcripts to deltaChan in upstream order, and returns the full text.
	Transcribe(ctx context.Context, wav []byte, instruction string, deltaChan chan<- string) (string, error)
}

// SpeechService is the duplex synthesis channel: text fragments in, raw
// audio chunks out, output drained once the input channel closes.
type SpeechService interface {
	StreamSpeech(ctx context.Context, voiceID string, textChan <-chan string, audioChan chan<- core.AudioChunk) error
}

// AudioPersister writes accumulated reply audio to durable storage and
// returns a retrievable URL.
type AudioPersister interface {
	Persist(ctx context.Context, pcm []byte) (string, error)
}

// Repository surfaces needed from the store.
type (
	PersonaStore interface {
		Get(ctx context.Context, id int64) (*store.Persona, error)
	}
	ProfileStore interface {
		Get(ctx context.Context, id int64) (*store.LanguageProfile, error)
	}
	SettingsStore interface {
		Get(ctx context.Context) (*store.Settings, error)
	}
)

// TurnRequest is one inbound user message with its routing ids.
type TurnRequest struct {
	Text              string // set for text turns
	Audio             []byte // set for voice turns: mono 16-bit PCM WAV (or G.711, decoded by the transport)
	PersonaID         int64
	LanguageProfileID int64
	PracticeTopicID   *int64
}

// IsAudio reports whether this is a voice turn.
func (r *TurnRequest) IsAudio() bool {
	return len(r.Audio) > 0
}

// TurnContext is the flat prompt-context mapping resolved for one turn.
type TurnContext struct {
	PersonaPrompt            string
	TargetLanguage           string
	PracticeTopicDescription string
}

// TurnState tracks the orchestrator through one turn. Persistence and
// feedback run concurrently inside StateJoining; the join record decides
// when the composite phase is over.
type TurnState int

const (
	StateIdle TurnState = iota
	StateStarted
	StateTranscribing
	StatePromptPending
	StateGenerating
	StateJoining
	StateJoined
	StateStopped
	StateFailed
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateTranscribing:
		return "transcribing"
	case StatePromptPending:
		return "prompt_pending"
	case StateGenerating:
		return "generating"
	case StateJoining:
		return "joining"
	case StateJoined:
		return "joined"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Dependencies bundles everything a TurnOrchestrator needs.
type Dependencies struct {
	LLM       LLMService
	Speech    SpeechService
	Persister AudioPersister
	Personas  PersonaStore
	Profiles  ProfileStore
	Settings  SettingsStore
	Logger    *core.Logger

	// DefaultVoiceID is used when the settings record carries no voice.
	DefaultVoiceID string

	// History is the eviction policy applied after each turn. Nil means
	// KeepLastPairs with a sensible default.
	History EvictionPolicy
}

// TurnOrchestrator drives turns for a single live connection. It owns the
// turn history and the last delivered feedback; it must run one turn at a
// time. Calling RunTurn from the connection's read loop satisfies that.
type TurnOrchestrator struct {
	deps   Dependencies
	logger *core.Logger

	history      []core.ChatMessage
	lastFeedback []core.FeedbackItem

	state  TurnState
	events chan *core.EventPacket
}

// NewTurnOrchestrator creates an orchestrator for one live connection.
func NewTurnOrchestrator(deps Dependencies) *TurnOrchestrator {
	if deps.Logger == nil {
		deps.Logger = core.GetLogger()
	}
	if deps.History == nil {
		deps.History = KeepLastPairs(DefaultHistoryPairs)
	}
	return &TurnOrchestrator{
		deps:   deps,
		logger: deps.Logger.With(map[string]any{"component": "orchestrator"}),
		state:  StateIdle,
		events: make(chan *core.EventPacket, 100),
	}
}

// Events is the listener boundary: an ordered stream of event packets, each
// tagged with its turn id. Events from the two concurrent join branches may
// interleave in either order.
func (o *TurnOrchestrator) Events() <-chan *core.EventPacket {
	return o.events
}

// State returns the current turn state.
func (o *TurnOrchestrator) State() TurnState {
	return o.state
}

// History returns the conversation history accumulated so far.
func (o *TurnOrchestrator) History() []core.ChatMessage {
	return o.history
}

// RunTurn executes one full turn. It returns a non-nil error only for faults
// that are fatal to the turn (bad ids, transcription failure, text-generation
// failure, cancelled connection); degraded audio or feedback is not an error.
func (o *TurnOrchestrator) RunTurn(ctx context.Context, turnID string, req TurnRequest) error {
	o.transition(turnID, StateStarted)

	turnCtx, err := o.resolveTurnContext(ctx, &req)
	if err != nil {
		return o.failTurn(ctx, turnID, err)
	}

	settings, err := o.deps.Settings.Get(ctx)
	if err != nil {
		return o.failTurn(ctx, turnID, err)
	}
	voiceID := settings.VoiceID
	if voiceID == "" {
		voiceID = o.deps.DefaultVoiceID
	}

	// Fan-out point: the feedback branch runs independently of the main
	// response path from here on. For voice turns the feedback-required
	// signal is deferred until the transcript exists.
	feedbackText := make(chan string, 1)
	var feedbackAudio []byte

	join := newTurnJoin(branchPersist, branchFeedback)
	var wg conc.WaitGroup

	wg.Go(func() {
		text, ok := <-feedbackText
		if !ok {
			// The turn died before producing a user message; nothing to analyze.
			join.report(branchFeedback)
			return
		}
		o.runFeedbackStage(ctx, turnID, turnCtx, text, feedbackAudio)
		join.report(branchFeedback)
	})

	var userText string
	if req.IsAudio() {
		o.transition(turnID, StateTranscribing)
		transcript, err := o.runTranscriptionStage(ctx, turnID, req.Audio, turnCtx)
		if err != nil {
			close(feedbackText)
			wg.Wait()
			return o.failTurn(ctx, turnID, &core.TranscriptionError{Err: err})
		}
		userText = transcript
		feedbackAudio = req.Audio
	} else {
		userText = req.Text
	}
	feedbackText <- userText
	close(feedbackText)

	o.transition(turnID, StatePromptPending)
	messages, err := o.buildPrompt(userText, req.Audio, turnCtx, settings.EvaluationPrompt)
	if err != nil {
		wg.Wait()
		return o.failTurn(ctx, turnID, err)
	}

	o.transition(turnID, StateGenerating)
	replyAudio, err := o.runResponseStage(ctx, turnID, messages, voiceID)
	if err != nil {
		wg.Wait()
		return o.failTurn(ctx, turnID, err)
	}

	o.transition(turnID, StateJoining)
	wg.Go(func() {
		o.runPersistenceStage(ctx, turnID, replyAudio)
		join.report(branchPersist)
	})

	wg.Wait()
	if err := join.wait(ctx); err != nil {
		// Connection dropped mid-join: normal terminal condition.
		o.transition(turnID, StateStopped)
		return nil
	}
	o.transition(turnID, StateJoined)

	o.history = o.deps.History.Evict(o.history)

	o.emit(ctx, turnID, "Orchestrator", &turn.CompletedEvent{})
	o.transition(turnID, StateStopped)
	return nil
}

// failTurn surfaces a generic failure to the listener and stops the turn
// cleanly; the connection survives.
func (o *TurnOrchestrator) failTurn(ctx context.Context, turnID string, err error) error {
	if errors.Is(err, context.Canceled) {
		o.transition(turnID, StateStopped)
		return err
	}
	o.logger.With(map[string]any{"turn_id": turnID, "error": err}).Error("turn failed")
	o.transition(turnID, StateFailed)
	o.emit(ctx, turnID, "Orchestrator", &turn.FailedEvent{Reason: "something went wrong processing this turn"})
	return err
}

func (o *TurnOrchestrator) transition(turnID string, next TurnState) {
	o.logger.With(map[string]any{"turn_id": turnID, "from": o.state.String(), "to": next.String()}).Debug("turn state transition")
	o.state = next
}

// emit delivers an event packet to the listener channel. A listener that is
// gone (context cancelled) drops the event instead of blocking the pipeline.
func (o *TurnOrchestrator) emit(ctx context.Context, turnID, relayer string, event core.IEvent) {
	packet := core.NewEventPacket(event, turnID, relayer)
	select {
	case o.events <- packet:
	case <-ctx.Done():
	}
}
