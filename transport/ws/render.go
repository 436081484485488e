package ws

import (
	"bytes"
	"fmt"
	"html/template"

	"lingokit/core"
	"lingokit/events/turn"
)

// HTML fragments pushed over the socket. Each fragment targets an element
// in the chat page by turn id and is swapped out-of-band on the client.
const fragmentTemplates = `
{{define "text_delta"}}<span hx-swap-oob="beforeend:#assistant-{{.TurnID}}">{{.Delta}}</span>{{end}}

{{define "transcription_delta"}}<span hx-swap-oob="beforeend:#user-{{.TurnID}}">{{.Delta}}</span>{{end}}

{{define "feedback_list"}}<div id="feedback-{{.TurnID}}" hx-swap-oob="outerHTML">{{if .Items}}<ul class="feedback">{{range .Items}}<li class="feedback-{{.Kind}}"><strong>{{.Kind}}</strong> {{.Reasoning}}</li>{{end}}</ul>{{end}}</div>{{end}}

{{define "audio_ready"}}<div hx-swap-oob="beforeend:#assistant-{{.TurnID}}"><audio controls preload="none" src="{{.URL}}"></audio></div>{{end}}

{{define "turn_completed"}}<div id="typing-{{.TurnID}}" hx-swap-oob="outerHTML"></div>{{end}}

{{define "turn_failed"}}<div id="assistant-{{.TurnID}}" hx-swap-oob="outerHTML" class="turn-error">{{.Reason}}</div>{{end}}

{{define "turn_started"}}<div hx-swap-oob="beforeend:#messages"><div class="bubble user" id="user-{{.TurnID}}">{{.UserText}}</div><div class="bubble assistant" id="assistant-{{.TurnID}}"></div><div class="typing" id="typing-{{.TurnID}}">&hellip;</div><div id="feedback-{{.TurnID}}"></div></div>{{end}}
`

// Renderer turns event packets into HTML fragments. One template per event
// kind; audio chunks are not HTML and never reach it.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() *Renderer {
	return &Renderer{
		tmpl: template.Must(template.New("fragments").Parse(fragmentTemplates)),
	}
}

// RenderEvent returns the fragment for one packet. The type switch is
// exhaustive over the turn event set; an unknown event is a programming
// fault and returns an error rather than silent output.
func (r *Renderer) RenderEvent(packet *core.EventPacket) ([]byte, error) {
	var (
		name string
		data any
	)
	switch e := packet.Event.(type) {
	case *turn.TextDeltaEvent:
		name = "text_delta"
		data = struct {
			TurnID string
			Delta  string
		}{packet.TurnID, e.Delta}
	case *turn.TranscriptionDeltaEvent:
		name = "transcription_delta"
		data = struct {
			TurnID string
			Delta  string
		}{packet.TurnID, e.Delta}
	case *turn.FeedbackListEvent:
		name = "feedback_list"
		data = struct {
			TurnID string
			Items  []core.FeedbackItem
		}{packet.TurnID, e.Items}
	case *turn.AudioReadyEvent:
		name = "audio_ready"
		data = struct {
			TurnID string
			URL    string
		}{packet.TurnID, e.URL}
	case *turn.CompletedEvent:
		name = "turn_completed"
		data = struct{ TurnID string }{packet.TurnID}
	case *turn.FailedEvent:
		name = "turn_failed"
		data = struct {
			TurnID string
			Reason string
		}{packet.TurnID, e.Reason}
	default:
		return nil, fmt.Errorf("no fragment renderer for event %q", packet.Event.GetId())
	}

	return r.render(name, data)
}

// RenderTurnStart produces the skeleton bubbles a new turn streams into.
// Voice turns start with an empty user bubble that transcription deltas
// fill in.
func (r *Renderer) RenderTurnStart(turnID, userText string) ([]byte, error) {
	return r.render("turn_started", struct {
		TurnID   string
		UserText string
	}{turnID, userText})
}

func (r *Renderer) render(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s fragment: %w", name, err)
	}
	return buf.Bytes(), nil
}
