package ws

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"lingokit/orchestrator"
	"lingokit/utils/audio"
)

// Telephony-grade G.711 payloads arrive at 8000 Hz mono.
const g711SampleRate = 8000

var errEmptyTurn = errors.New("message carries neither text nor audio")

// inboundMessage is the client's turn payload. Exactly one of TextMessage
// and AudioData is expected; AudioFormat defaults to "wav".
type inboundMessage struct {
	TextMessage     string `json:"text_message"`
	AudioData       string `json:"audio_data"`
	AudioFormat     string `json:"audio_format"`
	PersonaID       int64  `json:"persona_id"`
	PracticeTopicID *int64 `json:"practice_topic_id"`
}

// decodeTurnRequest parses one inbound frame into a TurnRequest. G.711
// payloads are decoded to PCM and rewrapped as WAV so everything downstream
// sees a single audio shape.
func decodeTurnRequest(profileID int64, raw []byte) (orchestrator.TurnRequest, error) {
	var msg inboundMessage
	if err := sonic.Unmarshal(raw, &msg); err != nil {
		return orchestrator.TurnRequest{}, fmt.Errorf("decode turn payload: %w", err)
	}

	req := orchestrator.TurnRequest{
		Text:              msg.TextMessage,
		PersonaID:         msg.PersonaID,
		LanguageProfileID: profileID,
		PracticeTopicID:   msg.PracticeTopicID,
	}

	if msg.AudioData != "" {
		payload, err := base64.StdEncoding.DecodeString(msg.AudioData)
		if err != nil {
			return orchestrator.TurnRequest{}, fmt.Errorf("decode audio payload: %w", err)
		}
		wav, err := normalizeAudio(payload, msg.AudioFormat)
		if err != nil {
			return orchestrator.TurnRequest{}, err
		}
		req.Audio = wav
		req.Text = ""
	}

	if req.Text == "" && len(req.Audio) == 0 {
		return orchestrator.TurnRequest{}, errEmptyTurn
	}
	return req, nil
}

func normalizeAudio(payload []byte, format string) ([]byte, error) {
	switch format {
	case "", "wav":
		return payload, nil
	case "ulaw":
		return audio.PCMBytesToWavBytes(audio.ULawBytesToPCM(payload), 1, g711SampleRate)
	case "alaw":
		return audio.PCMBytesToWavBytes(audio.ALawBytesToPCM(payload), 1, g711SampleRate)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", format)
	}
}
