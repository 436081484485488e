// Package elevenlabs implements the duplex speech-synthesis channel over the
// ElevenLabs stream-input WebSocket API: text fragments go in as they are
// produced, raw PCM audio chunks come out as they are synthesized, and the
// output stream terminates once the input stream is closed and drained.
package elevenlabs

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"lingokit/core"
)

// ElevenLabsTTSConfig holds configuration for the ElevenLabs TTS service
type ElevenLabsTTSConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	ModelID string `json:"model_id"`

	// Voice settings
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// ElevenLabsTTS dials one stream-input session per turn. Synthesis failures
// are reported to the caller and not retried; the turn degrades to text-only.
type ElevenLabsTTS struct {
	config ElevenLabsTTSConfig
	logger *core.Logger
}

// Client messages
type (
	// BOS (Beginning of Stream) - sent once on connect
	elBOSMessage struct {
		Text             string          `json:"text"`
		VoiceSettings    elVoiceSettings `json:"voice_settings"`
		GenerationConfig elGenConfig     `json:"generation_config"`
	}

	elVoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	}

	elGenConfig struct {
		ChunkLengthSchedule []int `json:"chunk_length_schedule"`
	}

	// Text chunk message
	elTextMessage struct {
		Text string `json:"text"`
	}
)

// Server messages
type (
	// Audio response from ElevenLabs (base64-encoded audio)
	elAudioMessage struct {
		Audio   string `json:"audio"`
		IsFinal *bool  `json:"isFinal,omitempty"`
		Error   string `json:"error,omitempty"`
		Message string `json:"message,omitempty"`
	}
)

// NewElevenLabsTTS creates a new ElevenLabs TTS service with the provided config
func NewElevenLabsTTS(config ElevenLabsTTSConfig, logger *core.Logger) (*ElevenLabsTTS, error) {
	if config.APIKey == "" {
		return nil, errors.New("ElevenLabs API key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "wss://api.elevenlabs.io/v1/text-to-speech"
	}
	if config.ModelID == "" {
		config.ModelID = "eleven_flash_v2_5"
	}
	if config.Stability == 0 {
		config.Stability = 0.5
	}
	if config.SimilarityBoost == 0 {
		config.SimilarityBoost = 0.8
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &ElevenLabsTTS{config: config, logger: logger}, nil
}

// StreamSpeech runs one duplex synthesis session. Text fragments are read
// from textChan until it is closed, then EOS is sent and the remaining audio
// is drained. Audio chunks (mono 16-bit PCM, 24000 Hz) are sent to audioChan
// in synthesis order. The caller owns audioChan and closes it after return.
func (e *ElevenLabsTTS) StreamSpeech(
	ctx context.Context,
	voiceID string,
	textChan <-chan string,
	audioChan chan<- core.AudioChunk,
) error {
	conn, err := e.dial(ctx, voiceID)
	if err != nil {
		return &core.SynthesisError{Err: err}
	}
	defer conn.Close()

	if err := e.sendBOS(conn); err != nil {
		return &core.SynthesisError{Err: fmt.Errorf("send BOS: %w", err)}
	}

	writeErrChan := make(chan error, 1)
	go func() {
		writeErrChan <- e.writeTextStream(ctx, conn, textChan)
	}()

	if err := e.readAudioStream(ctx, conn, audioChan); err != nil {
		return &core.SynthesisError{Err: err}
	}
	if err := <-writeErrChan; err != nil {
		return &core.SynthesisError{Err: err}
	}
	return nil
}

// dial performs a single WebSocket dial to ElevenLabs. No retry: a failed
// session degrades the turn rather than delaying it.
func (e *ElevenLabsTTS) dial(ctx context.Context, voiceID string) (*websocket.Conn, error) {
	url := fmt.Sprintf("%s/%s/stream-input?model_id=%s&output_format=pcm_24000",
		e.config.BaseURL, voiceID, e.config.ModelID)

	headers := map[string][]string{
		"xi-api-key": {e.config.APIKey},
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.DialContext(ctx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", e.config.BaseURL, err)
	}
	return conn, nil
}

// sendBOS sends the Beginning of Stream message.
func (e *ElevenLabsTTS) sendBOS(conn *websocket.Conn) error {
	bos := elBOSMessage{
		Text: " ",
		VoiceSettings: elVoiceSettings{
			Stability:       e.config.Stability,
			SimilarityBoost: e.config.SimilarityBoost,
		},
		GenerationConfig: elGenConfig{
			ChunkLengthSchedule: []int{120, 160, 250, 290},
		},
	}
	return e.sendJSON(conn, bos)
}

// writeTextStream forwards chunked text fragments until textChan closes,
// then sends the empty-text EOS message.
func (e *ElevenLabsTTS) writeTextStream(ctx context.Context, conn *websocket.Conn, textChan <-chan string) error {
	chunker := newTextChunker()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text, ok := <-textChan:
			if !ok {
				if tail := chunker.flush(); tail != "" {
					if err := e.sendJSON(conn, elTextMessage{Text: tail}); err != nil {
						return fmt.Errorf("send text: %w", err)
					}
				}
				// EOS: empty text tells the server the input stream is done.
				if err := e.sendJSON(conn, elTextMessage{Text: ""}); err != nil {
					return fmt.Errorf("send EOS: %w", err)
				}
				return nil
			}
			for _, piece := range chunker.feed(text) {
				if err := e.sendJSON(conn, elTextMessage{Text: piece}); err != nil {
					return fmt.Errorf("send text: %w", err)
				}
			}
		}
	}
}

// readAudioStream forwards decoded audio frames until the server marks the
// stream final or closes the connection normally.
func (e *ElevenLabsTTS) readAudioStream(ctx context.Context, conn *websocket.Conn, audioChan chan<- core.AudioChunk) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read audio frame: %w", err)
		}

		var frame elAudioMessage
		if err := sonic.Unmarshal(message, &frame); err != nil {
			return fmt.Errorf("decode audio frame: %w", err)
		}
		if frame.Error != "" {
			return fmt.Errorf("server error: %s: %s", frame.Error, frame.Message)
		}

		if frame.Audio != "" {
			data, err := base64.StdEncoding.DecodeString(frame.Audio)
			if err != nil {
				return fmt.Errorf("decode audio payload: %w", err)
			}
			chunk := core.AudioChunk{
				Data:       &data,
				SampleRate: 24000,
				Channels:   1,
				Format:     core.PCM,
				Timestamp:  time.Now(),
			}
			select {
			case audioChan <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if frame.IsFinal != nil && *frame.IsFinal {
			return nil
		}
	}
}

func (e *ElevenLabsTTS) sendJSON(conn *websocket.Conn, v any) error {
	payload, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// textChunker buffers streamed deltas and releases them on phrase boundaries
// so the synthesis engine receives speakable fragments instead of single
// tokens. Every released piece ends with a space, which the stream-input API
// uses as its generation hint.
type textChunker struct {
	buffer string
}

var chunkSplitters = []string{".", ",", "?", "!", ";", ":", "—", "-", "(", ")", "[", "]", "}", " "}

func newTextChunker() *textChunker {
	return &textChunker{}
}

func endsWithSplitter(s string) bool {
	for _, sp := range chunkSplitters {
		if strings.HasSuffix(s, sp) {
			return true
		}
	}
	return false
}

func startsWithSplitter(s string) bool {
	for _, sp := range chunkSplitters {
		if strings.HasPrefix(s, sp) {
			return true
		}
	}
	return false
}

// feed adds a delta and returns zero or more complete pieces to send.
func (c *textChunker) feed(text string) []string {
	var out []string
	switch {
	case c.buffer != "" && endsWithSplitter(c.buffer):
		piece := c.buffer
		if !strings.HasSuffix(piece, " ") {
			piece += " "
		}
		out = append(out, piece)
		c.buffer = text
	case text != "" && startsWithSplitter(text):
		_, size := utf8.DecodeRuneInString(text)
		piece := c.buffer + text[:size]
		if !strings.HasSuffix(piece, " ") {
			piece += " "
		}
		out = append(out, piece)
		c.buffer = text[size:]
	default:
		c.buffer += text
	}
	return out
}

// flush returns whatever is left in the buffer, space-terminated.
func (c *textChunker) flush() string {
	if c.buffer == "" {
		return ""
	}
	piece := c.buffer + " "
	c.buffer = ""
	return piece
}
