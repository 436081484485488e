// Package llm implements the upstream LLM capability over the OpenAI API:
// streamed chat completions, structured-output feedback completions and audio
// transcription.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"lingokit/core"
)

// Config holds the configuration for the OpenAI service
type Config struct {
	APIKey             string
	ChatModel          string
	FeedbackModel      string
	TranscriptionModel string
}

// OpenAILLMService implements the chat, feedback and transcription
// capabilities consumed by the turn orchestrator.
type OpenAILLMService struct {
	client *openai.Client
	config Config
	logger *core.Logger
}

// NewOpenAILLMService creates a new instance of OpenAILLMService
func NewOpenAILLMService(config Config, logger *core.Logger) (*OpenAILLMService, error) {
	if config.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if config.ChatModel == "" {
		config.ChatModel = openai.GPT4o
	}
	if config.FeedbackModel == "" {
		config.FeedbackModel = config.ChatModel
	}
	if config.TranscriptionModel == "" {
		config.TranscriptionModel = openai.Whisper1
	}
	if logger == nil {
		logger = core.GetLogger()
	}
	return &OpenAILLMService{
		client: openai.NewClient(config.APIKey),
		config: config,
		logger: logger,
	}, nil
}

// Init verifies connectivity to the OpenAI API.
func (s *OpenAILLMService) Init(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("failed to connect to OpenAI: %w", err)
	}
	return nil
}

// StreamChat opens a streamed chat completion over messages and sends each
// text delta to outChan in arrival order. It returns once the upstream stream
// ends; the caller owns outChan and closes it after return.
func (s *OpenAILLMService) StreamChat(ctx context.Context, messages []core.ChatMessage, outChan chan<- string) error {
	req := openai.ChatCompletionRequest{
		Model:    s.config.ChatModel,
		Messages: convertMessages(messages),
		Stream:   true,
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create completion stream: %w", err)
	}
	defer stream.Close()

	for {
		response, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("completion stream receive: %w", err)
		}
		if len(response.Choices) == 0 {
			continue
		}
		delta := response.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		select {
		case outChan <- delta:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// feedbackResponse mirrors the structured-output schema: a list wrapper so
// the model can return zero items without violating the schema.
type feedbackResponse struct {
	Feedback []core.FeedbackItem `json:"feedback"`
}

var feedbackSchema = &jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"feedback": {
			Type:        jsonschema.Array,
			Description: "A list of feedback items on the user's last message. Empty when the message needs no changes.",
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"type": {
						Type:        jsonschema.String,
						Enum:        []string{"correction", "suggestion", "tip", "pronunciation"},
						Description: "The type of feedback provided regarding the user's message.",
					},
					"reasoning": {
						Type:        jsonschema.String,
						Description: "A concise explanation for the feedback, explaining the grammatical error or suggesting a better phrasing.",
					},
				},
				Required:             []string{"type", "reasoning"},
				AdditionalProperties: false,
			},
		},
	},
	Required:             []string{"feedback"},
	AdditionalProperties: false,
}

// GenerateFeedback runs a structured-output completion over prompt and
// returns the typed feedback items. When audio is non-nil it is attached as
// an input-audio part so the model can comment on pronunciation, intonation
// and rhythm.
func (s *OpenAILLMService) GenerateFeedback(ctx context.Context, prompt string, audio []byte) ([]core.FeedbackItem, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(audio) > 0 {
		msg.MultiContent = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{
				Type: openai.ChatMessagePartTypeInputAudio,
				InputAudio: &openai.ChatMessageInputAudio{
					Data:   base64.StdEncoding.EncodeToString(audio),
					Format: "wav",
				},
			},
		}
	} else {
		msg.Content = prompt
	}

	req := openai.ChatCompletionRequest{
		Model:    s.config.FeedbackModel,
		Messages: []openai.ChatCompletionMessage{msg},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "feedback_response",
				Schema: feedbackSchema,
				Strict: true,
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("feedback completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("feedback completion: empty response")
	}

	var parsed feedbackResponse
	if err := sonic.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("feedback completion: malformed structured output: %w", err)
	}
	return parsed.Feedback, nil
}

// Transcribe runs speech-to-text over a WAV payload using the literal
// transcription instruction. Each transcript segment is sent to deltaChan in
// upstream order before the full transcript is returned. The caller owns
// deltaChan.
func (s *OpenAILLMService) Transcribe(ctx context.Context, wav []byte, instruction string, deltaChan chan<- string) (string, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.config.TranscriptionModel,
		Reader:   bytes.NewReader(wav),
		FilePath: "speech.wav",
		Prompt:   instruction,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}

	if len(resp.Segments) > 0 {
		for _, segment := range resp.Segments {
			select {
			case deltaChan <- segment.Text:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	} else if resp.Text != "" {
		select {
		case deltaChan <- resp.Text:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return resp.Text, nil
}

// convertMessages converts core messages to OpenAI messages. Media
// attachments become input-audio parts.
func convertMessages(messages []core.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Role: string(m.Role)}
		if m.Media != nil && len(*m.Media) > 0 {
			parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: m.Content}}
			for _, media := range *m.Media {
				if media.MediaType != core.ChatMediaTypeAudioWAV {
					continue
				}
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeInputAudio,
					InputAudio: &openai.ChatMessageInputAudio{
						Data:   base64.StdEncoding.EncodeToString(media.Data),
						Format: "wav",
					},
				})
			}
			msg.MultiContent = parts
		} else {
			msg.Content = m.Content
		}
		out = append(out, msg)
	}
	return out
}
