package core

type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

type ChatMediaType string

const (
	ChatMediaTypeAudioWAV ChatMediaType = "audio/wav"
)

type ChatMedia struct {
	Data      []byte        // Raw media data.
	MediaType ChatMediaType // Type of the media (e.g., "audio/wav").
}

// ChatMessage represents one message exchanged with the LLM.
type ChatMessage struct {
	Role    ChatRole     `json:"role"`            // Role of the message sender (system, user, assistant).
	Content string       `json:"content"`         // Text content of the message.
	Media   *[]ChatMedia `json:"media,omitempty"` // Optional media attached to the message.
}

func SystemMessage(text string) ChatMessage {
	return ChatMessage{Role: ChatRoleSystem, Content: text}
}

func UserMessage(text string) ChatMessage {
	return ChatMessage{Role: ChatRoleUser, Content: text}
}

func AssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: ChatRoleAssistant, Content: text}
}
