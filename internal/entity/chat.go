package entity

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// SourceNode is a retrieved passage attached to a generated answer.
// Produced per response, never persisted.
type SourceNode struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata"`
	Score    *float64       `json:"score"`
	Text     string         `json:"text"`
}

// Event is an out-of-band notification emitted during generation,
// e.g. retrieval or tool-call progress. Consumed once by the stream
// composer, then discarded.
type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ChatResult is the outcome of a synchronous (non-streaming) chat call.
type ChatResult struct {
	Result ChatMessage  `json:"result"`
	Nodes  []SourceNode `json:"nodes"`
}
