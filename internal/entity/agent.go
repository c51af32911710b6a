package entity

// TokenChunk is one increment of a streamed completion. Err is set on the
// terminal chunk when generation failed mid-stream.
type TokenChunk struct {
	Content string
	Err     error
}

// ToolSpec declares a callable tool exposed to the agent engine.
type ToolSpec struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the arguments.
	Parameters map[string]any
}

// ToolCall is the model's request to invoke a tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// CompletionMessage is a model- or tool-produced turn inside the agent
// loop. ToolCallID links a tool result back to the call that produced it.
type CompletionMessage struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}
