package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Engine is a per-user conversational interface over the retrieval
// index. Implementations are stateless across requests; per-call state
// lives inside StreamChat/Chat.
type Engine interface {
	// Chat runs a synchronous exchange and returns the answer with its
	// source nodes.
	Chat(ctx context.Context, message string, history []entity.ChatMessage) (*entity.ChatResult, error)

	// StreamChat starts generation and returns the live token and event
	// streams plus the completed response's source nodes.
	StreamChat(ctx context.Context, message string, history []entity.ChatMessage) (*StreamingResponse, error)
}

// contextEngine retrieves context for the last user message, injects it
// into the system prompt, and generates directly. Used when no tools
// are configured.
type contextEngine struct {
	llm          LLMClient
	index        IndexProvider
	userID       string
	topK         int
	systemPrompt string
}

func (e *contextEngine) retrieve(ctx context.Context, message string, events *EventStream) ([]entity.SourceNode, error) {
	if events != nil {
		events.Emit(entity.Event{Type: "retrieve", Payload: map[string]any{"query": message}})
	}

	nodes, err := e.index.Query(ctx, e.userID, message, e.topK)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	if events != nil {
		events.Emit(entity.Event{Type: "retrieve_result", Payload: map[string]any{"node_count": len(nodes)}})
	}
	return nodes, nil
}

func (e *contextEngine) buildMessages(message string, history []entity.ChatMessage, nodes []entity.SourceNode) []entity.ChatMessage {
	var context strings.Builder
	for _, n := range nodes {
		context.WriteString(n.Text)
		context.WriteString("\n\n")
	}

	system := e.systemPrompt
	if context.Len() > 0 {
		system = fmt.Sprintf("%s\n\nContext:\n%s", e.systemPrompt, context.String())
	}

	messages := make([]entity.ChatMessage, 0, len(history)+2)
	messages = append(messages, entity.ChatMessage{Role: entity.RoleSystem, Content: system})
	messages = append(messages, history...)
	messages = append(messages, entity.ChatMessage{Role: entity.RoleUser, Content: message})
	return messages
}

func (e *contextEngine) Chat(ctx context.Context, message string, history []entity.ChatMessage) (*entity.ChatResult, error) {
	nodes, err := e.retrieve(ctx, message, nil)
	if err != nil {
		return nil, err
	}

	content, err := e.llm.Complete(ctx, e.buildMessages(message, history, nodes))
	if err != nil {
		return nil, err
	}

	return &entity.ChatResult{
		Result: entity.ChatMessage{Role: entity.RoleAssistant, Content: content},
		Nodes:  nodes,
	}, nil
}

func (e *contextEngine) StreamChat(ctx context.Context, message string, history []entity.ChatMessage) (*StreamingResponse, error) {
	events := NewEventStream()

	nodes, err := e.retrieve(ctx, message, events)
	if err != nil {
		return nil, err
	}

	tokens, err := e.llm.StreamComplete(ctx, e.buildMessages(message, history, nodes))
	if err != nil {
		return nil, err
	}

	resp := &StreamingResponse{Tokens: tokens, Events: events}
	resp.setSources(nodes)
	return resp, nil
}

const queryToolName = "query_index"

// agentEngine runs an OpenAI function-calling loop with the retrieval
// index exposed as one tool among the configured ones. Used when the
// tool set is non-empty.
type agentEngine struct {
	llm          LLMClient
	index        IndexProvider
	tools        []Tool
	userID       string
	topK         int
	systemPrompt string
}

// maxAgentTurns bounds the tool-call loop so a model that keeps
// requesting tools cannot spin forever.
const maxAgentTurns = 8

func (e *agentEngine) toolSpecs() []entity.ToolSpec {
	specs := []entity.ToolSpec{{
		Name:        queryToolName,
		Description: "Search the user's uploaded documents for passages relevant to a query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string", "description": "The search query."},
			},
			"required": []string{"query"},
		},
	}}
	for _, t := range e.tools {
		specs = append(specs, t.Spec())
	}
	return specs
}

func (e *agentEngine) run(
	ctx context.Context, message string, history []entity.ChatMessage, events *EventStream,
) (string, []entity.SourceNode, error) {
	messages := []entity.CompletionMessage{{Role: entity.RoleSystem, Content: e.systemPrompt}}
	for _, m := range history {
		messages = append(messages, entity.CompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, entity.CompletionMessage{Role: entity.RoleUser, Content: message})

	specs := e.toolSpecs()
	var sources []entity.SourceNode

	for turn := 0; turn < maxAgentTurns; turn++ {
		msg, err := e.llm.CompleteWithTools(ctx, messages, specs)
		if err != nil {
			return "", nil, err
		}

		if len(msg.ToolCalls) == 0 {
			return msg.Content, sources, nil
		}

		messages = append(messages, *msg)
		for _, call := range msg.ToolCalls {
			if events != nil {
				events.Emit(entity.Event{Type: "tool_call", Payload: map[string]any{"tool": call.Name}})
			}

			result, nodes, err := e.callTool(ctx, call)
			if err != nil {
				// Surface the failure to the model instead of aborting;
				// it may recover with another tool or a direct answer.
				ctxzap.Warn(ctx, "tool call failed", zap.String("tool", call.Name), zap.Error(err))
				result = fmt.Sprintf("tool error: %v", err)
			}
			sources = append(sources, nodes...)

			if events != nil {
				events.Emit(entity.Event{Type: "tool_result", Payload: map[string]any{"tool": call.Name}})
			}

			messages = append(messages, entity.CompletionMessage{
				Role:       entity.RoleAssistant,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return "", nil, fmt.Errorf("agent exceeded %d turns without a final answer", maxAgentTurns)
}

func (e *agentEngine) callTool(ctx context.Context, call entity.ToolCall) (string, []entity.SourceNode, error) {
	if call.Name == queryToolName {
		query, err := parseQueryArgument(call.Arguments)
		if err != nil {
			return "", nil, err
		}

		nodes, err := e.index.Query(ctx, e.userID, query, e.topK)
		if err != nil {
			return "", nil, fmt.Errorf("query index: %w", err)
		}

		var sb strings.Builder
		for _, n := range nodes {
			sb.WriteString(n.Text)
			sb.WriteString("\n\n")
		}
		return sb.String(), nodes, nil
	}

	for _, t := range e.tools {
		if t.Spec().Name == call.Name {
			result, err := t.Call(ctx, call.Arguments)
			return result, nil, err
		}
	}
	return "", nil, fmt.Errorf("%w: %s", entity.ErrUnknownTool, call.Name)
}

func (e *agentEngine) Chat(ctx context.Context, message string, history []entity.ChatMessage) (*entity.ChatResult, error) {
	content, sources, err := e.run(ctx, message, history, nil)
	if err != nil {
		return nil, err
	}

	return &entity.ChatResult{
		Result: entity.ChatMessage{Role: entity.RoleAssistant, Content: content},
		Nodes:  sources,
	}, nil
}

func (e *agentEngine) StreamChat(ctx context.Context, message string, history []entity.ChatMessage) (*StreamingResponse, error) {
	events := NewEventStream()
	tokens := make(chan entity.TokenChunk)
	resp := &StreamingResponse{Tokens: tokens, Events: events}

	// The tool loop is not token-streamable; events flow live and the
	// final answer is delivered as a single chunk.
	go func() {
		defer close(tokens)

		content, sources, err := e.run(ctx, message, history, events)
		if err != nil {
			select {
			case tokens <- entity.TokenChunk{Err: err}:
			case <-ctx.Done():
			}
			return
		}

		resp.setSources(sources)
		select {
		case tokens <- entity.TokenChunk{Content: content}:
		case <-ctx.Done():
		}
	}()

	return resp, nil
}
