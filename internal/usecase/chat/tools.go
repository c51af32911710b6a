package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/futig/rag-gateway/internal/entity"
	pkghttp "github.com/futig/rag-gateway/pkg/http"
)

// NewToolsFromConfig instantiates the configured auxiliary tools by
// name. An empty list is valid and selects the plain context engine.
func NewToolsFromConfig(names []string, fetcher *pkghttp.Connector) ([]Tool, error) {
	var tools []Tool
	for _, name := range names {
		if name == "" {
			continue
		}
		switch name {
		case "url_reader":
			tools = append(tools, &urlReaderTool{fetcher: fetcher})
		default:
			return nil, fmt.Errorf("%w: %s", entity.ErrUnknownTool, name)
		}
	}
	return tools, nil
}

// urlReaderTool fetches a web page and hands its raw content to the
// model. The response is capped so one page cannot blow the context
// window.
type urlReaderTool struct {
	fetcher *pkghttp.Connector
}

const urlReaderMaxBytes = 64 * 1024

func (t *urlReaderTool) Spec() entity.ToolSpec {
	return entity.ToolSpec{
		Name:        "url_reader",
		Description: "Fetch the content of a public URL.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url": map[string]any{"type": "string", "description": "The URL to fetch."},
			},
			"required": []string{"url"},
		},
	}
}

func (t *urlReaderTool) Call(ctx context.Context, arguments string) (string, error) {
	var parsed struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
		return "", fmt.Errorf("parse tool arguments: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("tool arguments missing url")
	}

	content, err := t.fetcher.FetchBytes(ctx, parsed.URL)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", parsed.URL, err)
	}

	if len(content) > urlReaderMaxBytes {
		content = content[:urlReaderMaxBytes]
	}
	return string(content), nil
}
