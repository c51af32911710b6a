package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/futig/rag-gateway/internal/entity"
)

// Frame prefixes of the Vercel data stream protocol: "0:" carries a
// JSON string of text, "8:" carries a JSON array of data items.
const (
	textFramePrefix = "0:"
	dataFramePrefix = "8:"
)

type dataFrame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// streamWriter encodes composed stream items as protocol frames and
// flushes each frame so tokens reach the client as they arrive.
type streamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newStreamWriter(w http.ResponseWriter) (*streamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &streamWriter{w: w, flusher: flusher}, nil
}

func (sw *streamWriter) WriteToken(token string) error {
	encoded, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return sw.writeFrame(textFramePrefix, encoded)
}

func (sw *streamWriter) WriteEvent(event entity.Event) error {
	return sw.writeData(dataFrame{Type: event.Type, Data: event.Payload})
}

func (sw *streamWriter) WriteSources(nodes []entity.SourceNode) error {
	if nodes == nil {
		nodes = []entity.SourceNode{}
	}
	return sw.writeData(dataFrame{
		Type: "sources",
		Data: map[string]any{"nodes": nodes},
	})
}

func (sw *streamWriter) writeData(frame dataFrame) error {
	encoded, err := json.Marshal([]dataFrame{frame})
	if err != nil {
		return err
	}
	return sw.writeFrame(dataFramePrefix, encoded)
}

func (sw *streamWriter) writeFrame(prefix string, payload []byte) error {
	if _, err := fmt.Fprintf(sw.w, "%s%s\n", prefix, payload); err != nil {
		return err
	}
	sw.flusher.Flush()
	return nil
}
