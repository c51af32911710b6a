package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const topKPromptTemplate = `As an AI assistant, you are part of a Retrieval-Augmented Generation (RAG) system. Your role is to determine the optimal number of top documents (top-k) to retrieve for a given query, based on the query's complexity, specificity, and type.

Given the following query, determine whether the optimal top-k should be %d or %d to answer it effectively. If the query is straightforward and can be answered directly, recommend %d. For more complex queries, recommend %d.

Query: "%s"

Provide the recommended top-k value in the following JSON format:

{"topk": [TOP_K_VALUE]}`

// determineTopK classifies the query as simple or complex with one LLM
// call and maps the result to a retrieval breadth. Any failure of the
// call or of parsing its JSON falls back to the default breadth; a bad
// classifier answer should not fail the whole request.
func (uc *Usecase) determineTopK(ctx context.Context, query string) int {
	simpleK, complexK := uc.cfg.TopK, uc.cfg.TopKComplex

	prompt := fmt.Sprintf(topKPromptTemplate, simpleK, complexK, simpleK, complexK, query)
	raw, err := uc.llm.CompleteJSON(ctx, prompt)
	if err != nil {
		ctxzap.Warn(ctx, "top-k advisor call failed, using default", zap.Error(err))
		return simpleK
	}

	var parsed struct {
		TopK int `json:"topk"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		ctxzap.Warn(ctx, "top-k advisor returned malformed JSON, using default",
			zap.String("raw", raw), zap.Error(err),
		)
		return simpleK
	}

	if parsed.TopK != simpleK && parsed.TopK != complexK {
		ctxzap.Warn(ctx, "top-k advisor returned out-of-range value, using default",
			zap.Int("topk", parsed.TopK),
		)
		return simpleK
	}

	return parsed.TopK
}
