// Package index maintains the per-user retrieval index in weaviate.
// Documents are chunked and embedded on upload; queries run a nearVector
// search scoped to the owning user.
package index

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/storage"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
	"go.uber.org/zap"
)

const embedBatchSize = 64

// Embedder produces embedding vectors for texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider is the weaviate-backed retrieval index, partitioned by user id.
type Provider struct {
	client   *weaviate.Client
	class    string
	store    storage.Adapter
	embedder Embedder
	cfg      config.RetrievalConfig
	logger   *zap.Logger
}

func NewProvider(
	ctx context.Context,
	weaviateCfg config.WeaviateConfig,
	retrievalCfg config.RetrievalConfig,
	store storage.Adapter,
	embedder Embedder,
	logger *zap.Logger,
) (*Provider, error) {
	client, err := weaviate.NewClient(weaviate.Config{
		Scheme: weaviateCfg.Scheme,
		Host:   weaviateCfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("create weaviate client: %w", err)
	}

	p := &Provider{
		client:   client,
		class:    weaviateCfg.ClassName,
		store:    store,
		embedder: embedder,
		cfg:      retrievalCfg,
		logger:   logger,
	}

	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

func (p *Provider) ensureSchema(ctx context.Context) error {
	exists, err := p.client.Schema().ClassExistenceChecker().WithClassName(p.class).Do(ctx)
	if err != nil {
		return fmt.Errorf("check class existence: %w", err)
	}
	if exists {
		return nil
	}

	class := &models.Class{
		Class:      p.class,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "userId", DataType: []string{"text"}},
			{Name: "fileName", DataType: []string{"text"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
			{Name: "text", DataType: []string{"text"}},
		},
	}
	if err := p.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create class: %w", err)
	}

	p.logger.Info("created weaviate class", zap.String("class", p.class))
	return nil
}

// IndexAll rebuilds the user's index from every stored file. The rebuild
// is full, not incremental: existing objects are dropped first.
func (p *Provider) IndexAll(ctx context.Context, userID string) error {
	names, err := p.store.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	var chunks []chunk
	for _, name := range names {
		docChunks, err := p.loadChunks(ctx, userID, name)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		chunks = append(chunks, docChunks...)
	}

	if err := p.Reset(ctx, userID); err != nil {
		return err
	}

	if len(chunks) == 0 {
		ctxzap.Info(ctx, "no indexable content for user", zap.String("user_id", userID))
		return nil
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		if err := p.insertBatch(ctx, userID, chunks[start:end]); err != nil {
			return err
		}
	}

	ctxzap.Info(ctx, "index rebuilt",
		zap.String("user_id", userID),
		zap.Int("file_count", len(names)),
		zap.Int("chunk_count", len(chunks)),
	)
	return nil
}

type chunk struct {
	fileName string
	index    int
	text     string
}

func (p *Provider) loadChunks(ctx context.Context, userID, name string) ([]chunk, error) {
	r, err := p.store.Download(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	text, err := ExtractText(name, content)
	if errors.Is(err, ErrNoExtractor) {
		// Stored but not indexable (e.g. pdf); keep it listable.
		ctxzap.Warn(ctx, "skipping file without text extractor", zap.String("file", name))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var chunks []chunk
	for i, piece := range SplitText(text, p.cfg.ChunkSize, p.cfg.ChunkOverlap) {
		chunks = append(chunks, chunk{fileName: name, index: i, text: piece})
	}
	return chunks, nil
}

func (p *Provider) insertBatch(ctx context.Context, userID string, chunks []chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: p.class,
			ID:    strfmt.UUID(uuid.New().String()),
			Properties: map[string]any{
				"userId":     userID,
				"fileName":   c.fileName,
				"chunkIndex": c.index,
				"text":       c.text,
			},
			Vector: vectors[i],
		}
	}

	if _, err := p.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// Reset deletes all of the user's objects from the index.
func (p *Provider) Reset(ctx context.Context, userID string) error {
	where := filters.Where().
		WithPath([]string{"userId"}).
		WithOperator(filters.Equal).
		WithValueText(userID)

	_, err := p.client.Batch().ObjectsBatchDeleter().
		WithClassName(p.class).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("reset index: %w", err)
	}

	ctxzap.Info(ctx, "index reset", zap.String("user_id", userID))
	return nil
}

// Exists reports whether the user has any indexed content.
func (p *Provider) Exists(ctx context.Context, userID string) (bool, error) {
	nodes, err := p.search(ctx, userID, nil, 1)
	if err != nil {
		return false, err
	}
	return len(nodes) > 0, nil
}

// Query runs a nearVector search over the user's chunks.
func (p *Provider) Query(ctx context.Context, userID, query string, topK int) ([]entity.SourceNode, error) {
	vectors, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return p.search(ctx, userID, vectors[0], topK)
}

func (p *Provider) search(ctx context.Context, userID string, vector []float32, limit int) ([]entity.SourceNode, error) {
	where := filters.Where().
		WithPath([]string{"userId"}).
		WithOperator(filters.Equal).
		WithValueText(userID)

	fields := []graphql.Field{
		{Name: "fileName"},
		{Name: "chunkIndex"},
		{Name: "text"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "certainty"}}},
	}

	q := p.client.GraphQL().Get().
		WithClassName(p.class).
		WithFields(fields...).
		WithWhere(where).
		WithLimit(limit)

	if vector != nil {
		nearVector := p.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
		q = q.WithNearVector(nearVector)
	}

	result, err := q.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("search error: %s", result.Errors[0].Message)
	}

	return parseNodes(result, p.class)
}

func parseNodes(result *models.GraphQLResponse, class string) ([]entity.SourceNode, error) {
	get, ok := result.Data["Get"].(map[string]any)
	if !ok {
		return nil, nil
	}
	rows, ok := get[class].([]any)
	if !ok {
		return nil, nil
	}

	nodes := make([]entity.SourceNode, 0, len(rows))
	for _, row := range rows {
		props, ok := row.(map[string]any)
		if !ok {
			continue
		}

		node := entity.SourceNode{
			Metadata: map[string]any{},
		}
		if v, ok := props["text"].(string); ok {
			node.Text = v
		}
		if v, ok := props["fileName"].(string); ok {
			node.Metadata["file_name"] = v
		}
		if v, ok := props["chunkIndex"].(float64); ok {
			node.Metadata["chunk_index"] = int(v)
		}
		if additional, ok := props["_additional"].(map[string]any); ok {
			if v, ok := additional["id"].(string); ok {
				node.ID = v
			}
			if v, ok := additional["certainty"].(float64); ok {
				node.Score = &v
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
