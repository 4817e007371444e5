package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"multimodal-knowledge-assistant/internal/ai"
	"multimodal-knowledge-assistant/internal/retrieval"
)

// ResultKind tags the outcome of a query so callers can tell a genuine
// answer from the business conditions and failure modes that would
// otherwise leak into the answer text.
type ResultKind string

const (
	KindAnswered         ResultKind = "answered"
	KindEmptyQuery       ResultKind = "empty_query"
	KindNoData           ResultKind = "no_data"
	KindEmbeddingFailed  ResultKind = "embedding_failed"
	KindGenerationFailed ResultKind = "generation_failed"
)

// User-facing sentinel texts for the non-answer outcomes. These are business
// responses, not errors.
const (
	msgEmptyQuery       = "Please enter a question."
	msgNoData           = "No relevant data found in the knowledge base."
	msgEmbeddingFailed  = "Failed to generate embedding for the query."
	msgGenerationFailed = "Answer generation failed. Please try again."
)

// QueryResult carries the outcome of one query. Answer holds the generated
// text only when Kind is KindAnswered; otherwise it holds the sentinel text
// for that condition.
type QueryResult struct {
	Kind    ResultKind         `json:"kind"`
	Answer  string             `json:"answer"`
	Sources []retrieval.Result `json:"sources,omitempty"`
}

// Generator produces the natural-language answer from a prompt.
type Generator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// AnswerCache caches generated answers keyed by query and corpus version.
type AnswerCache interface {
	Get(ctx context.Context, query string, topK int) (string, bool, error)
	Set(ctx context.Context, query string, topK int, answer string) error
}

// QueryService answers natural-language queries: embed the query, rank the
// corpus, hand the top chunks to the generator.
type QueryService struct {
	retriever *retrieval.Retriever
	embedder  Embedder
	generator Generator
	cache     AnswerCache // nil = no caching
	topK      int
	logger    *zap.Logger
}

func NewQueryService(
	retriever *retrieval.Retriever,
	embedder Embedder,
	generator Generator,
	cache AnswerCache,
	topK int,
	logger *zap.Logger,
) *QueryService {
	if topK <= 0 {
		topK = retrieval.DefaultTopK
	}
	return &QueryService{
		retriever: retriever,
		embedder:  embedder,
		generator: generator,
		cache:     cache,
		topK:      topK,
		logger:    logger,
	}
}

const answerSystemPrompt = "You are a helpful assistant. Answer the user's question based only on the " +
	"provided context. If the context does not contain enough information, say so. Do not make up facts."

// Answer runs the query pipeline. Retrieval failures (store errors,
// dimension mismatch) return a real error, distinct from the "no relevant
// chunks" business condition.
func (s *QueryService) Answer(ctx context.Context, query string) (*QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &QueryResult{Kind: KindEmptyQuery, Answer: msgEmptyQuery}, nil
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, query, s.topK); err != nil {
			s.logger.Warn("answer cache read failed", zap.Error(err))
		} else if ok {
			return &QueryResult{Kind: KindAnswered, Answer: cached}, nil
		}
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.logger.Warn("embed query failed", zap.Error(err))
		return &QueryResult{Kind: KindEmbeddingFailed, Answer: msgEmbeddingFailed}, nil
	}

	results, err := s.retriever.Search(ctx, queryVec, s.topK)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &QueryResult{Kind: KindNoData, Answer: msgNoData}, nil
	}

	contexts := make([]string, len(results))
	for i, res := range results {
		contexts[i] = res.Text
	}
	userContent := "Context:\n" + strings.Join(contexts, "\n\n") +
		"\n\nQuestion: " + query + "\n\nAnswer:"

	messages := []ai.ChatMessage{
		{Role: "system", Content: answerSystemPrompt},
		{Role: "user", Content: userContent},
	}
	answer, err := s.generator.Complete(ctx, messages)
	if err != nil {
		s.logger.Warn("answer generation failed", zap.Error(err))
		return &QueryResult{Kind: KindGenerationFailed, Answer: msgGenerationFailed, Sources: results}, nil
	}
	answer = strings.TrimSpace(answer)

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, s.topK, answer); err != nil {
			s.logger.Warn("answer cache write failed", zap.Error(err))
		}
	}

	return &QueryResult{Kind: KindAnswered, Answer: answer, Sources: results}, nil
}
