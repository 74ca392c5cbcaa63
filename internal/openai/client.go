package openai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/paperchat-ai/paperchat/internal/domain"
	"github.com/paperchat-ai/paperchat/internal/service"
)

const (
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = "text-embedding-3-small"
	// DefaultChatModel is the OpenAI model used for answer generation
	DefaultChatModel = "gpt-4.1-mini"
)

// ErrNoEmbeddingData is returned when the backend responds without vectors
var ErrNoEmbeddingData = errors.New("no embedding data returned")

// Config holds factory configuration. BaseURL overrides the API endpoint,
// used by tests to point at a stub backend.
type Config struct {
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
}

// Factory builds short-lived OpenAI clients bound to a per-request
// credential. The factory itself never holds a key.
type Factory struct {
	cfg Config
}

// NewFactory creates a Factory using defaults for unset models.
func NewFactory(cfg Config) *Factory {
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	return &Factory{cfg: cfg}
}

// Embeddings returns an embedding client bound to the given credential.
func (f *Factory) Embeddings(apiKey string) service.EmbeddingClient {
	return f.newClient(apiKey)
}

// Generation returns a generation client bound to the given credential.
func (f *Factory) Generation(apiKey string) service.GenerationClient {
	return f.newClient(apiKey)
}

func (f *Factory) newClient(apiKey string) *Client {
	clientCfg := openai.DefaultConfig(apiKey)
	if f.cfg.BaseURL != "" {
		clientCfg.BaseURL = f.cfg.BaseURL
	}
	return &Client{
		api:            openai.NewClientWithConfig(clientCfg),
		embeddingModel: openai.EmbeddingModel(f.cfg.EmbeddingModel),
		chatModel:      f.cfg.ChatModel,
	}
}

// Client wraps the OpenAI API client for one request's credential.
type Client struct {
	api            *openai.Client
	embeddingModel openai.EmbeddingModel
	chatModel      string
}

// CreateEmbeddings calls the OpenAI API with a batched input and returns
// vectors index-aligned with the texts.
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, ErrNoEmbeddingData
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	// The API reports each vector's input index; order by it rather than
	// trusting response order.
	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// Complete runs a chat completion and returns the full answer text.
func (c *Client) Complete(ctx context.Context, turns []domain.ConversationTurn) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: toMessages(turns),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// StreamComplete opens a streaming chat completion.
func (c *Client) StreamComplete(ctx context.Context, turns []domain.ConversationTurn) (service.TokenStream, error) {
	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.chatModel,
		Messages: toMessages(turns),
		Stream:   true,
	})
	if err != nil {
		return nil, err
	}
	return &chatStream{stream: stream}, nil
}

// chatStream adapts the SDK stream to the service TokenStream contract.
type chatStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next token delta; io.EOF marks completion.
func (s *chatStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

// Close releases the underlying HTTP stream.
func (s *chatStream) Close() error {
	return s.stream.Close()
}

func toMessages(turns []domain.ConversationTurn) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, len(turns))
	for i, turn := range turns {
		role := openai.ChatMessageRoleUser
		switch turn.Role {
		case domain.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case domain.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		messages[i] = openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		}
	}
	return messages
}
