package advisor

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/brightpath/guidance-service/internal/config"
)

// ErrNotConfigured is returned when no LLM API key is set.
var ErrNotConfigured = errors.New("advisor LLM not configured")

// ChatMessage is one turn of an advisor conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMClient is the hosted-model surface the advisor needs: chat
// completion and embedding generation.
type LLMClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type genaiClient struct {
	client          *genai.Client
	chatModel       string
	embedModel      string
	maxOutputTokens int32
	temperature     float32
}

// NewGenAIClient builds the hosted LLM client.
func NewGenAIClient(ctx context.Context, cfg config.AdvisorConfig) (LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &genaiClient{
		client:          client,
		chatModel:       cfg.ChatModel,
		embedModel:      cfg.EmbedModel,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
		temperature:     float32(cfg.Temperature),
	}, nil
}

func (c *genaiClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, message := range messages {
		var role genai.Role = genai.RoleUser
		if message.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(message.Content, role))
	}

	temperature := c.temperature
	result, err := c.client.Models.GenerateContent(ctx, c.chatModel, contents, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: c.maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return result.Text(), nil
}

func (c *genaiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return vectors[0], nil
}

func (c *genaiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := c.client.Models.EmbedContent(ctx, c.embedModel, contents, &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
	})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	embeddings := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		embeddings[i] = embedding.Values
	}
	return embeddings, nil
}
