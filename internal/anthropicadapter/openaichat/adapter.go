package openaichat

import (
	"context"
	"iter"
	"net/http"

	"claudebridge/internal/anthropicadapter"
	"claudebridge/internal/anthropicadapter/types"
)

// MessagesAdapter bridges the Anthropic Messages operation onto an
// OpenAI-compatible chat completion backend. It is stateless across
// requests; the only shared state is the client's connection pool.
type MessagesAdapter struct {
	cfg    Config
	mapper *ModelMapper
	client *Client
}

var _ anthropicadapter.CreateMessageAdapter = (*MessagesAdapter)(nil)

// NewMessagesAdapter builds an adapter for the configured backend.
func NewMessagesAdapter(cfg Config) *MessagesAdapter {
	cfg = cfg.withDefaults()
	return &MessagesAdapter{
		cfg:    cfg,
		mapper: NewModelMapper(cfg.Models),
		client: newClient(cfg),
	}
}

// Mapper exposes the model substitution table, for surfaces that list
// models without issuing a completion.
func (a *MessagesAdapter) Mapper() *ModelMapper {
	return a.mapper
}

// ConnectionCheck reports the outcome of a connectivity check against the
// backend.
type ConnectionCheck struct {
	Model      string
	ResponseID string
}

// CheckConnection issues a minimal one-shot completion to verify that the
// backend is reachable and the configured credentials work.
func (a *MessagesAdapter) CheckConnection(ctx context.Context, transport http.RoundTripper) (*ConnectionCheck, error) {
	model := a.checkModel()
	maxTokens := int64(5)

	resp, err := a.client.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:     model,
		Messages:  []ChatCompletionMessage{{Role: "user", Content: "Hello"}},
		MaxTokens: &maxTokens,
	}, transport)
	if err != nil {
		return nil, toErrorResponse(err)
	}

	return &ConnectionCheck{Model: model, ResponseID: resp.ID}, nil
}

// checkModel picks the cheapest configured tier target for the connectivity
// check, falling back to mapping a small-tier alias when no tier is set.
func (a *MessagesAdapter) checkModel() string {
	for _, m := range []string{a.cfg.Models.Small, a.cfg.Models.Middle, a.cfg.Models.Big} {
		if m != "" {
			return m
		}
	}
	return a.mapper.Map("claude-3-5-haiku-latest")
}

// ProcessRequest performs a buffered Messages call end to end.
func (a *MessagesAdapter) ProcessRequest(ctx context.Context, clientReq anthropicadapter.CreateMessageRequest, transport http.RoundTripper) (*anthropicadapter.CreateMessageResponse, error) {
	backendReq, err := fromMessagesRequest(&clientReq, a.mapper, a.cfg)
	if err != nil {
		return nil, toErrorResponse(err)
	}

	backendResp, err := a.client.CreateChatCompletion(ctx, backendReq, transport)
	if err != nil {
		return nil, toErrorResponse(err)
	}

	return toMessagesResponse(backendResp, clientReq.Model), nil
}

// ProcessStreamingRequest performs a streaming Messages call. Failures
// before the backend responds surface as an error return; once events flow,
// failures terminate the event sequence in-band.
func (a *MessagesAdapter) ProcessStreamingRequest(ctx context.Context, clientReq anthropicadapter.CreateMessageRequest, transport http.RoundTripper) (iter.Seq2[*types.StreamEvent, error], error) {
	backendReq, err := fromMessagesRequest(&clientReq, a.mapper, a.cfg)
	if err != nil {
		return nil, toErrorResponse(err)
	}
	backendReq.Stream = true
	backendReq.StreamOptions = &StreamOptions{IncludeUsage: true}

	chunks, err := a.client.CreateChatCompletionStream(ctx, backendReq, transport)
	if err != nil {
		return nil, toErrorResponse(err)
	}

	return toStreamEvents(clientReq.Model, chunks), nil
}
