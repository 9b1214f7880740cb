package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Message is a single turn of the prompt sent to a text model.
type Message struct {
	Role string `json:"role"` // "system", "user" or "assistant"
	Text string `json:"text"`
}

// Request captures the normalized text generation input produced by call sites.
type Request struct {
	// Model overrides the adapter's default model identifier when non-empty.
	Model string `json:"model,omitempty"`
	// Instructions is the context/persona description sent as system prompt.
	Instructions string    `json:"instructions"`
	Messages     []Message `json:"messages"`
	Stream       bool      `json:"stream,omitempty"`
}

// Prompt returns the concatenated text of all user messages.
func (r Request) Prompt() string {
	var b strings.Builder
	for _, m := range r.Messages {
		if m.Role != "user" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.Text)
	}
	return b.String()
}

// NewPromptRequest builds a single-turn request.
func NewPromptRequest(modelID, instructions, prompt string) Request {
	return Request{
		Model:        modelID,
		Instructions: instructions,
		Messages:     []Message{{Role: "user", Text: prompt}},
	}
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a streaming model.
type Response struct {
	ID           string      `json:"id"`
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required to drive text generation.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// ImageRequest asks an image model for a single square picture.
type ImageRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
}

// ImageResponse references a generated image. Data holds raw encoded image
// bytes when the provider returned them inline; URL is set otherwise.
type ImageResponse struct {
	URL  string `json:"url,omitempty"`
	Data []byte `json:"-"`
}

// ImageModel generates images from prompts.
type ImageModel interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error)
	Info() Info
}

// GenerateText drains a Generate call and returns the final text. Partial
// chunks are concatenated when no final chunk carries text.
func GenerateText(ctx context.Context, m Model, req Request) (string, *TokenUsage, error) {
	respCh, errCh := m.Generate(ctx, req)

	var (
		partial strings.Builder
		final   string
		usage   *TokenUsage
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if r.Partial {
				partial.WriteString(r.Text)
				continue
			}
			final = r.Text
			if r.Usage != nil {
				usage = r.Usage
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", nil, err
			}
		}
	}
	if final == "" {
		final = partial.String()
	}
	return final, usage, nil
}

// Responder produces the canned output for a mock request.
type Responder func(ctx context.Context, req Request) (string, error)

// MockModel is a lightweight in-memory Model useful for tests & examples.
// It records every request it receives.
type MockModel struct {
	info      Info
	responder Responder

	mu       sync.Mutex
	requests []Request
}

// NewMockModel constructs a MockModel. A nil responder echoes the prompt.
func NewMockModel(name string, responder Responder) *MockModel {
	if responder == nil {
		responder = func(_ context.Context, req Request) (string, error) {
			return fmt.Sprintf("Mock response to: %s", req.Prompt()), nil
		}
	}
	return &MockModel{info: Info{Name: name, Provider: "mock"}, responder: responder}
}

// Generate implements Model; emits optional streaming char chunks then final response.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)
		if len(req.Messages) == 0 {
			errCh <- errors.New("no messages provided")
			return
		}
		full, err := m.responder(ctx, req)
		if err != nil {
			errCh <- err
			return
		}
		if err := ctx.Err(); err != nil {
			errCh <- err
			return
		}
		if req.Stream {
			for _, r := range full {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{Partial: true, Text: string(r)}:
				}
			}
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Partial: false, Text: full, FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

// Requests returns a snapshot of the recorded requests.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// ImageResponder produces the canned output for a mock image request.
type ImageResponder func(ctx context.Context, req ImageRequest) (ImageResponse, error)

// MockImageModel is the image counterpart of MockModel.
type MockImageModel struct {
	info      Info
	responder ImageResponder

	mu       sync.Mutex
	requests []ImageRequest
}

// NewMockImageModel constructs a MockImageModel. A nil responder returns a
// fixed URL.
func NewMockImageModel(name string, responder ImageResponder) *MockImageModel {
	if responder == nil {
		responder = func(context.Context, ImageRequest) (ImageResponse, error) {
			return ImageResponse{URL: "https://example.invalid/avatar.png"}, nil
		}
	}
	return &MockImageModel{info: Info{Name: name, Provider: "mock"}, responder: responder}
}

// GenerateImage implements ImageModel.
func (m *MockImageModel) GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ImageResponse{}, err
	}
	return m.responder(ctx, req)
}

// Info implements ImageModel.
func (m *MockImageModel) Info() Info { return m.info }

// Requests returns a snapshot of the recorded requests.
func (m *MockImageModel) Requests() []ImageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ImageRequest, len(m.requests))
	copy(out, m.requests)
	return out
}
