// Package openai provides implementations of model.Model and model.ImageModel
// backed by the OpenAI Chat Completions and Images APIs. It adapts the
// normalized Request/Response structures into the SDK's message format and
// back.
package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/makeXnow/BrainTrust-AI/model"
	"github.com/openai/openai-go"
)

// Options configure the OpenAI text model adapter.
// Fields mirror a subset of Chat Completion parameters intentionally kept
// minimal; extend via functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client
func NewModel(optFns ...func(o *Options)) *Model {
	client := openai.NewClient()
	return NewModelFromClient(&client, optFns...)
}

// NewModelFromClient creates a new OpenAI model from an existing client
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.8,
		MaxCompletionTokens: 2048,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements unified streaming / non-streaming generation.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errCh)
		params := m.buildParams(req)
		if req.Stream {
			m.handleStreaming(ctx, params, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, params, out, errCh)
	}()
	return out, errCh
}

// buildMessages converts normalized messages into OpenAI chat messages.
func buildMessages(req model.Request) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			messages = append(messages, openai.SystemMessage(msg.Text))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Text))
		default:
			if msg.Text != "" {
				messages = append(messages, openai.UserMessage(msg.Text))
			}
		}
	}
	return messages
}

// buildParams assembles the OpenAI request parameters.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	modelID := m.opts.Model
	if req.Model != "" {
		modelID = req.Model
	}
	return openai.ChatCompletionNewParams{
		Messages:            buildMessages(req),
		Model:               modelID,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
}

// handleStreaming processes streaming responses and forwards partial / final events.
func (m *Model) handleStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	var textBuilder strings.Builder
	for stream.Next() {
		ck := stream.Current()
		for _, ch := range ck.Choices {
			if ch.Delta.Content != "" {
				textBuilder.WriteString(ch.Delta.Content)
				out <- model.Response{Partial: true, Text: ch.Delta.Content}
			}
			if ch.FinishReason != "" {
				out <- model.Response{
					ID:           ck.ID,
					Partial:      false,
					Text:         textBuilder.String(),
					FinishReason: ch.FinishReason,
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errCh <- fmt.Errorf("openai streaming error: %w", err)
	}
}

// handleNonStreaming processes a normal (non-streaming) completion.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
	out chan<- model.Response,
	errCh chan<- error,
) {
	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		errCh <- fmt.Errorf("openai api error: %w", err)
		return
	}
	if len(resp.Choices) == 0 {
		errCh <- fmt.Errorf("no choices returned")
		return
	}
	ch0 := resp.Choices[0]
	out <- model.Response{
		ID:           resp.ID,
		Partial:      false,
		Text:         ch0.Message.Content,
		FinishReason: ch0.FinishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:     m.opts.Model,
		Provider: "openai",
	}
}

// ImageOptions configure the OpenAI image adapter.
type ImageOptions struct {
	Model string
	Size  openai.ImageGenerateParamsSize
}

// ImageModel wraps the OpenAI Images API behind model.ImageModel.
type ImageModel struct {
	client *openai.Client
	opts   ImageOptions
}

// NewImageModel creates a new OpenAI image model using the official client.
func NewImageModel(optFns ...func(o *ImageOptions)) *ImageModel {
	client := openai.NewClient()
	return NewImageModelFromClient(&client, optFns...)
}

// NewImageModelFromClient creates a new OpenAI image model from an existing client.
func NewImageModelFromClient(client *openai.Client, optFns ...func(o *ImageOptions)) *ImageModel {
	opts := ImageOptions{
		Model: string(openai.ImageModelDallE3),
		Size:  openai.ImageGenerateParamsSize1024x1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ImageModel{client: client, opts: opts}
}

// GenerateImage requests a single image. DALL·E models are asked for inline
// base64 so the caller can post-process the bytes.
func (m *ImageModel) GenerateImage(ctx context.Context, req model.ImageRequest) (model.ImageResponse, error) {
	modelID := m.opts.Model
	if req.Model != "" {
		modelID = req.Model
	}
	params := openai.ImageGenerateParams{
		Prompt: req.Prompt,
		Model:  openai.ImageModel(modelID),
		N:      openai.Int(1),
		Size:   m.opts.Size,
	}
	if strings.HasPrefix(modelID, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatB64JSON
	}

	resp, err := m.client.Images.Generate(ctx, params)
	if err != nil {
		return model.ImageResponse{}, fmt.Errorf("openai image api error: %w", err)
	}
	if len(resp.Data) == 0 {
		return model.ImageResponse{}, fmt.Errorf("no images returned")
	}

	img := resp.Data[0]
	out := model.ImageResponse{URL: img.URL}
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return model.ImageResponse{}, fmt.Errorf("decode image payload: %w", err)
		}
		out.Data = data
	}
	return out, nil
}

// Info returns metadata describing this OpenAI image model implementation.
func (m *ImageModel) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "openai"}
}
