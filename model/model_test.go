package model

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Model      = (*MockModel)(nil)
	_ ImageModel = (*MockImageModel)(nil)
)

func TestGenerateText_Final(t *testing.T) {
	m := NewMockModel("mock", func(_ context.Context, req Request) (string, error) {
		return "echo:" + req.Prompt(), nil
	})

	out, _, err := GenerateText(context.Background(), m, NewPromptRequest("", "sys", "hi"))
	require.NoError(t, err)
	assert.Equal(t, "echo:hi", out)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "sys", reqs[0].Instructions)
}

func TestGenerateText_Streaming(t *testing.T) {
	m := NewMockModel("mock", nil)
	req := NewPromptRequest("", "", "abc")
	req.Stream = true

	out, _, err := GenerateText(context.Background(), m, req)
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: abc", out)
}

func TestGenerateText_Error(t *testing.T) {
	boom := errors.New("boom")
	m := NewMockModel("mock", func(context.Context, Request) (string, error) { return "", boom })

	_, _, err := GenerateText(context.Background(), m, NewPromptRequest("", "", "x"))
	assert.ErrorIs(t, err, boom)
}

func TestGenerateText_NoMessages(t *testing.T) {
	m := NewMockModel("mock", nil)
	_, _, err := GenerateText(context.Background(), m, Request{})
	assert.Error(t, err)
}

func TestGenerateText_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMockModel("mock", func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	cancel()

	_, _, err := GenerateText(ctx, m, NewPromptRequest("", "", "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockModel_AbandonedStreamStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewMockModel("mock", func(context.Context, Request) (string, error) {
		return strings.Repeat("x", 16), nil
	})
	req := NewPromptRequest("", "", "x")
	req.Stream = true

	respCh, errCh := m.Generate(ctx, req)
	require.Eventually(t, func() bool { return len(respCh) == 16 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("generator still blocked after cancel")
	}
}

func TestRequestPrompt_JoinsUserMessages(t *testing.T) {
	req := Request{Messages: []Message{
		{Role: "user", Text: "a"},
		{Role: "assistant", Text: "skip"},
		{Role: "user", Text: "b"},
	}}
	assert.Equal(t, "a\nb", req.Prompt())
}

func TestMockImageModel(t *testing.T) {
	m := NewMockImageModel("img", nil)
	resp, err := m.GenerateImage(context.Background(), ImageRequest{Prompt: "portrait"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.URL)
	assert.Equal(t, "portrait", m.Requests()[0].Prompt)
	assert.Equal(t, "mock", m.Info().Provider)
}
