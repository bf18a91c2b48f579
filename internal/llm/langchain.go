package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

// LangChainClient recognizes plates through any langchaingo model that
// accepts image parts.
type LangChainClient struct {
	name  string
	model llms.Model
}

func NewLangChainClient(name string, model llms.Model) *LangChainClient {
	return &LangChainClient{name: name, model: model}
}

// NewOpenAICompatible builds a fallback provider for an OpenAI-style
// endpoint (OpenAI, OpenRouter, a local gateway).
func NewOpenAICompatible(baseURL, apiKey, model string) (*LangChainClient, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	m, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewLangChainClient("openai/"+model, m), nil
}

func (l *LangChainClient) Name() string { return l.name }

func (l *LangChainClient) Recognize(ctx context.Context, img core.Image, prompt string) (*core.Recognition, error) {
	if len(img.Data) == 0 {
		return nil, core.ErrMissingImage
	}

	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}

	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
				llms.TextPart(replyInstruction),
				llms.BinaryPart(mime, img.Data),
			},
		},
	}

	resp, err := l.model.GenerateContent(ctx, content,
		llms.WithTemperature(0.2),
		llms.WithJSONMode(),
	)
	if err != nil {
		return nil, &core.UpstreamError{Op: l.name, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return nil, &core.UpstreamError{Op: l.name, Err: errors.New("empty model response")}
	}

	rec, err := ParseRecognition(resp.Choices[0].Content)
	if err != nil {
		return nil, &core.UpstreamError{Op: l.name, Err: err}
	}
	return rec, nil
}
