package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type GeminiOption func(*GeminiClient)

func WithBaseURL(u string) GeminiOption {
	return func(g *GeminiClient) { g.baseURL = u }
}

func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiClient) { g.http = c }
}

func NewGeminiClient(apiKey, model string, opts ...GeminiOption) *GeminiClient {
	g := &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGeminiBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeminiClient) Name() string { return "gemini/" + g.model }

// Recognize sends the photo inline with the catalog prompt and asks for a
// JSON-only reply.
func (g *GeminiClient) Recognize(ctx context.Context, img core.Image, prompt string) (*core.Recognition, error) {
	if g.apiKey == "" {
		return nil, g.fail(errors.New("missing GEMINI_API_KEY"))
	}
	if g.model == "" {
		return nil, g.fail(errors.New("missing GEMINI_MODEL"))
	}
	if len(img.Data) == 0 {
		return nil, core.ErrMissingImage
	}

	mime := img.MIME
	if mime == "" {
		mime = "image/jpeg"
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)

	payload := map[string]any{
		"contents": []map[string]any{
			{
				"parts": []map[string]any{
					{"text": prompt},
					{"text": replyInstruction},
					{"inline_data": map[string]string{
						"mime_type": mime,
						"data":      base64.StdEncoding.EncodeToString(img.Data),
					}},
				},
			},
		},
		"generationConfig": map[string]any{
			"temperature":        0.2,
			"response_mime_type": "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, g.fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(body))
	if err != nil {
		return nil, g.fail(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, g.fail(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, g.fail(err)
	}

	log.Debug().Str("provider", g.Name()).Int("status", resp.StatusCode).Int("bytes", len(raw)).Msg("gemini response")

	// Gemini response shape
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(raw, &result); err != nil && resp.StatusCode == http.StatusOK {
		return nil, g.fail(fmt.Errorf("decode response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return nil, g.fail(fmt.Errorf("gemini api error (%d): %s", resp.StatusCode, msg))
	}

	if len(result.Candidates) == 0 ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return nil, g.fail(errors.New("empty gemini response"))
	}

	rec, err := ParseRecognition(result.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, g.fail(err)
	}
	return rec, nil
}

// fail drops the request URL from transport errors so nothing about the
// endpoint reaches logs or callers.
func (g *GeminiClient) fail(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		err = fmt.Errorf("%s request: %w", strings.ToLower(ue.Op), ue.Err)
	}
	return &core.UpstreamError{Op: g.Name(), Err: err}
}
