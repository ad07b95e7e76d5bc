package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTryOnModel = "gpt-4o-image"
	maxTokens         = 4096
)

// RelayClient calls an OpenAI compatible chat completions endpoint.
//
// General completions are posted to baseURL exactly as configured. Try-on
// completions are posted to baseURL/chat/completions.
type RelayClient struct {
	client     *resty.Client
	baseURL    string
	apiKey     string
	model      string
	tryOnModel string
}

func NewRelayClient(baseURL, apiKey, model, tryOnModel string, timeout time.Duration) *RelayClient {
	if tryOnModel == "" {
		tryOnModel = DefaultTryOnModel
	}
	c := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &RelayClient{
		client:     c,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		tryOnModel: tryOnModel,
	}
}

type completionRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

func (r *RelayClient) configured() error {
	if r.baseURL == "" || r.apiKey == "" {
		return fmt.Errorf("ai relay: %w", ErrNotConfigured)
	}
	return nil
}

func (r *RelayClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := r.configured(); err != nil {
		return "", err
	}
	return r.post(ctx, r.baseURL, r.model, messages)
}

func (r *RelayClient) CompleteTryOn(ctx context.Context, messages []Message) (string, error) {
	if err := r.configured(); err != nil {
		return "", err
	}
	return r.post(ctx, TryOnURL(r.baseURL), r.tryOnModel, messages)
}

// TryOnURL appends /chat/completions to baseURL unless it already ends so.
func TryOnURL(baseURL string) string {
	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return strings.TrimRight(baseURL, "/") + "/chat/completions"
}

func (r *RelayClient) post(ctx context.Context, url, model string, messages []Message) (string, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(r.apiKey).
		SetBody(completionRequest{Model: model, Messages: messages, MaxTokens: maxTokens}).
		Post(url)
	if err != nil {
		return "", requestError("ai relay", err)
	}
	if resp.IsError() {
		return "", &UpstreamError{Provider: "ai relay", StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var completion ChatCompletion
	if err := json.Unmarshal(resp.Body(), &completion); err != nil {
		return "", &MalformedResponseError{Raw: resp.String(), Err: err}
	}
	content, err := completion.FirstContent()
	if err != nil {
		return "", &MalformedResponseError{Raw: resp.String(), Err: err}
	}
	return content, nil
}
