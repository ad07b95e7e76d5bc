package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"wardrobeapi/codec"
	"wardrobeapi/models"
)

// GenAIClient answers completions with the Gemini API directly instead of
// going through a relay.
type GenAIClient struct {
	client     *genai.Client
	model      string
	tryOnModel string
}

func NewGenAIClient(ctx context.Context, apiKey, model, tryOnModel string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai: %w", ErrNotConfigured)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GenAIClient{client: client, model: model, tryOnModel: tryOnModel}, nil
}

func (g *GenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	result, err := g.generate(ctx, g.model, messages)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// CompleteTryOn returns the first generated image as a data URL, or the
// reply text when the model answered without an image.
func (g *GenAIClient) CompleteTryOn(ctx context.Context, messages []Message) (string, error) {
	result, err := g.generate(ctx, g.tryOnModel, messages)
	if err != nil {
		return "", err
	}
	for _, cand := range result.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "image/") && len(part.InlineData.Data) > 0 {
				return encodeInline(part.InlineData), nil
			}
		}
	}
	return result.Text(), nil
}

func (g *GenAIClient) generate(ctx context.Context, model string, messages []Message) (*genai.GenerateContentResponse, error) {
	contents, system, err := toGenAIContents(messages)
	if err != nil {
		return nil, err
	}
	config := &genai.GenerateContentConfig{MaxOutputTokens: maxTokens}
	if system != nil {
		config.SystemInstruction = system
	}

	result, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		if code, message, ok := genaiStatus(err); ok {
			return nil, &UpstreamError{Provider: "genai", StatusCode: code, Body: message}
		}
		return nil, requestError("genai", err)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		log.Warn().Str("reason", string(result.PromptFeedback.BlockReason)).Msg("genai prompt blocked")
		return nil, &UpstreamError{Provider: "genai", StatusCode: 400, Body: result.PromptFeedback.BlockReasonMessage}
	}
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, &UpstreamError{Provider: "genai", StatusCode: 400, Body: fmt.Sprintf("content blocked by safety setting: %s", rating.Category)}
			}
		}
	}
	return result, nil
}

func toGenAIContents(messages []Message) ([]*genai.Content, *genai.Content, error) {
	var contents []*genai.Content
	var system *genai.Content
	for _, m := range messages {
		parts, err := toGenAIParts(m.Content)
		if err != nil {
			return nil, nil, err
		}
		switch m.Role {
		case RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, parts...)
		case RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: parts})
		}
	}
	return contents, system, nil
}

func toGenAIParts(content MessageContent) ([]*genai.Part, error) {
	if content.Parts == nil {
		return []*genai.Part{{Text: content.Text}}, nil
	}
	parts := make([]*genai.Part, 0, len(content.Parts))
	for _, p := range content.Parts {
		switch {
		case p.Type == "image_url" && p.ImageURL != nil && strings.HasPrefix(p.ImageURL.URL, "data:"):
			blob, err := codec.Decode(p.ImageURL.URL)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: blob.MimeType, Data: blob.Data}})
		case p.Type == "image_url" && p.ImageURL != nil:
			parts = append(parts, &genai.Part{FileData: &genai.FileData{FileURI: p.ImageURL.URL}})
		default:
			parts = append(parts, &genai.Part{Text: p.Text})
		}
	}
	return parts, nil
}

func encodeInline(b *genai.Blob) string {
	return codec.Encode(models.Blob{MimeType: b.MIMEType, Data: b.Data})
}

func genaiStatus(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Message, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, apiErrPtr.Message, true
	}
	return 0, "", false
}
