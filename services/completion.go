package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one element of a multi-part message, text or an image.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: "text", Text: text}
}

// ImagePart carries an image as a data URL or a remote URL.
func ImagePart(url string) ContentPart {
	return ContentPart{Type: "image_url", ImageURL: &ImageURL{URL: url}}
}

// MessageContent is either plain text or a list of parts. It encodes the
// same way OpenAI compatible chat APIs do.
type MessageContent struct {
	Text  string
	Parts []ContentPart
}

func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

func (c *MessageContent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &c.Parts)
	}
	return json.Unmarshal(data, &c.Text)
}

// PlainText joins the text parts of c.
func (c MessageContent) PlainText() string {
	if c.Parts == nil {
		return c.Text
	}
	var buf bytes.Buffer
	for _, p := range c.Parts {
		if p.Type == "text" {
			if buf.Len() > 0 {
				buf.WriteString("\n")
			}
			buf.WriteString(p.Text)
		}
	}
	return buf.String()
}

type Message struct {
	Role    string         `json:"role" validate:"required,oneof=user assistant system"`
	Content MessageContent `json:"content"`
}

func TextMessage(role, text string) Message {
	return Message{Role: role, Content: MessageContent{Text: text}}
}

func PartsMessage(role string, parts ...ContentPart) Message {
	return Message{Role: role, Content: MessageContent{Parts: parts}}
}

// Completer produces one text completion for a conversation.
type Completer interface {
	// Complete uses the general chat and vision model.
	Complete(ctx context.Context, messages []Message) (string, error)
	// CompleteTryOn uses the dedicated try-on model.
	CompleteTryOn(ctx context.Context, messages []Message) (string, error)
}

// ChatCompletion is the reply envelope of OpenAI compatible APIs.
type ChatCompletion struct {
	ID      string         `json:"id,omitempty"`
	Model   string         `json:"model,omitempty"`
	Choices []ChatChoice   `json:"choices"`
	Usage   map[string]int `json:"usage,omitempty"`
}

type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// NewChatCompletion wraps content in the envelope relay clients expect.
func NewChatCompletion(model, content string) ChatCompletion {
	return ChatCompletion{
		Model: model,
		Choices: []ChatChoice{{
			Message:      TextMessage(RoleAssistant, content),
			FinishReason: "stop",
		}},
	}
}

func (c ChatCompletion) FirstContent() (string, error) {
	if len(c.Choices) == 0 {
		return "", fmt.Errorf("no choices in completion")
	}
	return c.Choices[0].Message.Content.PlainText(), nil
}
