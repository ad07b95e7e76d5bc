package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Path   string
	Auth   string
	Body   completionRequest
	RawLen int
}

func newRelayServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recordedRequest) {
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recordedRequest{Path: r.URL.Path, Auth: r.Header.Get("Authorization"), RawLen: len(raw)}
		json.Unmarshal(raw, &rec.Body)
		got = append(got, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func completionJSON(content string) string {
	raw, _ := json.Marshal(NewChatCompletion("m", content))
	return string(raw)
}

func TestRelayCompletePostsToBaseURL(t *testing.T) {
	srv, got := newRelayServer(t, http.StatusOK, completionJSON("你好"))
	relay := NewRelayClient(srv.URL+"/v1/custom", "k-123", "gemini-2.5-flash", "", time.Second)

	reply, err := relay.Complete(context.Background(), []Message{TextMessage(RoleUser, "hi")})
	require.NoError(t, err)
	assert.Equal(t, "你好", reply)

	require.Len(t, *got, 1)
	req := (*got)[0]
	assert.Equal(t, "/v1/custom", req.Path)
	assert.Equal(t, "Bearer k-123", req.Auth)
	assert.Equal(t, "gemini-2.5-flash", req.Body.Model)
	assert.Equal(t, 4096, req.Body.MaxTokens)
	require.Len(t, req.Body.Messages, 1)
	assert.Equal(t, "hi", req.Body.Messages[0].Content.Text)
}

func TestRelayTryOnUsesChatCompletionsPath(t *testing.T) {
	srv, got := newRelayServer(t, http.StatusOK, completionJSON("![img](https://cdn.example.com/a.png)"))
	relay := NewRelayClient(srv.URL+"/v1", "k", "gemini-2.5-flash", "", time.Second)

	reply, err := relay.CompleteTryOn(context.Background(), []Message{
		PartsMessage(RoleUser, TextPart("try"), ImagePart("data:image/png;base64,AAAA")),
	})
	require.NoError(t, err)
	assert.Contains(t, reply, "a.png")

	req := (*got)[0]
	assert.Equal(t, "/v1/chat/completions", req.Path)
	assert.Equal(t, DefaultTryOnModel, req.Body.Model)
	require.Len(t, req.Body.Messages[0].Content.Parts, 2)
	assert.Equal(t, "data:image/png;base64,AAAA", req.Body.Messages[0].Content.Parts[1].ImageURL.URL)
}

func TestTryOnURL(t *testing.T) {
	assert.Equal(t, "https://relay.example.com/v1/chat/completions", TryOnURL("https://relay.example.com/v1"))
	assert.Equal(t, "https://relay.example.com/v1/chat/completions", TryOnURL("https://relay.example.com/v1/"))
	assert.Equal(t, "https://relay.example.com/v1/chat/completions", TryOnURL("https://relay.example.com/v1/chat/completions"))
}

func TestRelayUpstreamError(t *testing.T) {
	srv, _ := newRelayServer(t, http.StatusTooManyRequests, `{"error":"rate limited"}`)
	relay := NewRelayClient(srv.URL, "k", "m", "", time.Second)

	_, err := relay.Complete(context.Background(), []Message{TextMessage(RoleUser, "hi")})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "rate limited")
	assert.ErrorIs(t, err, ErrUpstreamFailure)
}

func TestRelayMalformedEnvelope(t *testing.T) {
	srv, _ := newRelayServer(t, http.StatusOK, `{"choices":[]}`)
	relay := NewRelayClient(srv.URL, "k", "m", "", time.Second)

	_, err := relay.Complete(context.Background(), []Message{TextMessage(RoleUser, "hi")})
	assert.ErrorIs(t, err, ErrMalformedAIResponse)
}

func TestRelayNotConfigured(t *testing.T) {
	relay := NewRelayClient("", "", "m", "", time.Second)
	_, err := relay.Complete(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = relay.CompleteTryOn(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMessageContentJSON(t *testing.T) {
	raw, err := json.Marshal(TextMessage(RoleUser, "hi"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(raw))

	raw, err = json.Marshal(PartsMessage(RoleUser, TextPart("look"), ImagePart("https://x/y.png")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":[{"type":"text","text":"look"},{"type":"image_url","image_url":{"url":"https://x/y.png"}}]}`, string(raw))

	var m Message
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "look", m.Content.PlainText())
}
