package analyzer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstream struct {
	*httptest.Server
	hits atomic.Int32
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *upstream) config() GenerationConfig {
	return GenerationConfig{
		Endpoint:    u.URL + "/v1",
		APIKey:      "sk-test",
		Model:       "test-model",
		Temperature: 0.3,
		MaxTokens:   512,
		Timeout:     5 * time.Second,
	}
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "test_error"},
	})
}

func TestOpenAIGenerator_Success(t *testing.T) {
	var body map[string]any
	var auth, path string
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeCompletion(w, "```json\n{}\n```")
	})

	prompt := BuildPrompt("hello", ModeWord)
	raw, err := NewOpenAIGenerator(nil).Generate(context.Background(), prompt, u.config())
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", raw.Text)
	assert.Equal(t, "test-model", raw.Model)
	assert.False(t, raw.Timestamp.IsZero())

	assert.Equal(t, int32(1), u.hits.Load())
	assert.Equal(t, "/v1/chat/completions", path)
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "test-model", body["model"])
	assert.InDelta(t, 0.3, body["temperature"], 1e-9)
	assert.EqualValues(t, 512, body["max_tokens"])

	messages, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, prompt.User, user["content"])
}

func TestOpenAIGenerator_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindAuthentication},
		{http.StatusForbidden, KindAuthentication},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusNotFound, KindConfiguration},
		{http.StatusBadRequest, KindConfiguration},
		{http.StatusUnprocessableEntity, KindConfiguration},
		{http.StatusRequestTimeout, KindServiceUnavailable},
		{http.StatusInternalServerError, KindServiceUnavailable},
		{http.StatusBadGateway, KindServiceUnavailable},
		{http.StatusServiceUnavailable, KindServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
				writeAPIError(w, tt.status, "upstream says no")
			})
			_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), u.config())
			ae := schemaErr(t, err)
			assert.Equal(t, tt.kind, ae.Kind)
			assert.Equal(t, "generation", ae.Kind.Stage())
			assert.Contains(t, ae.Message, "upstream says no")
			// no automatic retry, even for retryable statuses
			assert.Equal(t, int32(1), u.hits.Load())
		})
	}
}

func TestOpenAIGenerator_RejectedRequestNotRetryable(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity} {
		u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, status, "context length exceeded")
		})
		_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), u.config())
		ae := schemaErr(t, err)
		assert.Equal(t, KindConfiguration, ae.Kind, "status %d", status)
		assert.False(t, ae.Kind.Retryable(), "status %d", status)
	}
}

func TestOpenAIGenerator_DistinctUserMessages(t *testing.T) {
	seen := map[string]int{}
	for _, status := range []int{http.StatusUnauthorized, http.StatusTooManyRequests, http.StatusInternalServerError} {
		u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			writeAPIError(w, status, "x")
		})
		_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), u.config())
		ae := schemaErr(t, err)
		seen[ae.UserMessage()] = status
	}
	assert.Len(t, seen, 3)
}

func TestOpenAIGenerator_MissingKey(t *testing.T) {
	for _, key := range []string{"", PlaceholderAPIKey} {
		u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
			writeCompletion(w, "{}")
		})
		cfg := u.config()
		cfg.APIKey = key

		_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), cfg)
		ae := schemaErr(t, err)
		assert.Equal(t, KindConfiguration, ae.Kind)
		assert.Equal(t, int32(0), u.hits.Load())
	}
}

func TestOpenAIGenerator_InvalidConfig(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "{}")
	})
	cfg := u.config()
	cfg.Temperature = 3

	_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), cfg)
	ae := schemaErr(t, err)
	assert.Equal(t, KindConfiguration, ae.Kind)
	assert.Equal(t, int32(0), u.hits.Load())
}

func TestOpenAIGenerator_MalformedResponse(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","model":"test-model","choices":[]}`))
		}},
		{"blank content", func(w http.ResponseWriter, r *http.Request) {
			writeCompletion(w, "   ")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := newUpstream(t, tt.handler)
			_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), u.config())
			ae := schemaErr(t, err)
			assert.Equal(t, KindMalformedUpstreamResponse, ae.Kind)
		})
	}
}

func TestOpenAIGenerator_Unreachable(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {})
	cfg := u.config()
	u.Close()

	_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), cfg)
	ae := schemaErr(t, err)
	assert.Equal(t, KindTransport, ae.Kind)
	assert.True(t, ae.Kind.Retryable())
}

func TestOpenAIGenerator_Timeout(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	cfg := u.config()
	cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := NewOpenAIGenerator(nil).Generate(context.Background(), BuildPrompt("hi", ModeWord), cfg)
	ae := schemaErr(t, err)
	assert.Equal(t, KindServiceUnavailable, ae.Kind)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestOpenAIGenerator_CallerCanceled(t *testing.T) {
	u := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		writeCompletion(w, "{}")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOpenAIGenerator(nil).Generate(ctx, BuildPrompt("hi", ModeWord), u.config())
	ae := schemaErr(t, err)
	assert.Equal(t, KindTransport, ae.Kind)
}

func TestGenerationConfig_LogValueHidesKey(t *testing.T) {
	cfg := GenerationConfig{Endpoint: "https://api.example.com/v1", APIKey: "sk-secret", Model: "m", MaxTokens: 1}
	assert.NotContains(t, cfg.LogValue().String(), "sk-secret")
	assert.True(t, cfg.HasAPIKey())
}
