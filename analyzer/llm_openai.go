package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout bounds a generation call when the config leaves Timeout unset.
const DefaultTimeout = 60 * time.Second

// OpenAIGenerator implements Generator against any OpenAI-compatible
// chat completions endpoint using the official openai-go SDK.
type OpenAIGenerator struct {
	HTTPClient *http.Client
}

func NewOpenAIGenerator(httpClient *http.Client) *OpenAIGenerator {
	return &OpenAIGenerator{HTTPClient: httpClient}
}

// Generate makes exactly one request; retries are disabled on the SDK client.
func (o *OpenAIGenerator) Generate(ctx context.Context, prompt Prompt, cfg GenerationConfig) (RawResult, error) {
	if !cfg.HasAPIKey() {
		return RawResult{}, newError(KindConfiguration, "api key not configured", nil)
	}
	if err := cfg.Validate(); err != nil {
		return RawResult{}, newError(KindConfiguration, "invalid generation config", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL(cfg.Endpoint)),
		option.WithMaxRetries(0),
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(callCtx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(cfg.Temperature),
		MaxTokens:   openai.Int(int64(cfg.MaxTokens)),
	})
	if err != nil {
		return RawResult{}, classifyError(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return RawResult{}, newError(KindMalformedUpstreamResponse, "response has no choices", nil)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return RawResult{}, newError(KindMalformedUpstreamResponse, "response has no message content", nil)
	}
	return RawResult{
		Text:      content,
		Model:     resp.Model,
		Timestamp: time.Now(),
	}, nil
}

// baseURL makes sure the SDK resolves "chat/completions" under the endpoint path.
func baseURL(endpoint string) string {
	if strings.HasSuffix(endpoint, "/") {
		return endpoint
	}
	return endpoint + "/"
}

// classifyError maps SDK and transport failures onto the closed Kind set.
// parent is the caller's context, used to tell abandonment from our own timeout.
func classifyError(parent context.Context, err error) *Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("upstream status %d", apiErr.StatusCode)
		if apiErr.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, apiErr.Message)
		}
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			return newError(KindAuthentication, msg, err)
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return newError(KindRateLimited, msg, err)
		case apiErr.StatusCode == http.StatusNotFound:
			return newError(KindConfiguration, msg+" (check endpoint and model)", err)
		case apiErr.StatusCode == http.StatusRequestTimeout:
			return newError(KindServiceUnavailable, msg, err)
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			// 其余 4xx 是请求本身被拒绝，原样重试不会成功
			return newError(KindConfiguration, msg+" (request rejected by upstream)", err)
		default:
			return newError(KindServiceUnavailable, msg, err)
		}
	}

	if errors.Is(parent.Err(), context.Canceled) {
		return newError(KindTransport, "request canceled by caller", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(KindServiceUnavailable, "upstream timed out", err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return newError(KindTransport, "upstream unreachable", err)
	}
	return newError(KindMalformedUpstreamResponse, "could not decode upstream response", err)
}
