package openaichat

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/oauth2"
	"golang.org/x/sync/semaphore"
)

// Client issues chat completion calls against one backend endpoint. It owns
// the connection pool and the retry policy; transports are supplied per call
// so tests can substitute them.
type Client struct {
	cfg Config
	sem *semaphore.Weighted
}

func newClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		sem: semaphore.NewWeighted(cfg.MaxConnections),
	}
}

// CreateChatCompletion performs a buffered completion call. Transient
// failures before a usable response are retried with exponential backoff up
// to the configured bound.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest, transport http.RoundTripper) (*ChatCompletionResponse, error) {
	release, err := c.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpClient := &http.Client{Transport: c.authTransport(transport)}

	return withRetry(ctx, c.cfg.MaxRetries, func() (*ChatCompletionResponse, error) {
		resp, err := c.send(ctx, httpClient, req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		var completion ChatCompletionResponse
		if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
			// The response may have been truncated mid-body; a fresh
			// attempt can succeed.
			return nil, &TransportError{Op: "decode", Retryable: true, Err: err}
		}
		return &completion, nil
	})
}

// CreateChatCompletionStream opens a streaming completion call and returns
// the decoded chunk sequence. Retries cover only the phase before response
// headers arrive; once bytes flow, a failure terminates the sequence with an
// error element and is never retried.
func (c *Client) CreateChatCompletionStream(ctx context.Context, req *ChatCompletionRequest, transport http.RoundTripper) (iter.Seq2[*ChatCompletionChunk, error], error) {
	release, err := c.acquire()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Transport: c.authTransport(transport)}

	// The configured timeout bounds connection establishment only. The
	// request context must outlive it so the body stays readable, so the
	// deadline is a timer that is disarmed once headers arrive.
	streamCtx, cancel := context.WithCancel(ctx)
	timer := time.AfterFunc(c.cfg.Timeout, cancel)

	resp, err := withRetry(streamCtx, c.cfg.MaxRetries, func() (*http.Response, error) {
		return c.send(streamCtx, httpClient, req)
	})
	timer.Stop()
	if err != nil {
		cancel()
		release()
		return nil, err
	}

	return func(yield func(*ChatCompletionChunk, error) bool) {
		defer func() {
			resp.Body.Close()
			cancel()
			release()
		}()
		readChunks(ctx, resp.Body, yield)
	}, nil
}

// readChunks decodes server-sent events from the response body. Blank
// keep-alive lines and comment lines are skipped. An unterminated final line
// at EOF is dropped as stream end rather than decoded. A malformed data
// payload or a read failure yields one error element and ends the sequence.
func readChunks(ctx context.Context, body io.Reader, yield func(*ChatCompletionChunk, error) bool) {
	reader := bufio.NewReader(body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			if ctx.Err() != nil {
				return
			}
			yield(nil, &TransportError{Op: "read", Err: err})
			return
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			return
		}

		var chunk ChatCompletionChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			yield(nil, &StreamError{Message: "malformed event payload", Err: err})
			return
		}
		if !yield(&chunk, nil) {
			return
		}
	}
}

// send performs one HTTP attempt and classifies the outcome for the retry
// policy.
func (c *Client) send(ctx context.Context, httpClient *http.Client, req *ChatCompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("encoding request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("building request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.Stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(&TransportError{Op: "connect", Err: err})
		}
		return nil, &TransportError{Op: "connect", Retryable: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		protoErr := decodeErrorResponse(resp)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, protoErr
		}
		return nil, backoff.Permanent(protoErr)
	}

	return resp, nil
}

// decodeErrorResponse extracts the backend error envelope from a non-200
// response, falling back to the raw body when the envelope does not parse.
func decodeErrorResponse(resp *http.Response) *ProtocolError {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &ProtocolError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	var body chatCompletionErrorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error.Message != "" {
		return &ProtocolError{
			StatusCode: resp.StatusCode,
			Type:       body.Error.Type,
			Message:    body.Error.Message,
		}
	}

	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = resp.Status
	}
	return &ProtocolError{StatusCode: resp.StatusCode, Message: message}
}

// withRetry runs op under the configured retry bound with exponential
// backoff. MaxRetries counts retries, not attempts.
func withRetry[T any](ctx context.Context, maxRetries int, op func() (T, error)) (T, error) {
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(maxRetries)+1),
	)
}

// acquire claims a pool slot, failing fast when the pool is exhausted.
func (c *Client) acquire() (release func(), err error) {
	if !c.sem.TryAcquire(1) {
		return nil, &TransportError{
			Op:        "acquire",
			Retryable: true,
			Err:       errors.New("connection pool exhausted"),
		}
	}
	return func() { c.sem.Release(1) }, nil
}

// authTransport wraps the supplied transport with credential injection and
// the configured header overlay.
func (c *Client) authTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if len(c.cfg.Headers) > 0 {
		base = &headerTransport{base: base, headers: c.cfg.Headers}
	}

	switch c.cfg.AuthScheme {
	case AuthSchemeAppKey:
		return &headerTransport{
			base:    base,
			headers: map[string]string{"Authorization": c.cfg.APIKey},
		}
	default:
		return &oauth2.Transport{
			Base:   base,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.cfg.APIKey}),
		}
	}
}

func (c *Client) endpoint() string {
	return strings.TrimSuffix(c.cfg.BaseURL, "/") + c.cfg.Path
}

// headerTransport applies a fixed header set to each request. Requests are
// cloned before mutation, as RoundTripper implementations must not modify
// their argument.
type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	for name, value := range t.headers {
		clone.Header.Set(name, value)
	}
	return t.base.RoundTrip(clone)
}
