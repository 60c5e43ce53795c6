package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"claudebridge/internal/anthropicadapter/openaichat"
	"claudebridge/internal/observability/middleware"
)

// ReadinessChecker reports whether the application is ready to serve.
type ReadinessChecker interface {
	IsReady() bool
}

// Proxy serves the Anthropic Messages surface backed by an OpenAI-compatible
// upstream. It implements http.Handler and owns its http.Server lifecycle.
type Proxy struct {
	handler http.Handler
	server  *http.Server
}

// Compile-time check that Proxy implements http.Handler
var _ http.Handler = (*Proxy)(nil)

const defaultMaxRequestBytes = 10 << 20 // matches Anthropic's documented request size limit

// Option customizes proxy construction.
type Option func(*options)

type options struct {
	transport       http.RoundTripper
	maxRequestBytes int64
	modelsEndpoint  bool
}

// WithTransport overrides the upstream transport, primarily for tests.
func WithTransport(transport http.RoundTripper) Option {
	return func(o *options) {
		o.transport = transport
	}
}

// WithMaxRequestBytes overrides the request body size limit.
func WithMaxRequestBytes(n int64) Option {
	return func(o *options) {
		o.maxRequestBytes = n
	}
}

// WithModelsEndpoint toggles the /v1/models alias routes. When disabled the
// paths fall through to the mux's default 404.
func WithModelsEndpoint(enabled bool) Option {
	return func(o *options) {
		o.modelsEndpoint = enabled
	}
}

// New creates a Proxy routing the Messages surface to the given adapter.
func New(adapter *openaichat.MessagesAdapter, health ReadinessChecker, opts ...Option) (*Proxy, error) {
	if adapter == nil {
		return nil, errors.New("adapter must not be nil")
	}
	if health == nil {
		return nil, errors.New("readiness checker must not be nil")
	}

	o := options{
		transport:       http.DefaultTransport,
		maxRequestBytes: defaultMaxRequestBytes,
		modelsEndpoint:  true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	messagesHandler := &CreateMessagesHandler{
		Adapter:   adapter,
		Transport: o.transport,
	}

	mux := http.NewServeMux()
	mux.Handle("POST /v1/messages", messagesHandler)
	mux.Handle("POST /v1/messages/count_tokens", countTokensHandler())
	if o.modelsEndpoint {
		mux.Handle("GET /v1/models", listModelsHandler(adapter.Mapper()))
		mux.Handle("GET /v1/models/{id}", getModelHandler(adapter.Mapper()))
	}
	mux.Handle("GET /test-connection", testConnectionHandler(adapter, o.transport))
	mux.Handle("GET /healthz/live", livenessHandler())
	mux.Handle("GET /healthz/ready", readinessHandler(health))

	handler := applyMiddlewares(mux,
		middleware.RequestIDGeneration,
		middleware.TraceContextExtraction,
		middleware.Logging(slog.Default()),
		middleware.RequestIDPropagation,
		Recovery,
		RequestSizeLimit(o.maxRequestBytes),
	)

	return &Proxy{handler: handler}, nil
}

// ServeHTTP implements http.Handler.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Start binds the listener and serves in the background. Runtime serve
// errors are delivered on the returned channel.
func (p *Proxy) Start(ctx context.Context, addr string) (<-chan error, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("binding %s: %w", addr, err)
	}

	p.server = &http.Server{
		Handler:           p.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "proxy listening", "addr", listener.Addr().String())
		if err := p.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown gracefully drains in-flight requests.
func (p *Proxy) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}
