package proxy

import (
	"log/slog"
	"net/http"
	"time"

	"claudebridge/internal/anthropicadapter/openaichat"
)

// testConnectionResponse is the body of a successful connectivity check.
type testConnectionResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	ModelUsed  string `json:"model_used"`
	Timestamp  string `json:"timestamp"`
	ResponseID string `json:"response_id"`
}

// testConnectionFailure is the body of a failed connectivity check.
type testConnectionFailure struct {
	Status      string   `json:"status"`
	Message     string   `json:"message"`
	Timestamp   string   `json:"timestamp"`
	Suggestions []string `json:"suggestions"`
}

// testConnectionHandler verifies backend reachability and credentials by
// issuing a minimal completion, so operators can diagnose upstream trouble
// without crafting a Messages request.
func testConnectionHandler(adapter *openaichat.MessagesAdapter, transport http.RoundTripper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		check, err := adapter.CheckConnection(ctx, transport)
		if err != nil {
			slog.ErrorContext(ctx, "backend connectivity check failed", "error", err)
			writeJSON(ctx, w, testConnectionFailure{
				Status:    "failed",
				Message:   err.Error(),
				Timestamp: time.Now().Format(time.RFC3339),
				Suggestions: []string{
					"check that the configured API key is valid",
					"verify the upstream base URL is reachable",
					"check whether the backend is rate limiting requests",
				},
			}, http.StatusServiceUnavailable)
			return
		}

		writeJSON(ctx, w, testConnectionResponse{
			Status:     "success",
			Message:    "successfully connected to the backend",
			ModelUsed:  check.Model,
			Timestamp:  time.Now().Format(time.RFC3339),
			ResponseID: check.ResponseID,
		}, http.StatusOK)
	}
}
