package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEWriter(t *testing.T) {
	recorder := httptest.NewRecorder()

	sse, err := NewSSEWriter(recorder)
	require.NoError(t, err)
	require.NoError(t, sse.WriteEvent("message_start"))
	require.NoError(t, sse.WriteData(map[string]string{"type": "message_start"}))

	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", recorder.Header().Get("Cache-Control"))
	assert.Equal(t, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n", recorder.Body.String())
	assert.True(t, recorder.Flushed)
}

func TestSSEWriter_RequiresFlusher(t *testing.T) {
	_, err := NewSSEWriter(nonFlushingWriter{httptest.NewRecorder()})
	require.Error(t, err)
}

// nonFlushingWriter narrows the recorder to the plain ResponseWriter
// interface so it no longer satisfies http.Flusher.
type nonFlushingWriter struct {
	http.ResponseWriter
}
