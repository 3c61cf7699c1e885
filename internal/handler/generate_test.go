package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/internal/chat"
	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/internal/store"
	"github.com/capitalize-ai/extension-chat/internal/stream"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

type cannedChunks struct {
	docs []string
	pos  int
}

func (c *cannedChunks) Next(ctx context.Context) ([]byte, error) {
	if c.pos >= len(c.docs) {
		return nil, io.EOF
	}
	doc := c.docs[c.pos]
	c.pos++
	return []byte(doc), nil
}

func (c *cannedChunks) Close() {}

type cannedTransport struct {
	docs []string
	err  error
}

func (c *cannedTransport) Open(ctx context.Context, req model.GenerateRequest) (stream.ChunkReader, error) {
	if c.err != nil {
		return nil, c.err
	}
	return &cannedChunks{docs: c.docs}, nil
}

func newGenerateServer(t *testing.T, transport chat.Transport) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	manager := chat.NewManager(store.NewMemory(), transport, log)
	h := NewGenerateHandler(manager, log)

	r := chi.NewRouter()
	r.Post("/api/v1/conversations/{id}/generate", h.Generate)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postGenerate(t *testing.T, srv *httptest.Server, conversationID, body string) (*http.Response, []string) {
	t.Helper()
	resp, err := http.Post(
		srv.URL+"/api/v1/conversations/"+conversationID+"/generate",
		"application/json",
		strings.NewReader(body),
	)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return resp, lines
}

func TestGenerate(t *testing.T) {
	t.Run("streams one NDJSON line per snapshot", func(t *testing.T) {
		srv := newGenerateServer(t, &cannedTransport{docs: []string{
			`{"response":["par"]}`,
			`{"response":["partial"]}`,
			`{"response":["partial done"]}`,
		}})

		resp, lines := postGenerate(t, srv, "conv-1", `{"content":"hello"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))
		require.Len(t, lines, 3)

		for _, line := range lines {
			var snapshot model.StructuredResponse
			require.NoError(t, json.Unmarshal([]byte(line), &snapshot))
		}

		var last model.StructuredResponse
		require.NoError(t, json.Unmarshal([]byte(lines[2]), &last))
		assert.Equal(t, "partial done", last.Response[0].TextContent())
	})

	t.Run("stream failure ends with an error line", func(t *testing.T) {
		srv := newGenerateServer(t, &cannedTransport{docs: []string{
			`{"response":["ok so far"]}`,
			`{"error":"model overloaded"}`,
		}})

		resp, lines := postGenerate(t, srv, "conv-1", `{"content":"hello"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, lines, 2)

		var errLine map[string]string
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &errLine))
		assert.Contains(t, errLine["error"], "model overloaded")
	})

	t.Run("empty stream reports no content", func(t *testing.T) {
		srv := newGenerateServer(t, &cannedTransport{})

		_, lines := postGenerate(t, srv, "conv-1", `{"content":"hello"}`)
		require.Len(t, lines, 1)

		var errLine map[string]string
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &errLine))
		assert.Equal(t, "no content received", errLine["error"])
	})

	t.Run("rejects invalid request body", func(t *testing.T) {
		srv := newGenerateServer(t, &cannedTransport{})
		resp, _ := postGenerate(t, srv, "conv-1", `not json`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects empty content before streaming", func(t *testing.T) {
		srv := newGenerateServer(t, &cannedTransport{})
		resp, _ := postGenerate(t, srv, "conv-1", `{"content":""}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
