package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/extension-chat/internal/model"
	"github.com/capitalize-ai/extension-chat/internal/store"
	"github.com/capitalize-ai/extension-chat/pkg/logger"
)

func newPinServer(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	mem := store.NewMemory()
	h := NewPinHandler(mem, logger.NewNop())

	r := chi.NewRouter()
	r.Post("/api/v1/pins", h.Create)
	r.Get("/api/v1/pins", h.List)
	r.Delete("/api/v1/pins/{id}", h.Delete)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mem
}

func TestPins(t *testing.T) {
	t.Run("create then list then delete", func(t *testing.T) {
		srv, _ := newPinServer(t)

		resp, err := http.Post(srv.URL+"/api/v1/pins", "application/json",
			strings.NewReader(`{"extension":"todo","props":{"name":"Tasks","items":["one"]}}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var created model.PinnedItem
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, "todo", created.Extension)
		assert.NotEmpty(t, created.ID)

		listResp, err := http.Get(srv.URL + "/api/v1/pins")
		require.NoError(t, err)
		defer listResp.Body.Close()

		var listing struct {
			Items []model.PinnedItem `json:"items"`
		}
		require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listing))
		require.Len(t, listing.Items, 1)

		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/pins/"+created.ID, nil)
		require.NoError(t, err)
		delResp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer delResp.Body.Close()
		assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
	})

	t.Run("rejects missing extension name", func(t *testing.T) {
		srv, _ := newPinServer(t)
		resp, err := http.Post(srv.URL+"/api/v1/pins", "application/json",
			strings.NewReader(`{"props":{}}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("deleting an unknown pin is 404", func(t *testing.T) {
		srv, _ := newPinServer(t)
		req, err := http.NewRequest(http.MethodDelete,
			srv.URL+"/api/v1/pins/0b5a2c1e-9d3f-4a77-8b2e-123456789abc", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed pin id is 400", func(t *testing.T) {
		srv, _ := newPinServer(t)
		req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/pins/not-a-uuid", nil)
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
