package cartsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boltform_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRemoteLoadAndSave(t *testing.T) {
	var saved saveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/save", r.URL.Path)
		assert.Equal(t, "Bearer sess", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "cart", r.URL.Query().Get("type"))
			_, _ = w.Write([]byte(`{"items":[{"id":"2","title":"B","price":2,"quantity":3}],"version":4}`))
		case http.MethodPost:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			if saved.Version != nil && *saved.Version != 4 {
				w.WriteHeader(http.StatusConflict)
				_, _ = w.Write([]byte(`{"error":"cart was modified concurrently"}`))
				return
			}
			_, _ = w.Write([]byte(`{"message":"Cart saved","version":5}`))
		}
	}))
	defer srv.Close()

	r := NewHTTPRemote(srv.URL+"/", "sess")
	ctx := context.Background()

	lines, version, err := r.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), version)
	assert.Equal(t, []models.CartLine{{ID: "2", Title: "B", Price: 2, Quantity: 3}}, lines)

	v := int64(4)
	version, err = r.Save(ctx, "u1", nil, &v)
	require.NoError(t, err)
	assert.Equal(t, int64(5), version)
	assert.Equal(t, "cart", saved.Type)
	assert.NotNil(t, saved.Data)
	assert.Empty(t, saved.Data)

	stale := int64(3)
	_, err = r.Save(ctx, "u1", lines, &stale)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestHTTPRemoteUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
	}))
	defer srv.Close()

	_, _, err := NewHTTPRemote(srv.URL, "bad").Load(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not authenticated")
}
