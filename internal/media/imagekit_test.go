package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeHost spins up an httptest server that speaks just enough of the
// upload/management API for the client, and returns a Client pointed at it.
func newFakeHost(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, srv.URL, "private_test_key")
	require.NoError(t, err)
	return c
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New("", "https://api.example.com", "key")
	assert.Error(t, err)

	_, err = New("https://upload.example.com", "https://api.example.com", "")
	assert.Error(t, err)
}

func TestUpload(t *testing.T) {
	var gotPath, gotUser, gotFileName string

	c := newFakeHost(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, _, _ = r.BasicAuth()

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFileName = r.FormValue("fileName")

		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Asset{
			FileID: "fid-123",
			Name:   gotFileName,
			URL:    "https://cdn.example.com/" + gotFileName,
		})
	})

	asset, err := c.Upload(context.Background(), "cat.jpg", []byte("not really a jpeg"))
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/files/upload", gotPath)
	assert.Equal(t, "private_test_key", gotUser)
	assert.Equal(t, "fid-123", asset.FileID)
	assert.NotEmpty(t, asset.URL)
	// The requested remote name keeps the original name but adds a unique prefix
	assert.True(t, strings.HasSuffix(gotFileName, "_cat.jpg"), "fileName = %q", gotFileName)
	assert.NotEqual(t, "cat.jpg", gotFileName)
}

func TestUpload_HostError(t *testing.T) {
	c := newFakeHost(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"quota exceeded"}`, http.StatusForbidden)
	})

	_, err := c.Upload(context.Background(), "cat.jpg", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestUpload_MissingFileID(t *testing.T) {
	c := newFakeHost(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"cat.jpg","url":"https://cdn.example.com/cat.jpg"}`))
	})

	_, err := c.Upload(context.Background(), "cat.jpg", []byte("x"))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string

	c := newFakeHost(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.Delete(context.Background(), "fid-123")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/v1/files/fid-123", gotPath)
}

func TestDelete_HostError(t *testing.T) {
	c := newFakeHost(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"file not found"}`, http.StatusNotFound)
	})

	err := c.Delete(context.Background(), "fid-123")
	assert.Error(t, err)
}

func TestDelete_RequiresFileID(t *testing.T) {
	c := newFakeHost(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for an empty file ID")
	})

	assert.Error(t, c.Delete(context.Background(), ""))
}
