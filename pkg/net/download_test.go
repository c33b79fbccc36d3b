package net

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /data.csv", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, clientAgent, r.Header.Get("User-Agent"))
		w.Write([]byte("EmployeeNumber\n1\n"))
	})
	mux.HandleFunc("GET /broken.csv", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestGetHTTPClient(t *testing.T) {
	c := GetHTTPClient()
	assert.NotNil(t, c)
	assert.NotZero(t, c.Timeout)
}

func TestDownload(t *testing.T) {
	s := testServer(t)
	path := filepath.Join(t.TempDir(), "data.csv")

	require.NoError(t, Download(t.Context(), s.URL+"/data.csv", path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "EmployeeNumber\n1\n", string(b))
}

func TestDownload_NotFound(t *testing.T) {
	s := testServer(t)
	path := filepath.Join(t.TempDir(), "data.csv")
	err := Download(t.Context(), s.URL+"/missing.csv", path)
	assert.ErrorIs(t, err, ErrorURLNotFound)
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDownload_ServerError(t *testing.T) {
	s := testServer(t)
	err := Download(t.Context(), s.URL+"/broken.csv", filepath.Join(t.TempDir(), "x.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestDownloadTemp(t *testing.T) {
	s := testServer(t)
	path, err := DownloadTemp(t.Context(), s.URL+"/data.csv")
	require.NoError(t, err)
	defer os.Remove(path)
	assert.FileExists(t, path)

	_, err = DownloadTemp(t.Context(), s.URL+"/missing.csv")
	assert.Error(t, err)
}
