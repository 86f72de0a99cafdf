package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCDNStorePut(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotKey = r.Header.Get("AccessKey")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := NewCDNStore(srv.URL, "proofkit-zone", "secret", "https://cdn.example.com")

	url, err := store.Put(context.Background(), "u/1/p/2/a/3/original/x.jpg", "image/jpeg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/u/1/p/2/a/3/original/x.jpg", url)
	require.Equal(t, "/proofkit-zone/u/1/p/2/a/3/original/x.jpg", gotPath)
	require.Equal(t, "secret", gotKey)
	require.Equal(t, "image/jpeg", gotContentType)
	require.Equal(t, "jpegbytes", string(gotBody))
}

func TestCDNStorePutRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := NewCDNStore(srv.URL, "zone", "wrong", "https://cdn.example.com")

	_, err := store.Put(context.Background(), "a/b.jpg", "image/jpeg", strings.NewReader("x"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
}

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()

	url, err := store.Put(context.Background(), "a/b.jpg", "image/jpeg", strings.NewReader("bytes"))
	require.NoError(t, err)
	require.Equal(t, "mem://a/b.jpg", url)

	data, ok := store.Get("a/b.jpg")
	require.True(t, ok)
	require.Equal(t, "bytes", string(data))
}
