package archiveclient

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/photo_archive/pkg/archiveproto"
)

func archiveServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func TestDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("PK\x03\x04"), 5000)
	var gotPath string
	ts := archiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", archiveproto.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="archive.zip"`)
		for i := 0; i < len(payload); i += 1000 {
			_, _ = w.Write(payload[i : i+1000])
			http.NewResponseController(w).Flush()
		}
	})

	var out bytes.Buffer
	n, err := New().Download(context.Background(), ts.URL+"/", "7kna", &out)
	require.NoError(t, err)

	assert.Equal(t, "/archive/7kna/", gotPath)
	assert.Equal(t, int64(len(payload)), n)
	assert.Equal(t, payload, out.Bytes())
}

func TestDownload_NotFound(t *testing.T) {
	ts := archiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(archiveproto.NotFoundMessage))
	})

	var out bytes.Buffer
	_, err := New().Download(context.Background(), ts.URL, "missing", &out)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, out.Len())
}

func TestDownload_Errors(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		errContains string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "Archive is temporarily unavailable", http.StatusInternalServerError)
			},
			errContains: "500",
		},
		{
			name: "unexpected content type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html></html>"))
			},
			errContains: "content type",
		},
		{
			name: "aborted stream",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", archiveproto.ContentType)
				_, _ = w.Write([]byte("PK\x03\x04 partial"))
				http.NewResponseController(w).Flush()
				panic(http.ErrAbortHandler)
			},
			errContains: "interrupted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := archiveServer(t, tt.handler)

			_, err := New().Download(context.Background(), ts.URL, "x", &bytes.Buffer{})
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.errContains)
			assert.NotErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDownload_Progress(t *testing.T) {
	ts := archiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", archiveproto.ContentType)
		_, _ = w.Write(bytes.Repeat([]byte{1}, 3000))
	})

	var progress bytes.Buffer
	_, err := New(WithProgress(&progress)).Download(context.Background(), ts.URL, "7kna", &bytes.Buffer{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(progress.String(), "\n"), "\r")
	last := lines[len(lines)-1]
	assert.True(t, strings.HasPrefix(last, "Downloading 7kna "), last)
	assert.Contains(t, last, "2.9 KB")
	assert.Contains(t, last, "✓")
}

func TestDownload_Cancelled(t *testing.T) {
	ts := archiveServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Download(ctx, ts.URL, "x", &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}
