package archivehttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sir_venger/photo_archive/internal/config"
	"github.com/sir_venger/photo_archive/internal/models"
	"github.com/sir_venger/photo_archive/internal/testsupport"
	"github.com/sir_venger/photo_archive/internal/usecase/archivesvc"
	"github.com/sir_venger/photo_archive/pkg/archiveproto"
	"github.com/sir_venger/photo_archive/pkg/httperrors"
)

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.PhotosDir = root
	cfg.Archiver = testsupport.ArchiverCommand()
	cfg.UptimeInterval = config.Seconds(50 * time.Millisecond)
	return &cfg
}

func startServer(t *testing.T, cfg *config.Config) (*httptest.Server, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.DebugLevel)
	handler, _, err := NewServer(cfg, zap.New(core))
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts, logs
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestIndex_Embedded(t *testing.T) {
	ts, _ := startServer(t, testConfig(t, t.TempDir()))

	resp, body := get(t, ts.URL+"/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, defaultIndex, body)
}

func TestIndex_FromFile(t *testing.T) {
	index := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<h1>custom</h1>"), 0o644))

	cfg := testConfig(t, t.TempDir())
	cfg.IndexPath = index
	ts, _ := startServer(t, cfg)

	_, body := get(t, ts.URL+"/")
	assert.Equal(t, "<h1>custom</h1>", string(body))
}

func TestNewServer_MissingIndex(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.IndexPath = filepath.Join(t.TempDir(), "nope.html")

	_, _, err := NewServer(cfg, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "index page")
}

func TestNewServer_InvalidChunkSize(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.ChunkSize = 0

	_, _, err := NewServer(cfg, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "chunk size")
}

func TestUnknownRoute(t *testing.T) {
	ts, _ := startServer(t, testConfig(t, t.TempDir()))

	resp, body := get(t, ts.URL+"/files/7kna")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEqual(t, archiveproto.NotFoundMessage, string(body))
}

// fakeArchives подменяет стример, чтобы проверить перевод ошибок в ответ.
type fakeArchives struct {
	stream func(ctx context.Context, hash string, sink archivesvc.Sink) error
}

func (f *fakeArchives) Stream(ctx context.Context, hash string, sink archivesvc.Sink) error {
	return f.stream(ctx, hash, sink)
}

func fakeServer(stream func(ctx context.Context, hash string, sink archivesvc.Sink) error) http.Handler {
	cfg := config.Default()
	srv := &Server{
		Archives: &fakeArchives{stream: stream},
		Cfg:      &cfg,
		Logger:   zap.NewNop(),
		index:    defaultIndex,
	}
	return srv.routes()
}

func TestHandle_ErrorTranslation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
		ctype  string
	}{
		{
			name:   "not found",
			err:    fmt.Errorf("%w: missing", models.ErrNotFound),
			status: http.StatusOK,
			body:   archiveproto.NotFoundMessage,
			ctype:  "text/plain; charset=utf-8",
		},
		{
			name:   "archiver failed before first byte",
			err:    fmt.Errorf("%w: exit status 12", models.ErrArchiverFailed),
			status: http.StatusInternalServerError,
			body:   httperrors.MessageUnavailable + "\n",
			ctype:  "text/plain; charset=utf-8",
		},
		{
			name:   "unexpected",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			body:   httperrors.MessageInternal + "\n",
			ctype:  "text/plain; charset=utf-8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := fakeServer(func(context.Context, string, archivesvc.Sink) error { return tt.err })

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/x/", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, tt.ctype, rec.Header().Get("Content-Type"))
		})
	}
}

func TestHandle_AbortsOnCancel(t *testing.T) {
	h := fakeServer(func(context.Context, string, archivesvc.Sink) error {
		return fmt.Errorf("%w: client gone", models.ErrCancelled)
	})

	rec := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/x/", nil))
	})
}

func TestHandle_AbortsAfterCommit(t *testing.T) {
	h := fakeServer(func(_ context.Context, _ string, sink archivesvc.Sink) error {
		require.NoError(t, sink.Begin(archiveproto.ArchiveFilename))
		_, _ = sink.Write([]byte("PK"))
		return fmt.Errorf("%w: read archiver output: broken pipe", models.ErrArchiverFailed)
	})

	rec := httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/x/", nil))
	})
	assert.Equal(t, "PK", rec.Body.String())
}

func TestHandle_PassesHash(t *testing.T) {
	var got []string
	h := fakeServer(func(_ context.Context, hash string, sink archivesvc.Sink) error {
		got = append(got, hash)
		return sink.Begin(archiveproto.ArchiveFilename)
	})

	for _, path := range []string{"/archive/7kna/", "/archive/7kna"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	assert.Equal(t, []string{"7kna", "7kna"}, got)
}
