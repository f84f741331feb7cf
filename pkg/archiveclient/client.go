package archiveclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/mattn/go-isatty"

	"github.com/sir_venger/photo_archive/pkg/archiveproto"
)

// ErrNotFound означает, что сервер ответил дружелюбным сообщением об отсутствии архива.
var ErrNotFound = errors.New("archive not found")

type Client interface {
	// Download скачивает архив в w и возвращает число записанных байт.
	Download(ctx context.Context, baseURL, archiveHash string, w io.Writer) (int64, error)
}

type Option func(*httpClient)

// WithHTTPClient подменяет HTTP-клиент (по умолчанию пул из go-cleanhttp).
func WithHTTPClient(c *http.Client) Option {
	return func(h *httpClient) {
		h.c = c
	}
}

// WithProgress включает индикатор выполнения, который рисуется в out.
func WithProgress(out io.Writer) Option {
	return func(h *httpClient) {
		h.progress = out
	}
}

type httpClient struct {
	c        *http.Client
	progress io.Writer
}

// New создаёт HTTP-клиент по умолчанию.
func New(opts ...Option) Client {
	h := &httpClient{
		c: cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// TerminalOutput возвращает f, если это терминал, иначе nil: в файл или пайп
// индикатор не рисуем.
func TerminalOutput(f *os.File) io.Writer {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return f
	}
	return nil
}

// Download скачивает архив по идентификатору.
func (h *httpClient) Download(ctx context.Context, baseURL, archiveHash string, w io.Writer) (int64, error) {
	u := fmt.Sprintf(archiveproto.ArchivePathFormat, strings.TrimRight(baseURL, "/"), url.PathEscape(archiveHash))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("archive GET failed: %s", resp.Status)
	}

	// Сервер отвечает 200 и на отсутствующий архив, отличаем по типу содержимого.
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != archiveproto.ContentType {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if string(bytes.TrimSpace(body)) == archiveproto.NotFoundMessage {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, archiveHash)
		}
		return 0, fmt.Errorf("unexpected response content type %q", mediaType)
	}

	var body io.ReadCloser = resp.Body
	if h.progress != nil {
		bar := newProgressBar(h.progress, fmt.Sprintf("Downloading %s", archiveHash), resp.ContentLength)
		bar.render(true, "")
		body = newProgressReadCloser(resp.Body, bar)
		defer body.Close()
	}

	n, err := io.Copy(w, body)
	if err != nil {
		// Обрыв соединения сервером означает, что архив неполный.
		return n, fmt.Errorf("archive download interrupted after %d bytes: %w", n, err)
	}
	return n, nil
}
