package archivehttp

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/spf13/afero"
)

//go:embed static/index.html
var defaultIndex []byte

// loadIndex читает индексную страницу один раз при старте; при пустом пути отдаётся встроенная страница.
func loadIndex(fsys afero.Fs, path string) ([]byte, error) {
	if path == "" {
		return defaultIndex, nil
	}

	b, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read index page: %w", err)
	}
	return b, nil
}

func (s *Server) getIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.index)
}
