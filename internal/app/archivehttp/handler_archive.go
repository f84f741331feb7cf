package archivehttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) getArchive(w http.ResponseWriter, r *http.Request) error {
	hash := chi.URLParam(r, "archive_hash")

	return s.Archives.Stream(r.Context(), hash, newResponseSink(w))
}
