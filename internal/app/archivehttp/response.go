package archivehttp

import (
	"fmt"
	"net/http"

	"github.com/sir_venger/photo_archive/pkg/archiveproto"
)

// responseSink отдаёт архив в HTTP-ответ. Content-Length не известен заранее,
// поэтому ответ уходит chunked.
type responseSink struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

func newResponseSink(w http.ResponseWriter) *responseSink {
	return &responseSink{
		w:  w,
		rc: http.NewResponseController(w),
	}
}

func (s *responseSink) Begin(filename string) error {
	h := s.w.Header()
	h.Set("Content-Type", archiveproto.ContentType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("X-Content-Type-Options", "nosniff")
	s.w.WriteHeader(http.StatusOK)

	return s.Flush()
}

func (s *responseSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *responseSink) Flush() error {
	return s.rc.Flush()
}
