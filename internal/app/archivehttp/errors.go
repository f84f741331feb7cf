package archivehttp

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sir_venger/photo_archive/internal/models"
	"github.com/sir_venger/photo_archive/pkg/archiveproto"
	"github.com/sir_venger/photo_archive/pkg/httperrors"
)

// handlerFunc описывает обработчик, который возвращает ошибку вместо того, чтобы писать её сам.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle переводит ошибку обработчика в ответ:
//   - NotFound: 200 с дружелюбным текстом;
//   - отмена или любая ошибка после отправки заголовков: обрыв соединения;
//   - остальное: короткое сообщение через httperrors.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cw := &commitWriter{ResponseWriter: w}

		err := h(cw, r)
		switch {
		case err == nil:
			return
		case errors.Is(err, models.ErrCancelled) || cw.committed:
			s.Logger.Debug("aborting response", zap.String("path", r.URL.Path), zap.Error(err))
			// Без chunked-терминатора клиент не примет обрезанный архив за целый.
			panic(http.ErrAbortHandler)
		case errors.Is(err, models.ErrNotFound):
			writeNotFound(w)
		default:
			httperrors.Write(w, err)
		}
	}
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(archiveproto.NotFoundMessage))
}

// commitWriter запоминает, ушли ли клиенту заголовки.
type commitWriter struct {
	http.ResponseWriter
	committed bool
}

func (w *commitWriter) WriteHeader(code int) {
	w.committed = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(p []byte) (int, error) {
	w.committed = true
	return w.ResponseWriter.Write(p)
}

func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
