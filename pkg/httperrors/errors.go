package httperrors

import (
	"errors"
	"net/http"

	"github.com/sir_venger/photo_archive/internal/models"
)

// Сообщения для клиента. Подробности ошибки остаются в логах.
const (
	MessageUnavailable = "Archive is temporarily unavailable"
	MessageInternal    = "internal error"
)

// Write отвечает клиенту коротким сообщением, не раскрывая внутренностей ошибки.
func Write(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	case errors.Is(err, models.ErrArchiverFailed):
		http.Error(w, MessageUnavailable, http.StatusInternalServerError)
	default:
		http.Error(w, MessageInternal, http.StatusInternalServerError)
	}
}
