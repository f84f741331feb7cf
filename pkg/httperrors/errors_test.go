package httperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sir_venger/photo_archive/internal/models"
)

func TestWrite(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "not found",
			err:    fmt.Errorf("%w: /srv/photos/x", models.ErrNotFound),
			status: http.StatusNotFound,
			body:   "Not Found",
		},
		{
			name:   "archiver failed",
			err:    fmt.Errorf("%w: exit status 12", models.ErrArchiverFailed),
			status: http.StatusInternalServerError,
			body:   MessageUnavailable,
		},
		{
			name:   "unknown",
			err:    errors.New("open /etc/secret: permission denied"),
			status: http.StatusInternalServerError,
			body:   MessageInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Write(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))
			assert.NotContains(t, rec.Body.String(), "/srv/photos")
		})
	}
}
