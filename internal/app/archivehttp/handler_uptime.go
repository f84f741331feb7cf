package archivehttp

import (
	"net/http"
	"time"
)

const uptimeLayout = "2006-01-02 15:04:05"

// getUptime пишет текущее время раз в интервал, пока клиент не отключится.
func (s *Server) getUptime(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	ticker := time.NewTicker(s.Cfg.UptimeInterval.Duration())
	defer ticker.Stop()

	for {
		line := time.Now().Format(uptimeLayout) + "<br>"
		if _, err := w.Write([]byte(line)); err != nil {
			return
		}
		if err := rc.Flush(); err != nil {
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
