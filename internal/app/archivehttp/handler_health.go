package archivehttp

import (
	"encoding/json"
	"net/http"

	"github.com/samber/lo"

	"github.com/sir_venger/photo_archive/internal/usecase/archivesvc"
)

// healthCheck описывает одну строку отчёта /health.
type healthCheck struct {
	Name      string `json:"name"`
	Target    string `json:"target"`
	Available bool   `json:"available"`
	Detail    string `json:"detail,omitempty"`
}

// healthStats: payload ответа /health.
type healthStats struct {
	OK     bool          `json:"ok"`
	Checks []healthCheck `json:"checks"`
}

// getHealth повторяет предстартовую проверку: архиватор находится, каталог с фото читается.
func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	statuses := archivesvc.CheckArchiver(s.archiver, s.Cfg.PhotosDir)

	stats := healthStats{
		OK: lo.EveryBy(statuses, func(st archivesvc.Status) bool { return st.Available }),
		Checks: lo.Map(statuses, func(st archivesvc.Status, _ int) healthCheck {
			return healthCheck{Name: st.Name, Target: st.Target, Available: st.Available, Detail: st.Detail}
		}),
	}

	w.Header().Set("Content-Type", "application/json")
	if !stats.OK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(stats)
}
