package handlers

import (
	"net/http"
	"time"

	"github.com/allocsoc/awesome-crawler/internal/httpserver/deps"
	"github.com/allocsoc/awesome-crawler/internal/logger"
)

type reloadResponse struct {
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	DataSource  string    `json:"data_source"`
	TotalItems  int       `json:"total_items"`
	TotalLists  int       `json:"total_lists"`
	LastUpdated time.Time `json:"last_updated"`
}

// Reload reloads the published snapshot before answering. On failure the
// previous data keeps being served and the endpoint answers 500.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Logger.Info("manual reload requested",
			logger.String("remote_ip", r.RemoteAddr))

		stats, err := d.Reloader.Reload(r.Context())
		if err != nil {
			d.Logger.Error("manual reload failed", logger.Error(err))
			writeError(w, d, http.StatusInternalServerError, "Failed to reload data: "+err.Error())
			return
		}

		writeJSON(w, d, http.StatusOK, reloadResponse{
			Status:      "success",
			Message:     "Data reloaded successfully",
			DataSource:  d.DataSource,
			TotalItems:  stats.Items,
			TotalLists:  stats.Lists,
			LastUpdated: stats.LastUpdated,
		})
	}
}
