package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct {
	Started time.Time
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":         true,
		"service":    "jobscout",
		"uptime_sec": int64(time.Since(h.Started).Seconds()),
	})
}
