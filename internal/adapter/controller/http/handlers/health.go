package handlers

import (
	"net/http"
	"time"
)

var startTime = time.Now()

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	JSONResponse(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(startTime).String(),
	})
}
