package handlers

import (
	"net/http"

	"github.com/cloo-solutions/concierge/internal/api"
)

func Health(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}
