package handlers

import (
	"net/http"

	"github.com/jsonzilla/template-go-mongodb/internal/utils"
)

// HealthChecker reports the state of the database connection.
type HealthChecker interface {
	Health() map[string]string
}

type CommonHandler struct {
	db HealthChecker
}

func NewCommonHandler(db HealthChecker) *CommonHandler {
	return &CommonHandler{db: db}
}

func (h *CommonHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "running..."})
}

func (h *CommonHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	stats := h.db.Health()
	code := http.StatusOK
	if _, failed := stats["error"]; failed {
		code = http.StatusServiceUnavailable
	}
	utils.RespondWithJSON(w, code, stats)
}
