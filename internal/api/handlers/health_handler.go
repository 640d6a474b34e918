package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/resourcehub/engine/internal/api/types"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.SuccessResponse{Data: map[string]string{"status": "ok"}})
}

// Readiness reports ready only when the database answers a ping.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, types.NewErrorResponse(http.StatusServiceUnavailable, "database unavailable"))
			return
		}
	}
	writeJSON(w, http.StatusOK, types.SuccessResponse{Data: map[string]string{"status": "ready"}})
}
