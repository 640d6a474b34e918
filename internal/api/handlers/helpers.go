package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/resourcehub/engine/internal/api/middleware"
	"github.com/resourcehub/engine/internal/api/types"
	appErr "github.com/resourcehub/engine/pkg/errors"
	"github.com/resourcehub/engine/pkg/logger"
	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError translates a repository error into the error envelope. The
// message of unclassified errors is never exposed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := appErr.HTTPStatus(err)
	message := "internal server error"
	var ae *appErr.AppError
	if errors.As(err, &ae) && status != http.StatusInternalServerError {
		message = ae.Message
	}
	if status == http.StatusInternalServerError {
		logger.L().Error("request failed",
			zap.String("id", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, types.NewErrorResponse(status, message))
}

func writeInvalid(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, types.NewErrorResponse(http.StatusBadRequest, message))
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, types.NewErrorResponse(http.StatusNotFound, message))
}

// pathID parses the {id} route parameter as a positive integer.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
