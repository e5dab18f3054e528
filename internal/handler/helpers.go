package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/centsible/centsible-go/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 20
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return
}

// handleServiceError maps gateway failures to BFF responses. Transport
// failures keep their upstream status where one makes sense; domain
// rejections become 422.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if te, ok := domain.AsTransport(err); ok {
		switch {
		case te.IsTimeout():
			logger.Error("upstream timeout", zap.Error(err))
			writeError(w, http.StatusGatewayTimeout, te.Message)
		case te.IsUnauthorized():
			logger.Warn("session expired", zap.Int("status", te.Status))
			writeError(w, http.StatusUnauthorized, te.Message)
		case te.IsValidation():
			logger.Debug("validation rejected", zap.Strings("errors", te.Errors))
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: te.Message, Errors: te.Errors})
		case te.Status == http.StatusNotFound:
			logger.Debug("not found", zap.String("error", te.Message))
			writeError(w, http.StatusNotFound, te.Message)
		case te.Status == http.StatusForbidden:
			logger.Warn("forbidden", zap.String("error", te.Message))
			writeError(w, http.StatusForbidden, te.Message)
		default:
			logger.Error("upstream failure", zap.Int("status", te.Status), zap.Error(err))
			writeError(w, http.StatusBadGateway, te.Message)
		}
		return
	}

	if de, ok := domain.AsDomain(err); ok {
		logger.Debug("operation rejected", zap.String("op", de.Op), zap.String("error", de.Message))
		writeError(w, http.StatusUnprocessableEntity, de.Message)
		return
	}

	logger.Error("unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}
