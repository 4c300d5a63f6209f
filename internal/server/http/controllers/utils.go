package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cis1951/lec8-backend/internal/livefilter"
	"github.com/cis1951/lec8-backend/internal/post"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	"github.com/cis1951/lec8-backend/pkg/log"
)

// maxPostBytes bounds a POST /posts body.
const maxPostBytes = 1 << 20

// subscriberFields tags a live subscriber log line with its id and filter.
func subscriberFields(id string, f livefilter.Filter, extra ...log.Field) []log.Field {
	fields := append([]log.Field{log.Str("subscriber", id)}, extra...)
	if f.Enabled() {
		fields = append(fields, log.Str("filter", f.String()))
	}
	return fields
}

// writeText writes a plain-text response with the given status code.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}

// writeJSON writes a JSON response with the given data.
func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError maps channel service errors to status codes and the
// plain-text messages clients match on.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *post.ValidationError
	switch {
	case errors.Is(err, channelsvc.ErrNameRequired):
		writeText(w, http.StatusBadRequest, "Channel name is required")
	case errors.Is(err, channelsvc.ErrAlreadyExists):
		writeText(w, http.StatusBadRequest, "Channel already exists")
	case errors.Is(err, channelsvc.ErrNotFound):
		writeText(w, http.StatusNotFound, "Channel not found")
	case errors.Is(err, channelsvc.ErrPostRequired):
		writeText(w, http.StatusBadRequest, "Post is required")
	case errors.As(err, &ve):
		writeText(w, http.StatusBadRequest, ve.Reason)
	default:
		writeText(w, http.StatusInternalServerError, err.Error())
	}
}

// parseLimit parses a limit string and returns a valid limit value.
//
// Returns 0 for empty strings or invalid values.
func parseLimit(limitStr string) int {
	if limitStr == "" {
		return 0
	}
	if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
		return limit
	}
	return 0
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
}
