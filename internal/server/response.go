package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/valpere/meteopin/internal/services"
)

// Response is the standard envelope for every JSON endpoint except the bare
// boolean duplicate check.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func successResponse(message string, data interface{}) Response {
	return Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

func errorResponse(message string) Response {
	return Response{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().UnixMilli(),
	}
}

// mapError translates the service error taxonomy to a status code and a
// client-safe message. Unknown errors collapse to 500 so internal detail
// never reaches a response body.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		return http.StatusBadRequest, services.ErrInvalidRequest.Error()
	case errors.Is(err, services.ErrDuplicateLocation):
		return http.StatusConflict, services.ErrDuplicateLocation.Error()
	case errors.Is(err, services.ErrLocationNotFound):
		return http.StatusNotFound, services.ErrLocationNotFound.Error()
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return http.StatusBadGateway, services.ErrUpstreamUnavailable.Error()
	case errors.Is(err, services.ErrPersistenceFailure):
		return http.StatusInternalServerError, services.ErrPersistenceFailure.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
