package v1

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		w.Write([]byte(`{"error":"internal_error","message":"failed to encode response"}`))
	}
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	errorType := "bad_request"
	switch statusCode {
	case http.StatusInternalServerError:
		errorType = "internal_error"
	case http.StatusServiceUnavailable:
		errorType = "service_unavailable"
	case http.StatusNotFound:
		errorType = "not_found"
	}

	writeJSONResponse(w, statusCode, ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
