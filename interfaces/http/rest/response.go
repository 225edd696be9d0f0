// Package rest exposes the service over HTTP. Handlers are thin
// adapters: parse, validate, delegate, translate errors.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "netgraph-backend/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable error shape.
type ErrorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

func respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError
	body := &ErrorBody{Type: string(pkgerrors.ErrorTypeInternal), Message: "internal error"}

	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		body.Type = string(appErr.Type)
		body.Code = appErr.Code
		body.Message = appErr.Message
		switch appErr.Type {
		case pkgerrors.ErrorTypeValidation:
			status = http.StatusBadRequest
		case pkgerrors.ErrorTypeNotFound:
			status = http.StatusNotFound
		case pkgerrors.ErrorTypeConflict:
			status = http.StatusConflict
		case pkgerrors.ErrorTypeUnauthorized:
			status = http.StatusUnauthorized
		case pkgerrors.ErrorTypeUnavailable:
			status = http.StatusServiceUnavailable
		case pkgerrors.ErrorTypeDataIntegrity:
			status = http.StatusUnprocessableEntity
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Success: false, Error: body})
}
