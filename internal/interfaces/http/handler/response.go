package handler

import "github.com/curator/backend/internal/interfaces/http/dto"

// APIResponse mirrors the runtime envelope with a typed data field so the
// generated OpenAPI schema shows concrete payload shapes.
// @Description Response envelope with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the envelope shape documented for failure statuses.
// @Description Error response envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}
