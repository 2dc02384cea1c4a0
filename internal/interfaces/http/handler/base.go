package handler

import (
	"errors"
	"net/http"

	"github.com/curator/backend/internal/domain/shared"
	"github.com/curator/backend/internal/interfaces/http/dto"
	"github.com/curator/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler is embedded by the concrete handlers and writes responses in
// the shared envelope format.
type BaseHandler struct{}

// getRequestID returns the ID minted by the RequestID middleware, falling
// back to the caller's header when the middleware did not run (direct
// handler tests, unrouted contexts).
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getOperator extracts the authenticated token subject, empty on
// unauthenticated routes.
func getOperator(c *gin.Context) string {
	return middleware.GetJWTSubject(c)
}

// Success sends a 200 with data in the success envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 with list data and its counts
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, returned int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, returned))
}

// Accepted sends a 202 for work that was enqueued rather than completed
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error envelope with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// TooManyRequests sends a 429
func (h *BaseHandler) TooManyRequests(c *gin.Context, message string) {
	h.Error(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, message)
}

// ServiceUnavailable sends a 503
func (h *BaseHandler) ServiceUnavailable(c *gin.Context, message string) {
	h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeNotReady, message)
}

// HandleError translates an error into an error response. Domain errors,
// wrapped or not, map their code onto a transport code and status; anything
// else becomes an opaque 500 so internals never leak to callers.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
