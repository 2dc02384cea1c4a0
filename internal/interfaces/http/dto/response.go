package dto

// Response is the envelope every API endpoint returns. Exactly one of
// Data and Error is set depending on Success.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries the machine-readable code and human-readable message
// of a failed request.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail pinpoints a single invalid field in a request body
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta describes a list result: Total counts everything matching, Returned
// counts the items in this response.
type Meta struct {
	Total    int64 `json:"total"`
	Returned int   `json:"returned"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewSuccessResponseWithMeta wraps a list result together with its counts
func NewSuccessResponseWithMeta(data interface{}, total int64, returned int) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:    total,
			Returned: returned,
		},
	}
}

// NewErrorResponse builds an error envelope without request correlation
func NewErrorResponse(code, message string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request ID so callers can quote it when reporting problems
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates an error response enumerating the
// fields that failed binding validation
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}

// IDRequest binds a UUID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// SyncTriggerRequest is the optional body of the manual sync trigger.
// When LookbackMinutes is zero the configured window lookback applies.
type SyncTriggerRequest struct {
	LookbackMinutes int `json:"lookback_minutes" binding:"omitempty,min=1,max=10080"`
}

// JobHistoryRequest bounds how many recent jobs the history endpoint returns
type JobHistoryRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}
