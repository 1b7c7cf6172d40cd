// Package dto contains Data Transfer Objects for API requests and responses
package dto

import (
	"time"

	"github.com/gin-gonic/gin"
)

// BaseResponse holds the fields shared by every response
type BaseResponse struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// SuccessResponse is a successful response carrying a single payload
type SuccessResponse struct {
	BaseResponse
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is an error response
type ErrorResponse struct {
	BaseResponse
	Error   string      `json:"error"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// PaginatedResponse is a page of search hits
type PaginatedResponse struct {
	BaseResponse
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
	Message    string      `json:"message,omitempty"`
}

// Pagination describes the window of hits returned
type Pagination struct {
	Offset       int   `json:"offset" example:"0"`
	Limit        int   `json:"limit" example:"10"`
	Returned     int   `json:"returned" example:"10"`
	TotalRecords int64 `json:"total_records" example:"50"`
	HasNext      bool  `json:"has_next" example:"true"`
	HasPrev      bool  `json:"has_prev" example:"false"`
}

// HealthResponse is the healthcheck payload
type HealthResponse struct {
	BaseResponse
	Status  string            `json:"status" example:"OK"`
	Service string            `json:"service" example:"esfilter"`
	Version string            `json:"version" example:"1.0.0"`
	Uptime  string            `json:"uptime,omitempty" example:"1h30m45s"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AuthErrorResponse is returned for missing or invalid bearer tokens
type AuthErrorResponse struct {
	BaseResponse
	Error   string `json:"error" example:"unauthorized"`
	Code    int    `json:"code" example:"401"`
	Message string `json:"message" example:"Invalid or expired token"`
}

// RateLimitErrorResponse is returned when a client exceeds its quota
type RateLimitErrorResponse struct {
	BaseResponse
	Error      string `json:"error" example:"rate_limit_exceeded"`
	Code       int    `json:"code" example:"429"`
	Message    string `json:"message" example:"Too many requests"`
	RetryAfter string `json:"retry_after" example:"60s"`
	Limit      int    `json:"limit" example:"100"`
}

// NewSuccessResponse builds a success envelope
func NewSuccessResponse(c *gin.Context, data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		BaseResponse: newBase(c, true),
		Data:         data,
		Message:      message,
	}
}

// NewErrorResponse builds an error envelope
func NewErrorResponse(c *gin.Context, code int, error string, message string, details interface{}) ErrorResponse {
	return ErrorResponse{
		BaseResponse: newBase(c, false),
		Error:        error,
		Code:         code,
		Message:      message,
		Details:      details,
	}
}

// NewPaginatedResponse builds a paginated envelope
func NewPaginatedResponse(c *gin.Context, data interface{}, pagination Pagination, message string) PaginatedResponse {
	return PaginatedResponse{
		BaseResponse: newBase(c, true),
		Data:         data,
		Pagination:   pagination,
		Message:      message,
	}
}

// NewHealthResponse builds the healthcheck envelope
func NewHealthResponse(c *gin.Context, status, service, version, uptime string, checks map[string]string) HealthResponse {
	return HealthResponse{
		BaseResponse: newBase(c, status == "OK"),
		Status:       status,
		Service:      service,
		Version:      version,
		Uptime:       uptime,
		Checks:       checks,
	}
}

// NewAuthErrorResponse builds an authentication error envelope
func NewAuthErrorResponse(c *gin.Context, message string) AuthErrorResponse {
	return AuthErrorResponse{
		BaseResponse: newBase(c, false),
		Error:        "unauthorized",
		Code:         401,
		Message:      message,
	}
}

// NewRateLimitErrorResponse builds a rate limit envelope
func NewRateLimitErrorResponse(c *gin.Context, retryAfter string, limit int) RateLimitErrorResponse {
	return RateLimitErrorResponse{
		BaseResponse: newBase(c, false),
		Error:        "rate_limit_exceeded",
		Code:         429,
		Message:      "Too many requests",
		RetryAfter:   retryAfter,
		Limit:        limit,
	}
}

func newBase(c *gin.Context, success bool) BaseResponse {
	return BaseResponse{
		Success:   success,
		Timestamp: time.Now().UTC(),
		RequestID: getRequestID(c),
	}
}

// getRequestID extracts the request ID stored by the request ID middleware
func getRequestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
