package handlers

import (
	"errors"
	"net/http"

	"autohive/services"

	"github.com/gin-gonic/gin"
)

// APIResponse 定義統一的 API 回應結構
type APIResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"` // omitempty 表示如果為空則不顯示
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse 返回成功的回應
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, APIResponse{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 返回失敗的回應
func ErrorResponse(c *gin.Context, statusCode int, message string, err string) {
	c.JSON(statusCode, APIResponse{
		Status:  false,
		Message: message,
		Error:   err,
	})
}

// ServiceErrorResponse 將服務層錯誤哨兵轉換為對應的 HTTP 狀態碼
func ServiceErrorResponse(c *gin.Context, message string, err error) {
	var statusCode int
	var code string

	switch {
	case errors.Is(err, services.ErrValidation):
		statusCode = http.StatusBadRequest
		code = "ERR_VALIDATION"
	case errors.Is(err, services.ErrInvalidTransition):
		statusCode = http.StatusBadRequest
		code = "ERR_INVALID_TRANSITION"
	case errors.Is(err, services.ErrForbidden):
		statusCode = http.StatusForbidden
		code = "ERR_INSUFFICIENT_PERMISSIONS"
	case errors.Is(err, services.ErrNotFound):
		statusCode = http.StatusNotFound
		code = "ERR_NOT_FOUND"
	case errors.Is(err, services.ErrAlreadyPaid):
		statusCode = http.StatusConflict
		code = "ERR_ALREADY_PAID"
	case errors.Is(err, services.ErrConflict):
		statusCode = http.StatusConflict
		code = "ERR_CONFLICT"
	default:
		statusCode = http.StatusInternalServerError
		code = "ERR_DATABASE"
	}

	c.JSON(statusCode, APIResponse{
		Status:  false,
		Message: message,
		Error:   err.Error(),
		Code:    code,
	})
}
