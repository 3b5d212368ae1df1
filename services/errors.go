package services

import "errors"

// 服務層錯誤哨兵，handlers 以 errors.Is 轉換為對應的 HTTP 狀態碼
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("record not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyPaid       = errors.New("rental already paid")
)
