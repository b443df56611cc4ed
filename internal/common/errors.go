package common

import (
	"errors"
	"fmt"
)

// AppError 应用级错误结构
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code, message string, err error) error {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewError 创建新错误
func NewError(code, message string) error {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// CodeOf 取错误链上最外层 AppError 的错误码，没有则返回空串
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode 判断错误链上是否带有指定错误码
func IsCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// MessageOf 取最外层 AppError 的 Message，用于对外展示
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// 错误码常量
const (
	ErrCodeGitHubAPI     = "GITHUB_API_ERROR"
	ErrCodeAuthRequired  = "GITHUB_AUTH_REQUIRED"
	ErrCodeRateLimited   = "GITHUB_RATE_LIMITED"
	ErrCodeInvalidQuery  = "GITHUB_INVALID_QUERY"
	ErrCodeTimeout       = "GITHUB_TIMEOUT"
	ErrCodeUpstreamEmpty = "GITHUB_NOT_FOUND"
	ErrCodeCanceled      = "REQUEST_CANCELED"
	ErrCodeDatabase      = "DATABASE_ERROR"
	ErrCodeAIProcessing  = "AI_PROCESSING_ERROR"
	ErrCodeNotification  = "NOTIFICATION_ERROR"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternal      = "INTERNAL_ERROR"
)
