package errors

import (
	"errors"
	"strings"
)

// ErrValidation 所有批量校验错误的哨兵值，可用 errors.Is 判断
var ErrValidation = errors.New("dados inválidos")

// ValidationError 批量校验错误，逐行收集后一次性返回
type ValidationError struct {
	Messages []string
}

// NewValidationError 创建 ValidationError
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// Add 追加一条错误信息
func (e *ValidationError) Add(msg string) {
	e.Messages = append(e.Messages, msg)
}

// Empty 是否没有任何错误信息
func (e *ValidationError) Empty() bool {
	return len(e.Messages) == 0
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return ErrValidation.Error()
	}
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AsValidation 提取 ValidationError
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
