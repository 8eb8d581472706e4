package errors

import (
	"errors"
	"fmt"

	"qmtgate/pkg/errors/ecode"
)

// CodedError 携带错误码的error，响应层通过DecodeErr还原
type CodedError struct {
	Code    int
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WithCode 创建一个带错误码的error
func WithCode(code int, message string) error {
	if message == "" {
		message = ecode.Message(code)
	}
	return &CodedError{Code: code, Message: message}
}

// WithCodef 创建一个带错误码的error，message使用格式化串
func WithCodef(code int, format string, args ...interface{}) error {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并附加错误码
func Wrap(err error, code int, message string) error {
	return &CodedError{Code: code, Message: message, Cause: err}
}

// Wrapf 包装底层错误并附加错误码，message使用格式化串
func Wrapf(err error, code int, format string, args ...interface{}) error {
	return &CodedError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// DecodeErr 从error中取出错误码和提示信息。nil视为成功
func DecodeErr(err error) (int, string) {
	if err == nil {
		return ecode.Success, ecode.Message(ecode.Success)
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code, coded.Message
	}
	return ecode.Unknown, err.Error()
}

// IsCode 判断err是否携带指定错误码
func IsCode(err error, code int) bool {
	c, _ := DecodeErr(err)
	return c == code
}
