package client

import (
	"errors"
	"fmt"
)

// 远端 API 错误分类。轮询和线程状态层只依赖这几类，
// 具体 HTTP 细节不外泄给调用方。
var (
	// ErrUnauthorized 无凭证或凭证过期
	ErrUnauthorized = errors.New("unauthorized: missing or expired credential")

	// ErrForbidden 凭证有效但无权访问
	ErrForbidden = errors.New("forbidden: access denied")

	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("resource not found")
)

// TransientError 其余非 2xx 响应和传输/解析失败
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient api error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transient api error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient 判断错误是否为瞬态类
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
