package model

import "errors"

var (
	// ErrNotFound 快照中没有该代码。
	ErrNotFound = errors.New("not found")
	// ErrFetchFailed 网络、解析或提供方错误。
	ErrFetchFailed = errors.New("fetch failed")
	// ErrInvalidQuery 周期、回看天数等输入不合法。
	ErrInvalidQuery = errors.New("invalid query")
)

// FetchError 某一阶段拉取失败，errors.Is 同时匹配 ErrFetchFailed 与底层原因。
type FetchError struct {
	Stage string
	Err   error
}

func (e *FetchError) Error() string {
	return e.Stage + ": fetch failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetchFailed, e.Err} }

// Failed 包装为 FetchError；err 为 nil 时返回 nil。
func Failed(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Stage: stage, Err: err}
}
