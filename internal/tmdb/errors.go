package tmdb

import (
	"errors"
	"fmt"
)

// Kind 是数据源失败的分类；上层只展示 Message，不区分 Kind。
type Kind int

const (
	// KindRemoteRejected：服务端返回了非 2xx（或无法解析的 2xx 响应）。
	KindRemoteRejected Kind = iota + 1
	// KindUnreachable：请求发出但没有收到响应（网络错误/超时/取消）。
	KindUnreachable
	// KindRequestSetup：请求在本地就无法构造（id 为空、base URL 非法等）。
	KindRequestSetup
)

func (k Kind) String() string {
	switch k {
	case KindRemoteRejected:
		return "remote_rejected"
	case KindUnreachable:
		return "unreachable"
	case KindRequestSetup:
		return "request_setup"
	default:
		return "unknown"
	}
}

const (
	MsgFetchFailed = "Failed to fetch collection details"
	MsgUnreachable = "No response from TMDB server. Please check your internet connection."
	MsgSetup       = "Error setting up the request."
)

// Error 是数据源层的唯一错误类型。Error() 只返回面向用户的 Message。
type Error struct {
	Kind    Kind
	Status  int // 仅 KindRemoteRejected 时有意义
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return MsgFetchFailed
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Detail 返回带分类与底层原因的诊断字符串（用于日志）。
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s status=%d: %s: %v", e.Kind, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s status=%d: %s", e.Kind, e.Status, e.Message)
}

// KindOf 从 err 中提取 Kind；不是 *Error 时返回 0。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
