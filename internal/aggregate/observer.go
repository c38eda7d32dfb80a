package aggregate

import "time"

// Observer 把“fan-out 进度”从聚合流程中解耦出来。
//
// 约束：
// - aggregate 包只负责发事件，不做任何输出
// - 实现必须并发安全：OnFetchDone 可能来自多个 goroutine
type Observer interface {
	// OnFetchStart 在发出请求前调用一次。
	OnFetchStart(total int)
	// OnFetchDone 在每个 collection 完成（成功或失败）时调用；idx 为完成序号（从 1 开始）。
	OnFetchDone(idx, total int, id string, err error, dur time.Duration)
}
