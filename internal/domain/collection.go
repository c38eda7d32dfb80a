package domain

// Collection 是上游一次 fetch 的完整单元：一组相关影片及其描述。
// 每次查询都重新获取，获取后不再修改。
type Collection struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Overview string  `json:"overview"`
	Parts    []Movie `json:"parts"`
}

// FailedFetch 记录 pool 模式下被吸收的单个 collection 失败（仅用于诊断输出）。
type FailedFetch struct {
	ID  string `json:"id"`
	Msg string `json:"msg"`
}

// AggregateView 是一次查询的派生结果：去重 + 按热度排序后的影片序列与描述信息。
//
// 它不持久化，也不原地修改；下一次查询产生新的 AggregateView 整体替换。
type AggregateView struct {
	Name     string  `json:"name"`
	Overview string  `json:"overview"`
	Movies   []Movie `json:"movies"`

	Requested int           `json:"requested"`
	Loaded    int           `json:"loaded"`
	Failed    []FailedFetch `json:"failed"`
}

// Target 描述一次查询的目标：单个 collection，或一组 collection（pool）。
//
// Pool=false 时只使用 IDs[0]；Pool=true 时即使只有一个 id 也按 pool 语义处理（失败被吸收）。
type Target struct {
	IDs  []string
	Pool bool
}

// Single 构造单 collection 目标。
func Single(id string) Target {
	return Target{IDs: []string{id}}
}

// PoolOf 构造 pool 目标（复制入参，避免调用方后续修改影响进行中的查询）。
func PoolOf(ids []string) Target {
	return Target{IDs: append([]string(nil), ids...), Pool: true}
}

// Key 返回用于展示/比较的目标标识。
func (t Target) Key() string {
	if t.Pool {
		return "ALL"
	}
	if len(t.IDs) == 0 {
		return ""
	}
	return t.IDs[0]
}
