package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrQuit 表示用户请求退出交互循环。
var ErrQuit = errors.New("quit")

// ErrUnknownCommand 表示无法识别的输入行。
var ErrUnknownCommand = errors.New("未知命令")

// Help 是交互模式的命令说明。
const Help = `命令：
  j / k        向下 / 向上滚动一条
  J / K        向下 / 向上滚动一页
  /文本        按标题搜索（单独的 / 清空搜索）
  y 年份|all   按年份筛选
  c ID         加载指定 collection
  a            加载全部 collection
  s            随机加载一个 collection
  r            重试当前查询
  h            显示/隐藏头部
  q            退出`

// Exec 执行一行交互命令。空行不做任何事。返回 ErrQuit 表示应当退出。
func (e *Explorer) Exec(ctx context.Context, line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.HasPrefix(line, "/") {
		e.SetSearch(line[1:])
		return nil
	}

	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "":
		return nil
	case "j":
		e.ScrollItems(1)
	case "k":
		e.ScrollItems(-1)
	case "J":
		e.ScrollPages(1)
	case "K":
		e.ScrollPages(-1)
	case "y":
		e.SetYear(arg)
	case "c":
		if arg == "" {
			return fmt.Errorf("%w：c 需要 collection id", ErrUnknownCommand)
		}
		return e.LoadCollection(ctx, arg)
	case "a":
		return e.LoadAll(ctx)
	case "s":
		_, err := e.Shuffle(ctx)
		return err
	case "r":
		return e.Retry(ctx)
	case "h":
		e.ToggleHeader()
	case "q", "quit", "exit":
		return ErrQuit
	default:
		return fmt.Errorf("%w：%q", ErrUnknownCommand, line)
	}
	return nil
}
