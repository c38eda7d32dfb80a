package main

import (
	"fmt"
	"strconv"
	"strings"
)

// cmdArgs 是所有子命令共用的参数集合；各子命令只接受自己声明的那部分。
type cmdArgs struct {
	ConfigPath string

	Collection string
	All        bool
	Random     bool

	Search string
	Year   string

	Offset    int
	OffsetSet bool

	Language    string
	LanguageSet bool

	Viewport    int
	ViewportSet bool

	Out          string
	Force        bool
	CheckPosters bool

	Verbose bool

	Positional []string
}

// flagSet 描述子命令允许的 flag。
type flagSet struct {
	selectors  bool // --collection/--all/--random/--search/--year/--offset
	export     bool // --out/--force/--check-posters
	positional bool
}

var (
	showFlags   = flagSet{selectors: true}
	browseFlags = flagSet{selectors: true}
	searchFlags = flagSet{positional: true}
	exportFlags = flagSet{selectors: true, export: true}
)

func parseArgs(args []string, fs flagSet) (cmdArgs, error) {
	ca := cmdArgs{}

	// value 同时支持 "--k v" 与 "--k=v"。
	value := func(i *int, a, name string) (string, bool, error) {
		if a == name {
			if *i+1 >= len(args) {
				return "", true, fmt.Errorf("%s 需要一个值", name)
			}
			*i++
			return args[*i], true, nil
		}
		if strings.HasPrefix(a, name+"=") {
			return strings.TrimPrefix(a, name+"="), true, nil
		}
		return "", false, nil
	}
	intValue := func(name, v string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s 必须是整数，实际是 %q", name, v)
		}
		return n, nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]

		if v, ok, err := value(&i, a, "--config"); ok {
			if err != nil {
				return cmdArgs{}, err
			}
			ca.ConfigPath = v
			continue
		}
		if v, ok, err := value(&i, a, "--language"); ok {
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Language, ca.LanguageSet = v, true
			continue
		}
		if v, ok, err := value(&i, a, "--viewport"); ok {
			if err != nil {
				return cmdArgs{}, err
			}
			n, err := intValue("--viewport", v)
			if err != nil {
				return cmdArgs{}, err
			}
			ca.Viewport, ca.ViewportSet = n, true
			continue
		}
		if a == "--verbose" || a == "-v" {
			ca.Verbose = true
			continue
		}

		if fs.selectors {
			if v, ok, err := value(&i, a, "--collection"); ok {
				if err != nil {
					return cmdArgs{}, err
				}
				ca.Collection = strings.TrimSpace(v)
				if ca.Collection == "" {
					return cmdArgs{}, fmt.Errorf("--collection 不能为空")
				}
				continue
			}
			if v, ok, err := value(&i, a, "--search"); ok {
				if err != nil {
					return cmdArgs{}, err
				}
				ca.Search = v
				continue
			}
			if v, ok, err := value(&i, a, "--year"); ok {
				if err != nil {
					return cmdArgs{}, err
				}
				ca.Year = v
				continue
			}
			if v, ok, err := value(&i, a, "--offset"); ok {
				if err != nil {
					return cmdArgs{}, err
				}
				n, err := intValue("--offset", v)
				if err != nil {
					return cmdArgs{}, err
				}
				ca.Offset, ca.OffsetSet = n, true
				continue
			}
			switch a {
			case "--all":
				ca.All = true
				continue
			case "--random":
				ca.Random = true
				continue
			}
		}

		if fs.export {
			if v, ok, err := value(&i, a, "--out"); ok {
				if err != nil {
					return cmdArgs{}, err
				}
				ca.Out = v
				continue
			}
			switch a {
			case "--force":
				ca.Force = true
				continue
			case "--check-posters":
				ca.CheckPosters = true
				continue
			}
		}

		if strings.HasPrefix(a, "-") {
			return cmdArgs{}, fmt.Errorf("未知参数 %q", a)
		}
		if !fs.positional {
			return cmdArgs{}, fmt.Errorf("多余的参数 %q", a)
		}
		ca.Positional = append(ca.Positional, a)
	}

	n := 0
	for _, b := range []bool{ca.Collection != "", ca.All, ca.Random} {
		if b {
			n++
		}
	}
	if n > 1 {
		return cmdArgs{}, fmt.Errorf("--collection、--all、--random 只能选择一个")
	}
	if fs.export && strings.TrimSpace(ca.Out) == "" {
		return cmdArgs{}, fmt.Errorf("--out 不能为空")
	}
	if ca.ViewportSet && ca.Viewport <= 0 {
		return cmdArgs{}, fmt.Errorf("--viewport 必须为正数，实际是 %d", ca.Viewport)
	}
	if ca.OffsetSet && ca.Offset < 0 {
		return cmdArgs{}, fmt.Errorf("--offset 不能为负数，实际是 %d", ca.Offset)
	}
	return ca, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

const usage = `用法：
  mcv show    [选择] [筛选] [--offset PX]
  mcv browse  [选择] [筛选]
  mcv search  QUERY
  mcv export  --out FILE [选择] [筛选] [--offset PX] [--force] [--check-posters]

命令：
  show    输出一帧窗口（TTY 为文本；否则为单个 JSON 文档）
  browse  交互浏览（逐行读取命令，输入 q 退出）
  search  按名称搜索 collection id
  export  把当前窗口写为静态 HTML

使用 "mcv <命令> --help" 查看详细说明。
`

const selectorUsage = `选择（默认 --all）：
  --collection ID   单个 collection
  --all             全部精选 collection 合并
  --random          从 pool 中随机选一个 collection

筛选：
  --search TEXT     标题包含（不区分大小写）
  --year YEAR       发行年份前缀（all 表示不过滤）

通用：
  --config PATH     配置文件（默认 ./mcv.json，可选）
  --language TAG    TMDB 语言，如 en-US
  --viewport PX     视口高度
  -v, --verbose     输出调试日志到 stderr
  -h, --help        显示帮助
`

func commandUsage(cmd string) string {
	switch cmd {
	case "show":
		return "用法：\n  mcv show [选择] [筛选] [--offset PX]\n\n" + selectorUsage
	case "browse":
		return "用法：\n  mcv browse [选择] [筛选]\n\n" + selectorUsage
	case "search":
		return `用法：
  mcv search QUERY

按名称调用 TMDB /search/collection，输出 id 与名称（非 TTY 时输出 JSON 数组）。
`
	case "export":
		return `用法：
  mcv export --out FILE [选择] [筛选] [--offset PX] [--force] [--check-posters]

参数：
  --out FILE        输出 HTML 路径（原子写入）
  --force           覆盖已存在的文件
  --check-posters   下载并校验窗口内海报，失败的使用占位图

` + selectorUsage
	default:
		return usage
	}
}
