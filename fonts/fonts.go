// Package fonts 提供内置字体（Latin Modern），用于标题、图例与数字标签。
package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10bold"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// 内置字体名，对应 DSL/配置中的 builtin:<name>。
const (
	Sans      = "sans"
	SansBold  = "sans-bold"
	Serif     = "serif"
	SerifBold = "serif-bold"
	Mono      = "mono"
)

var builtin = map[string][]byte{
	Sans:      lmsans10regular.TTF,
	SansBold:  lmsans10bold.TTF,
	Serif:     lmroman10regular.TTF,
	SerifBold: lmroman10bold.TTF,
	Mono:      lmmono10regular.TTF,
}

// Builtin 返回内置字体数据，name 可带 builtin: 前缀。
func Builtin(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, "builtin:"))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("未知内置字体 %s（可选：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names lists the built-in font names.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load 读取字体：builtin:* 返回内置字体，其余按文件路径读取，相对路径基于 baseDir。
func Load(src, baseDir string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体路径为空")
	}
	if strings.HasPrefix(src, "builtin:") {
		return Builtin(src)
	}
	path := src
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}
