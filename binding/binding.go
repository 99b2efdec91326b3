// Package binding 解析 ${path} 占位符，从 JSON 风格的数据（map/slice）中取值。
//
// 路径写法：votes.grid、votes.grid[0]、rows[1][2]，也接受 rows.1.2。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// step 是路径中的一步：Key 非空时按键取值，否则按下标取值。
type step struct {
	key   string
	index int
}

// Interpolate 将文本中的 ${path} 替换为 data 中的值；路径不存在时保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil || !strings.Contains(text, "${") {
		return text
	}
	var sb strings.Builder
	last := 0
	for _, m := range placeholder.FindAllStringSubmatchIndex(text, -1) {
		sb.WriteString(text[last:m[0]])
		if val, ok := Lookup(data, text[m[2]:m[3]]); ok {
			sb.WriteString(format(val))
		} else {
			sb.WriteString(text[m[0]:m[1]])
		}
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}

// Lookup 返回 data 中 path 指向的原始值（不做字符串化），用于绑定矩阵等结构化数据。
// path 可带或不带 ${} 包裹。
func Lookup(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	if p, ok := Placeholder(path); ok {
		path = p
	}
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, s := range steps {
		if current, ok = s.apply(current); !ok {
			return nil, false
		}
	}
	return current, true
}

// Placeholder 报告 text 是否恰好是一个 ${path} 占位符，并返回其中的路径。
func Placeholder(text string) (string, bool) {
	loc := placeholder.FindStringSubmatchIndex(text)
	if loc == nil || loc[0] != 0 || loc[1] != len(text) {
		return "", false
	}
	return strings.TrimSpace(text[loc[2]:loc[3]]), true
}

func parsePath(path string) ([]step, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name == "" && rest == "" {
			return nil, false
		}
		if name != "" {
			steps = append(steps, step{key: name, index: -1})
		}
		for rest != "" {
			idx, tail, ok := strings.Cut(rest, "]")
			if !ok {
				return nil, false
			}
			n, err := strconv.Atoi(idx)
			if err != nil || n < 0 {
				return nil, false
			}
			steps = append(steps, step{index: n})
			rest = strings.TrimPrefix(tail, "[")
		}
	}
	return steps, true
}

func (s step) apply(current any) (any, bool) {
	if s.key != "" {
		switch c := current.(type) {
		case map[string]any:
			v, ok := c[s.key]
			return v, ok
		case map[string]string:
			v, ok := c[s.key]
			return v, ok
		}
		// rows.1 形式的数字键也可用于列表
		n, err := strconv.Atoi(s.key)
		if err != nil {
			return nil, false
		}
		s = step{index: n}
	}
	switch c := current.(type) {
	case []any:
		if s.index < len(c) {
			return c[s.index], true
		}
	case []string:
		if s.index < len(c) {
			return c[s.index], true
		}
	}
	return nil, false
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
