// Package icons 将 Font Awesome 图标名映射为字体中的码位。
//
// 图标按字体分为 solid、regular、brands 三套。除名称外，Lookup 也接受
// U+F26E、0xf26e、\uf26e 以及单个字符这几种字面写法，此时不校验图标是否属于该套字体。
package icons

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	werrors "github.com/ByLCY/waffle/errors"
)

// Set 标识图标所在的字体。
type Set string

const (
	Solid   Set = "solid"
	Regular Set = "regular"
	Brands  Set = "brands"
)

// Sets lists every known icon set.
func Sets() []Set { return []Set{Solid, Regular, Brands} }

// ParseSet 解析图标集名称（不区分大小写），空字符串视为 solid。
func ParseSet(name string) (Set, error) {
	switch s := Set(strings.ToLower(strings.TrimSpace(name))); s {
	case "":
		return Solid, nil
	case Solid, Regular, Brands:
		return s, nil
	default:
		return "", werrors.New(werrors.ErrCodeUnknownIconSet, "icon_set 必须是 solid, regular, brands 之一，得到 %q", name)
	}
}

// Lookup 返回图标 name 在 set 中的码位。
func Lookup(set Set, name string) (rune, error) {
	table, ok := tables[set]
	if !ok {
		return 0, werrors.New(werrors.ErrCodeUnknownIconSet, "未知图标集 %q", set)
	}
	key := strings.TrimSpace(name)
	if r, ok := table[strings.ToLower(key)]; ok {
		return r, nil
	}
	if r, ok := literal(key); ok {
		return r, nil
	}
	return 0, werrors.New(werrors.ErrCodeUnknownIcon, "图标集 %s 中没有图标 %q", set, name)
}

// Names 返回 set 中按字母排序的图标名。
func Names(set Set) []string {
	table := tables[set]
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func literal(s string) (rune, bool) {
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return r, r != utf8.RuneError
	}
	lower := strings.ToLower(s)
	for _, prefix := range []string{"u+", "0x", `\u`} {
		if hex, ok := strings.CutPrefix(lower, prefix); ok {
			v, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || v > utf8.MaxRune {
				return 0, false
			}
			return rune(v), true
		}
	}
	return 0, false
}
