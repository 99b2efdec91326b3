package layout

import (
	"cmp"
	"fmt"
	"image/color"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/palette"
)

// StyleInput 是"标量或按类别映射"的二选一输入，零值表示未设置。
// 标量会广播到所有类别；映射在 Compile 时一次性解析成每个类别的具体值。
type StyleInput[K cmp.Ordered, V any] struct {
	scalar *V
	per    map[K]V
}

// Scalar returns a StyleInput that applies v to every category.
func Scalar[K cmp.Ordered, V any](v V) StyleInput[K, V] {
	return StyleInput[K, V]{scalar: &v}
}

// PerCategory returns a StyleInput backed by a category → value map.
func PerCategory[K cmp.Ordered, V any](m map[K]V) StyleInput[K, V] {
	cp := make(map[K]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return StyleInput[K, V]{per: cp}
}

// IsSet reports whether a scalar or a map was given.
func (s StyleInput[K, V]) IsSet() bool { return s.scalar != nil || s.per != nil }

// resolve 把输入展开成 categories 上的完整映射。
// countCode 非空时，映射条目少于类别数按该错误码报告（图标/标记数量不足）。
func (s StyleInput[K, V]) resolve(categories []K, what string, countCode werrors.Code) (map[K]V, error) {
	if !s.IsSet() {
		return nil, nil
	}
	out := make(map[K]V, len(categories))
	if s.scalar != nil {
		for _, c := range categories {
			out[c] = *s.scalar
		}
		return out, nil
	}
	if countCode != "" && len(s.per) < len(categories) {
		return nil, werrors.New(countCode, "%s 数量 %d 少于类别数 %d", what, len(s.per), len(categories))
	}
	for _, c := range categories {
		v, ok := s.per[c]
		if !ok {
			return nil, werrors.New(werrors.ErrCodeMissingStyle, "类别 %v 缺少 %s", c, what)
		}
		out[c] = v
	}
	return out, nil
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ColorOf converts any color.Color, dropping alpha.
func ColorOf(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	// 去预乘
	return Color{
		R: int(r * 0xffff / a >> 8),
		G: int(g * 0xffff / a >> 8),
		B: int(b * 0xffff / a >> 8),
	}
}

// ParseColor 解析颜色字符串，见 palette.Parse。
func ParseColor(value string) (Color, error) {
	c, err := palette.Parse(value)
	if err != nil {
		return Color{}, err
	}
	if c.A == 0 {
		return Color{}, nil
	}
	return ColorOf(c), nil
}

// RGBA converts c to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// Hex formats c as #rrggbb.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Marker 是标记符号，沿用 matplotlib 的单字符写法。
type Marker string

const (
	MarkerCircle        Marker = "o"
	MarkerSquare        Marker = "s"
	MarkerTriangleUp    Marker = "^"
	MarkerTriangleDown  Marker = "v"
	MarkerTriangleLeft  Marker = "<"
	MarkerTriangleRight Marker = ">"
	MarkerDiamond       Marker = "D"
	MarkerThinDiamond   Marker = "d"
	MarkerPentagon      Marker = "p"
	MarkerHexagon       Marker = "h"
	MarkerStar          Marker = "*"
	MarkerPlus          Marker = "+"
	MarkerCross         Marker = "x"
	MarkerPoint         Marker = "."
)

var markerNames = map[string]Marker{
	"circle":   MarkerCircle,
	"square":   MarkerSquare,
	"triangle": MarkerTriangleUp,
	"diamond":  MarkerDiamond,
	"pentagon": MarkerPentagon,
	"hexagon":  MarkerHexagon,
	"star":     MarkerStar,
	"plus":     MarkerPlus,
	"cross":    MarkerCross,
	"point":    MarkerPoint,
}

// ParseMarker 接受单字符符号或英文名称（circle、square、star 等）。
func ParseMarker(s string) (Marker, error) {
	v := strings.TrimSpace(s)
	m := Marker(v)
	if m.Valid() {
		return m, nil
	}
	if named, ok := markerNames[strings.ToLower(v)]; ok {
		return named, nil
	}
	return "", werrors.New(werrors.ErrCodeInvalidInput, "未知标记符号 %q", s)
}

// Valid reports whether m is one of the supported marker symbols.
func (m Marker) Valid() bool {
	switch m {
	case MarkerCircle, MarkerSquare, MarkerTriangleUp, MarkerTriangleDown,
		MarkerTriangleLeft, MarkerTriangleRight, MarkerDiamond, MarkerThinDiamond,
		MarkerPentagon, MarkerHexagon, MarkerStar, MarkerPlus, MarkerCross, MarkerPoint:
		return true
	}
	return false
}

// Filled reports whether the marker is drawn as a filled shape (+ and x are strokes).
func (m Marker) Filled() bool { return m != MarkerPlus && m != MarkerCross }

// RectStyle 是矩形模式下按类别设置的边框与透明度；FaceColor 覆盖 Colors 作为填充色。
type RectStyle[K cmp.Ordered] struct {
	EdgeColor StyleInput[K, Color]
	LineWidth StyleInput[K, float64] // pt
	Alpha     StyleInput[K, float64]
	FaceColor StyleInput[K, Color]
}
