// Package palette 提供 waffle 使用的颜色解析与色带（colormap）工具。
//
// 色带分两类：Listed（离散色表，例如 Set2）与 Gradient（连续渐变，例如 viridis）。
// 布局引擎只接收 Colormap 值；按名称查找色带（ByName）仅供 DSL/CLI 前端使用。
package palette

import (
	"fmt"
	"image/color"
	"math"
	"slices"

	ggpalette "github.com/aclements/go-gg/palette"
	"github.com/aclements/go-moremath/vec"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colormap maps t ∈ [0, 1] to a colour.
type Colormap interface {
	Name() string
	At(t float64) color.Color
	// Colors returns the discrete colour list of a listed colormap, or nil for
	// a continuous one.
	Colors() []color.RGBA
}

// Listed 是离散色表，At 按 t 等分取色。
type Listed struct {
	name   string
	colors []color.RGBA
}

// NewListed 构造离散色表；colors 为空时返回错误。
func NewListed(name string, colors []color.RGBA) (Listed, error) {
	if len(colors) == 0 {
		return Listed{}, fmt.Errorf("palette: 色表 %s 不能为空", name)
	}
	cp := make([]color.RGBA, len(colors))
	copy(cp, colors)
	return Listed{name: name, colors: cp}, nil
}

func (l Listed) Name() string { return l.name }

func (l Listed) At(t float64) color.Color {
	idx := int(clamp01(t) * float64(len(l.colors)))
	if idx >= len(l.colors) {
		idx = len(l.colors) - 1
	}
	return l.colors[idx]
}

func (l Listed) Colors() []color.RGBA {
	cp := make([]color.RGBA, len(l.colors))
	copy(cp, l.colors)
	return cp
}

// Gradient 是连续色带，在 sRGB 控制点之间做线性光插值（go-gg palette.RGBGradient）。
type Gradient struct {
	name string
	g    ggpalette.RGBGradient
}

// NewGradient 以均匀分布的控制点构造连续色带，至少需要两个控制点。
func NewGradient(name string, stops []color.RGBA) (Gradient, error) {
	if len(stops) < 2 {
		return Gradient{}, fmt.Errorf("palette: 渐变 %s 至少需要两个控制点", name)
	}
	cp := make([]color.RGBA, len(stops))
	copy(cp, stops)
	return Gradient{name: name, g: ggpalette.RGBGradient{Colors: cp}}, nil
}

func (g Gradient) Name() string { return g.name }

func (g Gradient) At(t float64) color.Color { return g.g.Map(clamp01(t)) }

func (g Gradient) Colors() []color.RGBA { return nil }

// Resize repeats colors until n entries exist, then truncates to n.
func Resize(colors []color.RGBA, n int) []color.RGBA {
	if n <= 0 || len(colors) == 0 {
		return nil
	}
	out := make([]color.RGBA, 0, n)
	for len(out)+len(colors) <= n {
		out = append(out, colors...)
	}
	return append(out, colors[:n-len(out)]...)
}

// Sample 为 n 个类别取色：离散色表按 Resize 重复/截断，连续色带在 [0,1] 上等距采样。
func Sample(cmap Colormap, n int) []color.RGBA {
	if cmap == nil || n <= 0 {
		return nil
	}
	if listed := cmap.Colors(); listed != nil {
		return Resize(listed, n)
	}
	out := make([]color.RGBA, 0, n)
	for _, t := range vec.Linspace(0, 1, n) {
		out = append(out, toRGBA(cmap.At(t)))
	}
	return out
}

// Truncate 截取色带 [lo, hi] 区间并以 n 个控制点重建为连续色带。
func Truncate(cmap Colormap, lo, hi float64, n int) (Gradient, error) {
	if cmap == nil {
		return Gradient{}, fmt.Errorf("palette: 色带为空")
	}
	if n < 2 {
		n = 2
	}
	if lo < 0 || hi > 1 || lo >= hi {
		return Gradient{}, fmt.Errorf("palette: 截取区间 [%g, %g] 无效", lo, hi)
	}
	stops := make([]color.RGBA, 0, n)
	for _, t := range vec.Linspace(lo, hi, n) {
		stops = append(stops, toRGBA(cmap.At(t)))
	}
	name := fmt.Sprintf("trunc(%s,%.2f,%.2f)", cmap.Name(), lo, hi)
	return NewGradient(name, stops)
}

// Boundary 构造分段色表：bounds 严格递增且比 colors 多一个，
// 返回的 norm 把 [bounds[i], bounds[i+1]) 内的值映射为下标 i（最后一个区间含右端点），
// 区间外的值与 NaN 返回 -1。
func Boundary(colors []color.RGBA, bounds []float64) (Listed, func(float64) int, error) {
	if len(colors) == 0 {
		return Listed{}, nil, fmt.Errorf("palette: 分段色表至少需要一个颜色")
	}
	if len(bounds) != len(colors)+1 {
		return Listed{}, nil, fmt.Errorf("palette: %d 个颜色需要 %d 个边界，得到 %d", len(colors), len(colors)+1, len(bounds))
	}
	for i := 1; i < len(bounds); i++ {
		if !(bounds[i] > bounds[i-1]) {
			return Listed{}, nil, fmt.Errorf("palette: 边界必须严格递增，第 %d 个为 %g", i, bounds[i])
		}
	}
	cmap, err := NewListed("boundary_cmap", colors)
	if err != nil {
		return Listed{}, nil, err
	}
	edges := slices.Clone(bounds)
	last := len(edges) - 1
	norm := func(v float64) int {
		if math.IsNaN(v) || v < edges[0] || v > edges[last] {
			return -1
		}
		i, found := slices.BinarySearch(edges, v)
		if found {
			i++
		}
		return min(i-1, last-1)
	}
	return cmap, norm, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return cf.Clamped().Hex()
}

func toRGBA(c color.Color) color.RGBA {
	if rgba, ok := c.(color.RGBA); ok {
		return rgba
	}
	return color.RGBAModel.Convert(c).(color.RGBA)
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(1, t))
}
