package layout

import (
	"cmp"
	"image/color"
	"math"
	"reflect"
	"strconv"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/icons"
	"github.com/ByLCY/waffle/palette"
)

// Matrix 是前端读入的原始类别矩阵，单元格保持原文。
type Matrix struct {
	Cells [][]string `json:"cells"`
}

// numeric 判断除空白哨兵外的单元格是否全部是数字。
func (m Matrix) numeric(empty *string) bool {
	seen := false
	for _, row := range m.Cells {
		for _, cell := range row {
			if empty != nil && cell == *empty {
				continue
			}
			if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
				return false
			}
			seen = true
		}
	}
	return seen
}

// StyleValue 是前端给出的样式：单个值、按类别的映射或按类别顺序的列表。
type StyleValue struct {
	Scalar *string           `json:"scalar,omitempty"`
	Map    map[string]string `json:"map,omitempty"`
	List   []string          `json:"list,omitempty"`
}

// ScalarStyle wraps a single value.
func ScalarStyle(v string) *StyleValue { return &StyleValue{Scalar: &v} }

// LegendArgs 是图例参数，整体继承（不逐项合并）。
type LegendArgs struct {
	Labels   []string `json:"labels,omitempty" yaml:"labels"`
	Loc      *string  `json:"loc,omitempty" yaml:"loc"`
	NCol     *int     `json:"ncol,omitempty" yaml:"ncol"`
	Title    *string  `json:"title,omitempty" yaml:"title"`
	Flip     *bool    `json:"flip,omitempty" yaml:"flip"`
	FontSize *float64 `json:"fontSize,omitempty" yaml:"fontsize"`
}

// PlotArgs 是单个子图的参数。nil 字段表示未设置，会从图级默认参数继承。
type PlotArgs struct {
	Values      *Matrix     `yaml:"values"`
	Rows        *int        `yaml:"rows"`
	Columns     *int        `yaml:"columns"`
	Empty       *string     `yaml:"empty"`
	Colors      *StyleValue `yaml:"colors"`
	Cmap        *string     `yaml:"cmap"`
	Bounds      []float64   `yaml:"bounds"`
	Labels      []string    `yaml:"labels"`
	Legend      *LegendArgs `yaml:"legend"`
	IconLegend  *bool       `yaml:"icon_legend"`
	IntervalX   *float64    `yaml:"interval_x"`
	IntervalY   *float64    `yaml:"interval_y"`
	BlockAspect *float64    `yaml:"block_aspect"`
	Title       *string     `yaml:"title"`
	TitleSize   *float64    `yaml:"title_size"`
	Icons       *StyleValue `yaml:"icons"`
	IconSet     *string     `yaml:"icon_set"`
	IconSize    *float64    `yaml:"icon_size"`
	ShowNumbers *bool       `yaml:"show_num"`
	Markers     *StyleValue `yaml:"markers"`
	MarkerSize  *float64    `yaml:"marker_size"`
	Rotation    *StyleValue `yaml:"rotation"`
	EdgeColor   *StyleValue `yaml:"edgecolor"`
	LineWidth   *StyleValue `yaml:"linewidth"`
	Alpha       *StyleValue `yaml:"alpha"`
	FaceColor   *StyleValue `yaml:"facecolor"`
	Anchor      *string     `yaml:"anchor"`
	Direction   *string     `yaml:"direction"`
	Origin      *string     `yaml:"origin"`
	Order       *string     `yaml:"order"`
	XOffset     *float64    `yaml:"x_offset"`
	YOffset     *float64    `yaml:"y_offset"`
}

// Merge 返回以 a 为准、未设置字段取自 defaults 的参数。
func (a PlotArgs) Merge(defaults PlotArgs) PlotArgs {
	out := a
	ov := reflect.ValueOf(&out).Elem()
	dv := reflect.ValueOf(defaults)
	for i := range ov.NumField() {
		if ov.Field(i).IsZero() {
			ov.Field(i).Set(dv.Field(i))
		}
	}
	return out
}

// plotLayout 是编译后的、与类别类型无关的单个子图布局。
type plotLayout struct {
	geom     Geometry
	mode     Mode
	commands []Command
	legend   *Legend
}

func compilePlot(a PlotArgs) (plotLayout, error) {
	if a.Values == nil || len(a.Values.Cells) == 0 {
		return plotLayout{}, werrors.New(werrors.ErrCodeInvalidShape, "缺少 values")
	}
	numeric := a.Values.numeric(a.Empty)
	if len(a.Bounds) > 0 && !numeric {
		return plotLayout{}, werrors.New(werrors.ErrCodeInvalidInput, "bounds 只适用于数值矩阵")
	}
	if numeric {
		return compileAs(a, func(s string) (float64, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return 0, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "类别 %q 不是数字", s)
			}
			return v, nil
		}, nil)
	}
	return compileAs(a, func(s string) (string, error) { return s, nil }, a.Empty)
}

func compileAs[K cmp.Ordered](a PlotArgs, parse func(string) (K, error), emptyToken *string) (plotLayout, error) {
	values := make([][]K, len(a.Values.Cells))
	for i, row := range a.Values.Cells {
		values[i] = make([]K, len(row))
		for j, cell := range row {
			if a.Empty != nil && cell == *a.Empty && emptyToken == nil {
				// 数值矩阵中的空白单元格记为 NaN
				values[i][j] = nanOf[K]()
				continue
			}
			v, err := parse(cell)
			if err != nil {
				return plotLayout{}, err
			}
			values[i][j] = v
		}
	}

	var p Params[K]
	p.Values = values
	if emptyToken != nil {
		e, err := parse(*emptyToken)
		if err != nil {
			return plotLayout{}, err
		}
		p.Empty = &e
	}
	p.Rows = deref(a.Rows, 0)
	p.Columns = deref(a.Columns, 0)
	p.Order = CategoryOrder(strings.ToLower(deref(a.Order, "")))

	// 列表形式的样式按类别顺序配对，需要先算出类别。
	tmp := &Waffle[K]{empty: p.Empty}
	cats, _, err := collectCategories(values, tmp.isEmpty, p.Order)
	if err != nil {
		return plotLayout{}, err
	}

	parseColor := func(s string) (Color, error) { return ParseColor(s) }
	parseNum := func(s string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "无法解析数值 %q", s)
		}
		return v, nil
	}
	ident := func(s string) (string, error) { return s, nil }

	if len(a.Bounds) > 0 {
		p.Colors, err = boundaryColors(a.Colors, a.Bounds, cats)
	} else {
		p.Colors, err = styleInput(a.Colors, cats, parse, parseColor)
	}
	if err != nil {
		return plotLayout{}, err
	}
	if a.Cmap != nil {
		if p.Colormap, err = palette.ByName(*a.Cmap); err != nil {
			return plotLayout{}, err
		}
	}
	if p.Icons, err = styleInput(a.Icons, cats, parse, ident); err != nil {
		return plotLayout{}, err
	}
	set, err := icons.ParseSet(deref(a.IconSet, ""))
	if err != nil {
		return plotLayout{}, err
	}
	p.IconSet = set
	p.IconSize = deref(a.IconSize, 0)
	p.ShowNumbers = deref(a.ShowNumbers, false)
	if p.Markers, err = styleInput(a.Markers, cats, parse, ParseMarker); err != nil {
		return plotLayout{}, err
	}
	p.MarkerSize = deref(a.MarkerSize, 0)
	if p.Rotation, err = styleInput(a.Rotation, cats, parse, parseNum); err != nil {
		return plotLayout{}, err
	}
	if p.Rect.EdgeColor, err = styleInput(a.EdgeColor, cats, parse, parseColor); err != nil {
		return plotLayout{}, err
	}
	if p.Rect.LineWidth, err = styleInput(a.LineWidth, cats, parse, parseNum); err != nil {
		return plotLayout{}, err
	}
	if p.Rect.Alpha, err = styleInput(a.Alpha, cats, parse, parseNum); err != nil {
		return plotLayout{}, err
	}
	if p.Rect.FaceColor, err = styleInput(a.FaceColor, cats, parse, parseColor); err != nil {
		return plotLayout{}, err
	}

	p.IntervalX = deref(a.IntervalX, 0.2)
	p.IntervalY = deref(a.IntervalY, 0.2)
	p.BlockAspect = deref(a.BlockAspect, 1)
	if p.Direction, err = ParseDirection(deref(a.Direction, "")); err != nil {
		return plotLayout{}, err
	}
	p.Origin = Origin(strings.ToLower(deref(a.Origin, string(OriginUpper))))
	p.XOffset = deref(a.XOffset, 0)
	p.YOffset = deref(a.YOffset, 0)

	p.Labels = a.Labels
	legend := &LegendOptions{IconLegend: deref(a.IconLegend, false)}
	if a.Legend != nil {
		legend.Labels = a.Legend.Labels
		legend.Loc = deref(a.Legend.Loc, "")
		legend.NCol = deref(a.Legend.NCol, 0)
		legend.Title = deref(a.Legend.Title, "")
		legend.Flip = deref(a.Legend.Flip, false)
	}
	p.Legend = legend

	w, err := Compile(p)
	if err != nil {
		return plotLayout{}, err
	}
	out := plotLayout{
		geom:     w.Geometry(),
		mode:     w.Mode(),
		commands: make([]Command, 0, w.Len()),
		legend:   w.Legend(),
	}
	for cmd := range w.Commands() {
		out.commands = append(out.commands, cmd)
	}
	return out, nil
}

// boundaryColors 按 bounds 分段给数值类别上色，colors 列表的第 i 个颜色对应第 i 个区间。
func boundaryColors[K cmp.Ordered](sv *StyleValue, bounds []float64, categories []K) (StyleInput[K, Color], error) {
	if sv == nil || len(sv.List) == 0 {
		return StyleInput[K, Color]{}, werrors.New(werrors.ErrCodeInvalidInput, "bounds 需要配合 colors 列表使用")
	}
	colors := make([]color.RGBA, len(sv.List))
	for i, s := range sv.List {
		c, err := ParseColor(s)
		if err != nil {
			return StyleInput[K, Color]{}, err
		}
		colors[i] = c.RGBA()
	}
	cmap, norm, err := palette.Boundary(colors, bounds)
	if err != nil {
		return StyleInput[K, Color]{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "bounds 无效")
	}
	listed := cmap.Colors()
	per := make(map[K]Color, len(categories))
	for _, c := range categories {
		v, ok := any(c).(float64)
		if !ok {
			return StyleInput[K, Color]{}, werrors.New(werrors.ErrCodeInvalidInput, "bounds 只适用于数值类别")
		}
		i := norm(v)
		if i < 0 {
			return StyleInput[K, Color]{}, werrors.New(werrors.ErrCodeInvalidInput, "类别 %g 不在 bounds [%g, %g] 内", v, bounds[0], bounds[len(bounds)-1])
		}
		per[c] = ColorOf(listed[i])
	}
	return PerCategory(per), nil
}

// styleInput 将前端样式转换为引擎的 StyleInput；列表按 categories 顺序配对。
func styleInput[K cmp.Ordered, V any](sv *StyleValue, categories []K, key func(string) (K, error), val func(string) (V, error)) (StyleInput[K, V], error) {
	if sv == nil {
		return StyleInput[K, V]{}, nil
	}
	switch {
	case sv.Scalar != nil:
		v, err := val(*sv.Scalar)
		if err != nil {
			return StyleInput[K, V]{}, err
		}
		return Scalar[K](v), nil
	case sv.List != nil:
		m := make(map[K]V, len(sv.List))
		for i, raw := range sv.List {
			if i >= len(categories) {
				break
			}
			v, err := val(raw)
			if err != nil {
				return StyleInput[K, V]{}, err
			}
			m[categories[i]] = v
		}
		return PerCategory(m), nil
	default:
		m := make(map[K]V, len(sv.Map))
		for rawKey, raw := range sv.Map {
			k, err := key(rawKey)
			if err != nil {
				return StyleInput[K, V]{}, err
			}
			v, err := val(raw)
			if err != nil {
				return StyleInput[K, V]{}, err
			}
			m[k] = v
		}
		return PerCategory(m), nil
	}
}

func nanOf[K cmp.Ordered]() K {
	var zero K
	if f, ok := any(&zero).(*float64); ok {
		*f = math.NaN()
	}
	return zero
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
