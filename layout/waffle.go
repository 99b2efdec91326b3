package layout

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/icons"
	"github.com/ByLCY/waffle/palette"
)

// 本文件实现方块网格（waffle）布局：把类别矩阵换算成单位坐标系内的绘制命令。
// 坐标系为 (0,0)-(xmax,1)，y 轴向上；计算不依赖页面与渲染器。

// Direction 决定遍历从哪个角开始。
type Direction string

const (
	DirectionSW Direction = "SW" // 左下 → 右上
	DirectionNW Direction = "NW" // 左上 → 右下
	DirectionSE Direction = "SE" // 右下 → 左上
	DirectionNE Direction = "NE" // 右上 → 左下
)

// ParseDirection 不区分大小写，空字符串视为 SW。
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToUpper(strings.TrimSpace(s)))
	if d == "" {
		return DirectionSW, nil
	}
	if _, _, ok := d.steps(); !ok {
		return "", werrors.New(werrors.ErrCodeInvalidDirection, "plot_direction 必须是 NW, SW, NE, SE 之一，得到 %q", s)
	}
	return d, nil
}

// steps 返回列、行的遍历方向（+1 递增，-1 递减）。
func (d Direction) steps() (col, row int, ok bool) {
	switch d {
	case DirectionSW:
		return 1, 1, true
	case DirectionNW:
		return 1, -1, true
	case DirectionSE:
		return -1, 1, true
	case DirectionNE:
		return -1, -1, true
	}
	return 0, 0, false
}

// Origin 决定矩阵第 0 行画在底部还是顶部。
type Origin string

const (
	OriginLower Origin = "lower" // 矩阵第 r 行即网格第 r 行（自下而上）
	OriginUpper Origin = "upper" // 矩阵第一行画在最上方
)

// CategoryOrder 决定类别（以及颜色、图例）的排列顺序。
type CategoryOrder string

const (
	OrderSorted    CategoryOrder = "sorted"
	OrderFirstSeen CategoryOrder = "first-seen"
)

// Mode 是整次布局使用的绘制方式，优先级 icon > number > marker > rect。
type Mode string

const (
	ModeIcon   Mode = "icon"
	ModeNumber Mode = "number"
	ModeMarker Mode = "marker"
	ModeRect   Mode = "rect"
)

// Params 描述一次 waffle 布局的全部输入。零值字段使用默认值：
// 方向 SW、块宽高比 1、间隔 0、原点 lower、类别排序 sorted、色带 Set2。
type Params[K cmp.Ordered] struct {
	Values  [][]K
	Rows    int // 可选，须与 Values 行数一致
	Columns int // 可选，须与 Values 列数一致
	Empty   *K  // 空白哨兵，nil 表示没有；浮点 NaN 始终视为空白

	Colors   StyleInput[K, Color]
	Colormap palette.Colormap

	Icons    StyleInput[K, string] // 图标名或码位字面量
	IconSet  icons.Set
	IconSize float64 // pt，0 表示按块高推算

	ShowNumbers bool

	Markers    StyleInput[K, Marker]
	MarkerSize float64 // pt，0 表示按块大小推算

	Rotation StyleInput[K, float64] // 角度，逆时针
	Rect     RectStyle[K]

	IntervalX   float64 // 列间隔与块宽之比
	IntervalY   float64 // 行间隔与块高之比
	BlockAspect float64 // 块宽 / 块高
	Direction   Direction
	XOffset     float64 // 以块宽为单位
	YOffset     float64 // 以块高为单位
	Origin      Origin
	Order       CategoryOrder

	Labels []string
	Legend *LegendOptions
}

// LegendOptions 控制图例；Labels 与 Params.Labels 等价，二者同时给出时以此处为准。
type LegendOptions struct {
	Labels     []string
	Handles    []LegendEntry
	Loc        string
	NCol       int
	Title      string
	IconLegend bool
	Flip       bool // 按行优先排列（列优先填充时读起来仍是原顺序）
}

// Geometry 是单位坐标系下的网格尺寸。
type Geometry struct {
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	BlockW float64 `json:"blockW"`
	BlockH float64 `json:"blockH"`
	XFull  float64 `json:"xFull"`
	YFull  float64 `json:"yFull"`
	XMax   float64 `json:"xMax"`
	YMax   float64 `json:"yMax"`
}

// Waffle 是校验并解析完样式的布局，不可变，可在多个 goroutine 中重复遍历。
type Waffle[K cmp.Ordered] struct {
	values     [][]K
	empty      *K
	geom       Geometry
	mode       Mode
	dir        Direction
	origin     Origin
	xOffset    float64
	yOffset    float64
	categories []K

	colors     map[K]Color
	glyphs     map[K]string
	glyphFont  string
	iconSize   float64
	markers    map[K]Marker
	markerSize float64
	rotation   map[K]float64
	edge       map[K]Color
	lineWidth  map[K]float64
	alpha      map[K]float64
	face       map[K]Color

	legend *Legend
	count  int
}

// Render 是 Compile 加收集全部命令的便捷写法。
func Render[K cmp.Ordered](p Params[K]) ([]Command, *Legend, error) {
	w, err := Compile(p)
	if err != nil {
		return nil, nil, err
	}
	return slices.Collect(w.Commands()), w.Legend(), nil
}

// Compile 校验输入并解析样式。任何错误都在产生命令之前返回。
func Compile[K cmp.Ordered](p Params[K]) (*Waffle[K], error) {
	rows, cols, err := shapeOf(p.Values, p.Rows, p.Columns)
	if err != nil {
		return nil, err
	}
	dir := p.Direction
	if dir == "" {
		dir = DirectionSW
	}
	if _, _, ok := dir.steps(); !ok {
		return nil, werrors.New(werrors.ErrCodeInvalidDirection, "plot_direction 必须是 NW, SW, NE, SE 之一，得到 %q", p.Direction)
	}
	origin := p.Origin
	switch origin {
	case "":
		origin = OriginLower
	case OriginLower, OriginUpper:
	default:
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "未知 origin %q", p.Origin)
	}
	if p.IntervalX < 0 || p.IntervalY < 0 || p.BlockAspect < 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "间隔与块宽高比不能为负")
	}
	aspect := p.BlockAspect
	if aspect == 0 {
		aspect = 1
	}

	w := &Waffle[K]{
		values:  p.Values,
		empty:   p.Empty,
		dir:     dir,
		origin:  origin,
		xOffset: p.XOffset,
		yOffset: p.YOffset,
		mode:    modeOf(p),
	}
	w.geom = geometry(rows, cols, p.IntervalX, p.IntervalY, aspect)

	w.categories, w.count, err = collectCategories(p.Values, w.isEmpty, p.Order)
	if err != nil {
		return nil, err
	}
	if err := w.resolveStyles(p); err != nil {
		return nil, err
	}
	if w.legend, err = buildLegend(p, w); err != nil {
		return nil, err
	}
	return w, nil
}

func shapeOf[K any](values [][]K, wantRows, wantCols int) (int, int, error) {
	if wantRows < 0 || wantCols < 0 {
		return 0, 0, werrors.New(werrors.ErrCodeInvalidShape, "rows/columns 必须为正整数，得到 %d×%d", wantRows, wantCols)
	}
	rows := len(values)
	if rows == 0 || len(values[0]) == 0 {
		return 0, 0, werrors.New(werrors.ErrCodeInvalidShape, "values 为空")
	}
	cols := len(values[0])
	for i, row := range values {
		if len(row) != cols {
			return 0, 0, werrors.New(werrors.ErrCodeInvalidShape, "第 %d 行有 %d 列，期望 %d 列", i, len(row), cols)
		}
	}
	if (wantRows != 0 && wantRows != rows) || (wantCols != 0 && wantCols != cols) {
		return 0, 0, werrors.New(werrors.ErrCodeInvalidShape, "rows/columns %d×%d 与 values 形状 %d×%d 不一致", wantRows, wantCols, rows, cols)
	}
	return rows, cols, nil
}

func geometry(rows, cols int, rx, ry, aspect float64) Geometry {
	blockH := 1 / (float64(rows) + float64(rows)*ry - ry)
	blockW := aspect * blockH
	return Geometry{
		Rows:   rows,
		Cols:   cols,
		BlockW: blockW,
		BlockH: blockH,
		XFull:  (1 + rx) * blockW,
		YFull:  (1 + ry) * blockH,
		XMax:   (float64(cols) + float64(cols)*rx - rx) * blockW,
		YMax:   1,
	}
}

func modeOf[K cmp.Ordered](p Params[K]) Mode {
	switch {
	case p.Icons.IsSet():
		return ModeIcon
	case p.ShowNumbers:
		return ModeNumber
	case p.Markers.IsSet():
		return ModeMarker
	default:
		return ModeRect
	}
}

func collectCategories[K cmp.Ordered](values [][]K, isEmpty func(K) bool, order CategoryOrder) ([]K, int, error) {
	seen := map[K]bool{}
	var cats []K
	count := 0
	for _, row := range values {
		for _, v := range row {
			if isEmpty(v) {
				continue
			}
			count++
			if !seen[v] {
				seen[v] = true
				cats = append(cats, v)
			}
		}
	}
	switch order {
	case "", OrderSorted:
		slices.Sort(cats)
	case OrderFirstSeen:
	default:
		return nil, 0, werrors.New(werrors.ErrCodeInvalidInput, "未知类别顺序 %q", order)
	}
	return cats, count, nil
}

func (w *Waffle[K]) isEmpty(v K) bool {
	if v != v { // NaN
		return true
	}
	return w.empty != nil && v == *w.empty
}

func (w *Waffle[K]) resolveStyles(p Params[K]) error {
	var err error
	cats := w.categories

	if p.Colors.IsSet() {
		if w.colors, err = p.Colors.resolve(cats, "颜色", ""); err != nil {
			return err
		}
	} else {
		cmap := p.Colormap
		if cmap == nil {
			cmap = palette.Default()
		}
		sampled := palette.Sample(cmap, len(cats))
		w.colors = make(map[K]Color, len(cats))
		for i, c := range cats {
			w.colors[c] = ColorOf(sampled[i])
		}
	}

	switch w.mode {
	case ModeIcon:
		set := p.IconSet
		if set == "" {
			set = icons.Solid
		}
		if _, err := icons.ParseSet(string(set)); err != nil {
			return err
		}
		names, err := p.Icons.resolve(cats, "图标", werrors.ErrCodeIconMismatch)
		if err != nil {
			return err
		}
		w.glyphs = make(map[K]string, len(cats))
		for _, c := range cats {
			r, err := icons.Lookup(set, names[c])
			if err != nil {
				return fmt.Errorf("类别 %v: %w", c, err)
			}
			w.glyphs[c] = string(r)
		}
		w.glyphFont = IconFontName(set)
		w.iconSize = p.IconSize
	case ModeNumber:
		w.glyphs = make(map[K]string, len(cats))
		for _, c := range cats {
			w.glyphs[c] = fmt.Sprint(c)
		}
		w.glyphFont = FontMono
		w.iconSize = p.IconSize
	case ModeMarker:
		if w.markers, err = p.Markers.resolve(cats, "标记", werrors.ErrCodeMarkerMismatch); err != nil {
			return err
		}
		for c, m := range w.markers {
			if !m.Valid() {
				return werrors.New(werrors.ErrCodeInvalidInput, "类别 %v 的标记符号 %q 无效", c, m)
			}
		}
		w.markerSize = p.MarkerSize
	case ModeRect:
		if w.edge, err = p.Rect.EdgeColor.resolve(cats, "边框颜色", ""); err != nil {
			return err
		}
		if w.lineWidth, err = p.Rect.LineWidth.resolve(cats, "边框线宽", ""); err != nil {
			return err
		}
		if w.alpha, err = p.Rect.Alpha.resolve(cats, "透明度", ""); err != nil {
			return err
		}
		if w.face, err = p.Rect.FaceColor.resolve(cats, "填充色", ""); err != nil {
			return err
		}
	}

	if (w.mode == ModeIcon || w.mode == ModeNumber) && p.Rotation.IsSet() {
		if w.rotation, err = p.Rotation.resolve(cats, "旋转角度", ""); err != nil {
			return err
		}
	}
	return nil
}

// Geometry returns the unit-square grid dimensions.
func (w *Waffle[K]) Geometry() Geometry { return w.geom }

// Mode returns the drawing mode chosen for this layout.
func (w *Waffle[K]) Mode() Mode { return w.mode }

// Categories returns the categories in style-map order.
func (w *Waffle[K]) Categories() []K { return slices.Clone(w.categories) }

// Len 返回非空单元格数，即 Commands 产生的命令数。
func (w *Waffle[K]) Len() int { return w.count }

// Legend 返回图例；未请求图例时为 nil。
func (w *Waffle[K]) Legend() *Legend {
	if w.legend == nil {
		return nil
	}
	cp := *w.legend
	cp.Entries = slices.Clone(w.legend.Entries)
	return &cp
}

// Commands 按遍历方向惰性地为每个非空单元格产生一条命令。列为外层循环。
func (w *Waffle[K]) Commands() iter.Seq[Command] {
	return func(yield func(Command) bool) {
		colStep, rowStep, _ := w.dir.steps()
		for _, col := range span(w.geom.Cols, colStep) {
			for _, row := range span(w.geom.Rows, rowStep) {
				v := w.values[w.matrixRow(row)][col]
				if w.isEmpty(v) {
					continue
				}
				if !yield(w.command(col, row, v)) {
					return
				}
			}
		}
	}
}

func (w *Waffle[K]) matrixRow(row int) int {
	if w.origin == OriginUpper {
		return w.geom.Rows - 1 - row
	}
	return row
}

func (w *Waffle[K]) command(col, row int, v K) Command {
	g := w.geom
	cmd := Command{
		Col:      col,
		Row:      row,
		Category: fmt.Sprint(v),
		X:        g.XFull*float64(col) + w.xOffset*g.BlockW,
		Y:        g.YFull*float64(row) + w.yOffset*g.BlockH,
		Width:    g.BlockW,
		Height:   g.BlockH,
		Color:    w.colors[v],
	}
	switch w.mode {
	case ModeIcon, ModeNumber:
		cmd.Kind = KindGlyph
		cmd.Text = w.glyphs[v]
		cmd.Font = w.glyphFont
		cmd.FontSize = w.iconSize
		cmd.Rotation = w.rotation[v]
	case ModeMarker:
		cmd.Kind = KindMarker
		cmd.Marker = w.markers[v]
		cmd.MarkerSize = w.markerSize
	default:
		cmd.Kind = KindRect
		cmd.Alpha = 1
		if a, ok := w.alpha[v]; ok {
			cmd.Alpha = a
		}
		if f, ok := w.face[v]; ok {
			cmd.Color = f
		}
		if e, ok := w.edge[v]; ok {
			cmd.EdgeColor = &e
			cmd.LineWidth = 1
		}
		if lw, ok := w.lineWidth[v]; ok {
			cmd.LineWidth = lw
		}
	}
	return cmd
}

func span(n, step int) []int {
	out := make([]int, n)
	for i := range out {
		if step < 0 {
			out[i] = n - 1 - i
		} else {
			out[i] = i
		}
	}
	return out
}

func buildLegend[K cmp.Ordered](p Params[K], w *Waffle[K]) (*Legend, error) {
	labels := p.Labels
	var opts LegendOptions
	if p.Legend != nil {
		opts = *p.Legend
		if len(opts.Labels) > 0 {
			labels = opts.Labels
		}
	}
	if len(labels) == 0 && len(opts.Handles) == 0 {
		return nil, nil
	}
	n := len(w.categories)
	if len(opts.Handles) > 0 && len(opts.Handles) != n {
		return nil, werrors.New(werrors.ErrCodeLabelMismatch, "图例句柄数量 %d 与类别数 %d 不一致", len(opts.Handles), n)
	}
	if len(labels) > 0 && len(labels) != n {
		return nil, werrors.New(werrors.ErrCodeLabelMismatch, "labels 数量 %d 与类别数 %d 不一致", len(labels), n)
	}
	if p.Legend != nil && len(p.Legend.Labels) > 0 && len(p.Labels) > 0 && len(p.Labels) != n {
		return nil, werrors.New(werrors.ErrCodeLabelMismatch, "labels 数量 %d 与类别数 %d 不一致", len(p.Labels), n)
	}

	entries := make([]LegendEntry, n)
	switch {
	case len(opts.Handles) > 0:
		copy(entries, opts.Handles)
		for i, c := range w.categories {
			if entries[i].Category == "" {
				entries[i].Category = fmt.Sprint(c)
			}
			if entries[i].Handle == "" {
				entries[i].Handle = HandleSwatch
			}
			// 未指定颜色的句柄沿用类别颜色
			if entries[i].Color == (Color{}) {
				entries[i].Color = w.colors[c]
			}
		}
	default:
		for i, c := range w.categories {
			e := LegendEntry{Category: fmt.Sprint(c), Color: w.colors[c], Handle: HandleSwatch}
			switch {
			case w.mode == ModeIcon && opts.IconLegend:
				e.Handle = HandleGlyph
				e.Text = w.glyphs[c]
				e.Font = w.glyphFont
			case w.mode == ModeMarker:
				e.Handle = HandleMarker
				e.Marker = w.markers[c]
			}
			entries[i] = e
		}
	}
	if len(labels) > 0 {
		for i := range entries {
			entries[i].Label = labels[i]
		}
	}

	ncol := opts.NCol
	if ncol <= 0 {
		ncol = 1
	}
	if opts.Flip {
		entries = FlipLegend(entries, ncol)
	}
	return &Legend{
		Entries: entries,
		Loc:     opts.Loc,
		NCol:    ncol,
		Title:   opts.Title,
	}, nil
}

// FlipLegend 重排 items，使按列填充的图例按行读出原顺序。
func FlipLegend[T any](items []T, ncol int) []T {
	if ncol <= 1 || len(items) <= 1 {
		return slices.Clone(items)
	}
	out := make([]T, 0, len(items))
	for i := 0; i < ncol; i++ {
		for j := i; j < len(items); j += ncol {
			out = append(out, items[j])
		}
	}
	return out
}
