package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/icons"
)

const (
	panelPadding      = 2.0  // 子图单元格内边距（mm）
	legendGap         = 3.0  // 图例与数据区的距离（mm）
	defaultTitleSize  = 16.0 // 图标题字号（pt）
	defaultPlotTitle  = 12.0 // 子图标题字号（pt）
	defaultLegendSize = 10.0 // 图例字号（pt）
	defaultMargin     = 20.0 // 页边距（mm）
)

// FigureSpec 描述一整页 waffle 图：页面、标题、图级默认参数、子图与覆盖图层。
type FigureSpec struct {
	Name      string
	Meta      DocumentMeta
	Width     float64 // mm，0 表示 A4 横向
	Height    float64
	Margin    *Margin
	Title     string
	TitleSize float64 // pt
	Defaults  PlotArgs
	Plots     []PlotSpec
	Covers    []CoverSpec
	Fonts     map[string]string // 字体角色 → src，覆盖 BuildOptions.Fonts
}

// PlotSpec 是一个子图：位置加参数。
type PlotSpec struct {
	Loc  Loc
	Args PlotArgs
}

// CoverSpec 在已放置的第 Panel 个子图（从 1 开始）上叠加一层 waffle。
type CoverSpec struct {
	Panel int
	Args  PlotArgs
}

// Loc 是 matplotlib 风格的子图位置：Rows×Cols 网格中按行优先的第 Index 个（从 1 开始）。
type Loc struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Index int `json:"index"`
}

// ParseLoc 接受三位数写法（121）或三个以空白/逗号分隔的整数（1 2 1）。
func ParseLoc(s string) (Loc, error) {
	v := strings.TrimSpace(s)
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 1 && len(v) == 3 {
		fields = []string{v[0:1], v[1:2], v[2:3]}
	}
	if len(fields) != 3 {
		return Loc{}, werrors.New(werrors.ErrCodeInvalidLocation, "子图位置 %q 需要三个整数", s)
	}
	var nums [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Loc{}, werrors.Wrap(werrors.ErrCodeInvalidLocation, err, "子图位置 %q 无效", s)
		}
		nums[i] = n
	}
	loc := Loc{Rows: nums[0], Cols: nums[1], Index: nums[2]}
	return loc, loc.Validate()
}

// Validate 检查网格为正且 Index 落在 1..Rows*Cols 内。
func (l Loc) Validate() error {
	if l.Rows <= 0 || l.Cols <= 0 || l.Index < 1 || l.Index > l.Rows*l.Cols {
		return werrors.New(werrors.ErrCodeInvalidLocation, "子图位置 %d%d%d 无效", l.Rows, l.Cols, l.Index)
	}
	return nil
}

func (l Loc) String() string { return fmt.Sprintf("%d%d%d", l.Rows, l.Cols, l.Index) }

// cell 返回 Loc 在 area 中对应的单元格（第 1 个位于左上角）。
func (l Loc) cell(area Box) Box {
	w := area.Width / float64(l.Cols)
	h := area.Height / float64(l.Rows)
	i := l.Index - 1
	row, col := i/l.Cols, i%l.Cols
	return Box{
		X:      area.X + float64(col)*w,
		Y:      area.Y + area.Height - float64(row+1)*h,
		Width:  w,
		Height: h,
	}
}

// Anchor 决定保持宽高比的数据区在单元格中的对齐位置。
type Anchor string

const (
	AnchorC  Anchor = "C"
	AnchorSW Anchor = "SW"
	AnchorS  Anchor = "S"
	AnchorSE Anchor = "SE"
	AnchorE  Anchor = "E"
	AnchorNE Anchor = "NE"
	AnchorN  Anchor = "N"
	AnchorNW Anchor = "NW"
	AnchorW  Anchor = "W"
)

// ParseAnchor 不区分大小写，空字符串视为 W。
func ParseAnchor(s string) (Anchor, error) {
	a := Anchor(strings.ToUpper(strings.TrimSpace(s)))
	if a == "" {
		return AnchorW, nil
	}
	if _, _, ok := a.fractions(); !ok {
		return "", werrors.New(werrors.ErrCodeInvalidAnchor, "plot_anchor 必须是 C, SW, S, SE, E, NE, N, NW, W 之一，得到 %q", s)
	}
	return a, nil
}

func (a Anchor) fractions() (fx, fy float64, ok bool) {
	switch a {
	case AnchorC:
		return 0.5, 0.5, true
	case AnchorSW:
		return 0, 0, true
	case AnchorS:
		return 0.5, 0, true
	case AnchorSE:
		return 1, 0, true
	case AnchorE:
		return 1, 0.5, true
	case AnchorNE:
		return 1, 1, true
	case AnchorN:
		return 0.5, 1, true
	case AnchorNW:
		return 0, 1, true
	case AnchorW:
		return 0, 0.5, true
	}
	return 0, 0, false
}

// align 把 w×h 的矩形按锚点放入 outer。
func (a Anchor) align(outer Box, w, h float64) Box {
	fx, fy, _ := a.fractions()
	return Box{
		X:      outer.X + fx*(outer.Width-w),
		Y:      outer.Y + fy*(outer.Height-h),
		Width:  w,
		Height: h,
	}
}

// Build 放置所有子图并编译其中的 waffle，返回可直接渲染的页面坐标结果。
func Build(fig FigureSpec, opts BuildOptions) (*Result, error) {
	width, height := fig.Width, fig.Height
	if width <= 0 || height <= 0 {
		width, height, _ = PageSize("A4", true)
	}
	margin := Margin{Top: defaultMargin, Right: defaultMargin, Bottom: defaultMargin, Left: defaultMargin}
	if fig.Margin != nil {
		margin = *fig.Margin
	}
	content := Box{
		X:      margin.Left,
		Y:      margin.Bottom,
		Width:  width - margin.Left - margin.Right,
		Height: height - margin.Top - margin.Bottom,
	}
	if content.Width <= 0 || content.Height <= 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "页边距过大，内容区为 %.1f×%.1fmm", content.Width, content.Height)
	}

	res := ResourceSet{Fonts: resolveFonts(opts.Fonts, fig.Fonts)}
	b := &builder{measurer: opts.Measurer, fonts: res.Fonts}

	page := Page{Width: width, Height: height, Margin: margin}
	if fig.Title != "" {
		size := fig.TitleSize
		if size <= 0 {
			size = defaultTitleSize
		}
		tb := b.titleBox(fig.Title, content, size)
		page.Title = &tb
		content.Height -= tb.Height
	}

	plots := fig.Plots
	if len(plots) == 0 && fig.Defaults.Values != nil {
		plots = []PlotSpec{{Loc: Loc{Rows: 1, Cols: 1, Index: 1}}}
	}
	if len(plots) == 0 {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "图中没有任何子图")
	}
	for i, plot := range plots {
		if err := plot.Loc.Validate(); err != nil {
			return nil, fmt.Errorf("plot %d: %w", i+1, err)
		}
		cell := plot.Loc.cell(content)
		layer, err := b.layer(plot.Args.Merge(fig.Defaults), inset(cell, panelPadding))
		if err != nil {
			return nil, fmt.Errorf("plot %d (%s): %w", i+1, plot.Loc, err)
		}
		page.Panels = append(page.Panels, Panel{
			Index:  i + 1,
			Loc:    plot.Loc,
			Cell:   cell,
			Layers: []Layer{layer},
		})
	}
	for i, cover := range fig.Covers {
		if cover.Panel < 1 || cover.Panel > len(page.Panels) {
			return nil, werrors.New(werrors.ErrCodeInvalidLocation, "cover %d: 子图 %d 不存在（共 %d 个）", i+1, cover.Panel, len(page.Panels))
		}
		panel := &page.Panels[cover.Panel-1]
		layer, err := b.layer(cover.Args.Merge(fig.Defaults), inset(panel.Cell, panelPadding))
		if err != nil {
			return nil, fmt.Errorf("cover %d: %w", i+1, err)
		}
		layer.Cover = true
		panel.Layers = append(panel.Layers, layer)
	}

	meta := fig.Meta
	if meta.Creator == "" {
		meta.Creator = "waffle"
	}
	if meta.Title == "" {
		meta.Title = fig.Title
	}
	return &Result{Pages: []Page{page}, Resources: res, Meta: meta}, nil
}

func resolveFonts(layers ...map[string]string) map[string]FontResource {
	srcs := map[string]string{
		FontText:  "builtin:sans",
		FontTitle: "builtin:sans-bold",
		FontMono:  "builtin:mono",
	}
	for _, set := range icons.Sets() {
		srcs[IconFontName(set)] = ""
	}
	for _, layer := range layers {
		for role, src := range layer {
			if src != "" {
				srcs[role] = src
			}
		}
	}
	out := make(map[string]FontResource, len(srcs))
	for role, src := range srcs {
		out[role] = FontResource{Name: role, Src: src, IsBuiltin: strings.HasPrefix(src, "builtin:")}
	}
	return out
}

type builder struct {
	measurer TextMeasurer
	fonts    map[string]FontResource
}

func (b *builder) titleBox(text string, area Box, sizePt float64) TextBox {
	h := sizePt * PtToMm * 1.6
	return TextBox{
		Content:  text,
		X:        area.X,
		Y:        area.Y + area.Height - h,
		Width:    area.Width,
		Height:   h,
		Font:     FontTitle,
		FontSize: sizePt,
		Align:    "center",
	}
}

// layer 编译一个子图并把它放进 area。
func (b *builder) layer(args PlotArgs, area Box) (Layer, error) {
	anchor, err := ParseAnchor(deref(args.Anchor, ""))
	if err != nil {
		return Layer{}, err
	}
	pl, err := compilePlot(args)
	if err != nil {
		return Layer{}, err
	}
	layer := Layer{Mode: pl.mode, Geometry: pl.geom}

	if title := deref(args.Title, ""); title != "" {
		tb := b.titleBox(title, area, deref(args.TitleSize, defaultPlotTitle))
		layer.Title = &tb
		area.Height -= tb.Height
	}

	var legend *LegendBox
	loc := "outside right"
	if pl.legend != nil {
		size := defaultLegendSize
		if args.Legend != nil {
			size = deref(args.Legend.FontSize, defaultLegendSize)
		}
		legend, err = b.measureLegend(pl.legend, size)
		if err != nil {
			return Layer{}, err
		}
		if pl.legend.Loc != "" {
			loc = strings.ToLower(strings.TrimSpace(pl.legend.Loc))
		}
		switch loc {
		case "outside right":
			area.Width -= legend.Box.Width + legendGap
		case "outside bottom":
			area.Height -= legend.Box.Height + legendGap
			area.Y += legend.Box.Height + legendGap
		}
	}
	if area.Width <= 0 || area.Height <= 0 {
		return Layer{}, werrors.New(werrors.ErrCodeInvalidInput, "子图空间不足（%.1f×%.1fmm）", area.Width, area.Height)
	}

	scale := math.Min(area.Width/pl.geom.XMax, area.Height/pl.geom.YMax)
	layer.Scale = scale
	layer.Box = anchor.align(area, pl.geom.XMax*scale, pl.geom.YMax*scale)
	if layer.Title != nil {
		// 标题跟随数据区水平居中
		layer.Title.X = layer.Box.X
		layer.Title.Width = layer.Box.Width
		layer.Title.Y = layer.Box.Y + layer.Box.Height
	}

	layer.Commands = make([]Command, len(pl.commands))
	for i, cmd := range pl.commands {
		placed := cmd.place(layer.Box, scale)
		switch placed.Kind {
		case KindGlyph:
			if placed.FontSize <= 0 {
				placed.FontSize = placed.Height * MmToPt / 16 * 12
			}
		case KindMarker:
			if placed.MarkerSize <= 0 {
				placed.MarkerSize = 0.8 * math.Min(placed.Width, placed.Height) * MmToPt
			}
		}
		layer.Commands[i] = placed
	}

	if legend != nil {
		if err := placeLegend(legend, loc, layer.Box); err != nil {
			return Layer{}, err
		}
		layer.Legend = legend
	}
	return layer, nil
}

func inset(b Box, pad float64) Box {
	return Box{X: b.X + pad, Y: b.Y + pad, Width: b.Width - 2*pad, Height: b.Height - 2*pad}
}
