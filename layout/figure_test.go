package layout

import (
	"math"
	"testing"

	werrors "github.com/ByLCY/waffle/errors"
)

func samplePlot() PlotArgs {
	return PlotArgs{Values: &Matrix{Cells: sampleValues()}}
}

func within(inner, outer Box) bool {
	const eps = 1e-9
	return inner.X >= outer.X-eps && inner.Y >= outer.Y-eps &&
		inner.X+inner.Width <= outer.X+outer.Width+eps &&
		inner.Y+inner.Height <= outer.Y+outer.Height+eps
}

func TestParseLoc(t *testing.T) {
	for _, in := range []string{"121", "1 2 1", "1,2,1"} {
		loc, err := ParseLoc(in)
		if err != nil {
			t.Fatalf("ParseLoc(%q) 错误: %v", in, err)
		}
		if loc != (Loc{Rows: 1, Cols: 2, Index: 1}) {
			t.Fatalf("ParseLoc(%q) = %+v", in, loc)
		}
	}
	for _, bad := range []string{"", "12", "1 2 3 4", "125", "0 1 1", "a b c"} {
		if _, err := ParseLoc(bad); werrors.GetCode(err) != werrors.ErrCodeInvalidLocation {
			t.Fatalf("ParseLoc(%q) 应返回 INVALID_LOCATION，得到 %v", bad, err)
		}
	}
}

func TestLocCell(t *testing.T) {
	area := Box{X: 0, Y: 0, Width: 100, Height: 50}
	got := Loc{Rows: 2, Cols: 2, Index: 1}.cell(area)
	if got != (Box{X: 0, Y: 25, Width: 50, Height: 25}) {
		t.Fatalf("第 1 个子图应在左上角: %+v", got)
	}
	got = Loc{Rows: 2, Cols: 2, Index: 4}.cell(area)
	if got != (Box{X: 50, Y: 0, Width: 50, Height: 25}) {
		t.Fatalf("第 4 个子图应在右下角: %+v", got)
	}
}

func TestParseAnchor(t *testing.T) {
	if a, err := ParseAnchor(""); err != nil || a != AnchorW {
		t.Fatalf("默认锚点应为 W: %v %v", a, err)
	}
	if a, err := ParseAnchor("ne"); err != nil || a != AnchorNE {
		t.Fatalf("应不区分大小写: %v %v", a, err)
	}
	if _, err := ParseAnchor("middle"); werrors.GetCode(err) != werrors.ErrCodeInvalidAnchor {
		t.Fatalf("未知锚点应返回 INVALID_ANCHOR，得到 %v", err)
	}
	outer := Box{X: 0, Y: 0, Width: 10, Height: 10}
	if got := AnchorC.align(outer, 4, 2); got != (Box{X: 3, Y: 4, Width: 4, Height: 2}) {
		t.Fatalf("居中对齐错误: %+v", got)
	}
	if got := AnchorNE.align(outer, 4, 2); got != (Box{X: 6, Y: 8, Width: 4, Height: 2}) {
		t.Fatalf("右上对齐错误: %+v", got)
	}
}

func TestBuildSinglePlot(t *testing.T) {
	res, err := Build(FigureSpec{Plots: []PlotSpec{{Loc: Loc{1, 2, 1}, Args: samplePlot()}}}, BuildOptions{})
	if err != nil {
		t.Fatalf("Build 错误: %v", err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("应只有一页: %d", len(res.Pages))
	}
	page := res.Pages[0]
	if page.Width != 297 || page.Height != 210 {
		t.Fatalf("默认纸张应为 A4 横向: %g×%g", page.Width, page.Height)
	}
	if len(page.Panels) != 1 || len(page.Panels[0].Layers) != 1 {
		t.Fatalf("子图/图层数错误: %+v", page.Panels)
	}
	panel := page.Panels[0]
	layer := panel.Layers[0]
	if len(layer.Commands) != 6 {
		t.Fatalf("命令数应为 6，得到 %d", len(layer.Commands))
	}
	if !within(layer.Box, panel.Cell) {
		t.Fatalf("数据区 %+v 超出子图单元格 %+v", layer.Box, panel.Cell)
	}
	// 保持宽高比：数据区宽高之比等于 xmax
	if ratio := layer.Box.Width / layer.Box.Height; math.Abs(ratio-layer.Geometry.XMax) > 1e-9 {
		t.Fatalf("宽高比应为 %g，得到 %g", layer.Geometry.XMax, ratio)
	}
	for _, c := range layer.Commands {
		if !within(Box{c.X, c.Y, c.Width, c.Height}, layer.Box) {
			t.Fatalf("命令 %+v 超出数据区 %+v", c, layer.Box)
		}
	}
	// 前端默认 origin=upper：矩阵第一行在顶部
	if first := layer.Commands[0]; first.Category != "B" {
		t.Fatalf("左下角应为矩阵最后一行的 B: %+v", first)
	}
	if res.Meta.Creator != "waffle" {
		t.Fatalf("默认 Creator 应为 waffle: %q", res.Meta.Creator)
	}
	if res.Resources.Fonts[FontText].Src != "builtin:sans" {
		t.Fatalf("默认正文字体应为 builtin:sans: %+v", res.Resources.Fonts[FontText])
	}
}

func TestBuildLegendOutsideRight(t *testing.T) {
	args := samplePlot()
	args.Labels = []string{"Alpha", "Beta"}
	res, err := Build(FigureSpec{Plots: []PlotSpec{{Loc: Loc{1, 1, 1}, Args: args}}}, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	panel := res.Pages[0].Panels[0]
	layer := panel.Layers[0]
	if layer.Legend == nil || len(layer.Legend.Items) != 2 {
		t.Fatalf("应生成两项图例: %+v", layer.Legend)
	}
	if layer.Legend.Box.X < layer.Box.X+layer.Box.Width {
		t.Fatalf("outside right 图例应位于数据区右侧: legend=%+v data=%+v", layer.Legend.Box, layer.Box)
	}
	if !within(layer.Legend.Box, panel.Cell) {
		t.Fatalf("图例超出单元格: %+v", layer.Legend.Box)
	}
	if layer.Legend.Items[0].LabelBox.Content != "Alpha" {
		t.Fatalf("图例文字错误: %+v", layer.Legend.Items[0])
	}
}

func TestBuildInsideLegend(t *testing.T) {
	args := samplePlot()
	loc := "lower left"
	args.Legend = &LegendArgs{Labels: []string{"a", "b"}, Loc: &loc}
	res, err := Build(FigureSpec{Plots: []PlotSpec{{Loc: Loc{1, 1, 1}, Args: args}}}, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	layer := res.Pages[0].Panels[0].Layers[0]
	if !within(layer.Legend.Box, layer.Box) {
		t.Fatalf("lower left 图例应在数据区内: legend=%+v data=%+v", layer.Legend.Box, layer.Box)
	}

	bad := "somewhere"
	args.Legend.Loc = &bad
	if _, err := Build(FigureSpec{Plots: []PlotSpec{{Loc: Loc{1, 1, 1}, Args: args}}}, BuildOptions{}); err == nil {
		t.Fatal("未知图例位置应返回错误")
	}
}

func TestBuildCovers(t *testing.T) {
	cover := PlotArgs{
		Values: &Matrix{Cells: [][]string{{".", ".", "X"}}},
		Empty:  strPtr("."),
		Icons:  ScalarStyle("star"),
	}
	fig := FigureSpec{
		Plots:  []PlotSpec{{Loc: Loc{1, 1, 1}, Args: samplePlot()}},
		Covers: []CoverSpec{{Panel: 1, Args: cover}},
	}
	res, err := Build(fig, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	layers := res.Pages[0].Panels[0].Layers
	if len(layers) != 2 || !layers[1].Cover {
		t.Fatalf("cover 应作为第二个图层: %+v", layers)
	}
	if len(layers[1].Commands) != 1 || layers[1].Commands[0].Kind != KindGlyph {
		t.Fatalf("cover 应只有一个图标命令: %+v", layers[1].Commands)
	}
	if layers[1].Commands[0].FontSize <= 0 {
		t.Fatalf("未给 icon_size 时应按块高推算字号")
	}

	fig.Covers[0].Panel = 2
	if _, err := Build(fig, BuildOptions{}); werrors.GetCode(err) != werrors.ErrCodeInvalidLocation {
		t.Fatalf("不存在的子图应返回 INVALID_LOCATION，得到 %v", err)
	}
}

func TestBuildDefaultsInherited(t *testing.T) {
	cmap := "viridis"
	fig := FigureSpec{
		Title:    "Seats",
		Defaults: PlotArgs{Values: &Matrix{Cells: sampleValues()}, Cmap: &cmap},
	}
	res, err := Build(fig, BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}
	page := res.Pages[0]
	if page.Title == nil || page.Title.Content != "Seats" {
		t.Fatalf("缺少图标题: %+v", page.Title)
	}
	if len(page.Panels) != 1 {
		t.Fatalf("仅有默认 values 时应生成一个 111 子图")
	}
	layer := page.Panels[0].Layers[0]
	if layer.Box.Y+layer.Box.Height > page.Title.Y+1e-9 {
		t.Fatalf("数据区不应与标题重叠")
	}
	var a Command
	for _, c := range layer.Commands {
		if c.Category == "A" {
			a = c
			break
		}
	}
	if a.Color.Hex() != "#440154" {
		t.Fatalf("viridis 的第一色应为 #440154，得到 %s", a.Color.Hex())
	}
}

func TestMergeKeepsOwnValues(t *testing.T) {
	own, def := 0.5, 0.1
	a := PlotArgs{IntervalX: &own}
	merged := a.Merge(PlotArgs{IntervalX: &def, IntervalY: &def})
	if *merged.IntervalX != 0.5 || *merged.IntervalY != 0.1 {
		t.Fatalf("Merge 结果错误: x=%v y=%v", *merged.IntervalX, *merged.IntervalY)
	}
}
