package layout

import (
	"strings"
	"testing"

	"github.com/ByLCY/waffle/dsl"
	werrors "github.com/ByLCY/waffle/errors"
	"github.com/google/go-cmp/cmp"
)

const votesDSL = `
chart Votes v1 {
  meta { title: "Election" author: "ByLCY" }
  figure A4 landscape margin 10mm {
    cmap: "Set2"
    interval-x: 0.2
  }
  plot 1 2 1 {
    values: [[A, A, B], [B, A, A]]
    labels: ["Alpha", "Beta"]
    direction: NW
    legend: { loc: "upper right" ncol: 1 }
  }
  cover 1 { values: [[., ., X]] empty: "." icons: "star" }
}
`

const votesYAML = `
name: Votes
meta:
  title: Election
  author: ByLCY
page:
  size: A4
  orientation: landscape
  margin: 10mm
defaults:
  cmap: Set2
  interval_x: 0.2
plots:
  - loc: 121
    values: [[A, A, B], [B, A, A]]
    labels: [Alpha, Beta]
    direction: NW
    legend: {loc: upper right, ncol: 1}
covers:
  - panel: 1
    values: [[., ., X]]
    empty: "."
    icons: star
`

func parseFigure(t *testing.T, src string, data any) FigureSpec {
	t.Helper()
	doc, err := dsl.ParseString(src)
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	fig, err := FromDocument(doc, data)
	if err != nil {
		t.Fatalf("FromDocument 错误: %v", err)
	}
	return fig
}

func TestFromDocument(t *testing.T) {
	fig := parseFigure(t, votesDSL, nil)
	cmap := "Set2"
	ix := 0.2
	dir := "NW"
	loc := "upper right"
	ncol := 1
	empty := "."
	want := FigureSpec{
		Name:   "Votes",
		Meta:   DocumentMeta{Title: "Election", Author: "ByLCY"},
		Width:  297,
		Height: 210,
		Margin: &Margin{10, 10, 10, 10},
		Defaults: PlotArgs{
			Cmap:      &cmap,
			IntervalX: &ix,
		},
		Plots: []PlotSpec{{
			Loc: Loc{Rows: 1, Cols: 2, Index: 1},
			Args: PlotArgs{
				Values:    &Matrix{Cells: sampleValues()},
				Labels:    []string{"Alpha", "Beta"},
				Direction: &dir,
				Legend:    &LegendArgs{Loc: &loc, NCol: &ncol},
			},
		}},
		Covers: []CoverSpec{{
			Panel: 1,
			Args: PlotArgs{
				Values: &Matrix{Cells: [][]string{{".", ".", "X"}}},
				Empty:  &empty,
				Icons:  ScalarStyle("star"),
			},
		}},
	}
	if diff := cmp.Diff(want, fig); diff != "" {
		t.Fatalf("FigureSpec 不符 (-want +got):\n%s", diff)
	}
}

func TestYAMLMatchesDSL(t *testing.T) {
	fromDSL := parseFigure(t, votesDSL, nil)
	fromYAML, err := DecodeYAML(strings.NewReader(votesYAML))
	if err != nil {
		t.Fatalf("DecodeYAML 错误: %v", err)
	}
	if diff := cmp.Diff(fromDSL, fromYAML); diff != "" {
		t.Fatalf("YAML 与 DSL 结果不一致 (-dsl +yaml):\n%s", diff)
	}
	res, err := Build(fromYAML, BuildOptions{})
	if err != nil {
		t.Fatalf("Build 错误: %v", err)
	}
	layers := res.Pages[0].Panels[0].Layers
	if len(layers) != 2 || len(layers[0].Commands) != 6 || len(layers[1].Commands) != 1 {
		t.Fatalf("图层结构错误: %d 层", len(layers))
	}
}

func TestFromDocumentBinding(t *testing.T) {
	src := `chart Bound v1 {
  meta { title: "${region} 投票" }
  plot 111 {
    values: "${votes.grid}"
    colors: { 1: "#ff0000", 2: steelblue }
    rect { edgecolor: white; linewidth: 0.5 }
    x_offset: -0.5
  }
}`
	data := map[string]any{
		"region": "华东",
		"votes": map[string]any{
			"grid": []any{[]any{1.0, 2.0}, []any{2.0, 2.0}},
		},
	}
	fig := parseFigure(t, src, data)
	if fig.Meta.Title != "华东 投票" {
		t.Fatalf("meta 插值失败: %q", fig.Meta.Title)
	}
	args := fig.Plots[0].Args
	if diff := cmp.Diff(&Matrix{Cells: [][]string{{"1", "2"}, {"2", "2"}}}, args.Values); diff != "" {
		t.Fatalf("绑定矩阵不符:\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"1": "#ff0000", "2": "steelblue"}, args.Colors.Map); diff != "" {
		t.Fatalf("颜色映射不符:\n%s", diff)
	}
	if *args.EdgeColor.Scalar != "white" || *args.LineWidth.Scalar != "0.5" {
		t.Fatalf("rect 子命令未生效: %+v %+v", args.EdgeColor, args.LineWidth)
	}
	if *args.XOffset != -0.5 {
		t.Fatalf("负数偏移解析错误: %v", *args.XOffset)
	}

	res, err := Build(fig, BuildOptions{})
	if err != nil {
		t.Fatalf("Build 错误: %v", err)
	}
	cmds := res.Pages[0].Panels[0].Layers[0].Commands
	if len(cmds) != 4 {
		t.Fatalf("命令数应为 4，得到 %d", len(cmds))
	}
	for _, c := range cmds {
		if c.Category == "1" && c.Color != (Color{255, 0, 0}) {
			t.Fatalf("数值类别 1 应为红色: %+v", c)
		}
		if c.EdgeColor == nil || c.LineWidth != 0.5 {
			t.Fatalf("边框样式缺失: %+v", c)
		}
	}
}

func TestFromDocumentErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code werrors.Code
	}{
		{"unknown arg", `chart E v1 { plot 111 { colour: red } }`, werrors.ErrCodeInvalidInput},
		{"bad loc", `chart E v1 { plot 1 2 { values: [[A]] } }`, werrors.ErrCodeInvalidLocation},
		{"bad page", `chart E v1 { figure B9 { } }`, werrors.ErrCodeInvalidInput},
		{"missing binding", `chart E v1 { plot 111 { values: "${nope}" } }`, werrors.ErrCodeInvalidInput},
		{"bad number", `chart E v1 { plot 111 { rows: many } }`, werrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		doc, err := dsl.ParseString(tt.src)
		if err != nil {
			t.Fatalf("%s: 解析失败: %v", tt.name, err)
		}
		_, err = FromDocument(doc, map[string]any{})
		if got := werrors.GetCode(err); got != tt.code {
			t.Fatalf("%s: 错误码应为 %s，得到 %s (%v)", tt.name, tt.code, got, err)
		}
	}
}

func TestDecodeYAMLErrors(t *testing.T) {
	if _, err := DecodeYAML(strings.NewReader("")); werrors.GetCode(err) != werrors.ErrCodeInvalidInput {
		t.Fatalf("空文档应返回 INVALID_INPUT，得到 %v", err)
	}
	if _, err := DecodeYAML(strings.NewReader("plots:\n  - loc: 1 1 2\n")); werrors.GetCode(err) != werrors.ErrCodeInvalidLocation {
		t.Fatalf("无效 loc 应返回 INVALID_LOCATION，得到 %v", err)
	}
	if _, err := DecodeYAML(strings.NewReader("unknown_key: 1\n")); err == nil {
		t.Fatal("未知字段应返回错误")
	}
}

func TestFromDocumentBlankLabel(t *testing.T) {
	fig := parseFigure(t, `chart L v1 { plot 111 { values: [[A, B]] labels: ["", "Beta"] legend { labels: ["", "乙"] } } }`, nil)
	args := fig.Plots[0].Args
	if diff := cmp.Diff([]string{"", "Beta"}, args.Labels); diff != "" {
		t.Fatalf("空标签应保留位置 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"", "乙"}, args.Legend.Labels); diff != "" {
		t.Fatalf("legend 中的空标签应保留位置 (-want +got):\n%s", diff)
	}
	res, err := Build(fig, BuildOptions{})
	if err != nil {
		t.Fatalf("含空标签时不应报 LABEL_MISMATCH: %v", err)
	}
	items := res.Pages[0].Panels[0].Layers[0].Legend.Items
	if len(items) != 2 || items[0].Label != "" || items[1].Label != "乙" {
		t.Fatalf("图例条目错误: %+v", items)
	}
}

func TestFromDocumentBounds(t *testing.T) {
	src := `chart B v1 {
  plot 111 {
    values: [[1, 5], [12, 25]]
    bounds: [0, 10, 20, 30]
    colors: ["#ff0000", "#00ff00", "#0000ff"]
  }
}`
	fig := parseFigure(t, src, nil)
	if diff := cmp.Diff([]float64{0, 10, 20, 30}, fig.Plots[0].Args.Bounds); diff != "" {
		t.Fatalf("bounds 解析不符:\n%s", diff)
	}
	res, err := Build(fig, BuildOptions{})
	if err != nil {
		t.Fatalf("Build 错误: %v", err)
	}
	want := map[string]Color{"1": {255, 0, 0}, "5": {255, 0, 0}, "12": {0, 255, 0}, "25": {0, 0, 255}}
	for _, c := range res.Pages[0].Panels[0].Layers[0].Commands {
		if c.Color != want[c.Category] {
			t.Fatalf("类别 %s 的分段颜色应为 %v，得到 %v", c.Category, want[c.Category], c.Color)
		}
	}

	tests := []struct {
		name string
		src  string
	}{
		{"超出区间", `chart B v1 { plot 111 { values: [[1, 40]] bounds: [0, 10, 20] colors: [red, blue] } }`},
		{"颜色数不符", `chart B v1 { plot 111 { values: [[1, 2]] bounds: [0, 10, 20] colors: [red] } }`},
		{"缺少颜色列表", `chart B v1 { plot 111 { values: [[1, 2]] bounds: [0, 10] } }`},
		{"非数值矩阵", `chart B v1 { plot 111 { values: [[A, B]] bounds: [0, 10] colors: [red] } }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(parseFigure(t, tt.src, nil), BuildOptions{})
			if got := werrors.GetCode(err); got != werrors.ErrCodeInvalidInput {
				t.Fatalf("错误码应为 INVALID_INPUT，得到 %s (%v)", got, err)
			}
		})
	}
}
