package layout

import (
	"errors"
	"io"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
	"gopkg.in/yaml.v3"
)

// yamlFigure 是 YAML 图描述的顶层结构。
type yamlFigure struct {
	Name      string            `yaml:"name"`
	Meta      DocumentMeta      `yaml:"meta"`
	Page      yamlPage          `yaml:"page"`
	Title     string            `yaml:"title"`
	TitleSize float64           `yaml:"title_size"`
	Fonts     map[string]string `yaml:"fonts"`
	Defaults  PlotArgs          `yaml:"defaults"`
	Plots     []yamlPlot        `yaml:"plots"`
	Covers    []yamlCover       `yaml:"covers"`
}

type yamlPage struct {
	Size        string     `yaml:"size"`
	Width       string     `yaml:"width"`
	Height      string     `yaml:"height"`
	Orientation string     `yaml:"orientation"`
	Margin      stringList `yaml:"margin"`
}

type yamlPlot struct {
	Loc      Loc `yaml:"loc"`
	PlotArgs `yaml:",inline"`
}

type yamlCover struct {
	Panel    int `yaml:"panel"`
	PlotArgs `yaml:",inline"`
}

// stringList 接受单个标量或标量序列。
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = strings.Fields(node.Value)
		return nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return err
		}
		*s = out
		return nil
	default:
		return werrors.New(werrors.ErrCodeInvalidInput, "第 %d 行：需要字符串或列表", node.Line)
	}
}

// DecodeYAML 读取 YAML 图描述，结构与 DSL 等价。
func DecodeYAML(r io.Reader) (FigureSpec, error) {
	var doc yamlFigure
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return FigureSpec{}, werrors.New(werrors.ErrCodeInvalidInput, "YAML 文档为空")
		}
		var we *werrors.Error
		if errors.As(err, &we) {
			return FigureSpec{}, err
		}
		return FigureSpec{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "YAML 解析失败")
	}

	fig := FigureSpec{
		Name:      doc.Name,
		Meta:      doc.Meta,
		Title:     doc.Title,
		TitleSize: doc.TitleSize,
		Fonts:     doc.Fonts,
		Defaults:  doc.Defaults,
	}
	landscape := strings.EqualFold(doc.Page.Orientation, "landscape")
	switch {
	case doc.Page.Size != "":
		w, h, err := PageSize(doc.Page.Size, landscape)
		if err != nil {
			return FigureSpec{}, err
		}
		fig.Width, fig.Height = w, h
	case doc.Page.Width != "" || doc.Page.Height != "":
		w, err := ParseLength(doc.Page.Width)
		if err != nil {
			return FigureSpec{}, err
		}
		h, err := ParseLength(doc.Page.Height)
		if err != nil {
			return FigureSpec{}, err
		}
		fig.Width, fig.Height = w.ToMM(), h.ToMM()
	case landscape:
		fig.Width, fig.Height, _ = PageSize("A4", true)
	}
	if len(doc.Page.Margin) > 0 {
		m, err := ParseMargin(doc.Page.Margin)
		if err != nil {
			return FigureSpec{}, err
		}
		fig.Margin = &m
	}
	for _, p := range doc.Plots {
		fig.Plots = append(fig.Plots, PlotSpec{Loc: p.Loc, Args: p.PlotArgs})
	}
	for _, c := range doc.Covers {
		panel := c.Panel
		if panel == 0 {
			panel = 1
		}
		fig.Covers = append(fig.Covers, CoverSpec{Panel: panel, Args: c.PlotArgs})
	}
	return fig, nil
}

// UnmarshalYAML 接受二维序列，或一维序列（视为单行）。
func (m *Matrix) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return werrors.New(werrors.ErrCodeInvalidShape, "第 %d 行：values 应为序列", node.Line)
	}
	m.Cells = nil
	if len(node.Content) > 0 && node.Content[0].Kind != yaml.SequenceNode {
		m.Cells = [][]string{scalarCells(node.Content)}
		return nil
	}
	for _, row := range node.Content {
		if row.Kind != yaml.SequenceNode {
			return werrors.New(werrors.ErrCodeInvalidShape, "第 %d 行：values 中混合了序列与标量", row.Line)
		}
		m.Cells = append(m.Cells, scalarCells(row.Content))
	}
	return nil
}

func scalarCells(nodes []*yaml.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Value
	}
	return out
}

// UnmarshalYAML 根据节点类型决定样式形态：标量、映射或列表。
func (s *StyleValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		v := node.Value
		*s = StyleValue{Scalar: &v}
	case yaml.MappingNode:
		m := make(map[string]string, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			m[node.Content[i].Value] = node.Content[i+1].Value
		}
		*s = StyleValue{Map: m}
	case yaml.SequenceNode:
		*s = StyleValue{List: scalarCells(node.Content)}
	default:
		return werrors.New(werrors.ErrCodeInvalidInput, "第 %d 行：无法识别的样式值", node.Line)
	}
	return nil
}

// UnmarshalYAML 接受 121、"1 2 1" 或 [1, 2, 1]。
func (l *Loc) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = node.Value
	case yaml.SequenceNode:
		raw = strings.Join(scalarCells(node.Content), " ")
	default:
		return werrors.New(werrors.ErrCodeInvalidLocation, "第 %d 行：无法识别的子图位置", node.Line)
	}
	loc, err := ParseLoc(raw)
	if err != nil {
		return err
	}
	*l = loc
	return nil
}
