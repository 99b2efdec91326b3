package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// Result 中的坐标均为页面坐标（单位：mm，原点左下角，y 轴向上）；字号与线宽为 pt。

import "github.com/ByLCY/waffle/icons"

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// 字体角色名，命令与文本框通过角色引用 ResourceSet.Fonts。
const (
	FontText  = "text"
	FontTitle = "title"
	FontMono  = "mono"
)

// IconFontName 返回图标集对应的字体角色名，例如 icon:solid。
func IconFontName(set icons.Set) string { return "icon:" + string(set) }

// ResourceSet 记录渲染所需的字体。
type ResourceSet struct {
	Fonts map[string]FontResource `json:"fonts"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式；为空表示未配置。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	IsBuiltin bool   `json:"isBuiltin"`
}

// Page 记录页面尺寸、边距、标题与各子图面板。
type Page struct {
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Margin Margin   `json:"margin"`
	Title  *TextBox `json:"title,omitempty"`
	Panels []Panel  `json:"panels"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Box 是轴对齐矩形，(X, Y) 为左下角。
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Panel 对应一个子图位置；Layers[0] 是子图本身，其后是覆盖在同一位置上的 cover 图层。
type Panel struct {
	Index  int     `json:"index"`
	Loc    Loc     `json:"loc"`
	Cell   Box     `json:"cell"`
	Layers []Layer `json:"layers"`
}

// Layer 是一次 waffle 布局换算到页面后的结果。
type Layer struct {
	Cover    bool       `json:"cover,omitempty"`
	Mode     Mode       `json:"mode"`
	Box      Box        `json:"box"`   // 数据区域 (0,0)-(xmax,1) 在页面上的位置
	Scale    float64    `json:"scale"` // 每单位长度对应的 mm
	Geometry Geometry   `json:"geometry"`
	Title    *TextBox   `json:"title,omitempty"`
	Commands []Command  `json:"commands"`
	Legend   *LegendBox `json:"legend,omitempty"`
}

// CommandKind 区分三种绘制单元。
type CommandKind string

const (
	KindRect   CommandKind = "rect"
	KindGlyph  CommandKind = "glyph"
	KindMarker CommandKind = "marker"
)

// Command 是一个单元格的绘制命令，(X, Y) 为块槽位左下角。
type Command struct {
	Kind     CommandKind `json:"kind"`
	Col      int         `json:"col"`
	Row      int         `json:"row"`
	Category string      `json:"category"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Color    Color       `json:"color"`

	// glyph
	Text     string  `json:"text,omitempty"`
	Font     string  `json:"font,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	// marker
	Marker     Marker  `json:"marker,omitempty"`
	MarkerSize float64 `json:"markerSize,omitempty"`

	// rect
	EdgeColor *Color  `json:"edgeColor,omitempty"`
	LineWidth float64 `json:"lineWidth,omitempty"`
	Alpha     float64 `json:"alpha,omitempty"`
}

// Center 返回块槽位中心，字形与标记以此为锚点。
func (c Command) Center() (float64, float64) {
	return c.X + c.Width/2, c.Y + c.Height/2
}

// place 把单位坐标换算到页面：先按 scale 缩放，再平移到 origin。
func (c Command) place(origin Box, scale float64) Command {
	c.X = origin.X + c.X*scale
	c.Y = origin.Y + c.Y*scale
	c.Width *= scale
	c.Height *= scale
	return c
}

// LegendHandle 区分图例句柄的样式。
type LegendHandle string

const (
	HandleSwatch LegendHandle = "swatch"
	HandleGlyph  LegendHandle = "glyph"
	HandleMarker LegendHandle = "marker"
)

// LegendEntry 是一个类别的图例条目。
type LegendEntry struct {
	Category string       `json:"category"`
	Label    string       `json:"label"`
	Color    Color        `json:"color"`
	Handle   LegendHandle `json:"handle"`
	Text     string       `json:"text,omitempty"`
	Font     string       `json:"font,omitempty"`
	Marker   Marker       `json:"marker,omitempty"`
}

// Legend 是布局阶段得到的图例描述，与类别一一对应。
type Legend struct {
	Entries []LegendEntry `json:"entries"`
	Loc     string        `json:"loc,omitempty"`
	NCol    int           `json:"ncol"`
	Title   string        `json:"title,omitempty"`
}

// LegendBox 是已排好位置的图例。
type LegendBox struct {
	Box      Box          `json:"box"`
	Title    *TextBox     `json:"title,omitempty"`
	Items    []LegendItem `json:"items"`
	FontSize float64      `json:"fontSize"`
}

// LegendItem 记录句柄与标签的位置。
type LegendItem struct {
	LegendEntry
	HandleBox Box     `json:"handleBox"`
	LabelBox  TextBox `json:"labelBox"`
}

// TextBox 表示一个已经排好坐标的单行文本，文字在框内垂直居中。
type TextBox struct {
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Font     string  `json:"font"`
	FontSize float64 `json:"fontSize"`
	Color    Color   `json:"color"`
	Align    string  `json:"align,omitempty"` // left（默认）/center/right
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
