package layout

// BuildOptions 配置布局阶段所需的依赖，例如文本度量后端与默认字体。
type BuildOptions struct {
	// Measurer 用于图例排版；为 nil 时按字号粗略估计文本宽度。
	Measurer TextMeasurer
	// Fonts 是字体角色 → src 的默认值（通常来自配置文件），图中的 fonts 会覆盖它。
	Fonts map[string]string
}

// TextMeasurer 返回单行文本在给定字体与字号（pt）下的宽度（mm）。
type TextMeasurer interface {
	MeasureText(content string, font FontResource, sizePt float64) (float64, error)
}
