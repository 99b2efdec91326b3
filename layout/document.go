package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/waffle/binding"
	"github.com/ByLCY/waffle/dsl"
	werrors "github.com/ByLCY/waffle/errors"
)

// argAliases 把旧写法映射到规范参数名。
var argAliases = map[string]string{
	"interval_ratio_x": "interval_x",
	"interval_ratio_y": "interval_y",
	"cmap_name":        "cmap",
	"plot_anchor":      "anchor",
	"plot_direction":   "direction",
	"nan":              "empty",
	"marker":           "markers",
	"icon":             "icons",
	"color":            "colors",
	"show_number":      "show_num",
}

// FromDocument 把 DSL AST 转换成 FigureSpec；字符串中的 ${path} 以 data 绑定。
func FromDocument(doc *dsl.Document, data any) (FigureSpec, error) {
	if doc == nil {
		return FigureSpec{}, werrors.New(werrors.ErrCodeInvalidInput, "文档为空")
	}
	fig := FigureSpec{Name: doc.Name, Meta: collectMeta(doc, data)}
	for i, section := range doc.Sections {
		var err error
		switch {
		case section.Meta != nil:
			// collectMeta 已处理
		case section.Fonts != nil:
			fig.Fonts = collectFonts(section.Fonts.Block, data)
		case section.Figure != nil:
			err = applyFigure(&fig, section.Figure, data)
		case section.Plot != nil:
			var plot PlotSpec
			plot, err = buildPlot(section.Plot, data)
			fig.Plots = append(fig.Plots, plot)
		case section.Cover != nil:
			var cover CoverSpec
			cover, err = buildCover(section.Cover, data)
			fig.Covers = append(fig.Covers, cover)
		}
		if err != nil {
			return FigureSpec{}, fmt.Errorf("第 %d 段 %s: %w", i+1, section.Kind(), err)
		}
	}
	return fig, nil
}

func collectMeta(doc *dsl.Document, data any) DocumentMeta {
	var meta DocumentMeta
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := normalizeKey(stmt.Assignment.Name())
			switch key {
			case "title":
				meta.Title = binding.Interpolate(valueToString(stmt.Assignment.Value), data)
			case "author":
				meta.Author = binding.Interpolate(valueToString(stmt.Assignment.Value), data)
			case "subject":
				meta.Subject = binding.Interpolate(valueToString(stmt.Assignment.Value), data)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

// collectFonts 读取 fonts 段：text/title/mono 以及 icon-solid 这类图标字体角色。
func collectFonts(block *dsl.Block, data any) map[string]string {
	out := map[string]string{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		role := normalizeKey(stmt.Assignment.Name())
		if rest, ok := strings.CutPrefix(role, "icon_"); ok {
			role = "icon:" + rest
		}
		out[role] = binding.Interpolate(valueToString(stmt.Assignment.Value), data)
	}
	return out
}

// applyFigure 解析 figure 头（纸张、方向、页边距）及其中的图级默认参数。
func applyFigure(fig *FigureSpec, section *dsl.FigureSection, data any) error {
	params := section.Params
	landscape := false
	size := ""
	var lengths []float64
	for i := 0; i < len(params); i++ {
		token := strings.ToLower(params[i].Value)
		switch token {
		case "landscape":
			landscape = true
		case "portrait":
			landscape = false
		case "margin":
			var vals []string
			for j := i + 1; j < len(params) && len(vals) < 4; j++ {
				if _, err := ParseLength(params[j].Value); err != nil {
					break
				}
				vals = append(vals, params[j].Value)
			}
			m, err := ParseMargin(vals)
			if err != nil {
				return err
			}
			fig.Margin = &m
			i += len(vals)
		default:
			if l, err := ParseLength(params[i].Value); err == nil {
				lengths = append(lengths, l.ToMM())
				continue
			}
			size = params[i].Value
		}
	}
	switch {
	case size != "":
		w, h, err := PageSize(size, landscape)
		if err != nil {
			return err
		}
		fig.Width, fig.Height = w, h
	case len(lengths) == 2:
		fig.Width, fig.Height = lengths[0], lengths[1]
		if landscape && fig.Width < fig.Height {
			fig.Width, fig.Height = fig.Height, fig.Width
		}
	case len(lengths) != 0:
		return werrors.New(werrors.ErrCodeInvalidInput, "figure 尺寸需要两个长度，得到 %d 个", len(lengths))
	case landscape:
		fig.Width, fig.Height, _ = PageSize("A4", true)
	}

	if section.Block == nil {
		return nil
	}
	rest := make([]*dsl.Statement, 0, len(section.Block.Statements))
	for _, stmt := range section.Block.Statements {
		if stmt.Assignment == nil {
			rest = append(rest, stmt)
			continue
		}
		switch normalizeKey(stmt.Assignment.Name()) {
		case "title":
			fig.Title = binding.Interpolate(valueToString(stmt.Assignment.Value), data)
		case "title_size":
			v, err := floatValue(stmt.Assignment.Value)
			if err != nil {
				return err
			}
			fig.TitleSize = v
		default:
			rest = append(rest, stmt)
		}
	}
	defaults, err := plotArgs(&dsl.Block{Statements: rest}, data)
	if err != nil {
		return err
	}
	fig.Defaults = defaults
	return nil
}

func buildPlot(section *dsl.PlotSection, data any) (PlotSpec, error) {
	loc, err := ParseLoc(joinLexemes(section.Loc, " "))
	if err != nil {
		return PlotSpec{}, err
	}
	args, err := plotArgs(section.Block, data)
	if err != nil {
		return PlotSpec{}, err
	}
	return PlotSpec{Loc: loc, Args: args}, nil
}

func buildCover(section *dsl.CoverSection, data any) (CoverSpec, error) {
	panel := 1
	if len(section.Panel) > 0 {
		n, err := strconv.Atoi(joinLexemes(section.Panel, ""))
		if err != nil {
			return CoverSpec{}, werrors.Wrap(werrors.ErrCodeInvalidLocation, err, "cover 需要子图序号")
		}
		panel = n
	}
	args, err := plotArgs(section.Block, data)
	if err != nil {
		return CoverSpec{}, err
	}
	return CoverSpec{Panel: panel, Args: args}, nil
}

// plotArgs 把块中的赋值与 legend/rect 子命令收集为 PlotArgs。
func plotArgs(block *dsl.Block, data any) (PlotArgs, error) {
	var args PlotArgs
	if block == nil {
		return args, nil
	}
	for _, stmt := range block.Statements {
		switch {
		case stmt.Assignment != nil:
			key := normalizeKey(stmt.Assignment.Name())
			if key == "legend" {
				lg, err := legendFromValue(stmt.Assignment.Value, data)
				if err != nil {
					return args, err
				}
				args.Legend = lg
				continue
			}
			if key == "rect" && stmt.Assignment.Value.Object != nil {
				for _, entry := range stmt.Assignment.Value.Object.Entries {
					if err := setRectArg(&args, entry); err != nil {
						return args, err
					}
				}
				continue
			}
			if err := setArg(&args, key, stmt.Assignment.Value, data); err != nil {
				return args, err
			}
		case stmt.Command != nil:
			cmd := stmt.Command
			switch strings.ToLower(cmd.Name) {
			case "legend":
				lg, err := legendFromBlock(cmd.Block, data)
				if err != nil {
					return args, err
				}
				args.Legend = lg
			case "rect":
				if cmd.Block == nil {
					continue
				}
				for _, s := range cmd.Block.Statements {
					if s.Assignment == nil {
						continue
					}
					if err := setRectArg(&args, s.Assignment); err != nil {
						return args, err
					}
				}
			default:
				return args, werrors.New(werrors.ErrCodeInvalidInput, "第 %d 行：未知命令 %q", cmd.Pos.Line, cmd.Name)
			}
		}
	}
	return args, nil
}

func setRectArg(args *PlotArgs, a *dsl.Assignment) error {
	key := normalizeKey(a.Name())
	switch key {
	case "edgecolor", "linewidth", "alpha", "facecolor":
		return setArg(args, key, a.Value, nil)
	default:
		return werrors.New(werrors.ErrCodeInvalidInput, "rect 不支持参数 %q", a.Name())
	}
}

func setArg(args *PlotArgs, key string, v *dsl.Value, data any) error {
	var err error
	switch key {
	case "values":
		args.Values, err = matrixValue(v, data)
	case "rows":
		args.Rows, err = intPtr(v)
	case "columns":
		args.Columns, err = intPtr(v)
	case "empty":
		args.Empty = strPtr(valueToString(v))
	case "colors":
		args.Colors = styleValue(v)
	case "cmap":
		args.Cmap = strPtr(valueToString(v))
	case "bounds":
		args.Bounds, err = floatSlice(v)
	case "labels":
		labels := valueToStringSliceAll(v)
		for i := range labels {
			labels[i] = binding.Interpolate(labels[i], data)
		}
		args.Labels = labels
	case "icon_legend":
		args.IconLegend, err = boolPtr(v)
	case "interval_x":
		args.IntervalX, err = floatPtr(v)
	case "interval_y":
		args.IntervalY, err = floatPtr(v)
	case "block_aspect":
		args.BlockAspect, err = floatPtr(v)
	case "title":
		args.Title = strPtr(binding.Interpolate(valueToString(v), data))
	case "title_size":
		args.TitleSize, err = floatPtr(v)
	case "icons":
		args.Icons = styleValue(v)
	case "icon_set":
		args.IconSet = strPtr(valueToString(v))
	case "icon_size":
		args.IconSize, err = floatPtr(v)
	case "show_num":
		args.ShowNumbers, err = boolPtr(v)
	case "markers":
		args.Markers = styleValue(v)
	case "marker_size":
		args.MarkerSize, err = floatPtr(v)
	case "rotation":
		args.Rotation = styleValue(v)
	case "edgecolor":
		args.EdgeColor = styleValue(v)
	case "linewidth":
		args.LineWidth = styleValue(v)
	case "alpha":
		args.Alpha = styleValue(v)
	case "facecolor":
		args.FaceColor = styleValue(v)
	case "anchor":
		args.Anchor = strPtr(valueToString(v))
	case "direction":
		args.Direction = strPtr(valueToString(v))
	case "origin":
		args.Origin = strPtr(valueToString(v))
	case "order":
		args.Order = strPtr(valueToString(v))
	case "x_offset":
		args.XOffset, err = floatPtr(v)
	case "y_offset":
		args.YOffset, err = floatPtr(v)
	default:
		return werrors.New(werrors.ErrCodeInvalidInput, "未知参数 %q", key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func legendFromValue(v *dsl.Value, data any) (*LegendArgs, error) {
	if v == nil || v.Object == nil {
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "legend 需要 { ... } 参数")
	}
	stmts := make([]*dsl.Statement, len(v.Object.Entries))
	for i, entry := range v.Object.Entries {
		stmts[i] = &dsl.Statement{Assignment: entry}
	}
	return legendFromBlock(&dsl.Block{Statements: stmts}, data)
}

func legendFromBlock(block *dsl.Block, data any) (*LegendArgs, error) {
	lg := &LegendArgs{}
	if block == nil {
		return lg, nil
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		v := stmt.Assignment.Value
		var err error
		switch key := normalizeKey(stmt.Assignment.Name()); key {
		case "labels":
			lg.Labels = valueToStringSliceAll(v)
			for i := range lg.Labels {
				lg.Labels[i] = binding.Interpolate(lg.Labels[i], data)
			}
		case "loc":
			lg.Loc = strPtr(valueToString(v))
		case "ncol":
			lg.NCol, err = intPtr(v)
		case "title":
			lg.Title = strPtr(binding.Interpolate(valueToString(v), data))
		case "flip":
			lg.Flip, err = boolPtr(v)
		case "fontsize", "font_size":
			lg.FontSize, err = floatPtr(v)
		default:
			return nil, werrors.New(werrors.ErrCodeInvalidInput, "legend 不支持参数 %q", stmt.Assignment.Name())
		}
		if err != nil {
			return nil, fmt.Errorf("legend: %w", err)
		}
	}
	return lg, nil
}

// matrixValue 接受嵌套数组、一维数组（视为单行）或指向 data 的 ${path}。
func matrixValue(v *dsl.Value, data any) (*Matrix, error) {
	if v == nil {
		return nil, werrors.New(werrors.ErrCodeInvalidShape, "values 为空")
	}
	if v.String != nil {
		path, ok := binding.Placeholder(string(*v.String))
		if !ok {
			return nil, werrors.New(werrors.ErrCodeInvalidShape, "values 应为数组或 ${path} 绑定")
		}
		raw, found := binding.Lookup(data, path)
		if !found {
			return nil, werrors.New(werrors.ErrCodeInvalidInput, "绑定数据中找不到 %q", path)
		}
		return MatrixFromAny(raw)
	}
	if v.Array == nil {
		return nil, werrors.New(werrors.ErrCodeInvalidShape, "values 应为数组")
	}
	m := &Matrix{}
	nested := len(v.Array.Values) > 0 && v.Array.Values[0].Array != nil
	if !nested {
		m.Cells = [][]string{valueToStringSliceAll(v)}
		return m, nil
	}
	for _, row := range v.Array.Values {
		if row.Array == nil {
			return nil, werrors.New(werrors.ErrCodeInvalidShape, "values 中混合了数组与标量")
		}
		m.Cells = append(m.Cells, valueToStringSliceAll(row))
	}
	return m, nil
}

// MatrixFromAny 把 JSON/YAML 解码出的 []any（或 [][]any）转为 Matrix。
func MatrixFromAny(raw any) (*Matrix, error) {
	rows, ok := raw.([]any)
	if !ok {
		return nil, werrors.New(werrors.ErrCodeInvalidShape, "绑定数据不是数组：%T", raw)
	}
	m := &Matrix{}
	if len(rows) > 0 {
		if _, nested := rows[0].([]any); !nested {
			rows = []any{rows}
		}
	}
	for i, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			return nil, werrors.New(werrors.ErrCodeInvalidShape, "第 %d 行不是数组：%T", i+1, r)
		}
		row := make([]string, len(cells))
		for j, c := range cells {
			row[j] = scalarString(c)
		}
		m.Cells = append(m.Cells, row)
	}
	return m, nil
}

func scalarString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case int:
		return strconv.Itoa(c)
	default:
		return fmt.Sprint(c)
	}
}

func styleValue(v *dsl.Value) *StyleValue {
	switch {
	case v == nil:
		return nil
	case v.Object != nil:
		m := make(map[string]string, len(v.Object.Entries))
		for _, entry := range v.Object.Entries {
			m[entry.Name()] = valueToString(entry.Value)
		}
		return &StyleValue{Map: m}
	case v.Array != nil:
		return &StyleValue{List: valueToStringSliceAll(v)}
	default:
		return ScalarStyle(valueToString(v))
	}
}

func normalizeKey(k string) string {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "-", "_")
	if alias, ok := argAliases[key]; ok {
		return alias
	}
	return key
}

func floatValue(v *dsl.Value) (float64, error) {
	s := valueToString(v)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "无法解析数值 %q", s)
	}
	return f, nil
}

func floatPtr(v *dsl.Value) (*float64, error) {
	f, err := floatValue(v)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func floatSlice(v *dsl.Value) ([]float64, error) {
	items := []*dsl.Value{v}
	if v != nil && v.Array != nil {
		items = v.Array.Values
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, err := floatValue(item)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func intPtr(v *dsl.Value) (*int, error) {
	s := valueToString(v)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "无法解析整数 %q", s)
	}
	return &n, nil
}

func boolPtr(v *dsl.Value) (*bool, error) {
	s := valueToString(v)
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "无法解析布尔值 %q", s)
	}
	return &b, nil
}

func strPtr(s string) *string { return &s }

func joinLexemes(parts []*dsl.Lexeme, sep string) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, sep)
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Bare != nil:
		return val.Bare.Text
	default:
		return ""
	}
}

// valueToStringSlice 丢弃空字符串，适用于标签、关键字。
func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}

// valueToStringSliceAll 保留空字符串，矩阵单元格与按序样式列表需要位置对齐。
func valueToStringSliceAll(val *dsl.Value) []string {
	if val.Array == nil {
		return []string{valueToString(val)}
	}
	out := make([]string, len(val.Array.Values))
	for i, item := range val.Array.Values {
		out[i] = valueToString(item)
	}
	return out
}
