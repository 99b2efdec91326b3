package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/fonts"
	"github.com/ByLCY/waffle/icons"
	"github.com/ByLCY/waffle/layout"
	"github.com/ByLCY/waffle/renderer"
)

const (
	defaultDPI      = 150.0
	legendEdgeWidth = 0.2 // mm
)

// Renderer draws layout results via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string
	format  renderer.Format
	dpi     float64

	// injected resources, by font role
	fontBlobs map[string][]byte
	// 配置了路径但读取失败的字体，按角色记录原因
	fontErrs map[string]error

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer   = (*Renderer)(nil)
	_ layout.TextMeasurer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Format  renderer.Format // 默认 pdf
	DPI     float64         // 仅 png 使用，默认 150
	// Fonts 按字体角色（text、title、mono、icon:solid ...）注入字体，优先于 Result 中的 src。
	Fonts map[string]Resource
	// IconFonts 为各图标集指定字体文件（通常是 Font Awesome 5 的 ttf/otf）。
	IconFonts map[icons.Set]string
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		dpi:          opts.DPI,
		fontBlobs:    map[string][]byte{},
		fontErrs:     map[string]error{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.format == "" {
		r.format = renderer.FormatPDF
	}
	if r.dpi <= 0 {
		r.dpi = defaultDPI
	}
	for set, path := range opts.IconFonts {
		if path == "" {
			continue
		}
		name := layout.IconFontName(set)
		data, err := fonts.Load(path, opts.BaseDir)
		if err != nil {
			r.fontErrs[name] = fmt.Errorf("读取图标字体 %s 失败: %w", path, err)
			continue
		}
		r.fontBlobs[name] = data
	}
	for role, res := range opts.Fonts {
		if role == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[role] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				r.fontErrs[role] = fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
				continue
			}
			r.fontBlobs[role] = data
		}
	}
	return r
}

// Render renders the result into the configured format.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	switch r.format {
	case renderer.FormatPDF:
		writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
		r.applyMeta(writer, result.Meta)
		for i, page := range result.Pages {
			if i > 0 {
				writer.NewPage(page.Width, page.Height)
			}
			c, err := r.drawCanvas(page, result.Resources)
			if err != nil {
				return nil, err
			}
			c.RenderTo(writer)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	case renderer.FormatSVG:
		page := result.Pages[0]
		c, err := r.drawCanvas(page, result.Resources)
		if err != nil {
			return nil, err
		}
		writer := svg.New(&buf, page.Width, page.Height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case renderer.FormatPNG:
		c, err := r.drawCanvas(result.Pages[0], result.Resources)
		if err != nil {
			return nil, err
		}
		img := rasterizer.Draw(c, canvas.DPI(r.dpi), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		return nil, werrors.New(werrors.ErrCodeInvalidFormat, "canvas 渲染器不支持格式 %q", r.format)
	}
	return buf.Bytes(), nil
}

// MeasureText 实现 layout.TextMeasurer，返回 mm 宽度。
func (r *Renderer) MeasureText(content string, font layout.FontResource, sizePt float64) (float64, error) {
	face, err := r.fontFace(font, sizePt, layout.Color{})
	if err != nil {
		return 0, err
	}
	width := 0.0
	for _, line := range strings.Split(content, "\n") {
		width = math.Max(width, face.TextWidth(line))
	}
	return width, nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawCanvas 在默认的 y 轴向上坐标系中绘制一页，与布局坐标一致。
func (r *Renderer) drawCanvas(page layout.Page, resources layout.ResourceSet) (*canvas.Canvas, error) {
	c := canvas.New(page.Width, page.Height)
	ctx := canvas.NewContext(c)
	ctx.SetFillColor(canvas.White)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(0, 0, canvas.Rectangle(page.Width, page.Height))

	if page.Title != nil {
		if err := r.drawTextBox(ctx, *page.Title, resources.Fonts); err != nil {
			return nil, err
		}
	}
	for _, panel := range page.Panels {
		for _, layer := range panel.Layers {
			if err := r.drawLayer(ctx, layer, resources.Fonts); err != nil {
				return nil, fmt.Errorf("子图 %d: %w", panel.Index, err)
			}
		}
	}
	return c, nil
}

func (r *Renderer) drawLayer(ctx *canvas.Context, layer layout.Layer, fonts map[string]layout.FontResource) error {
	for _, cmd := range layer.Commands {
		var err error
		switch cmd.Kind {
		case layout.KindRect:
			r.drawRect(ctx, cmd)
		case layout.KindMarker:
			cx, cy := cmd.Center()
			drawMarker(ctx, cmd.Marker, cx, cy, cmd.MarkerSize*layout.PtToMm, cmd.Color)
		case layout.KindGlyph:
			err = r.drawGlyph(ctx, cmd, fonts)
		}
		if err != nil {
			return err
		}
	}
	if layer.Title != nil {
		if err := r.drawTextBox(ctx, *layer.Title, fonts); err != nil {
			return err
		}
	}
	if layer.Legend != nil {
		return r.drawLegend(ctx, layer.Legend, fonts)
	}
	return nil
}

func (r *Renderer) drawRect(ctx *canvas.Context, cmd layout.Command) {
	ctx.SetFillColor(colorFromLayout(cmd.Color, cmd.Alpha))
	if cmd.EdgeColor != nil && cmd.LineWidth > 0 {
		ctx.SetStrokeColor(colorFromLayout(*cmd.EdgeColor, 1))
		ctx.SetStrokeWidth(cmd.LineWidth * layout.PtToMm)
	} else {
		ctx.SetStrokeColor(canvas.Transparent)
	}
	ctx.DrawPath(cmd.X, cmd.Y, canvas.Rectangle(cmd.Width, cmd.Height))
}

func (r *Renderer) drawGlyph(ctx *canvas.Context, cmd layout.Command, fonts map[string]layout.FontResource) error {
	font, ok := fonts[cmd.Font]
	if !ok {
		font = layout.FontResource{Name: cmd.Font}
	}
	face, err := r.fontFace(font, cmd.FontSize, cmd.Color)
	if err != nil {
		return err
	}
	cx, cy := cmd.Center()
	if cmd.Rotation != 0 {
		ctx.Push()
		defer ctx.Pop()
		ctx.RotateAbout(cmd.Rotation, cx, cy)
	}
	ctx.DrawText(cx, centredBaseline(face, cy), canvas.NewTextLine(face, cmd.Text, canvas.Center))
	return nil
}

func (r *Renderer) drawLegend(ctx *canvas.Context, lg *layout.LegendBox, fonts map[string]layout.FontResource) error {
	ctx.SetFillColor(canvas.RGBA(1, 1, 1, 0.8))
	ctx.SetStrokeColor(canvas.Hex("#cccccc"))
	ctx.SetStrokeWidth(legendEdgeWidth)
	ctx.DrawPath(lg.Box.X, lg.Box.Y, canvas.Rectangle(lg.Box.Width, lg.Box.Height))

	if lg.Title != nil {
		if err := r.drawTextBox(ctx, *lg.Title, fonts); err != nil {
			return err
		}
	}
	for _, item := range lg.Items {
		hb := item.HandleBox
		cx, cy := hb.X+hb.Width/2, hb.Y+hb.Height/2
		switch item.Handle {
		case layout.HandleGlyph:
			font, ok := fonts[item.Font]
			if !ok {
				font = layout.FontResource{Name: item.Font}
			}
			face, err := r.fontFace(font, hb.Height*layout.MmToPt*0.8, item.Color)
			if err != nil {
				return err
			}
			ctx.DrawText(cx, centredBaseline(face, cy), canvas.NewTextLine(face, item.Text, canvas.Center))
		case layout.HandleMarker:
			drawMarker(ctx, item.Marker, cx, cy, hb.Height*0.7, item.Color)
		default:
			ctx.SetFillColor(colorFromLayout(item.Color, 1))
			ctx.SetStrokeColor(canvas.Transparent)
			ctx.DrawPath(hb.X, hb.Y, canvas.Rectangle(hb.Width, hb.Height))
		}
		if err := r.drawTextBox(ctx, item.LabelBox, fonts); err != nil {
			return err
		}
	}
	return nil
}

// drawTextBox 绘制单行文本，文字在框内垂直居中。
func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fonts map[string]layout.FontResource) error {
	font, ok := fonts[tb.Font]
	if !ok {
		font = fonts[layout.FontText]
	}
	face, err := r.fontFace(font, tb.FontSize, tb.Color)
	if err != nil {
		return err
	}
	var textAlign canvas.TextAlign
	var anchorX float64
	switch strings.ToLower(tb.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}
	ctx.DrawText(anchorX, centredBaseline(face, tb.Y+tb.Height/2), canvas.NewTextLine(face, tb.Content, textAlign))
	return nil
}

// centredBaseline 返回使字形在 cy 处垂直居中的基线位置（y 轴向上）。
func centredBaseline(face *canvas.FontFace, cy float64) float64 {
	m := face.Metrics()
	return cy - (m.Ascent-m.Descent)/2
}

func (r *Renderer) fontFace(font layout.FontResource, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	if sizePt <= 0 {
		sizePt = 10
	}
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, colorFromLayout(col, 1), canvas.FontRegular, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(font.Name)
	data, err := r.loadFontBytes(font)
	if err == nil {
		err = family.LoadFont(data, 0, canvas.FontRegular)
	}
	if err != nil {
		// 显式配置的路径读不到时直接报告原因，不做回退
		if _, configured := r.fontErrs[font.Name]; configured {
			return nil, werrors.Wrap(werrors.ErrCodeFontUnavailable, err, "字体 %s 无法从配置的路径加载", font.Name)
		}
		// 图标字体没有可替代的字形，其余角色退回内置无衬线字体
		if strings.HasPrefix(font.Name, "icon:") {
			return nil, werrors.Wrap(werrors.ErrCodeFontUnavailable, err, "图标字体 %s 不可用，请通过配置或 fonts 段指定字体文件", font.Name)
		}
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, werrors.Wrap(werrors.ErrCodeFontUnavailable, err, "字体 %s 不可用", font.Name)
		}
		r.fontFamilies[key] = fallback
		return fallback, nil
	}
	r.fontFamilies[key] = family
	return family, nil
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if blob, ok := r.fontBlobs[font.Name]; ok {
		return blob, nil
	}
	if err, ok := r.fontErrs[font.Name]; ok {
		return nil, err
	}
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	return fonts.Load(font.Src, r.baseDir)
}

// fallback 在持有 fontMu 时调用。
func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	const key = "fallback|builtin:sans"
	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}
	data, err := fonts.Builtin(fonts.Sans)
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily("waffle-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	r.fontFamilies[key] = family
	return family, nil
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s", font.Name, font.Src)
}

func colorFromLayout(c layout.Color, alpha float64) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, alpha)
}
