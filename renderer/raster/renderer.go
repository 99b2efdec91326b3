// Package raster 使用 gogpu/gg 软件光栅化器直接输出 PNG。
//
// 与 canvas 渲染器相比它不依赖矢量后端，适合批量生成缩略图；
// 文本不随坐标变换旋转，带 rotation 的字形按未旋转绘制。
package raster

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/fonts"
	"github.com/ByLCY/waffle/icons"
	"github.com/ByLCY/waffle/layout"
	"github.com/ByLCY/waffle/renderer"
)

const defaultDPI = 150.0

// Options configures the raster renderer.
type Options struct {
	BaseDir   string
	DPI       float64
	IconFonts map[icons.Set]string
}

// Renderer draws layout results into a PNG via github.com/gogpu/gg.
type Renderer struct {
	baseDir   string
	dpi       float64
	iconFonts map[string]string

	mu      sync.Mutex
	sources map[string]*text.FontSource
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates a raster renderer.
func New(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		dpi:       opts.DPI,
		iconFonts: map[string]string{},
		sources:   map[string]*text.FontSource{},
	}
	if r.dpi <= 0 {
		r.dpi = defaultDPI
	}
	for set, path := range opts.IconFonts {
		r.iconFonts[layout.IconFontName(set)] = path
	}
	return r
}

// page 把 mm、y 轴向上的布局坐标换算成像素、y 轴向下。
type page struct {
	dc     *gg.Context
	scale  float64 // px / mm
	height float64 // mm
}

func (p page) x(mm float64) float64 { return mm * p.scale }
func (p page) y(mm float64) float64 { return (p.height - mm) * p.scale }

// Render renders the first page of result as PNG.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil || len(result.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	pg := result.Pages[0]
	scale := r.dpi / 25.4
	w := int(math.Ceil(pg.Width * scale))
	h := int(math.Ceil(pg.Height * scale))
	dc := gg.NewContext(w, h)
	defer dc.Close()
	dc.ClearWithColor(gg.RGB(1, 1, 1))

	p := page{dc: dc, scale: scale, height: pg.Height}
	fontsByRole := result.Resources.Fonts
	if pg.Title != nil {
		if err := r.drawText(p, *pg.Title, fontsByRole); err != nil {
			return nil, err
		}
	}
	for _, panel := range pg.Panels {
		for _, layer := range panel.Layers {
			if err := r.drawLayer(p, layer, fontsByRole); err != nil {
				return nil, fmt.Errorf("子图 %d: %w", panel.Index, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("写入 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawLayer(p page, layer layout.Layer, fontsByRole map[string]layout.FontResource) error {
	for _, cmd := range layer.Commands {
		var err error
		switch cmd.Kind {
		case layout.KindRect:
			err = drawRect(p, cmd)
		case layout.KindMarker:
			cx, cy := cmd.Center()
			err = drawMarker(p, cmd.Marker, p.x(cx), p.y(cy), cmd.MarkerSize*layout.PtToMm*p.scale, cmd.Color)
		case layout.KindGlyph:
			cx, cy := cmd.Center()
			err = r.drawGlyph(p, cmd.Text, cmd.Font, cmd.FontSize, p.x(cx), p.y(cy), cmd.Color, fontsByRole)
		}
		if err != nil {
			return err
		}
	}
	if layer.Title != nil {
		if err := r.drawText(p, *layer.Title, fontsByRole); err != nil {
			return err
		}
	}
	if layer.Legend != nil {
		return r.drawLegend(p, layer.Legend, fontsByRole)
	}
	return nil
}

func drawRect(p page, cmd layout.Command) error {
	dc := p.dc
	x, y := p.x(cmd.X), p.y(cmd.Y+cmd.Height)
	w, h := cmd.Width*p.scale, cmd.Height*p.scale
	dc.SetColor(toColor(cmd.Color, cmd.Alpha))
	dc.DrawRectangle(x, y, w, h)
	if err := dc.Fill(); err != nil {
		return err
	}
	if cmd.EdgeColor != nil && cmd.LineWidth > 0 {
		dc.SetColor(toColor(*cmd.EdgeColor, 1))
		dc.SetLineWidth(cmd.LineWidth * layout.PtToMm * p.scale)
		dc.DrawRectangle(x, y, w, h)
		return dc.Stroke()
	}
	return nil
}

func (r *Renderer) drawLegend(p page, lg *layout.LegendBox, fontsByRole map[string]layout.FontResource) error {
	dc := p.dc
	dc.SetRGBA(1, 1, 1, 0.8)
	dc.DrawRectangle(p.x(lg.Box.X), p.y(lg.Box.Y+lg.Box.Height), lg.Box.Width*p.scale, lg.Box.Height*p.scale)
	if err := dc.Fill(); err != nil {
		return err
	}
	if lg.Title != nil {
		if err := r.drawText(p, *lg.Title, fontsByRole); err != nil {
			return err
		}
	}
	for _, item := range lg.Items {
		hb := item.HandleBox
		cx, cy := p.x(hb.X+hb.Width/2), p.y(hb.Y+hb.Height/2)
		var err error
		switch item.Handle {
		case layout.HandleGlyph:
			err = r.drawGlyph(p, item.Text, item.Font, hb.Height*layout.MmToPt*0.8, cx, cy, item.Color, fontsByRole)
		case layout.HandleMarker:
			err = drawMarker(p, item.Marker, cx, cy, hb.Height*0.7*p.scale, item.Color)
		default:
			dc.SetColor(toColor(item.Color, 1))
			dc.DrawRectangle(p.x(hb.X), p.y(hb.Y+hb.Height), hb.Width*p.scale, hb.Height*p.scale)
			err = dc.Fill()
		}
		if err != nil {
			return err
		}
		if err := r.drawText(p, item.LabelBox, fontsByRole); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawText(p page, tb layout.TextBox, fontsByRole map[string]layout.FontResource) error {
	face, err := r.face(tb.Font, tb.FontSize, fontsByRole)
	if err != nil {
		return err
	}
	p.dc.SetFont(face)
	p.dc.SetColor(toColor(tb.Color, 1))
	cy := p.y(tb.Y + tb.Height/2)
	switch tb.Align {
	case "center":
		p.dc.DrawStringAnchored(tb.Content, p.x(tb.X+tb.Width/2), cy, 0.5, 0.5)
	case "right", "end":
		p.dc.DrawStringAnchored(tb.Content, p.x(tb.X+tb.Width), cy, 1, 0.5)
	default:
		p.dc.DrawStringAnchored(tb.Content, p.x(tb.X), cy, 0, 0.5)
	}
	return nil
}

func (r *Renderer) drawGlyph(p page, s, role string, sizePt, cx, cy float64, col layout.Color, fontsByRole map[string]layout.FontResource) error {
	face, err := r.face(role, sizePt, fontsByRole)
	if err != nil {
		return err
	}
	p.dc.SetFont(face)
	p.dc.SetColor(toColor(col, 1))
	p.dc.DrawStringAnchored(s, cx, cy, 0.5, 0.5)
	return nil
}

// face 返回 role 对应字体在当前 DPI 下的字形面；sizePt 换算为像素大小。
func (r *Renderer) face(role string, sizePt float64, fontsByRole map[string]layout.FontResource) (text.Face, error) {
	if sizePt <= 0 {
		sizePt = 10
	}
	src, err := r.source(role, fontsByRole)
	if err != nil {
		return nil, err
	}
	return src.Face(sizePt * r.dpi / 72), nil
}

func (r *Renderer) source(role string, fontsByRole map[string]layout.FontResource) (*text.FontSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[role]; ok {
		return s, nil
	}
	src := fontsByRole[role].Src
	if path, ok := r.iconFonts[role]; ok && path != "" {
		src = path
	}
	if src == "" && !isIconRole(role) {
		src = fontsByRole[layout.FontText].Src
	}
	if src == "" {
		return nil, werrors.New(werrors.ErrCodeFontUnavailable, "字体 %s 没有可用的 src", role)
	}
	data, err := fonts.Load(src, r.baseDir)
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeFontUnavailable, err, "字体 %s 不可用", role)
	}
	s, err := text.NewFontSource(data)
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeFontUnavailable, err, "无法解析字体 %s", role)
	}
	r.sources[role] = s
	return s, nil
}

func isIconRole(role string) bool { return strings.HasPrefix(role, "icon:") }

func toColor(c layout.Color, alpha float64) color.Color {
	return gg.RGBA2(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, alpha).Color()
}
