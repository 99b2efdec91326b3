package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/waffle/dsl"
	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/internal/config"
	"github.com/ByLCY/waffle/layout"
	"github.com/ByLCY/waffle/renderer"
	canvasrenderer "github.com/ByLCY/waffle/renderer/canvas"
	"github.com/ByLCY/waffle/renderer/raster"
)

// loadFigure 读取图描述文件：.yaml/.yml 按 YAML 解码（不接受 data），其余按 DSL 解析并绑定 data。
func loadFigure(path string, data any) (layout.FigureSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return layout.FigureSpec{}, fmt.Errorf("无法打开图描述文件 %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if data != nil {
			return layout.FigureSpec{}, werrors.New(werrors.ErrCodeInvalidInput, "YAML 图描述不支持 --data 绑定，请改用 DSL 文件")
		}
		fig, err := layout.DecodeYAML(f)
		if err != nil {
			return layout.FigureSpec{}, fmt.Errorf("解析 YAML 失败: %w", err)
		}
		return fig, nil
	}

	doc, err := dsl.Parse(f)
	if err != nil {
		return layout.FigureSpec{}, fmt.Errorf("解析 DSL 失败: %w", err)
	}
	fig, err := layout.FromDocument(doc, data)
	if err != nil {
		return layout.FigureSpec{}, fmt.Errorf("转换 DSL 失败: %w", err)
	}
	return fig, nil
}

// decodeData 解析 --data：内联 JSON，或以 @ 开头的 JSON 文件路径。
func decodeData(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	payload := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取 data 文件失败: %w", err)
		}
		payload = b
	}
	var out any
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "解析 data JSON 失败")
	}
	return out, nil
}

// pipeline 串联解析、布局与渲染。
type pipeline struct {
	cfg      config.Config
	chart    string
	data     any
	backend  string
	format   renderer.Format
	dpi      float64
	measurer *canvasrenderer.Renderer
}

func newPipeline(cfg config.Config, chart string, data any) (*pipeline, error) {
	format, err := renderer.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	p := &pipeline{
		cfg:     cfg,
		chart:   chart,
		data:    data,
		backend: cfg.Backend,
		format:  format,
		dpi:     cfg.DPI,
	}
	if p.backend == "" {
		p.backend = config.BackendCanvas
	}
	return p, nil
}

func (p *pipeline) baseDir() string { return filepath.Dir(p.chart) }

// canvas 返回 canvas 渲染器；布局阶段也用它度量文本。
func (p *pipeline) canvas() (*canvasrenderer.Renderer, error) {
	iconFonts, err := p.cfg.IconFontPaths()
	if err != nil {
		return nil, err
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir:   p.baseDir(),
		Format:    p.format,
		DPI:       p.dpi,
		IconFonts: iconFonts,
	}), nil
}

// build 计算布局结果。
func (p *pipeline) build(ctx context.Context) (*layout.Result, error) {
	logger := loggerFromContext(ctx)

	fig, err := loadFigure(p.chart, p.data)
	if err != nil {
		return nil, err
	}
	p.cfg.Apply(&fig)
	logger.Debug("parsed chart", "file", p.chart, "plots", len(fig.Plots), "covers", len(fig.Covers))

	if p.measurer == nil {
		if p.measurer, err = p.canvas(); err != nil {
			return nil, err
		}
	}
	res, err := layout.Build(fig, p.cfg.BuildOptions(p.measurer))
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	return res, nil
}

// output 按 backend 选择渲染器。raster 只能输出 png。
func (p *pipeline) output() (renderer.Renderer, error) {
	switch p.backend {
	case config.BackendRaster:
		if p.format != renderer.FormatPNG {
			return nil, werrors.New(werrors.ErrCodeInvalidFormat, "raster 后端只支持 png，得到 %s", p.format)
		}
		iconFonts, err := p.cfg.IconFontPaths()
		if err != nil {
			return nil, err
		}
		return raster.New(raster.Options{BaseDir: p.baseDir(), DPI: p.dpi, IconFonts: iconFonts}), nil
	case config.BackendCanvas:
		return p.canvas()
	default:
		return nil, werrors.New(werrors.ErrCodeInvalidInput, "backend 必须是 canvas 或 raster，得到 %q", p.backend)
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
