package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/waffle/internal/config"
	"github.com/ByLCY/waffle/layout"
	"github.com/ByLCY/waffle/renderer"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string  // output file; defaults to the chart name with the format's extension
	format  string  // pdf, svg or png; inferred from output when empty
	backend string  // canvas or raster
	dpi     float64 // png resolution
	data    string  // inline JSON or @file.json bound to ${...} placeholders
	debug   string  // optional layout JSON path
}

func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [chart]",
		Short: "Render a chart file to PDF, SVG or PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: pdf, svg, png (default from output extension or config)")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "renderer backend: canvas, raster (default from config)")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", 0, "PNG resolution (default from config)")
	cmd.Flags().StringVar(&opts.data, "data", "", "JSON data for ${...} placeholders, or @file.json")
	cmd.Flags().StringVar(&opts.debug, "debug", "", "also write the layout as JSON to this file")

	return cmd
}

func runRender(cmd *cobra.Command, chart string, opts renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	prog := newProgress(logger)

	if err := resolveRenderOpts(&opts, cfg, chart); err != nil {
		return err
	}
	cfg.Format = opts.format
	cfg.Backend = opts.backend
	if opts.dpi > 0 {
		cfg.DPI = opts.dpi
	}

	data, err := decodeData(opts.data)
	if err != nil {
		return err
	}
	p, err := newPipeline(cfg, chart, data)
	if err != nil {
		return err
	}
	// 先检查后端与格式是否匹配，避免白做布局
	r, err := p.output()
	if err != nil {
		return err
	}

	res, err := p.build(ctx)
	if err != nil {
		return err
	}
	if opts.debug != "" {
		if err := writeDebug(res, opts.debug); err != nil {
			return err
		}
		logger.Debug("wrote layout", "path", opts.debug)
	}

	out, err := r.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 %s 失败: %w", p.format, err)
	}
	if err := writeFile(opts.output, out); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("已生成 %s", opts.output))
	return nil
}

// resolveRenderOpts 补全输出路径、格式与后端。
// 格式优先级：--format、输出文件扩展名、配置；raster 后端未指定格式时为 png。
func resolveRenderOpts(opts *renderOpts, cfg config.Config, chart string) error {
	if opts.backend == "" {
		opts.backend = cfg.Backend
	}
	if opts.backend == "" {
		opts.backend = config.BackendCanvas
	}

	fallback, err := renderer.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	if opts.backend == config.BackendRaster {
		fallback = renderer.FormatPNG
	}
	format := fallback
	switch {
	case opts.format != "":
		if format, err = renderer.ParseFormat(opts.format); err != nil {
			return err
		}
	case opts.output != "":
		format = renderer.FormatFromPath(opts.output, fallback)
	}
	opts.format = string(format)

	if opts.output == "" {
		base := strings.TrimSuffix(chart, filepath.Ext(chart))
		opts.output = base + "." + opts.format
	}
	return nil
}

func writeDebug(res *layout.Result, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
	}
	if err := layout.WriteDebugJSON(res, path); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
