package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/internal/config"
)

const demoChart = `
chart Demo v1 {
  meta { title: "Demo" }
  figure 100mm 60mm margin 5mm { cmap: "tab10" }
  plot 1 1 1 {
    values: "${votes}"
    labels: ["Yes", "No"]
  }
}
`

const demoYAML = `
name: Demo
page:
  width: 100mm
  height: 60mm
  margin: 5mm
plots:
  - loc: 111
    values: [[A, B], [B, A]]
`

// isolate 让测试不读取用户自己的配置文件。
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvPath, "")
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeChart(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("写入图描述失败: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

const votes = `{"votes": [[1, 2, 1], [2, 1, 1]]}`

func TestRenderPDF(t *testing.T) {
	dir := isolate(t)
	chart := writeChart(t, dir, "demo.waffle", demoChart)
	out := filepath.Join(dir, "out", "demo.pdf")

	if _, err := execute(t, "render", chart, "-o", out, "--data", votes); err != nil {
		t.Fatalf("render 失败: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("输出不是 PDF")
	}
}

func TestRenderDefaultOutputName(t *testing.T) {
	dir := isolate(t)
	chart := writeChart(t, dir, "demo.waffle", demoChart)

	if _, err := execute(t, "render", chart, "--format", "svg", "--data", votes); err != nil {
		t.Fatalf("render 失败: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "demo.svg"))
	if err != nil {
		t.Fatalf("应生成 demo.svg: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("输出不是 SVG")
	}
}

func TestRenderRasterYAML(t *testing.T) {
	dir := isolate(t)
	chart := writeChart(t, dir, "demo.yaml", demoYAML)
	out := filepath.Join(dir, "demo.png")

	if _, err := execute(t, "render", chart, "-o", out, "--backend", "raster", "--dpi", "25.4"); err != nil {
		t.Fatalf("render 失败: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("读取输出失败: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("输出不是 PNG")
	}
}

func TestRenderErrors(t *testing.T) {
	dir := isolate(t)
	chart := writeChart(t, dir, "demo.waffle", demoChart)
	bad := writeChart(t, dir, "bad.waffle", "chart Bad v1 { plot 1 1 1 { colour: red } }")
	yamlChart := writeChart(t, dir, "demo.yaml", demoYAML)

	tests := []struct {
		name string
		args []string
		code werrors.Code
	}{
		{"raster 不支持 pdf", []string{"render", chart, "--backend", "raster", "-o", filepath.Join(dir, "x.pdf"), "--data", votes}, werrors.ErrCodeInvalidFormat},
		{"未知格式", []string{"render", chart, "--format", "gif", "--data", votes}, werrors.ErrCodeInvalidFormat},
		{"未知后端", []string{"render", chart, "--backend", "opengl", "--data", votes}, werrors.ErrCodeInvalidInput},
		{"非法 data", []string{"render", chart, "--data", "{"}, werrors.ErrCodeInvalidInput},
		{"未知参数", []string{"render", bad}, werrors.ErrCodeInvalidInput},
		{"YAML 不接受 data", []string{"render", yamlChart, "--data", votes}, werrors.ErrCodeInvalidInput},
		{"layout 的 YAML 不接受 data", []string{"layout", yamlChart, "--data", votes}, werrors.ErrCodeInvalidInput},
		{"文件不存在", []string{"render", filepath.Join(dir, "missing.waffle")}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("期望 %v 失败", tt.args)
			}
			if tt.code != "" && !werrors.Is(err, tt.code) {
				t.Fatalf("错误码应为 %s，得到 %v", tt.code, err)
			}
		})
	}
}

func TestLayoutJSON(t *testing.T) {
	dir := isolate(t)
	chart := writeChart(t, dir, "demo.waffle", demoChart)
	dataFile := writeChart(t, dir, "votes.json", votes)

	out, err := execute(t, "layout", chart, "--data", "@"+dataFile)
	if err != nil {
		t.Fatalf("layout 失败: %v", err)
	}
	var res struct {
		Pages []struct {
			Width  float64 `json:"width"`
			Panels []struct {
				Layers []struct {
					Commands []json.RawMessage `json:"commands"`
				} `json:"layers"`
			} `json:"panels"`
		} `json:"pages"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("输出不是合法 JSON: %v\n%s", err, out)
	}
	if len(res.Pages) != 1 || len(res.Pages[0].Panels) != 1 {
		t.Fatalf("应有 1 页 1 个子图，得到 %+v", res)
	}
	if got := len(res.Pages[0].Panels[0].Layers[0].Commands); got != 6 {
		t.Fatalf("2×3 矩阵应生成 6 个命令，得到 %d", got)
	}
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	chart := writeChart(t, dir, "demo.yaml", demoYAML)
	cfgPath := writeChart(t, dir, "waffle.toml", "format = \"svg\"\ncmap = \"viridis\"\n")

	if _, err := execute(t, "--config", cfgPath, "render", chart); err != nil {
		t.Fatalf("render 失败: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "demo.svg")); err != nil {
		t.Fatalf("配置中的 format 应生效: %v", err)
	}

	out, err := execute(t, "--config", cfgPath, "layout", chart)
	if err != nil {
		t.Fatalf("layout 失败: %v", err)
	}
	var res struct {
		Pages []struct {
			Panels []struct {
				Layers []struct {
					Commands []struct {
						Color struct{ R, G, B int } `json:"color"`
					} `json:"commands"`
				} `json:"layers"`
			} `json:"panels"`
		} `json:"pages"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("输出不是合法 JSON: %v", err)
	}
	// viridis 两类取两端颜色，首个类别为 #440154
	seen := false
	for _, cmd := range res.Pages[0].Panels[0].Layers[0].Commands {
		if cmd.Color.R == 0x44 && cmd.Color.G == 0x01 && cmd.Color.B == 0x54 {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("配置中的 cmap 应生效:\n%s", out)
	}

	broken := writeChart(t, dir, "broken.toml", "colour = 1\n")
	if _, err := execute(t, "--config", broken, "palettes"); err == nil {
		t.Fatalf("非法配置应报错")
	}
}

func TestPalettesAndIcons(t *testing.T) {
	isolate(t)

	out, err := execute(t, "palettes")
	if err != nil {
		t.Fatalf("palettes 失败: %v", err)
	}
	if !strings.Contains(out, "viridis\n") || !strings.Contains(out, "tab10\n") {
		t.Fatalf("palettes 输出缺少色带:\n%s", out)
	}

	out, err = execute(t, "palettes", "--colors")
	if err != nil {
		t.Fatalf("palettes --colors 失败: %v", err)
	}
	if !strings.Contains(out, "#1f77b4") {
		t.Fatalf("tab10 的第一个颜色应为 #1f77b4:\n%s", out)
	}

	out, err = execute(t, "icons", "--set", "solid")
	if err != nil {
		t.Fatalf("icons 失败: %v", err)
	}
	if !strings.Contains(out, "star\tU+F005\n") {
		t.Fatalf("icons 输出缺少 star:\n%s", out)
	}

	if _, err := execute(t, "icons", "--set", "duotone"); !werrors.Is(err, werrors.ErrCodeUnknownIconSet) {
		t.Fatalf("未知图标集应返回 UNKNOWN_ICON_SET，得到 %v", err)
	}
}

func TestResolveRenderOpts(t *testing.T) {
	cfg := config.Default()
	tests := []struct {
		name       string
		opts       renderOpts
		wantFormat string
		wantOutput string
	}{
		{"默认", renderOpts{}, "pdf", "charts/a.pdf"},
		{"扩展名", renderOpts{output: "x.svg"}, "svg", "x.svg"},
		{"显式格式优先", renderOpts{output: "x.svg", format: "png"}, "png", "x.svg"},
		{"raster 默认 png", renderOpts{backend: config.BackendRaster}, "png", "charts/a.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			if err := resolveRenderOpts(&opts, cfg, "charts/a.waffle"); err != nil {
				t.Fatalf("resolveRenderOpts 错误: %v", err)
			}
			if opts.format != tt.wantFormat || opts.output != tt.wantOutput {
				t.Fatalf("得到 format=%s output=%s，期望 %s %s", opts.format, opts.output, tt.wantFormat, tt.wantOutput)
			}
		})
	}
}
