// Package config 读取 waffle 的 TOML 配置文件。
//
// 查找顺序：显式路径（--config）、$WAFFLE_CONFIG、
// $XDG_CONFIG_HOME/waffle/config.toml（未设置时为 ~/.config/waffle/config.toml）。
// 只有显式指定的文件缺失才会报错。
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/icons"
	"github.com/ByLCY/waffle/layout"
	"github.com/ByLCY/waffle/palette"
	"github.com/ByLCY/waffle/renderer"
)

// EnvPath 是指定配置文件路径的环境变量。
const EnvPath = "WAFFLE_CONFIG"

const (
	BackendCanvas = "canvas"
	BackendRaster = "raster"
)

// Config 是配置文件内容。零值字段表示使用内置默认值。
type Config struct {
	Format  string  `toml:"format"`
	DPI     float64 `toml:"dpi"`
	Backend string  `toml:"backend"`
	Cmap    string  `toml:"cmap"`

	// Fonts 按字体角色（text、title、mono）给出 src，例如 "builtin:serif" 或文件路径。
	Fonts map[string]string `toml:"fonts"`
	// IconFonts 按图标集（solid、regular、brands）给出字体文件路径。
	IconFonts map[string]string `toml:"icon_fonts"`

	// Path 是实际读取的文件；未读取任何文件时为空。
	Path string `toml:"-"`
}

// Default 返回内置默认配置。
func Default() Config {
	return Config{
		Format:  string(renderer.FormatPDF),
		DPI:     150,
		Backend: BackendCanvas,
	}
}

// Locate 返回候选配置文件路径及其是否为显式指定。
func Locate(explicit string) (string, bool) {
	if explicit != "" {
		return explicit, true
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p, true
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "waffle", "config.toml"), false
}

// Load 按查找顺序读取配置，并与默认值合并。
func Load(explicit string) (Config, error) {
	path, required := Locate(explicit)
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "打开配置文件 %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "配置文件 %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Decode 解析 TOML 配置。未知键视为错误。
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, werrors.New(werrors.ErrCodeInvalidInput, "未知配置项: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate 检查各字段取值。
func (c Config) Validate() error {
	if _, err := renderer.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.DPI < 0 {
		return werrors.New(werrors.ErrCodeInvalidInput, "dpi 不能为负数：%g", c.DPI)
	}
	switch c.Backend {
	case "", BackendCanvas, BackendRaster:
	default:
		return werrors.New(werrors.ErrCodeInvalidInput, "backend 必须是 canvas 或 raster，得到 %q", c.Backend)
	}
	if c.Cmap != "" {
		if _, err := palette.ByName(c.Cmap); err != nil {
			return err
		}
	}
	for role := range c.Fonts {
		switch role {
		case layout.FontText, layout.FontTitle, layout.FontMono:
		default:
			return werrors.New(werrors.ErrCodeInvalidInput, "未知字体角色 %q", role)
		}
	}
	_, err := c.IconFontPaths()
	return err
}

// IconFontPaths 把 icon_fonts 的键解析为图标集，相对路径按配置文件所在目录解析。
func (c Config) IconFontPaths() (map[icons.Set]string, error) {
	out := make(map[icons.Set]string, len(c.IconFonts))
	for name, path := range c.IconFonts {
		set, err := icons.ParseSet(name)
		if err != nil {
			return nil, err
		}
		out[set] = c.resolve(path)
	}
	return out, nil
}

// FontSources 返回字体角色 → src，文件路径按配置文件所在目录解析。
func (c Config) FontSources() map[string]string {
	out := make(map[string]string, len(c.Fonts))
	for role, src := range c.Fonts {
		if strings.HasPrefix(src, "builtin:") {
			out[role] = src
			continue
		}
		out[role] = c.resolve(src)
	}
	return out
}

func (c Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || c.Path == "" {
		return path
	}
	return filepath.Join(filepath.Dir(c.Path), path)
}

// Apply 把配置中的图级默认值放在 fig 自身默认值之下。
func (c Config) Apply(fig *layout.FigureSpec) {
	if c.Cmap != "" && fig.Defaults.Cmap == nil && fig.Defaults.Colors == nil {
		cmap := c.Cmap
		fig.Defaults.Cmap = &cmap
	}
}

// BuildOptions 返回布局阶段使用的默认字体。
func (c Config) BuildOptions(m layout.TextMeasurer) layout.BuildOptions {
	return layout.BuildOptions{Measurer: m, Fonts: c.FontSources()}
}
