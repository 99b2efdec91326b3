package renderer

import (
	"path/filepath"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
	"github.com/ByLCY/waffle/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF、SVG 或 PNG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Format 是输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat 不区分大小写；空字符串视为 pdf。
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	switch f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatSVG, FormatPNG:
		return f, nil
	}
	return "", werrors.New(werrors.ErrCodeInvalidFormat, "不支持的输出格式 %q（可选 pdf, svg, png）", s)
}

// FormatFromPath 根据输出文件扩展名推断格式，无法识别时返回 fallback。
func FormatFromPath(path string, fallback Format) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil && filepath.Ext(path) != "" {
		return f
	}
	return fallback
}
