package palette

import (
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	werrors "github.com/ByLCY/waffle/errors"
)

// Parse 解析颜色字符串：#rgb、#rrggbb、#rrggbbaa、CSS 颜色名以及 matplotlib 的 C0–C9。
func Parse(value string) (color.RGBA, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return color.RGBA{}, werrors.New(werrors.ErrCodeUnknownColor, "颜色值为空")
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v)
	}
	lower := strings.ToLower(v)
	if len(lower) == 2 && lower[0] == 'c' && lower[1] >= '0' && lower[1] <= '9' {
		cycle := tab10.Colors()
		return cycle[int(lower[1]-'0')], nil
	}
	if c, ok := colornames.Map[lower]; ok {
		return c, nil
	}
	return color.RGBA{}, werrors.New(werrors.ErrCodeUnknownColor, "颜色值 %s 无法解析", value)
}

// MustParse is Parse for package-level tables.
func MustParse(value string) color.RGBA {
	c, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(v string) (color.RGBA, error) {
	alpha := uint8(255)
	switch len(v) {
	case 4, 7:
	case 9:
		a, err := strconv.ParseUint(v[7:9], 16, 8)
		if err != nil {
			return color.RGBA{}, werrors.Wrap(werrors.ErrCodeUnknownColor, err, "颜色值 %s 无法解析", v)
		}
		alpha = uint8(a)
		v = v[:7]
	default:
		return color.RGBA{}, werrors.New(werrors.ErrCodeUnknownColor, "颜色值 %s 无法解析", v)
	}
	cf, err := colorful.Hex(v)
	if err != nil {
		return color.RGBA{}, werrors.Wrap(werrors.ErrCodeUnknownColor, err, "颜色值 %s 无法解析", v)
	}
	r, g, b := cf.RGB255()
	if alpha == 255 {
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	}
	// color.RGBA is alpha-premultiplied.
	scale := func(c uint8) uint8 { return uint8(uint16(c) * uint16(alpha) / 255) }
	return color.RGBA{R: scale(r), G: scale(g), B: scale(b), A: alpha}, nil
}
