package layout

import (
	"strconv"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// Unit represents the unit a length was written in.
type Unit int

const (
	UnitNone Unit = iota // bare numbers, treated as mm
	UnitMM
	UnitCM
	UnitIN
	UnitPT
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// ToMM converts to millimetres; unit-less values are already mm.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// ToPT converts to points.
func (l Length) ToPT() float64 { return l.ToMM() * MmToPt }

// ParseLength 解析带单位的长度（mm/cm/in/pt，省略单位时按 mm）。
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, werrors.New(werrors.ErrCodeInvalidInput, "长度为空")
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, werrors.Wrap(werrors.ErrCodeInvalidInput, err, "无法解析长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}

// ParseMargin 按 CSS 规则解析 1–4 个长度：
// 1 个值四边相同；2 个值为上下、左右；3 个值为上、左右、下；4 个值为上、右、下、左。
func ParseMargin(values []string) (Margin, error) {
	mm := make([]float64, 0, 4)
	for _, v := range values {
		l, err := ParseLength(v)
		if err != nil {
			return Margin{}, err
		}
		mm = append(mm, l.ToMM())
	}
	switch len(mm) {
	case 1:
		return Margin{Top: mm[0], Right: mm[0], Bottom: mm[0], Left: mm[0]}, nil
	case 2:
		return Margin{Top: mm[0], Right: mm[1], Bottom: mm[0], Left: mm[1]}, nil
	case 3:
		return Margin{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[1]}, nil
	case 4:
		return Margin{Top: mm[0], Right: mm[1], Bottom: mm[2], Left: mm[3]}, nil
	default:
		return Margin{}, werrors.New(werrors.ErrCodeInvalidInput, "margin 需要 1-4 个长度，得到 %d 个", len(mm))
	}
}

var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
}

// PageSize 返回预设纸张尺寸（mm），landscape 时交换宽高。
func PageSize(name string, landscape bool) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return 0, 0, werrors.New(werrors.ErrCodeInvalidInput, "暂不支持的纸张尺寸：%s", name)
	}
	if landscape {
		return base[1], base[0], nil
	}
	return base[0], base[1], nil
}
