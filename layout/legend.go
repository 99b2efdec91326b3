package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	werrors "github.com/ByLCY/waffle/errors"
)

var legendLocs = map[string][2]float64{
	"best":         {1, 1},
	"upper right":  {1, 1},
	"upper left":   {0, 1},
	"lower left":   {0, 0},
	"lower right":  {1, 0},
	"right":        {1, 0.5},
	"center left":  {0, 0.5},
	"center right": {1, 0.5},
	"lower center": {0.5, 0},
	"upper center": {0.5, 1},
	"center":       {0.5, 0.5},
}

// measureLegend 按列优先排布图例条目，坐标暂以图例左下角为原点。
func (b *builder) measureLegend(lg *Legend, sizePt float64) (*LegendBox, error) {
	fs := sizePt * PtToMm
	rowH := fs * 1.4
	handleW := fs * 1.6
	handleH := fs * 0.9
	gap := fs * 0.5
	pad := fs * 0.5
	colGap := fs * 1.5

	n := len(lg.Entries)
	ncol := max(lg.NCol, 1)
	nrows := (n + ncol - 1) / ncol
	if nrows == 0 {
		nrows = 1
	}

	colW := make([]float64, ncol)
	labelW := make([]float64, n)
	for i, e := range lg.Entries {
		w, err := b.textWidth(e.Label, FontText, sizePt)
		if err != nil {
			return nil, err
		}
		labelW[i] = w
		col := i / nrows
		colW[col] = math.Max(colW[col], handleW+gap+w)
	}

	titleH := 0.0
	titleW := 0.0
	if lg.Title != "" {
		titleH = rowH
		w, err := b.textWidth(lg.Title, FontText, sizePt)
		if err != nil {
			return nil, err
		}
		titleW = w
	}

	width := 2 * pad
	for i, w := range colW {
		width += w
		if i > 0 {
			width += colGap
		}
	}
	width = math.Max(width, titleW+2*pad)
	height := 2*pad + titleH + float64(nrows)*rowH

	box := &LegendBox{Box: Box{Width: width, Height: height}, FontSize: sizePt}
	if lg.Title != "" {
		box.Title = &TextBox{
			Content:  lg.Title,
			X:        pad,
			Y:        height - pad - titleH,
			Width:    width - 2*pad,
			Height:   titleH,
			Font:     FontText,
			FontSize: sizePt,
			Align:    "center",
		}
	}

	x0 := make([]float64, ncol)
	x := pad
	for i, w := range colW {
		x0[i] = x
		x += w + colGap
	}
	top := height - pad - titleH
	for i, e := range lg.Entries {
		col, row := i/nrows, i%nrows
		y := top - float64(row+1)*rowH
		item := LegendItem{LegendEntry: e}
		if e.Handle == HandleSwatch {
			item.HandleBox = Box{X: x0[col], Y: y + (rowH-handleH)/2, Width: handleW, Height: handleH}
		} else {
			item.HandleBox = Box{X: x0[col] + (handleW-rowH)/2, Y: y, Width: rowH, Height: rowH}
		}
		item.LabelBox = TextBox{
			Content:  e.Label,
			X:        x0[col] + handleW + gap,
			Y:        y,
			Width:    labelW[i],
			Height:   rowH,
			Font:     FontText,
			FontSize: sizePt,
		}
		box.Items = append(box.Items, item)
	}
	return box, nil
}

// placeLegend 根据 loc 把图例移到数据区 data 内（或其右侧/下方）。
func placeLegend(lg *LegendBox, loc string, data Box) error {
	var x, y float64
	w, h := lg.Box.Width, lg.Box.Height
	switch loc {
	case "outside right":
		x = data.X + data.Width + legendGap
		y = data.Y + (data.Height-h)/2
	case "outside bottom":
		x = data.X + (data.Width-w)/2
		y = data.Y - legendGap - h
	default:
		f, ok := legendLocs[loc]
		if !ok {
			return werrors.New(werrors.ErrCodeInvalidInput, "未知图例位置 %q", loc)
		}
		pad := lg.FontSize * PtToMm * 0.5
		x = data.X + pad + f[0]*(data.Width-w-2*pad)
		y = data.Y + pad + f[1]*(data.Height-h-2*pad)
	}
	lg.Box.X, lg.Box.Y = x, y
	if lg.Title != nil {
		lg.Title.X += x
		lg.Title.Y += y
	}
	for i := range lg.Items {
		it := &lg.Items[i]
		it.HandleBox.X += x
		it.HandleBox.Y += y
		it.LabelBox.X += x
		it.LabelBox.Y += y
	}
	return nil
}

func (b *builder) textWidth(text, role string, sizePt float64) (float64, error) {
	if b.measurer == nil {
		return estimateTextWidth(text, sizePt), nil
	}
	return b.measurer.MeasureText(text, b.fonts[role], sizePt)
}

// estimateTextWidth 在没有字体度量时粗略估计单行文本宽度（mm）。
func estimateTextWidth(content string, sizePt float64) float64 {
	if sizePt <= 0 {
		sizePt = 12
	}
	lines := strings.Split(content, "\n")
	maxChars := 0
	for _, line := range lines {
		maxChars = max(maxChars, utf8.RuneCountInString(line))
	}
	return sizePt * PtToMm * 0.55 * float64(maxChars+1)
}
