package raster

import (
	"math"

	"github.com/ByLCY/waffle/layout"
)

// drawMarker 以像素坐标 (cx, cy) 为中心绘制标记，size 为外接圆直径（px）。
func drawMarker(p page, m layout.Marker, cx, cy, size float64, col layout.Color) error {
	dc := p.dc
	r := size / 2
	dc.SetColor(toColor(col, 1))
	switch m {
	case layout.MarkerPlus, layout.MarkerCross:
		dc.SetLineWidth(size * 0.15)
		d := r
		if m == layout.MarkerCross {
			d = r / math.Sqrt2
			dc.MoveTo(cx-d, cy-d)
			dc.LineTo(cx+d, cy+d)
			dc.MoveTo(cx-d, cy+d)
			dc.LineTo(cx+d, cy-d)
		} else {
			dc.MoveTo(cx-d, cy)
			dc.LineTo(cx+d, cy)
			dc.MoveTo(cx, cy-d)
			dc.LineTo(cx, cy+d)
		}
		return dc.Stroke()
	case layout.MarkerCircle:
		dc.DrawCircle(cx, cy, r)
	case layout.MarkerPoint:
		dc.DrawCircle(cx, cy, r*0.4)
	case layout.MarkerSquare:
		side := r * math.Sqrt2 * 0.9
		dc.DrawRectangle(cx-side/2, cy-side/2, side, side)
	case layout.MarkerThinDiamond:
		polygon(p, cx, cy, [][2]float64{{0, -r}, {r * 0.6, 0}, {0, r}, {-r * 0.6, 0}})
	case layout.MarkerStar:
		pts := make([][2]float64, 10)
		for i := range pts {
			rad := r
			if i%2 == 1 {
				rad = r * 0.4
			}
			pts[i] = unit(90+float64(i)*36, rad)
		}
		polygon(p, cx, cy, pts)
	default:
		n, start := regularSpec(m)
		pts := make([][2]float64, n)
		for i := range pts {
			pts[i] = unit(start+float64(i)*360/float64(n), r)
		}
		polygon(p, cx, cy, pts)
	}
	return dc.Fill()
}

func regularSpec(m layout.Marker) (n int, start float64) {
	switch m {
	case layout.MarkerTriangleDown:
		return 3, -90
	case layout.MarkerTriangleLeft:
		return 3, 180
	case layout.MarkerTriangleRight:
		return 3, 0
	case layout.MarkerDiamond:
		return 4, 90
	case layout.MarkerPentagon:
		return 5, 90
	case layout.MarkerHexagon:
		return 6, 90
	default:
		return 3, 90
	}
}

// unit 返回 y 轴向上的极坐标点；polygon 负责翻转到像素坐标。
func unit(deg, r float64) [2]float64 {
	a := deg * math.Pi / 180
	return [2]float64{r * math.Cos(a), r * math.Sin(a)}
}

func polygon(p page, cx, cy float64, pts [][2]float64) {
	for i, pt := range pts {
		if i == 0 {
			p.dc.MoveTo(cx+pt[0], cy-pt[1])
			continue
		}
		p.dc.LineTo(cx+pt[0], cy-pt[1])
	}
	p.dc.ClosePath()
}
