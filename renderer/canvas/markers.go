package canvasrenderer

import (
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/waffle/layout"
)

// drawMarker 以 (cx, cy) 为中心绘制标记，size 为外接圆直径（mm）。
func drawMarker(ctx *canvas.Context, m layout.Marker, cx, cy, size float64, col layout.Color) {
	r := size / 2
	fill := colorFromLayout(col, 1)
	if !m.Filled() {
		ctx.SetFillColor(canvas.Transparent)
		ctx.SetStrokeColor(fill)
		ctx.SetStrokeWidth(size * 0.15)
		ctx.DrawPath(cx, cy, strokeMarker(m, r))
		return
	}
	ctx.SetFillColor(fill)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(cx, cy, markerPath(m, r))
}

// markerPath 返回以原点为中心的填充标记轮廓。
func markerPath(m layout.Marker, r float64) *canvas.Path {
	switch m {
	case layout.MarkerSquare:
		side := r * math.Sqrt2 * 0.9
		return polygon([][2]float64{{-side / 2, -side / 2}, {side / 2, -side / 2}, {side / 2, side / 2}, {-side / 2, side / 2}})
	case layout.MarkerTriangleUp:
		return regular(3, r, 90)
	case layout.MarkerTriangleDown:
		return regular(3, r, -90)
	case layout.MarkerTriangleLeft:
		return regular(3, r, 180)
	case layout.MarkerTriangleRight:
		return regular(3, r, 0)
	case layout.MarkerDiamond:
		return regular(4, r, 90)
	case layout.MarkerThinDiamond:
		return polygon([][2]float64{{0, -r}, {r * 0.6, 0}, {0, r}, {-r * 0.6, 0}})
	case layout.MarkerPentagon:
		return regular(5, r, 90)
	case layout.MarkerHexagon:
		return regular(6, r, 90)
	case layout.MarkerStar:
		pts := make([][2]float64, 0, 10)
		for i := range 10 {
			rad := r
			if i%2 == 1 {
				rad = r * 0.4
			}
			a := (90 + float64(i)*36) * math.Pi / 180
			pts = append(pts, [2]float64{rad * math.Cos(a), rad * math.Sin(a)})
		}
		return polygon(pts)
	case layout.MarkerPoint:
		return canvas.Circle(r * 0.4)
	default:
		return canvas.Circle(r)
	}
}

func strokeMarker(m layout.Marker, r float64) *canvas.Path {
	p := &canvas.Path{}
	if m == layout.MarkerCross {
		d := r / math.Sqrt2
		p.MoveTo(-d, -d)
		p.LineTo(d, d)
		p.MoveTo(-d, d)
		p.LineTo(d, -d)
		return p
	}
	p.MoveTo(-r, 0)
	p.LineTo(r, 0)
	p.MoveTo(0, -r)
	p.LineTo(0, r)
	return p
}

// regular 返回 n 边正多边形，第一个顶点位于 start 度方向。
func regular(n int, r, start float64) *canvas.Path {
	pts := make([][2]float64, n)
	for i := range pts {
		a := (start + float64(i)*360/float64(n)) * math.Pi / 180
		pts[i] = [2]float64{r * math.Cos(a), r * math.Sin(a)}
	}
	return polygon(pts)
}

func polygon(pts [][2]float64) *canvas.Path {
	p := &canvas.Path{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt[0], pt[1])
			continue
		}
		p.LineTo(pt[0], pt[1])
	}
	p.Close()
	return p
}
