package palette

import (
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	werrors "github.com/ByLCY/waffle/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"#ff0000", color.RGBA{R: 255, A: 255}},
		{"#0f0", color.RGBA{G: 255, A: 255}},
		{"  #0000FF ", color.RGBA{B: 255, A: 255}},
		{"steelblue", color.RGBA{R: 70, G: 130, B: 180, A: 255}},
		{"Red", color.RGBA{R: 255, A: 255}},
		{"C0", color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 255}},
		{"c3", color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 255}},
		{"#ffffff00", color.RGBA{}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) 返回错误: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "#12", "#zzzzzz", "not-a-colour"} {
		_, err := Parse(in)
		if err == nil {
			t.Fatalf("Parse(%q) 应返回错误", in)
		}
		if !werrors.Is(err, werrors.ErrCodeUnknownColor) {
			t.Fatalf("Parse(%q) 错误码 = %q", in, werrors.GetCode(err))
		}
	}
}

func TestResize(t *testing.T) {
	a := color.RGBA{R: 1, A: 255}
	b := color.RGBA{R: 2, A: 255}
	c := color.RGBA{R: 3, A: 255}

	if diff := cmp.Diff([]color.RGBA{a, b, c, a, b}, Resize([]color.RGBA{a, b, c}, 5)); diff != "" {
		t.Fatalf("Resize repeat mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]color.RGBA{a, b}, Resize([]color.RGBA{a, b, c}, 2)); diff != "" {
		t.Fatalf("Resize truncate mismatch (-want +got):\n%s", diff)
	}
	if got := Resize(nil, 3); got != nil {
		t.Fatalf("Resize(nil) = %v", got)
	}
}

func TestSampleListedRepeats(t *testing.T) {
	cmap, err := ByName("Set2")
	if err != nil {
		t.Fatal(err)
	}
	got := Sample(cmap, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d", len(got))
	}
	if got[8] != got[0] || got[9] != got[1] {
		t.Fatalf("离散色表应循环取色: %v", got)
	}
	if Hex(got[0]) != "#66c2a5" {
		t.Fatalf("Set2 首色 = %s", Hex(got[0]))
	}
}

func TestSampleGradientEndpoints(t *testing.T) {
	cmap, err := ByName("viridis")
	if err != nil {
		t.Fatal(err)
	}
	got := Sample(cmap, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if Hex(got[0]) != "#440154" {
		t.Fatalf("起点 = %s", Hex(got[0]))
	}
	if Hex(got[2]) != "#fde725" {
		t.Fatalf("终点 = %s", Hex(got[2]))
	}
}

func TestByNameCaseAndReverse(t *testing.T) {
	c, err := ByName("set2")
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "Set2" {
		t.Fatalf("Name() = %s", c.Name())
	}

	rev, err := ByName("Set2_r")
	if err != nil {
		t.Fatal(err)
	}
	fwd := c.Colors()
	back := rev.Colors()
	if back[0] != fwd[len(fwd)-1] {
		t.Fatalf("反向色表首色 = %v", back[0])
	}

	grad, err := ByName("Blues_r")
	if err != nil {
		t.Fatal(err)
	}
	if Hex(grad.At(0)) != "#08306b" {
		t.Fatalf("Blues_r.At(0) = %s", Hex(grad.At(0)))
	}

	_, err = ByName("nope")
	if !werrors.Is(err, werrors.ErrCodeUnknownColormap) {
		t.Fatalf("未知色带错误码 = %q", werrors.GetCode(err))
	}
}

func TestTruncate(t *testing.T) {
	cmap, _ := ByName("Greens")
	tr, err := Truncate(cmap, 0.5, 1, 8)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Name() != "trunc(Greens,0.50,1.00)" {
		t.Fatalf("Name() = %s", tr.Name())
	}
	if Hex(tr.At(1)) != Hex(cmap.At(1)) {
		t.Fatalf("终点应保留: %s vs %s", Hex(tr.At(1)), Hex(cmap.At(1)))
	}
	if _, err := Truncate(cmap, 0.8, 0.2, 4); err == nil {
		t.Fatal("lo >= hi 应返回错误")
	}
}

func TestBoundary(t *testing.T) {
	colors := []color.RGBA{{R: 255, A: 255}, {G: 255, A: 255}, {B: 255, A: 255}}
	cmap, norm, err := Boundary(colors, []float64{0, 10, 20, 30})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(colors, cmap.Colors()); diff != "" {
		t.Fatalf("分段色表颜色不符 (-want +got):\n%s", diff)
	}
	cases := map[float64]int{0: 0, 9.99: 0, 10: 1, 15: 1, 20: 2, 30: 2, -0.1: -1, 30.5: -1}
	for v, want := range cases {
		if got := norm(v); got != want {
			t.Fatalf("norm(%g) = %d，期望 %d", v, got, want)
		}
	}
	if got := norm(math.NaN()); got != -1 {
		t.Fatalf("NaN 应在区间外，得到 %d", got)
	}
}

func TestBoundaryErrors(t *testing.T) {
	red := []color.RGBA{{R: 255, A: 255}}
	tests := []struct {
		name   string
		colors []color.RGBA
		bounds []float64
	}{
		{"无颜色", nil, []float64{0}},
		{"边界过少", append(red, red...), []float64{0, 1}},
		{"边界过多", red, []float64{0, 1, 2}},
		{"边界不递增", append(red, red...), []float64{0, 5, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Boundary(tt.colors, tt.bounds); err == nil {
				t.Fatalf("Boundary(%v, %v) 应返回错误", tt.colors, tt.bounds)
			}
		})
	}
}

func TestNamesSorted(t *testing.T) {
	names := Names()
	if len(names) != 19 {
		t.Fatalf("色带数量 = %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Names() 未排序: %v", names)
		}
	}
}
