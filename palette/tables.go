package palette

import (
	"image/color"
	"sort"
	"strings"

	werrors "github.com/ByLCY/waffle/errors"
)

// 离散色表（ColorBrewer 与 matplotlib tab10）。
var (
	set1    = mustListed("Set1", "#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#ffff33", "#a65628", "#f781bf", "#999999")
	set2    = mustListed("Set2", "#66c2a5", "#fc8d62", "#8da0cb", "#e78ac3", "#a6d854", "#ffd92f", "#e5c494", "#b3b3b3")
	set3    = mustListed("Set3", "#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462", "#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f")
	pastel1 = mustListed("Pastel1", "#fbb4ae", "#b3cde3", "#ccebc5", "#decbe4", "#fed9a6", "#ffffcc", "#e5d8bd", "#fddaec", "#f2f2f2")
	pastel2 = mustListed("Pastel2", "#b3e2cd", "#fdcdac", "#cbd5e8", "#f4cae4", "#e6f5c9", "#fff2ae", "#f1e2cc", "#cccccc")
	dark2   = mustListed("Dark2", "#1b9e77", "#d95f02", "#7570b3", "#e7298a", "#66a61e", "#e6ab02", "#a6761d", "#666666")
	accent  = mustListed("Accent", "#7fc97f", "#beaed4", "#fdc086", "#ffff99", "#386cb0", "#f0027f", "#bf5b17", "#666666")
	tab10   = mustListed("tab10", "#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf")
)

// 连续色带控制点。
var (
	viridis  = mustGradient("viridis", "#440154", "#482374", "#404387", "#345e8d", "#29788e", "#20908c", "#22a784", "#44be70", "#79d151", "#bdde26", "#fde725")
	plasma   = mustGradient("plasma", "#0d0887", "#4b03a1", "#7d03a8", "#a82296", "#cb4679", "#e56b5d", "#f89441", "#fdc328", "#f0f921")
	inferno  = mustGradient("inferno", "#000004", "#280b54", "#65156e", "#9f2a63", "#d44842", "#f57d15", "#fac127", "#fcffa4")
	magma    = mustGradient("magma", "#000004", "#1c1044", "#4f127b", "#812581", "#b5367a", "#e55064", "#fb8761", "#fec287", "#fcfdbf")
	cividis  = mustGradient("cividis", "#00224e", "#123570", "#3b496c", "#575d6d", "#707173", "#8a8779", "#a69d75", "#c4b56c", "#e4cf5b", "#fdea45")
	blues    = mustGradient("Blues", "#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6", "#4292c6", "#2171b5", "#08519c", "#08306b")
	greens   = mustGradient("Greens", "#f7fcf5", "#e5f5e0", "#c7e9c0", "#a1d99b", "#74c476", "#41ab5d", "#238b45", "#006d2c", "#00441b")
	reds     = mustGradient("Reds", "#fff5f0", "#fee0d2", "#fcbba1", "#fc9272", "#fb6a4a", "#ef3b2c", "#cb181d", "#a50f15", "#67000d")
	rdBu     = mustGradient("RdBu", "#67001f", "#b2182b", "#d6604d", "#f4a582", "#fddbc7", "#f7f7f7", "#d1e5f0", "#92c5de", "#4393c3", "#2166ac", "#053061")
	spectral = mustGradient("Spectral", "#9e0142", "#d53e4f", "#f46d43", "#fdae61", "#fee08b", "#ffffbf", "#e6f598", "#abdda4", "#66c2a5", "#3288bd", "#5e4fa2")
	coolwarm = mustGradient("coolwarm", "#3b4cc0", "#6788ee", "#9abbff", "#c9d7f0", "#edd1c2", "#f7a889", "#e26952", "#b40426")
)

var registry = func() map[string]Colormap {
	m := map[string]Colormap{}
	for _, c := range []Colormap{
		set1, set2, set3, pastel1, pastel2, dark2, accent, tab10,
		viridis, plasma, inferno, magma, cividis, blues, greens, reds, rdBu, spectral, coolwarm,
	} {
		m[strings.ToLower(c.Name())] = c
	}
	return m
}()

// Default is the colormap used when a plot assigns no colours (Set2).
func Default() Colormap { return set2 }

// ByName 按名称查找色带（不区分大小写）；名称以 "_r" 结尾时返回反向色带。
func ByName(name string) (Colormap, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if c, ok := registry[key]; ok {
		return c, nil
	}
	if base, ok := strings.CutSuffix(key, "_r"); ok {
		if c, ok := registry[base]; ok {
			return Reverse(c), nil
		}
	}
	return nil, werrors.New(werrors.ErrCodeUnknownColormap, "未知色带 %s（可选：%s）", name, strings.Join(Names(), ", "))
}

// Names lists registered colormaps in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, c := range registry {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

// Reverse 返回反向色带。
func Reverse(c Colormap) Colormap {
	if listed := c.Colors(); listed != nil {
		rev := make([]color.RGBA, len(listed))
		for i, col := range listed {
			rev[len(listed)-1-i] = col
		}
		return Listed{name: c.Name() + "_r", colors: rev}
	}
	return reversed{c}
}

type reversed struct{ Colormap }

func (r reversed) Name() string             { return r.Colormap.Name() + "_r" }
func (r reversed) At(t float64) color.Color { return r.Colormap.At(1 - clamp01(t)) }

func hexes(values ...string) []color.RGBA {
	out := make([]color.RGBA, 0, len(values))
	for _, v := range values {
		c, err := parseHex(v)
		if err != nil {
			panic(err)
		}
		out = append(out, c)
	}
	return out
}

func mustListed(name string, values ...string) Listed {
	l, err := NewListed(name, hexes(values...))
	if err != nil {
		panic(err)
	}
	return l
}

func mustGradient(name string, values ...string) Gradient {
	g, err := NewGradient(name, hexes(values...))
	if err != nil {
		panic(err)
	}
	return g
}
