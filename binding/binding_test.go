package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleData() map[string]any {
	return map[string]any{
		"region": "华东",
		"seats":  float64(3),
		"share":  0.25,
		"votes": map[string]any{
			"grid": []any{
				[]any{"A", "A", "B"},
				[]any{"B", "A", "A"},
			},
			"labels": []string{"赞成", "反对"},
		},
	}
}

func TestInterpolate(t *testing.T) {
	data := sampleData()
	if got := Interpolate("地区：${region}", data); got != "地区：华东" {
		t.Fatalf("插值结果错误: %q", got)
	}
	if got := Interpolate("${votes.labels[1]}", data); got != "反对" {
		t.Fatalf("下标插值错误: %q", got)
	}
	if got := Interpolate("${missing}", data); got != "${missing}" {
		t.Fatalf("缺失路径应保留占位符: %q", got)
	}
	if got := Interpolate("${region}: ${seats} 席，占 ${share}", data); got != "华东: 3 席，占 0.25" {
		t.Fatalf("多个占位符插值错误: %q", got)
	}
	if got := Interpolate("${region}", nil); got != "${region}" {
		t.Fatalf("data 为空应原样返回: %q", got)
	}
}

func TestLookup(t *testing.T) {
	data := sampleData()
	got, ok := Lookup(data, "${votes.grid}")
	if !ok {
		t.Fatal("应找到 votes.grid")
	}
	want := []any{[]any{"A", "A", "B"}, []any{"B", "A", "A"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Lookup 结果不符 (-want +got):\n%s", diff)
	}
	if v, ok := Lookup(data, "votes.grid[1][2]"); !ok || v != "A" {
		t.Fatalf("嵌套下标查找失败: %v %v", v, ok)
	}
	if v, ok := Lookup(data, "votes.grid.1.0"); !ok || v != "B" {
		t.Fatalf("点号数字下标查找失败: %v %v", v, ok)
	}
	for _, path := range []string{"", "votes.none", "votes.grid[x]", "votes.grid[0", "votes.grid[9]", "region.x"} {
		if _, ok := Lookup(data, path); ok {
			t.Fatalf("路径 %q 不应命中", path)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	if p, ok := Placeholder("${ votes.grid }"); !ok || p != "votes.grid" {
		t.Fatalf("Placeholder 解析失败: %q %v", p, ok)
	}
	for _, text := range []string{"votes", "x ${a}", "${a} y"} {
		if _, ok := Placeholder(text); ok {
			t.Fatalf("%q 不是完整占位符", text)
		}
	}
}
