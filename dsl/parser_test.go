package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/waffle/dsl"
)

const sampleDSL = `
chart Votes v1 {
  meta {
    title: "Election"
    keywords: [
      "waffle"
      "votes"
    ]
  }

  fonts {
    text: "builtin:serif"
  }

  figure A4 landscape margin 10mm {
    title: "Seats"
    interval_x: 0.1
  }

  plot 1 2 1 {
    values: [[A, A, B], [B, A, A]]
    colors: { A: #ff0000, B: steelblue }
    direction: NW
    x_offset: -0.5
    legend {
      loc: "upper right"
      ncol: 1
    }
  }

  // 覆盖层
  cover 1 {
    values: "${grid}"
    rect { edgecolor: white; linewidth: 0.5 }
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Votes" || doc.Version != "v1" {
		t.Fatalf("unexpected header: %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 5 {
		t.Fatalf("expected 5 sections, got %d", len(doc.Sections))
	}
	kinds := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "meta,fonts,figure,plot,cover" {
		t.Fatalf("unexpected section kinds: %s", got)
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Name() != "title" || string(*title.Value.String) != "Election" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected 2 keywords, got %+v", keywords)
	}

	fig := doc.Sections[2].Figure
	if got := tokensToString(fig.Params); got != "A4 landscape margin 10mm" {
		t.Fatalf("unexpected figure params: %s", got)
	}
	if n := fig.Block.Statements[1].Assignment.Value.Number; n == nil || *n != "0.1" {
		t.Fatalf("interval_x should be numeric, got %+v", fig.Block.Statements[1])
	}

	plot := doc.Sections[3].Plot
	if got := tokensToString(plot.Loc); got != "1 2 1" {
		t.Fatalf("unexpected plot loc: %s", got)
	}
	values := plot.Block.Statements[0].Assignment
	if values.Value.Array == nil || len(values.Value.Array.Values) != 2 {
		t.Fatalf("values should be a 2-row array")
	}
	row := values.Value.Array.Values[1].Array
	if row == nil || len(row.Values) != 3 || row.Values[0].Bare.Text != "B" {
		t.Fatalf("unexpected second row: %+v", row)
	}

	colors := plot.Block.Statements[1].Assignment.Value.Object
	if colors == nil || len(colors.Entries) != 2 {
		t.Fatalf("colors should be an inline object with 2 entries")
	}
	if c := colors.Entries[0].Value.Color; c == nil || *c != "#ff0000" {
		t.Fatalf("expected color literal, got %+v", colors.Entries[0].Value)
	}
	if got := colors.Entries[1].Value.Bare; got == nil || got.Text != "steelblue" {
		t.Fatalf("expected named color, got %+v", got)
	}

	offset := plot.Block.Statements[3].Assignment
	if n := offset.Value.Number; n == nil || *n != "-0.5" {
		t.Fatalf("negative number should be lexed as a number, got %+v", offset.Value)
	}

	legend := plot.Block.Statements[4].Command
	if legend == nil || legend.Name != "legend" || legend.Block == nil || len(legend.Block.Statements) != 2 {
		t.Fatalf("expected legend command with 2 statements, got %+v", plot.Block.Statements[4])
	}

	cover := doc.Sections[4].Cover
	if got := tokensToString(cover.Panel); got != "1" {
		t.Fatalf("unexpected cover panel: %s", got)
	}
	if got := string(*cover.Block.Statements[0].Assignment.Value.String); got != "${grid}" {
		t.Fatalf("expected binding placeholder, got %s", got)
	}
	rect := cover.Block.Statements[1].Command
	if rect == nil || rect.Name != "rect" || len(rect.Block.Statements) != 2 {
		t.Fatalf("expected rect command with 2 statements, got %+v", cover.Block.Statements[1])
	}
}

func TestParseQuotedAndNumericKeys(t *testing.T) {
	doc, err := dsl.ParseString(`chart K v1 {
  plot 111 {
    icons: { 1: star, "n/a": circle }
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	entries := doc.Sections[0].Plot.Block.Statements[0].Assignment.Value.Object.Entries
	if len(entries) != 2 || entries[0].Name() != "1" || entries[1].Name() != "n/a" {
		t.Fatalf("unexpected keys: %+v", entries)
	}
}

func TestParseBarePhrases(t *testing.T) {
	doc, err := dsl.ParseString(`chart P v1 {
  plot 111 {
    legend { loc: upper right; ncol: 2 }
    colors: { A: red B: dark blue }
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	stmts := doc.Sections[0].Plot.Block.Statements
	loc := stmts[0].Command.Block.Statements[0].Assignment
	if loc.Value.Bare == nil || loc.Value.Bare.Text != "upper right" {
		t.Fatalf("expected phrase 'upper right', got %+v", loc.Value)
	}
	entries := stmts[1].Assignment.Value.Object.Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Value.Bare.Text != "red" || entries[1].Name() != "B" || entries[1].Value.Bare.Text != "dark blue" {
		t.Fatalf("unexpected entries: %+v %+v", entries[0].Value.Bare, entries[1].Value.Bare)
	}
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	if _, err := dsl.ParseString(`doc Report v1 { }`); err == nil {
		t.Fatal("expected error for non-chart document")
	}
}

func tokensToString(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
