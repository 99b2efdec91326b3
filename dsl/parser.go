package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	chartLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `[-+]?\d+(?:\.\d+)?(?:pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:^|]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokNewline = tokenType("Newline")
	tokLBrace  = tokenType("LBrace")
	tokRBrace  = tokenType("RBrace")
	tokSymbol  = tokenType("Symbol")
	tokString  = tokenType("String")

	chartParser = participle.MustBuild[Document](
		participle.Lexer(chartLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a .waffle chart file:
//
//	chart Votes v1 {
//	  figure A4 landscape { cmap: "Set2" }
//	  plot 1 1 1 { values: [[A, B], [B, A]] }
//	}
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'chart' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one of meta, fonts, figure, plot or cover.
type Section struct {
	Meta   *MetaSection   `parser:"  @@"`
	Fonts  *FontsSection  `parser:"| @@"`
	Figure *FigureSection `parser:"| @@"`
	Plot   *PlotSection   `parser:"| @@"`
	Cover  *CoverSection  `parser:"| @@"`
}

// Kind returns the section keyword.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Fonts != nil:
		return "fonts"
	case s.Figure != nil:
		return "figure"
	case s.Plot != nil:
		return "plot"
	case s.Cover != nil:
		return "cover"
	}
	return "unknown"
}

type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// FontsSection maps font roles (text, title, mono, icon_solid, ...) to sources.
type FontsSection struct {
	Block *Block `parser:"'fonts' @@"`
}

// FigureSection holds the page header (size, orientation, margin) and figure-level plot defaults.
type FigureSection struct {
	Params []*Lexeme `parser:"'figure' @@*"`
	Block  *Block    `parser:"@@"`
}

// PlotSection places one waffle at a subplot location, eg: plot 1 2 1 or plot 121.
type PlotSection struct {
	Loc   []*Lexeme `parser:"'plot' @@*"`
	Block *Block    `parser:"@@"`
}

// CoverSection overlays a waffle on an already placed plot (1-based).
type CoverSection struct {
	Panel []*Lexeme `parser:"'cover' @@*"`
	Block *Block    `parser:"@@"`
}

type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is an assignment or a nested command.
type Statement struct {
	Assignment *Assignment `parser:"  @@"`
	Command    *Command    `parser:"| @@"`
}

// Assignment uses colon syntax (key: value). Keys may be quoted or numeric so
// that category maps like { 1: red, "n/a": grey } can be written.
type Assignment struct {
	Key   string `parser:"@(Ident | Number | String)"`
	Value *Value `parser:"':' Newline* @@"`
}

// Name returns the key with surrounding quotes removed.
func (a *Assignment) Name() string {
	if unquoted, err := strconv.Unquote(a.Key); err == nil {
		return unquoted
	}
	return a.Key
}

// Command groups related assignments, eg: rect { edgecolor: white } or legend { ncol: 2 }.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// Value is exactly one of the alternatives.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Object *InlineObject  `parser:"| @@"`
	Bare   *Bare          `parser:"| @@"`
}

// ArrayValue captures `[ ... ]`; items are separated by commas, semicolons or newlines.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// InlineObject captures `{ key: value }` maps. Separators between entries are optional.
type InlineObject struct {
	Entries []*Assignment `parser:"'{' Newline* ( @@ Newline* ( (';' | ',' | Newline+)? Newline* @@ Newline* )* )? Newline* '}'"`
}

// Bare is an unquoted word or phrase such as steelblue, NW, . or upper right.
// Words separated by whitespace are joined with a single space; the phrase
// ends at a separator or before the next `key:`.
type Bare struct {
	Pos  lexer.Position
	Text string
}

// Parse implements participle.Parseable.
func (b *Bare) Parse(lex *lexer.PeekingLexer) error {
	var sb strings.Builder
	end := -1
	for {
		tok := lex.Peek()
		if endsBare(tok) {
			break
		}
		spaced := end >= 0 && tok.Pos.Offset > end
		if spaced {
			// 下一个词若是 key: 则属于下一条赋值
			cp := lex.MakeCheckpoint()
			lex.Next()
			next := lex.Peek()
			lex.LoadCheckpoint(cp)
			if next.Type == tokSymbol && next.Value == ":" {
				break
			}
			sb.WriteByte(' ')
		}
		if sb.Len() == 0 {
			b.Pos = tok.Pos
		}
		sb.WriteString(tok.Value)
		end = tok.Pos.Offset + len(tok.Value)
		lex.Next()
	}
	if sb.Len() == 0 {
		return participle.NextMatch
	}
	b.Text = sb.String()
	return nil
}

func endsBare(tok *lexer.Token) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	switch tok.Type {
	case tokNewline, tokLBrace, tokRBrace, tokString:
		return true
	case tokSymbol:
		switch tok.Value {
		case ",", ";", "]", "[", ":":
			return true
		}
	}
	return false
}

// Lexeme is a single header token, eg: the A4 in `figure A4 landscape`.
type Lexeme struct {
	Value string         `json:"value"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable. Header tokens run until the block opens.
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if tok == nil || tok.EOF() {
		return participle.NextMatch
	}
	switch {
	case tok.Type == tokNewline, tok.Type == tokLBrace, tok.Type == tokRBrace:
		return participle.NextMatch
	case tok.Type == tokSymbol && tok.Value == ";":
		return participle.NextMatch
	}
	value := tok.Value
	if tok.Type == tokString {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return err
		}
		value = unquoted
	}
	*l = Lexeme{Value: value, Pos: tok.Pos}
	lex.Next()
	return nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a chart file.
func Parse(r io.Reader) (*Document, error) {
	return chartParser.Parse("", r)
}

// ParseString parses a chart from a string.
func ParseString(input string) (*Document, error) {
	return chartParser.ParseString("", input)
}

func tokenType(name string) lexer.TokenType {
	tt, ok := chartLexer.Symbols()[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
