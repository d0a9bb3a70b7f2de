// Package dsl 解析主题定义文件（.theme），生成 AST 供 theme 包求值。
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
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File is the root AST node: one or more theme declarations.
type File struct {
	Themes []*Theme `parser:"Newline* ( @@ Newline* )*"`
}

// Theme declares a named theme, optionally extending a preset or an earlier theme.
type Theme struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'theme' @Ident"`
	Extends string         `parser:"( 'extends' @Ident )?"`
	Body    *Block         `parser:"@@"`
}

// Block is a delimited list of entries.
type Block struct {
	Entries []*Entry `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Entry is either `key: value` or `section [qualifier] { ... }`.
type Entry struct {
	Pos       lexer.Position `parser:"" json:"-"`
	Key       string         `parser:"@Ident"`
	Qualifier string         `parser:"@Ident?"`
	Value     *Value         `parser:"( ':' @@"`
	Block     *Block         `parser:"| @@ )"`
}

// Value represents a scalar property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Raw returns the value as written (strings unquoted).
func (v *Value) Raw() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
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

// Parse parses theme definitions from an io.Reader.
func Parse(r io.Reader) (*File, error) {
	return fileParser.Parse("", r)
}

// ParseString parses theme definitions from a string.
func ParseString(input string) (*File, error) {
	return fileParser.ParseString("", input)
}

// Lookup returns the first entry with the given key (and qualifier, if non-empty).
func (b *Block) Lookup(key, qualifier string) *Entry {
	if b == nil {
		return nil
	}
	for _, e := range b.Entries {
		if strings.EqualFold(e.Key, key) && (qualifier == "" || strings.EqualFold(e.Qualifier, qualifier)) {
			return e
		}
	}
	return nil
}
