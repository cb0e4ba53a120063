// Package canonical re-serializes JSON text in pretty, compact or
// unescaped form.
package canonical

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/mcncl/jsonlens/internal/parser"
)

// DefaultIndent is the indentation used by Format.
const DefaultIndent = "  "

// Canonicalizer holds the output options shared by all three transforms.
type Canonicalizer struct {
	indent string
}

// New returns a Canonicalizer that indents with the given string.
// An empty indent falls back to DefaultIndent.
func New(indent string) *Canonicalizer {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Canonicalizer{indent: indent}
}

// Format validates text and re-serializes it one member per line.
// Key order, number literals and string escapes are kept as written.
func (c *Canonicalizer) Format(text string) (string, error) {
	data := []byte(text)
	if err := parser.Validate(data); err != nil {
		return "", err
	}
	// Width 0 keeps short arrays on separate lines.
	out := pretty.PrettyOptions(data, &pretty.Options{
		Width:  0,
		Prefix: "",
		Indent: c.indent,
	})
	return strings.TrimSuffix(string(out), "\n"), nil
}

// Minify validates text and removes all insignificant whitespace.
func (c *Canonicalizer) Minify(text string) (string, error) {
	data := []byte(text)
	if err := parser.Validate(data); err != nil {
		return "", err
	}
	return string(pretty.Ugly(data)), nil
}

// Unescape undoes one level of string escaping.
//
// A JSON string literal is decoded and returned as is. Any other valid JSON
// value comes back pretty-printed. Text that does not parse gets a plain
// substitution of \" with " and then \\ with \, which is a best-effort
// repair for escaped fragments copied out of logs. It never fails.
func (c *Canonicalizer) Unescape(text string) string {
	if text == "" {
		return ""
	}
	if err := parser.Validate([]byte(text)); err != nil {
		return unescapeText(text)
	}

	result := gjson.Parse(text)
	if result.Type == gjson.String {
		return result.Str
	}
	out, err := c.Format(text)
	if err != nil {
		return unescapeText(text)
	}
	return out
}

func unescapeText(text string) string {
	text = strings.ReplaceAll(text, `\"`, `"`)
	return strings.ReplaceAll(text, `\\`, `\`)
}

var std = New(DefaultIndent)

// Format pretty-prints text with DefaultIndent.
func Format(text string) (string, error) { return std.Format(text) }

// Minify compacts text.
func Minify(text string) (string, error) { return std.Minify(text) }

// Unescape undoes one level of string escaping. See Canonicalizer.Unescape.
func Unescape(text string) string { return std.Unescape(text) }
