package lua

import (
	"fmt"
	"strings"
)

// chunkHeader receives the writer functions as chunk arguments so a payload key can never
// shadow them.
const chunkHeader = "local __w, __e, __r = ...; "

// translate turns template text into Lua source.
//
// The generated code keeps the template's line breaks in place, so line numbers in Lua
// error messages match the template.
func translate(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text) * 2)
	b.WriteString(chunkHeader)

	line := 1
	for len(text) > 0 {
		start := nextTag(text)
		if start < 0 {
			writeText(&b, text)
			break
		}
		if start > 0 {
			writeText(&b, text[:start])
			line += strings.Count(text[:start], "\n")
			text = text[start:]
		}

		open := text[:2]
		closer := closers[open]
		end := strings.Index(text[2:], closer)
		if end < 0 {
			return "", fmt.Errorf("line %d: unclosed %s tag", line, open)
		}
		inner := text[2 : 2+end]
		text = text[2+end+len(closer):]

		switch open {
		case "{{":
			expr := strings.TrimSpace(inner)
			fn := "__e"
			if strings.HasPrefix(expr, "!") {
				fn = "__r"
				expr = strings.TrimSpace(expr[1:])
			}
			if expr == "" {
				return "", fmt.Errorf("line %d: empty expression", line)
			}
			fmt.Fprintf(&b, "%s(%s); ", fn, keepLines(inner, expr))
		case "{%":
			b.WriteString(inner)
			// A trailing line comment would swallow the next statement.
			if strings.Contains(inner, "--") {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case "{#":
			b.WriteString(strings.Repeat("\n", strings.Count(inner, "\n")))
		}
		line += strings.Count(inner, "\n")
	}

	return b.String(), nil
}

var closers = map[string]string{
	"{{": "}}",
	"{%": "%}",
	"{#": "#}",
}

// nextTag returns the offset of the next tag opener, or -1.
func nextTag(text string) int {
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		switch text[i+1] {
		case '{', '%', '#':
			return i
		}
	}
	return -1
}

// keepLines appends the newlines of the raw tag body to the trimmed expression.
func keepLines(raw, expr string) string {
	n := strings.Count(raw, "\n") - strings.Count(expr, "\n")
	if n <= 0 {
		return expr
	}
	return expr + strings.Repeat("\n", n)
}

func writeText(b *strings.Builder, text string) {
	b.WriteString(`__w("`)
	b.WriteString(quote(text))
	b.WriteString(`"); `)
	b.WriteString(strings.Repeat("\n", strings.Count(text, "\n")))
}

// quote escapes text for a double-quoted Lua string literal.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				fmt.Fprintf(&b, `\%03d`, c)
				continue
			}
			b.WriteByte(c)
		}
	}
	return b.String()
}
