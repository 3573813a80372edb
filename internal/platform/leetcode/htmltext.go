package leetcode

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

var blockTags = map[string]bool{
	"p": true, "pre": true, "ul": true, "ol": true, "li": true, "div": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// HTMLToText flattens a problem statement to plain text.
// Block elements start on their own line, <br> breaks a line, and blank lines are dropped.
func HTMLToText(src string) string {
	z := html.NewTokenizer(strings.NewReader(src))
	var b strings.Builder
	var pre *strings.Builder

	write := func(s string) {
		if pre != nil {
			pre.WriteString(s)
			return
		}
		b.WriteString(s)
	}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return clean(b.String())
			}
			if pre != nil {
				b.WriteString(strings.TrimSpace(pre.String()))
			}
			return clean(b.String())
		case html.TextToken:
			write(strings.ReplaceAll(string(z.Text()), "\u00a0", " "))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "br":
				write("\n")
			case tag == "pre":
				b.WriteString("\n")
				pre = &strings.Builder{}
			case blockTags[tag]:
				write("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			switch {
			case tag == "pre" && pre != nil:
				b.WriteString(strings.TrimSpace(pre.String()))
				b.WriteString("\n")
				pre = nil
			case blockTags[tag]:
				write("\n")
			}
		}
	}
}

func clean(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
