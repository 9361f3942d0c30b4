// Package render converts annotated rich-text spans and hierarchical
// block trees into Markdown, HTML, and plain text.
package render

import (
	"html"
	"strings"

	"github.com/starford/ansuz/internal/notion"
)

// markdownEscaper escapes the inline characters that would otherwise be
// read as emphasis or code markers.
var markdownEscaper = strings.NewReplacer(
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"~", `\~`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// SpansToMarkdown renders spans as inline Markdown. Code wrapping takes
// priority and suppresses the other emphasis markers, since inline code
// cannot contain nested emphasis. Spans concatenate with no separators;
// an empty span list renders as the empty string.
func SpansToMarkdown(spans []notion.RichText) string {
	var sb strings.Builder
	for _, span := range spans {
		if span.PlainText == "" {
			continue
		}
		content := escapeMarkdown(span.PlainText)
		a := span.Annotations
		if a.Code {
			content = "`" + content + "`"
		} else {
			if a.Bold {
				content = "**" + content + "**"
			}
			if a.Italic {
				content = "_" + content + "_"
			}
			if a.Strikethrough {
				content = "~~" + content + "~~"
			}
			if a.Underline {
				content = "<u>" + content + "</u>"
			}
		}
		if span.Href != "" {
			content = "[" + content + "](" + span.Href + ")"
		}
		sb.WriteString(content)
	}
	return sb.String()
}

// SpansToHTML renders spans as inline HTML. Annotations compose as
// nested tags from the inside out: code, bold, italic, strikethrough,
// underline, then a styled span for non-default colors, with a link
// wrapping the result last.
func SpansToHTML(spans []notion.RichText) string {
	var sb strings.Builder
	for _, span := range spans {
		if span.PlainText == "" {
			continue
		}
		content := html.EscapeString(span.PlainText)
		a := span.Annotations
		if a.Code {
			content = "<code>" + content + "</code>"
		}
		if a.Bold {
			content = "<strong>" + content + "</strong>"
		}
		if a.Italic {
			content = "<em>" + content + "</em>"
		}
		if a.Strikethrough {
			content = "<s>" + content + "</s>"
		}
		if a.Underline {
			content = "<u>" + content + "</u>"
		}
		if a.Color != "" && a.Color != "default" {
			class := "color-" + strings.ReplaceAll(a.Color, "_", "-")
			content = `<span class="` + html.EscapeString(class) + `">` + content + "</span>"
		}
		if span.Href != "" {
			content = `<a href="` + html.EscapeString(span.Href) + `">` + content + "</a>"
		}
		sb.WriteString(content)
	}
	return sb.String()
}

// SpansToPlainText concatenates the raw span text with no formatting.
func SpansToPlainText(spans []notion.RichText) string {
	var sb strings.Builder
	for _, span := range spans {
		sb.WriteString(span.PlainText)
	}
	return sb.String()
}
