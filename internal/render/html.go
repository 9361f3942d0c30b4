package render

import (
	"html"
	"strings"

	"github.com/starford/ansuz/internal/notion"
)

// BlocksToHTML renders a fetched block tree as an HTML fragment.
// Consecutive list items of the same kind share one wrapping <ul>/<ol>;
// a non-list block or a list kind change closes the open list. Blocks
// that render to nothing are dropped without disturbing an open list
// run. Output is deterministic: the same tree always yields the same
// bytes.
func BlocksToHTML(blocks []notion.Block) string {
	var parts []string
	openList := ""
	flush := func() {
		if openList != "" {
			parts = append(parts, "</"+openList+">")
			openList = ""
		}
	}

	for i := range blocks {
		b := &blocks[i]
		kind := listKind(b.Type)
		if kind == "" {
			el := blockToHTML(b)
			if el == "" {
				continue
			}
			flush()
			parts = append(parts, el)
			continue
		}
		item := listItemToHTML(b)
		if item == "" {
			continue
		}
		if openList != kind {
			flush()
			parts = append(parts, "<"+kind+">")
			openList = kind
		}
		parts = append(parts, item)
	}
	flush()
	return strings.Join(parts, "\n")
}

// listKind maps list-item block types to their wrapping element.
func listKind(t notion.BlockType) string {
	switch t {
	case notion.BlockBulletedListItem:
		return "ul"
	case notion.BlockNumberedListItem:
		return "ol"
	}
	return ""
}

func listItemToHTML(b *notion.Block) string {
	text := SpansToHTML(b.Spans())
	children := BlocksToHTML(b.Children)
	if text == "" && children == "" {
		return ""
	}
	if children != "" {
		return "<li>" + text + "\n" + children + "\n</li>"
	}
	return "<li>" + text + "</li>"
}

// blockToHTML renders one non-list block. Children render recursively
// and follow the block's own markup, except for toggles, which wrap
// their children inside <details>.
func blockToHTML(b *notion.Block) string {
	text := SpansToHTML(b.Spans())
	children := BlocksToHTML(b.Children)

	var el string
	switch b.Type {
	case notion.BlockParagraph:
		if text != "" {
			el = "<p>" + text + "</p>"
		}
	case notion.BlockHeading1:
		if text != "" {
			el = "<h1>" + text + "</h1>"
		}
	case notion.BlockHeading2:
		if text != "" {
			el = "<h2>" + text + "</h2>"
		}
	case notion.BlockHeading3:
		if text != "" {
			el = "<h3>" + text + "</h3>"
		}
	case notion.BlockQuote:
		if text != "" {
			el = "<blockquote>" + text + "</blockquote>"
		}
	case notion.BlockCallout:
		el = calloutToHTML(b, text)
	case notion.BlockCode:
		el = codeToHTML(b)
	case notion.BlockImage:
		el = imageToHTML(b)
	case notion.BlockDivider:
		el = "<hr>"
	case notion.BlockToDo:
		if text != "" {
			checked := ""
			if b.ToDo != nil && b.ToDo.Checked {
				checked = " checked"
			}
			el = `<div class="to-do"><input type="checkbox" disabled` + checked + `><label>` + text + "</label></div>"
		}
	case notion.BlockToggle:
		if text == "" && children == "" {
			return ""
		}
		if children != "" {
			return "<details><summary>" + text + "</summary>\n" + children + "\n</details>"
		}
		return "<details><summary>" + text + "</summary></details>"
	default:
		if text != "" {
			el = "<div>" + text + "</div>"
		}
	}

	switch {
	case el == "":
		return children
	case children == "":
		return el
	default:
		return el + "\n" + children
	}
}

func calloutToHTML(b *notion.Block, text string) string {
	icon := ""
	if b.Callout != nil && b.Callout.Icon != nil {
		switch {
		case b.Callout.Icon.Emoji != "":
			icon = `<span class="callout-icon">` + html.EscapeString(b.Callout.Icon.Emoji) + "</span>"
		case b.Callout.Icon.ImageURL() != "":
			icon = `<img class="callout-icon" src="` + html.EscapeString(b.Callout.Icon.ImageURL()) + `" alt="">`
		}
	}
	if text == "" && icon == "" {
		return ""
	}
	return `<div class="callout">` + icon + `<div class="callout-text">` + text + "</div></div>"
}

// codeToHTML escapes the raw code body with no inline-annotation
// processing; emphasis inside code is meaningless.
func codeToHTML(b *notion.Block) string {
	if b.Code == nil {
		return ""
	}
	body := SpansToPlainText(b.Code.RichText)
	if body == "" {
		return ""
	}
	open := "<code>"
	if b.Code.Language != "" {
		open = `<code class="language-` + html.EscapeString(b.Code.Language) + `">`
	}
	return "<pre>" + open + html.EscapeString(body) + "</code></pre>"
}

func imageToHTML(b *notion.Block) string {
	url := b.Image.ResolveURL()
	if url == "" {
		return ""
	}
	caption := strings.TrimSpace(SpansToPlainText(b.Image.Caption))
	alt := caption
	if alt == "" {
		alt = "Image"
	}
	el := `<figure><img src="` + html.EscapeString(url) + `" alt="` + html.EscapeString(alt) + `">`
	if caption != "" {
		el += "<figcaption>" + html.EscapeString(caption) + "</figcaption>"
	}
	return el + "</figure>"
}
