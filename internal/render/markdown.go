package render

import (
	"strings"

	"github.com/starford/ansuz/internal/notion"
)

// BlocksToMarkdown renders a fetched block tree as a Markdown document.
// Blocks that resolve to no text and have no renderable children are
// dropped from the join.
func BlocksToMarkdown(blocks []notion.Block) string {
	return blocksToMarkdown(blocks, 0, false)
}

// blocksToMarkdown joins sibling renderings: list runs join with single
// newlines, everything else with blank lines.
func blocksToMarkdown(blocks []notion.Block, depth int, inList bool) string {
	var lines []string
	for i := range blocks {
		if line := blockToMarkdown(&blocks[i], depth); line != "" {
			lines = append(lines, line)
		}
	}
	sep := "\n\n"
	if inList {
		sep = "\n"
	}
	return strings.Join(lines, sep)
}

func blockToMarkdown(b *notion.Block, depth int) string {
	indent := strings.Repeat("  ", depth)
	text := SpansToMarkdown(b.Spans())

	var md string
	switch b.Type {
	case notion.BlockParagraph:
		md = text
	case notion.BlockHeading1:
		if text != "" {
			md = "# " + text
		}
	case notion.BlockHeading2:
		if text != "" {
			md = "## " + text
		}
	case notion.BlockHeading3:
		if text != "" {
			md = "### " + text
		}
	case notion.BlockBulletedListItem:
		if text != "" {
			md = indent + "- " + text
		}
	case notion.BlockNumberedListItem:
		if text != "" {
			md = indent + "1. " + text
		}
	case notion.BlockQuote:
		if text != "" {
			md = indent + "> " + text
		}
	case notion.BlockCallout:
		if text != "" {
			icon := ""
			if b.Callout != nil && b.Callout.Icon != nil && b.Callout.Icon.Emoji != "" {
				icon = b.Callout.Icon.Emoji + " "
			}
			md = indent + "> " + icon + text
		}
	case notion.BlockCode:
		if b.Code != nil {
			body := SpansToPlainText(b.Code.RichText)
			if body != "" {
				md = "```" + b.Code.Language + "\n" + body + "\n```"
			}
		}
	case notion.BlockImage:
		url := b.Image.ResolveURL()
		if url == "" {
			return ""
		}
		alt := strings.TrimSpace(SpansToPlainText(b.Image.Caption))
		if alt == "" {
			alt = "Image"
		}
		md = "![" + escapeMarkdown(alt) + "](" + url + ")"
	case notion.BlockDivider:
		md = "---"
	case notion.BlockToDo:
		md = text
	case notion.BlockToggle:
		if text != "" {
			md = indent + "**" + text + "**"
		}
	default:
		md = text
	}

	if len(b.Children) > 0 {
		isListItem := b.Type == notion.BlockBulletedListItem || b.Type == notion.BlockNumberedListItem
		childDepth := depth
		if isListItem || b.Type == notion.BlockToggle {
			childDepth = depth + 1
		}
		childMD := blocksToMarkdown(b.Children, childDepth, isListItem)
		switch {
		case childMD == "":
		case md == "":
			md = childMD
		case isListItem:
			md += "\n" + childMD
		default:
			md += "\n\n" + childMD
		}
	}

	return strings.TrimRight(md, " \t\n")
}
