package render

import (
	"strings"

	"github.com/starford/ansuz/internal/notion"
)

// BlocksToPlainText flattens a block tree into unformatted text, one
// blank line between blocks. Used for excerpts and the content field.
func BlocksToPlainText(blocks []notion.Block) string {
	var parts []string
	collectPlainText(blocks, &parts)
	return strings.Join(parts, "\n\n")
}

func collectPlainText(blocks []notion.Block, parts *[]string) {
	for i := range blocks {
		b := &blocks[i]
		if text := strings.TrimSpace(SpansToPlainText(b.Spans())); text != "" {
			*parts = append(*parts, text)
		}
		collectPlainText(b.Children, parts)
	}
}
