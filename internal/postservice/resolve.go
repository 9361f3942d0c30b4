package postservice

import (
	"strings"

	"github.com/starford/ansuz/internal/notion"
	"github.com/starford/ansuz/internal/render"
)

// Preferred property names per canonical field. Localized and renamed
// schemas ("Title" vs "名前") are tolerated by the type-filtered
// fallback scan, so these lists only have to cover the common cases.
var (
	titleNames    = []string{"Title", "Name", "タイトル", "名前"}
	subtitleNames = []string{"Subtitle", "Content", "Description", "概要", "説明", "本文"}
	tagNames      = []string{"Tag", "Tags", "タグ", "Category", "カテゴリ"}
	publishNames  = []string{"Published", "Public", "公開", "Status", "ステータス", "状態"}
)

// publishKeywords are the status names that count as published, after
// lower-casing. Anything else on a present status property makes the
// record ineligible.
var publishKeywords = map[string]struct{}{
	"published": {},
	"public":    {},
	"done":      {},
	"live":      {},
	"公開":        {},
	"公開済み":      {},
	"完了":        {},
}

// resolveProperty finds the property backing a canonical field:
// preferred names first, in order, accepting only matching types; then
// the first property in the bag (original order) whose type matches.
// Both phases are deterministic for a given bag.
func resolveProperty(bag *notion.PropertyBag, names []string, types ...notion.PropertyType) (notion.PropertyValue, bool) {
	if bag == nil {
		return notion.PropertyValue{}, false
	}
	accept := make(map[notion.PropertyType]struct{}, len(types))
	for _, t := range types {
		accept[t] = struct{}{}
	}
	for _, name := range names {
		if v, ok := bag.Get(name); ok {
			if _, match := accept[v.Type]; match {
				return v, true
			}
		}
	}
	for pair := bag.Oldest(); pair != nil; pair = pair.Next() {
		if _, match := accept[pair.Value.Type]; match {
			return pair.Value, true
		}
	}
	return notion.PropertyValue{}, false
}

// propertyText extracts trimmed plain text from a title or rich-text
// property.
func propertyText(v notion.PropertyValue) string {
	switch v.Type {
	case notion.PropertyTitle:
		return strings.TrimSpace(render.SpansToPlainText(v.Title))
	case notion.PropertyRichText:
		return strings.TrimSpace(render.SpansToPlainText(v.RichText))
	}
	return ""
}

// propertyTags extracts option names from a multi-select or select
// property, dropping empty entries and keeping original order.
func propertyTags(v notion.PropertyValue) []string {
	var out []string
	switch v.Type {
	case notion.PropertyMultiSelect:
		for _, opt := range v.MultiSelect {
			if opt.Name != "" {
				out = append(out, opt.Name)
			}
		}
	case notion.PropertySelect:
		if v.Select != nil && v.Select.Name != "" {
			out = append(out, v.Select.Name)
		}
	}
	return out
}

// published applies the publish-eligibility heuristic: no resolvable
// checkbox/status property means eligible; a checkbox decides directly;
// a status counts only on a publish keyword hit.
func published(bag *notion.PropertyBag) bool {
	v, ok := resolveProperty(bag, publishNames, notion.PropertyCheckbox, notion.PropertyStatus)
	if !ok {
		return true
	}
	switch v.Type {
	case notion.PropertyCheckbox:
		return v.Checkbox
	case notion.PropertyStatus:
		if v.Status == nil {
			return false
		}
		_, hit := publishKeywords[strings.ToLower(v.Status.Name)]
		return hit
	}
	return false
}
