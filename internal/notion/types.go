package notion

import (
	"encoding/json"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// PropertyType tags the runtime type of a property value.
type PropertyType string

// Property types the resolver understands.
const (
	PropertyTitle       PropertyType = "title"
	PropertyRichText    PropertyType = "rich_text"
	PropertySelect      PropertyType = "select"
	PropertyMultiSelect PropertyType = "multi_select"
	PropertyCheckbox    PropertyType = "checkbox"
	PropertyStatus      PropertyType = "status"
	PropertyURL         PropertyType = "url"
	PropertyNumber      PropertyType = "number"
)

// Annotations is the inline formatting set attached to a rich-text span.
type Annotations struct {
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Strikethrough bool   `json:"strikethrough"`
	Underline     bool   `json:"underline"`
	Code          bool   `json:"code"`
	Color         string `json:"color"`
}

// RichText is one atomic inline span: plain text, annotations, and an
// optional hyperlink target.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Href        string      `json:"href,omitempty"`
	Annotations Annotations `json:"annotations"`
}

// SelectOption is a named option of a select, multi-select, or status
// property.
type SelectOption struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// PropertyValue is one loosely-typed entry of a record's property bag.
// Exactly one payload field matching Type is populated.
type PropertyValue struct {
	ID          string         `json:"id,omitempty"`
	Type        PropertyType   `json:"type"`
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Checkbox    bool           `json:"checkbox,omitempty"`
	Status      *SelectOption  `json:"status,omitempty"`
	URL         string         `json:"url,omitempty"`
	Number      float64        `json:"number,omitempty"`
}

// PropertyBag holds a record's properties in the order the content
// store returned them. Order matters: the resolver's fallback scan is
// specified as "first property in the bag", and localized schemas make
// that order part of the contract.
type PropertyBag = orderedmap.OrderedMap[string, PropertyValue]

// FileRef points at a hosted or external file.
type FileRef struct {
	URL string `json:"url"`
}

// File is a cover image or block file reference, hosted either by the
// content store or externally.
type File struct {
	Type     string   `json:"type"`
	External *FileRef `json:"external,omitempty"`
	File     *FileRef `json:"file,omitempty"`
}

// ResolveURL returns the usable URL regardless of hosting type.
func (f *File) ResolveURL() string {
	if f == nil {
		return ""
	}
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

// Icon is a callout or page icon: an emoji or an image file.
type Icon struct {
	Type     string   `json:"type"`
	Emoji    string   `json:"emoji,omitempty"`
	External *FileRef `json:"external,omitempty"`
	File     *FileRef `json:"file,omitempty"`
}

// ImageURL returns the icon's image URL, or empty for emoji icons.
func (i *Icon) ImageURL() string {
	if i == nil {
		return ""
	}
	switch {
	case i.External != nil:
		return i.External.URL
	case i.File != nil:
		return i.File.URL
	}
	return ""
}

// Page is one raw record of a queried collection. Owned by the content
// store; read-only to this system.
type Page struct {
	ID             string       `json:"id"`
	CreatedTime    time.Time    `json:"created_time"`
	LastEditedTime time.Time    `json:"last_edited_time"`
	Archived       bool         `json:"archived"`
	URL            string       `json:"url,omitempty"`
	Cover          *File        `json:"cover,omitempty"`
	Properties     *PropertyBag `json:"properties"`
}

// BlockType tags a node of the hierarchical content tree.
type BlockType string

// Supported block types. Anything else renders as best-effort text.
const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockQuote            BlockType = "quote"
	BlockCallout          BlockType = "callout"
	BlockCode             BlockType = "code"
	BlockImage            BlockType = "image"
	BlockDivider          BlockType = "divider"
	BlockToDo             BlockType = "to_do"
	BlockToggle           BlockType = "toggle"
)

// TextPayload is the common payload of text-bearing block types.
type TextPayload struct {
	RichText []RichText `json:"rich_text"`
}

// CalloutPayload carries callout text plus an optional leading icon.
type CalloutPayload struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
}

// CodePayload carries a fenced code block and its language tag.
type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Caption  []RichText `json:"caption,omitempty"`
	Language string     `json:"language,omitempty"`
}

// ToDoPayload carries a checklist entry and its checked state.
type ToDoPayload struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// ImagePayload references a hosted or external image with a caption.
type ImagePayload struct {
	Type     string     `json:"type"`
	External *FileRef   `json:"external,omitempty"`
	File     *FileRef   `json:"file,omitempty"`
	Caption  []RichText `json:"caption,omitempty"`
}

// ResolveURL returns the image URL regardless of hosting type.
func (p *ImagePayload) ResolveURL() string {
	if p == nil {
		return ""
	}
	switch {
	case p.External != nil:
		return p.External.URL
	case p.File != nil:
		return p.File.URL
	}
	return ""
}

// Block is a node in the hierarchical content tree. Children are nil
// until attached by the tree fetcher; the tree is acyclic by
// construction (owned child slices, no back-references).
type Block struct {
	ID          string    `json:"id"`
	Type        BlockType `json:"type"`
	HasChildren bool      `json:"has_children"`

	Paragraph        *TextPayload    `json:"paragraph,omitempty"`
	Heading1         *TextPayload    `json:"heading_1,omitempty"`
	Heading2         *TextPayload    `json:"heading_2,omitempty"`
	Heading3         *TextPayload    `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload    `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload    `json:"numbered_list_item,omitempty"`
	Quote            *TextPayload    `json:"quote,omitempty"`
	Toggle           *TextPayload    `json:"toggle,omitempty"`
	Callout          *CalloutPayload `json:"callout,omitempty"`
	Code             *CodePayload    `json:"code,omitempty"`
	ToDo             *ToDoPayload    `json:"to_do,omitempty"`
	Image            *ImagePayload   `json:"image,omitempty"`

	// Fallback holds the rich text of an unrecognized block type, when
	// its payload carries any.
	Fallback *TextPayload `json:"-"`

	Children []Block `json:"-"`
}

// knownBlockTypes are the types with a dedicated payload field.
var knownBlockTypes = map[BlockType]struct{}{
	BlockParagraph: {}, BlockHeading1: {}, BlockHeading2: {}, BlockHeading3: {},
	BlockBulletedListItem: {}, BlockNumberedListItem: {}, BlockQuote: {},
	BlockCallout: {}, BlockCode: {}, BlockImage: {}, BlockDivider: {},
	BlockToDo: {}, BlockToggle: {},
}

// UnmarshalJSON decodes the typed payloads and, for unrecognized block
// types, salvages any rich text under the type key into Fallback.
func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = Block(p)

	if _, known := knownBlockTypes[b.Type]; known || b.Type == "" {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	raw, ok := fields[string(b.Type)]
	if !ok {
		return nil
	}
	var tp TextPayload
	if err := json.Unmarshal(raw, &tp); err == nil && len(tp.RichText) > 0 {
		b.Fallback = &tp
	}
	return nil
}

// Spans returns the inline rich-text spans of the block's active
// payload, or nil for blocks that carry none (images, dividers).
func (b *Block) Spans() []RichText {
	switch b.Type {
	case BlockParagraph:
		return payloadSpans(b.Paragraph)
	case BlockHeading1:
		return payloadSpans(b.Heading1)
	case BlockHeading2:
		return payloadSpans(b.Heading2)
	case BlockHeading3:
		return payloadSpans(b.Heading3)
	case BlockBulletedListItem:
		return payloadSpans(b.BulletedListItem)
	case BlockNumberedListItem:
		return payloadSpans(b.NumberedListItem)
	case BlockQuote:
		return payloadSpans(b.Quote)
	case BlockToggle:
		return payloadSpans(b.Toggle)
	case BlockCallout:
		if b.Callout != nil {
			return b.Callout.RichText
		}
	case BlockCode:
		if b.Code != nil {
			return b.Code.RichText
		}
	case BlockToDo:
		if b.ToDo != nil {
			return b.ToDo.RichText
		}
	default:
		return payloadSpans(b.Fallback)
	}
	return nil
}

func payloadSpans(p *TextPayload) []RichText {
	if p == nil {
		return nil
	}
	return p.RichText
}
