package postservice

import (
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notion"
)

const maxSlugLen = 200

// assemblePosts maps eligible raw records to Posts in input order,
// de-duplicating slugs, then orders the collection by
// last-edited-or-created time, newest first. Ineligible records
// (archived, untitled, unpublished) are skipped without error.
func assemblePosts(pages []notion.Page) []models.Post {
	seen := make(map[string]struct{}, len(pages))
	posts := make([]models.Post, 0, len(pages))
	for i := range pages {
		if p, ok := assemblePost(&pages[i], seen); ok {
			posts = append(posts, p)
		}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].EditedOrCreated().After(posts[j].EditedOrCreated())
	})
	return posts
}

func assemblePost(page *notion.Page, seen map[string]struct{}) (models.Post, bool) {
	if page.Archived || page.Properties == nil {
		return models.Post{}, false
	}

	title := ""
	if v, ok := resolveProperty(page.Properties, titleNames, notion.PropertyTitle, notion.PropertyRichText); ok {
		title = propertyText(v)
	}
	if title == "" {
		return models.Post{}, false
	}
	if !published(page.Properties) {
		return models.Post{}, false
	}

	subtitle := ""
	if v, ok := resolveProperty(page.Properties, subtitleNames, notion.PropertyRichText); ok {
		subtitle = propertyText(v)
	}

	var tags []string
	if v, ok := resolveProperty(page.Properties, tagNames, notion.PropertyMultiSelect, notion.PropertySelect); ok {
		tags = propertyTags(v)
	}
	if tags == nil {
		tags = []string{}
	}

	slug := slugify(title)
	if _, dup := seen[slug]; dup {
		slug = slug + "-" + idFragment(page.ID)
	}
	seen[slug] = struct{}{}

	return models.Post{
		ID:         page.ID,
		Title:      title,
		Subtitle:   subtitle,
		Slug:       slug,
		Content:    subtitle,
		Tags:       tags,
		CoverURL:   page.Cover.ResolveURL(),
		URL:        page.URL,
		CreatedAt:  page.CreatedTime,
		LastEdited: page.LastEditedTime,
	}, true
}

// slugify lowercases the title and collapses every non-alphanumeric run
// into a single dash. Titles that slugify to nothing (for example
// all-CJK titles) fall back to "post" and rely on de-duplication.
func slugify(title string) string {
	var sb strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			sb.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "post"
	}
	return slug
}

// idFragment returns a short stable suffix from the record id.
func idFragment(id string) string {
	compact := normalizeID(id)
	if len(compact) > 6 {
		compact = compact[:6]
	}
	return compact
}

// normalizeID strips separators and lowercases, so dashed and undashed
// forms of the same id compare equal.
func normalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}
