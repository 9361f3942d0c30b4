// Package models defines the domain types for Ansuz.
package models

import "time"

// Post is the canonical presentation-ready form of one published
// content-store record. Body fields (Content beyond the excerpt,
// Markdown, ContentHTML) are populated lazily when a single post is
// requested, so list views stay cheap.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle"`
	Slug        string    `json:"slug"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	URL         string    `json:"url,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	LastEdited  time.Time `json:"lastEdited,omitzero"`
	Markdown    string    `json:"markdown,omitempty"`
	ContentHTML string    `json:"contentHtml,omitempty"`
}

// EditedOrCreated returns the timestamp used for recency ordering:
// the last-edited time when set, otherwise the creation time.
func (p *Post) EditedOrCreated() time.Time {
	if !p.LastEdited.IsZero() {
		return p.LastEdited
	}
	return p.CreatedAt
}
