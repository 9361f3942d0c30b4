// Package postservice resolves raw content-store records into the
// canonical Post model and renders post bodies on demand.
package postservice

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notion"
	"github.com/starford/ansuz/internal/render"
)

// backfillConcurrency caps parallel block-tree fetches during list
// enrichment.
const backfillConcurrency = 4

// Service coordinates the content-store client and the renderers. Each
// call owns its fetch/transform pipeline end to end; no state is shared
// across requests.
type Service struct {
	client     *notion.Client
	databaseID string
	maxDepth   int
	logger     *slog.Logger
}

// NewService creates a post service reading from the given collection.
// maxDepth bounds recursive block fetching; non-positive values use
// notion.DefaultMaxDepth.
func NewService(client *notion.Client, databaseID string, maxDepth int, logger *slog.Logger) *Service {
	if maxDepth <= 0 {
		maxDepth = notion.DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, databaseID: databaseID, maxDepth: maxDepth, logger: logger}
}

// ListPosts returns all published posts, newest first. Posts whose
// excerpt property was empty get a best-effort concurrent body
// backfill; a single post's backfill failure leaves its content as-is
// and never aborts the batch.
func (s *Service) ListPosts(ctx context.Context) ([]models.Post, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID)
	if err != nil {
		return nil, err
	}
	posts := assemblePosts(pages)

	g := &errgroup.Group{}
	g.SetLimit(backfillConcurrency)
	for i := range posts {
		if posts[i].Content != "" {
			continue
		}
		g.Go(func() error {
			if err := s.enrich(ctx, &posts[i]); err != nil {
				s.logger.Warn("post content backfill failed",
					slog.String("post_id", posts[i].ID),
					slog.String("error", err.Error()))
			}
			return nil
		})
	}
	_ = g.Wait()

	return posts, nil
}

// GetPost returns the post matching idOrSlug with its body fields
// populated. Ids compare with separators stripped, so dashed and
// undashed forms are equivalent. A miss is apperr.ErrNotFound.
func (s *Service) GetPost(ctx context.Context, idOrSlug string) (*models.Post, error) {
	pages, err := s.client.QueryDatabase(ctx, s.databaseID)
	if err != nil {
		return nil, err
	}
	posts := assemblePosts(pages)

	wantID := normalizeID(idOrSlug)
	for i := range posts {
		if normalizeID(posts[i].ID) != wantID && posts[i].Slug != idOrSlug {
			continue
		}
		post := posts[i]
		if err := s.enrich(ctx, &post); err != nil {
			return nil, err
		}
		return &post, nil
	}
	return nil, apperr.ErrNotFound
}

// enrich fetches the post's block tree and populates content, markdown,
// and contentHtml. An empty rendered body keeps the prior content (the
// excerpt property value, possibly empty).
func (s *Service) enrich(ctx context.Context, post *models.Post) error {
	blocks, err := s.client.FetchTree(ctx, post.ID, s.maxDepth)
	if err != nil {
		return err
	}
	if plain := render.BlocksToPlainText(blocks); plain != "" {
		post.Content = plain
	}
	post.Markdown = render.BlocksToMarkdown(blocks)
	post.ContentHTML = render.BlocksToHTML(blocks)
	return nil
}
