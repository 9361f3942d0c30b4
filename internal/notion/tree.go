package notion

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxDepth bounds recursive block-tree fetching. Levels beyond
// it are silently truncated so pathologically deep documents stay
// renderable.
const DefaultMaxDepth = 10

// FetchTree retrieves the full block tree under blockID, down to
// maxDepth levels (non-positive values use DefaultMaxDepth). Direct
// children of one parent paginate sequentially; sibling subtrees fetch
// concurrently. Output order is parent-before-children with siblings
// in original order. Blocks at the depth bound keep HasChildren true
// with no children attached.
func (c *Client) FetchTree(ctx context.Context, blockID string, maxDepth int) ([]Block, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return c.fetchLevel(ctx, blockID, 1, maxDepth)
}

func (c *Client) fetchLevel(ctx context.Context, parentID string, depth, maxDepth int) ([]Block, error) {
	blocks, err := c.BlockChildren(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if depth >= maxDepth {
		return blocks, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range blocks {
		if !blocks[i].HasChildren {
			continue
		}
		g.Go(func() error {
			children, err := c.fetchLevel(gctx, blocks[i].ID, depth+1, maxDepth)
			if err != nil {
				return err
			}
			blocks[i].Children = children
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}
