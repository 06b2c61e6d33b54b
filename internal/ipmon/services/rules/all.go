package rules

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// ProjectAll renders every supported format concurrently. Formats are
// independent, so the result does not depend on completion order.
func ProjectAll(ctx context.Context, in Input) (map[domain.Format]domain.RuleDocument, error) {
	formats := domain.AllFormats()
	docs := make(map[domain.Format]domain.RuleDocument, len(formats))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range formats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := Project(f, in)
			if err != nil {
				return err
			}
			mu.Lock()
			docs[f] = doc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
