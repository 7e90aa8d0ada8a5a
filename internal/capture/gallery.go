// ABOUTME: Concurrent gallery decode of image files into a batch
// ABOUTME: Results keep selection order and a group is appended only if every file decodes

package capture

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentDecodes = 4

// DecodeFiles decodes paths concurrently. The result has the same order as
// paths. The first failure cancels outstanding decodes.
func DecodeFiles(ctx context.Context, paths []string) ([]Image, error) {
	images := make([]Image, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDecodes)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := DecodeFile(path)
			if err != nil {
				return err
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// AddFiles decodes paths and appends them to batch as one group.
// On any failure nothing is appended.
func AddFiles(ctx context.Context, batch *Batch, paths []string) (int, error) {
	images, err := DecodeFiles(ctx, paths)
	if err != nil {
		return 0, err
	}
	batch.Add(images...)
	return len(images), nil
}
