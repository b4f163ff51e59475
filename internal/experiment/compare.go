// File: internal/experiment/compare.go
package experiment

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/wardsim/api/schemas"
)

// Comparison holds the results of a weak and a secure run executed under
// matched seeds, so the two modes saw statistically comparable network
// conditions.
type Comparison struct {
	Weak   *Result
	Secure *Result
}

// Compare runs both policy modes concurrently. Each run owns independently
// seeded generator streams derived from the same base seed, so concurrency
// does not affect determinism: each mode produces the same outcome log it
// would have produced sequentially.
func (r *Runner) Compare(ctx context.Context) (*Comparison, error) {
	cmp := &Comparison{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := r.Run(ctx, schemas.ModeWeak)
		if err != nil {
			return err
		}
		cmp.Weak = res
		return nil
	})
	g.Go(func() error {
		res, err := r.Run(ctx, schemas.ModeSecure)
		if err != nil {
			return err
		}
		cmp.Secure = res
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return cmp, nil
}
