package tpcs

import (
	"context"
	"math/big"

	"golang.org/x/sync/errgroup"
)

// DecryptShares asks every server for its partial decryption of c,
// running the exponentiations concurrently. The result slice is
// ordered like servers and feeds directly into CombineShares. Each
// AuthServer is only read, so no locking is needed; callers modelling
// genuinely remote servers should collect shares themselves instead.
func DecryptShares(ctx context.Context, c *big.Int, servers []*AuthServer) ([]*DecryptionShare, error) {
	g, ctx := errgroup.WithContext(ctx)
	shares := make([]*DecryptionShare, len(servers))
	for i, au := range servers {
		i, au := i, au
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := au.PartialDecrypt(c)
			if err != nil {
				return err
			}
			shares[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return shares, nil
}
