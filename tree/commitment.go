package tree

import (
	"context"
	"fmt"
	"runtime"

	"github.com/0xPolygon/claimdeployer/claims"
	"github.com/0xPolygon/claimdeployer/tree/types"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// Commitment is the merkle root over a claim table together with every claim's proof
type Commitment struct {
	Root  common.Hash
	Depth uint8
	// Claims follow the canonical order of the table
	Claims []types.ClaimWithProof

	byAccount map[common.Address]int
}

// Get returns the claim and proof of the account
func (c *Commitment) Get(account common.Address) (types.ClaimWithProof, bool) {
	i, ok := c.byAccount[account]
	if !ok {
		return types.ClaimWithProof{}, false
	}
	return c.Claims[i], true
}

// Commit builds the tree over the table in canonical order and generates all
// the proofs. Proofs are generated concurrently, the result does not depend on it.
func Commit(ctx context.Context, table *claims.Table) (*Commitment, error) {
	all := table.Claims()
	leaves := make([]common.Hash, len(all))
	for i, c := range all {
		leaves[i] = LeafHash(c)
	}
	t, err := NewTree(leaves)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", claims.ErrMalformedClaim, err)
	}

	withProofs := make([]types.ClaimWithProof, len(all))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range all {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			proof, err := t.GetProof(uint64(i))
			if err != nil {
				return fmt.Errorf("proof of %s: %w", all[i].Account.Hex(), err)
			}
			withProofs[i] = types.ClaimWithProof{Claim: all[i], Proof: proof}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byAccount := make(map[common.Address]int, len(withProofs))
	for i, c := range withProofs {
		byAccount[c.Account] = i
	}
	return &Commitment{
		Root:      t.Root(),
		Depth:     t.Depth(),
		Claims:    withProofs,
		byAccount: byAccount,
	}, nil
}

// VerifyClaim reports whether the claim is included under root according to proof
func VerifyClaim(root common.Hash, claim claims.Claim, proof types.Proof) bool {
	return Verify(root, LeafHash(claim), proof)
}
