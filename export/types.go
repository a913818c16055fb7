package export

import (
	"fmt"
	"math/big"

	"github.com/0xPolygon/claimdeployer/claims"
	treetypes "github.com/0xPolygon/claimdeployer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

// Mode tells whether the contract was deployed or verified by the run
type Mode string

const (
	ModeDeploy Mode = "deploy"
	ModeVerify Mode = "verify"
)

// AddressRecord is the deployment written to addresses.json
type AddressRecord struct {
	Identity   string
	Address    common.Address
	MerkleRoot common.Hash
	Mode       Mode
}

func (r AddressRecord) toJSON() map[string]string {
	return map[string]string{
		r.Identity:   r.Address.Hex(),
		"merkleRoot": r.MerkleRoot.Hex(),
		"mode":       string(r.Mode),
	}
}

// ClaimJSON is an exported claim with its proof
type ClaimJSON struct {
	// Account is left out inside chunk files, where claims are keyed by account
	Account string   `json:"account,omitempty"`
	Type    string   `json:"type"`
	Amount  string   `json:"amount"`
	Index   uint64   `json:"index"`
	Proof   []string `json:"proof"`
}

func newClaimJSON(c treetypes.ClaimWithProof, withAccount bool) ClaimJSON {
	proof := make([]string, len(c.Proof.Siblings))
	for i, s := range c.Proof.Siblings {
		proof[i] = s.Hex()
	}
	out := ClaimJSON{
		Type:   c.Type.String(),
		Amount: c.Amount.String(),
		Index:  c.Proof.Index,
		Proof:  proof,
	}
	if withAccount {
		out.Account = accountKey(c.Account)
	}
	return out
}

// ToClaimWithProof parses the exported claim back
func (c ClaimJSON) ToClaimWithProof(account common.Address) (treetypes.ClaimWithProof, error) {
	claimType, err := claims.ParseClaimType(c.Type)
	if err != nil {
		return treetypes.ClaimWithProof{}, err
	}
	amount, ok := new(big.Int).SetString(c.Amount, 10) //nolint:mnd
	if !ok {
		return treetypes.ClaimWithProof{}, fmt.Errorf("invalid amount %q", c.Amount)
	}
	siblings := make([]common.Hash, len(c.Proof))
	for i, s := range c.Proof {
		siblings[i] = common.HexToHash(s)
	}
	return treetypes.ClaimWithProof{
		Claim: claims.Claim{Account: account, Type: claimType, Amount: amount},
		Proof: treetypes.Proof{Index: c.Index, Siblings: siblings},
	}, nil
}
