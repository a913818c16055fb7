package types

import (
	"github.com/0xPolygon/claimdeployer/claims"
	"github.com/ethereum/go-ethereum/common"
)

// Proof is a merkle inclusion proof. Siblings are ordered from the leaf level up
// and bit h of Index tells whether the node at level h is a right child.
type Proof struct {
	Index    uint64
	Siblings []common.Hash
}

// ClaimWithProof is a claim along with the proof of its leaf under the committed root
type ClaimWithProof struct {
	claims.Claim
	Proof Proof
}
