package tree

import (
	"github.com/0xPolygon/claimdeployer/claims"
	"github.com/ethereum/go-ethereum/common"
	"github.com/iden3/go-iden3-crypto/keccak256"
	"golang.org/x/crypto/sha3"
)

const (
	leafTag byte = 0x00
	nodeTag byte = 0x01

	// LeafVersion is the layout version of the leaf preimage
	LeafVersion byte = 0x01
)

// LeafHash returns keccak256(0x00 ‖ version ‖ account ‖ type ‖ amount as 32 bytes big endian)
func LeafHash(c claims.Claim) common.Hash {
	var amount [32]byte
	c.Amount.FillBytes(amount[:])
	return common.BytesToHash(keccak256.Hash(
		[]byte{leafTag, LeafVersion},
		c.Account[:],
		[]byte{byte(c.Type)},
		amount[:],
	))
}

func hashNode(left, right common.Hash) common.Hash {
	var hash common.Hash
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte{nodeTag})
	hasher.Write(left[:])
	hasher.Write(right[:])
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// generateZeroHashes returns the roots of empty subtrees: position 0 is the
// empty leaf and position h is the root of an empty subtree of height h
func generateZeroHashes(height uint8) []common.Hash {
	zeroHashes := []common.Hash{{}}
	for i := 1; i <= int(height); i++ {
		zeroHashes = append(zeroHashes, hashNode(zeroHashes[i-1], zeroHashes[i-1]))
	}
	return zeroHashes
}
