package tree

import (
	"errors"
	"fmt"

	"github.com/0xPolygon/claimdeployer/tree/types"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// MaxHeight bounds the depth of a tree (and the length of a proof)
	MaxHeight uint8 = 32
)

var (
	ErrEmptyTree       = errors.New("tree has no leaves")
	ErrTooManyLeaves   = errors.New("too many leaves")
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)

// Tree is a complete binary merkle tree kept in memory level by level.
// An unpaired node at level h is paired on its right with the root of an empty
// subtree of height h, so every proof has exactly Depth siblings.
type Tree struct {
	// layers[0] are the leaves, layers[depth] holds only the root
	layers     [][]common.Hash
	zeroHashes []common.Hash
}

// NewTree builds the tree over the given leaves, in order
func NewTree(leaves []common.Hash) (*Tree, error) {
	if len(leaves) == 0 {
		return nil, ErrEmptyTree
	}
	if uint64(len(leaves)) > 1<<MaxHeight {
		return nil, fmt.Errorf("%w: %d", ErrTooManyLeaves, len(leaves))
	}
	depth := depthFor(len(leaves))
	t := &Tree{
		layers:     make([][]common.Hash, 0, depth+1),
		zeroHashes: generateZeroHashes(depth),
	}

	current := make([]common.Hash, len(leaves))
	copy(current, leaves)
	t.layers = append(t.layers, current)
	for h := 0; h < int(depth); h++ {
		next := make([]common.Hash, (len(current)+1)/2) //nolint:mnd
		for i := range next {
			left := current[2*i]
			right := t.zeroHashes[h]
			if 2*i+1 < len(current) {
				right = current[2*i+1]
			}
			next[i] = hashNode(left, right)
		}
		t.layers = append(t.layers, next)
		current = next
	}
	return t, nil
}

// depthFor returns ceil(log2(n)), 0 for a single leaf
func depthFor(n int) uint8 {
	var depth uint8
	for (1 << depth) < n {
		depth++
	}
	return depth
}

// Root returns the root hash
func (t *Tree) Root() common.Hash {
	return t.layers[len(t.layers)-1][0]
}

// Depth returns the number of levels above the leaves
func (t *Tree) Depth() uint8 {
	return uint8(len(t.layers) - 1)
}

// Leaves returns the number of leaves
func (t *Tree) Leaves() int {
	return len(t.layers[0])
}

// GetProof returns the proof for the leaf at index
func (t *Tree) GetProof(index uint64) (types.Proof, error) {
	if index >= uint64(t.Leaves()) {
		return types.Proof{}, fmt.Errorf("%w: %d, leaves: %d", ErrIndexOutOfRange, index, t.Leaves())
	}
	depth := t.Depth()
	siblings := make([]common.Hash, depth)
	/*
	*        Root                (h=2)
	*      /     \
	*	 N0       N1             (h=1)
	*	/ \      / \
	*  L0  L1   L2  Z0           (h=0)
	* index 2 => 10 binary: at h=0 the bit is 0 so the sibling is on the right (Z0),
	* at h=1 the bit is 1 so the sibling is on the left (N0)
	 */
	current := index
	for h := 0; h < int(depth); h++ {
		layer := t.layers[h]
		sibling := current ^ 1
		if sibling < uint64(len(layer)) {
			siblings[h] = layer[sibling]
		} else {
			siblings[h] = t.zeroHashes[h]
		}
		current >>= 1
	}
	return types.Proof{Index: index, Siblings: siblings}, nil
}

// CalculateRoot folds the proof siblings over the leaf. It fails when the
// proof index does not fit in the number of siblings.
func CalculateRoot(leaf common.Hash, proof types.Proof) (common.Hash, error) {
	height := len(proof.Siblings)
	if height > int(MaxHeight) {
		return common.Hash{}, fmt.Errorf("proof has %d siblings, max is %d", height, MaxHeight)
	}
	if proof.Index>>height != 0 {
		return common.Hash{}, fmt.Errorf("%w: index %d does not fit a proof of %d siblings",
			ErrIndexOutOfRange, proof.Index, height)
	}
	node := leaf
	for h, sibling := range proof.Siblings {
		if proof.Index&(1<<h) > 0 {
			node = hashNode(sibling, node)
		} else {
			node = hashNode(node, sibling)
		}
	}
	return node, nil
}

// Verify reports whether leaf is included under root according to proof
func Verify(root, leaf common.Hash, proof types.Proof) bool {
	calculated, err := CalculateRoot(leaf, proof)
	if err != nil {
		return false
	}
	return calculated == root
}
