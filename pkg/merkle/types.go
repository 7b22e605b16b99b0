package merkle

import "github.com/ethereum/go-ethereum/common"

// MerkleTree is a keccak256 binary tree over the digests of one batch.
type MerkleTree struct {
	// Leaves holds keccak256(digest) for every record, in batch order
	Leaves []common.Hash

	Root common.Hash

	// levels[0] = leaves, levels[len-1] = root
	levels [][]common.Hash
}

// MerkleProof shows that one record digest is committed to by a root.
type MerkleProof struct {
	LeafIndex int         `json:"leafIndex"`
	Leaf      common.Hash `json:"leaf"`

	// Proof holds sibling hashes from the leaf level upward
	Proof []common.Hash `json:"proof"`
}
