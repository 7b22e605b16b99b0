package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// BuildMerkleTree commits to digests in the order given. Record order is
// part of the commitment, so the input is not sorted.
//
// If a level has an odd number of nodes the last node is paired with itself.
func BuildMerkleTree(digests []common.Hash) (*MerkleTree, error) {
	if len(digests) == 0 {
		return nil, fmt.Errorf("cannot build merkle tree from an empty batch")
	}

	leaves := make([]common.Hash, len(digests))
	for i, d := range digests {
		leaves[i] = HashLeaf(d)
	}

	levels := [][]common.Hash{leaves}
	currentLevel := leaves
	for len(currentLevel) > 1 {
		nextLevel := make([]common.Hash, 0, (len(currentLevel)+1)/2)
		for i := 0; i < len(currentLevel); i += 2 {
			left := currentLevel[i]
			right := left
			if i+1 < len(currentLevel) {
				right = currentLevel[i+1]
			}
			nextLevel = append(nextLevel, hashPair(left, right))
		}
		levels = append(levels, nextLevel)
		currentLevel = nextLevel
	}

	return &MerkleTree{
		Leaves: leaves,
		Root:   currentLevel[0],
		levels: levels,
	}, nil
}

// Root is a shorthand for BuildMerkleTree(digests).Root.
func Root(digests []common.Hash) (common.Hash, error) {
	tree, err := BuildMerkleTree(digests)
	if err != nil {
		return common.Hash{}, err
	}
	return tree.Root, nil
}

// GenerateProof returns the inclusion proof for the leaf at leafIndex.
func (mt *MerkleTree) GenerateProof(leafIndex int) (*MerkleProof, error) {
	if leafIndex < 0 || leafIndex >= len(mt.Leaves) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves)", leafIndex, len(mt.Leaves))
	}

	proof := make([]common.Hash, 0, len(mt.levels)-1)
	index := leafIndex
	for level := 0; level < len(mt.levels)-1; level++ {
		currentLevel := mt.levels[level]

		siblingIndex := index + 1
		if index%2 == 1 {
			siblingIndex = index - 1
		}
		if siblingIndex >= len(currentLevel) {
			siblingIndex = index
		}
		proof = append(proof, currentLevel[siblingIndex])
		index /= 2
	}

	return &MerkleProof{
		LeafIndex: leafIndex,
		Leaf:      mt.Leaves[leafIndex],
		Proof:     proof,
	}, nil
}

// VerifyProof recomputes the root from proof and compares it with root.
func VerifyProof(proof *MerkleProof, root common.Hash) bool {
	if proof == nil || proof.LeafIndex < 0 {
		return false
	}

	current := proof.Leaf
	index := proof.LeafIndex
	for _, sibling := range proof.Proof {
		if index%2 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
		index /= 2
	}
	return current == root
}

// VerifyDigest checks that digest sits at proof.LeafIndex under root.
func VerifyDigest(digest common.Hash, proof *MerkleProof, root common.Hash) bool {
	if proof == nil || proof.Leaf != HashLeaf(digest) {
		return false
	}
	return VerifyProof(proof, root)
}

// HashLeaf hashes a record digest once more so a leaf can never be mistaken
// for an inner node.
func HashLeaf(digest common.Hash) common.Hash {
	return crypto.Keccak256Hash(digest[:])
}

// hashPair computes keccak256(left || right).
func hashPair(left, right common.Hash) common.Hash {
	data := make([]byte, 0, 2*common.HashLength)
	data = append(data, left[:]...)
	data = append(data, right[:]...)
	return crypto.Keccak256Hash(data)
}
