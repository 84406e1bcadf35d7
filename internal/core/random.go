package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomProvider produces non-repeating random indices, used for word-list
// verification prompts.
type RandomProvider interface {
	RandomIndexes(count, max int) ([]int, error)
}

type randomProvider struct{}

// NewRandomProvider returns a RandomProvider backed by crypto/rand.
func NewRandomProvider() RandomProvider {
	return randomProvider{}
}

// RandomIndexes returns count distinct indices in [0, max).
func (randomProvider) RandomIndexes(count, max int) ([]int, error) {
	if count > max {
		return nil, fmt.Errorf("cannot pick %d distinct indexes out of %d", count, max)
	}

	seen := make(map[int]bool, count)
	indexes := make([]int, 0, count)
	for len(indexes) < count {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
		if err != nil {
			return nil, fmt.Errorf("unable to read random source: %w", err)
		}
		idx := int(n.Int64())
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indexes = append(indexes, idx)
	}

	return indexes, nil
}
