package core

import (
	"testing"
)

func TestRandomIndexes_NonRepeating(t *testing.T) {
	provider := NewRandomProvider()

	indexes, err := provider.RandomIndexes(5, 12)
	if err != nil {
		t.Fatalf("RandomIndexes failed: %v", err)
	}

	if len(indexes) != 5 {
		t.Fatalf("Expected 5 indexes, got %d", len(indexes))
	}

	seen := make(map[int]bool)
	for _, idx := range indexes {
		if idx < 0 || idx >= 12 {
			t.Errorf("Index %d out of range [0, 12)", idx)
		}
		if seen[idx] {
			t.Errorf("Index %d repeated", idx)
		}
		seen[idx] = true
	}
}

func TestRandomIndexes_FullRange(t *testing.T) {
	provider := NewRandomProvider()

	indexes, err := provider.RandomIndexes(12, 12)
	if err != nil {
		t.Fatalf("RandomIndexes failed: %v", err)
	}

	seen := make(map[int]bool)
	for _, idx := range indexes {
		seen[idx] = true
	}
	if len(seen) != 12 {
		t.Errorf("Expected all 12 distinct indexes, got %d", len(seen))
	}
}

func TestRandomIndexes_CountExceedsMax(t *testing.T) {
	provider := NewRandomProvider()

	if _, err := provider.RandomIndexes(13, 12); err == nil {
		t.Error("Expected error when count exceeds max")
	}
}
