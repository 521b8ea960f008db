package hash

import (
	"testing"
)

func TestProductHash_OrderInsensitive(t *testing.T) {
	a := ProductHash("Muesli Bio", "food", []string{"avoine", "raisin sec", "noisette"})
	b := ProductHash("Muesli Bio", "food", []string{"noisette", "avoine", "raisin sec"})
	if a != b {
		t.Errorf("expected identical hashes for reordered ingredients, got %s vs %s", a, b)
	}
}

func TestProductHash_CaseAndSpacing(t *testing.T) {
	a := ProductHash("  MUESLI bio ", "food", []string{" Avoine "})
	b := ProductHash("muesli bio", "food", []string{"avoine"})
	if a != b {
		t.Errorf("expected normalization before hashing, got %s vs %s", a, b)
	}
}

func TestProductHash_DistinguishesCategory(t *testing.T) {
	a := ProductHash("spray nettoyant", "food", []string{"citron"})
	b := ProductHash("spray nettoyant", "household", []string{"citron"})
	if a == b {
		t.Error("expected category to contribute to the hash")
	}
}

func TestHash_Deterministic(t *testing.T) {
	data := []byte("E330")
	if Hash(data) != Hash(data) {
		t.Error("murmur3 hash must be deterministic")
	}
}

func TestFastHash_Length(t *testing.T) {
	if got := len(FastHash("riz complet")); got != 8 {
		t.Errorf("expected 8-byte fast hash, got %d", got)
	}
}
