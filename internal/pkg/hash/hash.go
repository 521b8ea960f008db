package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hash returns the hash value of data.
func Hash(data []byte) uint64 {
	return murmur3.Sum64(data)
}

func HashTextSha256(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func FastHash(s string) []byte {
	h := xxhash.Sum64String(s)
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, h)
	return buf
}

// productKey is the canonical JSON shape hashed by ProductHash. Field order
// is fixed by the struct so the digest is stable across processes.
type productKey struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Ingredients string `json:"ingredients"`
}

// ProductHash derives the canonical content hash for a product description.
// Ingredients are sorted before joining, so the same product maps to the
// same digest regardless of ingredient order.
func ProductHash(name, category string, ingredients []string) string {
	sorted := make([]string, len(ingredients))
	for i, ing := range ingredients {
		sorted[i] = strings.ToLower(strings.TrimSpace(ing))
	}
	sort.Strings(sorted)

	payload, _ := json.Marshal(productKey{
		Name:        strings.ToLower(strings.TrimSpace(name)),
		Category:    category,
		Ingredients: strings.Join(sorted, ","),
	})
	return HashTextSha256(string(payload))
}
