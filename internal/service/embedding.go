package service

import (
	"hash/fnv"
	"sort"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
)

// GenerateEmbedding maps text to a small deterministic vector so recipe
// search can rank rows by pgvector distance without an embedding
// provider. Components: word count, mean word length and a folded hash
// of the sorted unique words, so texts naming the same ingredients land
// near each other regardless of word order.
func GenerateEmbedding(text string) pgvector.Vector {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return pgvector.NewVector([]float32{0, 0, 0})
	}

	seen := make(map[string]struct{}, len(words))
	unique := make([]string, 0, len(words))
	var letters int
	for _, w := range words {
		letters += len(w)
		if _, ok := seen[w]; !ok {
			seen[w] = struct{}{}
			unique = append(unique, w)
		}
	}
	sort.Strings(unique)

	h := fnv.New32a()
	for _, w := range unique {
		h.Write([]byte(w))
		h.Write([]byte{' '})
	}

	return pgvector.NewVector([]float32{
		float32(len(words)),
		float32(letters) / float32(len(words)),
		float32(h.Sum32()%4096) / 64,
	})
}
