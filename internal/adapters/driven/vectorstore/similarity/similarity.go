// Package similarity ranks embedded chunks by cosine similarity and encodes
// vectors for the local stores.
package similarity

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/custodia-labs/chainaudit/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b. Vectors of different
// length and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Ranker accumulates the best count chunks scoring at least threshold.
type Ranker struct {
	query     []float32
	threshold float64
	count     int
	results   []domain.ScoredChunk
}

// NewRanker creates a ranker for query.
func NewRanker(query []float32, threshold float64, count int) *Ranker {
	return &Ranker{query: query, threshold: threshold, count: count}
}

// Add scores chunk and keeps it when it passes the threshold.
func (r *Ranker) Add(chunk domain.EmbeddedChunk) {
	score := Cosine(r.query, chunk.Embedding)
	if score < r.threshold {
		return
	}
	r.results = append(r.results, domain.ScoredChunk{EmbeddedChunk: chunk, Similarity: score})
}

// Results returns the kept chunks, best first. Ties keep insertion order.
func (r *Ranker) Results() []domain.ScoredChunk {
	sort.SliceStable(r.results, func(i, j int) bool {
		return r.results[i].Similarity > r.results[j].Similarity
	})
	if r.count > 0 && len(r.results) > r.count {
		return r.results[:r.count]
	}
	return r.results
}

// Rank scores chunks against query in one pass.
func Rank(chunks []domain.EmbeddedChunk, query []float32, threshold float64, count int) []domain.ScoredChunk {
	r := NewRanker(query, threshold, count)
	for _, c := range chunks {
		r.Add(c)
	}
	return r.Results()
}

// Encode packs a vector as little-endian float32 bytes.
func Encode(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks bytes written by Encode. Trailing partial words are ignored.
func Decode(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
