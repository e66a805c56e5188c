package ep

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	sha256 "github.com/minio/sha256-simd"
)

// Digest returns a hex SHA-256 of the exact bit patterns of the sums and the
// histogram. Runs that agree bit for bit have equal digests.
func (r *Result) Digest() string {
	b := make([]byte, 8*(2+NQ))
	binary.BigEndian.PutUint64(b[0:8], math.Float64bits(r.SumX))
	binary.BigEndian.PutUint64(b[8:16], math.Float64bits(r.SumY))
	for i, c := range r.Counts {
		binary.BigEndian.PutUint64(b[16+8*i:], uint64(c))
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
