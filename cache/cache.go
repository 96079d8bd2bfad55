package cache

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Cache stores encoded results of deterministic computations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key derives a compact key from a method name and its numeric inputs.
// Floats are hashed by their bit pattern so equal inputs always collide.
func Key(method string, tags []string, values ...float64) string {
	h := xxhash.New()
	_, _ = h.WriteString(method)
	for _, tag := range tags {
		_, _ = h.WriteString("|")
		_, _ = h.WriteString(tag)
	}

	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	return method + ":" + strconv.FormatUint(h.Sum64(), 16)
}
