package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// PeriodBound is the canonical, hashable representation of one period
// boundary in a horizon: its start offset and duration. Hashing a
// horizon's period bounds, rather than pointer identity, lets the
// cache recognize "the same block structure" across distinct adaptive
// horizon instances built from identical input data.
type PeriodBound struct {
	StartSeconds    int64
	DurationSeconds int64
}

// HorizonHash computes a deterministic hash of a horizon's period
// bounds, independent of the order bounds are supplied in.
func HorizonHash(bounds []PeriodBound) string {
	if len(bounds) == 0 {
		return ""
	}

	sorted := make([]PeriodBound, len(bounds))
	copy(sorted, bounds)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartSeconds != sorted[j].StartSeconds {
			return sorted[i].StartSeconds < sorted[j].StartSeconds
		}
		return sorted[i].DurationSeconds < sorted[j].DurationSeconds
	})

	var data []byte
	for _, b := range sorted {
		data = append(data, []byte(fmt.Sprintf("p:%d:%d;", b.StartSeconds, b.DurationSeconds))...)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// BuildClusterKey builds a cache key for an adaptive horizon's k-means
// clustering result, keyed by the horizon's identity and the block
// structure being clustered.
func BuildClusterKey(horizonID, horizonHash string) string {
	return fmt.Sprintf("cluster:%s:%s", horizonID, horizonHash)
}

// BuildSolveKey builds a cache key for a solve result, keyed by the
// backend adapter and the problem-time instant it was solved at.
func BuildSolveKey(backend, problemTimeHash string) string {
	return fmt.Sprintf("solve:%s:%s", backend, problemTimeHash)
}

// QuickHash computes a full-length SHA-256 hash of arbitrary data.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash computes a 16-character hash of arbitrary data, for use in cache keys.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
