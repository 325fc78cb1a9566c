package horizon

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/NVE/TuLiPa-sub002/pkg/apperror"
	"github.com/NVE/TuLiPa-sub002/pkg/cache"
	"github.com/NVE/TuLiPa-sub002/tptime"
)

// UnitRange is a contiguous, disjoint range of equal-duration atomic
// units [Lo, Hi) belonging to one adaptive block.
type UnitRange struct {
	Lo, Hi int
}

// UnitsTimeDelta is a block's membership: a disjoint union of
// UnitRanges of atomic units, recomputed per update.
type UnitsTimeDelta struct {
	Ranges   []UnitRange
	UnitSize tptime.TimeDelta
}

// NumUnits returns the total number of atomic units the block spans.
func (u UnitsTimeDelta) NumUnits() int {
	n := 0
	for _, r := range u.Ranges {
		n += r.Hi - r.Lo
	}
	return n
}

// Duration returns the block's total duration.
func (u UnitsTimeDelta) Duration() tptime.TimeDelta {
	return u.UnitSize.Scale(float64(u.NumUnits()))
}

// Adaptive is a horizon whose outer structure is a Sequential
// super-structure of coarse periods, each containing several blocks
// whose atomic-unit membership is recomputed per update by clustering
// a residual-load signal — grouping units with similar residual load
// into the same block, so the LP spends variables where the signal is
// volatile and coarsens where it is flat.
type Adaptive struct {
	outer           *Sequential
	unitSize        tptime.TimeDelta
	unitsPerCoarse  int
	blocksPerCoarse int
	seed            int64

	blocks    [][]UnitsTimeDelta // per coarse period, its blocks in order
	durations []tptime.TimeDelta
	offsets   []tptime.TimeDelta

	id           string
	clusterCache *cache.ClusterCache
}

// WithCache attaches a cluster cache to this horizon, identified by id
// (typically the horizon's own object id). A Recluster call whose
// residual-load signal and id were seen before within the cache's TTL
// reuses the prior block assignment instead of rerunning k-means.
func (a *Adaptive) WithCache(c *cache.ClusterCache, id string) *Adaptive {
	a.clusterCache = c
	a.id = id
	return a
}

// NewAdaptive builds an Adaptive horizon: outer is the coarse
// super-structure, unitSize is the duration of one atomic unit,
// unitsPerCoarse is how many atomic units make up one outer period,
// and blocksPerCoarse is how many clustered blocks each outer period
// is split into. seed is passed to the k-means step, which does not
// use it: the clustering is deterministic for a given signal.
func NewAdaptive(outer *Sequential, unitSize tptime.TimeDelta, unitsPerCoarse, blocksPerCoarse int, seed int64) (*Adaptive, error) {
	if unitsPerCoarse < blocksPerCoarse || blocksPerCoarse < 1 {
		return nil, apperror.New(apperror.CodeBadHorizon, "adaptive horizon needs at least as many units as blocks per coarse period")
	}
	a := &Adaptive{
		outer:           outer,
		unitSize:        unitSize,
		unitsPerCoarse:  unitsPerCoarse,
		blocksPerCoarse: blocksPerCoarse,
		seed:            seed,
	}
	// Seed with a flat signal so the horizon is usable before the
	// first real clustering update.
	flat := make([]float64, unitsPerCoarse)
	signal := make([][]float64, outer.NumPeriods())
	for i := range signal {
		signal[i] = flat
	}
	if err := a.Recluster(signal); err != nil {
		return nil, err
	}
	return a, nil
}

func rebuildFromBlocks(blocks [][]UnitsTimeDelta) ([]tptime.TimeDelta, []tptime.TimeDelta) {
	var durations []tptime.TimeDelta
	for _, coarseBlocks := range blocks {
		for _, b := range coarseBlocks {
			durations = append(durations, b.Duration())
		}
	}
	return durations, offsetsFromDurations(durations)
}

// Recluster recomputes block membership for every coarse period from
// a residual-load signal: signal[c] holds one value per atomic unit of
// coarse period c. Units are grouped into BlocksPerCoarse clusters by
// 1-D k-means on the signal, deterministically seeded, then each
// cluster's units are collapsed into contiguous UnitRanges.
//
// If a cache was attached via WithCache, the per-unit cluster
// assignment is memoized under a key built from the horizon id and a
// hash of the signal itself (see signalBounds): a repeated Recluster
// call with an unchanged signal within the cache's TTL skips the
// k-means pass and reuses the stored assignment.
func (a *Adaptive) Recluster(signal [][]float64) error {
	if len(signal) != a.outer.NumPeriods() {
		return apperror.New(apperror.CodeInvalidArgument, "residual signal must have one slice per coarse period")
	}
	for c, values := range signal {
		if len(values) != a.unitsPerCoarse {
			return apperror.New(apperror.CodeInvalidArgument, "residual signal length must match units per coarse period").WithDetails("coarse_index", c)
		}
	}

	if a.clusterCache != nil {
		bounds := signalBounds(signal, a.unitSize)
		ctx := context.Background()
		if cached, hit, err := a.clusterCache.Get(ctx, a.id, bounds); err == nil && hit {
			a.blocks = blocksFromFlatAssignment(cached.Assignment, len(signal), a.unitsPerCoarse, a.unitSize)
			a.durations, a.offsets = rebuildFromBlocks(a.blocks)
			return nil
		}
	}

	blocks := make([][]UnitsTimeDelta, len(signal))
	flat := make([]int, 0, len(signal)*a.unitsPerCoarse)
	for c, values := range signal {
		assignment := kmeans1D(values, a.blocksPerCoarse, a.seed+int64(c))
		blocks[c] = rangesFromAssignment(assignment, a.unitSize)
		flat = append(flat, assignment...)
	}
	a.blocks = blocks
	a.durations, a.offsets = rebuildFromBlocks(blocks)

	if a.clusterCache != nil {
		bounds := signalBounds(signal, a.unitSize)
		result := &cache.CachedClusterResult{Assignment: flat, Iterations: 50}
		_ = a.clusterCache.Set(context.Background(), a.id, bounds, result, 0)
	}
	return nil
}

// signalBounds encodes a residual-load signal as a cache.PeriodBound
// list: one bound per atomic unit, StartSeconds its offset from the
// horizon start and DurationSeconds the unit's value quantized to
// microsecond resolution. This repurposes the period-bound shape
// HorizonHash was built for (time offsets) to also carry signal
// identity, so the resulting hash changes whenever the residual load
// does, not only when the outer time structure does.
func signalBounds(signal [][]float64, unitSize tptime.TimeDelta) []cache.PeriodBound {
	unitSeconds := int64(unitSize.Duration().Seconds())
	var bounds []cache.PeriodBound
	var idx int64
	for _, coarse := range signal {
		for _, v := range coarse {
			bounds = append(bounds, cache.PeriodBound{
				StartSeconds:    idx * unitSeconds,
				DurationSeconds: int64(math.Round(v * 1e6)),
			})
			idx++
		}
	}
	return bounds
}

// blocksFromFlatAssignment reconstructs per-coarse-period blocks from a
// flat, whole-horizon cluster assignment (unitsPerCoarse values per
// coarse period, concatenated in order), the shape stored in a cached
// cluster result.
func blocksFromFlatAssignment(flat []int, numCoarse, unitsPerCoarse int, unitSize tptime.TimeDelta) [][]UnitsTimeDelta {
	blocks := make([][]UnitsTimeDelta, numCoarse)
	for c := 0; c < numCoarse; c++ {
		seg := flat[c*unitsPerCoarse : (c+1)*unitsPerCoarse]
		blocks[c] = rangesFromAssignment(seg, unitSize)
	}
	return blocks
}

// ReclusterFlat reshapes a flat, per-atomic-unit residual-load signal
// (one value per unit across the whole horizon, in unit order) into the
// per-coarse-period slices Recluster expects, then reclusters. Callers
// that compute a residual load directly from balance RHS terms (see
// model.ResidualSignal) use this instead of building the nested shape
// by hand.
func (a *Adaptive) ReclusterFlat(flat []float64) error {
	want := a.outer.NumPeriods() * a.unitsPerCoarse
	if len(flat) != want {
		return apperror.New(apperror.CodeInvalidArgument, "flat residual signal length must equal coarse periods times units per coarse period").
			WithDetails("got", len(flat)).WithDetails("want", want)
	}
	signal := make([][]float64, a.outer.NumPeriods())
	for c := range signal {
		signal[c] = flat[c*a.unitsPerCoarse : (c+1)*a.unitsPerCoarse]
	}
	return a.Recluster(signal)
}

// UnitCount returns the fixed number of atomic units this horizon
// clusters over — outer.NumPeriods() * unitsPerCoarse — as distinct
// from NumPeriods, which reports the current (post-clustering) block
// count and shrinks whenever clustering coarsens units together. A
// residual-load signal sized for ReclusterFlat must have this length,
// not NumPeriods's.
func (a *Adaptive) UnitCount() int { return a.outer.NumPeriods() * a.unitsPerCoarse }

// UnitDuration returns the duration of one atomic unit.
func (a *Adaptive) UnitDuration() tptime.TimeDelta { return a.unitSize }

func (a *Adaptive) NumPeriods() int                    { return len(a.durations) }
func (a *Adaptive) Duration(i int) tptime.TimeDelta    { return a.durations[i] }
func (a *Adaptive) StartOffset(i int) tptime.TimeDelta { return a.offsets[i] }
func (a *Adaptive) TotalDuration() tptime.TimeDelta    { return totalOf(a.durations) }

// rangesFromAssignment collapses a per-unit cluster assignment into
// contiguous UnitRanges, preserving each unit's original order: a
// block may legitimately be non-contiguous if its units are not
// adjacent, so each maximal contiguous run of the same cluster becomes
// its own range of that cluster's block. Blocks are ordered by cluster
// label; the ranges within a block are in unit order.
func rangesFromAssignment(assignment []int, unitSize tptime.TimeDelta) []UnitsTimeDelta {
	clusterOf := map[int][]UnitRange{}
	order := []int{}
	seen := map[int]bool{}

	i := 0
	for i < len(assignment) {
		j := i + 1
		for j < len(assignment) && assignment[j] == assignment[i] {
			j++
		}
		cluster := assignment[i]
		clusterOf[cluster] = append(clusterOf[cluster], UnitRange{Lo: i, Hi: j})
		if !seen[cluster] {
			seen[cluster] = true
			order = append(order, cluster)
		}
		i = j
	}

	sort.Ints(order)
	blocks := make([]UnitsTimeDelta, 0, len(order))
	for _, c := range order {
		blocks = append(blocks, UnitsTimeDelta{Ranges: clusterOf[c], UnitSize: unitSize})
	}
	return blocks
}

// kmeans1D clusters values into k groups by 1-D Lloyd's algorithm,
// seeded deterministically by taking evenly spaced initial centroids
// from the sorted values so identical inputs always produce identical
// assignments. The seed argument is not used.
func kmeans1D(values []float64, k int, seed int64) []int {
	n := len(values)
	if k >= n {
		assignment := make([]int, n)
		for i := range assignment {
			assignment[i] = i
		}
		return assignment
	}

	sortedIdx := make([]int, n)
	for i := range sortedIdx {
		sortedIdx[i] = i
	}
	sort.Slice(sortedIdx, func(i, j int) bool { return values[sortedIdx[i]] < values[sortedIdx[j]] })

	centroids := make([]float64, k)
	for c := 0; c < k; c++ {
		pos := (c * n) / k
		centroids[c] = values[sortedIdx[pos]]
	}

	assignment := make([]int, n)
	for iter := 0; iter < 50; iter++ {
		changed := false
		for i, v := range values {
			best, bestDist := 0, absDiff(v, centroids[0])
			for c := 1; c < k; c++ {
				if d := absDiff(v, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assignment[i] != best {
				assignment[i] = best
				changed = true
			}
		}
		members := make([][]float64, k)
		for i, v := range values {
			members[assignment[i]] = append(members[assignment[i]], v)
		}
		for c := 0; c < k; c++ {
			if len(members[c]) > 0 {
				centroids[c] = stat.Mean(members[c], nil)
			}
		}
		if !changed {
			break
		}
	}
	return assignment
}

func absDiff(a, b float64) float64 {
	if a < b {
		return b - a
	}
	return a - b
}
