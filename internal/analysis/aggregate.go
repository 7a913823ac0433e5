package analysis

import (
	"math"

	"github.com/ZanzyTHEbar/model-o-meter/internal/metrics"
)

// aggregationOverheadMS models the cost of the aggregation and reporting
// step itself, added on top of the slowest metric.
const aggregationOverheadMS int64 = 100

// Aggregate reduces a batch of metric results to the weighted net score and
// its latency.
//
// Only scalar, non-sentinel values whose names appear in the weight table
// contribute. Sentinel (-1) results are excluded outright rather than
// blended in as negative contributions, and map-valued results (size
// scores) never join the scalar sum. A weighted name with no result
// contributes zero. With weights summing to <= 1 and all constituents in
// [0,1], the net score stays in [0,1].
func Aggregate(results []metrics.Result, weights map[string]float64) (float64, int64) {
	netScore := 0.0
	for _, r := range results {
		weight, weighted := weights[r.Name]
		if !weighted {
			continue
		}
		value, ok := r.Scalar()
		if !ok {
			continue
		}
		netScore += weight * value
	}

	return round2(netScore), netScoreLatency(results)
}

// netScoreLatency is the slowest metric plus the fixed aggregation
// overhead, or 1 when there were no results at all.
func netScoreLatency(results []metrics.Result) int64 {
	if len(results) == 0 {
		return 1
	}
	var maxLatency int64
	for _, r := range results {
		if r.LatencyMS > maxLatency {
			maxLatency = r.LatencyMS
		}
	}
	return maxLatency + aggregationOverheadMS
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
