package selector

import (
	"github.com/shopspring/decimal"

	"github.com/harveston/harvestengine/internal/lotmodel"
)

// dpBucketScale converts a decimal gain into an integer bucket for the
// knapsack table. Buckets are one cent wide; the table spans 2*total+1
// buckets, so with the default DPMemoCap of 50,000 a pool whose summed
// |gain| reaches $250 exceeds the cap and runDP declines.
const dpBucketScale = 100

// runDP attempts a bounded 0/1 knapsack search for the subset of pool whose
// summed gain lands closest to needed, restricted to achieved sums whose
// magnitude never exceeds capLimit. It is only attempted when the pool is
// small enough and the target large enough to afford the memo table
// (Config.DPPoolSizeLimit / DPNeededFloor). runDP also returns false,
// without searching, when the discretized table would exceed DPMemoCap;
// SelectTerm then has only the greedy result.
func runDP(pool []lotmodel.Lot, needed, capLimit decimal.Decimal, maxTrades int, cfg Config) (greedyResult, bool) {
	if len(pool) > cfg.DPPoolSizeLimit {
		return greedyResult{}, false
	}
	if needed.Abs().LessThan(cfg.DPNeededFloor) {
		return greedyResult{}, false
	}

	buckets := make([]int, len(pool))
	total := 0
	for i, lot := range pool {
		b := bucketOf(lot.UnrealizedGain)
		buckets[i] = b
		if b < 0 {
			b = -b
		}
		total += b
	}
	if total == 0 {
		return greedyResult{}, false
	}

	// Table spans [-total, total] shifted to [0, 2*total]; bail out if that
	// exceeds the memo cap rather than allocate an oversized table.
	span := 2*total + 1
	if span > cfg.DPMemoCap {
		return greedyResult{}, false
	}

	// targetBucket lives in the same shifted space as the sums in best/next
	// (sum = total + achieved), so it must be shifted by total too.
	targetBucket := total + bucketOf(needed)
	capBucket := bucketOf(capLimit)
	if capBucket < 0 {
		capBucket = -capBucket
	}

	type entry struct {
		reachable bool
		count     int
		parent    int // index into pool of the last lot added, -1 if none
		prevSum   int
	}

	// best[sum+total] tracks the entry using the fewest lots to reach sum,
	// scanning lots one at a time (0/1 knapsack, not unbounded).
	best := make(map[int]entry, span)
	best[total] = entry{reachable: true, count: 0, parent: -1, prevSum: total}

	// history lets us reconstruct which lots were used by replaying state
	// snapshots after each lot is considered.
	history := make([]map[int]entry, 0, len(pool)+1)
	snapshot := func(m map[int]entry) map[int]entry {
		c := make(map[int]entry, len(m))
		for k, v := range m {
			c[k] = v
		}
		return c
	}
	history = append(history, snapshot(best))

	for i, b := range buckets {
		next := snapshot(best)
		for sum, e := range best {
			if !e.reachable {
				continue
			}
			if e.count >= maxTrades {
				continue
			}
			newSum := sum + b
			if newSum < 0 || newSum >= span {
				continue
			}
			// w bound: a transition that would push the achieved amount
			// past the overshoot cap is pruned here, not after the fact.
			achieved := newSum - total
			if achieved < 0 {
				achieved = -achieved
			}
			if achieved > capBucket {
				continue
			}
			if existing, ok := next[newSum]; !ok || !existing.reachable || existing.count > e.count+1 {
				next[newSum] = entry{reachable: true, count: e.count + 1, parent: i, prevSum: sum}
			}
		}
		best = next
		history = append(history, snapshot(best))
	}

	bestSum := -1
	bestDiff := -1
	for sum, e := range best {
		if !e.reachable {
			continue
		}
		achieved := sum - total
		if achieved < 0 {
			achieved = -achieved
		}
		if achieved > capBucket {
			continue
		}
		diff := sum - targetBucket
		if diff < 0 {
			diff = -diff
		}
		if bestSum == -1 || diff < bestDiff || (diff == bestDiff && best[sum].count < best[bestSum].count) {
			bestSum = sum
			bestDiff = diff
		}
	}
	if bestSum == -1 {
		return greedyResult{}, false
	}

	// Reconstruct the chosen subset by walking history backwards.
	var chosen []lotmodel.Lot
	sum := bestSum
	for i := len(pool) - 1; i >= 0; i-- {
		e, ok := history[i+1][sum]
		if !ok {
			continue
		}
		if e.parent == i {
			chosen = append(chosen, pool[i])
			sum = e.prevSum
		}
	}

	symbolCounts := map[string]int{}
	res := greedyResult{strategy: "dynamic_programming", accumulated: decimal.Zero}
	for _, lot := range chosen {
		res.lots = append(res.lots, lot)
		res.accumulated = res.accumulated.Add(lot.UnrealizedGain)
		res.totalScore += Score(lot, needed, symbolCounts)
		symbolCounts[lot.Symbol]++
	}
	return res, true
}

func bucketOf(d decimal.Decimal) int {
	scaled := d.Mul(decimal.NewFromInt(dpBucketScale)).Round(0)
	return int(scaled.IntPart())
}
