package match

import (
	"time"

	"event-reconciler/core/normalize"
)

// Options tunes one Match call.
type Options struct {
	// Threshold is the minimum PartialRatio (0..100) for a title candidate.
	Threshold int
	// Tolerance is the largest accepted start time difference.
	Tolerance time.Duration
	// ExactTime requires both starts to fall on the same minute, ignoring Tolerance.
	ExactTime bool
}

// DefaultOptions returns a threshold of 50 and a 12 hour tolerance.
func DefaultOptions() Options {
	return Options{Threshold: 50, Tolerance: 12 * time.Hour}
}

// Pair links a listing performance to the inventory event it represents.
type Pair struct {
	Inventory normalize.Event
	Listing   normalize.Event
	Delta     time.Duration
	Score     int
}

// DeltaSeconds is the absolute start difference in seconds.
func (p Pair) DeltaSeconds() int64 {
	return int64(p.Delta / time.Second)
}

// MissReason explains why a listing event stayed unmatched.
type MissReason string

const (
	NoTitleCandidate MissReason = "no_title_candidate"
	OutsideTolerance MissReason = "outside_tolerance"
)

// Miss is an unmatched listing event. Unmatched is an expected outcome, not an error.
type Miss struct {
	Listing   normalize.Event
	Reason    MissReason
	BestDelta time.Duration
	BestScore int
}

// Ambiguity records a pick between candidates that shared the winning delta.
type Ambiguity struct {
	Listing    normalize.Event
	Chosen     normalize.Event
	Candidates []normalize.Event
	Delta      time.Duration
}

// Result of one Match call.
type Result struct {
	Pairs     []Pair
	Unmatched []Miss
	Ambiguous []Ambiguity
}

// Match pairs listing events with inventory events.
//
// Listing events are visited in order. For each, unclaimed inventory events scoring at
// least Threshold are candidates; the one with the smallest absolute start difference wins,
// the earliest in inventory order on a tie. The winner is rejected when its difference
// exceeds Tolerance. A claimed inventory event is not offered to later listing events.
// Excluded events on either side are ignored. Output depends only on the input order.
func Match(inventory, listing []normalize.Event, opts Options) Result {
	var (
		res     Result
		claimed = make([]bool, len(inventory))
		sc      = newScorer()
	)

	for _, l := range listing {
		if l.Excluded {
			continue
		}

		best := -1
		var (
			bestDelta time.Duration
			bestScore int
			topScore  int
			ties      []int
		)
		for i, inv := range inventory {
			if claimed[i] || inv.Excluded {
				continue
			}
			score := sc.score(inv.Title, l.Title)
			if score > topScore {
				topScore = score
			}
			if score < opts.Threshold {
				continue
			}
			delta := absDuration(l.StartAt.Sub(inv.StartAt))
			switch {
			case best < 0 || delta < bestDelta:
				best, bestDelta, bestScore = i, delta, score
				ties = append(ties[:0], i)
			case delta == bestDelta:
				ties = append(ties, i)
			}
		}

		if best < 0 {
			res.Unmatched = append(res.Unmatched, Miss{Listing: l, Reason: NoTitleCandidate, BestScore: topScore})
			continue
		}
		if !withinTolerance(inventory[best].StartAt, l.StartAt, bestDelta, opts) {
			res.Unmatched = append(res.Unmatched, Miss{Listing: l, Reason: OutsideTolerance, BestDelta: bestDelta, BestScore: bestScore})
			continue
		}

		claimed[best] = true
		res.Pairs = append(res.Pairs, Pair{
			Inventory: inventory[best],
			Listing:   l,
			Delta:     bestDelta,
			Score:     bestScore,
		})
		if len(ties) > 1 {
			candidates := make([]normalize.Event, 0, len(ties))
			for _, i := range ties {
				candidates = append(candidates, inventory[i])
			}
			res.Ambiguous = append(res.Ambiguous, Ambiguity{
				Listing:    l,
				Chosen:     inventory[best],
				Candidates: candidates,
				Delta:      bestDelta,
			})
		}
	}
	return res
}

func withinTolerance(inv, listing time.Time, delta time.Duration, opts Options) bool {
	if opts.ExactTime {
		return inv.Truncate(time.Minute).Equal(listing.Truncate(time.Minute))
	}
	return delta <= opts.Tolerance
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
