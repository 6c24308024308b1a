package match

import (
	"math"
	"sort"
	"strings"
)

// PartialRatio scores 0..100 how well the shorter string aligns with a window of the longer one.
// Windows start where each matching block would place the shorter string and are clipped at the
// end of the longer string, so titles overlapping only at an edge still score on that overlap.
func PartialRatio(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if strings.Contains(string(long), string(short)) {
		return 100
	}

	best := 0.0
	for _, blk := range matchingBlocks(short, long) {
		start := max(blk.j-blk.i, 0)
		end := min(start+len(short), len(long))
		r := similarity(short, long[start:end])
		if r > 0.995 {
			return 100
		}
		best = max(best, r)
	}
	return percent(best)
}

// Ratio is the whole-string similarity, 0..100.
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	return percent(similarity([]rune(a), []rune(b)))
}

// percent rounds half to even.
func percent(r float64) int {
	return int(math.RoundToEven(100 * r))
}

// similarity is 2*M/T where M is the total size of the matching blocks.
func similarity(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	matched := 0
	for _, blk := range matchingBlocks(a, b) {
		matched += blk.size
	}
	return 2 * float64(matched) / float64(total)
}

// block is a run a[i:i+size] == b[j:j+size].
type block struct {
	i, j, size int
}

// autoJunkMin is the length of b from which elements that are too frequent are not indexed.
const autoJunkMin = 200

// matchingBlocks finds the longest common run, then recurses on both sides of it. Adjacent
// runs are merged and a zero-size sentinel at (len(a), len(b)) closes the list.
func matchingBlocks(a, b []rune) []block {
	index := indexRunes(b)

	var blocks []block
	queue := [][4]int{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		q := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		alo, ahi, blo, bhi := q[0], q[1], q[2], q[3]

		m := longestMatch(a, b, index, alo, ahi, blo, bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if alo < m.i && blo < m.j {
			queue = append(queue, [4]int{alo, m.i, blo, m.j})
		}
		if m.i+m.size < ahi && m.j+m.size < bhi {
			queue = append(queue, [4]int{m.i + m.size, ahi, m.j + m.size, bhi})
		}
	}
	sort.Slice(blocks, func(x, y int) bool {
		if blocks[x].i != blocks[y].i {
			return blocks[x].i < blocks[y].i
		}
		return blocks[x].j < blocks[y].j
	})

	merged := make([]block, 0, len(blocks)+1)
	cur := block{}
	for _, blk := range blocks {
		if cur.i+cur.size == blk.i && cur.j+cur.size == blk.j {
			cur.size += blk.size
			continue
		}
		if cur.size > 0 {
			merged = append(merged, cur)
		}
		cur = blk
	}
	if cur.size > 0 {
		merged = append(merged, cur)
	}
	return append(merged, block{i: len(a), j: len(b)})
}

// indexRunes maps each rune of b to its ascending positions, dropping popular runes of long inputs.
func indexRunes(b []rune) map[rune][]int {
	index := make(map[rune][]int)
	for j, r := range b {
		index[r] = append(index[r], j)
	}
	if len(b) >= autoJunkMin {
		limit := len(b)/100 + 1
		for r, js := range index {
			if len(js) > limit {
				delete(index, r)
			}
		}
	}
	return index
}

// longestMatch returns the longest run in a[alo:ahi] and b[blo:bhi], earliest in a then b on ties.
func longestMatch(a, b []rune, index map[rune][]int, alo, ahi, blo, bhi int) block {
	best := block{i: alo, j: blo}
	lengths := map[int]int{}
	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range index[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := lengths[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		lengths = next
	}

	// Extend across runes left out of the index.
	for best.i > alo && best.j > blo && a[best.i-1] == b[best.j-1] {
		best.i, best.j, best.size = best.i-1, best.j-1, best.size+1
	}
	for best.i+best.size < ahi && best.j+best.size < bhi && a[best.i+best.size] == b[best.j+best.size] {
		best.size++
	}
	return best
}

// scorer memoizes PartialRatio for one Match call; titles repeat across performances.
type scorer struct {
	cache map[[2]string]int
}

func newScorer() *scorer {
	return &scorer{cache: make(map[[2]string]int)}
}

func (s *scorer) score(a, b string) int {
	key := [2]string{a, b}
	if b < a {
		key = [2]string{b, a}
	}
	if v, ok := s.cache[key]; ok {
		return v
	}
	v := PartialRatio(a, b)
	s.cache[key] = v
	return v
}
