package loom

import "sort"

// matchBlock is a run of equal items: a[A:A+Size] == b[B:B+Size].
type matchBlock struct {
	A, B, Size int
}

// opTag classifies one aligned region between two sequences.
type opTag uint8

const (
	opEqual opTag = iota
	opReplace
	opDelete
	opInsert
)

func (t opTag) String() string {
	switch t {
	case opEqual:
		return "equal"
	case opReplace:
		return "replace"
	case opDelete:
		return "delete"
	case opInsert:
		return "insert"
	}
	return "unknown"
}

// opcode describes how a[I1:I2] relates to b[J1:J2].
type opcode struct {
	Tag            opTag
	I1, I2, J1, J2 int
}

// longestMatch finds the longest block of items equal between
// a[alo:ahi] and b[blo:bhi], earliest in a (then in b) on ties. b2j
// holds, for each value, its positions in b in ascending order.
func longestMatch(a []string, alo, ahi, blo, bhi int, b2j map[string][]int) matchBlock {
	besti, bestj, bestsize := alo, blo, 0

	// j2len[j] is the length of the longest match ending at a[i-1], b[j].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}

	return matchBlock{A: besti, B: bestj, Size: bestsize}
}

// matchingBlocks returns every maximal run of equal items between a and
// b, in ascending position order, terminated by a zero-size sentinel at
// (len(a), len(b)). Blocks are found by recursing around the longest
// match of each region, so the result is a consistent global alignment.
func matchingBlocks(a, b []string) []matchBlock {
	b2j := make(map[string][]int, len(b))
	for j, s := range b {
		b2j[s] = append(b2j[s], j)
	}

	type region struct{ alo, ahi, blo, bhi int }
	queue := []region{{0, len(a), 0, len(b)}}
	var found []matchBlock

	for len(queue) > 0 {
		r := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, r.alo, r.ahi, r.blo, r.bhi, b2j)
		if m.Size == 0 {
			continue
		}
		found = append(found, m)
		if r.alo < m.A && r.blo < m.B {
			queue = append(queue, region{r.alo, m.A, r.blo, m.B})
		}
		if m.A+m.Size < r.ahi && m.B+m.Size < r.bhi {
			queue = append(queue, region{m.A + m.Size, r.ahi, m.B + m.Size, r.bhi})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].A != found[j].A {
			return found[i].A < found[j].A
		}
		return found[i].B < found[j].B
	})

	// Coalesce adjacent blocks so each opcode run is maximal.
	var blocks []matchBlock
	var cur matchBlock
	for _, m := range found {
		if cur.A+cur.Size == m.A && cur.B+cur.Size == m.B {
			cur.Size += m.Size
			continue
		}
		if cur.Size > 0 {
			blocks = append(blocks, cur)
		}
		cur = m
	}
	if cur.Size > 0 {
		blocks = append(blocks, cur)
	}

	return append(blocks, matchBlock{A: len(a), B: len(b), Size: 0})
}

// opcodes turns the matching blocks into an ordered list of edit
// operations covering both sequences completely.
func opcodes(a, b []string) []opcode {
	var ops []opcode
	i, j := 0, 0
	for _, m := range matchingBlocks(a, b) {
		switch {
		case i < m.A && j < m.B:
			ops = append(ops, opcode{opReplace, i, m.A, j, m.B})
		case i < m.A:
			ops = append(ops, opcode{opDelete, i, m.A, j, j})
		case j < m.B:
			ops = append(ops, opcode{opInsert, i, i, j, m.B})
		}
		i, j = m.A+m.Size, m.B+m.Size
		if m.Size > 0 {
			ops = append(ops, opcode{opEqual, m.A, i, m.B, j})
		}
	}
	return ops
}

// quickRatio is a fast upper-bound similarity measure over two strings:
// twice the number of rune-multiset matches divided by the total rune
// count. 1.0 when both strings are empty.
func quickRatio(a, b string) float64 {
	avail := make(map[rune]int)
	total := 0
	for _, r := range b {
		avail[r]++
		total++
	}
	matches := 0
	for _, r := range a {
		total++
		if avail[r] > 0 {
			avail[r]--
			matches++
		}
	}
	if total == 0 {
		return 1.0
	}
	return 2.0 * float64(matches) / float64(total)
}
