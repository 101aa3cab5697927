package plagiarism

import (
	"math"
	"strings"
)

// NormalizeSource strips the noise that trivially defeats a text-level
// comparison: per-line surrounding whitespace, blank lines, and
// single-line comments (# or //).
func NormalizeSource(code string) string {
	lines := strings.Split(strings.TrimSpace(code), "\n")
	normalized := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		normalized = append(normalized, line)
	}
	return strings.Join(normalized, "\n")
}

// Score computes the similarity of two code snippets as a ratio in
// [0,1]: 1.0 for identical normalized text, 0.0 for disjoint. The
// persisted percentage conversion happens at the storage boundary via
// ToPercent.
func Score(codeA, codeB string) float64 {
	ratio := Ratio(NormalizeSource(codeA), NormalizeSource(codeB))
	return math.Round(ratio*1000) / 1000
}

// ToPercent converts an engine ratio in [0,1] to the stored percentage
// in [0,100].
func ToPercent(ratio float64) float64 {
	return math.Round(ratio*1000) / 10
}

// Ratio is a longest-matching-blocks sequence similarity: twice the
// total size of the matching blocks over the combined length. It is
// symmetric, 1.0 for equal strings and 0.0 for strings with no runes in
// common. Cost is O(len(a)·len(b)) in the worst case.
func Ratio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}

	b2j := make(map[rune][]int, len(rb))
	for j, r := range rb {
		b2j[r] = append(b2j[r], j)
	}

	matches := 0
	type region struct{ alo, ahi, blo, bhi int }
	stack := []region{{0, len(ra), 0, len(rb)}}
	for len(stack) > 0 {
		reg := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, size := longestMatch(ra, b2j, reg.alo, reg.ahi, reg.blo, reg.bhi)
		if size == 0 {
			continue
		}
		matches += size
		stack = append(stack,
			region{reg.alo, i, reg.blo, j},
			region{i + size, reg.ahi, j + size, reg.bhi},
		)
	}

	return 2 * float64(matches) / float64(len(ra)+len(rb))
}

// longestMatch finds the longest block of runes common to a[alo:ahi]
// and b[blo:bhi], where b2j indexes rune positions in b.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	j2len := map[int]int{}
	for i := alo; i < ahi; i++ {
		newJ2len := map[int]int{}
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}

	return besti, bestj, bestsize
}
