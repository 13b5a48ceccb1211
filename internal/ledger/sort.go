package ledger

import (
	"sort"
	"strings"
)

// SortKeys orders channel keys descending with the numeric-aware
// comparator: keys split into alternating non-digit and digit runs,
// digit runs compare as integers, non-digit runs lexically. This keeps
// "1.10.0" above "1.9.0" where a plain string sort would not, and must
// stay byte-compatible with the ledger snapshots the other automation
// produces.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		return CompareKeys(keys[i], keys[j]) > 0
	})
}

// CompareKeys compares two ledger keys with the numeric-aware
// comparator. Returns -1 if a < b, 0 if equal, 1 if a > b.
func CompareKeys(a, b string) int {
	ra, rb := splitRuns(a), splitRuns(b)

	n := len(ra)
	if len(rb) < n {
		n = len(rb)
	}
	// Runs alternate starting with a (possibly empty) non-digit run, so
	// segments at the same index always have the same kind.
	for i := 0; i < n; i++ {
		var cmp int
		if i%2 == 1 {
			cmp = compareDigitRuns(ra[i], rb[i])
		} else {
			cmp = strings.Compare(ra[i], rb[i])
		}
		if cmp != 0 {
			return cmp
		}
	}

	switch {
	case len(ra) < len(rb):
		return -1
	case len(ra) > len(rb):
		return 1
	}
	return 0
}

// splitRuns splits a key into alternating non-digit and digit runs. The
// first run is always non-digit and may be empty, so odd indexes are
// digit runs.
func splitRuns(s string) []string {
	var runs []string
	cur := strings.Builder{}
	inDigits := false

	flush := func() {
		runs = append(runs, cur.String())
		cur.Reset()
	}

	// Leading non-digit run, even when empty.
	for _, c := range s {
		d := c >= '0' && c <= '9'
		if d != inDigits {
			flush()
			inDigits = d
		}
		cur.WriteRune(c)
	}
	flush()
	return runs
}

// compareDigitRuns compares two digit runs as integers without parsing,
// so arbitrarily long runs cannot overflow.
func compareDigitRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
