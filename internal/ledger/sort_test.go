package ledger

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSortKeysDescending(t *testing.T) {
	keys := []string{"1.9.0", "1.10.0", "2.0.0"}
	SortKeys(keys)

	want := []string{"2.0.0", "1.10.0", "1.9.0"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("SortKeys = %v, want %v", keys, want)
	}
}

func TestSortKeysNumericNotLexical(t *testing.T) {
	// A lexical sort would place "1.9.0" above "1.10.0".
	keys := []string{"1.10.0", "1.9.0"}
	SortKeys(keys)

	if keys[0] != "1.10.0" {
		t.Errorf("keys = %v, digit run 10 must outrank 9", keys)
	}
}

func TestSortKeysMixedRuns(t *testing.T) {
	keys := []string{"1.2.3 (store)", "1.2.3", "1.2.10", "1.2.3-beta"}
	SortKeys(keys)

	want := []string{"1.2.10", "1.2.3-beta", "1.2.3 (store)", "1.2.3"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("SortKeys = %v, want %v", keys, want)
	}
}

func TestSortKeysIdempotent(t *testing.T) {
	keys := []string{"2.0.0", "1.10.0", "1.9.0"}
	before := append([]string(nil), keys...)
	SortKeys(keys)

	if !reflect.DeepEqual(keys, before) {
		t.Errorf("sorting an already-sorted ledger changed it: %v -> %v", before, keys)
	}
}

func TestCompareKeys(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.9.0", "1.10.0", -1},
		{"1.10.0", "1.9.0", 1},
		{"1.9.0", "1.9.0", 0},
		{"1.9", "1.9.0", -1},
		{"01.9.0", "1.9.0", 0},
		{"abc", "abd", -1},
		{"10", "9", 1},
		{"", "1", -1},
	}

	for _, tt := range tests {
		if got := CompareKeys(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareKeys(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

// genLedgerKey generates version-like channel keys.
func genLedgerKey() gopter.Gen {
	return gen.RegexMatch(`^[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,4}$`)
}

func TestSortKeysProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("sorting twice equals sorting once", prop.ForAll(
		func(keys []string) bool {
			once := append([]string(nil), keys...)
			SortKeys(once)
			twice := append([]string(nil), once...)
			SortKeys(twice)
			return reflect.DeepEqual(once, twice)
		},
		gen.SliceOf(genLedgerKey()),
	))

	properties.Property("adjacent keys are in descending order", prop.ForAll(
		func(keys []string) bool {
			SortKeys(keys)
			for i := 1; i < len(keys); i++ {
				if CompareKeys(keys[i-1], keys[i]) < 0 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genLedgerKey()),
	))

	properties.Property("comparator is antisymmetric", prop.ForAll(
		func(a, b string) bool {
			return CompareKeys(a, b) == -CompareKeys(b, a)
		},
		genLedgerKey(),
		genLedgerKey(),
	))

	properties.TestingRun(t)
}
