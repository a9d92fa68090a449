package coinselection

import (
	"sort"

	"github.com/cockroachdb/errors"
)

const (
	// StableArrangement visits the records in the order they were handed to the Selector.
	StableArrangement Arrangement = iota

	// LargestFirstArrangement visits the records with the largest amount first. Ties keep their original order.
	LargestFirstArrangement
)

// Arrangement determines the order in which the Selector visits the owned records.
type Arrangement uint8

// ArrangementFromString parses the names that are used in the configuration ("stable" and "largest-first").
func ArrangementFromString(name string) (Arrangement, error) {
	switch name {
	case "", "stable":
		return StableArrangement, nil
	case "largest-first":
		return LargestFirstArrangement, nil
	default:
		return 0, errors.Errorf("unknown selection arrangement %q", name)
	}
}

// arrange returns the records in the order of the Arrangement without modifying the given slice.
func (a Arrangement) arrange(records []*OwnedRecord) []*OwnedRecord {
	arranged := append(make([]*OwnedRecord, 0, len(records)), records...)
	if a == LargestFirstArrangement {
		sort.SliceStable(arranged, func(i, j int) bool {
			return arranged[i].Record.Amount > arranged[j].Record.Amount
		})
	}

	return arranged
}

// String returns a human readable version of the Arrangement.
func (a Arrangement) String() string {
	switch a {
	case StableArrangement:
		return "stable"
	case LargestFirstArrangement:
		return "largest-first"
	default:
		return "unknown"
	}
}
