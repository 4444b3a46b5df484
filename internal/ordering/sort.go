package ordering

import (
	"cmp"
	"slices"

	"github.com/llehouerou/albumgallery/internal/cover"
)

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// ResolveDirection picks the direction from the requested flags.
// Descending wins when both are set; neither means Ascending.
func ResolveDirection(asc, desc bool) Direction {
	if desc {
		return Descending
	}
	return Ascending
}

// Options controls Sort.
type Options struct {
	Criterion Criterion
	Direction Direction
}

// Exclusion is a cover left out of the ordering because its key failed.
type Exclusion struct {
	Item cover.Item
	Err  error
}

// Result is the outcome of Sort.
type Result struct {
	Items     []cover.Item
	Excluded  []Exclusion
	Criterion Criterion // criterion actually used
}

type keyed struct {
	item cover.Item
	key  int
}

// Sort returns items ordered by opts. The input slice is not modified.
//
// Keys are computed once per item. Items whose key fails are moved to
// Result.Excluded before sorting, so the comparison is total. When a Year sort
// leaves no item with a valid key, the whole run falls back to Step and
// nothing is excluded.
//
// The sort is stable in both directions: equal keys keep their input order.
func Sort(items []cover.Item, opts Options) Result {
	res := Result{Criterion: opts.Criterion}
	if len(items) == 0 {
		res.Items = []cover.Item{}
		return res
	}

	ks := make([]keyed, 0, len(items))
	for _, it := range items {
		k, err := Key(it, opts.Criterion)
		if err != nil {
			res.Excluded = append(res.Excluded, Exclusion{Item: it, Err: err})
			continue
		}
		ks = append(ks, keyed{item: it, key: k})
	}

	if len(ks) == 0 && opts.Criterion == Year {
		return Sort(items, Options{Criterion: Step, Direction: opts.Direction})
	}

	slices.SortStableFunc(ks, func(a, b keyed) int {
		if opts.Direction == Descending {
			return cmp.Compare(b.key, a.key)
		}
		return cmp.Compare(a.key, b.key)
	})

	res.Items = make([]cover.Item, len(ks))
	for i, k := range ks {
		res.Items[i] = k.item
	}
	return res
}
