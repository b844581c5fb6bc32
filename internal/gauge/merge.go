package gauge

import (
	"sort"

	"github.com/chrissnell/tidegauge/internal/types"
)

// Merge returns the union of the records in a and b. Two readings are the
// same record only when every field matches; readings that share a
// timestamp but differ anywhere else are both kept. The result is ordered
// by timestamp, with ties ordered by the rest of the record so that
// Merge(a, b) and Merge(b, a) come out identical.
func Merge(a, b *types.Series) *types.Series {
	seen := make(map[types.ReadingKey]struct{}, a.Len()+b.Len())
	out := make([]types.Reading, 0, a.Len()+b.Len())

	for _, s := range []*types.Series{a, b} {
		if s == nil {
			continue
		}
		for _, r := range s.Readings {
			k := r.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().Less(out[j].Key())
	})

	return &types.Series{Station: mergedStation(a, b), Readings: out}
}

// mergedStation keeps whichever station name is set; when both are set and
// differ, the lexically smaller one wins so argument order never matters.
func mergedStation(a, b *types.Series) string {
	var names []string
	for _, s := range []*types.Series{a, b} {
		if s != nil && s.Station != "" {
			names = append(names, s.Station)
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	return names[0]
}

// MergeAll folds Merge over series from left to right
func MergeAll(series ...*types.Series) *types.Series {
	acc := &types.Series{Readings: []types.Reading{}}
	for _, s := range series {
		acc = Merge(acc, s)
	}
	return acc
}
