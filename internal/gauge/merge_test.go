package gauge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrissnell/tidegauge/internal/types"
)

func reading(cycle, q int, sea float64) types.Reading {
	return types.Reading{
		Timestamp: quarter(q),
		Cycle:     cycle,
		SeaLevel:  types.Some(sea),
		Residual:  types.Some(0.1),
	}
}

func TestMergeSingleRows(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Reading
		want int
	}{
		{"identical", reading(1, 0, 3.2), reading(1, 0, 3.2), 1},
		{"sea level differs", reading(1, 0, 3.2), reading(1, 0, 3.3), 2},
		{"cycle differs", reading(1, 0, 3.2), reading(2, 0, 3.2), 2},
		{"missing vs zero", types.Reading{Timestamp: quarter(0)}, types.Reading{Timestamp: quarter(0), SeaLevel: types.Some(0)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := types.NewSeries("a", []types.Reading{tt.a})
			b := types.NewSeries("b", []types.Reading{tt.b})
			assert.Equal(t, tt.want, Merge(a, b).Len())
		})
	}
}

func TestMergeSymmetric(t *testing.T) {
	a := types.NewSeries("a", []types.Reading{
		reading(1, 0, 1.0),
		reading(2, 1, 1.1),
		reading(3, 2, 1.2),
	})
	b := types.NewSeries("a", []types.Reading{
		reading(3, 2, 1.2),
		reading(3, 2, 1.25),
		reading(4, 3, 1.3),
	})

	ab := Merge(a, b)
	ba := Merge(b, a)

	require.Equal(t, 5, ab.Len())
	assert.ElementsMatch(t, ab.Readings, ba.Readings)
	assert.Equal(t, ab.Readings, ba.Readings)

	for i := 1; i < ab.Len(); i++ {
		assert.False(t, ab.Readings[i].Timestamp.Before(ab.Readings[i-1].Timestamp))
	}
}

func TestMergeStationName(t *testing.T) {
	rs := []types.Reading{reading(1, 0, 3.2)}
	whitby := types.NewSeries("whitby", rs)
	newlyn := types.NewSeries("newlyn", rs)
	unnamed := types.NewSeries("", rs)

	assert.Equal(t, "newlyn", Merge(whitby, newlyn).Station)
	assert.Equal(t, "newlyn", Merge(newlyn, whitby).Station)
	assert.Equal(t, "whitby", Merge(unnamed, whitby).Station)
	assert.Equal(t, "whitby", Merge(whitby, nil).Station)
	assert.Equal(t, "", Merge(nil, unnamed).Station)
}

func TestMergeDisjointCardinality(t *testing.T) {
	a := series(1, 2, 3)
	b := types.NewSeries("b", []types.Reading{reading(10, 5, 9), reading(11, 6, 9)})

	assert.Equal(t, a.Len()+b.Len(), Merge(a, b).Len())
}

func TestMergeDoesNotTouchInputs(t *testing.T) {
	a := series(3, 2, 1)
	before := a.Clone()
	_ = Merge(a, series(5))
	assert.Equal(t, before.Readings, a.Readings)
}

func TestMergeAll(t *testing.T) {
	y1 := types.NewSeries("whitby", []types.Reading{reading(1, 0, 1)})
	y2 := types.NewSeries("whitby", []types.Reading{reading(2, 1, 2)})
	y3 := types.NewSeries("whitby", []types.Reading{reading(2, 1, 2), reading(3, 2, 3)})

	m := MergeAll(y1, y2, y3)
	assert.Equal(t, "whitby", m.Station)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, 0, MergeAll().Len())
}
