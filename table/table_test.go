package table

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnert/DecisionTree/feature"
)

var tableConstructors = map[string]func([]Row) Table{
	"memory intensive": NewMemoryIntensive,
	"cpu intensive":    NewCPUIntensive,
}

func weatherRows() []Row {
	return []Row{
		NewRow(map[string]interface{}{"outlook": "rain", "play": "no"}),
		NewRow(map[string]interface{}{"play": "yes"}),
		NewRow(map[string]interface{}{"outlook": "sunny", "play": "yes"}),
		NewRow(map[string]interface{}{"outlook": "rain", "play": "yes"}),
	}
}

func TestNew(t *testing.T) {
	small := New(weatherRows())
	_, ok := small.(*memoryIntensiveSubsettingTable)
	assert.True(t, ok, "small row sets should be held in a memory intensive table")

	rows := make([]Row, 0, rowCountThresholdForTableImplementation+1)
	for i := 0; i <= rowCountThresholdForTableImplementation; i++ {
		rows = append(rows, NewRow(map[string]interface{}{"id": fmt.Sprintf("%d", i)}))
	}
	large := New(rows)
	_, ok = large.(*cpuIntensiveSubsettingTable)
	assert.True(t, ok, "large row sets should be held in a cpu intensive table")
}

func TestTable_Count(t *testing.T) {
	ctx := context.Background()
	for name, newTable := range tableConstructors {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(weatherRows())

			count, err := tbl.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 4, count)
		})
	}
}

func TestTable_DistinctValues(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	for name, newTable := range tableConstructors {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(weatherRows())

			values, err := tbl.DistinctValues(ctx, outlook)
			require.NoError(t, err)
			// Values come back in the order they are first encountered,
			// undefined values included.
			assert.Equal(t, []interface{}{"rain", nil, "sunny"}, values)
		})
	}
}

func TestTable_ValueCounts(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	for name, newTable := range tableConstructors {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(weatherRows())

			counts, err := tbl.ValueCounts(ctx, outlook)
			require.NoError(t, err)
			assert.Equal(t, map[string]int{"rain": 2, "sunny": 1, "<nil>": 1}, counts)
		})
	}
}

func TestTable_SubsetWith(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	play := feature.New("play", []string{"yes", "no"})
	for name, newTable := range tableConstructors {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(weatherRows())

			subset, err := tbl.SubsetWith(ctx, feature.NewCriterion(outlook, "rain"))
			require.NoError(t, err)
			count, err := subset.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			labels, err := subset.DistinctValues(ctx, play)
			require.NoError(t, err)
			assert.Equal(t, []interface{}{"no", "yes"}, labels)

			subsubset, err := subset.SubsetWith(ctx, feature.NewCriterion(play, "yes"))
			require.NoError(t, err)
			count, err = subsubset.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, count)

			criteria, err := subsubset.Criteria(ctx)
			require.NoError(t, err)
			assert.Len(t, criteria, 2)

			count, err = tbl.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 4, count, "subsetting should not change the original table")
		})
	}
}

func TestTable_SubsetWith_UndefinedValue(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	for name, newTable := range tableConstructors {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(weatherRows())

			// No row satisfies a criterion on an undefined value, not
			// even the rows that leave the feature undefined.
			subset, err := tbl.SubsetWith(ctx, feature.NewCriterion(outlook, nil))
			require.NoError(t, err)
			count, err := subset.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}

func TestTable_Rows(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	for name, newTable := range tableConstructors {
		t.Run(name, func(t *testing.T) {
			tbl := newTable(weatherRows())

			rows, err := tbl.Rows(ctx)
			require.NoError(t, err)
			require.Len(t, rows, 4)

			subset, err := tbl.SubsetWith(ctx, feature.NewCriterion(outlook, "sunny"))
			require.NoError(t, err)
			subsetRows, err := subset.Rows(ctx)
			require.NoError(t, err)
			require.Len(t, subsetRows, 1)
			v, err := subsetRows[0].ValueFor(ctx, outlook)
			require.NoError(t, err)
			assert.Equal(t, "sunny", v)
		})
	}
}

func TestNewRow(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	r := NewRow(map[string]interface{}{"outlook": "sunny"})

	v, err := r.ValueFor(ctx, outlook)
	require.NoError(t, err)
	assert.Equal(t, "sunny", v)

	v, err = r.ValueFor(ctx, humidity)
	require.NoError(t, err)
	assert.Nil(t, v)
}
