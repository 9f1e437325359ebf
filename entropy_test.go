package dtree

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

func newTable(records ...map[string]interface{}) table.Table {
	rows := make([]table.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, table.NewRow(record))
	}
	return table.New(rows)
}

func TestLabelEntropy_PureTable(t *testing.T) {
	ctx := context.Background()
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "yes"},
	)

	entropy, err := LabelEntropy(ctx, tbl, play)
	require.NoError(t, err)
	assert.Equal(t, 0.0, entropy)
}

func TestLabelEntropy_EvenSplits(t *testing.T) {
	ctx := context.Background()
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "no"},
		map[string]interface{}{"play": "no"},
	)

	entropy, err := LabelEntropy(ctx, tbl, play)
	require.NoError(t, err)
	assert.Equal(t, 1.0, entropy)

	direction := feature.New("direction", []string{"north", "south", "east", "west"})
	tbl = newTable(
		map[string]interface{}{"direction": "north"},
		map[string]interface{}{"direction": "south"},
		map[string]interface{}{"direction": "east"},
		map[string]interface{}{"direction": "west"},
	)

	entropy, err = LabelEntropy(ctx, tbl, direction)
	require.NoError(t, err)
	assert.Equal(t, 2.0, entropy)

	size := feature.New("size", []string{"small", "medium", "large"})
	tbl = newTable(
		map[string]interface{}{"size": "small"},
		map[string]interface{}{"size": "medium"},
		map[string]interface{}{"size": "large"},
	)

	entropy, err = LabelEntropy(ctx, tbl, size)
	require.NoError(t, err)
	assert.InDelta(t, math.Log2(3), entropy, 1e-12)
}

func TestLabelEntropy_SkewedSplit(t *testing.T) {
	ctx := context.Background()
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "yes"},
		map[string]interface{}{"play": "no"},
	)

	entropy, err := LabelEntropy(ctx, tbl, play)
	require.NoError(t, err)
	assert.InDelta(t, 0.8112781244591328, entropy, 1e-12)
}

func TestFeatureEntropy_PerfectSplit(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "play": "no"},
		map[string]interface{}{"outlook": "rain", "play": "no"},
	)

	entropy, err := FeatureEntropy(ctx, tbl, outlook, play)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, entropy, 1e-9)
}

func TestFeatureEntropy_ConstantFeature(t *testing.T) {
	ctx := context.Background()
	wind := feature.New("wind", []string{"strong", "weak"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"wind": "weak", "play": "yes"},
		map[string]interface{}{"wind": "weak", "play": "yes"},
		map[string]interface{}{"wind": "weak", "play": "no"},
		map[string]interface{}{"wind": "weak", "play": "no"},
	)

	// A feature taking a single value leaves the label distribution
	// untouched: its conditional entropy is that of the whole table,
	// with the inner entropy measured in natural units.
	entropy, err := FeatureEntropy(ctx, tbl, wind, play)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2), entropy, 1e-9)
}

func TestFeatureEntropy_PartialSplit(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "play": "no"},
	)

	// The sunny half is pure and contributes nothing, the rain half is
	// evenly split and contributes its weighted natural entropy.
	entropy, err := FeatureEntropy(ctx, tbl, outlook, play)
	require.NoError(t, err)
	assert.InDelta(t, math.Log(2)/2, entropy, 1e-9)
}

func TestFeatureEntropy_UndefinedValues(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "play": "yes"},
		map[string]interface{}{"play": "no"},
	)

	// Rows leaving the feature undefined form an empty partition that
	// adds nothing to the conditional entropy.
	entropy, err := FeatureEntropy(ctx, tbl, outlook, play)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, entropy, 1e-9)
}
