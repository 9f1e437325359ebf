package dtree

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
	"github.com/sonnert/DecisionTree/tree"
)

type recordingLogger struct {
	notices []string
}

func (l *recordingLogger) Logf(format string, a ...interface{}) {
	l.notices = append(l.notices, fmt.Sprintf(format, a...))
}

func TestNew(t *testing.T) {
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	play := feature.New("play", []string{"yes", "no"})

	g := New(play, []*feature.Feature{outlook})

	assert.Same(t, play, g.Label)
	assert.Equal(t, []*feature.Feature{outlook}, g.Features)
	assert.Equal(t, DefaultMaxDepth, g.MaxDepth)
	assert.Nil(t, g.Log)
}

func TestGrower_Grow_PerfectSplit(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	wind := feature.New("wind", []string{"strong", "weak"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "wind": "weak", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "wind": "weak", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "wind": "weak", "play": "no"},
		map[string]interface{}{"outlook": "rain", "wind": "weak", "play": "no"},
	)

	result, err := New(play, []*feature.Feature{outlook, wind}).Grow(ctx, tbl)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Same(t, play, result.Label)

	root, ok := result.Root.(*tree.Internal)
	require.True(t, ok)
	assert.Same(t, outlook, root.Feature)
	require.Len(t, root.Branches, 2)

	assert.Equal(t, "sunny", root.Branches[0].Value)
	leaf, ok := root.Branches[0].Child.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "yes", leaf.Label)

	assert.Equal(t, "rain", root.Branches[1].Value)
	leaf, ok = root.Branches[1].Child.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "no", leaf.Label)
}

func TestGrower_Grow_NestedSplits(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "humidity": "high", "play": "no"},
		map[string]interface{}{"outlook": "sunny", "humidity": "normal", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "yes"},
	)

	result, err := New(play, []*feature.Feature{outlook, humidity}).Grow(ctx, tbl)
	require.NoError(t, err)
	require.NotNil(t, result)

	root, ok := result.Root.(*tree.Internal)
	require.True(t, ok)
	assert.Same(t, outlook, root.Feature)
	require.Len(t, root.Branches, 2)

	assert.Equal(t, "sunny", root.Branches[0].Value)
	sunny, ok := root.Branches[0].Child.(*tree.Internal)
	require.True(t, ok, "the sunny branch should split again on humidity")
	assert.Same(t, humidity, sunny.Feature)
	require.Len(t, sunny.Branches, 2)
	assert.Equal(t, "high", sunny.Branches[0].Value)
	leaf, ok := sunny.Branches[0].Child.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "no", leaf.Label)
	assert.Equal(t, "normal", sunny.Branches[1].Value)
	leaf, ok = sunny.Branches[1].Child.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "yes", leaf.Label)

	assert.Equal(t, "rain", root.Branches[1].Value)
	leaf, ok = root.Branches[1].Child.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "yes", leaf.Label)
}

func TestGrower_Grow_DepthLimit(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "no"},
	)

	grower := New(play, []*feature.Feature{outlook, humidity})
	grower.MaxDepth = 0
	result, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)
	require.NotNil(t, result)

	// The sunny partition is pure and becomes a leaf before the rain
	// partition hits the depth limit and cuts the node short.
	root, ok := result.Root.(*tree.Internal)
	require.True(t, ok)
	assert.Same(t, outlook, root.Feature)
	require.Len(t, root.Branches, 1)
	assert.Equal(t, "sunny", root.Branches[0].Value)
	leaf, ok := root.Branches[0].Child.(*tree.Leaf)
	require.True(t, ok)
	assert.Equal(t, "yes", leaf.Label)
}

func TestGrower_Grow_DepthLimitDropsRemainingValues(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "no"},
		map[string]interface{}{"outlook": "sunny", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "humidity": "high", "play": "yes"},
	)

	grower := New(play, []*feature.Feature{outlook, humidity})
	grower.MaxDepth = 0
	result, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)
	require.NotNil(t, result)

	// The first partition already exceeds the depth limit: the node is
	// returned as built so far, dropping the pure sunny partition that
	// would have come after it.
	root, ok := result.Root.(*tree.Internal)
	require.True(t, ok)
	assert.Same(t, outlook, root.Feature)
	assert.Len(t, root.Branches, 0)
}

func TestGrower_Grow_UndiscriminableTable(t *testing.T) {
	ctx := context.Background()
	humidity := feature.New("humidity", []string{"high", "normal"})
	wind := feature.New("wind", []string{"strong", "weak"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"humidity": "high", "wind": "weak", "play": "yes"},
		map[string]interface{}{"humidity": "high", "wind": "weak", "play": "no"},
	)

	log := &recordingLogger{}
	grower := New(play, []*feature.Feature{humidity, wind})
	grower.Log = log
	result, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, []string{"pure solution not possible in current branch"}, log.notices)
}

func TestGrower_Grow_UnresolvedBranch(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	wind := feature.New("wind", []string{"strong", "weak"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "wind": "weak", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "wind": "weak", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "wind": "weak", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "wind": "weak", "play": "no"},
	)

	log := &recordingLogger{}
	grower := New(play, []*feature.Feature{outlook, wind})
	grower.Log = log
	result, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)
	require.NotNil(t, result)

	// The rain partition is impure but no feature discriminates it any
	// further: its branch stays in the tree with no subtree under it.
	root, ok := result.Root.(*tree.Internal)
	require.True(t, ok)
	require.Len(t, root.Branches, 2)
	assert.Equal(t, "rain", root.Branches[1].Value)
	assert.Nil(t, root.Branches[1].Child)
	assert.Equal(t, []string{"pure solution not possible in current branch"}, log.notices)

	_, err = result.Predict(ctx, table.NewRow(map[string]interface{}{"outlook": "rain"}))
	assert.Equal(t, tree.ErrCannotPredictFromRow, err)
}

func TestGrower_Grow_UndefinedValues(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	wind := feature.New("wind", []string{"strong", "weak"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "wind": "weak", "play": "yes"},
		map[string]interface{}{"outlook": "sunny", "wind": "weak", "play": "yes"},
		map[string]interface{}{"wind": "weak", "play": "no"},
	)

	log := &recordingLogger{}
	grower := New(play, []*feature.Feature{outlook, wind})
	grower.Log = log
	result, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)
	require.NotNil(t, result)

	// Undefined values get a branch of their own, but their partition
	// is empty and cannot be developed any further.
	root, ok := result.Root.(*tree.Internal)
	require.True(t, ok)
	assert.Same(t, outlook, root.Feature)
	require.Len(t, root.Branches, 2)
	assert.Equal(t, "sunny", root.Branches[0].Value)
	assert.Nil(t, root.Branches[1].Value)
	assert.Nil(t, root.Branches[1].Child)
	assert.Equal(t, []string{"pure solution not possible in current branch"}, log.notices)
}

func TestGrower_Grow_SameTableGrowsSameTree(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	play := feature.New("play", []string{"yes", "no"})
	tbl := newTable(
		map[string]interface{}{"outlook": "sunny", "humidity": "high", "play": "no"},
		map[string]interface{}{"outlook": "sunny", "humidity": "normal", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "yes"},
		map[string]interface{}{"outlook": "rain", "humidity": "high", "play": "yes"},
	)

	grower := New(play, []*feature.Feature{outlook, humidity})
	first, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)
	second, err := grower.Grow(ctx, tbl)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.String(), second.String())
}
