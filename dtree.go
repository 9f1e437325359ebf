/*
Package dtree grows classification decision trees over tables of
categorical data with the ID3 algorithm: at every node the feature
whose partition of the table yields the highest information gain is
selected, rows are split by that feature's values, and growing stops
on a branch when its rows share a single label or the configured depth
limit is reached. Trees are never pruned, and branches that no feature
can discriminate further are left unresolved rather than labeled with
a majority class.
*/
package dtree

import (
	"context"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
	"github.com/sonnert/DecisionTree/tree"
)

// DefaultMaxDepth is the depth limit New sets on the growers it
// returns.
const DefaultMaxDepth = 5

// Logger provides a sink for the diagnostic notices emitted while
// growing a tree.
type Logger interface {
	Logf(format string, a ...interface{})
}

// Grower holds the configuration to grow decision trees: the label
// feature the trees will predict, the ordered slice of features the
// trees may split by, the depth after which branches are no longer
// developed and an optional Logger for diagnostic notices.
type Grower struct {
	Label    *feature.Feature
	Features []*feature.Feature
	MaxDepth int
	Log      Logger
}

// New takes a label feature and a slice of candidate features and
// returns a Grower for them with the default depth limit.
func New(label *feature.Feature, features []*feature.Feature) *Grower {
	return &Grower{Label: label, Features: features, MaxDepth: DefaultMaxDepth}
}

// Grow takes a context and a table of training rows and returns a tree
// predicting the grower's label feature, grown according to the
// grower's configuration. The result is nil when no candidate feature
// can discriminate the table at its root. An error is returned only
// when an operation on the table fails.
func (g *Grower) Grow(ctx context.Context, t table.Table) (*tree.Tree, error) {
	root, err := g.grow(ctx, t, 0)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	return tree.New(root, g.Label), nil
}

func (g *Grower) grow(ctx context.Context, t table.Table, depth int) (tree.Node, error) {
	f, ok, err := SelectFeature(ctx, t, g.Features, g.Label)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.logf("pure solution not possible in current branch")
		return nil, nil
	}
	values, err := t.DistinctValues(ctx, f)
	if err != nil {
		return nil, err
	}
	node := &tree.Internal{Feature: f}
	for _, v := range values {
		subtable, err := t.SubsetWith(ctx, feature.NewCriterion(f, v))
		if err != nil {
			return nil, err
		}
		labels, err := subtable.DistinctValues(ctx, g.Label)
		if err != nil {
			return nil, err
		}
		switch {
		case len(labels) == 1:
			node.Branches = append(node.Branches, tree.Branch{Value: v, Child: &tree.Leaf{Label: labels[0]}})
		case depth >= g.MaxDepth:
			// Hitting the depth limit returns the node as built so
			// far: the remaining values of the feature are dropped,
			// not developed into branches of their own.
			return node, nil
		default:
			child, err := g.grow(ctx, subtable, depth+1)
			if err != nil {
				return nil, err
			}
			node.Branches = append(node.Branches, tree.Branch{Value: v, Child: child})
		}
	}
	return node, nil
}

func (g *Grower) logf(format string, a ...interface{}) {
	if g.Log == nil {
		return
	}
	g.Log.Logf(format, a...)
}
