package tree

import (
	"context"
	"fmt"
	"strings"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

// Tree represents a classification decision tree. It is composed of
// the root node of the tree and the label feature it is able to
// predict.
type Tree struct {
	Root  Node
	Label *feature.Feature
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromRow is the error returned by the Predict method of
a tree when the prediction cannot be made because the tree itself
cannot make a prediction for that kind of row: the row holds a feature
value the tree has no branch for, or it reaches a branch left
unresolved when the tree was grown. Cases where values for a feature
cannot be obtained return a different, descriptive error.
*/
const ErrCannotPredictFromRow = PredictionError("no prediction available for this kind of row")

func (pe PredictionError) Error() string {
	return string(pe)
}

// New takes a root Node and a label feature and returns a tree that
// predicts the given feature.
func New(root Node, label *feature.Feature) *Tree {
	return &Tree{root, label}
}

// Predict takes a row and returns the tree's predicted label for it or
// an error if the prediction could not be made.
func (t *Tree) Predict(ctx context.Context, r feature.Sample) (interface{}, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("nil tree cannot predict rows")
	}
	n := t.Root
	for {
		switch node := n.(type) {
		case *Leaf:
			return node.Label, nil
		case *Internal:
			v, err := r.ValueFor(ctx, node.Feature)
			if err != nil {
				return nil, fmt.Errorf("predicting row: retrieving value for feature %s: %v", node.Feature.Name(), err)
			}
			child, ok := node.Branch(v)
			if !ok || child == nil {
				return nil, ErrCannotPredictFromRow
			}
			n = child
		default:
			return nil, fmt.Errorf("predicting row: unexpected node type %T", n)
		}
	}
}

/*
Test takes a context.Context and a table and returns three values:
 * the prediction success rate of the tree over the rows of the table
 * the number of rows the tree could not predict because of
   ErrCannotPredictFromRow errors
 * an error if a prediction failed for reasons other than the tree not
   being able to make it. If this is not nil, the other values will be
   0.0 and 0 respectively
*/
func (t *Tree) Test(ctx context.Context, tbl table.Table) (float64, int, error) {
	if t == nil {
		return 0.0, 0, nil
	}
	var result float64
	var errCount int
	rows, err := tbl.Rows(ctx)
	if err != nil {
		return 0.0, 0, err
	}
	count, err := tbl.Count(ctx)
	if err != nil {
		return 0.0, 0, err
	}
	for _, row := range rows {
		p, err := t.Predict(ctx, row)
		if err != nil {
			if err != ErrCannotPredictFromRow {
				return 0.0, 0, err
			}
			errCount++
		} else {
			v, err := row.ValueFor(ctx, t.Label)
			if err != nil {
				return 0.0, 0, err
			}
			if feature.ValueKey(p) == feature.ValueKey(v) {
				result += 1.0
			}
		}
	}
	result = result / float64(count)
	return result, errCount, nil
}

func (t *Tree) String() string {
	if t == nil || t.Root == nil {
		return ""
	}
	return nodeString(t.Root)
}

func nodeString(n Node) string {
	switch n := n.(type) {
	case *Leaf:
		return fmt.Sprintf("{ %v }\n", n.Label)
	case *Internal:
		result := fmt.Sprintf("[%s]\n", n.Feature.Name())
		if len(n.Branches) > 0 {
			result = fmt.Sprintf("%s|\n", result)
		} else {
			result = fmt.Sprintf("%s \n", result)
		}
		for i, b := range n.Branches {
			for j, line := range strings.Split(branchString(n.Feature, b), "\n") {
				if len(line) > 0 {
					if j == 0 {
						result = fmt.Sprintf("%s|__%s\n", result, line)
					} else {
						if i == len(n.Branches)-1 {
							result = fmt.Sprintf("%s   %s\n", result, line)
						} else {
							result = fmt.Sprintf("%s|  %s\n", result, line)
						}
					}
				}
			}
		}
		return result
	}
	return ""
}

func branchString(f *feature.Feature, b Branch) string {
	result := fmt.Sprintf("{ %s is %v }\n", f.Name(), b.Value)
	if b.Child == nil {
		return fmt.Sprintf("%s{ ? }\n", result)
	}
	return fmt.Sprintf("%s%s", result, nodeString(b.Child))
}
