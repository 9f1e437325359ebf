package table

import (
	"context"

	"github.com/sonnert/DecisionTree/feature"
)

/*
Row represents a record on a table: a set of values for the features
that apply to it. A nil value for a feature means the row does not
define the feature.

Its ValueFor method takes a feature and returns the value the row has
for it, or nil if the row does not define the feature.
*/
type Row interface {
	ValueFor(context.Context, *feature.Feature) (interface{}, error)
}

type row struct {
	featureValues map[string]interface{}
}

/*
NewRow takes a map of feature names to values and returns a Row with
them.
*/
func NewRow(featureValues map[string]interface{}) Row {
	return &row{featureValues}
}

func (r *row) ValueFor(ctx context.Context, f *feature.Feature) (interface{}, error) {
	return r.featureValues[f.Name()], nil
}
