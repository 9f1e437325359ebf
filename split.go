package dtree

import (
	"context"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

// Gain takes a context, a table, a feature and a label feature and
// returns the information gain of splitting the table by the feature:
// the table's label entropy minus the feature's conditional entropy.
func Gain(ctx context.Context, t table.Table, f, label *feature.Feature) (float64, error) {
	labelEntropy, err := LabelEntropy(ctx, t, label)
	if err != nil {
		return 0, err
	}
	featureEntropy, err := FeatureEntropy(ctx, t, f, label)
	if err != nil {
		return 0, err
	}
	return labelEntropy - featureEntropy, nil
}

// SelectFeature takes a context, a table, a slice of candidate
// features and a label feature, computes the information gain of every
// candidate in slice order and returns the first feature achieving the
// maximum gain. When every candidate yields the same gain value, no
// split can discriminate the table any further and the second result
// is false. Gain values are compared for exact equality, so
// floating-point noise between effectively equal gains keeps this
// check from triggering.
func SelectFeature(ctx context.Context, t table.Table, features []*feature.Feature, label *feature.Feature) (*feature.Feature, bool, error) {
	if len(features) == 0 {
		return nil, false, nil
	}
	gains := make([]float64, 0, len(features))
	distinctGains := make(map[float64]bool)
	for _, f := range features {
		gain, err := Gain(ctx, t, f, label)
		if err != nil {
			return nil, false, err
		}
		gains = append(gains, gain)
		distinctGains[gain] = true
	}
	if len(distinctGains) == 1 {
		return nil, false, nil
	}
	selected := 0
	for i, gain := range gains {
		if gain > gains[selected] {
			selected = i
		}
	}
	return features[selected], true, nil
}
