package dtree

import (
	"context"
	"math"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

// epsilon is the IEEE 754 double-precision machine epsilon. Added to
// the denominator and to the logarithm argument of every conditional
// probability so that zero-count value/label combinations never
// produce an undefined logarithm.
const epsilon = 0x1p-52

// LabelEntropy takes a context, a table and a label feature and
// returns the Shannon entropy, in bits, of the label's value
// distribution over the table: 0 when every row holds the same label,
// log2(k) when k labels appear in equal counts. The table must not be
// empty.
func LabelEntropy(ctx context.Context, t table.Table, label *feature.Feature) (float64, error) {
	count, err := t.Count(ctx)
	if err != nil {
		return 0, err
	}
	values, err := t.DistinctValues(ctx, label)
	if err != nil {
		return 0, err
	}
	counts, err := t.ValueCounts(ctx, label)
	if err != nil {
		return 0, err
	}
	total := float64(count)
	var entropy float64
	for _, v := range values {
		fraction := float64(counts[feature.ValueKey(v)]) / total
		entropy += -fraction * math.Log2(fraction)
	}
	return entropy, nil
}

// FeatureEntropy takes a context, a table, a feature and a label
// feature and returns the conditional entropy of the label given the
// feature: the average of the label entropy of each subtable sharing
// one of the feature's values, weighted by the subtable's fraction of
// the table's rows. The inner entropies use natural logarithms
// stabilized with epsilon, and the accumulated result is normalized
// with Abs to absorb the sign drift the stabilizer can introduce.
// The table must not be empty.
func FeatureEntropy(ctx context.Context, t table.Table, f, label *feature.Feature) (float64, error) {
	count, err := t.Count(ctx)
	if err != nil {
		return 0, err
	}
	labelValues, err := t.DistinctValues(ctx, label)
	if err != nil {
		return 0, err
	}
	values, err := t.DistinctValues(ctx, f)
	if err != nil {
		return 0, err
	}
	counts, err := t.ValueCounts(ctx, f)
	if err != nil {
		return 0, err
	}
	total := float64(count)
	var entropy float64
	for _, v := range values {
		subtable, err := t.SubsetWith(ctx, feature.NewCriterion(f, v))
		if err != nil {
			return 0, err
		}
		labelCounts, err := subtable.ValueCounts(ctx, label)
		if err != nil {
			return 0, err
		}
		den := float64(counts[feature.ValueKey(v)])
		var inner float64
		for _, lv := range labelValues {
			num := float64(labelCounts[feature.ValueKey(lv)])
			innerFraction := num / (den + epsilon)
			inner += -innerFraction * math.Log(innerFraction+epsilon)
		}
		fraction := den / total
		entropy += -fraction * inner
	}
	return math.Abs(entropy), nil
}
