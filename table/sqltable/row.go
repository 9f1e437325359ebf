package sqltable

import (
	"context"
	"fmt"

	"github.com/sonnert/DecisionTree/feature"
)

/*
Row is an implementation of table.Row optimized to represent rows
belonging to a DB-backed Table.
*/
type Row struct {
	/*
		Values is a map of string column names to interface{}.
		Specifically, the value must be nil for an undefined value of
		the feature the column is representing, or an int with the
		interned representation of the feature's value.
	*/
	Values map[string]interface{}
	/*
		ValueDictionary is a map of int to string that holds the
		relation of interned representations on the Row's Values map to
		their string representations.
	*/
	ValueDictionary map[int]string
	/*
		FeatureNamesColumns is a map that translates the name of a
		feature to the column representing it on the database. This
		column is also the string value that acts as key for the
		feature value on the Row's Values map.
	*/
	FeatureNamesColumns map[string]string
}

/*
ValueFor takes a feature and returns the value the row has for it
according to the ValueDictionary, or nil if it is undefined.
*/
func (r *Row) ValueFor(ctx context.Context, f *feature.Feature) (interface{}, error) {
	c, ok := r.FeatureNamesColumns[f.Name()]
	if !ok {
		return nil, nil
	}
	v, ok := r.Values[c]
	if !ok {
		return nil, nil
	}
	iv, ok := v.(int)
	if !ok {
		return nil, fmt.Errorf("expected sql representation for the value of %s to be an int, got %T", f.Name(), v)
	}
	return r.ValueDictionary[iv], nil
}
