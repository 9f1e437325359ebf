package sqltable

import (
	"context"
	"fmt"

	"github.com/sonnert/DecisionTree/feature"
)

/*
Adapter is an interface providing the methods needed to implement a
Table with a database backend.
*/
type Adapter interface {
	ColumnName(string) (string, error)

	CreateValuesTable(context.Context) error
	CreateObservationsTable(ctx context.Context, columns []string) error

	AddValues(context.Context, []string) (int, error)
	ListValues(context.Context) (map[int]string, error)

	AddObservations(ctx context.Context, rawRows []map[string]interface{}, columns []string) (int, error)
	ListObservations(ctx context.Context, criteria []*RowCriterion, columns []string) ([]map[string]interface{}, error)
	IterateOnObservations(ctx context.Context, criteria []*RowCriterion, columns []string, lambda func(int, map[string]interface{}) (bool, error)) error
	CountObservations(context.Context, []*RowCriterion) (int, error)

	ListObservationValues(ctx context.Context, column string, criteria []*RowCriterion) ([]int, error)
	CountObservationValues(ctx context.Context, column string, criteria []*RowCriterion) (map[int]int, error)
}

/*
RowCriterion represents a feature.Criterion on SQL DB-backed tables:
an equality condition on an SQL SELECT statement's WHERE clause over
the observations table, with the value in its interned integer form.
*/
type RowCriterion struct {
	/*
		Column is the column name for the feature the criterion is
		applying the restriction to.
	*/
	Column string
	/*
		ValueID is the id on the values table of the value the column
		must be equal to.
	*/
	ValueID int
}

/*
ColumnNameFunc is a function that takes the name of a feature and
returns the column name for it or an error if the name could not be
transformed.
*/
type ColumnNameFunc func(string) (string, error)

/*
NewRowCriteria takes a feature.Criterion, a ColumnNameFunc and a map of
string to int with the interned integer representation of every value
and returns a slice of RowCriterion equivalent to the given
feature.Criterion or an error.

An error will be returned if the ColumnNameFunc cannot provide a name
for the feature of the criterion, if the criterion constrains the
feature to an undefined value, or if the criterion's value has no
representation on the given dictionary.
*/
func NewRowCriteria(fc feature.Criterion, cnf ColumnNameFunc, dictionary map[string]int) ([]*RowCriterion, error) {
	columnName, err := cnf(fc.Feature().Name())
	if err != nil {
		return nil, fmt.Errorf("cannot obtain column name for feature '%s': %v", fc.Feature().Name(), err)
	}
	if fc.Value() == nil {
		return nil, fmt.Errorf("cannot translate criterion on undefined value for feature '%s'", fc.Feature().Name())
	}
	vID, ok := dictionary[feature.ValueKey(fc.Value())]
	if !ok {
		return nil, fmt.Errorf("non representable value '%v' in row criterion", fc.Value())
	}
	return []*RowCriterion{{columnName, vID}}, nil
}
