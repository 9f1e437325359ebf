package sqltable

import (
	"context"
	"fmt"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

/*
Table is a table.Table to which rows can be written and from which
rows can be sequentially read
*/
type Table interface {
	table.Table
	Write(context.Context, []table.Row) (int, error)
	Read(context.Context) (<-chan table.Row, <-chan error)
}

type dbTable struct {
	db                  Adapter
	features            []*feature.Feature
	criteria            []*RowCriterion
	featureCriteria     []feature.Criterion
	featureNamesColumns map[string]string
	columnFeatures      map[string]*feature.Feature
	values              map[int]string
	inverseValues       map[string]int
	columns             []string
	count               *int
}

/*
Open takes an Adapter to a db backend and a slice of feature.Feature
and returns a Table backed by the given adapter or an error if no
table is available through the given adapter.

This function expects the adapter to have the observations and values
tables already created, and the values table initialized with all the
values of the features in the features slice.
*/
func Open(ctx context.Context, dbAdapter Adapter, features []*feature.Feature) (Table, error) {
	ss := &dbTable{db: dbAdapter, features: features}
	err := ss.initFeatureColumns()
	if err != nil {
		return nil, err
	}
	err = ss.init(ctx)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

/*
Create takes an Adapter and a slice of feature.Feature and returns a
Table backed by the given adapter or an error.

This function will ensure that the observations and values tables are
created on the database, and that the values table has all the values
declared for the features on the features slice.
*/
func Create(ctx context.Context, dbAdapter Adapter, features []*feature.Feature) (Table, error) {
	ss := &dbTable{db: dbAdapter, features: features}
	err := ss.initFeatureColumns()
	if err != nil {
		return nil, err
	}
	err = ss.initDB(ctx)
	if err != nil {
		return nil, err
	}
	return ss, nil
}

func (ss *dbTable) Count(ctx context.Context) (int, error) {
	if ss.count != nil {
		return *ss.count, nil
	}
	result, err := ss.db.CountObservations(ctx, ss.criteria)
	if err == nil {
		ss.count = &result
	}
	return result, err
}

func (ss *dbTable) DistinctValues(ctx context.Context, f *feature.Feature) ([]interface{}, error) {
	column, ok := ss.featureNamesColumns[f.Name()]
	if !ok {
		return nil, fmt.Errorf("unknown feature %s", f.Name())
	}
	values, err := ss.db.ListObservationValues(ctx, column, ss.criteria)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, 0, len(values))
	for _, v := range values {
		result = append(result, ss.values[v])
	}
	return result, nil
}

func (ss *dbTable) ValueCounts(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	column, ok := ss.featureNamesColumns[f.Name()]
	if !ok {
		return nil, fmt.Errorf("unknown feature %s", f.Name())
	}
	valueCounts, err := ss.db.CountObservationValues(ctx, column, ss.criteria)
	if err != nil {
		return nil, err
	}
	result := make(map[string]int)
	for k, v := range valueCounts {
		result[ss.values[k]] = v
	}
	return result, nil
}

func (ss *dbTable) SubsetWith(ctx context.Context, fc feature.Criterion) (table.Table, error) {
	rfc, err := NewRowCriteria(fc, ss.db.ColumnName, ss.inverseValues)
	if err != nil {
		return nil, err
	}
	subsetCriteria := make([]*RowCriterion, 0, len(ss.criteria)+len(rfc))
	subsetCriteria = append(subsetCriteria, ss.criteria...)
	subsetCriteria = append(subsetCriteria, rfc...)
	subsetFeatureCriteria := make([]feature.Criterion, 0, len(ss.featureCriteria)+1)
	subsetFeatureCriteria = append(subsetFeatureCriteria, ss.featureCriteria...)
	subsetFeatureCriteria = append(subsetFeatureCriteria, fc)
	return &dbTable{
		db:                  ss.db,
		features:            ss.features,
		criteria:            subsetCriteria,
		featureCriteria:     subsetFeatureCriteria,
		values:              ss.values,
		inverseValues:       ss.inverseValues,
		featureNamesColumns: ss.featureNamesColumns,
		columnFeatures:      ss.columnFeatures,
		columns:             ss.columns,
	}, nil
}

func (ss *dbTable) Rows(ctx context.Context) ([]table.Row, error) {
	rawRows, err := ss.db.ListObservations(ctx, ss.criteria, ss.columns)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, 0, len(rawRows))
	for _, r := range rawRows {
		rows = append(rows, &Row{Values: r, ValueDictionary: ss.values, FeatureNamesColumns: ss.featureNamesColumns})
	}
	return rows, nil
}

func (ss *dbTable) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return ss.featureCriteria, nil
}

func (ss *dbTable) Write(ctx context.Context, rows []table.Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	err := ss.internValues(ctx, rows)
	if err != nil {
		return 0, err
	}
	rawRows := make([]map[string]interface{}, 0, len(rows))
	for _, r := range rows {
		rr, err := ss.newRawRow(ctx, r)
		if err != nil {
			return 0, err
		}
		rawRows = append(rawRows, rr)
	}
	return ss.db.AddObservations(ctx, rawRows, ss.columns)
}

func (ss *dbTable) Read(ctx context.Context) (<-chan table.Row, <-chan error) {
	rowStream := make(chan table.Row)
	errStream := make(chan error, 1)
	go func() {
		err := ss.db.IterateOnObservations(
			ctx,
			ss.criteria,
			ss.columns,
			func(n int, rr map[string]interface{}) (bool, error) {
				r := &Row{
					Values:              rr,
					ValueDictionary:     ss.values,
					FeatureNamesColumns: ss.featureNamesColumns}
				select {
				case <-ctx.Done():
					return false, nil
				case rowStream <- r:
				}
				return true, nil
			})
		if err != nil {
			errStream <- err
		}
		close(errStream)
		close(rowStream)
	}()
	return rowStream, errStream
}

func (ss *dbTable) initDB(ctx context.Context) error {
	err := ss.db.CreateValuesTable(ctx)
	if err != nil {
		return err
	}
	err = ss.db.CreateObservationsTable(ctx, ss.columns)
	if err != nil {
		return err
	}
	ss.values, err = ss.db.ListValues(ctx)
	if err != nil {
		return err
	}
	newValues := ss.unavailableValues()
	_, err = ss.db.AddValues(ctx, newValues)
	if err != nil {
		return err
	}
	return ss.init(ctx)
}

func (ss *dbTable) unavailableValues() []string {
	present := make(map[string]bool)
	for _, v := range ss.values {
		present[v] = true
	}
	var unavailableValues []string
	for _, f := range ss.features {
		for _, fv := range f.Values() {
			if !present[fv] {
				present[fv] = true
				unavailableValues = append(unavailableValues, fv)
			}
		}
	}
	return unavailableValues
}

func (ss *dbTable) init(ctx context.Context) error {
	var err error
	ss.values, err = ss.db.ListValues(ctx)
	if err != nil {
		return err
	}
	ss.inverseValues = make(map[string]int)
	for k, v := range ss.values {
		ss.inverseValues[v] = k
	}
	return nil
}

// internValues ensures every value held by the given rows has an entry
// on the values table, adding the missing ones and refreshing the
// dictionaries when needed.
func (ss *dbTable) internValues(ctx context.Context, rows []table.Row) error {
	var newValues []string
	collected := make(map[string]bool)
	for _, r := range rows {
		for _, f := range ss.features {
			v, err := r.ValueFor(ctx, f)
			if err != nil {
				return err
			}
			if v == nil {
				continue
			}
			vs, ok := v.(string)
			if !ok {
				return fmt.Errorf("expected string value for feature %s of row, got %T", f.Name(), v)
			}
			if _, ok := ss.inverseValues[vs]; !ok && !collected[vs] {
				collected[vs] = true
				newValues = append(newValues, vs)
			}
		}
	}
	if len(newValues) == 0 {
		return nil
	}
	_, err := ss.db.AddValues(ctx, newValues)
	if err != nil {
		return err
	}
	return ss.init(ctx)
}

func (ss *dbTable) newRawRow(ctx context.Context, r table.Row) (map[string]interface{}, error) {
	rr := make(map[string]interface{})
	for _, f := range ss.features {
		v, err := r.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		if v != nil {
			vs, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected string value for feature %s of row, got %T", f.Name(), v)
			}
			vID, ok := ss.inverseValues[vs]
			if !ok {
				return nil, fmt.Errorf("non representable value '%s' for feature %s of row", vs, f.Name())
			}
			rr[ss.featureNamesColumns[f.Name()]] = vID
		}
	}
	return rr, nil
}

func (ss *dbTable) initFeatureColumns() error {
	ss.columnFeatures = make(map[string]*feature.Feature)
	ss.featureNamesColumns = make(map[string]string)
	for _, f := range ss.features {
		column, err := ss.db.ColumnName(f.Name())
		if err != nil {
			return fmt.Errorf("invalid feature %s: %v", f.Name(), err)
		}
		of, ok := ss.columnFeatures[column]
		if ok {
			return fmt.Errorf("%s and %s feature names translate to the same column name %s", f.Name(), of.Name(), column)
		}
		ss.columnFeatures[column] = f
		ss.featureNamesColumns[f.Name()] = column
	}
	for _, f := range ss.features {
		ss.columns = append(ss.columns, ss.featureNamesColumns[f.Name()])
	}
	return nil
}
