package table

import (
	"context"

	"github.com/sonnert/DecisionTree/feature"
)

const (
	rowCountThresholdForTableImplementation = 1000
)

/*
Table represents an ordered collection of rows sharing the same
columns.

Its DistinctValues method returns the values a feature takes within the
table, in the order they are first encountered.

Its ValueCounts method returns how many rows hold each value of a
feature, keyed by the value's feature.ValueKey form.

Its SubsetWith method takes a feature.Criterion and returns a read-only
sub-view that only contains the rows that satisfy it.

Its Rows method returns the rows it contains.
*/
type Table interface {
	Count(context.Context) (int, error)
	DistinctValues(context.Context, *feature.Feature) ([]interface{}, error)
	ValueCounts(context.Context, *feature.Feature) (map[string]int, error)
	SubsetWith(context.Context, feature.Criterion) (Table, error)
	Rows(context.Context) ([]Row, error)
	Criteria(context.Context) ([]feature.Criterion, error)
}

type memoryIntensiveSubsettingTable struct {
	rows     []Row
	criteria []feature.Criterion
}

type cpuIntensiveSubsettingTable struct {
	count    *int
	rows     []Row
	criteria []feature.Criterion
}

/*
New takes a slice of rows and returns a table built with them.
The table will be a CPU intensive one when the number of rows is
over rowCountThresholdForTableImplementation
*/
func New(rows []Row) Table {
	if len(rows) > rowCountThresholdForTableImplementation {
		return &cpuIntensiveSubsettingTable{nil, rows, []feature.Criterion{}}
	}
	return &memoryIntensiveSubsettingTable{rows, nil}
}

/*
NewMemoryIntensive takes a slice of rows and returns a Table built with
them. A memory-intensive table is an implementation that replicates the
slice of rows when subsetting to reduce calculations at the cost of
increased memory.
*/
func NewMemoryIntensive(rows []Row) Table {
	return &memoryIntensiveSubsettingTable{rows, nil}
}

/*
NewCPUIntensive takes a slice of rows and returns a Table built with
them. A cpu-intensive table is an implementation that instead of
replicating the rows when subsetting, stores the applying feature
criteria to define the subset and keeps the same row slice. This can
achieve a drastic reduction in memory use that comes at the cost of CPU
time: every calculation that goes over the rows of the table will apply
the feature criteria of the table on all original rows (the ones
provided to this method).
*/
func NewCPUIntensive(rows []Row) Table {
	return &cpuIntensiveSubsettingTable{nil, rows, []feature.Criterion{}}
}

func (t *memoryIntensiveSubsettingTable) Count(ctx context.Context) (int, error) {
	return len(t.rows), nil
}

func (t *cpuIntensiveSubsettingTable) Count(ctx context.Context) (int, error) {
	if t.count != nil {
		return *t.count, nil
	}
	var length int
	err := t.iterateOnTable(ctx, func(_ Row) (bool, error) {
		length++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	t.count = &length
	return length, nil
}

func (t *memoryIntensiveSubsettingTable) DistinctValues(ctx context.Context, f *feature.Feature) ([]interface{}, error) {
	result := []interface{}{}
	encountered := make(map[string]bool)
	for _, row := range t.rows {
		v, err := row.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		vKey := feature.ValueKey(v)
		if !encountered[vKey] {
			encountered[vKey] = true
			result = append(result, v)
		}
	}
	return result, nil
}

func (t *cpuIntensiveSubsettingTable) DistinctValues(ctx context.Context, f *feature.Feature) ([]interface{}, error) {
	result := []interface{}{}
	encountered := make(map[string]bool)
	err := t.iterateOnTable(ctx, func(row Row) (bool, error) {
		v, err := row.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		vKey := feature.ValueKey(v)
		if !encountered[vKey] {
			encountered[vKey] = true
			result = append(result, v)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *memoryIntensiveSubsettingTable) ValueCounts(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	for _, row := range t.rows {
		v, err := row.ValueFor(ctx, f)
		if err != nil {
			return nil, err
		}
		result[feature.ValueKey(v)]++
	}
	return result, nil
}

func (t *cpuIntensiveSubsettingTable) ValueCounts(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	err := t.iterateOnTable(ctx, func(row Row) (bool, error) {
		v, err := row.ValueFor(ctx, f)
		if err != nil {
			return false, err
		}
		result[feature.ValueKey(v)]++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *memoryIntensiveSubsettingTable) SubsetWith(ctx context.Context, fc feature.Criterion) (Table, error) {
	var rows []Row
	for _, row := range t.rows {
		ok, err := fc.SatisfiedBy(ctx, row)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return &memoryIntensiveSubsettingTable{rows, append([]feature.Criterion{fc}, t.criteria...)}, nil
}

func (t *cpuIntensiveSubsettingTable) SubsetWith(ctx context.Context, fc feature.Criterion) (Table, error) {
	criteria := append([]feature.Criterion{fc}, t.criteria...)
	return &cpuIntensiveSubsettingTable{nil, t.rows, criteria}, nil
}

func (t *memoryIntensiveSubsettingTable) Rows(ctx context.Context) ([]Row, error) {
	return t.rows, nil
}

func (t *cpuIntensiveSubsettingTable) Rows(ctx context.Context) ([]Row, error) {
	var rows []Row
	err := t.iterateOnTable(ctx, func(row Row) (bool, error) {
		rows = append(rows, row)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (t *memoryIntensiveSubsettingTable) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return t.criteria, nil
}

func (t *cpuIntensiveSubsettingTable) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return t.criteria, nil
}

func (t *cpuIntensiveSubsettingTable) iterateOnTable(ctx context.Context, lambda func(Row) (bool, error)) error {
	for _, row := range t.rows {
		skip := false
		for _, criterion := range t.criteria {
			ok, err := criterion.SatisfiedBy(ctx, row)
			if err != nil {
				return err
			}
			if !ok {
				skip = true
				break
			}
		}
		if !skip {
			ok, err := lambda(row)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
		}
	}
	return nil
}
