/*
Package redistable provides an implementation of table.Table that
uses a Redis database as backend.

Rows are stored as JSON-encoded objects of feature names to values,
each under its own randomly-generated key, with a list at the key
prefix itself indexing the row keys in insertion order. Criteria are
applied on the client when reading.
*/
package redistable

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
	"gopkg.in/redis.v5"
)

/*
Table is a table.Table to which rows can be added and from
which rows can be sequentially read
*/
type Table interface {
	table.Table
	Write(context.Context, []table.Row) (int, error)
	Read(context.Context) (<-chan table.Row, <-chan error)
}

type redisTable struct {
	rc       *redis.Client
	prefix   string
	features []*feature.Feature
	criteria []feature.Criterion
	count    *int
}

/*
New takes a redis client, a key prefix and a slice of features and
returns a Table backed by the redis DB that stores rows with values
for the given features under the given prefix.
*/
func New(rc *redis.Client, prefix string, features []*feature.Feature) Table {
	return &redisTable{rc, prefix, features, nil, nil}
}

func (rt *redisTable) Count(ctx context.Context) (int, error) {
	if rt.count != nil {
		return *rt.count, nil
	}
	if len(rt.criteria) == 0 {
		length, err := rt.rc.LLen(rt.prefix).Result()
		if err != nil {
			return 0, fmt.Errorf("counting rows in redis: %v", err)
		}
		count := int(length)
		rt.count = &count
		return count, nil
	}
	var count int
	err := rt.iterate(ctx, func(table.Row) (bool, error) {
		count++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	rt.count = &count
	return count, nil
}

func (rt *redisTable) DistinctValues(ctx context.Context, f *feature.Feature) ([]interface{}, error) {
	result := []interface{}{}
	encountered := make(map[string]bool)
	err := rt.iterate(ctx, func(r table.Row) (bool, error) {
		v, err := r.ValueFor(ctx, f)
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

func (rt *redisTable) ValueCounts(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	result := make(map[string]int)
	err := rt.iterate(ctx, func(r table.Row) (bool, error) {
		v, err := r.ValueFor(ctx, f)
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

func (rt *redisTable) SubsetWith(ctx context.Context, fc feature.Criterion) (table.Table, error) {
	return &redisTable{rt.rc, rt.prefix, rt.features, append([]feature.Criterion{fc}, rt.criteria...), nil}, nil
}

func (rt *redisTable) Rows(ctx context.Context) ([]table.Row, error) {
	var rows []table.Row
	err := rt.iterate(ctx, func(r table.Row) (bool, error) {
		rows = append(rows, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (rt *redisTable) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return rt.criteria, nil
}

func (rt *redisTable) Write(ctx context.Context, rows []table.Row) (int, error) {
	for i, r := range rows {
		values := make(map[string]interface{})
		for _, f := range rt.features {
			v, err := r.ValueFor(ctx, f)
			if err != nil {
				return i, err
			}
			if v != nil {
				values[f.Name()] = v
			}
		}
		data, err := json.Marshal(values)
		if err != nil {
			return i, fmt.Errorf("storing row: encoding row: %v", err)
		}
		var key string
		var ok bool
		for !ok {
			key = rt.keyFor(randString(20))
			ok, err = rt.rc.SetNX(key, data, 0).Result()
			if err != nil {
				return i, fmt.Errorf("storing row in redis: %v", err)
			}
			if ctx.Err() != nil {
				return i, ctx.Err()
			}
		}
		_, err = rt.rc.RPush(rt.prefix, key).Result()
		if err != nil {
			return i, fmt.Errorf("indexing row %q in redis: %v", key, err)
		}
	}
	return len(rows), nil
}

func (rt *redisTable) Read(ctx context.Context) (<-chan table.Row, <-chan error) {
	rowStream := make(chan table.Row)
	errStream := make(chan error, 1)
	go func() {
		err := rt.iterate(ctx, func(r table.Row) (bool, error) {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
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

func (rt *redisTable) iterate(ctx context.Context, lambda func(table.Row) (bool, error)) error {
	keys, err := rt.rc.LRange(rt.prefix, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("listing row keys in redis: %v", err)
	}
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := rt.rc.Get(k).Result()
		if err != nil {
			return fmt.Errorf("retrieving row %q: %v", k, err)
		}
		values := make(map[string]interface{})
		err = json.Unmarshal([]byte(data), &values)
		if err != nil {
			return fmt.Errorf("retrieving row %q: decoding %q: %v", k, data, err)
		}
		r := table.NewRow(values)
		ok, err := rt.satisfiesCriteria(ctx, r)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		ok, err = lambda(r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

func (rt *redisTable) satisfiesCriteria(ctx context.Context, r table.Row) (bool, error) {
	for _, c := range rt.criteria {
		ok, err := c.SatisfiedBy(ctx, r)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (rt *redisTable) keyFor(id string) string {
	return fmt.Sprintf("%s:%s", rt.prefix, id)
}
