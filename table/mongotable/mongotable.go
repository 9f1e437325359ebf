/*
Package mongotable provides an implementation of table.Table that
uses a MongoDB database as backend.
*/
package mongotable

import (
	"context"
	"fmt"
	"strings"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
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

type mongotable struct {
	session    *mgo.Session
	features   []*feature.Feature
	criteria   []feature.Criterion
	mongoQuery bson.M
	count      *int
}

const (
	observationsCollectionName = "observations"
)

/*
Open takes a MongoDB database session and returns a table.Table
that works on the default database for that session or an error
if it fails to connect to it.
*/
func Open(ctx context.Context, session *mgo.Session, features []*feature.Feature) (Table, error) {
	mt := &mongotable{session, features, nil, nil, nil}
	err := mt.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mt, nil
}

func (mt *mongotable) SubsetWith(ctx context.Context, fc feature.Criterion) (table.Table, error) {
	return &mongotable{mt.session, mt.features, append([]feature.Criterion{fc}, mt.criteria...), nil, nil}, nil
}

func (mt *mongotable) DistinctValues(ctx context.Context, f *feature.Feature) ([]interface{}, error) {
	if mt.mongoQuery == nil {
		mt.query()
	}
	// Grouping on the minimum _id keeps the values in the order
	// they were first observed.
	pipeline := []bson.M{
		{"$match": mt.mongoQuery},
		{"$group": bson.M{"_id": fmt.Sprintf("$%s", f.Name()), "first": bson.M{"$min": "$_id"}}},
		{"$sort": bson.M{"first": 1}},
	}
	iter := mt.observationsCollection().Pipe(pipeline).Iter()
	defer iter.Close()
	var doc bson.M
	var result []interface{}
	for iter.Next(&doc) {
		result = append(result, doc["_id"])
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (mt *mongotable) ValueCounts(ctx context.Context, f *feature.Feature) (map[string]int, error) {
	if mt.mongoQuery == nil {
		mt.query()
	}
	iter := mt.observationsCollection().Pipe([]bson.M{{"$match": mt.mongoQuery}, {"$group": bson.M{"_id": fmt.Sprintf("$%s", f.Name()), "count": bson.M{"$sum": 1}}}}).Iter()
	defer iter.Close()
	var doc bson.M
	result := make(map[string]int)
	for iter.Next(&doc) {
		count, ok := doc["count"].(int)
		if !ok {
			return nil, fmt.Errorf("counting feature values: mongo aggregation query returned a %T instead of an int as count", doc["count"])
		}
		result[feature.ValueKey(doc["_id"])] = count
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (mt *mongotable) Rows(ctx context.Context) ([]table.Row, error) {
	var rows []table.Row
	count, err := mt.Count(ctx)
	if err == nil {
		rows = make([]table.Row, 0, count)
	}
	rowStream, errs := mt.Read(ctx)
	for r := range rowStream {
		rows = append(rows, r)
	}
	err = <-errs
	return rows, err
}

func (mt *mongotable) Count(context.Context) (int, error) {
	if mt.count != nil {
		return *mt.count, nil
	}
	count, err := mt.query().Count()
	if err != nil {
		return 0, err
	}
	mt.count = &count
	return count, nil
}

func (mt *mongotable) Criteria(context.Context) ([]feature.Criterion, error) {
	return mt.criteria, nil
}

func (mt *mongotable) Write(ctx context.Context, rows []table.Row) (int, error) {
	docs := make([]interface{}, 0, len(rows))
	for _, r := range rows {
		doc := make(bson.M)
		for _, f := range mt.features {
			value, err := r.ValueFor(ctx, f)
			if err != nil {
				return 0, err
			}
			if value != nil {
				doc[f.Name()] = value
			}
		}
		docs = append(docs, doc)
	}
	err := mt.observationsCollection().Insert(docs...)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (mt *mongotable) Read(ctx context.Context) (<-chan table.Row, <-chan error) {
	rowStream := make(chan table.Row)
	errStream := make(chan error, 1)
	go func() {
		var err error
		iter := mt.query().Iter()
		defer iter.Close()
		for err == nil {
			doc := make(bson.M)
			if !iter.Next(&doc) {
				break
			}
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case rowStream <- table.NewRow(doc):
			}
		}
		if err == nil {
			err = iter.Err()
		}
		if err != nil {
			errStream <- err
		}
		close(errStream)
		close(rowStream)
	}()
	return rowStream, errStream
}

func (mt *mongotable) ensureIndexes() error {
	for _, f := range mt.features {
		fName := f.Name()
		if fName == "_id" {
			return fmt.Errorf("invalid feature name %q: reserved collection field", "_id")
		}
		if strings.ContainsAny(fName, ".$") {
			return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", fName, ".", "$")
		}
		index := mgo.Index{
			Key:        []string{fName},
			Background: true,
			Sparse:     true,
		}
		err := mt.observationsCollection().EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

func (mt *mongotable) observationsCollection() *mgo.Collection {
	return mt.session.DB("").C(observationsCollectionName)
}

func (mt *mongotable) query() *mgo.Query {
	if mt.mongoQuery == nil {
		mt.mongoQuery = make(bson.M)
		for _, fc := range mt.criteria {
			fName := fc.Feature().Name()
			if fc.Value() == nil {
				// No stored observation satisfies a criterion on an
				// undefined value: rows are stored without fields
				// for the features they leave undefined.
				mt.mongoQuery["_id"] = bson.M{"$exists": false}
				continue
			}
			mt.mongoQuery[fName] = fc.Value()
		}
	}
	return mt.observationsCollection().Find(mt.mongoQuery)
}
