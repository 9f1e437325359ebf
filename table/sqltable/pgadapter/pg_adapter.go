/*
Package pgadapter provides an adapter for tables backed by a
PostgreSQL database.
*/
package pgadapter

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Import of postgresql driver
	_ "github.com/lib/pq"
	"github.com/sonnert/DecisionTree/table/sqltable"
)

const (
	valuesTableCreateStmt = `CREATE TABLE IF NOT EXISTS featureValues (
		id SERIAL PRIMARY KEY,
		value TEXT UNIQUE NOT NULL)`
	/*
		MaxValueInsertionsPerStatement is the maximum number of values
		that are allowed to be added with a single insert command with
		the AddValues method of the adapter. Trying to add more will
		result in making more insertion commands
	*/
	MaxValueInsertionsPerStatement = 10
	/*
		MaxObservationInsertionsPerStatement is the maximum number of
		rows that are allowed to be added with a single insert command
		with the AddObservations method of the adapter. Trying to add
		more will result in making more insertion commands
	*/
	MaxObservationInsertionsPerStatement = 10
)

type adapter struct {
	db *sql.DB
}

/*
New takes a URL to a PostgreSQL database and returns an Adapter that
works on that database or an error if a connection to the database
cannot be established.
*/
func New(url string) (sqltable.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) ColumnName(featureName string) (string, error) {
	if featureName == "id" {
		return "", fmt.Errorf(`'%s' is reserved and cannot be used as feature name`, featureName)
	}
	if strings.ContainsAny(featureName, `"`) {
		return "", fmt.Errorf(`feature name '%s' contains invalid character '"'`, featureName)
	}
	return strings.ToLower(featureName), nil
}

func (a *adapter) CreateValuesTable(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, valuesTableCreateStmt)
	if err != nil {
		return fmt.Errorf("running featureValues creation statement: %v", err)
	}
	return nil
}

func (a *adapter) CreateObservationsTable(ctx context.Context, columns []string) error {
	var createStmtBuf bytes.Buffer
	createStmtBuf.WriteString("CREATE TABLE IF NOT EXISTS observations(")
	for _, c := range columns {
		createStmtBuf.WriteString(fmt.Sprintf(`"%s" INTEGER NULL REFERENCES featureValues(id), `, c))
	}
	createStmtBuf.WriteString(`"id" SERIAL PRIMARY KEY)`)
	_, err := a.db.ExecContext(ctx, createStmtBuf.String())
	if err != nil {
		return fmt.Errorf("ensuring observations table exists: %v", err)
	}
	return nil
}

func (a *adapter) AddValues(ctx context.Context, values []string) (int, error) {
	added := 0
	for added < len(values) {
		chunk := values[added:]
		if len(chunk) > MaxValueInsertionsPerStatement {
			chunk = chunk[:MaxValueInsertionsPerStatement]
		}
		var insertStmtBuf bytes.Buffer
		insertStmtBuf.WriteString("INSERT INTO featureValues (value) VALUES ($1)")
		for i := 1; i < len(chunk); i++ {
			insertStmtBuf.WriteString(fmt.Sprintf(", ($%d)", i+1))
		}
		iv := make([]interface{}, 0, len(chunk))
		for _, v := range chunk {
			iv = append(iv, v)
		}
		_, err := a.db.ExecContext(ctx, insertStmtBuf.String(), iv...)
		if err != nil {
			return added, fmt.Errorf("inserting %d values: %v", len(chunk), err)
		}
		added += len(chunk)
	}
	return added, nil
}

func (a *adapter) ListValues(ctx context.Context) (map[int]string, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT id, value FROM featureValues`)
	if err != nil {
		return nil, err
	}
	result := make(map[int]string)
	for rows.Next() {
		var id int
		var value string
		err = rows.Scan(&id, &value)
		if err != nil {
			return nil, err
		}
		result[id] = value
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	err = rows.Close()
	return result, err
}

func (a *adapter) AddObservations(ctx context.Context, rawRows []map[string]interface{}, columns []string) (int, error) {
	if len(rawRows) == 0 {
		return 0, nil
	}
	if len(columns) == 0 {
		return 0, fmt.Errorf("no features to store")
	}
	added := 0
	for added < len(rawRows) {
		chunk := rawRows[added:]
		if len(chunk) > MaxObservationInsertionsPerStatement {
			chunk = chunk[:MaxObservationInsertionsPerStatement]
		}
		irs := make([]interface{}, 0, len(chunk)*len(columns))
		for _, rr := range chunk {
			for _, c := range columns {
				irs = append(irs, rr[c])
			}
		}
		_, err := a.db.ExecContext(ctx, observationInsertStatement(columns, len(chunk)), irs...)
		if err != nil {
			return added, fmt.Errorf("inserting %d observations: %v", len(chunk), err)
		}
		added += len(chunk)
	}
	return added, nil
}

func observationInsertStatement(columns []string, n int) string {
	var buf bytes.Buffer
	buf.WriteString(`INSERT INTO observations ("`)
	buf.WriteString(strings.Join(columns, `", "`))
	buf.WriteString(`") VALUES `)
	placeholder := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for j := 0; j < len(columns); j++ {
			if j > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(fmt.Sprintf("$%d", placeholder))
			placeholder++
		}
		buf.WriteString(")")
	}
	return buf.String()
}

func (a *adapter) ListObservations(ctx context.Context, criteria []*sqltable.RowCriterion, columns []string) ([]map[string]interface{}, error) {
	var result []map[string]interface{}
	err := a.IterateOnObservations(
		ctx,
		criteria,
		columns,
		func(_ int, rawRow map[string]interface{}) (bool, error) {
			result = append(result, rawRow)
			return true, nil
		})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (a *adapter) IterateOnObservations(ctx context.Context, criteria []*sqltable.RowCriterion, columns []string, lambda func(int, map[string]interface{}) (bool, error)) error {
	var queryBuffer bytes.Buffer
	var whereValues []interface{}
	queryBuffer.WriteString(`SELECT "`)
	queryBuffer.WriteString(strings.Join(columns, `", "`))
	queryBuffer.WriteString(`" FROM observations`)
	if len(criteria) > 0 {
		var whereClause string
		whereClause, whereValues = buildWhereClause(criteria)
		queryBuffer.WriteString(whereClause)
	}
	queryBuffer.WriteString(` ORDER BY id`)
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return err
	}
	for j := 0; rows.Next(); j++ {
		rawRow := make(map[string]interface{})
		rowValues := make([]sql.NullInt64, len(columns))
		values := make([]interface{}, 0, len(columns))
		for i := range rowValues {
			values = append(values, &rowValues[i])
		}
		err = rows.Scan(values...)
		if err != nil {
			return err
		}
		for i, c := range columns {
			if rowValues[i].Valid {
				rawRow[c] = int(rowValues[i].Int64)
			}
		}
		ok, err := lambda(j, rawRow)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	err = rows.Err()
	if err != nil {
		return err
	}
	return rows.Close()
}

func (a *adapter) CountObservations(ctx context.Context, criteria []*sqltable.RowCriterion) (int, error) {
	var queryBuffer bytes.Buffer
	var whereValues []interface{}
	queryBuffer.WriteString(`SELECT COUNT(*) FROM observations`)
	if len(criteria) > 0 {
		var whereClause string
		whereClause, whereValues = buildWhereClause(criteria)
		queryBuffer.WriteString(whereClause)
	}
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return 0, err
	}
	if !rows.Next() {
		return 0, rows.Err()
	}
	var count int
	err = rows.Scan(&count)
	if err != nil {
		return 0, err
	}
	err = rows.Close()
	return count, err
}

func (a *adapter) ListObservationValues(ctx context.Context, column string, criteria []*sqltable.RowCriterion) ([]int, error) {
	var queryBuffer bytes.Buffer
	var whereValues []interface{}
	queryBuffer.WriteString(fmt.Sprintf(`SELECT "%s" FROM observations`, column))
	if len(criteria) > 0 {
		var whereClause string
		whereClause, whereValues = buildWhereClause(criteria)
		queryBuffer.WriteString(whereClause)
	}
	// Grouping ordered by first insertion keeps the values in the
	// order they were first observed.
	queryBuffer.WriteString(fmt.Sprintf(` GROUP BY "%s" ORDER BY MIN(id)`, column))
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return nil, err
	}
	var result []int
	for rows.Next() {
		var value sql.NullInt64
		err = rows.Scan(&value)
		if err != nil {
			return nil, err
		}
		if value.Valid {
			result = append(result, int(value.Int64))
		}
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	err = rows.Close()
	return result, err
}

func (a *adapter) CountObservationValues(ctx context.Context, column string, criteria []*sqltable.RowCriterion) (map[int]int, error) {
	var queryBuffer bytes.Buffer
	var whereValues []interface{}
	queryBuffer.WriteString(fmt.Sprintf(`SELECT "%s", COUNT("%s") FROM observations`, column, column))
	if len(criteria) > 0 {
		var whereClause string
		whereClause, whereValues = buildWhereClause(criteria)
		queryBuffer.WriteString(whereClause)
	}
	queryBuffer.WriteString(fmt.Sprintf(` GROUP BY "%s"`, column))
	rows, err := a.db.QueryContext(ctx, queryBuffer.String(), whereValues...)
	if err != nil {
		return nil, err
	}
	result := make(map[int]int)
	for rows.Next() {
		var value sql.NullInt64
		var count int
		err = rows.Scan(&value, &count)
		if err != nil {
			return nil, err
		}
		if value.Valid {
			result[int(value.Int64)] = count
		}
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	err = rows.Close()
	return result, err
}

func buildWhereClause(criteria []*sqltable.RowCriterion) (string, []interface{}) {
	if len(criteria) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	values := make([]interface{}, 0, len(criteria))
	buf.WriteString(" WHERE ")
	for i, c := range criteria {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		buf.WriteString(fmt.Sprintf(`"%s" = $%d`, c.Column, i+1))
		values = append(values, c.ValueID)
	}
	return buf.String(), values
}
