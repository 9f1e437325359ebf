package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

/*
Writer is an interface for a table to which rows
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given number
	// of rows and will return the actually written
	// number of rows and an error (if not all rows
	// could be written)
	Write(context.Context, []table.Row) (int, error)
	// Count returns the total number of rows written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

/*
TableGenerator is a function that takes a slice of rows
and generates a table with them.
*/
type TableGenerator func([]table.Row) table.Table

type csvWriter struct {
	count    int
	features []*feature.Feature
	w        *csv.Writer
}

/*
ReadTable takes an io.Reader for a CSV stream, a slice of features and
a TableGenerator and returns a table.Table built with the
TableGenerator and the rows parsed from the reader or an error.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice. The rest of the rows should consist of valid
values for the all features and/or the '?' string to indicate an undefined value.
*/
func ReadTable(reader io.Reader, features []*feature.Feature, tg TableGenerator) (table.Table, error) {
	rows := []table.Row{}
	err := ReadTableByRow(reader, features, func(_ int, r table.Row) (bool, error) {
		rows = append(rows, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return tg(rows), nil
}

/*
ReadTableByRow takes an io.Reader for a CSV stream, a slice of features and a
lambda function on an integer and a table.Row that returns a boolean value.
It parses the rows from the reader and for each it calls the lambda function
with the row and its index as parameters. If the lambda function returns true,
it will continue processing the next row, otherwise it will stop. An error is
returned if something goes wrong when reading the file or parsing a row.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice. The rest of the rows should consist of valid
values for the all features and/or the '?' string to indicate an undefined value.
*/
func ReadTableByRow(reader io.Reader, features []*feature.Feature, lambda func(int, table.Row) (bool, error)) error {
	featuresByName := featureSliceToMap(features)
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	features, err = parseFeaturesFromCSVHeader(header, featuresByName)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		row, err := parseRowFromCSVRecord(record, features)
		if err != nil {
			return fmt.Errorf("parsing line %d: %v", l, err)
		}
		ok, err := lambda(l-2, row)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadTableFromFilePath takes a filepath string, a slice of features and a
TableGenerator, opens the file to which the filepath points to and uses
ReadTable to return a table.Table or an error read from it. If the
filepath is "" os.Stdin is used instead. It will return an error if the
given filepath cannot be opened for reading.
*/
func ReadTableFromFilePath(filepath string, features []*feature.Feature, tg TableGenerator) (table.Table, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading table: %v", err)
		}
	}
	defer f.Close()
	t, err := ReadTable(f, features, tg)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %v", filepath, err)
	}
	return t, err
}

/*
ReadTableByRowFromFilePath takes a filepath string for a CSV stream, a
slice of features and a lambda function on an integer and a table.Row
that returns a boolean value. It opens the file for reading (if the
filepath is "" os.Stdin is used instead), parses the rows from the
reader and for each it calls the lambda function with the row and its
index as parameters. If the lambda function returns true, it will
continue processing the next row, otherwise it will stop. An error is
returned if something goes wrong when reading the file or parsing a
row.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice. The rest of the rows should consist of valid
values for the all features and/or the '?' string to indicate an undefined value.
*/
func ReadTableByRowFromFilePath(filepath string, features []*feature.Feature, lambda func(int, table.Row) (bool, error)) error {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return fmt.Errorf("reading table: %v", err)
		}
	}
	defer f.Close()
	err = ReadTableByRow(f, features, lambda)
	if err != nil {
		return err
	}
	return nil
}

/*
NewWriter takes an io.Writer and a slice of features and returns a
Writer that will write any rows on the io.Writer.
*/
func NewWriter(writer io.Writer, features []*feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	record := make([]string, len(features))
	for i, f := range features {
		record[i] = f.Name()
	}
	err := w.Write(record)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

/*
WriteCSVTable takes a writer, a table.Table and a slice of features and
dumps to the writer the table in CSV format, specifying only the
features in the given slice for the rows. It returns an error if
something went wrong when writing to the writer, or codifying the rows.
*/
func WriteCSVTable(ctx context.Context, writer io.Writer, t table.Table, features []*feature.Feature) error {
	cw, err := NewWriter(writer, features)
	if err != nil {
		return err
	}
	rows, err := t.Rows(ctx)
	if err != nil {
		return err
	}
	_, err = cw.Write(ctx, rows)
	if err != nil {
		return err
	}
	return cw.Flush()
}

func parseFeaturesFromCSVHeader(header []string, features map[string]*feature.Feature) ([]*feature.Feature, error) {
	featureOrder := []*feature.Feature{}
	for i, name := range header {
		f, ok := features[name]
		if ok {
			featureOrder = append(featureOrder, f)
		} else {
			if i != len(header)-1 {
				return nil, fmt.Errorf("parsing header: reference to unknown feature %s", name)
			}
		}
	}
	return featureOrder, nil
}

func parseRowFromCSVRecord(record []string, featureOrder []*feature.Feature) (table.Row, error) {
	featureValues := make(map[string]interface{})
	for i, f := range featureOrder {
		v := record[i]
		var value interface{}
		if v != "?" {
			value = v
		}
		if ok, err := f.Valid(value); !ok {
			return nil, fmt.Errorf("invalid value %v of type %T for feature %s: %v", value, value, f.Name(), err)
		}
		featureValues[f.Name()] = value
	}
	return table.NewRow(featureValues), nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, rows []table.Row) (int, error) {
	for n := 0; n < len(rows); n++ {
		err := cw.WriteRow(ctx, rows[n])
		if err != nil {
			return n, err
		}
	}
	return len(rows), nil
}

func (cw *csvWriter) WriteRow(ctx context.Context, r table.Row) error {
	record := make([]string, len(cw.features))
	for j, f := range cw.features {
		v, err := r.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		if v == nil {
			record[j] = "?"
		} else {
			record[j] = fmt.Sprintf("%v", v)
		}
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func featureSliceToMap(features []*feature.Feature) map[string]*feature.Feature {
	result := make(map[string]*feature.Feature)
	for _, f := range features {
		result[f.Name()] = f
	}
	return result
}
