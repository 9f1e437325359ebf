/*
Package inputrow provides an implementation of table.Row that is read
from an io.Reader.
*/
package inputrow

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/sonnert/DecisionTree/feature"
	"github.com/sonnert/DecisionTree/table"
)

/*
readRow represents a row whose feature values
are retrieved from a reader. A feature value will be
requested using a FeatureValueRequester before reading it.
*/
type readRow struct {
	obtainedValues        map[string]interface{}
	undefinedValue        string
	scanner               *bufio.Scanner
	featureValueRequester FeatureValueRequester
	features              []*feature.Feature
}

/*
FeatureValueRequester represents a way to ask
for feature values and reject the given values.
*/
type FeatureValueRequester interface {
	RequestValueFor(*feature.Feature) error
	RejectValueFor(*feature.Feature, interface{}) error
}

/*
New takes an io.Reader, a slice of features, a
FeatureValueRequester and an undefinedValue coding string
and returns a table.Row.

The returned row's ValueFor method reads feature values first
requesting them with the given FeatureValueRequester and
then parsing the values from the reader.

The parsing expects each value to be presented ending with the
'\n' character, that is in new lines. Also, the undefinedValue
string followed by the '\n' character will be interpreted as an
undefined value.

Lines will be read from the reader until a line with a valid
value for the feature is found. Non accepted values will be
rejected with the FeatureValueRequester's RejectValueFor method.

Attempting to obtain a value for a feature not in the given
features slice will return an error.
*/
func New(r io.Reader, features []*feature.Feature, featureValueRequester FeatureValueRequester, undefinedValue string) table.Row {
	scanner := bufio.NewScanner(r)
	return &readRow{make(map[string]interface{}), undefinedValue, scanner, featureValueRequester, features}
}

func (rr *readRow) ValueFor(_ context.Context, f *feature.Feature) (interface{}, error) {
	value, ok := rr.obtainedValues[f.Name()]
	if ok {
		return value, nil
	}
	var featureWithInfo *feature.Feature
	for _, feat := range rr.features {
		if f.Name() == feat.Name() {
			featureWithInfo = feat
		}
	}
	if featureWithInfo == nil {
		return nil, fmt.Errorf("have no information about feature %s, do not know how to read its value", f.Name())
	}
	err := rr.featureValueRequester.RequestValueFor(featureWithInfo)
	if err != nil {
		return nil, err
	}
	return rr.readFeatureValue(featureWithInfo)
}

func (rr *readRow) readFeatureValue(f *feature.Feature) (interface{}, error) {
	var err error
	for rr.scanner.Scan() {
		line := rr.scanner.Text()
		if line == rr.undefinedValue {
			rr.obtainedValues[f.Name()] = nil
			return nil, nil
		}
		if ok, _ := f.Valid(line); ok {
			rr.obtainedValues[f.Name()] = line
			return line, nil
		}
		err = rr.featureValueRequester.RejectValueFor(f, line)
		if err != nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	err = rr.scanner.Err()
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("EOF when requesting value")
}
