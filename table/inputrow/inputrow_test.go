package inputrow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonnert/DecisionTree/feature"
)

type recordingRequester struct {
	requested  []string
	rejected   []string
	requestErr error
	rejectErr  error
}

func (rr *recordingRequester) RequestValueFor(f *feature.Feature) error {
	rr.requested = append(rr.requested, f.Name())
	return rr.requestErr
}

func (rr *recordingRequester) RejectValueFor(f *feature.Feature, v interface{}) error {
	rr.rejected = append(rr.rejected, fmt.Sprintf("%s=%v", f.Name(), v))
	return rr.rejectErr
}

func TestReadRow_ValueFor(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	requester := &recordingRequester{}
	row := New(strings.NewReader("sunny\n"), []*feature.Feature{outlook}, requester, "?")

	v, err := row.ValueFor(ctx, outlook)
	require.NoError(t, err)
	assert.Equal(t, "sunny", v)
	assert.Equal(t, []string{"outlook"}, requester.requested)

	// A second read comes from the obtained values, without requesting
	// or scanning anything.
	v, err = row.ValueFor(ctx, outlook)
	require.NoError(t, err)
	assert.Equal(t, "sunny", v)
	assert.Equal(t, []string{"outlook"}, requester.requested)
}

func TestReadRow_ValueFor_UndefinedValue(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	requester := &recordingRequester{}
	row := New(strings.NewReader("?\n"), []*feature.Feature{outlook}, requester, "?")

	v, err := row.ValueFor(ctx, outlook)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = row.ValueFor(ctx, outlook)
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, []string{"outlook"}, requester.requested)
}

func TestReadRow_ValueFor_RejectsInvalidValues(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	requester := &recordingRequester{}
	row := New(strings.NewReader("foggy\nsunny\n"), []*feature.Feature{outlook}, requester, "?")

	v, err := row.ValueFor(ctx, outlook)
	require.NoError(t, err)
	assert.Equal(t, "sunny", v)
	assert.Equal(t, []string{"outlook=foggy"}, requester.rejected)
}

func TestReadRow_ValueFor_RejectionError(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	requester := &recordingRequester{rejectErr: fmt.Errorf("gave up")}
	row := New(strings.NewReader("foggy\nsunny\n"), []*feature.Feature{outlook}, requester, "?")

	_, err := row.ValueFor(ctx, outlook)
	assert.EqualError(t, err, "gave up")
}

func TestReadRow_ValueFor_RequestError(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	requester := &recordingRequester{requestErr: fmt.Errorf("no way to ask")}
	row := New(strings.NewReader("sunny\n"), []*feature.Feature{outlook}, requester, "?")

	_, err := row.ValueFor(ctx, outlook)
	assert.EqualError(t, err, "no way to ask")
}

func TestReadRow_ValueFor_EOF(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	requester := &recordingRequester{}
	row := New(strings.NewReader(""), []*feature.Feature{outlook}, requester, "?")

	_, err := row.ValueFor(ctx, outlook)
	assert.EqualError(t, err, "EOF when requesting value")
}

func TestReadRow_ValueFor_UnknownFeature(t *testing.T) {
	ctx := context.Background()
	outlook := feature.New("outlook", []string{"sunny", "overcast", "rain"})
	humidity := feature.New("humidity", []string{"high", "normal"})
	requester := &recordingRequester{}
	row := New(strings.NewReader("high\n"), []*feature.Feature{outlook}, requester, "?")

	_, err := row.ValueFor(ctx, humidity)
	assert.EqualError(t, err, "have no information about feature humidity, do not know how to read its value")
}
