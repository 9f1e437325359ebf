package feature

import (
	"context"
	"fmt"
)

/*
Criterion represents a constraint on a feature: a value the feature
must take for a row to satisfy it.

Its SatisfiedBy method takes a sample and returns a boolean indicating
if the sample satisfies the criterion.

Its Feature method returns the feature on which the criterion is
applied.
*/
type Criterion struct {
	feature *Feature
	value   interface{}
}

/*
Sample is an interface for something that can satisfy a Criterion.

Its ValueFor method returns the value corresponding to the feature
passed as parameter.
*/
type Sample interface {
	ValueFor(context.Context, *Feature) (interface{}, error)
}

/*
NewCriterion takes a Feature and a value and returns a Criterion
constraining the feature to that value.
*/
func NewCriterion(f *Feature, value interface{}) Criterion {
	return Criterion{f, value}
}

/*
Feature returns the feature to which the constraint applies.
*/
func (c Criterion) Feature() *Feature {
	return c.feature
}

/*
Value returns the value to which the feature is constrained.
*/
func (c Criterion) Value() interface{} {
	return c.value
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean
indicating if the sample satisfies the criterion. Specifically, it
returns false if the sample does not define a value for the feature,
true if the value's string form equals the string form of the value on
the criterion, and false otherwise. Comparing string forms keeps the
criterion consistent with the keys under which table implementations
count values.
*/
func (c Criterion) SatisfiedBy(ctx context.Context, sample Sample) (bool, error) {
	val, err := sample.ValueFor(ctx, c.feature)
	if err != nil {
		return false, err
	}
	if val == nil {
		return false, nil
	}
	return ValueKey(val) == ValueKey(c.value), nil
}

func (c Criterion) String() string {
	return fmt.Sprintf("%s is %v", c.feature.Name(), c.value)
}
