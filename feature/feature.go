package feature

import "fmt"

/*
Feature represents a categorical property that can be observed on the
rows of a table: a named column whose values are drawn from a finite
set of atoms.
*/
type Feature struct {
	name   string
	values []string
}

/*
New takes a name string and a slice of strings with the values the
feature can take and returns a feature with them. A feature declared
with no values accepts any value.
*/
func New(name string, values []string) *Feature {
	return &Feature{name, values}
}

/*
Name returns a string with the name of the feature
*/
func (f *Feature) Name() string {
	return f.name
}

/*
Values returns a string slice with the values declared for the feature
*/
func (f *Feature) Values() []string {
	return f.values
}

/*
Valid receives a value and returns a boolean and an error. When the
value is nil (undefined) or its string form is among the declared
values of the feature, the method returns true and nil. Otherwise it
returns false and an error describing the reason. Features declared
without values accept everything.
*/
func (f *Feature) Valid(value interface{}) (bool, error) {
	if value == nil || len(f.values) == 0 {
		return true, nil
	}
	vs := ValueKey(value)
	for _, av := range f.values {
		if av == vs {
			return true, nil
		}
	}
	return false, fmt.Errorf("feature %s got unknown value %v", f.name, value)
}

func (f *Feature) String() string {
	return f.name
}

/*
ValueKey returns the string form under which a value is counted and
compared: string values are used as-is, any other value is formatted
with the fmt package's %v verb.
*/
func ValueKey(v interface{}) string {
	if vs, ok := v.(string); ok {
		return vs
	}
	return fmt.Sprintf("%v", v)
}
