package tree

import (
	"github.com/sonnert/DecisionTree/feature"
)

/*
Node is a node of a decision tree: either a *Leaf with the label
predicted for the rows that reach it, or an *Internal splitting the
rows that reach it by the values of a feature.
*/
type Node interface {
	node()
}

/*
Leaf is a terminal node predicting a single label value.
*/
type Leaf struct {
	Label interface{}
}

/*
Internal is a node that splits rows by the values of a feature. It
holds one Branch per value of the feature observed in the rows the
node was grown from, in the order the values were first encountered.
*/
type Internal struct {
	Feature  *feature.Feature
	Branches []Branch
}

/*
Branch connects an Internal node to the subtree grown for one of its
feature's values. A nil Child marks an unresolved branch: its rows
were not label-pure, yet no feature could discriminate them further.
*/
type Branch struct {
	Value interface{}
	Child Node
}

func (l *Leaf) node()     {}
func (n *Internal) node() {}

/*
Branch takes a value and returns the child node grown for it and true,
or nil and false when the node has no branch for the value. Values are
matched in their normalized feature.ValueKey form, the same way rows
are counted and filtered.
*/
func (n *Internal) Branch(value interface{}) (Node, bool) {
	vKey := feature.ValueKey(value)
	for _, b := range n.Branches {
		if feature.ValueKey(b.Value) == vKey {
			return b.Child, true
		}
	}
	return nil, false
}
