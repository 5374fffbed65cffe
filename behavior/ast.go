// Package behavior implements the node behavior language: clauses of the form
//
//	requires <condition>
//	reads <topic> [then { <branch> or <branch> ... }]
//	publishes <topic> [= <value>]
//	alters <state> (=|+=|-=) <value>
//
// Parse turns one clause into a validated AST node and Compile renders that
// node as an Alloy formula over an execution "t".
package behavior

import (
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Symbols is the read-only view of the registry the compiler resolves names against.
type Symbols interface {
	Topic(name string) (*registry.Topic, bool)
	State(name string) (*registry.State, bool)
	Predicate(name string) (*registry.Predicate, bool)
}

// Quantifier is the quantifier of a condition.
type Quantifier int

const (
	// QuantifierNo requires the absence of the referenced entity.
	QuantifierNo Quantifier = iota
	// QuantifierSome requires the presence of the referenced entity.
	QuantifierSome
)

// String returns the canonical keyword of the quantifier.
func (q Quantifier) String() string {
	if q == QuantifierNo {
		return "no"
	}
	return "some"
}

// Operator is a relation between an entity and a value.
type Operator int

const (
	// OpEqual tests or assigns equality.
	OpEqual Operator = iota
	// OpGreater tests a numeric value for being greater.
	OpGreater
	// OpLess tests a numeric value for being smaller.
	OpLess
	// OpAdd increments a numeric state or appends to a topic.
	OpAdd
	// OpRemove decrements a numeric state.
	OpRemove
)

// String returns the canonical symbol of the operator.
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpGreater:
		return ">"
	case OpLess:
		return "<"
	case OpAdd:
		return "+="
	case OpRemove:
		return "-="
	default:
		return "?"
	}
}

// RefKind is the kind of entity a reference names.
type RefKind int

const (
	// RefTopic names a topic.
	RefTopic RefKind = iota
	// RefState names a process state ("$name").
	RefState
	// RefPredicate names a behavior predicate ("?name").
	RefPredicate
)

// Ref is an unresolved reference to a topic, state or predicate.
type Ref struct {
	Kind RefKind
	Name string
}

// Clause is a compiled behavior clause. The set of implementations is closed:
// *Conditional, *Read, *ReadConsequence, *ReadConditional, *Publish, *Alter
// and *MultipleConditions.
type Clause interface {
	// Source returns the clause text the node was built from.
	Source() string
	isClause()
}

// ReadCondition is one conjunct of a read branch.
type ReadCondition interface {
	Clause
	// From returns the topic the enclosing read consumes.
	From() *registry.Topic
}

// Conditional guards a predicate on a topic inbox, a state value or another predicate.
type Conditional struct {
	Quantifier Quantifier
	Topic      *registry.Topic
	State      *registry.State
	Predicate  *registry.Predicate
	// Value is the equality operand; empty when HasValue is false.
	Value    string
	HasValue bool
	source   string
}

// Read consumes the head of a topic inbox and evaluates its branches against it.
type Read struct {
	Topic *registry.Topic
	// Branches is a disjunction of conjunctions.
	Branches [][]ReadCondition
	source   string
}

// ReadConsequence is an effect of a read: a negated predicate, a topic
// publication or a state update.
type ReadConsequence struct {
	from      *registry.Topic
	Predicate *registry.Predicate
	Topic     *registry.Topic
	State     *registry.State
	Operator  Operator
	Value     string
	// Replicate is set when the consumed message itself is forwarded.
	Replicate bool
	source    string
}

// ReadConditional applies a consequence only when the consumed message satisfies a guard.
type ReadConditional struct {
	from        *registry.Topic
	Operator    Operator
	Value       string
	Consequence *ReadConsequence
	source      string
}

// Publish appends a message to a topic inbox.
type Publish struct {
	Topic    *registry.Topic
	Value    string
	HasValue bool
	source   string
}

// Alter updates a process state.
type Alter struct {
	State    *registry.State
	Operator Operator
	Value    string
	source   string
}

// MultipleConditions is the conjunction of several clauses.
type MultipleConditions struct {
	Clauses []Clause
	source  string
}

func (c *Conditional) Source() string        { return c.source }
func (c *Read) Source() string               { return c.source }
func (c *ReadConsequence) Source() string    { return c.source }
func (c *ReadConditional) Source() string    { return c.source }
func (c *Publish) Source() string            { return c.source }
func (c *Alter) Source() string              { return c.source }
func (c *MultipleConditions) Source() string { return c.source }

func (*Conditional) isClause()        {}
func (*Read) isClause()               {}
func (*ReadConsequence) isClause()    {}
func (*ReadConditional) isClause()    {}
func (*Publish) isClause()            {}
func (*Alter) isClause()              {}
func (*MultipleConditions) isClause() {}

// From returns the topic the enclosing read consumes.
func (c *ReadConsequence) From() *registry.Topic { return c.from }

// From returns the topic the enclosing read consumes.
func (c *ReadConditional) From() *registry.Topic { return c.from }
