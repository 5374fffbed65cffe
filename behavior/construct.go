package behavior

import (
	"fmt"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// replicateValue names the consumed message inside a read.
const replicateValue = "m"

// NewConditional builds a condition over ref. value, when non-nil, is an
// equality operand and must belong to the referenced entity's domain.
func NewConditional(src string, sym Symbols, q Quantifier, ref Ref, value *string) (*Conditional, error) {
	c := &Conditional{Quantifier: q, source: src}
	if value != nil {
		c.Value, c.HasValue = *value, true
	}

	switch ref.Kind {
	case RefTopic:
		topic, err := lookupTopic(src, sym, ref.Name)
		if err != nil {
			return nil, err
		}
		if c.HasValue {
			if err := checkTopicValue(src, topic, c.Value); err != nil {
				return nil, err
			}
		}
		c.Topic = topic
	case RefState:
		state, err := lookupState(src, sym, ref.Name)
		if err != nil {
			return nil, err
		}
		if c.HasValue {
			if err := checkStateValue(src, state, c.Value); err != nil {
				return nil, err
			}
		}
		c.State = state
	case RefPredicate:
		if c.HasValue {
			return nil, parseError(src, fmt.Errorf("predicate ?%s cannot be compared to a value", ref.Name))
		}
		pred, err := lookupPredicate(src, sym, ref.Name)
		if err != nil {
			return nil, err
		}
		c.Predicate = pred
	}
	return c, nil
}

// NewRead builds a read of topic. Every branch condition must have been built
// against the same topic.
func NewRead(src string, sym Symbols, topic string, branches [][]ReadCondition) (*Read, error) {
	t, err := lookupTopic(src, sym, topic)
	if err != nil {
		return nil, err
	}
	for _, branch := range branches {
		for _, cond := range branch {
			if cond.From() != t {
				return nil, errors.WrapWithContext(
					fmt.Errorf("condition %q was built for another topic", cond.Source()),
					errors.CodeInternal,
					"inconsistent read",
					map[string]interface{}{"clause": src},
				)
			}
		}
	}
	return &Read{Topic: t, Branches: branches, source: src}, nil
}

// NewReadConsequence builds the effect of a read of from on target. A
// predicate target is negated and ignores op and value. A topic target
// accepts "=" and "+=", both appending value; the value "m" forwards the
// consumed message and requires both topics to carry the same message type.
// A state target accepts "=" for any domain and "+=", "-=" for numeric ones.
func NewReadConsequence(src string, sym Symbols, from *registry.Topic, target Ref, op Operator, value string) (*ReadConsequence, error) {
	c := &ReadConsequence{from: from, Operator: op, Value: value, source: src}

	switch target.Kind {
	case RefPredicate:
		pred, err := lookupPredicate(src, sym, target.Name)
		if err != nil {
			return nil, err
		}
		c.Predicate, c.Value = pred, ""
	case RefTopic:
		topic, err := lookupTopic(src, sym, target.Name)
		if err != nil {
			return nil, err
		}
		if topic == from {
			return nil, referenceError(src, "read of %s cannot write back to %s", from.Name, topic.Name)
		}
		if op != OpEqual && op != OpAdd {
			return nil, referenceError(src, "operator %s does not apply to topic %s", op, topic.Name)
		}
		if value == replicateValue && !topic.MessageType.Value.Contains(value) {
			if topic.Type != from.Type {
				return nil, referenceError(src, "cannot replicate %s (%s) onto %s (%s)",
					from.Name, from.Type, topic.Name, topic.Type)
			}
			c.Replicate = true
		} else if err := checkTopicValue(src, topic, value); err != nil {
			return nil, err
		}
		c.Topic = topic
	case RefState:
		state, err := lookupState(src, sym, target.Name)
		if err != nil {
			return nil, err
		}
		if err := checkStateUpdate(src, state, op, value); err != nil {
			return nil, err
		}
		c.State = state
	}
	return c, nil
}

// NewReadConditional guards then with a test of the consumed message against
// value. Ordering tests require a numeric message domain.
func NewReadConditional(src string, from *registry.Topic, op Operator, value string, then *ReadConsequence) (*ReadConditional, error) {
	switch op {
	case OpEqual:
	case OpGreater, OpLess:
		if from.MessageType.Value.Domain != registry.DomainNumeric {
			return nil, referenceError(src, "ordering test on non-numeric topic %s", from.Name)
		}
	default:
		return nil, parseError(src, fmt.Errorf("operator %s is not a guard", op))
	}
	if err := checkTopicValue(src, from, value); err != nil {
		return nil, err
	}
	if then == nil || then.From() != from {
		return nil, errors.WrapWithContext(
			fmt.Errorf("guarded consequence was built for another topic"),
			errors.CodeInternal,
			"inconsistent read",
			map[string]interface{}{"clause": src},
		)
	}
	return &ReadConditional{from: from, Operator: op, Value: value, Consequence: then, source: src}, nil
}

// NewPublish builds a publication on topic, of value when non-nil.
func NewPublish(src string, sym Symbols, topic string, value *string) (*Publish, error) {
	t, err := lookupTopic(src, sym, topic)
	if err != nil {
		return nil, err
	}
	p := &Publish{Topic: t, source: src}
	if value != nil {
		if err := checkTopicValue(src, t, *value); err != nil {
			return nil, err
		}
		p.Value, p.HasValue = *value, true
	}
	return p, nil
}

// NewAlter builds an update of state.
func NewAlter(src string, sym Symbols, state string, op Operator, value string) (*Alter, error) {
	s, err := lookupState(src, sym, state)
	if err != nil {
		return nil, err
	}
	if err := checkStateUpdate(src, s, op, value); err != nil {
		return nil, err
	}
	return &Alter{State: s, Operator: op, Value: value, source: src}, nil
}

// NewMultipleConditions conjoins clauses. A single clause is returned unwrapped.
func NewMultipleConditions(src string, clauses ...Clause) Clause {
	if len(clauses) == 1 {
		return clauses[0]
	}
	return &MultipleConditions{Clauses: clauses, source: src}
}

func lookupTopic(src string, sym Symbols, name string) (*registry.Topic, error) {
	t, ok := sym.Topic(name)
	if !ok {
		return nil, referenceError(src, "unknown topic %s", name)
	}
	return t, nil
}

func lookupState(src string, sym Symbols, name string) (*registry.State, error) {
	s, ok := sym.State(name)
	if !ok {
		return nil, referenceError(src, "unknown state $%s", name)
	}
	return s, nil
}

func lookupPredicate(src string, sym Symbols, name string) (*registry.Predicate, error) {
	p, ok := sym.Predicate(name)
	if !ok {
		return nil, referenceError(src, "unknown predicate ?%s", name)
	}
	return p, nil
}

func checkTopicValue(src string, topic *registry.Topic, value string) error {
	if !topic.MessageType.Value.Contains(value) {
		return referenceError(src, "value %q is not in the domain of %s (%s)", value, topic.Name, topic.Type)
	}
	return nil
}

func checkStateValue(src string, state *registry.State, value string) error {
	if !state.Contains(value) {
		return referenceError(src, "value %q is not in the domain of $%s", value, state.Name)
	}
	return nil
}

func checkStateUpdate(src string, state *registry.State, op Operator, value string) error {
	switch op {
	case OpEqual:
	case OpAdd, OpRemove:
		if state.Domain != registry.DomainNumeric {
			return referenceError(src, "operator %s needs a numeric state, $%s is enumerated", op, state.Name)
		}
	default:
		return parseError(src, fmt.Errorf("operator %s does not update a state", op))
	}
	return checkStateValue(src, state, value)
}

func referenceError(src, format string, args ...interface{}) error {
	return errors.WrapWithContext(
		fmt.Errorf(format, args...),
		errors.CodeReference,
		"unresolved reference in behavior",
		map[string]interface{}{"clause": src},
	)
}

func parseError(src string, err error) error {
	return errors.WrapWithContext(err, errors.CodeParse, "malformed behavior", map[string]interface{}{"clause": src})
}
