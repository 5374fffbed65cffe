package behavior

import (
	"fmt"
	"slices"
	"strings"

	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Fragment is an Alloy formula over the execution variable "t".
type Fragment string

// Compile renders c as an Alloy formula. It has no side effects.
func Compile(c Clause) Fragment {
	switch n := c.(type) {
	case *Conditional:
		return n.compile()
	case *Read:
		return n.compile()
	case *ReadConsequence:
		return n.compile()
	case *ReadConditional:
		return n.compile()
	case *Publish:
		return n.compile()
	case *Alter:
		return n.compile()
	case *MultipleConditions:
		return n.compile()
	default:
		panic(fmt.Sprintf("behavior: unknown clause type %T", c))
	}
}

// Targets returns the topics and states c writes, in first-write order.
func Targets(c Clause) ([]*registry.Topic, []*registry.State) {
	var w writes
	w.collect(c)
	return w.topics, w.states
}

func (c *Conditional) compile() Fragment {
	switch {
	case c.Predicate != nil:
		call := c.Predicate.Signature + "[t]"
		if c.Quantifier == QuantifierNo {
			return Fragment("not " + call)
		}
		return Fragment(call)

	case c.Topic != nil:
		if !c.HasValue {
			return Fragment(c.Quantifier.String() + " " + inbox(c.Topic))
		}
		head := "first[" + inbox(c.Topic) + "]"
		atom := c.Topic.MessageType.Value.Atom(c.Value)
		if c.Quantifier == QuantifierNo {
			return Fragment(head + " != " + atom)
		}
		return Fragment(head + " = " + atom)

	default:
		value := c.State.Default
		equal := c.Quantifier == QuantifierSome
		if !c.HasValue {
			// "some $s" holds once the state left its default.
			equal = !equal
		} else {
			value = c.Value
		}
		op := " = "
		if !equal {
			op = " != "
		}
		return Fragment(current(c.State) + op + c.State.Atom(value))
	}
}

func (c *Read) compile() Fragment {
	pop := next(c.Topic) + " = rest[" + inbox(c.Topic) + "]"
	if len(c.Branches) == 0 {
		return Fragment("some " + inbox(c.Topic) + " and " + pop)
	}

	var all writes
	for _, branch := range c.Branches {
		for _, cond := range branch {
			all.collect(cond)
		}
	}

	alternatives := make([]string, 0, len(c.Branches))
	for _, branch := range c.Branches {
		var own writes
		conjuncts := make([]string, 0, len(branch))
		for _, cond := range branch {
			own.collect(cond)
			conjuncts = append(conjuncts, string(Compile(cond)))
		}
		for _, t := range all.topics {
			if !slices.Contains(own.topics, t) {
				conjuncts = append(conjuncts, unchangedTopic(t))
			}
		}
		for _, s := range all.states {
			if !slices.Contains(own.states, s) {
				conjuncts = append(conjuncts, unchangedState(s))
			}
		}
		alternatives = append(alternatives, "("+strings.Join(conjuncts, " and ")+")")
	}

	var b strings.Builder
	b.WriteString("some " + inbox(c.Topic) + "\n")
	b.WriteString("\tand (let m = first[" + inbox(c.Topic) + "] |\n\t\t")
	b.WriteString(strings.Join(alternatives, "\n\t\tor "))
	b.WriteString(")\n")
	b.WriteString("\tand " + pop)
	return Fragment(b.String())
}

func (c *ReadConsequence) compile() Fragment {
	switch {
	case c.Predicate != nil:
		return Fragment("not " + c.Predicate.Signature + "[t]")
	case c.Topic != nil:
		value := "m"
		if !c.Replicate {
			value = c.Topic.MessageType.Value.Atom(c.Value)
		}
		return Fragment(next(c.Topic) + " = add[" + inbox(c.Topic) + ", " + value + "]")
	default:
		return updateState(c.State, c.Operator, c.Value)
	}
}

func (c *ReadConditional) compile() Fragment {
	var guard string
	switch c.Operator {
	case OpGreater:
		guard = "gt[m.val, " + c.Value + "]"
	case OpLess:
		guard = "lt[m.val, " + c.Value + "]"
	default:
		guard = "m = " + c.from.MessageType.Value.Atom(c.Value)
	}

	then := string(Compile(c.Consequence))
	switch {
	case c.Consequence.Topic != nil:
		return Fragment("(" + guard + " implies " + then + " else " + unchangedTopic(c.Consequence.Topic) + ")")
	case c.Consequence.State != nil:
		return Fragment("(" + guard + " implies " + then + " else " + unchangedState(c.Consequence.State) + ")")
	default:
		return Fragment("(" + guard + " implies " + then + ")")
	}
}

func (c *Publish) compile() Fragment {
	if c.HasValue {
		return Fragment(next(c.Topic) + " = add[" + inbox(c.Topic) + ", " + c.Topic.MessageType.Value.Atom(c.Value) + "]")
	}
	return Fragment("(some m : " + c.Topic.MessageType.Signature + " | " + next(c.Topic) + " = add[" + inbox(c.Topic) + ", m])")
}

func (c *Alter) compile() Fragment {
	return updateState(c.State, c.Operator, c.Value)
}

func (c *MultipleConditions) compile() Fragment {
	parts := make([]string, 0, len(c.Clauses))
	for _, clause := range c.Clauses {
		parts = append(parts, "("+string(Compile(clause))+")")
	}
	return Fragment(strings.Join(parts, "\n\tand "))
}

func updateState(s *registry.State, op Operator, value string) Fragment {
	switch op {
	case OpAdd:
		return Fragment(current(s) + "' = plus[" + current(s) + ", " + value + "]")
	case OpRemove:
		return Fragment(current(s) + "' = minus[" + current(s) + ", " + value + "]")
	default:
		return Fragment(current(s) + "' = " + s.Atom(value))
	}
}

func inbox(t *registry.Topic) string {
	return "t.inbox[" + t.Signature + "]"
}

func next(t *registry.Topic) string {
	return "t.inbox'[" + t.Signature + "]"
}

func current(s *registry.State) string {
	return "t." + s.Variable
}

func unchangedTopic(t *registry.Topic) string {
	return next(t) + " = " + inbox(t)
}

func unchangedState(s *registry.State) string {
	return current(s) + "' = " + current(s)
}

type writes struct {
	topics []*registry.Topic
	states []*registry.State
}

func (w *writes) topic(t *registry.Topic) {
	if t != nil && !slices.Contains(w.topics, t) {
		w.topics = append(w.topics, t)
	}
}

func (w *writes) state(s *registry.State) {
	if s != nil && !slices.Contains(w.states, s) {
		w.states = append(w.states, s)
	}
}

func (w *writes) collect(c Clause) {
	switch n := c.(type) {
	case *Conditional:
	case *Read:
		w.topic(n.Topic)
		for _, branch := range n.Branches {
			for _, cond := range branch {
				w.collect(cond)
			}
		}
	case *ReadConsequence:
		w.topic(n.Topic)
		w.state(n.State)
	case *ReadConditional:
		w.collect(n.Consequence)
	case *Publish:
		w.topic(n.Topic)
	case *Alter:
		w.state(n.State)
	case *MultipleConditions:
		for _, clause := range n.Clauses {
			w.collect(clause)
		}
	}
}
