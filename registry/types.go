package registry

import (
	"fmt"
	"slices"
	"strconv"
)

// Domain is the kind of value set a message type or process state ranges over.
type Domain int

const (
	// DomainEnumerated is a finite set of symbolic values.
	DomainEnumerated Domain = iota
	// DomainNumeric is a finite set of integers.
	DomainNumeric
)

// String returns the string representation of the domain kind.
func (d Domain) String() string {
	switch d {
	case DomainEnumerated:
		return "enumerated"
	case DomainNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Package is a deployable unit owning a set of nodes.
type Package struct {
	Name  string
	Path  string
	Nodes []string
}

func (p *Package) addNode(identity string) {
	if !slices.Contains(p.Nodes, identity) {
		p.Nodes = append(p.Nodes, identity)
	}
}

// MessageValue is the value domain shared by every message type with the same
// abstract signature.
type MessageValue struct {
	Signature string
	Domain    Domain
	Values    []string
}

// Contains reports whether v belongs to the domain.
func (m *MessageValue) Contains(v string) bool {
	return slices.Contains(m.Values, v)
}

// Atom returns the signature of the atom representing v.
func (m *MessageValue) Atom(v string) string {
	return ValueAtom(m.Signature, v)
}

// MessageType is a topic payload type.
type MessageType struct {
	Name      string
	Signature string
	Value     *MessageValue
	// Topics lists the topics this type has been seen on.
	Topics []string
}

func (m *MessageType) addTopic(name string) {
	if !slices.Contains(m.Topics, name) {
		m.Topics = append(m.Topics, name)
	}
}

// Topic is a publish/subscribe channel.
type Topic struct {
	Name      string
	Type      string
	Signature string
	// Remap is a deployment-wide remap target, empty when the topic is not remapped.
	Remap       string
	MessageType *MessageType
}

// TopicRecord is the ingestion shape of a topic.
type TopicRecord struct {
	Name  string
	Type  string
	Remap string
}

// State is a process state variable appearing in node behavior.
type State struct {
	Name      string
	Public    bool
	Domain    Domain
	Values    []string
	Default   string
	Signature string
	Variable  string
}

// StateRecord is the parsed shape of a state declaration.
type StateRecord struct {
	Name   string
	Public bool
	Domain Domain
	// Values lists the domain; the first value is the default.
	Values []string
}

// Contains reports whether v belongs to the state's domain.
func (s *State) Contains(v string) bool {
	return slices.Contains(s.Values, v)
}

// Atom returns the Alloy expression denoting value v of this state.
// Numeric states use integer literals; enumerated states use atoms.
func (s *State) Atom(v string) string {
	if s.Domain == DomainNumeric {
		return v
	}
	return ValueAtom(Capitalize(Ident(s.Name)), v)
}

// Predicate is a named node behavior. Sub-clause predicates are only
// reachable through references and are excluded from the system step.
type Predicate struct {
	Name      string
	Owner     string
	SubClause bool
	Signature string
}

// normalizeDomain returns values in canonical form. Numeric values are
// rewritten as plain decimal integers, so "+1" and "01" both become "1".
func normalizeDomain(domain Domain, values []string) ([]string, error) {
	if domain != DomainNumeric {
		return values, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("value %q of a numeric domain is not an integer", v)
		}
		out = append(out, strconv.Itoa(n))
	}
	return out, nil
}

func mergeValues(dst, src []string) []string {
	for _, v := range src {
		if !slices.Contains(dst, v) {
			dst = append(dst, v)
		}
	}
	return dst
}
