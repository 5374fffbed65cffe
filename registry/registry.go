package registry

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/luis1ribeiro/SROS2-Utilities/errors"
)

// Registry owns the symbol tables of one compilation run.
// It is populated once during ingestion and read-only afterwards.
type Registry struct {
	packages   *Table[string, *Package]
	values     *Table[string, *MessageValue]
	types      *Table[string, *MessageType]
	topics     *Table[string, *Topic]
	nodes      *Table[string, *Node]
	states     *Table[string, *State]
	predicates *Table[string, *Predicate]

	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used to trace registrations.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		packages: NewTable[string, *Package]("package",
			func(existing, incoming *Package) error {
				if existing.Path != "" && incoming.Path != "" && existing.Path != incoming.Path {
					return fmt.Errorf("located at %q, redeclared at %q", existing.Path, incoming.Path)
				}
				return nil
			},
			func(existing, incoming *Package) {
				if existing.Path == "" {
					existing.Path = incoming.Path
				}
			},
		),
		values: NewTable[string, *MessageValue]("message domain",
			func(existing, incoming *MessageValue) error {
				if existing.Domain != incoming.Domain {
					return fmt.Errorf("declared %s, redeclared %s", existing.Domain, incoming.Domain)
				}
				return nil
			},
			func(existing, incoming *MessageValue) {
				existing.Values = mergeValues(existing.Values, incoming.Values)
			},
		),
		types: NewTable[string, *MessageType]("message type", nil, nil),
		topics: NewTable[string, *Topic]("topic",
			func(existing, incoming *Topic) error {
				if existing.Type != incoming.Type {
					return fmt.Errorf("declared with type %s, redeclared with type %s", existing.Type, incoming.Type)
				}
				if incoming.Remap != "" && existing.Remap != incoming.Remap {
					return fmt.Errorf("remapped to %q, redeclared remapped to %q", existing.Remap, incoming.Remap)
				}
				return nil
			},
			nil,
		),
		nodes: NewTable[string, *Node]("node",
			func(existing, incoming *Node) error {
				if existing.Executable != incoming.Executable {
					return fmt.Errorf("runs executable %q, redeclared running %q", existing.Executable, incoming.Executable)
				}
				if existing.Enclave != incoming.Enclave {
					return fmt.Errorf("launched in enclave %q, redeclared in %q", existing.Enclave, incoming.Enclave)
				}
				return nil
			},
			nil,
		),
		states: NewTable[string, *State]("state",
			func(existing, incoming *State) error {
				if existing.Public != incoming.Public {
					return fmt.Errorf("declared %s, redeclared %s", visibility(existing.Public), visibility(incoming.Public))
				}
				if existing.Domain != incoming.Domain {
					return fmt.Errorf("declared %s, redeclared %s", existing.Domain, incoming.Domain)
				}
				return nil
			},
			nil,
		),
		predicates: NewTable[string, *Predicate]("predicate",
			func(existing, incoming *Predicate) error {
				if existing.Owner != incoming.Owner {
					return fmt.Errorf("owned by %s, redeclared by %s", existing.Owner, incoming.Owner)
				}
				if existing.SubClause != incoming.SubClause {
					return fmt.Errorf("sub-clause flag %t, redeclared %t", existing.SubClause, incoming.SubClause)
				}
				return nil
			},
			nil,
		),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPackage registers a package.
func (r *Registry) AddPackage(name, path string) (*Package, error) {
	if name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "package name is empty")
	}
	return r.packages.Intern(name, &Package{Name: name, Path: path})
}

// DeclareMessage registers a message type and its value domain. Types that
// share an abstract signature share one domain, whose kind is fixed by the
// first declaration.
func (r *Registry) DeclareMessage(typeName string, domain Domain, values []string) (*MessageType, error) {
	if typeName == "" {
		return nil, errors.New(errors.CodeInvalidInput, "message type name is empty")
	}
	values, err := normalizeDomain(domain, values)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid message domain",
			map[string]interface{}{"type": typeName})
	}

	sig := TypeSignature(typeName)
	value, err := r.values.Intern(sig, &MessageValue{
		Signature: sig,
		Domain:    domain,
		Values:    mergeValues(nil, values),
	})
	if err != nil {
		return nil, err
	}

	mt, err := r.types.Intern(typeName, &MessageType{Name: typeName, Signature: sig, Value: value})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("declared message type", "type", typeName, "signature", sig, "domain", domain.String())
	return mt, nil
}

// RegisterTopic registers a topic. A topic whose type has no declared domain
// gets an empty enumerated one.
func (r *Registry) RegisterTopic(rec TopicRecord) (*Topic, error) {
	if rec.Name == "" || rec.Type == "" {
		return nil, errors.New(errors.CodeInvalidInput, "topic requires a name and a type")
	}

	candidate := &Topic{
		Name:      rec.Name,
		Type:      rec.Type,
		Signature: TopicSignature(rec.Name),
		Remap:     rec.Remap,
	}

	if existing, ok := r.topics.Lookup(rec.Name); ok {
		return r.topics.Intern(existing.Name, candidate)
	}

	mt, ok := r.types.Lookup(rec.Type)
	if !ok {
		var err error
		if mt, err = r.DeclareMessage(rec.Type, DomainEnumerated, nil); err != nil {
			return nil, err
		}
	}
	candidate.MessageType = mt

	topic, err := r.topics.Intern(rec.Name, candidate)
	if err != nil {
		return nil, err
	}
	mt.addTopic(topic.Name)
	r.logger.Debug("registered topic", "topic", topic.Name, "type", topic.Type)
	return topic, nil
}

// RegisterNode registers a deployment node. Its package must be registered and
// every advertised or subscribed topic, after remapping, must be a registered topic.
func (r *Registry) RegisterNode(rec NodeRecord) (*Node, error) {
	if rec.Name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "node name is empty")
	}
	pkg, ok := r.packages.Lookup(rec.Package)
	if !ok {
		return nil, errors.WrapWithContext(
			fmt.Errorf("package %q is not declared", rec.Package),
			errors.CodeReference,
			"node references an unknown package",
			map[string]interface{}{"node": rec.Name},
		)
	}

	remaps, err := ResolveRemaps(append(append([]Remap(nil), rec.Remaps...), r.globalRemaps()...))
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeRemapCycle, "failed to resolve remaps",
			map[string]interface{}{"node": RosName(rec.Namespace, rec.Name)})
	}

	node := &Node{
		Name:       rec.Name,
		Namespace:  cleanNamespace(rec.Namespace),
		Package:    rec.Package,
		Executable: rec.Executable,
		Enclave:    rec.Enclave,
		Remaps:     remaps,
	}
	node.Signature = NodeSignature(node.RosName())

	if node.Advertise, err = r.resolveTopics(node, rec.Advertise); err != nil {
		return nil, err
	}
	if node.Subscribe, err = r.resolveTopics(node, rec.Subscribe); err != nil {
		return nil, err
	}

	stored, err := r.nodes.Intern(node.Identity(), node)
	if err != nil {
		return nil, err
	}
	pkg.addNode(stored.Identity())
	r.logger.Debug("registered node", "node", stored.Identity(), "rosname", stored.RosName())
	return stored, nil
}

// DeclareState registers a process state.
func (r *Registry) DeclareState(rec StateRecord) (*State, error) {
	if rec.Name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "state name is empty")
	}
	if len(rec.Values) == 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "state %q declares no values", rec.Name)
	}
	values, err := normalizeDomain(rec.Domain, rec.Values)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidInput, "invalid state domain",
			map[string]interface{}{"state": rec.Name})
	}

	state, err := r.states.Intern(rec.Name, &State{
		Name:      rec.Name,
		Public:    rec.Public,
		Domain:    rec.Domain,
		Values:    mergeValues(nil, values),
		Default:   values[0],
		Signature: "State_" + Capitalize(Ident(rec.Name)),
		Variable:  VariableName(rec.Name),
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("declared state", "state", state.Name, "public", state.Public)
	return state, nil
}

// DeclarePredicate registers a behavior predicate owned by a node.
func (r *Registry) DeclarePredicate(name, owner string, subclause bool) (*Predicate, error) {
	if name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "predicate name is empty")
	}
	return r.predicates.Intern(name, &Predicate{
		Name:      name,
		Owner:     owner,
		SubClause: subclause,
		Signature: PredicateName(name),
	})
}

// Package returns the package with the given name.
func (r *Registry) Package(name string) (*Package, bool) { return r.packages.Lookup(name) }

// MessageType returns the message type with the given name.
func (r *Registry) MessageType(name string) (*MessageType, bool) { return r.types.Lookup(name) }

// Topic returns the topic with the given name.
func (r *Registry) Topic(name string) (*Topic, bool) { return r.topics.Lookup(name) }

// Node returns the node with the given identity.
func (r *Registry) Node(identity string) (*Node, bool) { return r.nodes.Lookup(identity) }

// State returns the state with the given name.
func (r *Registry) State(name string) (*State, bool) { return r.states.Lookup(name) }

// Predicate returns the predicate with the given name.
func (r *Registry) Predicate(name string) (*Predicate, bool) { return r.predicates.Lookup(name) }

// Packages returns all packages in registration order.
func (r *Registry) Packages() []*Package { return r.packages.All() }

// MessageValues returns all message domains in registration order.
func (r *Registry) MessageValues() []*MessageValue { return r.values.All() }

// MessageTypes returns all message types in registration order.
func (r *Registry) MessageTypes() []*MessageType { return r.types.All() }

// Topics returns all topics in registration order.
func (r *Registry) Topics() []*Topic { return r.topics.All() }

// Nodes returns all nodes in registration order.
func (r *Registry) Nodes() []*Node { return r.nodes.All() }

// States returns all states in registration order.
func (r *Registry) States() []*State { return r.states.All() }

// Predicates returns all predicates in registration order.
func (r *Registry) Predicates() []*Predicate { return r.predicates.All() }

func (r *Registry) resolveTopics(node *Node, names []string) ([]*Topic, error) {
	topics := make([]*Topic, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		resolved := node.ResolveTopic(name)
		topic, ok := r.topics.Lookup(resolved)
		if !ok {
			return nil, errors.WrapWithContext(
				fmt.Errorf("topic %q (declared as %q) is not registered", resolved, name),
				errors.CodeReference,
				"node references an unknown topic",
				map[string]interface{}{"node": node.RosName()},
			)
		}
		if seen[topic.Name] {
			continue
		}
		seen[topic.Name] = true
		topics = append(topics, topic)
	}
	return topics, nil
}

func (r *Registry) globalRemaps() []Remap {
	var remaps []Remap
	for _, t := range r.topics.All() {
		if t.Remap != "" {
			remaps = append(remaps, Remap{From: t.Name, To: t.Remap})
		}
	}
	return remaps
}

func visibility(public bool) string {
	if public {
		return "public"
	}
	return "private"
}
