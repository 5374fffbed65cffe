// Package config provides parsing, validation, and convenient access to
// deployment descriptions written in CUE or YAML.
//
// A description lists the message domains, topics, process states, packages
// and nodes of a ROS 2 deployment, the behaviour of every node, and the SROS
// policy placing nodes into enclaves, either inline or as a policy XML file.
//
// # Basic Usage
//
//	ctx := context.Background()
//	fs := billy.NewBaseOSFS()
//
//	// Load and validate a deployment (CUE or YAML, chosen by extension)
//	d, err := config.Load(ctx, fs, "deploy/turtlesim.cue")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, name := range d.ListTopics() {
//	    fmt.Println(name)
//	}
//
// # Advanced Usage
//
// Skip cross-reference validation during loading:
//
//	d, err := config.Load(ctx, fs, "deploy.yaml", config.WithSkipValidation())
//	...
//	if err := d.Validate(); err != nil {
//	    log.Fatalf("Deployment validation failed: %v", err)
//	}
package config

import (
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
)

// Message domain kinds.
const (
	KindEnumerated = "enumerated"
	KindNumeric    = "numeric"
)

// Deployment is a decoded deployment description.
type Deployment struct {
	Version string `json:"version" yaml:"version"`

	Scope int `json:"scope,omitempty" yaml:"scope,omitempty"`
	Steps int `json:"steps,omitempty" yaml:"steps,omitempty"`
	Inbox int `json:"inbox,omitempty" yaml:"inbox,omitempty"`

	Packages []Package `json:"packages,omitempty" yaml:"packages,omitempty"`
	Messages []Message `json:"messages,omitempty" yaml:"messages,omitempty"`
	Topics   []Topic   `json:"topics" yaml:"topics"`
	States   []State   `json:"states,omitempty" yaml:"states,omitempty"`
	Nodes    []Node    `json:"nodes" yaml:"nodes"`

	Policy     *policy.Tree `json:"policy,omitempty" yaml:"policy,omitempty"`
	PolicyFile string       `json:"policy_file,omitempty" yaml:"policy_file,omitempty"`

	// Source is the path the description was loaded from.
	Source string `json:"-" yaml:"-"`
}

// Package is a deployable unit.
type Package struct {
	Name string `json:"name" yaml:"name"`
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Message declares the value domain of a message type.
type Message struct {
	Type   string   `json:"type" yaml:"type"`
	Kind   string   `json:"kind,omitempty" yaml:"kind,omitempty"`
	Values []string `json:"values" yaml:"values"`
}

// Topic declares a topic and its message type.
type Topic struct {
	Name  string `json:"name" yaml:"name"`
	Type  string `json:"type" yaml:"type"`
	Remap string `json:"remap,omitempty" yaml:"remap,omitempty"`
}

// State declares a process state such as "public int counter" with its
// "/"-separated values.
type State struct {
	Declaration string `json:"declaration" yaml:"declaration"`
	Values      string `json:"values" yaml:"values"`
}

// Remap renames a topic for one node.
type Remap struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// Predicate is one named behaviour of a node.
type Predicate struct {
	Name      string   `json:"name" yaml:"name"`
	SubClause bool     `json:"subclause,omitempty" yaml:"subclause,omitempty"`
	Clauses   []string `json:"clauses" yaml:"clauses"`
}

// Node is a launched node.
type Node struct {
	Name       string      `json:"name" yaml:"name"`
	Namespace  string      `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Package    string      `json:"package" yaml:"package"`
	Executable string      `json:"executable" yaml:"executable"`
	Enclave    string      `json:"enclave,omitempty" yaml:"enclave,omitempty"`
	Remaps     []Remap     `json:"remaps,omitempty" yaml:"remaps,omitempty"`
	Advertise  []string    `json:"advertise,omitempty" yaml:"advertise,omitempty"`
	Subscribe  []string    `json:"subscribe,omitempty" yaml:"subscribe,omitempty"`
	Behaviour  []Predicate `json:"behaviour,omitempty" yaml:"behaviour,omitempty"`
}

// loadOptions configures the behavior of loading operations.
type loadOptions struct {
	// skipValidation disables cross-reference validation after loading.
	// Schema validation always runs.
	skipValidation bool
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithSkipValidation disables cross-reference validation after loading.
func WithSkipValidation() LoadOption {
	return func(o *loadOptions) {
		o.skipValidation = true
	}
}
