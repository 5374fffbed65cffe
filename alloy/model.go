// Package alloy generates the self-composition model of a deployment: two
// executions T1 and T2 of the same system, facts that keep their public
// inputs and public state equal, and one non-interference check per topic
// that crosses between a private and a public enclave.
package alloy

import (
	"io"
	"log/slog"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/behavior"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Default bounds of generated checks.
const (
	DefaultScope = 4
	DefaultSteps = 10
)

// VacuousAdvisory is reported when no topic crosses an enclave boundary.
const VacuousAdvisory = "no connections between private and public enclaves; non-interference holds vacuously"

// Behavior is a compiled node behavior bound to its predicate.
type Behavior struct {
	Predicate *registry.Predicate
	Node      *registry.Node
	Clause    behavior.Clause
}

// Model is everything the generator reads. It is not modified.
type Model struct {
	Registry  *registry.Registry
	Policy    *policy.Policy
	Nodes     []*analysis.Node
	Graph     *analysis.Graph
	Behaviors []Behavior
}

// Check is a generated non-interference assertion.
type Check struct {
	Name  string
	Topic *registry.Topic
	// Advertisers are the signatures of the nodes publishing on Topic.
	Advertisers []string
}

// Document is a generated model.
type Document struct {
	Text       string
	Checks     []Check
	Advisories []string
}

// WriteTo writes the model text to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, d.Text)
	return int64(n), err
}

// Options holds the generator settings.
type Options struct {
	// Scope bounds every signature in checks.
	Scope int
	// Steps is the largest trace length explored.
	Steps int
	// Inbox bounds sequence length when positive.
	Inbox  int
	Logger *slog.Logger
}

// Option configures the generator.
type Option func(*Options)

// WithScope sets the check scope.
func WithScope(scope int) Option {
	return func(o *Options) { o.Scope = scope }
}

// WithSteps sets the maximum number of steps.
func WithSteps(steps int) Option {
	return func(o *Options) { o.Steps = steps }
}

// WithInbox bounds the inbox sequences of checks.
func WithInbox(n int) Option {
	return func(o *Options) { o.Inbox = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func defaultOptions() Options {
	return Options{
		Scope:  DefaultScope,
		Steps:  DefaultSteps,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
