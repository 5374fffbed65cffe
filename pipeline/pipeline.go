// Package pipeline runs one compilation of a deployment: it fills a fresh
// registry and policy, compiles node behaviours, binds nodes to profiles,
// computes the connectivity graph, runs the lint rules and generates the
// self-composition model.
//
// Every run owns its registries, so runs may execute in parallel.
package pipeline

import (
	"bytes"
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/luis1ribeiro/SROS2-Utilities/alloy"
	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/behavior"
	"github.com/luis1ribeiro/SROS2-Utilities/config"
	"github.com/luis1ribeiro/SROS2-Utilities/errors"
	"github.com/luis1ribeiro/SROS2-Utilities/fs"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
	"github.com/luis1ribeiro/SROS2-Utilities/lint/rules"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Rule names of the issues raised by the pipeline itself.
const (
	RuleVacuous       = "vacuous-noninterference"
	RuleDerivedPolicy = "derived-policy"
)

// Result is the outcome of a successful run.
type Result struct {
	RunID    string
	Registry *registry.Registry
	Policy   *policy.Policy
	// PolicyTree is the policy the run analyzed, derived from the nodes
	// when the deployment supplies none.
	PolicyTree policy.Tree
	Binding    *analysis.Binding
	Graph      *analysis.Graph
	Behaviors  []alloy.Behavior
	Document   *alloy.Document
	Issues     []lint.Issue
}

// HasErrors reports whether any issue has error severity.
func (r *Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == lint.SeverityError {
			return true
		}
	}
	return false
}

// Options configures a run. Zero bounds fall back to the deployment's, then
// to the generator defaults.
type Options struct {
	Logger *slog.Logger
	FS     fs.ReadFS
	Rules  []lint.Rule
	RunID  string
	Scope  int
	Steps  int
	Inbox  int
}

// Option configures a run.
type Option func(*Options)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithFS sets the filesystem policy files are read from.
func WithFS(filesystem fs.ReadFS) Option {
	return func(o *Options) {
		o.FS = filesystem
	}
}

// WithRules replaces the built-in lint rules.
func WithRules(r ...lint.Rule) Option {
	return func(o *Options) {
		o.Rules = r
	}
}

// WithRunID sets the run identifier instead of a random one.
func WithRunID(id string) Option {
	return func(o *Options) {
		o.RunID = id
	}
}

// WithScope overrides the check scope of the deployment.
func WithScope(scope int) Option {
	return func(o *Options) {
		o.Scope = scope
	}
}

// WithSteps overrides the step bound of the deployment.
func WithSteps(steps int) Option {
	return func(o *Options) {
		o.Steps = steps
	}
}

// WithInbox overrides the inbox bound of the deployment.
func WithInbox(n int) Option {
	return func(o *Options) {
		o.Inbox = n
	}
}

// run carries the state of one compilation.
type run struct {
	ctx    context.Context
	d      *config.Deployment
	opts   Options
	logger *slog.Logger
	res    *Result
	// nodes holds the registered node of each deployment node, by index.
	nodes []*registry.Node
}

// Run compiles d. Consistency, policy, reference and parse errors abort the
// run and no result is returned; everything else is reported as an issue.
func Run(ctx context.Context, d *config.Deployment, opts ...Option) (*Result, error) {
	if d == nil {
		return nil, errors.New(errors.CodeInvalidInput, "deployment is nil")
	}

	o := Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rules:  rules.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}

	r := &run{
		ctx:    ctx,
		d:      d,
		opts:   o,
		logger: o.Logger.With("run_id", o.RunID),
		res:    &Result{RunID: o.RunID},
	}

	stages := []struct {
		name string
		fn   func() error
	}{
		{"ingest", r.ingest},
		{"policy", r.loadPolicy},
		{"behaviour", r.compileBehaviors},
		{"analysis", r.analyze},
		{"generate", r.generate},
	}
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeTimeout, "compilation cancelled before "+stage.name)
		}
		r.logger.Debug("running stage", "stage", stage.name)
		if err := stage.fn(); err != nil {
			r.logger.Error("stage failed", "stage", stage.name, "error", err)
			return nil, err
		}
	}

	r.logger.Info("compilation finished",
		"nodes", len(r.res.Binding.Nodes),
		"boundary_topics", len(r.res.Document.Checks),
		"issues", len(r.res.Issues))
	return r.res, nil
}

// ingest fills the registry in dependency order: packages, messages,
// topics, states, nodes and finally predicate names, so that behaviours may
// call predicates declared by later nodes.
func (r *run) ingest() error {
	reg := registry.New(registry.WithLogger(r.logger))
	r.res.Registry = reg

	if len(r.d.Packages) > 0 {
		for _, p := range r.d.Packages {
			if _, err := reg.AddPackage(p.Name, p.Path); err != nil {
				return err
			}
		}
	} else {
		for _, n := range r.d.Nodes {
			if _, err := reg.AddPackage(n.Package, ""); err != nil {
				return err
			}
		}
	}

	for _, m := range r.d.Messages {
		if _, err := reg.DeclareMessage(m.Type, m.Domain(), m.Values); err != nil {
			return err
		}
	}

	for _, t := range r.d.Topics {
		if _, err := reg.RegisterTopic(registry.TopicRecord{Name: t.Name, Type: t.Type, Remap: t.Remap}); err != nil {
			return err
		}
	}

	for _, s := range r.d.States {
		rec, err := behavior.ParseState(s.Declaration, s.Values)
		if err != nil {
			return err
		}
		if _, err := reg.DeclareState(rec); err != nil {
			return err
		}
	}

	r.nodes = make([]*registry.Node, len(r.d.Nodes))
	for i := range r.d.Nodes {
		node, err := reg.RegisterNode(r.d.Nodes[i].Record())
		if err != nil {
			return err
		}
		r.nodes[i] = node
	}

	for i := range r.d.Nodes {
		n := &r.d.Nodes[i]
		for _, p := range n.Behaviour {
			if _, err := reg.DeclarePredicate(p.Name, n.RosName(), p.SubClause); err != nil {
				return err
			}
		}
	}

	r.logger.Info("deployment registered",
		"packages", len(reg.Packages()),
		"topics", len(reg.Topics()),
		"nodes", len(reg.Nodes()),
		"states", len(reg.States()))
	return nil
}

// loadPolicy loads the inline policy, the policy file, or a policy derived
// from the nodes, in that order of preference.
func (r *run) loadPolicy() error {
	tree, err := r.policyTree()
	if err != nil {
		return err
	}

	pol := policy.New()
	if err := pol.Load(tree); err != nil {
		return err
	}
	r.res.Policy = pol
	r.res.PolicyTree = tree
	r.logger.Info("policy loaded", "enclaves", len(pol.Enclaves()), "profiles", len(pol.Profiles()))
	return nil
}

func (r *run) policyTree() (policy.Tree, error) {
	switch {
	case r.d.Policy != nil:
		return *r.d.Policy, nil
	case r.d.PolicyFile != "":
		if r.opts.FS == nil {
			return policy.Tree{}, errors.New(errors.CodeInvalidConfig, "policy_file is set but no filesystem was given")
		}
		path := fs.Resolve(r.d.Source, r.d.PolicyFile)
		data, err := r.opts.FS.ReadFile(path)
		if err != nil {
			return policy.Tree{}, errors.WrapWithContext(err, errors.CodeNotFound, "failed to read policy file",
				map[string]interface{}{"path": path})
		}
		r.logger.Debug("decoding policy file", "path", path)
		return policy.DecodeSROS(bytes.NewReader(data))
	default:
		r.res.Issues = append(r.res.Issues, lint.NewIssue(
			RuleDerivedPolicy,
			lint.SeverityInfo,
			"No policy supplied; every node is granted exactly the topics it declares",
			lint.On(lint.KindModel, "policy"),
		))
		return policy.Generate(r.res.Registry.Nodes()), nil
	}
}

// compileBehaviors parses every predicate in the scope of its owning node.
func (r *run) compileBehaviors() error {
	reg := r.res.Registry
	for i := range r.d.Nodes {
		n := &r.d.Nodes[i]
		scope := behavior.NodeScope(reg, r.nodes[i])
		for _, p := range n.Behaviour {
			clause, err := behavior.ParseAll(p.Clauses, scope)
			if err != nil {
				return errors.WrapWithContext(err, errors.CodeOf(err), "failed to compile behaviour",
					map[string]interface{}{"node": n.RosName(), "predicate": p.Name})
			}
			pred, _ := reg.Predicate(p.Name)
			r.res.Behaviors = append(r.res.Behaviors, alloy.Behavior{
				Predicate: pred,
				Node:      r.nodes[i],
				Clause:    clause,
			})
		}
	}
	r.logger.Debug("behaviours compiled", "predicates", len(r.res.Behaviors))
	return nil
}

func (r *run) analyze() error {
	r.res.Binding = analysis.Bind(r.res.Registry, r.res.Policy)
	r.res.Graph = analysis.Connect(r.res.Binding.Nodes)

	ctx := lint.NewContext(r.res.Registry, r.res.Policy, r.res.Binding, r.res.Graph)
	r.res.Issues = append(r.res.Issues, lint.Run(ctx, r.opts.Rules...)...)

	r.logger.Info("deployment analyzed",
		"bound", len(r.res.Binding.Nodes),
		"unbound", len(r.res.Binding.UnboundNodes),
		"edges", len(r.res.Graph.Edges()),
		"observable", len(r.res.Graph.Observable()))
	return nil
}

func (r *run) generate() error {
	doc, err := alloy.Generate(alloy.Model{
		Registry:  r.res.Registry,
		Policy:    r.res.Policy,
		Nodes:     r.res.Binding.Nodes,
		Graph:     r.res.Graph,
		Behaviors: r.res.Behaviors,
	},
		alloy.WithScope(pick(r.opts.Scope, r.d.Scope, alloy.DefaultScope)),
		alloy.WithSteps(pick(r.opts.Steps, r.d.Steps, alloy.DefaultSteps)),
		alloy.WithInbox(pick(r.opts.Inbox, r.d.Inbox, 0)),
		alloy.WithLogger(r.logger),
	)
	if err != nil {
		return err
	}

	for _, advisory := range doc.Advisories {
		r.res.Issues = append(r.res.Issues, lint.NewIssue(
			RuleVacuous,
			lint.SeverityInfo,
			advisory,
			lint.On(lint.KindModel, "model"),
		))
	}
	r.res.Document = doc
	return nil
}

// pick returns the first positive value.
func pick(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
