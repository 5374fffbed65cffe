package lint

import (
	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/policy"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// Context gives rules access to the deployment being checked and to the
// current position while walking its nodes and topics.
type Context struct {
	Registry *registry.Registry
	Policy   *policy.Policy
	Binding  *analysis.Binding
	Graph    *analysis.Graph

	// Node is the bound node being examined (nil outside a node walk).
	Node *analysis.Node

	// Topic is the topic being examined (nil outside a topic walk).
	Topic *registry.Topic

	// Parent provides access to the parent context in the hierarchy.
	Parent *Context
}

// NewContext creates the model-level context of a deployment.
func NewContext(reg *registry.Registry, pol *policy.Policy, binding *analysis.Binding, graph *analysis.Graph) *Context {
	return &Context{
		Registry: reg,
		Policy:   pol,
		Binding:  binding,
		Graph:    graph,
	}
}

// NewNodeContext creates a child context for one bound node.
func NewNodeContext(parent *Context, node *analysis.Node) *Context {
	child := parent.child()
	child.Node = node
	return child
}

// NewTopicContext creates a child context for one topic.
func NewTopicContext(parent *Context, topic *registry.Topic) *Context {
	child := parent.child()
	child.Topic = topic
	return child
}

func (ctx *Context) child() *Context {
	return &Context{
		Registry: ctx.Registry,
		Policy:   ctx.Policy,
		Binding:  ctx.Binding,
		Graph:    ctx.Graph,
		Parent:   ctx,
	}
}

// IsModelLevel returns true if this context is not positioned on a node or topic.
func (ctx *Context) IsModelLevel() bool {
	return ctx.Node == nil && ctx.Topic == nil
}

// IsNodeLevel returns true if this context is positioned on a node.
func (ctx *Context) IsNodeLevel() bool {
	return ctx.Node != nil
}

// IsTopicLevel returns true if this context is positioned on a topic.
func (ctx *Context) IsTopicLevel() bool {
	return ctx.Topic != nil
}

// WalkNodes calls fn with a node context for every bound node.
// Walking stops if fn returns an error.
func (ctx *Context) WalkNodes(fn func(nodeCtx *Context) error) error {
	if ctx.Binding == nil {
		return nil
	}
	for _, node := range ctx.Binding.Nodes {
		if err := fn(NewNodeContext(ctx, node)); err != nil {
			return err
		}
	}
	return nil
}

// WalkTopics calls fn with a topic context for every registered topic.
// Walking stops if fn returns an error.
func (ctx *Context) WalkTopics(fn func(topicCtx *Context) error) error {
	if ctx.Registry == nil {
		return nil
	}
	for _, topic := range ctx.Registry.Topics() {
		if err := fn(NewTopicContext(ctx, topic)); err != nil {
			return err
		}
	}
	return nil
}

// WalkAll calls fn for the model context, then every node, then every topic.
func (ctx *Context) WalkAll(fn func(walkCtx *Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if err := ctx.WalkNodes(fn); err != nil {
		return err
	}
	return ctx.WalkTopics(fn)
}
