package lint

import (
	"fmt"
	"regexp"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/registry"
)

// CheckFunc performs rule checking on a context.
type CheckFunc func(ctx *Context) []Issue

// NodeCheckFunc checks a single bound node.
type NodeCheckFunc func(ctx *Context, node *analysis.Node) []Issue

// TopicCheckFunc checks a single topic.
type TopicCheckFunc func(ctx *Context, topic *registry.Topic) []Issue

// SimpleRule creates a rule from a check function with full context access.
//
//nolint:ireturn // Builder functions should return interfaces
func SimpleRule(name, description string, check CheckFunc) Rule {
	return &simpleRule{
		name:        name,
		description: description,
		check:       check,
	}
}

type simpleRule struct {
	name        string
	description string
	check       CheckFunc
}

func (r *simpleRule) Name() string        { return r.name }
func (r *simpleRule) Description() string { return r.description }

func (r *simpleRule) Check(ctx *Context) []Issue {
	return r.check(ctx)
}

// NodeRule creates a rule applied to every bound node.
//
//nolint:ireturn // Builder functions should return interfaces
func NodeRule(name, description string, check NodeCheckFunc) Rule {
	return &nodeRule{
		name:        name,
		description: description,
		check:       check,
	}
}

type nodeRule struct {
	name        string
	description string
	check       NodeCheckFunc
}

func (r *nodeRule) Name() string        { return r.name }
func (r *nodeRule) Description() string { return r.description }

func (r *nodeRule) Check(ctx *Context) []Issue {
	var issues []Issue
	_ = ctx.WalkNodes(func(nodeCtx *Context) error {
		issues = append(issues, r.check(nodeCtx, nodeCtx.Node)...)
		return nil
	})
	return issues
}

// TopicRule creates a rule applied to every registered topic.
//
//nolint:ireturn // Builder functions should return interfaces
func TopicRule(name, description string, check TopicCheckFunc) Rule {
	return &topicRule{
		name:        name,
		description: description,
		check:       check,
	}
}

type topicRule struct {
	name        string
	description string
	check       TopicCheckFunc
}

func (r *topicRule) Name() string        { return r.name }
func (r *topicRule) Description() string { return r.description }

func (r *topicRule) Check(ctx *Context) []Issue {
	var issues []Issue
	_ = ctx.WalkTopics(func(topicCtx *Context) error {
		issues = append(issues, r.check(topicCtx, topicCtx.Topic)...)
		return nil
	})
	return issues
}

// PatternRule creates a rule that flags node and topic names matching pattern.
//
//nolint:ireturn // Builder functions should return interfaces
func PatternRule(name, description, pattern string, severity Severity) Rule {
	regex, err := regexp.Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("invalid pattern in rule %s: %v", name, err))
	}

	return &patternRule{
		name:        name,
		description: description,
		pattern:     regex,
		severity:    severity,
	}
}

type patternRule struct {
	name        string
	description string
	pattern     *regexp.Regexp
	severity    Severity
}

func (r *patternRule) Name() string        { return r.name }
func (r *patternRule) Description() string { return r.description }

func (r *patternRule) Check(ctx *Context) []Issue {
	var issues []Issue
	_ = ctx.WalkAll(func(walkCtx *Context) error {
		var subject *Subject
		switch {
		case walkCtx.IsNodeLevel():
			subject = On(KindNode, walkCtx.Node.RosName())
		case walkCtx.IsTopicLevel():
			subject = On(KindTopic, walkCtx.Topic.Name)
		default:
			return nil
		}
		if r.pattern.MatchString(subject.Name) {
			issues = append(issues, NewIssue(
				r.name,
				r.severity,
				fmt.Sprintf("Name matches forbidden pattern: %s", r.pattern.String()),
				subject,
			))
		}
		return nil
	})
	return issues
}
