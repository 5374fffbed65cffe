// Package flow provides rules about information flow between enclaves.
package flow

import (
	"fmt"

	"github.com/luis1ribeiro/SROS2-Utilities/analysis"
	"github.com/luis1ribeiro/SROS2-Utilities/lint"
)

// BoundaryFlowRule reports every flow between a private and a public enclave.
// Each reported topic is checked for non-interference in the generated model.
type BoundaryFlowRule struct{}

// NewBoundaryFlowRule creates a new boundary flow rule.
func NewBoundaryFlowRule() *BoundaryFlowRule {
	return &BoundaryFlowRule{}
}

// Name returns the unique identifier for this rule.
func (r *BoundaryFlowRule) Name() string {
	return "boundary-flow"
}

// Description returns a human-readable description of what this rule checks.
func (r *BoundaryFlowRule) Description() string {
	return "Reports topics that flow between a secure and an unsecured node"
}

// Check reports one issue per boundary edge.
func (r *BoundaryFlowRule) Check(ctx *lint.Context) []lint.Issue {
	if ctx.Graph == nil {
		return nil
	}
	var issues []lint.Issue
	for _, e := range ctx.Graph.Boundary() {
		issues = append(issues, r.describe(e))
	}
	return issues
}

func (r *BoundaryFlowRule) describe(e analysis.Edge) lint.Issue {
	secure, open := e.Source, e.Target
	if !secure.Secure() {
		secure, open = open, secure
	}
	issue := lint.NewIssue(
		r.Name(),
		lint.SeverityWarning,
		fmt.Sprintf("Connection through %s is not well supported. %s is not secure, while %s is secure: %s -%s-> %s",
			e.Topic.Name, open.RosName(), secure.RosName(), e.Source.RosName(), e.Topic.Name, e.Target.RosName()),
		lint.On(lint.KindTopic, e.Topic.Name),
	)
	return issue.
		WithContext("source", e.Source.RosName()).
		WithContext("target", e.Target.RosName())
}
